package wire

import "github.com/jmalloc/beacon/src/beacon/names"

// Question is a single entry in the question section of a DNS message.
type Question struct {
	Name  names.Name
	Type  Type
	Class Class

	// UnicastResponse is true if the querier set the top bit of the class
	// field, requesting a unicast response.
	//
	// See https://tools.ietf.org/html/rfc6762#section-18.12. The bit is
	// never set on questions we emit; responses are always multicast.
	UnicastResponse bool
}

// Matches returns true if q asks about the given name with the given type.
//
// A question of type ANY matches every type.
func (q Question) Matches(n names.Name, t Type) bool {
	if q.Type != t && q.Type != TypeANY {
		return false
	}

	return q.Name.Equal(n)
}

// equal returns true if two questions ask for the same (name, type, class)
// tuple. The unicast-response bit does not participate; it is a transport
// preference, not part of the question's identity.
func (q Question) equal(o Question) bool {
	return q.Type == o.Type &&
		q.Class == o.Class &&
		q.Name.Equal(o.Name)
}

// readQuestion decodes a single question.
func readQuestion(r *Reader, maxSegments int) (Question, error) {
	n, err := ReadName(r, maxSegments)
	if err != nil {
		return Question{}, err
	}

	t, err := r.ReadU16()
	if err != nil {
		return Question{}, err
	}

	c, err := r.ReadU16()
	if err != nil {
		return Question{}, err
	}

	return Question{
		Name:            n,
		Type:            Type(t),
		Class:           Class(c &^ classTopBit),
		UnicastResponse: c&classTopBit != 0,
	}, nil
}

// append serializes the question to w.
func (q Question) append(w *Writer, c *NameCoder) {
	c.AppendName(w, q.Name)
	w.WriteU16(uint16(q.Type))
	w.WriteU16(uint16(q.Class))
}
