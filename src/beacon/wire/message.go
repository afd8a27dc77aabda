package wire

// Message is a DNS message: a header and four sections.
//
// The 12-octet header layout is defined by
// https://tools.ietf.org/html/rfc1035#section-4.1.1.
type Message struct {
	ID    uint16
	Flags Flags

	Questions   []Question
	Answers     []Record
	Authorities []Record
	Additionals []Record

	limits Limits
}

// NewMessage returns an empty message that enforces the given limits when
// questions and records are added to it.
func NewMessage(id uint16, flags Flags, limits Limits) *Message {
	return &Message{
		ID:     id,
		Flags:  flags,
		limits: limits,
	}
}

// ParseMessage decodes an entire DNS message.
//
// In static mode (non-zero limits) a message whose sections exceed the
// configured capacities fails with ErrTooMany rather than allocating past
// the bound.
func ParseMessage(buf []byte, limits Limits) (*Message, error) {
	r := NewReader(buf)

	id, err := r.ReadU16()
	if err != nil {
		return nil, err
	}

	flags, err := r.ReadU16()
	if err != nil {
		return nil, err
	}

	var counts [4]uint16
	for i := range counts {
		counts[i], err = r.ReadU16()
		if err != nil {
			return nil, err
		}
	}

	m := NewMessage(id, Flags(flags), limits)

	if !limits.questionCapacity(int(counts[0]) - 1) {
		return nil, ErrTooMany
	}

	for i := 0; i < int(counts[0]); i++ {
		q, err := readQuestion(r, limits.MaxNameSegments)
		if err != nil {
			return nil, err
		}
		m.Questions = append(m.Questions, q)
	}

	sections := []*[]Record{&m.Answers, &m.Authorities, &m.Additionals}
	for s, section := range sections {
		count := int(counts[s+1])

		if !limits.recordCapacity(count - 1) {
			return nil, ErrTooMany
		}

		for i := 0; i < count; i++ {
			rec, err := readRecord(r, limits.MaxNameSegments)
			if err != nil {
				return nil, err
			}
			*section = append(*section, rec)
		}
	}

	return m, nil
}

// AddQuestion adds q to the question section.
//
// Questions carrying a (name, type, class) tuple already present are
// collapsed; excess questions beyond the configured capacity are dropped.
// It returns true if the message now contains the question.
func (m *Message) AddQuestion(q Question) bool {
	for _, x := range m.Questions {
		if x.equal(q) {
			return true
		}
	}

	if !m.limits.questionCapacity(len(m.Questions)) {
		return false
	}

	m.Questions = append(m.Questions, q)
	return true
}

// AddAnswer adds rec to the answer section, collapsing duplicates and
// dropping records beyond the configured capacity.
func (m *Message) AddAnswer(rec Record) bool {
	return m.addRecord(&m.Answers, rec)
}

// AddAuthority adds rec to the authority section, collapsing duplicates and
// dropping records beyond the configured capacity.
func (m *Message) AddAuthority(rec Record) bool {
	return m.addRecord(&m.Authorities, rec)
}

// AddAdditional adds rec to the additional section, collapsing duplicates
// and dropping records beyond the configured capacity.
//
// A record already present in the answer section is never repeated in the
// additional section.
func (m *Message) AddAdditional(rec Record) bool {
	for _, x := range m.Answers {
		if x.equal(rec) {
			return true
		}
	}

	return m.addRecord(&m.Additionals, rec)
}

func (m *Message) addRecord(section *[]Record, rec Record) bool {
	for _, x := range *section {
		if x.equal(rec) {
			return true
		}
	}

	if !m.limits.recordCapacity(len(*section)) {
		return false
	}

	*section = append(*section, rec)
	return true
}

// IsEmpty returns true if the message carries no questions and no records.
func (m *Message) IsEmpty() bool {
	return len(m.Questions) == 0 &&
		len(m.Answers) == 0 &&
		len(m.Authorities) == 0 &&
		len(m.Additionals) == 0
}

// Append serializes the message to w.
//
// The section counts are back-patched after the sections are written. If the
// buffer cannot hold every record, the message is truncated cleanly at a
// record boundary: the records that did not fit are omitted and the counts
// reflect what was actually written. The TC bit is never set. The returned
// bool is true if nothing was dropped.
//
// It returns ErrBufferFull if the header and question section did not fit,
// or if the message carried records but not a single one fit; such a message
// must be abandoned.
func (m *Message) Append(w *Writer) (bool, error) {
	c := NewNameCoder(m.limits.DictSize)

	w.WriteU16(m.ID)
	w.WriteU16(uint16(m.Flags))

	counts := w.Position()
	w.WriteU32(0)
	w.WriteU32(0)

	// A query with its questions cut off would change the question's
	// meaning; questions are all-or-nothing.
	for _, q := range m.Questions {
		q.append(w, c)
	}

	if w.Overflowed() {
		return false, ErrBufferFull
	}

	written := [3]int{}
	sections := [3][]Record{m.Answers, m.Authorities, m.Additionals}

	// Once a record fails to fit, no further records are attempted: the
	// rolled-back bytes may be referenced by stale compression dictionary
	// entries, so nothing can safely be written after them.
	truncated := false

	for s, section := range sections {
		if truncated {
			break
		}

		for _, rec := range section {
			mark := w.Position()
			rec.append(w, c)

			if w.Overflowed() {
				w.truncate(mark)
				truncated = true
				break
			}

			written[s]++
		}
	}

	records := len(m.Answers) + len(m.Authorities) + len(m.Additionals)

	if written[0]+written[1]+written[2] == 0 && records > 0 {
		return false, ErrBufferFull
	}

	w.SetU16At(counts, uint16(len(m.Questions)))
	w.SetU16At(counts+2, uint16(written[0]))
	w.SetU16At(counts+4, uint16(written[1]))
	w.SetU16At(counts+6, uint16(written[2]))

	return !truncated, nil
}
