package wire

// Type identifies a DNS record or question type.
type Type uint16

// The record types used for DNS-SD over mDNS.
//
// See https://tools.ietf.org/html/rfc1035#section-3.2.2 and
// https://tools.ietf.org/html/rfc1035#section-3.2.3.
const (
	TypeA   Type = 1
	TypePTR Type = 12
	TypeTXT Type = 16
	TypeSRV Type = 33
	TypeANY Type = 255
)

// String returns a human-readable representation of the type.
func (t Type) String() string {
	switch t {
	case TypeA:
		return "A"
	case TypePTR:
		return "PTR"
	case TypeTXT:
		return "TXT"
	case TypeSRV:
		return "SRV"
	case TypeANY:
		return "ANY"
	default:
		return "UNKNOWN"
	}
}

// Class identifies a DNS class. Only the internet class is used by mDNS.
type Class uint16

// ClassIN is the internet class.
const ClassIN Class = 1

// classTopBit is the top bit of the class field. In questions it requests a
// unicast response; in records it marks a "cache flush" record set.
//
// See https://tools.ietf.org/html/rfc6762#section-18.12 and
// https://tools.ietf.org/html/rfc6762#section-18.13.
const classTopBit = 1 << 15
