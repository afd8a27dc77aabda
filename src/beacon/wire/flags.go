package wire

// Flags is the 16-bit flags field of a DNS message header.
type Flags uint16

const (
	flagResponse           Flags = 1 << 15
	flagAuthoritative      Flags = 1 << 10
	flagTruncated          Flags = 1 << 9
	flagRecursionDesired   Flags = 1 << 8
	flagRecursionAvailable Flags = 1 << 7
)

// StandardQuery returns the flags for an mDNS query.
//
// Per https://tools.ietf.org/html/rfc6762#section-18, the OPCODE must be
// zero, and the RD, RA, TC and remaining bits must all be zero on
// transmission.
func StandardQuery() Flags {
	return 0
}

// StandardResponse returns the flags for an mDNS response.
//
// Per https://tools.ietf.org/html/rfc6762#section-18.4, the AA bit must be
// set in responses; all other bits besides QR must be zero.
func StandardResponse() Flags {
	return flagResponse | flagAuthoritative
}

// IsResponse returns true if the QR bit is set.
func (f Flags) IsResponse() bool {
	return f&flagResponse != 0
}

// Opcode returns the four-bit OPCODE field.
func (f Flags) Opcode() uint8 {
	return uint8(f>>11) & 0x0F
}

// Authoritative returns true if the AA bit is set.
func (f Flags) Authoritative() bool {
	return f&flagAuthoritative != 0
}

// Truncated returns true if the TC bit is set.
func (f Flags) Truncated() bool {
	return f&flagTruncated != 0
}

// RecursionDesired returns true if the RD bit is set.
func (f Flags) RecursionDesired() bool {
	return f&flagRecursionDesired != 0
}

// RecursionAvailable returns true if the RA bit is set.
func (f Flags) RecursionAvailable() bool {
	return f&flagRecursionAvailable != 0
}

// Rcode returns the four-bit response code.
func (f Flags) Rcode() uint8 {
	return uint8(f) & 0x0F
}
