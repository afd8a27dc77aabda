package names

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxSegmentLength is the maximum length of a single name segment, in
	// bytes, as per https://tools.ietf.org/html/rfc1035#section-3.1.
	MaxSegmentLength = 63

	// MaxNameLength is the maximum serialized length of an entire name,
	// including the length prefix of each segment and the root byte.
	MaxNameLength = 255
)

// Name is a DNS name, represented as its dot-separated segments.
//
// The zero value is the empty name, which is not valid on the wire.
type Name []string

// Parse parses n as a DNS name.
func Parse(n string) (Name, error) {
	if n == "" {
		return nil, errors.New("name must not be empty")
	}

	v := Name(strings.Split(n, "."))
	return v, v.Validate()
}

// MustParse parses n as a DNS name.
// It panics if n is invalid.
func MustParse(n string) Name {
	v, err := Parse(n)
	if err != nil {
		panic(err)
	}
	return v
}

// Prepend returns a new name produced by prefixing n with the given segment.
//
// It is used to build service instance names, such as prefixing
// "_service._udp.local" with "node1".
func (n Name) Prepend(segment string) Name {
	v := make(Name, 0, len(n)+1)
	v = append(v, segment)
	v = append(v, n...)
	return v
}

// Equal returns true if n and o contain the same segments.
//
// Per https://tools.ietf.org/html/rfc1035#section-3.1, comparison of each
// segment is case-insensitive for ASCII letters.
func (n Name) Equal(o Name) bool {
	if len(n) != len(o) {
		return false
	}

	for i, s := range n {
		if !segmentsEqual(s, o[i]) {
			return false
		}
	}

	return true
}

// IsEmpty returns true if the name has no segments.
func (n Name) IsEmpty() bool {
	return len(n) == 0
}

// WireLength returns the number of bytes the name occupies when serialized
// without compression.
func (n Name) WireLength() int {
	l := 1 // root byte

	for _, s := range n {
		l += 1 + len(s)
	}

	return l
}

// Validate returns nil if the name is valid.
func (n Name) Validate() error {
	if len(n) == 0 {
		return errors.New("name must not be empty")
	}

	for _, s := range n {
		if err := validateSegment(s); err != nil {
			return err
		}
	}

	if n.WireLength() > MaxNameLength {
		return fmt.Errorf("name '%s' is invalid, serialized length exceeds %d bytes", strings.Join(n, "."), MaxNameLength)
	}

	return nil
}

// String returns a representation of the name as used by DNS systems.
func (n Name) String() string {
	return strings.Join(n, ".")
}

// validateSegment returns nil if s is a valid name segment.
func validateSegment(s string) error {
	if s == "" {
		return errors.New("name segment must not be empty")
	}

	if len(s) > MaxSegmentLength {
		return fmt.Errorf("name segment '%s' is invalid, exceeds %d bytes", s, MaxSegmentLength)
	}

	return nil
}

// segmentsEqual compares two segments, ignoring the case of ASCII letters.
func segmentsEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := 0; i < len(a); i++ {
		if asciiLower(a[i]) != asciiLower(b[i]) {
			return false
		}
	}

	return true
}

// asciiLower maps ASCII upper-case letters to lower-case, and returns all
// other bytes unchanged.
func asciiLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
