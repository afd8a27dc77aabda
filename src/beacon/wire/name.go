package wire

import (
	"strings"
	"unicode/utf8"

	"github.com/jmalloc/beacon/src/beacon/names"
)

const (
	// MaxPointerHops is the maximum number of compression pointers that may
	// be followed while decoding a single name. Exceeding it means the
	// pointers form a cycle.
	MaxPointerHops = 16

	// DefaultDictSize is the default capacity of a NameCoder's compression
	// dictionary.
	DefaultDictSize = 10

	// maxPointerOffset is the first offset that cannot be expressed by a
	// 14-bit compression pointer.
	maxPointerOffset = 0x4000

	// pointerMask marks a length byte as a compression pointer: the top two
	// bits set, per https://tools.ietf.org/html/rfc1035#section-4.1.4.
	pointerMask = 0xC0
)

// NameCoder encodes names with backward-pointer compression.
//
// It maintains a dictionary of name suffixes already emitted into the current
// message and the offsets they were emitted at. The dictionary is a bounded
// ring: once full, each new suffix evicts the oldest entry. Dictionary state
// is per-message; a coder must not be reused across messages.
type NameCoder struct {
	entries []suffixOffset
	next    int
	full    bool
}

type suffixOffset struct {
	suffix string
	offset int
}

// NewNameCoder returns a coder whose dictionary holds up to capacity
// suffixes. A capacity of zero or less selects DefaultDictSize.
func NewNameCoder(capacity int) *NameCoder {
	if capacity <= 0 {
		capacity = DefaultDictSize
	}

	return &NameCoder{
		entries: make([]suffixOffset, capacity),
	}
}

// AppendName writes n to w, replacing any suffix already present in the
// dictionary with a two-byte pointer to its earlier appearance.
func (c *NameCoder) AppendName(w *Writer, n names.Name) {
	for i := range n {
		key := suffixKey(n[i:])

		if off, ok := c.find(key); ok {
			w.WriteU16(uint16(pointerMask)<<8 | uint16(off))
			return
		}

		// Suffixes at unexpressable offsets are written in full and left
		// out of the dictionary.
		if off := w.Position(); off < maxPointerOffset && !w.Overflowed() {
			c.insert(key, off)
		}

		seg := n[i]
		w.WriteU8(byte(len(seg)))
		w.WriteBytes([]byte(seg))
	}

	w.WriteU8(0)
}

// ReadName decodes a name from r, following compression pointers against the
// original packet.
//
// maxSegments bounds the number of segments accepted; zero means unbounded.
func ReadName(r *Reader, maxSegments int) (names.Name, error) {
	var (
		n      names.Name
		length = 1 // root byte
		resume = -1
		hops   = 0
	)

	for {
		b, err := r.ReadU8()
		if err != nil {
			return nil, err
		}

		switch {
		case b == 0:
			if len(n) == 0 {
				return nil, ErrInvalidLabel
			}

			if resume >= 0 {
				if err := r.Seek(resume); err != nil {
					return nil, err
				}
			}

			return n, nil

		case b&pointerMask == pointerMask:
			lo, err := r.ReadU8()
			if err != nil {
				return nil, err
			}

			// The cursor resumes after the first pointer; everything the
			// pointer leads to lives earlier in the packet.
			if resume < 0 {
				resume = r.Position()
			}

			hops++
			if hops > MaxPointerHops {
				return nil, ErrLabelLoop
			}

			off := int(b&^byte(pointerMask))<<8 | int(lo)
			if err := r.Seek(off); err != nil {
				return nil, err
			}

		case b&pointerMask != 0:
			// 0x40 and 0x80 length prefixes are reserved.
			return nil, ErrInvalidLabel

		default:
			seg, err := r.ReadBytes(int(b))
			if err != nil {
				return nil, err
			}

			if !utf8.Valid(seg) {
				return nil, ErrInvalidLabel
			}

			if maxSegments > 0 && len(n) >= maxSegments {
				return nil, ErrLabelOverflow
			}

			length += 1 + len(seg)
			if length > names.MaxNameLength {
				return nil, ErrLabelOverflow
			}

			n = append(n, string(seg))
		}
	}
}

// find returns the offset at which the given suffix was emitted, if any.
func (c *NameCoder) find(key string) (int, bool) {
	limit := c.next
	if c.full {
		limit = len(c.entries)
	}

	for _, e := range c.entries[:limit] {
		if e.suffix == key {
			return e.offset, true
		}
	}

	return 0, false
}

// insert records that the given suffix begins at offset, evicting the oldest
// entry if the dictionary is full.
func (c *NameCoder) insert(key string, offset int) {
	c.entries[c.next] = suffixOffset{key, offset}
	c.next++

	if c.next == len(c.entries) {
		c.next = 0
		c.full = true
	}
}

// suffixKey returns the dictionary key for a name suffix. Keys are folded to
// lower case so that lookups follow DNS case-insensitivity.
func suffixKey(suffix names.Name) string {
	return strings.ToLower(suffix.String())
}
