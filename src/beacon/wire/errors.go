package wire

import "errors"

var (
	// ErrTruncated indicates that a read would pass the end of the buffer.
	ErrTruncated = errors.New("truncated message")

	// ErrLabelLoop indicates that resolving a name's compression pointers
	// exceeded the hop bound, which means the pointers (almost certainly)
	// form a cycle.
	ErrLabelLoop = errors.New("compression pointer loop")

	// ErrLabelOverflow indicates that a name exceeded the segment count or
	// total length bounds.
	ErrLabelOverflow = errors.New("name exceeds length bounds")

	// ErrInvalidLabel indicates a malformed name segment, such as a reserved
	// length prefix or invalid UTF-8.
	ErrInvalidLabel = errors.New("invalid name segment")

	// ErrInvalidEnum indicates an unrecognized type or opcode where a known
	// value is required.
	ErrInvalidEnum = errors.New("unrecognized enumeration value")

	// ErrTooMany indicates that parsing a message would exceed a collection
	// capacity configured via Limits.
	ErrTooMany = errors.New("collection capacity exceeded")

	// ErrBufferFull indicates that the output buffer was too small for the
	// message being serialized.
	ErrBufferFull = errors.New("output buffer is full")
)
