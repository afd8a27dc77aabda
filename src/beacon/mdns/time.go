package mdns

// Time is a monotonic millisecond counter from an arbitrary zero.
//
// A Server is at time zero when it is created. The driver moves time forward
// by passing TimeoutInput values; every Time the server reports in a
// TimeoutOutput is an offset from that same zero.
type Time uint64

// Millis returns the time v milliseconds after the zero point.
func Millis(v uint64) Time {
	return Time(v)
}

// Add returns the time d milliseconds after t.
func (t Time) Add(d uint64) Time {
	return t + Time(d)
}

// MillisUntil returns the number of milliseconds from t until other.
//
// If other is at or before t, it returns zero.
func (t Time) MillisUntil(other Time) uint64 {
	if other <= t {
		return 0
	}

	return uint64(other - t)
}

// Before returns true if t is strictly before other.
func (t Time) Before(other Time) bool {
	return t < other
}
