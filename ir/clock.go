package ir

import "time"

// Clock supplies a monotonic microsecond counter. The counter wraps at 32
// bits; differences must be taken with MicrosDiff, never plain subtraction.
type Clock interface {
	NowMicros() uint32
}

// MicrosDiff returns a-b on the wrapping 32-bit microsecond counter. The
// two's-complement conversion makes the result correct across wraparound as
// long as the real distance is under ~35 minutes.
func MicrosDiff(a, b uint32) int32 {
	return int32(a - b)
}

type systemClock struct {
	start time.Time
}

// NewSystemClock returns a Clock backed by the runtime monotonic clock,
// truncated to a wrapping 32-bit microsecond counter.
func NewSystemClock() Clock {
	return &systemClock{start: time.Now()}
}

func (c *systemClock) NowMicros() uint32 {
	return uint32(time.Since(c.start).Microseconds())
}
