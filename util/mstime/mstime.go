package mstime

import (
	"sync/atomic"
	"time"
)

const (
	nanosecondsInMillisecond = int64(time.Millisecond / time.Nanosecond)
	millisecondsInSecond     = int64(time.Second / time.Millisecond)
)

// Clock is a source of the current time
type Clock interface {
	Now() time.Time
}

// Now returns the current local time, with precision of one millisecond
func Now() time.Time {
	return ReduceToMillisecondPrecision(time.Now())
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return Now()
}

// SystemClock returns the Clock backed by the system time
func SystemClock() Clock {
	return systemClock{}
}

// FixedClock is a Clock that always returns the last time it was set to
type FixedClock struct {
	unixMilli atomic.Int64
}

// NewFixedClock returns a FixedClock set to t
func NewFixedClock(t time.Time) *FixedClock {
	clock := &FixedClock{}
	clock.Set(t)
	return clock
}

// Now returns the time the clock was set to
func (clock *FixedClock) Now() time.Time {
	return UnixMilliToTime(clock.unixMilli.Load())
}

// Set sets the clock to t
func (clock *FixedClock) Set(t time.Time) {
	clock.unixMilli.Store(TimeToUnixMilli(t))
}

// UnixSeconds returns the current time of clock in seconds since the epoch,
// the resolution of block timestamps
func UnixSeconds(clock Clock) uint64 {
	seconds := clock.Now().Unix()
	if seconds < 0 {
		return 0
	}
	return uint64(seconds)
}

// UnixMilliToTime converts milliseconds since the epoch to a time.Time
func UnixMilliToTime(ms int64) time.Time {
	seconds := ms / millisecondsInSecond
	nanoseconds := (ms - seconds*millisecondsInSecond) * nanosecondsInMillisecond
	return time.Unix(seconds, nanoseconds)
}

// TimeToUnixMilli converts t to milliseconds since the epoch
func TimeToUnixMilli(t time.Time) int64 {
	return t.UnixNano() / nanosecondsInMillisecond
}

// ReduceToMillisecondPrecision truncates t to millisecond precision
func ReduceToMillisecondPrecision(t time.Time) time.Time {
	nanoseconds := int64(t.Nanosecond())
	millisecondPrecisionNanoSeconds := (nanoseconds / nanosecondsInMillisecond) * nanosecondsInMillisecond
	return time.Unix(t.Unix(), millisecondPrecisionNanoSeconds)
}
