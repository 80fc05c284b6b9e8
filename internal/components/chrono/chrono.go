package chrono

import "time"

// API is the clock every time-dependent decision goes through, campaign
// activity windows are compared against API.Now().
type API interface {
	Now() time.Time
}

// StandardImpl is the wall clock, normalized to UTC since vendor timestamps are UTC instants.
type StandardImpl struct{}

func NewStandardImpl() StandardImpl {
	return StandardImpl{}
}

func (StandardImpl) Now() time.Time {
	return time.Now().UTC()
}

// FixedImpl always reports the same instant.
type FixedImpl struct {
	At time.Time
}

func (f FixedImpl) Now() time.Time {
	return f.At.UTC()
}
