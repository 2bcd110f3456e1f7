package store

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies timestamps to the stores.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// IDGenerator returns a new record ID.
type IDGenerator func() string

// ShortID returns the first eight characters of a random UUID.
func ShortID() string {
	return uuid.NewString()[:8]
}

type options struct {
	clock Clock
	newID IDGenerator
}

// Option configures a store.
type Option func(*options)

// WithClock sets the clock used to stamp records.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithIDGenerator sets the generator used for transaction and log entry IDs.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) {
		o.newID = g
	}
}

func buildOptions(opts []Option) options {
	o := options{
		clock: SystemClock,
		newID: ShortID,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// now returns the clock's time in UTC without a monotonic reading.
func (o options) now() time.Time {
	return o.clock.Now().UTC()
}
