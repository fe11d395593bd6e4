// Package clock abstracts "now" so the analytics core is deterministic in tests.
package clock

import (
	"sync"
	"time"

	"github.com/julianstephens/habithero/internal/constants"
)

type Clock interface {
	Now() time.Time
}

// Real returns the actual current time in Location (time.Local when nil).
type Real struct {
	Location *time.Location
}

func (c Real) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// Today formats c.Now() as YYYY-MM-DD.
func Today(c Clock) string {
	return c.Now().Format(constants.DateFormat)
}

// Stub returns a fixed time. Safe for concurrent use.
type Stub struct {
	mu  sync.Mutex
	now time.Time
}

func NewStub(t time.Time) *Stub {
	return &Stub{now: t}
}

// NewStubDay returns a Stub set to noon UTC on day (YYYY-MM-DD). It panics on a bad day.
func NewStubDay(day string) *Stub {
	t, err := time.Parse(constants.DateFormat, day)
	if err != nil {
		panic(err)
	}
	return NewStub(t.Add(12 * time.Hour))
}

func (c *Stub) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *Stub) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// AddDays moves the clock forward by n calendar days.
func (c *Stub) AddDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}
