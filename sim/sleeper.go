package sim

import (
	"context"
	"sync"
	"time"

	"github.com/mklimuk/bmi088"
)

var _ bmi088.Sleeper = &Sleeper{}

// Sleeper records requested waits and returns immediately.
type Sleeper struct {
	mx    sync.Mutex
	calls []time.Duration
}

func (s *Sleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mx.Lock()
	s.calls = append(s.calls, d)
	s.mx.Unlock()
	return nil
}

func (s *Sleeper) Calls() []time.Duration {
	s.mx.Lock()
	defer s.mx.Unlock()
	return append([]time.Duration(nil), s.calls...)
}

// Total returns the sum of all recorded waits.
func (s *Sleeper) Total() time.Duration {
	var total time.Duration
	for _, d := range s.Calls() {
		total += d
	}
	return total
}
