package utils

import (
	"context"
	"time"
)

// Pacer spaces out requests to the source site so that consecutive calls
// to Wait are at least delay apart.
type Pacer struct {
	delay    time.Duration
	lastCall time.Time
}

// NewPacer creates a Pacer with the given delay in milliseconds.
func NewPacer(delayMs int) *Pacer {
	return &Pacer{delay: time.Duration(delayMs) * time.Millisecond}
}

// Wait blocks until enough time has passed since the previous Wait, or
// until ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if !p.lastCall.IsZero() {
		if err := SleepContext(ctx, p.delay-time.Since(p.lastCall)); err != nil {
			return err
		}
	}
	p.lastCall = time.Now()
	return nil
}

// SleepContext sleeps for d or until ctx is done, whichever comes first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
