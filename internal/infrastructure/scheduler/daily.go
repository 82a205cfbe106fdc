// Package scheduler triggers one scrape run per day at a configured wall
// clock time.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"tenderscan/internal/ports"
)

// DailyScheduler fires at the same HH:MM every day in its timezone.
type DailyScheduler struct {
	hour   int
	minute int
	loc    *time.Location
	stop   chan struct{}
}

var _ ports.Scheduler = (*DailyScheduler)(nil)

// NewDailyScheduler parses at ("HH:MM") and the IANA timezone name.
func NewDailyScheduler(at, timezone string) (*DailyScheduler, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(at, "%d:%d", &hour, &minute); err != nil {
		return nil, fmt.Errorf("parse schedule time %q: %w", at, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("schedule time %q out of range", at)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	return &DailyScheduler{hour: hour, minute: minute, loc: loc}, nil
}

// Start launches the timing loop. The job runs in the loop goroutine, so a
// long scrape simply delays checking for the next slot.
func (d *DailyScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if d.stop != nil {
		return nil
	}

	d.stop = make(chan struct{})
	go func() {
		for {
			wait := time.Until(d.next(time.Now().In(d.loc)))
			timer := time.NewTimer(wait)
			select {
			case t := <-timer.C:
				job(t)
			case <-ctx.Done():
				timer.Stop()
				return
			case <-d.stop:
				timer.Stop()
				return
			}
		}
	}()

	return nil
}

// Stop halts the timing loop.
func (d *DailyScheduler) Stop(ctx context.Context) error {
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	d.stop = nil
	return nil
}

// next returns the first HH:MM occurrence strictly after now.
func (d *DailyScheduler) next(now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), d.hour, d.minute, 0, 0, d.loc)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}
