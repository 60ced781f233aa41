package app

import (
	"context"
	"time"

	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/business/ledger/domain"
	"github.com/killerboyyy777/777-Steam-Gem-Tf2key-Bot/internal/logger"
)

// WindowResetter is the part of the ledger the scheduler drives.
type WindowResetter interface {
	ResetAll(ctx context.Context, window domain.Window) error
}

// WindowScheduler zeroes the daily window at 00:00 UTC and the weekly window
// at Monday 00:00 UTC.
type WindowScheduler struct {
	ledger WindowResetter
	log    logger.LoggerInterface
	now    func() time.Time
	after  func(time.Duration) <-chan time.Time
}

// NewWindowScheduler creates a scheduler on the wall clock.
func NewWindowScheduler(ledger WindowResetter, log logger.LoggerInterface) *WindowScheduler {
	return &WindowScheduler{
		ledger: ledger,
		log:    log,
		now:    time.Now,
		after:  time.After,
	}
}

// NextMidnight returns the first UTC midnight strictly after t.
func NextMidnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

// Run blocks until ctx is done.
func (s *WindowScheduler) Run(ctx context.Context) {
	for {
		next := NextMidnight(s.now())
		select {
		case <-ctx.Done():
			return
		case <-s.after(next.Sub(s.now())):
		}
		s.fire(ctx, next)
	}
}

func (s *WindowScheduler) fire(ctx context.Context, boundary time.Time) {
	windows := []domain.Window{domain.Daily}
	if boundary.Weekday() == time.Monday {
		windows = append(windows, domain.Weekly)
	}
	for _, w := range windows {
		if err := s.ledger.ResetAll(ctx, w); err != nil {
			s.log.Error(ctx, "ledger window reset failed", "window", w, "error", err)
		}
	}
}
