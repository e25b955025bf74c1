// Package scheduler runs periodic background jobs, currently the daily price refresh.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// PriceUpdater extends stored prices up to now. service.PriceService implements it.
type PriceUpdater interface {
	Update(ctx context.Context, symbols []string, now time.Time) (map[string]int, error)
}

// Scheduler wraps a cron runner. Jobs never overlap with themselves and a panicking job
// is logged instead of taking the process down.
type Scheduler struct {
	cron *cron.Cron
	log  logrus.FieldLogger
	now  func() time.Time
}

// New creates a stopped Scheduler. Schedules are interpreted in UTC.
func New(log logrus.FieldLogger) *Scheduler {
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
		now: time.Now,
	}
}

// AddPriceRefresh schedules updater on spec, a standard five-field cron expression or a
// descriptor such as "@daily". Each run gets at most timeout to finish.
func (s *Scheduler) AddPriceRefresh(spec string, updater PriceUpdater, symbols []string, timeout time.Duration) error {
	if _, err := s.cron.AddFunc(spec, s.priceRefreshJob(updater, symbols, timeout)); err != nil {
		return fmt.Errorf("invalid price refresh schedule %q: %w", spec, err)
	}
	s.log.WithFields(logrus.Fields{
		"schedule": spec,
		"symbols":  symbols,
	}).Info("Price refresh scheduled")
	return nil
}

func (s *Scheduler) priceRefreshJob(updater PriceUpdater, symbols []string, timeout time.Duration) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := s.now()
		stored, err := updater.Update(ctx, symbols, start.UTC())
		if err != nil {
			s.log.WithError(err).Error("Scheduled price refresh failed")
			return
		}
		s.log.WithFields(logrus.Fields{
			"symbols":  len(stored),
			"duration": time.Since(start).String(),
		}).Info("Scheduled price refresh complete")
	}
}

// Jobs returns the number of scheduled jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	log logrus.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(fields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithError(err).WithFields(fields(keysAndValues)).Error("cron: " + msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
