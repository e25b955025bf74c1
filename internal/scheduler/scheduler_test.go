package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/logger"
)

type fakeUpdater struct {
	calls   int
	symbols []string
	now     time.Time
	err     error
}

func (f *fakeUpdater) Update(_ context.Context, symbols []string, now time.Time) (map[string]int, error) {
	f.calls++
	f.symbols = symbols
	f.now = now
	if f.err != nil {
		return nil, f.err
	}
	return map[string]int{"BTC": 1}, nil
}

// TestScheduler_AddPriceRefresh tests schedule validation.
//
// WHY: A typo in PRICE_REFRESH_SCHEDULE should stop the server at startup rather than
// leave prices silently stale.
func TestScheduler_AddPriceRefresh(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "descriptor", spec: "@daily"},
		{name: "five fields", spec: "15 2 * * *"},
		{name: "every", spec: "@every 6h"},
		{name: "garbage", spec: "every day at two", wantErr: true},
		{name: "six fields", spec: "0 15 2 * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(logger.Discard())
			err := s.AddPriceRefresh(tt.spec, &fakeUpdater{}, nil, time.Minute)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AddPriceRefresh(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			wantJobs := 1
			if tt.wantErr {
				wantJobs = 0
			}
			if s.Jobs() != wantJobs {
				t.Errorf("Jobs() = %d, want %d", s.Jobs(), wantJobs)
			}
		})
	}
}

// TestScheduler_priceRefreshJob tests one run of the refresh job.
func TestScheduler_priceRefreshJob(t *testing.T) {
	fixed := time.Date(2024, 6, 1, 2, 15, 0, 0, time.UTC)

	t.Run("passes symbols and time", func(t *testing.T) {
		s := New(logger.Discard())
		s.now = func() time.Time { return fixed }
		u := &fakeUpdater{}

		s.priceRefreshJob(u, []string{"BTC", "ETH"}, time.Minute)()

		if u.calls != 1 {
			t.Fatalf("Update called %d times, want 1", u.calls)
		}
		if len(u.symbols) != 2 || !u.now.Equal(fixed) {
			t.Errorf("Update(%v, %v)", u.symbols, u.now)
		}
	})

	t.Run("errors are logged not raised", func(t *testing.T) {
		s := New(logger.Discard())
		u := &fakeUpdater{err: errors.New("rate limited")}

		s.priceRefreshJob(u, nil, time.Minute)()

		if u.calls != 1 {
			t.Errorf("Update called %d times, want 1", u.calls)
		}
	})
}

// TestScheduler_StartStop tests that a started scheduler stops cleanly.
func TestScheduler_StartStop(t *testing.T) {
	s := New(logger.Discard())
	if err := s.AddPriceRefresh("@daily", &fakeUpdater{}, nil, time.Minute); err != nil {
		t.Fatalf("AddPriceRefresh() returned unexpected error: %v", err)
	}
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop() returned unexpected error: %v", err)
	}
}
