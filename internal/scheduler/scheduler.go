// Package scheduler runs the periodic jobs: wholesale cache refresh and
// the daily problem post.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/leetforum/leetforum/internal/store"
	"github.com/leetforum/leetforum/pkg/cache"
	"github.com/leetforum/leetforum/pkg/thread"
)

// Scheduler drives periodic cache refresh and daily thread creation.
type Scheduler struct {
	store      store.Store
	cache      *cache.Cache
	reconciler *thread.Reconciler
	refreshInt time.Duration
	dailyInt   time.Duration
}

// New creates a scheduler. Zero intervals fall back to weekly refresh and
// a daily post.
func New(s store.Store, c *cache.Cache, r *thread.Reconciler, refreshInt, dailyInt time.Duration) *Scheduler {
	if refreshInt == 0 {
		refreshInt = 7 * 24 * time.Hour
	}
	if dailyInt == 0 {
		dailyInt = 24 * time.Hour
	}
	return &Scheduler{
		store:      s,
		cache:      c,
		reconciler: r,
		refreshInt: refreshInt,
		dailyInt:   dailyInt,
	}
}

// Run starts the scheduler loop. Blocks until ctx is cancelled. Job
// failures are logged and retried on the next tick, never fatal.
func (s *Scheduler) Run(ctx context.Context) error {
	refreshTicker := time.NewTicker(s.refreshInt)
	dailyTicker := time.NewTicker(s.dailyInt)
	defer refreshTicker.Stop()
	defer dailyTicker.Stop()

	// The cache was initialized from the store at startup; the first
	// wholesale refresh waits for its tick. The daily post runs now so a
	// restart never skips a day.
	fmt.Fprintln(os.Stderr, "scheduler: posting daily problem...")
	s.postDaily(ctx)

	fmt.Fprintf(os.Stderr, "scheduler: running (refresh every %s, daily post every %s)\n",
		s.refreshInt, s.dailyInt)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "scheduler: stopped")
			return ctx.Err()
		case <-refreshTicker.C:
			fmt.Fprintln(os.Stderr, "scheduler: refreshing problem cache...")
			if err := s.cache.RefreshAll(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "  refresh error: %v\n", err)
			}
		case <-dailyTicker.C:
			fmt.Fprintln(os.Stderr, "scheduler: posting daily problem...")
			s.postDaily(ctx)
		}
	}
}

// postDaily fetches today's problem and ensures its thread in every guild
// with a configured forum channel.
func (s *Scheduler) postDaily(ctx context.Context) {
	wt, err := s.cache.GetDaily(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  daily fetch error: %v\n", err)
		return
	}

	channels, err := s.store.ListForumChannels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  list forum channels error: %v\n", err)
		return
	}

	for _, fc := range channels {
		res, err := s.reconciler.EnsureDailyThread(ctx, wt.Problem.ProblemID, fc.GuildID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  guild %s daily thread error: %v\n", fc.GuildID, err)
			continue
		}
		if res.Created {
			fmt.Fprintf(os.Stderr, "  guild %s: created daily thread %s\n", fc.GuildID, res.ThreadID)
		}
	}
}
