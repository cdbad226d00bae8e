// Package thread guarantees at most one discussion thread per
// (problem, guild) pair, reconciling the in-memory view, the store, and
// the platform-side thread creation.
package thread

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/leetforum/leetforum/internal/store"
	"github.com/leetforum/leetforum/pkg/problem"
)

// ErrNoForumChannel reports that a guild has no designated forum channel.
// Distinct from problem.ErrNotFound: the caller must configure one first.
var ErrNoForumChannel = errors.New("no forum channel configured for guild")

// ProblemGetter resolves an external problem id, typically the cache.
type ProblemGetter interface {
	Get(ctx context.Context, externalID int) (problem.WithTags, error)
}

// Creator makes the platform-side thread (title, body, labels) and
// returns its handle.
type Creator interface {
	CreateProblemThread(ctx context.Context, channelID string, wt problem.WithTags, daily bool) (string, error)
}

// Result reports the outcome of an ensure call.
type Result struct {
	Created  bool
	ThreadID string
	Problem  problem.WithTags
}

// Reconciler owns the in-memory view of forum channels and problem
// threads. Both maps are read-through over the store and write-through on
// creation; the lock never spans a store or network call.
type Reconciler struct {
	mu       sync.RWMutex
	channels map[string]store.ForumChannel
	threads  map[string]store.Thread

	store    store.Store
	problems ProblemGetter
	creator  Creator
}

// New creates a reconciler with empty in-memory views.
func New(s store.Store, problems ProblemGetter, creator Creator) *Reconciler {
	return &Reconciler{
		channels: make(map[string]store.ForumChannel),
		threads:  make(map[string]store.Thread),
		store:    s,
		problems: problems,
		creator:  creator,
	}
}

// Initialize preloads both views from the store.
func (r *Reconciler) Initialize(ctx context.Context) error {
	threads, err := r.store.ListThreads(ctx)
	if err != nil {
		return fmt.Errorf("init reconciler: %w", err)
	}
	channels, err := r.store.ListForumChannels(ctx)
	if err != nil {
		return fmt.Errorf("init reconciler: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range threads {
		r.threads[t.ThreadID] = t
	}
	for _, fc := range channels {
		r.channels[fc.GuildID] = fc
	}
	return nil
}

// SetForumChannel designates the channel hosting problem threads for a
// guild, overwriting any previous designation.
func (r *Reconciler) SetForumChannel(ctx context.Context, guildID, channelID string) error {
	fc, err := r.store.UpsertForumChannel(ctx, guildID, channelID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.channels[guildID] = *fc
	r.mu.Unlock()
	return nil
}

// GetForumChannel returns the designated channel for a guild, falling
// back to the store and backfilling memory on a hit.
func (r *Reconciler) GetForumChannel(ctx context.Context, guildID string) (store.ForumChannel, error) {
	r.mu.RLock()
	fc, ok := r.channels[guildID]
	r.mu.RUnlock()
	if ok {
		return fc, nil
	}

	stored, err := r.store.GetForumChannel(ctx, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ForumChannel{}, ErrNoForumChannel
	}
	if err != nil {
		return store.ForumChannel{}, err
	}

	r.mu.Lock()
	r.channels[guildID] = *stored
	r.mu.Unlock()
	return *stored, nil
}

// GetThreadByHandle looks up a thread record by its platform handle.
func (r *Reconciler) GetThreadByHandle(ctx context.Context, threadID string) (store.Thread, error) {
	r.mu.RLock()
	t, ok := r.threads[threadID]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	stored, err := r.store.GetThreadByHandle(ctx, threadID)
	if err != nil {
		return store.Thread{}, err
	}

	r.mu.Lock()
	r.threads[threadID] = *stored
	r.mu.Unlock()
	return *stored, nil
}

// EnsureThread guarantees a thread exists for (problem, guild). When one
// already exists its handle is returned and nothing is created.
func (r *Reconciler) EnsureThread(ctx context.Context, externalID int, guildID string) (Result, error) {
	return r.ensure(ctx, externalID, guildID, false)
}

// EnsureDailyThread is EnsureThread with the thread labeled as the daily
// problem instead of a plain one.
func (r *Reconciler) EnsureDailyThread(ctx context.Context, externalID int, guildID string) (Result, error) {
	return r.ensure(ctx, externalID, guildID, true)
}

func (r *Reconciler) ensure(ctx context.Context, externalID int, guildID string, daily bool) (Result, error) {
	wt, err := r.problems.Get(ctx, externalID)
	if err != nil {
		return Result{}, err
	}

	fc, err := r.GetForumChannel(ctx, guildID)
	if err != nil {
		return Result{}, err
	}

	existing, err := r.store.GetThread(ctx, wt.Problem.ID, fc.ID)
	if err == nil {
		return Result{Created: false, ThreadID: existing.ThreadID, Problem: wt}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Result{}, err
	}

	handle, err := r.creator.CreateProblemThread(ctx, fc.ChannelID, wt, daily)
	if err != nil {
		return Result{}, fmt.Errorf("create thread for problem %d: %w", externalID, err)
	}

	t := store.Thread{
		ProblemDBID:      wt.Problem.ID,
		ForumChannelDBID: fc.ID,
		ThreadID:         handle,
	}
	if err := r.store.SaveThread(ctx, &t); err != nil {
		return Result{}, err
	}

	r.mu.Lock()
	r.threads[handle] = t
	r.mu.Unlock()
	return Result{Created: true, ThreadID: handle, Problem: wt}, nil
}
