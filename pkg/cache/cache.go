// Package cache keeps an in-memory view of the problem catalog on top of
// the store, filling misses from the remote API. The map is the fast path;
// the store stays the source of truth.
package cache

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/leetforum/leetforum/internal/store"
	"github.com/leetforum/leetforum/pkg/problem"
)

// Source is the remote problem API consulted on cache misses.
type Source interface {
	FetchByID(ctx context.Context, id int) (problem.WithTags, error)
	FetchDaily(ctx context.Context) (problem.WithTags, error)
	FetchCatalog(ctx context.Context) (map[int]problem.WithTags, error)
}

// Cache maps external problem ids to problems with their tags. Entries
// never expire; RefreshAll replaces them wholesale. The lock guards only
// map access, never a network or store call.
type Cache struct {
	mu       sync.RWMutex
	problems map[int]problem.WithTags

	store  store.Store
	source Source
}

// New creates an empty cache over the given store and remote source.
func New(s store.Store, src Source) *Cache {
	return &Cache{
		problems: make(map[int]problem.WithTags),
		store:    s,
		source:   src,
	}
}

// Initialize loads every stored problem and its tags into the map and
// re-runs the idempotent persist path for each. One-time startup cost;
// any failure here is fatal to the process.
func (c *Cache) Initialize(ctx context.Context) error {
	problems, err := c.store.ListProblems(ctx)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	fmt.Fprintf(os.Stderr, "cache: loaded %d problems from the database\n", len(problems))

	for i := range problems {
		tags, err := c.store.ListProblemTags(ctx, problems[i].ID)
		if err != nil {
			return fmt.Errorf("init cache: %w", err)
		}
		wt := problem.WithTags{Problem: problems[i], Tags: tags}
		if err := c.store.SaveProblem(ctx, &wt.Problem, wt.Tags); err != nil {
			return fmt.Errorf("init cache: %w", err)
		}
		c.set(wt)
	}
	return nil
}

// Get returns the problem for an external id. A cache hit does no I/O.
// On a miss it fetches from the remote source, persists, and fills the
// map. An id unknown upstream returns problem.ErrNotFound.
func (c *Cache) Get(ctx context.Context, externalID int) (problem.WithTags, error) {
	c.mu.RLock()
	wt, ok := c.problems[externalID]
	c.mu.RUnlock()
	if ok {
		return wt, nil
	}

	wt, err := c.source.FetchByID(ctx, externalID)
	if err != nil {
		return problem.WithTags{}, err
	}
	if err := c.store.SaveProblem(ctx, &wt.Problem, wt.Tags); err != nil {
		return problem.WithTags{}, err
	}
	c.set(wt)
	return wt, nil
}

// GetDaily fetches today's featured problem. Always remote; the result is
// persisted and cached under the problem's own external id.
func (c *Cache) GetDaily(ctx context.Context) (problem.WithTags, error) {
	wt, err := c.source.FetchDaily(ctx)
	if err != nil {
		return problem.WithTags{}, err
	}
	if err := c.store.SaveProblem(ctx, &wt.Problem, wt.Tags); err != nil {
		return problem.WithTags{}, err
	}
	c.set(wt)
	return wt, nil
}

// RefreshAll fetches the full catalog, persists every problem that is not
// yet stored, and updates the map entry by entry. Long-running; never
// holds the lock across a fetch or persist.
func (c *Cache) RefreshAll(ctx context.Context) error {
	catalog, err := c.source.FetchCatalog(ctx)
	if err != nil {
		return fmt.Errorf("refresh cache: %w", err)
	}

	for _, wt := range catalog {
		if err := c.store.SaveProblem(ctx, &wt.Problem, wt.Tags); err != nil {
			return fmt.Errorf("refresh cache: problem %d: %w", wt.Problem.ProblemID, err)
		}
		c.set(wt)
	}
	fmt.Fprintf(os.Stderr, "cache: refreshed %d problems\n", len(catalog))
	return nil
}

// Len returns the number of cached problems.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.problems)
}

func (c *Cache) set(wt problem.WithTags) {
	c.mu.Lock()
	c.problems[wt.Problem.ProblemID] = wt
	c.mu.Unlock()
}
