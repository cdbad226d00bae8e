package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leetforum/leetforum/internal/store"
	"github.com/leetforum/leetforum/pkg/problem"
)

// fakeSource is an in-memory Source that counts remote calls.
type fakeSource struct {
	problems map[int]problem.WithTags
	daily    problem.WithTags

	fetchCalls   int
	catalogCalls int
	dailyCalls   int
}

func (f *fakeSource) FetchByID(_ context.Context, id int) (problem.WithTags, error) {
	f.fetchCalls++
	wt, ok := f.problems[id]
	if !ok {
		return problem.WithTags{}, problem.ErrNotFound
	}
	return wt, nil
}

func (f *fakeSource) FetchDaily(context.Context) (problem.WithTags, error) {
	f.dailyCalls++
	return f.daily, nil
}

func (f *fakeSource) FetchCatalog(context.Context) (map[int]problem.WithTags, error) {
	f.catalogCalls++
	return f.problems, nil
}

func twoSum() problem.WithTags {
	return problem.WithTags{
		Problem: problem.Problem{
			Title:      "Two Sum",
			ProblemID:  1,
			URL:        "https://leetcode.com/problems/two-sum/",
			Difficulty: problem.Easy.Code(),
		},
		Tags: []problem.Tag{{Name: "Array"}, {Name: "Hash Table"}},
	}
}

func newFixture(t *testing.T, src *fakeSource) (*Cache, *store.SQLiteStore) {
	t.Helper()
	db, err := store.New(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, src), db
}

func TestGet_MissFetchesAndPersists(t *testing.T) {
	src := &fakeSource{problems: map[int]problem.WithTags{1: twoSum()}}
	c, db := newFixture(t, src)
	ctx := context.Background()

	wt, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Two Sum", wt.Problem.Title)
	assert.Equal(t, problem.Easy.Code(), wt.Problem.Difficulty)
	assert.Len(t, wt.Tags, 2)
	assert.Equal(t, 1, src.fetchCalls)

	// Persisted, not just cached.
	stored, err := db.GetProblem(ctx, 1)
	require.NoError(t, err)
	tags, err := db.ListProblemTags(ctx, stored.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestGet_SecondCallHitsCache(t *testing.T) {
	src := &fakeSource{problems: map[int]problem.WithTags{1: twoSum()}}
	c, _ := newFixture(t, src)
	ctx := context.Background()

	first, err := c.Get(ctx, 1)
	require.NoError(t, err)
	second, err := c.Get(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, first.Problem, second.Problem)
	assert.Equal(t, 1, src.fetchCalls, "cache hit must not call the remote source")
}

func TestGet_UnknownUpstream(t *testing.T) {
	src := &fakeSource{problems: map[int]problem.WithTags{}}
	c, _ := newFixture(t, src)

	_, err := c.Get(context.Background(), 404)
	assert.ErrorIs(t, err, problem.ErrNotFound)
}

func TestGetDaily_AlwaysRemote(t *testing.T) {
	src := &fakeSource{daily: twoSum()}
	c, _ := newFixture(t, src)
	ctx := context.Background()

	_, err := c.GetDaily(ctx)
	require.NoError(t, err)
	_, err = c.GetDaily(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.dailyCalls, "daily lookups never use the cache")

	// Cached under its own external id afterwards.
	wt, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Two Sum", wt.Problem.Title)
	assert.Zero(t, src.fetchCalls)
}

func TestRefreshAll(t *testing.T) {
	catalog := map[int]problem.WithTags{
		1: twoSum(),
		15: {Problem: problem.Problem{
			Title: "3Sum", ProblemID: 15, URL: "u", Difficulty: problem.Medium.Code(),
		}},
	}
	src := &fakeSource{problems: catalog}
	c, db := newFixture(t, src)
	ctx := context.Background()

	require.NoError(t, c.RefreshAll(ctx))
	assert.Equal(t, 2, c.Len())

	problems, err := db.ListProblems(ctx)
	require.NoError(t, err)
	assert.Len(t, problems, 2)

	// Refresh leaves existing rows untouched and lookups stay local.
	_, err = c.Get(ctx, 15)
	require.NoError(t, err)
	assert.Zero(t, src.fetchCalls)
}

func TestInitialize_LoadsFromStore(t *testing.T) {
	ctx := context.Background()

	db, err := store.New(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	seed := twoSum()
	require.NoError(t, db.SaveProblem(ctx, &seed.Problem, seed.Tags))

	src := &fakeSource{}
	c := New(db, src)
	require.NoError(t, c.Initialize(ctx))
	assert.Equal(t, 1, c.Len())

	wt, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Two Sum", wt.Problem.Title)
	assert.Len(t, wt.Tags, 2)
	assert.Zero(t, src.fetchCalls, "initialized entries come from the store")
}
