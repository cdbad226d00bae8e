package leetcode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leetforum/leetforum/pkg/problem"
)

const twoSumJSON = `{
	"title": "Two Sum",
	"questionId": "1",
	"url": "https://leetcode.com/problems/two-sum/",
	"difficulty": "Easy",
	"content": "<p>Given an array of integers <code>nums</code>...</p>",
	"topicTags": [{"name": "Array"}, {"name": "Hash Table"}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithURLs(srv.URL, srv.URL+"/catalog")
}

func TestFetchByID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/problem/1", r.URL.Path)
		w.Write([]byte(twoSumJSON))
	})

	wt, err := c.FetchByID(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, wt.Problem.ProblemID)
	assert.Equal(t, "Two Sum", wt.Problem.Title)
	assert.Equal(t, problem.Easy.Code(), wt.Problem.Difficulty)
	assert.Contains(t, wt.Problem.Description, "`nums`")
	require.Len(t, wt.Tags, 2)
	assert.Equal(t, "Array", wt.Tags[0].Name)
}

func TestFetchByID_NumericQuestionID(t *testing.T) {
	// Some endpoints serve questionId as a bare number.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"X","questionId":42,"difficulty":"Hard","topicTags":[]}`))
	})

	wt, err := c.FetchByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, wt.Problem.ProblemID)
}

func TestFetchByID_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.FetchByID(context.Background(), 99999)
	assert.ErrorIs(t, err, problem.ErrNotFound)
}

func TestFetchByID_UpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.FetchByID(context.Background(), 1)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusBadGateway, fe.Status)
}

func TestFetchByID_BadDifficulty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"X","questionId":"1","difficulty":"Weird","topicTags":[]}`))
	})

	_, err := c.FetchByID(context.Background(), 1)
	assert.ErrorIs(t, err, problem.ErrUnknownDifficulty)
}

func TestFetchDaily(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/daily", r.URL.Path)
		w.Write([]byte(twoSumJSON))
	})

	wt, err := c.FetchDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Two Sum", wt.Problem.Title)
}

func TestFetchCatalog(t *testing.T) {
	catalog := `[
		{"data": {"question": {"title": "Two Sum", "questionId": "1", "difficulty": "Easy", "topicTags": [{"name": "Array"}]}}},
		{"data": {"question": {"title": "Broken", "questionId": "2", "difficulty": "Nope", "topicTags": []}}},
		{"data": {}},
		{"data": {"question": {"title": "3Sum", "questionId": "15", "difficulty": "Medium", "topicTags": []}}}
	]`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/catalog", r.URL.Path)
		w.Write([]byte(catalog))
	})

	got, err := c.FetchCatalog(context.Background())
	require.NoError(t, err)

	// The malformed record and the empty entry are skipped, not fatal.
	assert.Len(t, got, 2)
	assert.Equal(t, "Two Sum", got[1].Problem.Title)
	assert.Equal(t, "3Sum", got[15].Problem.Title)
}

func TestHealthCheck(t *testing.T) {
	healthy := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	assert.NoError(t, healthy.HealthCheck(context.Background()))

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	assert.Error(t, down.HealthCheck(context.Background()))
}
