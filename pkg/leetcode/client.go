// Package leetcode fetches problem metadata from the public LeetCode
// mirror APIs and converts it into the concrete problem model.
package leetcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/leetforum/leetforum/pkg/problem"
)

const (
	defaultBaseURL = "https://leetcode-api-pied.vercel.app"
	// Full-catalog dump maintained alongside the API; one big JSON array.
	defaultCatalogURL = "https://raw.githubusercontent.com/noworneverev/leetcode-api/refs/heads/main/data/leetcode_questions.json"
)

// FetchError reports a non-success response from the remote API.
type FetchError struct {
	Op     string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: upstream status %d", e.Op, e.Status)
}

// Client talks to the LeetCode metadata APIs.
type Client struct {
	client     *http.Client
	baseURL    string
	catalogURL string
}

// New creates a client against the public endpoints.
func New() *Client {
	return NewWithURLs(defaultBaseURL, defaultCatalogURL)
}

// NewWithURLs creates a client against custom endpoints. Used by tests.
func NewWithURLs(baseURL, catalogURL string) *Client {
	return &Client{
		client:     &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		catalogURL: catalogURL,
	}
}

// flexInt decodes a JSON number that some endpoints serve as a string.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("parse question id %q: %w", s, err)
	}
	*f = flexInt(n)
	return nil
}

type questionJSON struct {
	Title      string    `json:"title"`
	QuestionID flexInt   `json:"questionId"`
	URL        string    `json:"url"`
	Difficulty string    `json:"difficulty"`
	Content    string    `json:"content"`
	TopicTags  []tagJSON `json:"topicTags"`
}

type tagJSON struct {
	Name string `json:"name"`
}

type catalogEntryJSON struct {
	Data struct {
		Question questionJSON `json:"question"`
	} `json:"data"`
}

// parseQuestion converts one API question into the problem model.
// Rendering the description dominates the cost.
func parseQuestion(q questionJSON) (problem.WithTags, error) {
	diff, err := problem.DifficultyFromLabel(q.Difficulty)
	if err != nil {
		return problem.WithTags{}, fmt.Errorf("question %d: %w", int(q.QuestionID), err)
	}

	p := problem.Problem{
		Title:       q.Title,
		ProblemID:   int(q.QuestionID),
		URL:         q.URL,
		Difficulty:  diff.Code(),
		Description: problem.RenderDescription(q.Content),
	}

	var tags []problem.Tag
	seen := make(map[string]bool, len(q.TopicTags))
	for _, t := range q.TopicTags {
		if t.Name == "" || seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		tags = append(tags, problem.Tag{Name: t.Name})
	}

	return problem.WithTags{Problem: p, Tags: tags}, nil
}

func (c *Client) get(ctx context.Context, url, op string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("User-Agent", "leetforum/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{Op: op, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

// FetchByID fetches a single problem by its external id. An upstream 404
// maps to problem.ErrNotFound, a valid outcome.
func (c *Client) FetchByID(ctx context.Context, id int) (problem.WithTags, error) {
	return c.fetchOne(ctx, strconv.Itoa(id), fmt.Sprintf("fetch problem %d", id))
}

// FetchBySlug fetches a single problem by its URL slug.
func (c *Client) FetchBySlug(ctx context.Context, slug string) (problem.WithTags, error) {
	return c.fetchOne(ctx, slug, fmt.Sprintf("fetch problem %q", slug))
}

func (c *Client) fetchOne(ctx context.Context, key, op string) (problem.WithTags, error) {
	var q questionJSON
	err := c.get(ctx, c.baseURL+"/problem/"+key, op, &q)
	var fe *FetchError
	if errors.As(err, &fe) && fe.Status == http.StatusNotFound {
		return problem.WithTags{}, problem.ErrNotFound
	}
	if err != nil {
		return problem.WithTags{}, err
	}
	return parseQuestion(q)
}

// FetchDaily fetches today's featured problem.
func (c *Client) FetchDaily(ctx context.Context) (problem.WithTags, error) {
	var q questionJSON
	if err := c.get(ctx, c.baseURL+"/daily", "fetch daily problem", &q); err != nil {
		return problem.WithTags{}, err
	}
	return parseQuestion(q)
}

// FetchCatalog fetches the entire problem catalog keyed by external id.
// Records with an unrecognized difficulty are skipped, not fatal.
func (c *Client) FetchCatalog(ctx context.Context) (map[int]problem.WithTags, error) {
	var entries []catalogEntryJSON
	if err := c.get(ctx, c.catalogURL, "fetch catalog", &entries); err != nil {
		return nil, err
	}

	result := make(map[int]problem.WithTags, len(entries))
	for _, e := range entries {
		q := e.Data.Question
		if q.Title == "" && q.QuestionID == 0 {
			continue
		}
		wt, err := parseQuestion(q)
		if err != nil {
			fmt.Fprintf(os.Stderr, "catalog: skipping %v\n", err)
			continue
		}
		result[wt.Problem.ProblemID] = wt
	}
	return result, nil
}

// HealthCheck probes the API root. A nil error means the API answered 200.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{Op: "health check", Status: resp.StatusCode}
	}
	return nil
}
