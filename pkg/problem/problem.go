// Package problem defines the data model shared by the cache, the store,
// and the Discord surface: problems, topic tags, and difficulty levels.
package problem

import "errors"

// ErrNotFound reports that a problem id is unknown both locally and
// upstream. It is a valid outcome, not a failure.
var ErrNotFound = errors.New("problem not found")

// ErrUnknownDifficulty reports a difficulty value outside the closed set.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Problem is one item from the LeetCode catalog.
type Problem struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	ProblemID   int    `db:"problem_id"`
	URL         string `db:"url"`
	Difficulty  int    `db:"difficulty"`
	Description string `db:"description"`
	ThreadID    string `db:"thread_id"`
}

// Tag is a topic label attached to zero or more problems.
type Tag struct {
	ID   int64  `db:"id"`
	Name string `db:"tag_name"`
}

// WithTags is a problem together with its topic tags. It is the concrete
// product type exchanged with the remote client and held by the cache.
type WithTags struct {
	Problem Problem
	Tags    []Tag
}

// TagNames returns the tag names in stored order, deduplicated by id.
func (w WithTags) TagNames() []string {
	seen := make(map[string]bool, len(w.Tags))
	var names []string
	for _, t := range w.Tags {
		if seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		names = append(names, t.Name)
	}
	return names
}
