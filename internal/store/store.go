// Package store persists problems, topic tags, forum channel designations,
// and problem threads in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/leetforum/leetforum/pkg/problem"
)

// ForumChannel is the channel designated to host problem threads in a guild.
type ForumChannel struct {
	ID        int64  `db:"id"`
	ChannelID string `db:"channel_id"`
	GuildID   string `db:"guild_id"`
}

// Thread binds a platform thread handle to a (problem, forum channel) pair.
type Thread struct {
	ID               int64  `db:"id"`
	ProblemDBID      int64  `db:"problem_db_id"`
	ForumChannelDBID int64  `db:"forum_channel_db_id"`
	ThreadID         string `db:"thread_id"`
}

// Store is the persistence interface.
type Store interface {
	SaveProblem(ctx context.Context, p *problem.Problem, tags []problem.Tag) error
	GetProblem(ctx context.Context, externalID int) (*problem.Problem, error)
	ListProblems(ctx context.Context) ([]problem.Problem, error)
	ListProblemTags(ctx context.Context, problemDBID int64) ([]problem.Tag, error)

	UpsertForumChannel(ctx context.Context, guildID, channelID string) (*ForumChannel, error)
	GetForumChannel(ctx context.Context, guildID string) (*ForumChannel, error)
	ListForumChannels(ctx context.Context) ([]ForumChannel, error)

	SaveThread(ctx context.Context, t *Thread) error
	GetThread(ctx context.Context, problemDBID, channelDBID int64) (*Thread, error)
	GetThreadByHandle(ctx context.Context, threadID string) (*Thread, error)
	ListThreads(ctx context.Context) ([]Thread, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db    *sqlx.DB
	debug bool
}

// New opens a SQLite database and runs migrations.
func New(path string, debug bool) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, debug: debug}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) logf(format string, args ...any) {
	if s.debug {
		log.Printf("store: "+format, args...)
	}
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint error,
// the one conflict SaveProblem recovers from.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// inTx runs fn in a transaction: commit on success, rollback on any error.
func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// SaveProblem inserts a problem and its tags. If a row with the same
// external problem_id already exists, the existing row wins: p is
// overwritten with the stored identity and no fields are updated. Tags are
// looked up by name and created when missing. An association row is
// appended for every tag on every call.
func (s *SQLiteStore) SaveProblem(ctx context.Context, p *problem.Problem, tags []problem.Tag) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO problems (title, problem_id, url, difficulty, description, thread_id)
			VALUES (?, ?, ?, ?, ?, ?)
		`, p.Title, p.ProblemID, p.URL, p.Difficulty, p.Description, p.ThreadID)
		switch {
		case err == nil:
			p.ID, _ = res.LastInsertId()
		case isUniqueViolation(err):
			s.logf("problem %d already stored, reusing row", p.ProblemID)
			var existing problem.Problem
			if err := tx.GetContext(ctx, &existing,
				"SELECT * FROM problems WHERE problem_id = ?", p.ProblemID); err != nil {
				return fmt.Errorf("resolve existing problem %d: %w", p.ProblemID, err)
			}
			*p = existing
		default:
			return fmt.Errorf("insert problem %d: %w", p.ProblemID, err)
		}

		for i := range tags {
			var tag problem.Tag
			err := tx.GetContext(ctx, &tag,
				"SELECT * FROM topic_tags WHERE tag_name = ?", tags[i].Name)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				res, err := tx.ExecContext(ctx,
					"INSERT INTO topic_tags (tag_name) VALUES (?)", tags[i].Name)
				if err != nil {
					return fmt.Errorf("insert tag %q: %w", tags[i].Name, err)
				}
				tag.Name = tags[i].Name
				tag.ID, _ = res.LastInsertId()
			case err != nil:
				return fmt.Errorf("lookup tag %q: %w", tags[i].Name, err)
			}
			tags[i] = tag

			if _, err := tx.ExecContext(ctx,
				"INSERT INTO problem_tags (problem_id, tag_id) VALUES (?, ?)",
				p.ID, tag.ID); err != nil {
				return fmt.Errorf("link tag %q to problem %d: %w", tag.Name, p.ProblemID, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) GetProblem(ctx context.Context, externalID int) (*problem.Problem, error) {
	var p problem.Problem
	err := s.db.GetContext(ctx, &p, "SELECT * FROM problems WHERE problem_id = ?", externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, problem.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get problem %d: %w", externalID, err)
	}
	return &p, nil
}

func (s *SQLiteStore) ListProblems(ctx context.Context) ([]problem.Problem, error) {
	var problems []problem.Problem
	if err := s.db.SelectContext(ctx, &problems, "SELECT * FROM problems ORDER BY problem_id"); err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	return problems, nil
}

// ListProblemTags returns the tags linked to a problem, deduplicated even
// when the association table holds repeated rows for the same pair.
func (s *SQLiteStore) ListProblemTags(ctx context.Context, problemDBID int64) ([]problem.Tag, error) {
	var tags []problem.Tag
	err := s.db.SelectContext(ctx, &tags, `
		SELECT DISTINCT t.id, t.tag_name
		FROM topic_tags t
		JOIN problem_tags pt ON pt.tag_id = t.id
		WHERE pt.problem_id = ?
		ORDER BY t.id
	`, problemDBID)
	if err != nil {
		return nil, fmt.Errorf("list tags for problem row %d: %w", problemDBID, err)
	}
	return tags, nil
}

// UpsertForumChannel designates a channel for a guild, overwriting any
// previous designation.
func (s *SQLiteStore) UpsertForumChannel(ctx context.Context, guildID, channelID string) (*ForumChannel, error) {
	var fc ForumChannel
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &fc,
			"SELECT * FROM guild_forum_channel WHERE guild_id = ?", guildID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			res, err := tx.ExecContext(ctx,
				"INSERT INTO guild_forum_channel (guild_id, channel_id) VALUES (?, ?)",
				guildID, channelID)
			if err != nil {
				return fmt.Errorf("insert forum channel for guild %s: %w", guildID, err)
			}
			fc = ForumChannel{GuildID: guildID, ChannelID: channelID}
			fc.ID, _ = res.LastInsertId()
		case err != nil:
			return fmt.Errorf("lookup forum channel for guild %s: %w", guildID, err)
		default:
			if _, err := tx.ExecContext(ctx,
				"UPDATE guild_forum_channel SET channel_id = ? WHERE id = ?",
				channelID, fc.ID); err != nil {
				return fmt.Errorf("update forum channel for guild %s: %w", guildID, err)
			}
			fc.ChannelID = channelID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &fc, nil
}

func (s *SQLiteStore) GetForumChannel(ctx context.Context, guildID string) (*ForumChannel, error) {
	var fc ForumChannel
	err := s.db.GetContext(ctx, &fc, "SELECT * FROM guild_forum_channel WHERE guild_id = ?", guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("get forum channel for guild %s: %w", guildID, err)
	}
	return &fc, nil
}

func (s *SQLiteStore) ListForumChannels(ctx context.Context) ([]ForumChannel, error) {
	var channels []ForumChannel
	if err := s.db.SelectContext(ctx, &channels, "SELECT * FROM guild_forum_channel"); err != nil {
		return nil, fmt.Errorf("list forum channels: %w", err)
	}
	return channels, nil
}

func (s *SQLiteStore) SaveThread(ctx context.Context, t *Thread) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO problem_threads (problem_db_id, forum_channel_db_id, thread_id)
			VALUES (?, ?, ?)
		`, t.ProblemDBID, t.ForumChannelDBID, t.ThreadID)
		if err != nil {
			return fmt.Errorf("insert thread %s: %w", t.ThreadID, err)
		}
		t.ID, _ = res.LastInsertId()
		return nil
	})
}

func (s *SQLiteStore) GetThread(ctx context.Context, problemDBID, channelDBID int64) (*Thread, error) {
	var t Thread
	err := s.db.GetContext(ctx, &t,
		"SELECT * FROM problem_threads WHERE problem_db_id = ? AND forum_channel_db_id = ?",
		problemDBID, channelDBID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("get thread for problem row %d: %w", problemDBID, err)
	}
	return &t, nil
}

func (s *SQLiteStore) GetThreadByHandle(ctx context.Context, threadID string) (*Thread, error) {
	var t Thread
	err := s.db.GetContext(ctx, &t, "SELECT * FROM problem_threads WHERE thread_id = ?", threadID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("get thread %s: %w", threadID, err)
	}
	return &t, nil
}

func (s *SQLiteStore) ListThreads(ctx context.Context) ([]Thread, error) {
	var threads []Thread
	if err := s.db.SelectContext(ctx, &threads, "SELECT * FROM problem_threads"); err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	return threads, nil
}
