package store

const schema = `
CREATE TABLE IF NOT EXISTS problems (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL,
    problem_id  INTEGER NOT NULL UNIQUE,
    url         TEXT NOT NULL,
    difficulty  INTEGER NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    thread_id   TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_problems_problem_id ON problems(problem_id);

CREATE TABLE IF NOT EXISTS topic_tags (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    tag_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS problem_tags (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    problem_id INTEGER NOT NULL REFERENCES problems(id) ON DELETE CASCADE,
    tag_id     INTEGER NOT NULL REFERENCES topic_tags(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_problem_tags_problem ON problem_tags(problem_id);

CREATE TABLE IF NOT EXISTS guild_forum_channel (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    channel_id TEXT NOT NULL UNIQUE,
    guild_id   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_forum_channel_guild ON guild_forum_channel(guild_id);

CREATE TABLE IF NOT EXISTS problem_threads (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    problem_db_id       INTEGER NOT NULL REFERENCES problems(id) ON DELETE CASCADE,
    forum_channel_db_id INTEGER NOT NULL REFERENCES guild_forum_channel(id) ON DELETE CASCADE,
    thread_id           TEXT NOT NULL UNIQUE,
    UNIQUE(problem_db_id, forum_channel_db_id)
);
`
