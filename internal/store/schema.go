package store

// schemaDDL is the complete database schema. All statements are
// idempotent so EnsureSchema can run on every boot.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    display_name  TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sessions (
    token      TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS lists (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    owner_id   TEXT NOT NULL REFERENCES users(id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS list_members (
    list_id   TEXT NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
    user_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role      TEXT NOT NULL,
    joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (list_id, user_id)
);

CREATE TABLE IF NOT EXISTS invites (
    code       TEXT PRIMARY KEY,
    list_id    TEXT NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
    role       TEXT NOT NULL,
    created_by TEXT NOT NULL REFERENCES users(id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    expires_at TIMESTAMPTZ NOT NULL,
    used_by    TEXT,
    used_at    TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS entries (
    id         TEXT PRIMARY KEY,
    list_id    TEXT NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
    catalog_id BIGINT NOT NULL DEFAULT 0,
    media_type TEXT NOT NULL,
    title      TEXT NOT NULL,
    year       INT NOT NULL DEFAULT 0,
    overview   TEXT NOT NULL DEFAULT '',
    poster_url TEXT NOT NULL DEFAULT '',
    rating     TEXT NOT NULL DEFAULT '',
    stub       BOOLEAN NOT NULL DEFAULT false,
    watches    JSONB NOT NULL DEFAULT '[]',
    meta       JSONB NOT NULL DEFAULT '{}',
    added_by   TEXT NOT NULL REFERENCES users(id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS entries_list_idx ON entries (list_id, created_at);
CREATE INDEX IF NOT EXISTS sessions_user_idx ON sessions (user_id);
CREATE INDEX IF NOT EXISTS invites_list_idx ON invites (list_id);
`
