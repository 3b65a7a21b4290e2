package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements creating the audit database schema.
const Schema = `
CREATE TABLE IF NOT EXISTS audit (
    id TEXT PRIMARY KEY,
    timestamp TIMESTAMP NOT NULL,

    -- Caller
    client_key TEXT NOT NULL,
    country TEXT,

    -- Request
    route TEXT NOT NULL,
    method TEXT NOT NULL,
    request_url TEXT NOT NULL,
    target_url TEXT,
    request_headers TEXT,
    request_body TEXT,

    -- Outcome
    decision TEXT NOT NULL,
    response_status INTEGER,
    response_headers TEXT,
    response_body TEXT,
    streamed BOOLEAN NOT NULL DEFAULT 0,
    error TEXT,
    duration_ms INTEGER
);

CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit(timestamp);
CREATE INDEX IF NOT EXISTS idx_audit_client_key ON audit(client_key);
CREATE INDEX IF NOT EXISTS idx_audit_decision ON audit(decision);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`
