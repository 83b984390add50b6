// ABOUTME: SQLite database schema for carrier guideline storage
// ABOUTME: Creates carrier, document, chunk, vector and evaluation tables
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Carriers that recommendations can point at
CREATE TABLE IF NOT EXISTS carriers (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    preference_rank INTEGER NOT NULL DEFAULT 0,
    states TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Guideline documents, one row per version
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    carrier_id TEXT NOT NULL REFERENCES carriers(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    effective_date TEXT NOT NULL,
    version INTEGER NOT NULL,
    source_location TEXT,
    content_hash TEXT NOT NULL,
    superseded_by TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Chunk text; bodies concatenate back to the document
CREATE TABLE IF NOT EXISTS chunks (
    id TEXT PRIMARY KEY,
    document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    sequence INTEGER NOT NULL,
    section TEXT,
    text TEXT NOT NULL,
    overlap_len INTEGER NOT NULL DEFAULT 0,
    token_estimate INTEGER NOT NULL DEFAULT 0,
    embedded INTEGER NOT NULL DEFAULT 0,
    UNIQUE(document_id, sequence)
);

-- Similarity index entries, keyed by chunk
CREATE TABLE IF NOT EXISTS vectors (
    chunk_id TEXT PRIMARY KEY,
    document_id TEXT NOT NULL,
    carrier_id TEXT NOT NULL,
    section TEXT,
    sequence INTEGER NOT NULL DEFAULT 0,
    vector BLOB NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Cached evaluation results
CREATE TABLE IF NOT EXISTS evaluations (
    id TEXT PRIMARY KEY,
    fingerprint TEXT NOT NULL,
    profile TEXT NOT NULL,
    recommendations TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_title_version ON documents(carrier_id, title, version);
CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id, sequence);
CREATE INDEX IF NOT EXISTS idx_vectors_carrier ON vectors(carrier_id);
CREATE INDEX IF NOT EXISTS idx_vectors_document ON vectors(document_id);
CREATE INDEX IF NOT EXISTS idx_evaluations_fingerprint ON evaluations(fingerprint, created_at);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
