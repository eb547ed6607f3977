// ABOUTME: SQLite database schema for discovery storage
// ABOUTME: Creates the legacy table, normalized tables, account directory, and progress view
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Legacy JSON-blob session table (read-only input of the migration)
CREATE TABLE IF NOT EXISTS legacy_discovery_sessions (
    session_id TEXT PRIMARY KEY,
    session_name TEXT,
    user_email TEXT,
    company_name TEXT,
    company_website TEXT,
    competitor TEXT,
    contact_name TEXT,
    contact_title TEXT,
    created_at DATETIME,
    updated_at DATETIME,
    discovery_questions TEXT,
    business_case TEXT,
    competitor_strategy TEXT,
    value_hypothesis TEXT,
    roadmap_data TEXT,
    outreach_emails TEXT,
    linkedin_messages TEXT,
    people_research TEXT,
    notes TEXT,
    status TEXT
);

-- Normalized sessions
CREATE TABLE IF NOT EXISTS discovery_sessions (
    session_id TEXT PRIMARY KEY,
    session_name TEXT,
    user_email TEXT,
    company_name TEXT,
    company_website TEXT,
    competitor TEXT,
    contact_name TEXT,
    contact_title TEXT,
    status TEXT NOT NULL DEFAULT 'active',
    notes TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS discovery_questions (
    question_id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES discovery_sessions(session_id),
    category TEXT,
    question_text TEXT NOT NULL,
    explanation TEXT,
    importance TEXT NOT NULL DEFAULT 'medium',
    question_order INTEGER NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (session_id, question_order)
);

CREATE TABLE IF NOT EXISTS discovery_answers (
    answer_id TEXT PRIMARY KEY,
    question_id TEXT NOT NULL REFERENCES discovery_questions(question_id),
    session_id TEXT NOT NULL REFERENCES discovery_sessions(session_id),
    answer_text TEXT,
    confidence_level INTEGER NOT NULL DEFAULT 3 CHECK (confidence_level BETWEEN 1 AND 5),
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS session_content (
    content_id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES discovery_sessions(session_id),
    content_type TEXT NOT NULL,
    content_text TEXT,
    content_data TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (session_id, content_type)
);

CREATE TABLE IF NOT EXISTS session_contacts (
    contact_id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES discovery_sessions(session_id),
    contact_name TEXT,
    contact_title TEXT,
    contact_linkedin TEXT,
    background_notes TEXT,
    contact_type TEXT NOT NULL DEFAULT 'stakeholder',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- External account directory
CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    name TEXT,
    type TEXT,
    owner_id TEXT,
    owner_name TEXT,
    website TEXT,
    industry TEXT,
    description TEXT,
    last_modified DATETIME,
    is_deleted INTEGER NOT NULL DEFAULT 0
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_sessions_user ON discovery_sessions(user_email);
CREATE INDEX IF NOT EXISTS idx_questions_session ON discovery_questions(session_id);
CREATE INDEX IF NOT EXISTS idx_answers_question ON discovery_answers(question_id);
CREATE INDEX IF NOT EXISTS idx_answers_session ON discovery_answers(session_id);
CREATE INDEX IF NOT EXISTS idx_contacts_session ON session_contacts(session_id);
CREATE INDEX IF NOT EXISTS idx_accounts_modified ON accounts(last_modified);

-- Per-session progress, recomputed on every read
CREATE VIEW IF NOT EXISTS session_progress AS
WITH question_counts AS (
    SELECT session_id, COUNT(*) AS total
    FROM discovery_questions
    GROUP BY session_id
),
answer_counts AS (
    SELECT a.session_id, COUNT(DISTINCT a.question_id) AS answered
    FROM discovery_answers a
    JOIN discovery_questions q ON q.question_id = a.question_id
    WHERE TRIM(COALESCE(a.answer_text, '')) <> ''
    GROUP BY a.session_id
),
content_counts AS (
    SELECT session_id,
           COUNT(DISTINCT content_type) AS types,
           GROUP_CONCAT(DISTINCT content_type) AS available
    FROM session_content
    GROUP BY session_id
),
contact_counts AS (
    SELECT session_id, COUNT(*) AS contacts
    FROM session_contacts
    GROUP BY session_id
)
SELECT
    s.session_id,
    COALESCE(s.session_name, '') AS session_name,
    COALESCE(s.user_email, '') AS user_email,
    COALESCE(s.company_name, '') AS company_name,
    s.status,
    COALESCE(qc.total, 0) AS total_questions,
    COALESCE(ac.answered, 0) AS answered_questions,
    CASE
        WHEN COALESCE(qc.total, 0) = 0 THEN 0.0
        ELSE ROUND(COALESCE(ac.answered, 0) * 100.0 / qc.total, 1)
    END AS completion_percentage,
    COALESCE(cc.types, 0) AS content_types_count,
    COALESCE(cc.available, '') AS available_content,
    COALESCE(pc.contacts, 0) AS contacts_count
FROM discovery_sessions s
LEFT JOIN question_counts qc ON qc.session_id = s.session_id
LEFT JOIN answer_counts ac ON ac.session_id = s.session_id
LEFT JOIN content_counts cc ON cc.session_id = s.session_id
LEFT JOIN contact_counts pc ON pc.session_id = s.session_id;
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1

// Tables lists the normalized tables in dependency order
var Tables = []string{
	"discovery_sessions",
	"discovery_questions",
	"discovery_answers",
	"session_content",
	"session_contacts",
}
