// ABOUTME: LegacySession mirrors one row of the pre-migration JSON-blob session table
// ABOUTME: Semi-structured columns stay raw JSON until the decoder interprets them
package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// LegacySession is a row of legacy_discovery_sessions. Nullable text columns
// are pointers; semi-structured columns are raw JSON where nil means NULL.
type LegacySession struct {
	SessionID          string
	SessionName        *string
	UserEmail          *string
	CompanyName        *string
	CompanyWebsite     *string
	Competitor         *string
	ContactName        *string
	ContactTitle       *string
	CreatedAt          *time.Time
	UpdatedAt          *time.Time
	DiscoveryQuestions json.RawMessage
	BusinessCase       *string
	CompetitorStrategy *string
	ValueHypothesis    *string
	RoadmapData        json.RawMessage
	OutreachEmails     json.RawMessage
	LinkedInMessages   json.RawMessage
	PeopleResearch     json.RawMessage
	Notes              *string
	Status             *string
}

// IsNullJSON reports whether raw is SQL NULL, empty, or the JSON null literal
func IsNullJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Deref returns the pointed-to string or "" for NULL
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// BackupInfo describes the snapshot taken before a migration writes anything
type BackupInfo struct {
	Table     string    `json:"table" yaml:"table"`
	Rows      int       `json:"rows" yaml:"rows"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
