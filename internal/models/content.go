// ABOUTME: Strategic content items (business case, roadmap, outreach) per session
// ABOUTME: At most one item exists per (session, content type) pair
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Known content types. The enumeration is open.
const (
	ContentBusinessCase        = "business_case"
	ContentRoadmap             = "roadmap"
	ContentCompetitiveStrategy = "competitive_strategy"
	ContentValueHypothesis     = "value_hypothesis"
	ContentOutreachEmails      = "outreach_emails"
	ContentLinkedInMessages    = "linkedin_messages"
)

// ContentItem holds either unstructured text or a structured document
type ContentItem struct {
	ContentID   string          `json:"content_id" yaml:"content_id"`
	SessionID   string          `json:"session_id" yaml:"session_id"`
	ContentType string          `json:"content_type" yaml:"content_type"`
	ContentText string          `json:"content_text,omitempty" yaml:"content_text,omitempty"`
	ContentData json.RawMessage `json:"content_data,omitempty" yaml:"-"`
}

// ContentID synthesizes the stable id "{session}-content-{type}"
func ContentID(sessionID, contentType string) string {
	return fmt.Sprintf("%s-content-%s", sessionID, contentType)
}

// IsStructured reports whether the item carries a JSON document
func (c *ContentItem) IsStructured() bool {
	return len(c.ContentData) > 0
}

// Validate checks if the ContentItem has valid data
func (c *ContentItem) Validate() error {
	if c.SessionID == "" {
		return errors.New("content session ID cannot be empty")
	}
	if strings.TrimSpace(c.ContentType) == "" {
		return errors.New("content type cannot be empty")
	}
	if c.IsStructured() && !json.Valid(c.ContentData) {
		return fmt.Errorf("content %s has invalid JSON data", c.ContentType)
	}
	return nil
}
