// ABOUTME: Session represents one sales-discovery engagement with a target company
// ABOUTME: Owns questions, content items, and contacts; archived by status flag only
package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// SessionStatus is the lifecycle flag of a session
type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionArchived SessionStatus = "archived"
)

// Session is the normalized discovery_sessions row
type Session struct {
	SessionID      string        `json:"session_id" yaml:"session_id"`
	SessionName    string        `json:"session_name" yaml:"session_name"`
	UserEmail      string        `json:"user_email" yaml:"user_email"`
	CompanyName    string        `json:"company_name" yaml:"company_name"`
	CompanyWebsite string        `json:"company_website" yaml:"company_website"`
	Competitor     string        `json:"competitor,omitempty" yaml:"competitor,omitempty"`
	ContactName    string        `json:"contact_name,omitempty" yaml:"contact_name,omitempty"`
	ContactTitle   string        `json:"contact_title,omitempty" yaml:"contact_title,omitempty"`
	Status         SessionStatus `json:"status" yaml:"status"`
	Notes          string        `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt      time.Time     `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" yaml:"updated_at"`
}

// Validate checks if the Session has valid data
func (s *Session) Validate() error {
	if s.SessionID == "" {
		return errors.New("session ID cannot be empty")
	}
	if s.Status == "" {
		return errors.New("session status cannot be empty")
	}
	return nil
}

// SessionDetail is a session with everything it owns, as loaded for display
type SessionDetail struct {
	Session   Session       `json:"session" yaml:"session"`
	Questions []QuestionQA  `json:"questions" yaml:"questions"`
	Content   []ContentItem `json:"content" yaml:"content"`
	Contacts  []Contact     `json:"contacts" yaml:"contacts"`
}

// QuestionQA joins a question with its authoritative answer, if any
type QuestionQA struct {
	Question
	AnswerText      string `json:"answer_text,omitempty" yaml:"answer_text,omitempty"`
	ConfidenceLevel int    `json:"confidence_level,omitempty" yaml:"confidence_level,omitempty"`
}

// CompanyFromWebsite derives a display company name from a website,
// e.g. "https://www.acme.io/about" -> "Acme".
func CompanyFromWebsite(website string) string {
	site := strings.TrimSpace(website)
	if site == "" {
		return ""
	}
	if !strings.Contains(site, "://") {
		site = "https://" + site
	}
	host := site
	if u, err := url.Parse(site); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// SessionName builds the human-readable name "{Company} - MM/DD/YYYY".
// The company comes from companyName, else the website, else "Unknown Company".
func SessionName(companyName, website string, at time.Time) string {
	name := strings.TrimSpace(companyName)
	if name == "" {
		name = CompanyFromWebsite(website)
	}
	if name == "" {
		name = "Unknown Company"
	}
	return fmt.Sprintf("%s - %s", name, at.Format("01/02/2006"))
}
