// ABOUTME: Derived per-session progress and per-user analytics
// ABOUTME: Read-only aggregates recomputed on every read
package models

import (
	"math"
	"time"
)

// SessionProgress is one row of the session_progress view
type SessionProgress struct {
	SessionID            string    `json:"session_id" yaml:"session_id"`
	SessionName          string    `json:"session_name" yaml:"session_name"`
	UserEmail            string    `json:"user_email" yaml:"user_email"`
	CompanyName          string    `json:"company_name" yaml:"company_name"`
	Status               string    `json:"status" yaml:"status"`
	UpdatedAt            time.Time `json:"updated_at" yaml:"updated_at"`
	TotalQuestions       int       `json:"total_questions" yaml:"total_questions"`
	AnsweredQuestions    int       `json:"answered_questions" yaml:"answered_questions"`
	CompletionPercentage float64   `json:"completion_percentage" yaml:"completion_percentage"`
	ContentTypesCount    int       `json:"content_types_count" yaml:"content_types_count"`
	AvailableContent     []string  `json:"available_content" yaml:"available_content"`
	ContactsCount        int       `json:"contacts_count" yaml:"contacts_count"`
}

// CompletionPercentage returns answered/total*100 rounded to one decimal,
// or 0 when there are no questions.
func CompletionPercentage(answered, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(answered)*1000/float64(total)) / 10
}

// Analytics aggregates all sessions of one user
type Analytics struct {
	UserEmail           string  `json:"user_email" yaml:"user_email"`
	TotalSessions       int     `json:"total_sessions" yaml:"total_sessions"`
	UniqueCompanies     int     `json:"unique_companies" yaml:"unique_companies"`
	AverageCompletion   float64 `json:"avg_completion" yaml:"avg_completion"`
	TotalQuestions      int     `json:"total_questions_asked" yaml:"total_questions_asked"`
	TotalAnswers        int     `json:"total_answers_given" yaml:"total_answers_given"`
	TotalContentCreated int     `json:"total_content_created" yaml:"total_content_created"`
}

// EntityCounts holds row counts of the normalized tables
type EntityCounts struct {
	Sessions  int `json:"sessions" yaml:"sessions"`
	Questions int `json:"questions" yaml:"questions"`
	Answers   int `json:"answers" yaml:"answers"`
	Content   int `json:"content" yaml:"content"`
	Contacts  int `json:"contacts" yaml:"contacts"`
}

// Add returns the field-wise sum of c and other
func (c EntityCounts) Add(other EntityCounts) EntityCounts {
	return EntityCounts{
		Sessions:  c.Sessions + other.Sessions,
		Questions: c.Questions + other.Questions,
		Answers:   c.Answers + other.Answers,
		Content:   c.Content + other.Content,
		Contacts:  c.Contacts + other.Contacts,
	}
}
