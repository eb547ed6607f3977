// ABOUTME: Discovery questions and answers belonging to a session
// ABOUTME: Defines categories, importance tiers, and confidence bounds
package models

import (
	"errors"
	"fmt"
)

// Question categories. The set is open; these are the ones the app generates.
const (
	CategoryTechnical   = "Technical"
	CategoryBusiness    = "Business"
	CategoryCompetitive = "Competitive"
)

// Importance tiers
const (
	ImportanceHigh   = "high"
	ImportanceMedium = "medium"
	ImportanceLow    = "low"
)

// Confidence bounds for answers
const (
	MinConfidence     = 1
	MaxConfidence     = 5
	DefaultConfidence = 3
)

// Question is one discovery question within a session
type Question struct {
	QuestionID    string `json:"question_id" yaml:"question_id"`
	SessionID     string `json:"session_id" yaml:"session_id"`
	Category      string `json:"category" yaml:"category"`
	QuestionText  string `json:"question_text" yaml:"question_text"`
	Explanation   string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Importance    string `json:"importance" yaml:"importance"`
	QuestionOrder int    `json:"question_order" yaml:"question_order"`
}

// Validate checks if the Question has valid data
func (q *Question) Validate() error {
	if q.QuestionID == "" {
		return errors.New("question ID cannot be empty")
	}
	if q.SessionID == "" {
		return errors.New("question session ID cannot be empty")
	}
	if q.QuestionOrder < 1 {
		return fmt.Errorf("question order must be positive, got %d", q.QuestionOrder)
	}
	switch q.Importance {
	case ImportanceHigh, ImportanceMedium, ImportanceLow:
	default:
		return fmt.Errorf("invalid importance %q", q.Importance)
	}
	return nil
}

// Answer is an answer to a question. SessionID duplicates the question's
// session and must agree with it.
type Answer struct {
	AnswerID        string `json:"answer_id" yaml:"answer_id"`
	QuestionID      string `json:"question_id" yaml:"question_id"`
	SessionID       string `json:"session_id" yaml:"session_id"`
	AnswerText      string `json:"answer_text" yaml:"answer_text"`
	ConfidenceLevel int    `json:"confidence_level" yaml:"confidence_level"`
}

// Validate checks if the Answer has valid data
func (a *Answer) Validate() error {
	if a.AnswerID == "" {
		return errors.New("answer ID cannot be empty")
	}
	if a.QuestionID == "" || a.SessionID == "" {
		return errors.New("answer must reference a question and a session")
	}
	if a.ConfidenceLevel < MinConfidence || a.ConfidenceLevel > MaxConfidence {
		return fmt.Errorf("confidence level must be %d-%d, got %d", MinConfidence, MaxConfidence, a.ConfidenceLevel)
	}
	return nil
}
