// ABOUTME: Synthesized identifiers for migrated questions and answers
// ABOUTME: Pure functions of session, category, and position
package legacy

import (
	"fmt"
	"strings"
)

// SanitizeCategory strips spaces from a category so it can be embedded in ids.
// Distinct categories can sanitize to the same value ("Business Value" and
// "BusinessValue"); Decode reports that as a diagnostic.
func SanitizeCategory(category string) string {
	return strings.ReplaceAll(category, " ", "")
}

// QuestionID returns "{session}-q-{n}" for list-form questions (empty category)
// and "{session}-q-{SanitizedCategory}-{n}" for map-form questions, where n is
// the 1-based position within the list or category.
func QuestionID(sessionID, category string, n int) string {
	return synthesize(sessionID, "q", category, n)
}

// AnswerID mirrors QuestionID with an "a" marker
func AnswerID(sessionID, category string, n int) string {
	return synthesize(sessionID, "a", category, n)
}

func synthesize(sessionID, marker, category string, n int) string {
	if category == "" {
		return fmt.Sprintf("%s-%s-%d", sessionID, marker, n)
	}
	return fmt.Sprintf("%s-%s-%s-%d", sessionID, marker, SanitizeCategory(category), n)
}
