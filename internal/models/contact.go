// ABOUTME: Contacts discovered during people research for a session
// ABOUTME: The first contact of a session is primary, the rest stakeholders
package models

import "fmt"

// Contact types
const (
	ContactPrimary     = "primary"
	ContactStakeholder = "stakeholder"
)

// Contact is one person researched for a session
type Contact struct {
	ContactID       string `json:"contact_id" yaml:"contact_id"`
	SessionID       string `json:"session_id" yaml:"session_id"`
	ContactName     string `json:"contact_name" yaml:"contact_name"`
	ContactTitle    string `json:"contact_title,omitempty" yaml:"contact_title,omitempty"`
	ContactLinkedIn string `json:"contact_linkedin,omitempty" yaml:"contact_linkedin,omitempty"`
	BackgroundNotes string `json:"background_notes,omitempty" yaml:"background_notes,omitempty"`
	ContactType     string `json:"contact_type" yaml:"contact_type"`
}

// ContactID synthesizes "{session}-contact-{n}" for the n-th contact (1-based)
func ContactID(sessionID string, n int) string {
	return fmt.Sprintf("%s-contact-%d", sessionID, n)
}

// ContactTypeFor returns primary for the first contact and stakeholder otherwise
func ContactTypeFor(n int) string {
	if n == 1 {
		return ContactPrimary
	}
	return ContactStakeholder
}
