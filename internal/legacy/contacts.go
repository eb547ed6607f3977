// ABOUTME: Flattens the legacy people_research array into session contacts
// ABOUTME: Numbers contacts in source order; the first is the primary contact
package legacy

import (
	"encoding/json"
	"fmt"

	"github.com/harper/discovery/internal/models"
)

// DecodeContacts flattens a people_research array. Non-object elements are
// skipped and counted; numbering is dense over the kept contacts so that
// contact #1 (primary) exists whenever any contact does.
func DecodeContacts(sessionID string, raw json.RawMessage) ([]models.Contact, int, error) {
	payload, err := unwrap(raw)
	if err != nil {
		return nil, 0, err
	}
	if payload == nil || payload[0] != '[' {
		return nil, 0, nil
	}

	var people []json.RawMessage
	if err := json.Unmarshal(payload, &people); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var (
		contacts []models.Contact
		skipped  int
	)
	for _, person := range people {
		var fields map[string]any
		if err := json.Unmarshal(person, &fields); err != nil || fields == nil {
			skipped++
			continue
		}

		n := len(contacts) + 1
		contacts = append(contacts, models.Contact{
			ContactID:       models.ContactID(sessionID, n),
			SessionID:       sessionID,
			ContactName:     stringField(fields, "name"),
			ContactTitle:    stringField(fields, "title"),
			ContactLinkedIn: firstString(fields, "linkedin", "linkedin_url"),
			BackgroundNotes: firstString(fields, "background", "summary"),
			ContactType:     models.ContactTypeFor(n),
		})
	}

	return contacts, skipped, nil
}

func firstString(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := stringField(fields, key); s != "" {
			return s
		}
	}
	return ""
}
