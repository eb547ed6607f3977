// ABOUTME: Business accounts from the external account directory and search matches
// ABOUTME: Defines search strategies and the ranked match returned to callers
package models

import "time"

// Account is one record of the external account directory
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	OwnerID      string    `json:"owner_id,omitempty"`
	OwnerName    string    `json:"owner_name,omitempty"`
	Website      string    `json:"website,omitempty"`
	Industry     string    `json:"industry,omitempty"`
	Description  string    `json:"description,omitempty"`
	LastModified time.Time `json:"last_modified"`
	IsDeleted    bool      `json:"is_deleted"`
}

// SearchStrategy identifies how a query was ranked
type SearchStrategy string

const (
	StrategyBasic     SearchStrategy = "basic"
	StrategyMultiTerm SearchStrategy = "multi_term"
	StrategyFuzzy     SearchStrategy = "fuzzy"
	StrategyDirect    SearchStrategy = "direct"
)

// Priority tiers, lower is stronger evidence
const (
	PriorityDirect    = 0
	PriorityPrefix    = 1
	PrioritySimilar   = 2
	PriorityPhonetic  = 3
	PrioritySubstring = 2
)

// AccountMatch is an account with its relevance within one search
type AccountMatch struct {
	Account  Account        `json:"account"`
	Score    float64        `json:"relevance_score"`
	Priority int            `json:"priority"`
	Strategy SearchStrategy `json:"strategy"`
}

// Better reports whether m ranks ahead of other: lower priority, then higher
// score, then name ascending.
func (m AccountMatch) Better(other AccountMatch) bool {
	if m.Priority != other.Priority {
		return m.Priority < other.Priority
	}
	if m.Score != other.Score {
		return m.Score > other.Score
	}
	return m.Account.Name < other.Account.Name
}
