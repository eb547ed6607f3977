// ABOUTME: Import functionality for legacy sessions, account directory exports, and session files
// ABOUTME: Reads YAML or JSON files, preserving object key order for JSON columns
package sqlite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/harper/discovery/internal/models"
)

// LegacyRecord is one legacy session as it appears in an export file
type LegacyRecord struct {
	SessionID          string          `json:"session_id"`
	SessionName        *string         `json:"session_name"`
	UserEmail          *string         `json:"user_email"`
	CompanyName        *string         `json:"company_name"`
	CompanyWebsite     *string         `json:"company_website"`
	Competitor         *string         `json:"competitor"`
	ContactName        *string         `json:"contact_name"`
	ContactTitle       *string         `json:"contact_title"`
	CreatedAt          *string         `json:"created_at"`
	UpdatedAt          *string         `json:"updated_at"`
	DiscoveryQuestions json.RawMessage `json:"discovery_questions"`
	BusinessCase       *string         `json:"business_case"`
	CompetitorStrategy *string         `json:"competitor_strategy"`
	ValueHypothesis    *string         `json:"value_hypothesis"`
	RoadmapData        json.RawMessage `json:"roadmap_data"`
	OutreachEmails     json.RawMessage `json:"outreach_emails"`
	LinkedInMessages   json.RawMessage `json:"linkedin_messages"`
	PeopleResearch     json.RawMessage `json:"people_research"`
	Notes              *string         `json:"notes"`
	Status             *string         `json:"status"`
}

// AccountRecord is one account as it appears in an export file
type AccountRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	OwnerID      string `json:"owner_id"`
	OwnerName    string `json:"owner_name"`
	Website      string `json:"website"`
	Industry     string `json:"industry"`
	Description  string `json:"description"`
	LastModified string `json:"last_modified"`
	IsDeleted    bool   `json:"is_deleted"`
}

// LoadLegacyFile reads legacy sessions from a YAML or JSON file
func LoadLegacyFile(path string) ([]models.LegacySession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseLegacy(data)
}

// ParseLegacy parses a legacy export: either a list of records or an object
// with a "sessions" list
func ParseLegacy(data []byte) ([]models.LegacySession, error) {
	var records []LegacyRecord
	if err := decodeExport(data, "sessions", &records); err != nil {
		return nil, err
	}

	sessions := make([]models.LegacySession, 0, len(records))
	for i, r := range records {
		created, err := parseTimestamp(r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("session %d created_at: %w", i+1, err)
		}
		updated, err := parseTimestamp(r.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("session %d updated_at: %w", i+1, err)
		}
		sessions = append(sessions, models.LegacySession{
			SessionID:          r.SessionID,
			SessionName:        r.SessionName,
			UserEmail:          r.UserEmail,
			CompanyName:        r.CompanyName,
			CompanyWebsite:     r.CompanyWebsite,
			Competitor:         r.Competitor,
			ContactName:        r.ContactName,
			ContactTitle:       r.ContactTitle,
			CreatedAt:          created,
			UpdatedAt:          updated,
			DiscoveryQuestions: r.DiscoveryQuestions,
			BusinessCase:       r.BusinessCase,
			CompetitorStrategy: r.CompetitorStrategy,
			ValueHypothesis:    r.ValueHypothesis,
			RoadmapData:        r.RoadmapData,
			OutreachEmails:     r.OutreachEmails,
			LinkedInMessages:   r.LinkedInMessages,
			PeopleResearch:     r.PeopleResearch,
			Notes:              r.Notes,
			Status:             r.Status,
		})
	}
	return sessions, nil
}

// LoadAccountsFile reads accounts from a YAML or JSON file
func LoadAccountsFile(path string) ([]models.Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseAccounts(data)
}

// ParseAccounts parses an account export: either a list of records or an
// object with an "accounts" list
func ParseAccounts(data []byte) ([]models.Account, error) {
	var records []AccountRecord
	if err := decodeExport(data, "accounts", &records); err != nil {
		return nil, err
	}

	accounts := make([]models.Account, 0, len(records))
	for i, r := range records {
		var modified time.Time
		if r.LastModified != "" {
			t, err := parseTimestamp(&r.LastModified)
			if err != nil {
				return nil, fmt.Errorf("account %d last_modified: %w", i+1, err)
			}
			modified = *t
		}
		accounts = append(accounts, models.Account{
			ID:           r.ID,
			Name:         r.Name,
			Type:         r.Type,
			OwnerID:      r.OwnerID,
			OwnerName:    r.OwnerName,
			Website:      r.Website,
			Industry:     r.Industry,
			Description:  r.Description,
			LastModified: modified,
			IsDeleted:    r.IsDeleted,
		})
	}
	return accounts, nil
}

// LoadSessionFile reads one session with its questions, content, and
// contacts from a YAML or JSON file
func LoadSessionFile(path string) (*models.SessionDetail, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseSessionDetail(data)
}

// ParseSessionDetail parses a session document shaped like SessionDetail:
// a "session" object plus optional questions, content, and contacts lists
func ParseSessionDetail(data []byte) (*models.SessionDetail, error) {
	doc, err := documentJSON(data)
	if err != nil {
		return nil, err
	}

	var detail models.SessionDetail
	if err := json.Unmarshal(doc, &detail); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if detail.Session == (models.Session{}) {
		return nil, fmt.Errorf("session file has no %q object", "session")
	}
	return &detail, nil
}

// documentJSON returns data as JSON, converting YAML with mapping keys in
// document order
func documentJSON(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') && json.Valid(trimmed) {
		return trimmed, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	value, err := nodeValue(&doc)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return encoded, nil
}

// decodeExport decodes either the top-level list or the list under key.
// JSON is decoded directly; YAML is first converted into an order-preserving
// JSON document.
func decodeExport(data []byte, key string, out interface{}) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') && json.Valid(trimmed) {
		return decodeJSONExport(trimmed, key, out)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse export: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.MappingNode {
		var list *yaml.Node
		for i := 0; i+1 < len(root.Content); i += 2 {
			if root.Content[i].Value == key {
				list = root.Content[i+1]
				break
			}
		}
		if list == nil {
			return fmt.Errorf("export has no %q list", key)
		}
		root = list
	}

	value, err := nodeValue(root)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	if err := json.Unmarshal(encoded, out); err != nil {
		return fmt.Errorf("failed to decode export: %w", err)
	}
	return nil
}

func decodeJSONExport(data []byte, key string, out interface{}) error {
	if data[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return fmt.Errorf("failed to decode export: %w", err)
		}
		list, ok := wrapper[key]
		if !ok {
			return fmt.Errorf("export has no %q list", key)
		}
		data = list
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode export: %w", err)
	}
	return nil
}

// nodeValue converts a YAML node into a JSON-marshalable value, keeping
// mapping keys in document order
func nodeValue(n *yaml.Node) (interface{}, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0])
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.MappingNode:
		om := orderedmap.New[string, interface{}]()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			om.Set(n.Content[i].Value, v)
		}
		return om, nil
	case yaml.SequenceNode:
		list := make([]interface{}, 0, len(n.Content))
		for _, child := range n.Content {
			v, err := nodeValue(child)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return nil, nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return nil, err
			}
			return b, nil
		case "!!int", "!!float":
			if json.Valid([]byte(n.Value)) {
				return json.Number(n.Value), nil
			}
			var f float64
			if err := n.Decode(&f); err != nil {
				return nil, err
			}
			return f, nil
		default:
			return n.Value, nil
		}
	}
	return nil, fmt.Errorf("unsupported YAML node at line %d", n.Line)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized timestamp %q", v)
}
