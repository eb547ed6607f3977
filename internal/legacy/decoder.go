// ABOUTME: Decodes the legacy discovery_questions blob into normalized questions and answers
// ABOUTME: Handles the list form and the category-keyed map form of the legacy encoding
package legacy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/harper/discovery/internal/models"
)

// ErrMalformed is returned when a legacy column is not valid JSON
var ErrMalformed = errors.New("malformed legacy JSON")

// Shape identifies which legacy encoding a questions blob used
type Shape int

const (
	ShapeNone Shape = iota
	ShapeList
	ShapeMap
)

func (s Shape) String() string {
	switch s {
	case ShapeList:
		return "list"
	case ShapeMap:
		return "map"
	default:
		return "none"
	}
}

// Decoded is the flattened result for one legacy session
type Decoded struct {
	Shape       Shape
	Questions   []models.Question
	Answers     []models.Answer
	Skipped     int
	Diagnostics []string
}

// Decode flattens the discovery_questions value of one legacy session.
//
// A non-empty JSON array is the list form; anything else that is a JSON object
// is the map form, keyed by category. NULL, empty arrays and scalars produce
// nothing. Entries without text are skipped and counted, never reported as
// errors. Answers are emitted only for entries whose answer is non-blank.
func Decode(sessionID string, raw json.RawMessage) (*Decoded, error) {
	out := &Decoded{}

	payload, err := unwrap(raw)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return out, nil
	}

	switch payload[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(payload, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if len(items) > 0 {
			out.Shape = ShapeList
			decodeList(sessionID, items, out)
		}
	case '{':
		out.Shape = ShapeMap
		if err := decodeMap(sessionID, payload, out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// unwrap trims raw, validates it, and unwraps one level of string encoding
// ("[{...}]" stored as a JSON string). Returns nil for NULL-like values.
func unwrap(raw json.RawMessage) (json.RawMessage, error) {
	if models.IsNullJSON(raw) {
		return nil, nil
	}
	payload := bytes.TrimSpace(raw)
	if !json.Valid(payload) {
		return nil, ErrMalformed
	}

	if payload[0] == '"' {
		var inner string
		if err := json.Unmarshal(payload, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		payload = bytes.TrimSpace([]byte(inner))
		if models.IsNullJSON(payload) {
			return nil, nil
		}
		if !json.Valid(payload) {
			// A plain string, not an encoded document
			return nil, nil
		}
	}

	return payload, nil
}

func decodeList(sessionID string, items []json.RawMessage, out *Decoded) {
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		n := i + 1
		e, ok := parseEntry(item)
		if !ok {
			out.Skipped++
			continue
		}

		category := e.category
		if category == "" {
			category = models.CategoryTechnical
		}

		q := models.Question{
			QuestionID:    QuestionID(sessionID, "", n),
			SessionID:     sessionID,
			Category:      category,
			QuestionText:  e.text,
			Explanation:   e.explanation,
			Importance:    e.importance,
			QuestionOrder: n,
		}
		if seen[q.QuestionID] {
			out.Diagnostics = append(out.Diagnostics, fmt.Sprintf("duplicate question id %s dropped", q.QuestionID))
			continue
		}
		seen[q.QuestionID] = true
		out.Questions = append(out.Questions, q)

		if e.hasAnswer() {
			out.Answers = append(out.Answers, models.Answer{
				AnswerID:        AnswerID(sessionID, "", n),
				QuestionID:      q.QuestionID,
				SessionID:       sessionID,
				AnswerText:      e.answer,
				ConfidenceLevel: models.DefaultConfidence,
			})
		}
	}
}

func decodeMap(sessionID string, payload json.RawMessage, out *Decoded) error {
	groups := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(payload, groups); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	// sanitized category -> first category that produced it
	prefixes := make(map[string]string)
	seen := make(map[string]bool)
	order := 0

	for pair := groups.Oldest(); pair != nil; pair = pair.Next() {
		category := pair.Key

		sanitized := SanitizeCategory(category)
		if first, ok := prefixes[sanitized]; ok && first != category {
			out.Diagnostics = append(out.Diagnostics,
				fmt.Sprintf("categories %q and %q share id prefix %q", first, category, sanitized))
		} else if !ok {
			prefixes[sanitized] = category
		}

		var items []json.RawMessage
		if err := json.Unmarshal(pair.Value, &items); err != nil {
			out.Skipped++
			continue
		}

		for i, item := range items {
			n := i + 1
			e, ok := parseEntry(item)
			if !ok {
				out.Skipped++
				continue
			}

			id := QuestionID(sessionID, category, n)
			if seen[id] {
				out.Diagnostics = append(out.Diagnostics, fmt.Sprintf("duplicate question id %s dropped", id))
				continue
			}
			seen[id] = true

			order++
			out.Questions = append(out.Questions, models.Question{
				QuestionID:    id,
				SessionID:     sessionID,
				Category:      category,
				QuestionText:  e.text,
				Explanation:   e.explanation,
				Importance:    e.importance,
				QuestionOrder: order,
			})

			if e.hasAnswer() {
				out.Answers = append(out.Answers, models.Answer{
					AnswerID:        AnswerID(sessionID, category, n),
					QuestionID:      id,
					SessionID:       sessionID,
					AnswerText:      e.answer,
					ConfidenceLevel: models.DefaultConfidence,
				})
			}
		}
	}

	return nil
}

// entry is one legacy question object
type entry struct {
	text        string
	category    string
	explanation string
	importance  string
	answer      string
}

func (e entry) hasAnswer() bool {
	return strings.TrimSpace(e.answer) != ""
}

// parseEntry reads a question object. ok is false for non-objects and for
// objects without a string text field.
func parseEntry(raw json.RawMessage) (entry, bool) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return entry{}, false
	}

	text, ok := fields["text"].(string)
	if !ok {
		return entry{}, false
	}

	e := entry{
		text:        text,
		category:    strings.TrimSpace(stringField(fields, "category")),
		explanation: stringField(fields, "explanation"),
		importance:  strings.ToLower(strings.TrimSpace(stringField(fields, "importance"))),
		answer:      stringField(fields, "answer"),
	}
	switch e.importance {
	case models.ImportanceHigh, models.ImportanceMedium, models.ImportanceLow:
	default:
		e.importance = models.ImportanceMedium
	}
	return e, true
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}
