// ABOUTME: Tests for Question, Answer, and ContentItem models
// ABOUTME: Verifies validation rules for ordering, importance, and confidence

package models

import (
	"encoding/json"
	"testing"
)

func TestQuestion_Validate(t *testing.T) {
	valid := Question{
		QuestionID:    "s1-q-1",
		SessionID:     "s1",
		QuestionText:  "What stack do you run?",
		Importance:    ImportanceMedium,
		QuestionOrder: 1,
	}

	tests := []struct {
		name    string
		mutate  func(*Question)
		wantErr bool
	}{
		{"valid question", func(q *Question) {}, false},
		{"empty question ID", func(q *Question) { q.QuestionID = "" }, true},
		{"empty session ID", func(q *Question) { q.SessionID = "" }, true},
		{"zero order", func(q *Question) { q.QuestionOrder = 0 }, true},
		{"unknown importance", func(q *Question) { q.Importance = "urgent" }, true},
		{"high importance", func(q *Question) { q.Importance = ImportanceHigh }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid
			tt.mutate(&q)
			err := q.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAnswer_Validate(t *testing.T) {
	tests := []struct {
		name    string
		answer  Answer
		wantErr bool
	}{
		{"valid answer", Answer{AnswerID: "a", QuestionID: "q", SessionID: "s", ConfidenceLevel: DefaultConfidence}, false},
		{"missing id", Answer{QuestionID: "q", SessionID: "s", ConfidenceLevel: 3}, true},
		{"missing question", Answer{AnswerID: "a", SessionID: "s", ConfidenceLevel: 3}, true},
		{"confidence too low", Answer{AnswerID: "a", QuestionID: "q", SessionID: "s", ConfidenceLevel: 0}, true},
		{"confidence too high", Answer{AnswerID: "a", QuestionID: "q", SessionID: "s", ConfidenceLevel: 6}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.answer.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestContentItem_Validate(t *testing.T) {
	tests := []struct {
		name    string
		item    ContentItem
		wantErr bool
	}{
		{"text item", ContentItem{SessionID: "s", ContentType: ContentBusinessCase, ContentText: "x"}, false},
		{"structured item", ContentItem{SessionID: "s", ContentType: ContentRoadmap, ContentData: json.RawMessage(`{"q1":"pilot"}`)}, false},
		{"invalid json", ContentItem{SessionID: "s", ContentType: ContentRoadmap, ContentData: json.RawMessage(`{`)}, true},
		{"missing type", ContentItem{SessionID: "s"}, true},
		{"missing session", ContentItem{ContentType: ContentRoadmap}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestContentAndContactIDs(t *testing.T) {
	if got := ContentID("s1", ContentRoadmap); got != "s1-content-roadmap" {
		t.Errorf("ContentID() = %q", got)
	}
	if got := ContactID("s1", 2); got != "s1-contact-2" {
		t.Errorf("ContactID() = %q", got)
	}
	if ContactTypeFor(1) != ContactPrimary || ContactTypeFor(2) != ContactStakeholder {
		t.Error("ContactTypeFor() should make only the first contact primary")
	}
}
