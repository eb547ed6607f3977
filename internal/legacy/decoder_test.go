// ABOUTME: Tests for the legacy discovery_questions decoder
// ABOUTME: Covers list form, map form, skipped entries, and id collisions
package legacy

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/harper/discovery/internal/models"
)

func TestDecode_ListForm(t *testing.T) {
	raw := json.RawMessage(`[{"text":"Q1","answer":"A1"},{"text":"Q2"}]`)

	got, err := Decode("s1", raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if got.Shape != ShapeList {
		t.Errorf("Shape = %v, want list", got.Shape)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("len(Questions) = %d, want 2", len(got.Questions))
	}
	for i, q := range got.Questions {
		if q.QuestionOrder != i+1 {
			t.Errorf("Questions[%d].QuestionOrder = %d, want %d", i, q.QuestionOrder, i+1)
		}
		if q.Category != models.CategoryTechnical {
			t.Errorf("Questions[%d].Category = %q, want Technical", i, q.Category)
		}
		if q.Importance != models.ImportanceMedium {
			t.Errorf("Questions[%d].Importance = %q, want medium", i, q.Importance)
		}
	}
	if got.Questions[0].QuestionID != "s1-q-1" || got.Questions[1].QuestionID != "s1-q-2" {
		t.Errorf("question ids = %s, %s", got.Questions[0].QuestionID, got.Questions[1].QuestionID)
	}

	if len(got.Answers) != 1 {
		t.Fatalf("len(Answers) = %d, want 1", len(got.Answers))
	}
	a := got.Answers[0]
	if a.QuestionID != "s1-q-1" || a.AnswerID != "s1-a-1" || a.AnswerText != "A1" {
		t.Errorf("Answer = %+v", a)
	}
	if a.SessionID != "s1" {
		t.Errorf("Answer.SessionID = %q, want s1", a.SessionID)
	}
}

func TestDecode_MapForm(t *testing.T) {
	raw := json.RawMessage(`{"Technical":[{"text":"Q1"}],"Business":[{"text":"Q2"},{"text":"Q3","answer":"  "}]}`)

	got, err := Decode("s2", raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if got.Shape != ShapeMap {
		t.Errorf("Shape = %v, want map", got.Shape)
	}

	want := []struct {
		id       string
		category string
		text     string
		order    int
	}{
		{"s2-q-Technical-1", "Technical", "Q1", 1},
		{"s2-q-Business-1", "Business", "Q2", 2},
		{"s2-q-Business-2", "Business", "Q3", 3},
	}
	if len(got.Questions) != len(want) {
		t.Fatalf("len(Questions) = %d, want %d", len(got.Questions), len(want))
	}
	for i, w := range want {
		q := got.Questions[i]
		if q.QuestionID != w.id || q.Category != w.category || q.QuestionText != w.text || q.QuestionOrder != w.order {
			t.Errorf("Questions[%d] = %+v, want %+v", i, q, w)
		}
	}

	if len(got.Answers) != 0 {
		t.Errorf("len(Answers) = %d, want 0 (whitespace-only answer)", len(got.Answers))
	}
}

func TestDecode_MapFormAnswerIDs(t *testing.T) {
	raw := json.RawMessage(`{"Competitive Landscape":[{"text":"Who else?","answer":"Acme"}]}`)

	got, err := Decode("s3", raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got.Answers) != 1 {
		t.Fatalf("len(Answers) = %d, want 1", len(got.Answers))
	}
	if got.Answers[0].AnswerID != "s3-a-CompetitiveLandscape-1" {
		t.Errorf("AnswerID = %q", got.Answers[0].AnswerID)
	}
	if got.Answers[0].QuestionID != "s3-q-CompetitiveLandscape-1" {
		t.Errorf("QuestionID = %q", got.Answers[0].QuestionID)
	}
	if got.Questions[0].Category != "Competitive Landscape" {
		t.Errorf("Category = %q, want the unsanitized key", got.Questions[0].Category)
	}
}

func TestDecode_Empty(t *testing.T) {
	tests := []struct {
		name string
		raw  json.RawMessage
	}{
		{"sql null", nil},
		{"json null", json.RawMessage(`null`)},
		{"empty array", json.RawMessage(`[]`)},
		{"empty object", json.RawMessage(`{}`)},
		{"number", json.RawMessage(`42`)},
		{"plain string", json.RawMessage(`"not json"`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode("s", tt.raw)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(got.Questions) != 0 || len(got.Answers) != 0 {
				t.Errorf("got %d questions, %d answers, want none", len(got.Questions), len(got.Answers))
			}
		})
	}
}

func TestDecode_SkipsEntriesWithoutText(t *testing.T) {
	raw := json.RawMessage(`[{"text":"Q1"},{"category":"Business"},"oops",{"text":null},{"text":"Q5","answer":"yes"}]`)

	got, err := Decode("s", raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if len(got.Questions) != 2 {
		t.Fatalf("len(Questions) = %d, want 2", len(got.Questions))
	}
	if got.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", got.Skipped)
	}
	// Positions keep their place in the source array
	if got.Questions[1].QuestionID != "s-q-5" || got.Questions[1].QuestionOrder != 5 {
		t.Errorf("second question = %+v", got.Questions[1])
	}
	if len(got.Answers) != 1 || got.Answers[0].QuestionID != "s-q-5" {
		t.Errorf("Answers = %+v", got.Answers)
	}
}

func TestDecode_ListFormFields(t *testing.T) {
	raw := json.RawMessage(`[{"text":"How big?","category":"Business","explanation":"sizing","importance":"High"}]`)

	got, err := Decode("s", raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	q := got.Questions[0]
	if q.Category != "Business" {
		t.Errorf("Category = %q, want Business", q.Category)
	}
	if q.Explanation != "sizing" {
		t.Errorf("Explanation = %q, want sizing", q.Explanation)
	}
	if q.Importance != models.ImportanceHigh {
		t.Errorf("Importance = %q, want high", q.Importance)
	}
}

func TestDecode_DoubleEncoded(t *testing.T) {
	inner := `[{"text":"Q1","answer":"A1"}]`
	encoded, _ := json.Marshal(inner)

	got, err := Decode("s", json.RawMessage(encoded))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got.Questions) != 1 || len(got.Answers) != 1 {
		t.Errorf("got %d questions, %d answers, want 1 and 1", len(got.Questions), len(got.Answers))
	}
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode("s", json.RawMessage(`[{"text":"Q1"`))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("Decode() error = %v, want ErrMalformed", err)
	}
}

func TestDecode_CategoryCollision(t *testing.T) {
	raw := json.RawMessage(`{"Business Value":[{"text":"Q1"}],"BusinessValue":[{"text":"Q2"}]}`)

	got, err := Decode("s", raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if len(got.Diagnostics) == 0 {
		t.Fatal("expected a collision diagnostic")
	}
	if !strings.Contains(got.Diagnostics[0], "BusinessValue") {
		t.Errorf("diagnostic = %q", got.Diagnostics[0])
	}
	// The id scheme is kept; the colliding entry cannot get a distinct id
	if len(got.Questions) != 1 {
		t.Errorf("len(Questions) = %d, want 1", len(got.Questions))
	}
	if got.Questions[0].QuestionID != "s-q-BusinessValue-1" {
		t.Errorf("QuestionID = %q", got.Questions[0].QuestionID)
	}
}

func TestDecode_MapFormPreservesKeyOrder(t *testing.T) {
	raw := json.RawMessage(`{"Zeta":[{"text":"z"}],"Alpha":[{"text":"a"}]}`)

	got, err := Decode("s", raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Questions[0].Category != "Zeta" || got.Questions[0].QuestionOrder != 1 {
		t.Errorf("first question = %+v, want Zeta first", got.Questions[0])
	}
}

func TestQuestionID(t *testing.T) {
	tests := []struct {
		session  string
		category string
		n        int
		want     string
	}{
		{"abc", "", 1, "abc-q-1"},
		{"abc", "Technical", 2, "abc-q-Technical-2"},
		{"abc", "Business Value", 3, "abc-q-BusinessValue-3"},
	}
	for _, tt := range tests {
		if got := QuestionID(tt.session, tt.category, tt.n); got != tt.want {
			t.Errorf("QuestionID(%q, %q, %d) = %q, want %q", tt.session, tt.category, tt.n, got, tt.want)
		}
	}
}
