// ABOUTME: Tests for the legacy-to-normalized migration
// ABOUTME: Uses fake source and sink plus an end-to-end run against in-memory SQLite
package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/harper/discovery/internal/models"
	"github.com/harper/discovery/internal/storage/sqlite"
)

var fixedNow = time.Date(2024, 3, 7, 15, 4, 5, 0, time.UTC)

func strPtr(s string) *string { return &s }

type fakeSource struct {
	rows      []models.LegacySession
	backupErr error
	backups   int
}

func (s *fakeSource) Backup(ctx context.Context) (*models.BackupInfo, error) {
	s.backups++
	if s.backupErr != nil {
		return nil, s.backupErr
	}
	return &models.BackupInfo{Table: "legacy_backup", Rows: len(s.rows), CreatedAt: fixedNow}, nil
}

func (s *fakeSource) LegacySessions(ctx context.Context) ([]models.LegacySession, error) {
	return s.rows, nil
}

type fakeSink struct {
	mu           sync.Mutex
	sessions     map[string]models.Session
	questions    map[string]models.Question
	answers      map[string]models.Answer
	content      map[string]models.ContentItem
	contacts     map[string]models.Contact
	failQuestion string
	writes       int
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		sessions:  map[string]models.Session{},
		questions: map[string]models.Question{},
		answers:   map[string]models.Answer{},
		content:   map[string]models.ContentItem{},
		contacts:  map[string]models.Contact{},
	}
}

func (s *fakeSink) UpsertSession(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	s.sessions[session.SessionID] = *session
	return nil
}

func (s *fakeSink) UpsertQuestions(ctx context.Context, questions []models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	for _, q := range questions {
		if q.SessionID == s.failQuestion {
			return errors.New("constraint failed")
		}
	}
	for _, q := range questions {
		s.questions[q.QuestionID] = q
	}
	return nil
}

func (s *fakeSink) UpsertAnswers(ctx context.Context, answers []models.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	for _, a := range answers {
		s.answers[a.AnswerID] = a
	}
	return nil
}

func (s *fakeSink) UpsertContent(ctx context.Context, items []models.ContentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	for _, c := range items {
		s.content[c.ContentID] = c
	}
	return nil
}

func (s *fakeSink) UpsertContacts(ctx context.Context, contacts []models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	for _, c := range contacts {
		s.contacts[c.ContactID] = c
	}
	return nil
}

func (s *fakeSink) Counts(ctx context.Context) (models.EntityCounts, error) {
	return models.EntityCounts{
		Sessions:  len(s.sessions),
		Questions: len(s.questions),
		Answers:   len(s.answers),
		Content:   len(s.content),
		Contacts:  len(s.contacts),
	}, nil
}

func (s *fakeSink) Progress(ctx context.Context, sessionID string) (*models.SessionProgress, error) {
	if _, ok := s.sessions[sessionID]; !ok {
		return nil, nil
	}
	total, answered := 0, 0
	for _, q := range s.questions {
		if q.SessionID != sessionID {
			continue
		}
		total++
		for _, a := range s.answers {
			if a.QuestionID == q.QuestionID {
				answered++
				break
			}
		}
	}
	return &models.SessionProgress{
		SessionID:            sessionID,
		TotalQuestions:       total,
		AnsweredQuestions:    answered,
		CompletionPercentage: models.CompletionPercentage(answered, total),
	}, nil
}

func legacyRows() []models.LegacySession {
	created := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	return []models.LegacySession{
		{
			SessionID:          "s1",
			SessionName:        strPtr("Acme - 01/15/2024"),
			UserEmail:          strPtr("rep@company.com"),
			CompanyName:        strPtr("Acme"),
			CreatedAt:          &created,
			UpdatedAt:          &created,
			DiscoveryQuestions: json.RawMessage(`[{"text":"Q1","answer":"A1"},{"text":"Q2"},{"text":"Q3","answer":"A3"}]`),
			BusinessCase:       strPtr("Save money"),
			RoadmapData:        json.RawMessage(`{"phases":[1,2]}`),
			PeopleResearch:     json.RawMessage(`[{"name":"Ada","title":"CTO"},{"name":"Bob"}]`),
			Status:             strPtr("active"),
		},
		{
			SessionID:          "s2",
			CompanyWebsite:     strPtr("https://www.globex.com"),
			DiscoveryQuestions: json.RawMessage(`{"Business":[{"text":"Budget?","answer":"Yes"}],"Technical":[{"text":"Stack?"}]}`),
			Status:             strPtr("  "),
		},
		{
			SessionID:          "s3",
			CompanyName:        strPtr("Initech"),
			DiscoveryQuestions: json.RawMessage(`{not json`),
			ValueHypothesis:    strPtr("Faster TPS reports"),
		},
		{
			SessionID:          "s4",
			CompanyName:        strPtr("Empty Co"),
			DiscoveryQuestions: nil,
		},
	}
}

func TestRun_FakeSink(t *testing.T) {
	source := &fakeSource{rows: legacyRows()}
	sink := newFakeSink()
	tr := New(source, sink, Options{Workers: 2, Now: func() time.Time { return fixedNow }})

	report, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if source.backups != 1 || report.Backup == nil || report.Backup.Table != "legacy_backup" {
		t.Errorf("Backup = %+v after %d backups", report.Backup, source.backups)
	}
	want := models.EntityCounts{Sessions: 4, Questions: 5, Answers: 3, Content: 3, Contacts: 2}
	if report.Written != want {
		t.Errorf("Written = %+v, want %+v", report.Written, want)
	}

	if !report.Failed("s3") {
		t.Errorf("s3 should be reported as failed: %+v", report.FailedSessions)
	}
	if len(report.FailedSessions) != 1 || report.FailedSessions[0].Step != StepDecode {
		t.Errorf("FailedSessions = %+v, want one decode failure", report.FailedSessions)
	}

	s3, ok := sink.sessions["s3"]
	if !ok {
		t.Fatal("session with undecodable questions should still migrate")
	}
	if s3.CompanyName != "Initech" {
		t.Errorf("s3 CompanyName = %q", s3.CompanyName)
	}
	if _, ok := sink.content["s3-content-value_hypothesis"]; !ok {
		t.Error("content of a session with undecodable questions should still migrate")
	}

	s2 := sink.sessions["s2"]
	if s2.Status != models.SessionActive {
		t.Errorf("blank status migrated as %q, want active", s2.Status)
	}
	if s2.SessionName != "Globex - 03/07/2024" {
		t.Errorf("s2 SessionName = %q", s2.SessionName)
	}
	if !s2.CreatedAt.Equal(fixedNow) {
		t.Errorf("s2 CreatedAt = %v, want now", s2.CreatedAt)
	}

	for id, a := range sink.answers {
		if a.ConfidenceLevel != models.DefaultConfidence {
			t.Errorf("answer %s confidence = %d, want %d", id, a.ConfidenceLevel, models.DefaultConfidence)
		}
	}

	if c := sink.contacts["s1-contact-1"]; c.ContactType != models.ContactPrimary || c.ContactName != "Ada" {
		t.Errorf("contact 1 = %+v, want primary Ada", c)
	}
	if c := sink.contacts["s1-contact-2"]; c.ContactType != models.ContactStakeholder {
		t.Errorf("contact 2 = %+v, want stakeholder", c)
	}
}

func TestRun_ConfidenceOption(t *testing.T) {
	sink := newFakeSink()
	tr := New(&fakeSource{rows: legacyRows()}, sink, Options{Confidence: 5})

	if _, err := tr.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for id, a := range sink.answers {
		if a.ConfidenceLevel != 5 {
			t.Errorf("answer %s confidence = %d, want 5", id, a.ConfidenceLevel)
		}
	}
}

func TestRun_BackupFailureAborts(t *testing.T) {
	source := &fakeSource{rows: legacyRows(), backupErr: errors.New("disk full")}
	sink := newFakeSink()

	report, err := New(source, sink, Options{}).Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail when backup fails")
	}
	if report != nil {
		t.Errorf("report = %+v, want nil", report)
	}
	if sink.writes != 0 {
		t.Errorf("sink received %d writes before backup succeeded", sink.writes)
	}
}

func TestRun_DryRun(t *testing.T) {
	source := &fakeSource{rows: legacyRows()}
	sink := newFakeSink()

	report, err := New(source, sink, Options{DryRun: true}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if source.backups != 0 || sink.writes != 0 {
		t.Errorf("dry run wrote: backups=%d writes=%d", source.backups, sink.writes)
	}
	if report.Written.Sessions != 4 || report.Written.Questions != 5 {
		t.Errorf("dry run counts = %+v", report.Written)
	}
}

func TestRun_QuestionFailureSkipsAnswers(t *testing.T) {
	sink := newFakeSink()
	sink.failQuestion = "s1"

	report, err := New(&fakeSource{rows: legacyRows()}, sink, Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	found := false
	for _, f := range report.FailedSessions {
		if f.SessionID == "s1" && f.Step == StepQuestions {
			found = true
		}
	}
	if !found {
		t.Errorf("FailedSessions = %+v, want s1 questions failure", report.FailedSessions)
	}
	for _, a := range sink.answers {
		if a.SessionID == "s1" {
			t.Errorf("answer %s written after its questions failed", a.AnswerID)
		}
	}
	if _, ok := sink.content["s1-content-business_case"]; !ok {
		t.Error("content should still be written after a question failure")
	}
	if report.Written.Answers != 1 {
		t.Errorf("Written.Answers = %d, want 1", report.Written.Answers)
	}
}

func TestRun_MissingSessionID(t *testing.T) {
	rows := append(legacyRows(), models.LegacySession{SessionID: "", CompanyName: strPtr("Nobody")})
	sink := newFakeSink()

	report, err := New(&fakeSource{rows: rows}, sink, Options{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Written.Sessions != 4 {
		t.Errorf("Written.Sessions = %d, want 4", report.Written.Sessions)
	}
	if _, ok := sink.sessions[""]; ok {
		t.Error("row without id should not be written")
	}
}

func TestToSession(t *testing.T) {
	ls := &models.LegacySession{SessionID: "s1", CompanyName: strPtr("Acme"), Status: strPtr("archived")}

	s := ToSession(ls, fixedNow)
	if s.Status != models.SessionArchived {
		t.Errorf("Status = %q, want archived", s.Status)
	}
	if s.SessionName != "Acme - 03/07/2024" {
		t.Errorf("SessionName = %q", s.SessionName)
	}
	if !s.UpdatedAt.Equal(fixedNow) {
		t.Errorf("UpdatedAt = %v, want %v", s.UpdatedAt, fixedNow)
	}
}

func TestVerify_FakeSink(t *testing.T) {
	source := &fakeSource{rows: legacyRows()}
	sink := newFakeSink()
	tr := New(source, sink, Options{})

	v, err := tr.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if v.OK() || len(v.Violations) != 4 {
		t.Errorf("Violations before migration = %v, want 4", v.Violations)
	}

	if _, err := tr.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	v, err = tr.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !v.OK() {
		t.Errorf("Violations after migration = %v", v.Violations)
	}
	if v.Counts.Sessions != 4 {
		t.Errorf("Counts.Sessions = %d, want 4", v.Counts.Sessions)
	}
}

func newTestStorage(t *testing.T) *sqlite.Storage {
	t.Helper()
	store, err := sqlite.NewStorageInMemory()
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRun_SQLite(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)
	if _, err := store.ImportLegacy(ctx, legacyRows()); err != nil {
		t.Fatalf("ImportLegacy() error = %v", err)
	}

	tr := New(store, store, Options{Workers: 3, Now: func() time.Time { return fixedNow }})
	first, err := tr.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if first.Backup == nil || first.Backup.Rows != 4 {
		t.Errorf("Backup = %+v, want 4 rows", first.Backup)
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	want := models.EntityCounts{Sessions: 4, Questions: 5, Answers: 3, Content: 3, Contacts: 2}
	if counts != want {
		t.Errorf("Counts() = %+v, want %+v", counts, want)
	}

	progress, err := store.Progress(ctx, "s1")
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if progress.TotalQuestions != 3 || progress.AnsweredQuestions != 2 || progress.CompletionPercentage != 66.7 {
		t.Errorf("s1 progress = %+v", progress)
	}

	empty, err := store.Progress(ctx, "s4")
	if err != nil {
		t.Fatalf("Progress() error = %v", err)
	}
	if empty.TotalQuestions != 0 || empty.CompletionPercentage != 0 {
		t.Errorf("s4 progress = %+v, want no questions", empty)
	}

	if _, err := tr.Run(ctx); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	again, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if again != want {
		t.Errorf("Counts() after rerun = %+v, want %+v", again, want)
	}

	v, err := tr.Verify(ctx)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !v.OK() {
		t.Errorf("Verify() violations = %v", v.Violations)
	}
}
