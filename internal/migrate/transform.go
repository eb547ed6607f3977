// ABOUTME: Moves legacy JSON-blob sessions into the normalized discovery tables
// ABOUTME: Backs up first, decodes sessions in parallel, then writes each entity step in order
package migrate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/harper/discovery/internal/legacy"
	"github.com/harper/discovery/internal/logging"
	"github.com/harper/discovery/internal/models"
)

// Source is the read-only legacy session table
type Source interface {
	// Backup snapshots the legacy table and verifies the copy
	Backup(ctx context.Context) (*models.BackupInfo, error)
	LegacySessions(ctx context.Context) ([]models.LegacySession, error)
}

// Sink is the normalized store. Every write is an upsert keyed by a
// synthesized id, so reruns converge on the same rows.
type Sink interface {
	UpsertSession(ctx context.Context, session *models.Session) error
	UpsertQuestions(ctx context.Context, questions []models.Question) error
	UpsertAnswers(ctx context.Context, answers []models.Answer) error
	UpsertContent(ctx context.Context, items []models.ContentItem) error
	UpsertContacts(ctx context.Context, contacts []models.Contact) error
	Counts(ctx context.Context) (models.EntityCounts, error)
	Progress(ctx context.Context, sessionID string) (*models.SessionProgress, error)
}

// Migration steps, in execution order
const (
	StepBackup    = "backup"
	StepDecode    = "decode"
	StepSessions  = "sessions"
	StepQuestions = "questions"
	StepAnswers   = "answers"
	StepContent   = "content"
	StepContacts  = "contacts"
)

// Options configures a Transformer
type Options struct {
	Workers    int
	Confidence int
	DryRun     bool
	Logger     *log.Logger
	Now        func() time.Time
}

// Failure records a session that did not migrate completely
type Failure struct {
	SessionID string `json:"session_id" yaml:"session_id"`
	Step      string `json:"step" yaml:"step"`
	Reason    string `json:"reason" yaml:"reason"`
}

// Report summarizes one migration run
type Report struct {
	DryRun         bool                `json:"dry_run" yaml:"dry_run"`
	Backup         *models.BackupInfo  `json:"backup,omitempty" yaml:"backup,omitempty"`
	LegacySessions int                 `json:"legacy_sessions" yaml:"legacy_sessions"`
	Written        models.EntityCounts `json:"written" yaml:"written"`
	FailedSessions []Failure           `json:"failed_sessions" yaml:"failed_sessions"`
	Diagnostics    []string            `json:"diagnostics" yaml:"diagnostics"`
	Skipped        int                 `json:"skipped_entries" yaml:"skipped_entries"`
}

// Failed reports whether sessionID has any recorded failure
func (r *Report) Failed(sessionID string) bool {
	for _, f := range r.FailedSessions {
		if f.SessionID == sessionID {
			return true
		}
	}
	return false
}

// Transformer runs the legacy-to-normalized migration
type Transformer struct {
	source Source
	sink   Sink
	opts   Options
	logger *log.Logger
}

// New creates a Transformer. Zero-valued options take their defaults.
func New(source Source, sink Sink, opts Options) *Transformer {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Confidence < models.MinConfidence || opts.Confidence > models.MaxConfidence {
		opts.Confidence = models.DefaultConfidence
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Transformer{source: source, sink: sink, opts: opts, logger: logger}
}

// plan is everything one legacy session turns into
type plan struct {
	session   models.Session
	decoded   *legacy.Decoded
	content   []models.ContentItem
	contacts  []models.Contact
	contentDx []string
	skipped   int
	decodeErr error
	peopleErr error
	dropped   bool
}

// Run executes the migration. Only backup and source failures are fatal;
// per-session failures are recorded in the report and the run continues.
func (t *Transformer) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		DryRun:         t.opts.DryRun,
		FailedSessions: []Failure{},
		Diagnostics:    []string{},
	}

	if !t.opts.DryRun {
		backup, err := t.source.Backup(ctx)
		if err != nil {
			return nil, fmt.Errorf("backup failed, nothing migrated: %w", err)
		}
		report.Backup = backup
		t.logger.Info("legacy table backed up", "table", backup.Table, "rows", backup.Rows)
	}

	rows, err := t.source.LegacySessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy sessions: %w", err)
	}
	report.LegacySessions = len(rows)
	t.logger.Info("legacy sessions loaded", "count", len(rows))

	plans, err := t.decodeAll(ctx, rows)
	if err != nil {
		return nil, err
	}
	t.collect(report, rows, plans)

	if t.opts.DryRun {
		for _, p := range plans {
			report.Written = report.Written.Add(p.counts())
		}
		t.logger.Info("dry run complete", "sessions", report.Written.Sessions)
		return report, nil
	}

	steps := []struct {
		name string
		run  func(context.Context, *plan) (int, error)
	}{
		{StepSessions, t.writeSession},
		{StepQuestions, t.writeQuestions},
		{StepAnswers, t.writeAnswers},
		{StepContent, t.writeContent},
		{StepContacts, t.writeContacts},
	}
	for _, step := range steps {
		written := 0
		for i := range plans {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			p := &plans[i]
			if p.dropped {
				continue
			}
			n, err := step.run(ctx, p)
			if err != nil {
				t.fail(report, p, step.name, err)
				continue
			}
			written += n
		}
		report.Written = addStep(report.Written, step.name, written)
		t.logger.Info("step complete", "step", step.name, "rows", written)
	}

	if len(report.FailedSessions) > 0 {
		t.logger.Warn("migration finished with failures", "failed", len(report.FailedSessions))
	}
	return report, nil
}

// decodeAll builds one plan per legacy row on a bounded worker pool. Each
// worker writes only its own slot.
func (t *Transformer) decodeAll(ctx context.Context, rows []models.LegacySession) ([]plan, error) {
	plans := make([]plan, len(rows))
	now := t.opts.Now().UTC()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.Workers)
	for i := range rows {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plans[i] = t.buildPlan(&rows[i], now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("decode interrupted: %w", err)
	}
	return plans, nil
}

func (t *Transformer) buildPlan(ls *models.LegacySession, now time.Time) plan {
	p := plan{session: ToSession(ls, now)}

	decoded, err := legacy.Decode(ls.SessionID, ls.DiscoveryQuestions)
	if err != nil {
		p.decodeErr = err
	} else {
		for i := range decoded.Answers {
			decoded.Answers[i].ConfidenceLevel = t.opts.Confidence
		}
		p.decoded = decoded
		p.skipped += decoded.Skipped
	}

	p.content, p.contentDx = legacy.ExtractContent(ls)

	contacts, skipped, err := legacy.DecodeContacts(ls.SessionID, ls.PeopleResearch)
	if err != nil {
		p.peopleErr = err
	} else {
		p.contacts = contacts
		p.skipped += skipped
	}
	return p
}

// collect folds decode outcomes into the report
func (t *Transformer) collect(report *Report, rows []models.LegacySession, plans []plan) {
	for i := range plans {
		p := &plans[i]
		id := rows[i].SessionID
		if strings.TrimSpace(id) == "" {
			p.dropped = true
			t.fail(report, p, StepSessions, errors.New("legacy row has no session_id"))
			continue
		}

		report.Skipped += p.skipped
		report.Diagnostics = append(report.Diagnostics, p.contentDx...)
		if p.decoded != nil {
			for _, d := range p.decoded.Diagnostics {
				report.Diagnostics = append(report.Diagnostics, fmt.Sprintf("session %s: %s", id, d))
			}
		}
		if p.decodeErr != nil {
			t.fail(report, p, StepDecode, p.decodeErr)
		}
		if p.peopleErr != nil {
			t.fail(report, p, StepContacts, p.peopleErr)
		}
	}
}

func (t *Transformer) fail(report *Report, p *plan, step string, err error) {
	report.FailedSessions = append(report.FailedSessions, Failure{
		SessionID: p.session.SessionID,
		Step:      step,
		Reason:    err.Error(),
	})
	t.logger.Warn("session not fully migrated", "session", p.session.SessionID, "step", step, "err", err)

	switch step {
	case StepSessions:
		p.dropped = true
	case StepQuestions:
		// answers reference questions
		if p.decoded != nil {
			p.decoded.Answers = nil
		}
	}
}

func (t *Transformer) writeSession(ctx context.Context, p *plan) (int, error) {
	if err := t.sink.UpsertSession(ctx, &p.session); err != nil {
		return 0, err
	}
	return 1, nil
}

func (t *Transformer) writeQuestions(ctx context.Context, p *plan) (int, error) {
	if p.decoded == nil || len(p.decoded.Questions) == 0 {
		return 0, nil
	}
	if err := t.sink.UpsertQuestions(ctx, p.decoded.Questions); err != nil {
		return 0, err
	}
	return len(p.decoded.Questions), nil
}

func (t *Transformer) writeAnswers(ctx context.Context, p *plan) (int, error) {
	if p.decoded == nil || len(p.decoded.Answers) == 0 {
		return 0, nil
	}
	if err := t.sink.UpsertAnswers(ctx, p.decoded.Answers); err != nil {
		return 0, err
	}
	return len(p.decoded.Answers), nil
}

func (t *Transformer) writeContent(ctx context.Context, p *plan) (int, error) {
	if len(p.content) == 0 {
		return 0, nil
	}
	if err := t.sink.UpsertContent(ctx, p.content); err != nil {
		return 0, err
	}
	return len(p.content), nil
}

func (t *Transformer) writeContacts(ctx context.Context, p *plan) (int, error) {
	if len(p.contacts) == 0 {
		return 0, nil
	}
	if err := t.sink.UpsertContacts(ctx, p.contacts); err != nil {
		return 0, err
	}
	return len(p.contacts), nil
}

func addStep(c models.EntityCounts, step string, n int) models.EntityCounts {
	switch step {
	case StepSessions:
		c.Sessions += n
	case StepQuestions:
		c.Questions += n
	case StepAnswers:
		c.Answers += n
	case StepContent:
		c.Content += n
	case StepContacts:
		c.Contacts += n
	}
	return c
}

func (p *plan) counts() models.EntityCounts {
	if p.dropped {
		return models.EntityCounts{}
	}
	c := models.EntityCounts{Sessions: 1, Content: len(p.content), Contacts: len(p.contacts)}
	if p.decoded != nil {
		c.Questions = len(p.decoded.Questions)
		c.Answers = len(p.decoded.Answers)
	}
	return c
}

// ToSession maps a legacy row to its normalized session. Blank status becomes
// active; missing timestamps become now; a missing name is derived from the
// company and creation date.
func ToSession(ls *models.LegacySession, now time.Time) models.Session {
	status := models.SessionStatus(strings.TrimSpace(models.Deref(ls.Status)))
	if status == "" {
		status = models.SessionActive
	}

	created := now
	if ls.CreatedAt != nil {
		created = ls.CreatedAt.UTC()
	}
	updated := created
	if ls.UpdatedAt != nil {
		updated = ls.UpdatedAt.UTC()
	}

	name := strings.TrimSpace(models.Deref(ls.SessionName))
	if name == "" {
		name = models.SessionName(models.Deref(ls.CompanyName), models.Deref(ls.CompanyWebsite), created)
	}

	return models.Session{
		SessionID:      ls.SessionID,
		SessionName:    name,
		UserEmail:      models.Deref(ls.UserEmail),
		CompanyName:    models.Deref(ls.CompanyName),
		CompanyWebsite: models.Deref(ls.CompanyWebsite),
		Competitor:     models.Deref(ls.Competitor),
		ContactName:    models.Deref(ls.ContactName),
		ContactTitle:   models.Deref(ls.ContactTitle),
		Status:         status,
		Notes:          models.Deref(ls.Notes),
		CreatedAt:      created,
		UpdatedAt:      updated,
	}
}
