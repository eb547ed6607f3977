// ABOUTME: Post-migration verification of the normalized tables
// ABOUTME: Reports row counts and sessions whose progress is missing or out of range
package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/discovery/internal/models"
)

// Verification is the result of checking a migrated store
type Verification struct {
	LegacySessions int                 `json:"legacy_sessions" yaml:"legacy_sessions"`
	Counts         models.EntityCounts `json:"counts" yaml:"counts"`
	Violations     []string            `json:"violations" yaml:"violations"`
}

// OK reports whether verification found no violations
func (v *Verification) OK() bool {
	return len(v.Violations) == 0
}

// Verify counts the normalized rows and checks every legacy session has a
// progress row with a completion percentage within 0-100
func (t *Transformer) Verify(ctx context.Context) (*Verification, error) {
	counts, err := t.sink.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count normalized rows: %w", err)
	}
	rows, err := t.source.LegacySessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy sessions: %w", err)
	}

	v := &Verification{LegacySessions: len(rows), Counts: counts, Violations: []string{}}
	for _, ls := range rows {
		if strings.TrimSpace(ls.SessionID) == "" {
			continue
		}
		progress, err := t.sink.Progress(ctx, ls.SessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to read progress for %s: %w", ls.SessionID, err)
		}
		switch {
		case progress == nil:
			v.Violations = append(v.Violations, fmt.Sprintf("session %s was not migrated", ls.SessionID))
		case progress.TotalQuestions > 0 && (progress.CompletionPercentage < 0 || progress.CompletionPercentage > 100):
			v.Violations = append(v.Violations, fmt.Sprintf("session %s completion %.1f%% out of range",
				ls.SessionID, progress.CompletionPercentage))
		case progress.AnsweredQuestions > progress.TotalQuestions:
			v.Violations = append(v.Violations, fmt.Sprintf("session %s has %d answered of %d questions",
				ls.SessionID, progress.AnsweredQuestions, progress.TotalQuestions))
		}
	}

	t.logger.Info("verification complete",
		"sessions", counts.Sessions,
		"questions", counts.Questions,
		"answers", counts.Answers,
		"violations", len(v.Violations))
	return v, nil
}
