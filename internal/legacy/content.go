// ABOUTME: Extracts strategic content items from the six legacy content columns
// ABOUTME: Text columns need non-blank text, JSON columns need a non-null document
package legacy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harper/discovery/internal/models"
)

// ExtractContent returns one content item per populated legacy column.
// A JSON column holding invalid JSON is reported as a diagnostic and skipped.
func ExtractContent(ls *models.LegacySession) ([]models.ContentItem, []string) {
	var (
		items       []models.ContentItem
		diagnostics []string
	)

	texts := []struct {
		contentType string
		value       *string
	}{
		{models.ContentBusinessCase, ls.BusinessCase},
		{models.ContentCompetitiveStrategy, ls.CompetitorStrategy},
		{models.ContentValueHypothesis, ls.ValueHypothesis},
	}
	for _, t := range texts {
		if t.value == nil || strings.TrimSpace(*t.value) == "" {
			continue
		}
		items = append(items, models.ContentItem{
			ContentID:   models.ContentID(ls.SessionID, t.contentType),
			SessionID:   ls.SessionID,
			ContentType: t.contentType,
			ContentText: *t.value,
		})
	}

	docs := []struct {
		contentType string
		value       json.RawMessage
	}{
		{models.ContentRoadmap, ls.RoadmapData},
		{models.ContentOutreachEmails, ls.OutreachEmails},
		{models.ContentLinkedInMessages, ls.LinkedInMessages},
	}
	for _, d := range docs {
		if models.IsNullJSON(d.value) {
			continue
		}
		data := bytes.TrimSpace(d.value)
		if !json.Valid(data) {
			diagnostics = append(diagnostics,
				fmt.Sprintf("session %s: %s is not valid JSON", ls.SessionID, d.contentType))
			continue
		}
		items = append(items, models.ContentItem{
			ContentID:   models.ContentID(ls.SessionID, d.contentType),
			SessionID:   ls.SessionID,
			ContentType: d.contentType,
			ContentData: json.RawMessage(data),
		})
	}

	return items, diagnostics
}
