// ABOUTME: CLI commands to save, list, show, archive, and summarize discovery sessions
// ABOUTME: Progress is derived from the session_progress view on every read
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/discovery/internal/models"
	"github.com/harper/discovery/internal/storage/sqlite"
)

var (
	sessionUser string
	sessionAll  bool
)

// NewSessionCmd creates the session command group
func NewSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect discovery sessions",
		Long: `Inspect discovery sessions and their progress.

Sessions are scoped to DISCOVERY_USER_EMAIL unless --user or --all is given.

Examples:
  discovery session save initech.yaml
  discovery session list
  discovery session list --all
  discovery session show 3f2a...
  discovery session archive 3f2a...
  discovery session stats --user rep@company.com`,
	}

	cmd.PersistentFlags().StringVar(&sessionUser, "user", "", "User email (default: DISCOVERY_USER_EMAIL)")
	cmd.PersistentFlags().BoolVar(&sessionAll, "all", false, "Include every user's sessions")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "save <file>",
			Short: "Save a session with its questions, content, and contacts from a YAML or JSON file",
			Long: `Save a session from a YAML or JSON file with a "session" object and
optional "questions", "content", and "contacts" lists.

A missing session_id is generated and a missing session_name is derived from
the company. Questions, answers, and contacts replace the stored ones;
content is upserted by type.`,
			Args: cobra.ExactArgs(1),
			RunE: runSessionSave,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List sessions with completion progress",
			Args:  cobra.NoArgs,
			RunE:  runSessionList,
		},
		&cobra.Command{
			Use:   "show <session-id>",
			Short: "Show a session with questions, answers, content, and contacts",
			Args:  cobra.ExactArgs(1),
			RunE:  runSessionShow,
		},
		&cobra.Command{
			Use:   "archive <session-id>",
			Short: "Archive a session",
			Args:  cobra.ExactArgs(1),
			RunE:  runSessionArchive,
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show aggregate statistics for a user's sessions",
			Args:  cobra.NoArgs,
			RunE:  runSessionStats,
		},
	)

	return cmd
}

// sessionScope returns the user filter; "" means every user
func sessionScope(defaultUser string) string {
	if sessionAll {
		return ""
	}
	if sessionUser != "" {
		return sessionUser
	}
	return defaultUser
}

// sessionOwner is the user a saved session belongs to when the file names none
func sessionOwner(defaultUser string) string {
	if sessionUser != "" {
		return sessionUser
	}
	return defaultUser
}

func runSessionSave(cmd *cobra.Command, args []string) error {
	cfg, logger, store, err := setup(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	detail, err := sqlite.LoadSessionFile(args[0])
	if err != nil {
		return fmt.Errorf("loading session file: %w", err)
	}
	if detail.Session.UserEmail == "" {
		detail.Session.UserEmail = sessionOwner(cfg.UserEmail)
	}

	ctx := cmd.Context()
	if err := store.SaveDetail(ctx, detail); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	logger.Info("session saved",
		"session", detail.Session.SessionID,
		"questions", len(detail.Questions),
		"content", len(detail.Content),
		"contacts", len(detail.Contacts))

	saved, err := store.GetDetail(ctx, detail.Session.SessionID)
	if err != nil {
		return fmt.Errorf("loading saved session: %w", err)
	}

	return render(cmd.OutOrStdout(), saved, func(w io.Writer) {
		if quiet {
			return
		}
		fmt.Fprintf(w, "Saved session %s\t%s\n", saved.Session.SessionID, saved.Session.SessionName)
	})
}

func runSessionList(cmd *cobra.Command, args []string) error {
	cfg, _, store, err := setup(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.ListProgress(cmd.Context(), sessionScope(cfg.UserEmail))
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if sessions == nil {
		sessions = []models.SessionProgress{}
	}

	if len(sessions) == 0 && outputFormat != "json" && outputFormat != "yaml" {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No sessions found")
		}
		return nil
	}

	return render(cmd.OutOrStdout(), sessions, func(w io.Writer) {
		fmt.Fprintf(w, "SESSION\tCOMPANY\tSTATUS\tPROGRESS\tCONTENT\tCONTACTS\tUPDATED\n")
		fmt.Fprintf(w, "-------\t-------\t------\t--------\t-------\t--------\t-------\n")
		for _, p := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d (%.1f%%)\t%d\t%d\t%s\n",
				truncate(p.SessionID, 36),
				truncate(orDash(p.CompanyName), 24),
				p.Status,
				p.AnsweredQuestions, p.TotalQuestions, p.CompletionPercentage,
				p.ContentTypesCount,
				p.ContactsCount,
				formatTime(p.UpdatedAt))
		}
		if !quiet {
			fmt.Fprintf(w, "\nTotal: %d session(s)\n", len(sessions))
		}
	})
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	_, _, store, err := setup(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	detail, err := store.GetDetail(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if detail == nil {
		return fmt.Errorf("session %s not found", args[0])
	}

	return render(cmd.OutOrStdout(), detail, func(w io.Writer) {
		s := detail.Session
		fmt.Fprintf(w, "Session:\t%s\n", s.SessionName)
		fmt.Fprintf(w, "ID:\t%s\n", s.SessionID)
		fmt.Fprintf(w, "Company:\t%s\n", orDash(s.CompanyName))
		fmt.Fprintf(w, "Website:\t%s\n", orDash(s.CompanyWebsite))
		fmt.Fprintf(w, "Owner:\t%s\n", orDash(s.UserEmail))
		fmt.Fprintf(w, "Status:\t%s\n", s.Status)

		if len(detail.Questions) > 0 {
			fmt.Fprintf(w, "\n#\tCATEGORY\tQUESTION\tANSWER\n")
			for _, q := range detail.Questions {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
					q.QuestionOrder,
					q.Category,
					truncate(q.QuestionText, 50),
					truncate(orDash(q.AnswerText), 40))
			}
		}

		if len(detail.Content) > 0 {
			types := make([]string, 0, len(detail.Content))
			for _, c := range detail.Content {
				types = append(types, c.ContentType)
			}
			fmt.Fprintf(w, "\nContent:\t%s\n", strings.Join(types, ", "))
		}

		if len(detail.Contacts) > 0 {
			fmt.Fprintf(w, "\nCONTACT\tTITLE\tTYPE\n")
			for _, c := range detail.Contacts {
				fmt.Fprintf(w, "%s\t%s\t%s\n", orDash(c.ContactName), orDash(c.ContactTitle), c.ContactType)
			}
		}
	})
}

func runSessionArchive(cmd *cobra.Command, args []string) error {
	_, logger, store, err := setup(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ArchiveSession(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("archiving session %s: %w", args[0], err)
	}
	logger.Info("session archived", "session", args[0])

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Archived session %s\n", args[0])
	}
	return nil
}

func runSessionStats(cmd *cobra.Command, args []string) error {
	cfg, _, store, err := setup(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	analytics, err := store.Analytics(cmd.Context(), sessionScope(cfg.UserEmail))
	if err != nil {
		return fmt.Errorf("computing analytics: %w", err)
	}

	return render(cmd.OutOrStdout(), analytics, func(w io.Writer) {
		fmt.Fprintf(w, "User:\t%s\n", orDash(analytics.UserEmail))
		fmt.Fprintf(w, "Sessions:\t%d\n", analytics.TotalSessions)
		fmt.Fprintf(w, "Unique companies:\t%d\n", analytics.UniqueCompanies)
		fmt.Fprintf(w, "Average completion:\t%.1f%%\n", analytics.AverageCompletion)
		fmt.Fprintf(w, "Questions asked:\t%d\n", analytics.TotalQuestions)
		fmt.Fprintf(w, "Answers given:\t%d\n", analytics.TotalAnswers)
		fmt.Fprintf(w, "Content created:\t%d\n", analytics.TotalContentCreated)
	})
}
