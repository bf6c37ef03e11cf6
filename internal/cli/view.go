package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/woodshed-app/woodshed/internal/domain"
	"github.com/woodshed-app/woodshed/internal/view"
)

// NewViewCommand creates the view command.
func NewViewCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "view",
		Short:         "Print the current snapshot",
		Long:          "Requests the snapshot over the bytes boundary, decodes it host-side, and prints it.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHost(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer h.Close()

			viewBytes, err := h.core.View()
			if err != nil {
				return WrapExitError(ExitFailure, "view", err)
			}
			snap, err := view.UnmarshalSnapshot(viewBytes)
			if err != nil {
				return WrapExitError(ExitFailure, "decode snapshot", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if rootOpts.Format == "json" {
				return out.Success(snapshotJSON(snap))
			}
			return out.Success(renderSnapshot(snap))
		},
	}
	return cmd
}

// snapshotJSON shapes the snapshot for JSON output. The session state
// union becomes a flat state name plus the timing scalars.
func snapshotJSON(snap view.Snapshot) map[string]any {
	goals := make([]map[string]any, 0, len(snap.Goals))
	for _, g := range snap.Goals {
		goals = append(goals, map[string]any{
			"id":     g.ID,
			"name":   g.Name,
			"status": g.Status.String(),
		})
	}
	studies := make([]map[string]any, 0, len(snap.Studies))
	for _, s := range snap.Studies {
		studies = append(studies, map[string]any{"id": s.ID, "name": s.Name})
	}
	sessions := make([]map[string]any, 0, len(snap.Sessions))
	for _, s := range snap.Sessions {
		item := map[string]any{
			"id":        s.ID,
			"intention": s.Intention,
			"state":     stateName(s.State),
		}
		if d, ok := domain.DurationSecondsOf(s.State); ok {
			item["duration_seconds"] = d
		}
		sessions = append(sessions, item)
	}
	result := map[string]any{
		"goals":             goals,
		"studies":           studies,
		"sessions":          sessions,
		"can_start_session": snap.CanStartSession,
		"can_end_session":   snap.CanEndSession,
	}
	if snap.CurrentSessionID != nil {
		result["current_session_id"] = *snap.CurrentSessionID
	}
	return result
}

func renderSnapshot(snap view.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goals (%d):\n", len(snap.Goals))
	for _, g := range snap.Goals {
		fmt.Fprintf(&b, "  %s  %s [%s]\n", g.ID, g.Name, g.Status)
	}
	fmt.Fprintf(&b, "Studies (%d):\n", len(snap.Studies))
	for _, s := range snap.Studies {
		fmt.Fprintf(&b, "  %s  %s\n", s.ID, s.Name)
	}
	fmt.Fprintf(&b, "Sessions (%d):\n", len(snap.Sessions))
	for _, s := range snap.Sessions {
		fmt.Fprintf(&b, "  %s  %q %s", s.ID, s.Intention, stateName(s.State))
		if d, ok := domain.DurationSecondsOf(s.State); ok {
			fmt.Fprintf(&b, " (%ds)", d)
		}
		b.WriteByte('\n')
	}
	if snap.CurrentSessionID != nil {
		fmt.Fprintf(&b, "Current session: %s\n", *snap.CurrentSessionID)
	}
	fmt.Fprintf(&b, "Can start: %v, can end: %v", snap.CanStartSession, snap.CanEndSession)
	return b.String()
}

func stateName(s domain.SessionState) string {
	switch s.(type) {
	case domain.Started:
		return "started"
	case domain.PendingReflection:
		return "pending_reflection"
	case domain.Ended:
		return "ended"
	default:
		return "not_started"
	}
}
