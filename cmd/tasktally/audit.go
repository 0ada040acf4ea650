package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/tasktally/internal/audit"
	"github.com/fentz26/tasktally/internal/models"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the audit trail of mutations",
	RunE:  runAudit,
}

var (
	auditTask  string
	auditLimit int
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
)

func init() {
	auditCmd.Flags().StringVar(&auditTask, "task", "", "Only entries for this task")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "Maximum entries to show (0 for all)")
}

func runAudit(cmd *cobra.Command, args []string) error {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(auditLimit))
	if auditTask != "" {
		q.Set("task_id", auditTask)
	}

	resp, err := apiGet("/audit?" + q.Encode())
	if err != nil {
		return err
	}

	var entries []models.AuditEntry
	if err := json.Unmarshal(resp, &entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No audit entries")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tACTION\tTASK\tOUTCOME")
	for _, e := range entries {
		outcome := outcomeStyle(e.Outcome).Render(e.Outcome)
		if e.Details != "" {
			outcome += " " + e.Details
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, truncateID(e.TaskID), outcome)
	}
	w.Flush()
	return nil
}

func outcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case audit.OutcomeSuccess:
		return okStyle
	case audit.OutcomeRejected:
		return warnStyle
	default:
		return failStyle
	}
}

// statusStyle colours a status for terminal output.
func statusStyle(s models.TaskStatus) lipgloss.Style {
	switch s {
	case models.TaskStatusInProgress, models.TaskStatusCompleted:
		return okStyle
	case models.TaskStatusBlocked, models.TaskStatusOnHold, models.TaskStatusBackburner:
		return warnStyle
	case models.TaskStatusAbandoned:
		return failStyle
	default:
		return lipgloss.NewStyle()
	}
}
