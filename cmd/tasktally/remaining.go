package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/fentz26/tasktally/internal/models"
	"github.com/fentz26/tasktally/internal/tracker"
	"github.com/spf13/cobra"
)

var remainingCmd = &cobra.Command{
	Use:   "remaining",
	Short: "Inspect and adjust remaining hours",
}

var remainingSetCmd = &cobra.Command{
	Use:   "set [task-id] [hours]",
	Short: "Set a task's remaining hours",
	Args:  cobra.ExactArgs(2),
	RunE:  runRemainingSet,
}

var remainingHistoryCmd = &cobra.Command{
	Use:   "history [task-id]",
	Short: "Show the remaining-hours ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemainingHistory,
}

var remainingNote string

func init() {
	remainingCmd.AddCommand(remainingSetCmd, remainingHistoryCmd)
	remainingSetCmd.Flags().StringVar(&remainingNote, "note", "Manual adjustment", "Ledger note")
}

func runRemainingSet(cmd *cobra.Command, args []string) error {
	hours, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid hours %q", args[1])
	}

	resp, err := apiPost("/tasks/"+args[0]+"/remaining", map[string]interface{}{
		"remaining_hours": hours,
		"note":            remainingNote,
	})
	if err != nil {
		return err
	}

	var entry *models.RemainingHoursEntry
	if err := decodeData(resp, &entry); err != nil {
		return err
	}
	if entry == nil {
		fmt.Println("Remaining hours unchanged")
		return nil
	}
	fmt.Printf("Remaining: %s => %sh\n", hoursOrDash(entry.PreviousRemainingHours), tracker.FormatHours(entry.RemainingHours))
	return nil
}

func runRemainingHistory(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/tasks/" + args[0] + "/remaining")
	if err != nil {
		return err
	}

	var entries []models.RemainingHoursEntry
	if err := json.Unmarshal(resp, &entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No ledger entries")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tFROM\tTO\tNOTE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%sh\t%s\n", e.Timestamp.Local().Format("2006-01-02 15:04"), hoursOrDash(e.PreviousRemainingHours), tracker.FormatHours(e.RemainingHours), e.Note)
	}
	w.Flush()
	return nil
}
