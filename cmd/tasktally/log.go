package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/fentz26/tasktally/internal/models"
	"github.com/fentz26/tasktally/internal/tracker"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record and review time logs",
}

var logAddCmd = &cobra.Command{
	Use:   "add [task-id]",
	Short: "Log hours against a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogAdd,
}

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "List time logs",
	RunE:  runLogList,
}

var logRmCmd = &cobra.Command{
	Use:   "rm [log-id]",
	Short: "Delete a time log",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogRm,
}

var (
	logHours    float64
	logDate     string
	logCategory string
	logNotes    string
	logBurnDown bool
	logTaskID   string
	logStart    string
	logEnd      string
)

func init() {
	logCmd.AddCommand(logAddCmd, logListCmd, logRmCmd)

	logAddCmd.Flags().Float64Var(&logHours, "hours", 0, "Hours worked (required)")
	logAddCmd.Flags().StringVar(&logDate, "date", "", "Date worked, YYYY-MM-DD (default today)")
	logAddCmd.Flags().StringVar(&logCategory, "category", "", "Category key, e.g. work.coding")
	logAddCmd.Flags().StringVar(&logNotes, "notes", "", "Notes")
	logAddCmd.Flags().BoolVar(&logBurnDown, "burn-down", true, "Subtract the hours from the task's remaining hours")
	logAddCmd.MarkFlagRequired("hours")

	logListCmd.Flags().StringVar(&logTaskID, "task", "", "Only logs for this task")
	logListCmd.Flags().StringVar(&logStart, "start", "", "First day, YYYY-MM-DD (needs --end)")
	logListCmd.Flags().StringVar(&logEnd, "end", "", "Last day, YYYY-MM-DD (needs --start)")
}

func runLogAdd(cmd *cobra.Command, args []string) error {
	body := models.TimeLog{
		TaskID:      args[0],
		Hours:       logHours,
		DateLogged:  logDate,
		CategoryKey: logCategory,
		Notes:       logNotes,
	}

	if !logBurnDown {
		resp, err := apiPost("/timelogs", body)
		if err != nil {
			return err
		}
		var saved models.TimeLog
		if err := decodeData(resp, &saved); err != nil {
			return err
		}
		fmt.Printf("Logged %sh on %s (%s)\n", tracker.FormatHours(saved.Hours), saved.DateLogged, truncateID(saved.ID))
		return nil
	}

	resp, err := apiPost("/timelogs?burn_down=true", body)
	if err != nil {
		return err
	}
	var work tracker.WorkResult
	if err := decodeData(resp, &work); err != nil {
		return err
	}
	fmt.Printf("Logged %sh on %s (%s)\n", tracker.FormatHours(work.Log.Hours), work.Log.DateLogged, truncateID(work.Log.ID))
	if work.Entry != nil {
		fmt.Printf("Remaining: %sh\n", tracker.FormatHours(work.Entry.RemainingHours))
	}
	return nil
}

func runLogList(cmd *cobra.Command, args []string) error {
	if (logStart == "") != (logEnd == "") {
		fmt.Fprintln(os.Stderr, "Note: a date range needs both --start and --end; showing all dates")
	}

	logs, err := fetchTimeLogs(logTaskID, logStart, logEnd)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		fmt.Println("No time logs found")
		return nil
	}

	var total float64
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTASK\tDATE\tHOURS\tCATEGORY\tNOTES")
	for _, l := range logs {
		total += l.Hours
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", truncateID(l.ID), truncateID(l.TaskID), l.DateLogged, tracker.FormatHours(l.Hours), l.CategoryKey, truncate(l.Notes, 30))
	}
	w.Flush()
	fmt.Printf("\nTotal: %sh\n", tracker.FormatHours(total))
	return nil
}

func runLogRm(cmd *cobra.Command, args []string) error {
	if _, err := apiDelete("/timelogs/" + args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted time log %s\n", args[0])
	fmt.Println("Remaining hours were not changed; use 'tasktally remaining set' to adjust them.")
	return nil
}

func fetchTimeLogs(taskID, start, end string) ([]models.TimeLog, error) {
	resp, err := apiGet("/timelogs" + timeLogQuery(taskID, start, end))
	if err != nil {
		return nil, err
	}
	var logs []models.TimeLog
	if err := json.Unmarshal(resp, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func timeLogQuery(taskID, start, end string) string {
	q := url.Values{}
	if taskID != "" {
		q.Set("task_id", taskID)
	}
	if start != "" {
		q.Set("start", start)
	}
	if end != "" {
		q.Set("end", end)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
