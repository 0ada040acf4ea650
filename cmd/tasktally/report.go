package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fentz26/tasktally/internal/categories"
	"github.com/fentz26/tasktally/internal/progress"
	"github.com/fentz26/tasktally/internal/tracker"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Progress and category reports",
}

var reportProgressCmd = &cobra.Command{
	Use:   "progress [task-id]",
	Short: "Show logged hours against the estimate",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportProgress,
}

var reportCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Break logged hours down by category",
	RunE:  runReportCategories,
}

var (
	reportTask  string
	reportStart string
	reportEnd   string
)

func init() {
	reportCmd.AddCommand(reportProgressCmd, reportCategoriesCmd)

	reportCategoriesCmd.Flags().StringVar(&reportTask, "task", "", "Only logs for this task")
	reportCategoriesCmd.Flags().StringVar(&reportStart, "start", "", "First day, YYYY-MM-DD (needs --end)")
	reportCategoriesCmd.Flags().StringVar(&reportEnd, "end", "", "Last day, YYYY-MM-DD (needs --start)")
}

func runReportProgress(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/tasks/" + args[0] + "/progress")
	if err != nil {
		return err
	}

	var p progress.Progress
	if err := json.Unmarshal(resp, &p); err != nil {
		return err
	}

	fmt.Printf("Logged:    %sh in %d logs\n", tracker.FormatHours(p.LoggedHours), p.LogCount)
	fmt.Printf("Estimate:  %s\n", hoursOrDash(p.Estimate))
	fmt.Printf("Remaining: %s\n", hoursOrDash(p.RemainingHours))
	fmt.Printf("Progress:  %d%%\n", p.Percentage)
	if p.OverBudget {
		fmt.Println(failStyle.Render("Over budget"))
	}
	return nil
}

func runReportCategories(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/categories/analysis" + timeLogQuery(reportTask, reportStart, reportEnd))
	if err != nil {
		return err
	}

	var a categories.Analysis
	if err := json.Unmarshal(resp, &a); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tHOURS\tLOGS")
	for _, list := range a.SortedLists() {
		fmt.Fprintf(w, "%s\t%s\t%d\n", list.Title, tracker.FormatHours(list.Hours), list.Count)
		for _, b := range list.SortedCategories() {
			fmt.Fprintf(w, "  %s\t%s\t%d\n", b.ItemTitle, tracker.FormatHours(b.Hours), b.Count)
		}
	}
	if a.UncategorizedCount > 0 {
		fmt.Fprintf(w, "Uncategorized\t%s\t%d\n", tracker.FormatHours(a.UncategorizedHours), a.UncategorizedCount)
	}
	w.Flush()
	fmt.Printf("\nTotal: %sh\n", tracker.FormatHours(a.TotalHours))
	return nil
}
