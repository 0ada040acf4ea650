package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fentz26/tasktally/internal/config"
	"github.com/fentz26/tasktally/internal/lifecycle"
	"github.com/fentz26/tasktally/internal/models"
	"github.com/fentz26/tasktally/internal/tracker"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new task",
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runTaskList,
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskEditCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit task fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskEdit,
}

var taskMoveCmd = &cobra.Command{
	Use:   "move [task-id] [status]",
	Short: "Move a task to another status",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskMove,
}

var taskRmCmd = &cobra.Command{
	Use:   "rm [task-id]",
	Short: "Delete a task with its time logs and ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskRm,
}

var taskHistoryCmd = &cobra.Command{
	Use:   "history [task-id]",
	Short: "Show status history",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskHistory,
}

var (
	taskTitle      string
	taskDesc       string
	taskStatus     string
	taskEstimate   float64
	taskUrgency    string
	taskImportance string
	taskProject    string
	taskPhase      string
	taskDue        string
	taskLists      []string
	taskSearch     string
	taskAll        bool
)

func init() {
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskEditCmd, taskMoveCmd, taskRmCmd, taskHistoryCmd)

	for _, c := range []*cobra.Command{taskAddCmd, taskEditCmd} {
		c.Flags().StringVar(&taskTitle, "title", "", "Task title")
		c.Flags().StringVar(&taskDesc, "desc", "", "Task description")
		c.Flags().Float64Var(&taskEstimate, "estimate", 0, "Estimated hours")
		c.Flags().StringVar(&taskUrgency, "urgency", "", "Urgency (low, medium, high)")
		c.Flags().StringVar(&taskImportance, "importance", "", "Importance (low, medium, high)")
		c.Flags().StringVar(&taskProject, "project", "", "Project ID")
		c.Flags().StringVar(&taskPhase, "phase", "", "Phase key")
		c.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD)")
		c.Flags().StringSliceVar(&taskLists, "list", nil, "Category list slugs")
	}
	taskAddCmd.MarkFlagRequired("title")

	taskListCmd.Flags().StringVar(&taskStatus, "status", "", "Filter by status (comma separated)")
	taskListCmd.Flags().StringVar(&taskProject, "project", "", "Filter by project")
	taskListCmd.Flags().StringVar(&taskPhase, "phase", "", "Filter by phase")
	taskListCmd.Flags().StringVarP(&taskSearch, "query", "q", "", "Search titles")
	taskListCmd.Flags().BoolVar(&taskAll, "all", false, "Include completed, abandoned and archived tasks (default from config)")
}

// taskFields collects the task flags that were set on cmd.
func taskFields(cmd *cobra.Command) map[string]interface{} {
	body := map[string]interface{}{}
	set := func(flag, field string, v interface{}) {
		if cmd.Flags().Changed(flag) {
			body[field] = v
		}
	}
	set("title", "title", taskTitle)
	set("desc", "description", taskDesc)
	set("estimate", "estimate", taskEstimate)
	set("urgency", "urgency", taskUrgency)
	set("importance", "importance", taskImportance)
	set("project", "project_id", taskProject)
	set("phase", "phase_key", taskPhase)
	set("list", "category_lists", taskLists)
	if cmd.Flags().Changed("due") {
		body["due_on"] = taskDue + "T00:00:00Z"
	}
	return body
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	resp, err := apiPost("/tasks", taskFields(cmd))
	if err != nil {
		return err
	}

	var task models.Task
	if err := decodeData(resp, &task); err != nil {
		return err
	}

	fmt.Printf("Created task: %s\n", task.ID)
	return nil
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	body := taskFields(cmd)
	if len(body) == 0 {
		return fmt.Errorf("nothing to change")
	}
	if _, err := apiPut("/tasks/"+args[0], body); err != nil {
		return err
	}
	fmt.Printf("Updated task %s\n", args[0])
	return nil
}

func runTaskMove(cmd *cobra.Command, args []string) error {
	status := models.TaskStatus(args[1])
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", args[1])
	}

	resp, err := apiPut("/tasks/"+args[0], map[string]string{"status": string(status)})
	if err != nil {
		return err
	}

	var task models.Task
	if err := decodeData(resp, &task); err != nil {
		return err
	}
	if n := len(task.StatusHistory); n > 0 {
		fmt.Printf("%s: %s\n", truncateID(task.ID), task.StatusHistory[n-1].Note)
	}
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	// The config decides whether closed tasks show when --all is not given.
	if !cmd.Flags().Changed("all") {
		if cfg, err := config.Load(); err == nil {
			taskAll = cfg.IncludeTerminal
		}
	}

	q := url.Values{}
	if taskStatus != "" {
		q.Set("status", taskStatus)
	}
	if taskProject != "" {
		q.Set("project", taskProject)
	}
	if taskPhase != "" {
		q.Set("phase", taskPhase)
	}
	if taskSearch != "" {
		q.Set("q", taskSearch)
	}
	if taskAll {
		q.Set("all", "true")
	}
	path := "/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := apiGet(path)
	if err != nil {
		return err
	}

	var tasks []models.Task
	if err := json.Unmarshal(resp, &tasks); err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tREMAINING\tDUE")
	for _, t := range tasks {
		due := ""
		if t.DueOn != nil {
			due = t.DueOn.Format(models.DateLayout)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", truncateID(t.ID), truncate(t.Title, 40), t.Status.Label(), hoursOrDash(t.RemainingHours), due)
	}
	w.Flush()
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/tasks/" + args[0])
	if err != nil {
		return err
	}

	var task models.Task
	if err := json.Unmarshal(resp, &task); err != nil {
		return err
	}

	fmt.Printf("ID:          %s\n", task.ID)
	fmt.Printf("Title:       %s\n", task.Title)
	fmt.Printf("Description: %s\n", task.Description)
	fmt.Printf("Status:      %s\n", statusStyle(task.Status).Render(task.Status.Label()))
	fmt.Printf("Estimate:    %s\n", hoursOrDash(task.Estimate))
	fmt.Printf("Remaining:   %s\n", hoursOrDash(task.RemainingHours))
	if task.Urgency != "" || task.Importance != "" {
		fmt.Printf("Urgency:     %s / Importance: %s\n", task.Urgency, task.Importance)
	}
	if task.ProjectID != "" {
		fmt.Printf("Project:     %s %s\n", task.ProjectID, task.PhaseKey)
	}
	if len(task.CategoryLists) > 0 {
		fmt.Printf("Lists:       %s\n", strings.Join(task.CategoryLists, ", "))
	}
	if next := lifecycle.AllowedTransitions(task.Status); len(next) > 0 {
		names := make([]string, len(next))
		for i, st := range next {
			names[i] = string(st)
		}
		fmt.Printf("Next:        %s\n", strings.Join(names, ", "))
	}
	fmt.Printf("Created:     %s\n", task.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Printf("Updated:     %s\n", task.UpdatedAt.Local().Format("2006-01-02 15:04"))

	return nil
}

func runTaskRm(cmd *cobra.Command, args []string) error {
	resp, err := apiDelete("/tasks/" + args[0])
	if err != nil {
		return err
	}

	var result tracker.DeleteResult
	if err := decodeData(resp, &result); err != nil {
		return err
	}
	fmt.Printf("Deleted task %s (%d time logs, %d ledger entries)\n", args[0], result.TimeLogsDeleted, result.LedgerEntriesDeleted)
	return nil
}

func runTaskHistory(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/tasks/" + args[0] + "/history")
	if err != nil {
		return err
	}

	var history []models.StatusEvent
	if err := json.Unmarshal(resp, &history); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tSTATUS\tNOTE")
	for _, ev := range history {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ev.Timestamp.Local().Format("2006-01-02 15:04"), ev.Status.Label(), ev.Note)
	}
	w.Flush()
	return nil
}

// --- Helpers ---

func hoursOrDash(h *float64) string {
	if h == nil {
		return "-"
	}
	return tracker.FormatHours(*h) + "h"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
