package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fentz26/tasktally/internal/models"
	"github.com/fentz26/tasktally/internal/progress"
	"github.com/fentz26/tasktally/internal/tracker"
)

// DefaultClientTimeout is the default timeout for API requests.
const DefaultClientTimeout = 10 * time.Second

// Client wraps HTTP calls to the tasktally API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client with timeout
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultClientTimeout,
		},
	}
}

type envelope struct {
	tracker.Result
	Data json.RawMessage `json:"data"`
}

// do sends a request and decodes the response body into out. Mutation
// responses are unwrapped so out receives the data payload.
func (c *Client) do(method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if method == http.MethodGet {
		if resp.StatusCode >= 400 {
			return apiError(resp.StatusCode, raw)
		}
		if out == nil {
			return nil
		}
		return json.Unmarshal(raw, out)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return apiError(resp.StatusCode, raw)
	}
	if !env.Success {
		return fmt.Errorf("%s", env.Reason)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func apiError(status int, body []byte) error {
	var r tracker.Result
	if json.Unmarshal(body, &r) == nil && r.Reason != "" {
		return fmt.Errorf("%s", r.Reason)
	}
	return fmt.Errorf("API error (%d): %s", status, string(body))
}

// Health reports whether the daemon answers its health check.
func (c *Client) Health() bool {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// ListTasks fetches tasks, optionally restricted to one status.
func (c *Client) ListTasks(status models.TaskStatus, all bool) ([]models.Task, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	if all {
		q.Set("all", "true")
	}
	path := "/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var tasks []models.Task
	if err := c.do(http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask fetches a single task
func (c *Client) GetTask(id string) (*models.Task, error) {
	var task models.Task
	if err := c.do(http.MethodGet, "/tasks/"+id, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetProgress fetches the progress summary of a task
func (c *Client) GetProgress(id string) (*progress.Progress, error) {
	var p progress.Progress
	if err := c.do(http.MethodGet, "/tasks/"+id+"/progress", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetRemainingHistory fetches the remaining-hours ledger of a task
func (c *Client) GetRemainingHistory(id string) ([]models.RemainingHoursEntry, error) {
	var entries []models.RemainingHoursEntry
	if err := c.do(http.MethodGet, "/tasks/"+id+"/remaining", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetTimeLogs fetches the time logs of a task
func (c *Client) GetTimeLogs(taskID string) ([]models.TimeLog, error) {
	var logs []models.TimeLog
	if err := c.do(http.MethodGet, "/timelogs?task_id="+url.QueryEscape(taskID), nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// CreateTask creates a task and returns it
func (c *Client) CreateTask(title string, estimate *float64) (*models.Task, error) {
	var task models.Task
	err := c.do(http.MethodPost, "/tasks", models.Task{Title: title, Estimate: estimate}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// MoveTask changes the status of a task
func (c *Client) MoveTask(id string, status models.TaskStatus) (*models.Task, error) {
	var task models.Task
	if err := c.do(http.MethodPut, "/tasks/"+id, map[string]string{"status": string(status)}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task with its logs and ledger
func (c *Client) DeleteTask(id string) error {
	return c.do(http.MethodDelete, "/tasks/"+id, nil, nil)
}

// LogWork records hours against a task and burns them down
func (c *Client) LogWork(taskID string, hours float64, category string) (*tracker.WorkResult, error) {
	var work tracker.WorkResult
	log := models.TimeLog{TaskID: taskID, Hours: hours, CategoryKey: category}
	if err := c.do(http.MethodPost, "/timelogs?burn_down=true", log, &work); err != nil {
		return nil, err
	}
	return &work, nil
}

// SetRemaining sets the remaining hours of a task. The entry is nil when
// nothing changed.
func (c *Client) SetRemaining(taskID string, hours float64, note string) (*models.RemainingHoursEntry, error) {
	var entry *models.RemainingHoursEntry
	body := map[string]interface{}{"remaining_hours": hours, "note": note}
	if err := c.do(http.MethodPost, "/tasks/"+taskID+"/remaining", body, &entry); err != nil {
		return nil, err
	}
	return entry, nil
}
