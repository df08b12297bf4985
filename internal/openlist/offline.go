package openlist

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
)

// Offline-download delete policies accepted by the server.
const (
	DeletePolicyOnSucceed = "delete_on_upload_succeed"
	DeletePolicyOnFailed  = "delete_on_upload_failed"
	DeletePolicyNever     = "delete_never"
	DeletePolicyAlways    = "delete_always"
)

// ErrNoURLs is returned when OfflineAdd is called without any source URL.
var ErrNoURLs = errors.New("openlist: at least one URL is required")

// taskResponse mirrors the server's JSON for one offline-download task.
type taskResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	State    int     `json:"state"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Error    string  `json:"error"`
}

func (t *taskResponse) toTask() Task {
	return Task{
		ID:       t.ID,
		Name:     t.Name,
		State:    TaskState(t.State),
		Status:   t.Status,
		Progress: t.Progress,
		Error:    t.Error,
	}
}

type addOfflineRequest struct {
	URLs         []string `json:"urls"`
	Path         string   `json:"path"`
	Tool         string   `json:"tool"`
	DeletePolicy string   `json:"delete_policy"`
}

type addOfflineData struct {
	Tasks []taskResponse `json:"tasks"`
}

// OfflineTools lists the download tools the server has configured
// (aria2, qBittorrent, cloud-provider fetchers). The endpoint is public.
func (c *Client) OfflineTools(ctx context.Context) ([]string, error) {
	var tools []string

	if err := c.do(ctx, http.MethodGet, "/api/public/offline_download_tools", nil, nil, &tools); err != nil {
		return nil, err
	}

	return tools, nil
}

// OfflineAdd asks the server to fetch the given URLs into destPath using
// the named tool. The server creates one task per URL and returns them.
func (c *Client) OfflineAdd(ctx context.Context, urls []string, destPath, tool, deletePolicy string) ([]Task, error) {
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}

	if deletePolicy == "" {
		deletePolicy = DeletePolicyOnSucceed
	}

	c.logger.Info("adding offline download",
		slog.Int("urls", len(urls)),
		slog.String("path", destPath),
		slog.String("tool", tool),
		slog.String("delete_policy", deletePolicy),
	)

	var data addOfflineData

	err := c.do(ctx, http.MethodPost, "/api/fs/add_offline_download", nil, &addOfflineRequest{
		URLs:         urls,
		Path:         destPath,
		Tool:         tool,
		DeletePolicy: deletePolicy,
	}, &data)
	if err != nil {
		return nil, err
	}

	return toTasks(data.Tasks), nil
}

// TasksUndone lists tasks that are still pending or running.
func (c *Client) TasksUndone(ctx context.Context) ([]Task, error) {
	return c.taskList(ctx, "/api/task/offline_download/undone")
}

// TasksDone lists tasks that reached a terminal state.
func (c *Client) TasksDone(ctx context.Context) ([]Task, error) {
	return c.taskList(ctx, "/api/task/offline_download/done")
}

// taskList fetches one of the task list endpoints. The server returns
// data: null when the list is empty.
func (c *Client) taskList(ctx context.Context, path string) ([]Task, error) {
	var raw []taskResponse

	if err := c.do(ctx, http.MethodGet, path, nil, nil, &raw); err != nil {
		return nil, err
	}

	return toTasks(raw), nil
}

func toTasks(raw []taskResponse) []Task {
	tasks := make([]Task, 0, len(raw))
	for i := range raw {
		tasks = append(tasks, raw[i].toTask())
	}

	return tasks
}

// TaskInfo returns the current state of one task.
func (c *Client) TaskInfo(ctx context.Context, taskID string) (*Task, error) {
	var tr taskResponse

	if err := c.do(ctx, http.MethodPost, "/api/task/offline_download/info", tidQuery(taskID), nil, &tr); err != nil {
		return nil, err
	}

	task := tr.toTask()

	return &task, nil
}

// TaskCancel asks the server to cancel a task. This is an ordinary
// request — the client has no in-band cancellation of its own transfers.
func (c *Client) TaskCancel(ctx context.Context, taskID string) error {
	c.logger.Info("canceling task",
		slog.String("task_id", taskID),
	)

	return c.do(ctx, http.MethodPost, "/api/task/offline_download/cancel", tidQuery(taskID), nil, nil)
}

// TaskDelete removes a finished task record.
func (c *Client) TaskDelete(ctx context.Context, taskID string) error {
	c.logger.Info("deleting task",
		slog.String("task_id", taskID),
	)

	return c.do(ctx, http.MethodPost, "/api/task/offline_download/delete", tidQuery(taskID), nil, nil)
}

// TaskRetry re-queues a failed task.
func (c *Client) TaskRetry(ctx context.Context, taskID string) error {
	c.logger.Info("retrying task",
		slog.String("task_id", taskID),
	)

	return c.do(ctx, http.MethodPost, "/api/task/offline_download/retry", tidQuery(taskID), nil, nil)
}

func tidQuery(taskID string) url.Values {
	return url.Values{"tid": []string{taskID}}
}
