package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/openlist-contrib/openlist-go/internal/openlist"
)

// defaultPollInterval is how often watch/--wait polls task state.
const defaultPollInterval = 3 * time.Second

func newOfflineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offline",
		Short: "Manage server-side offline downloads",
		Long: `Offline downloads are background fetches the server performs with a
configured tool (aria2, qBittorrent, or a cloud provider). The client
only creates tasks and observes their state; the server drives every
transition.`,
	}

	cmd.AddCommand(newOfflineToolsCmd())
	cmd.AddCommand(newOfflineAddCmd())
	cmd.AddCommand(newOfflineListCmd())
	cmd.AddCommand(newOfflineInfoCmd())
	cmd.AddCommand(newOfflineCancelCmd())
	cmd.AddCommand(newOfflineDeleteCmd())
	cmd.AddCommand(newOfflineRetryCmd())
	cmd.AddCommand(newOfflineWatchCmd())

	return cmd
}

func newOfflineToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the download tools the server supports",
		Args:  cobra.NoArgs,
		RunE:  runOfflineTools,
	}
}

func newOfflineAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <dest-path> <url>...",
		Short: "Add offline download tasks",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runOfflineAdd,
	}

	cmd.Flags().String("tool", "aria2", "download tool")
	cmd.Flags().String("delete-policy", openlist.DeletePolicyOnSucceed, "what the server does with the tool's copy")
	cmd.Flags().Bool("wait", false, "poll until every task reaches a terminal state")
	cmd.Flags().Duration("poll-interval", defaultPollInterval, "polling interval with --wait")

	return cmd
}

func newOfflineListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List offline download tasks",
		Args:  cobra.NoArgs,
		RunE:  runOfflineList,
	}

	cmd.Flags().Bool("done", false, "only finished tasks")
	cmd.Flags().Bool("undone", false, "only pending/running tasks")
	cmd.MarkFlagsMutuallyExclusive("done", "undone")

	return cmd
}

func newOfflineInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <task-id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE:  runOfflineInfo,
	}
}

func newOfflineCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <task-id>",
		Short: "Cancel a task",
		Args:  cobra.ExactArgs(1),
		RunE:  runOfflineCancel,
	}
}

func newOfflineDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a finished task record",
		Args:  cobra.ExactArgs(1),
		RunE:  runOfflineDelete,
	}
}

func newOfflineRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry <task-id>",
		Short: "Re-queue a failed task",
		Args:  cobra.ExactArgs(1),
		RunE:  runOfflineRetry,
	}
}

func newOfflineWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <task-id>",
		Short: "Poll a task until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE:  runOfflineWatch,
	}

	cmd.Flags().Duration("poll-interval", defaultPollInterval, "polling interval")

	return cmd
}

func runOfflineTools(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	client, _, err := newClient(ctx)
	if err != nil {
		return err
	}

	tools, err := client.OfflineTools(ctx)
	if err != nil {
		return fmt.Errorf("listing offline download tools: %w", err)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(tools)
	}

	for _, tool := range tools {
		fmt.Println(tool)
	}

	return nil
}

func runOfflineAdd(cmd *cobra.Command, args []string) error {
	destPath := cleanRemotePath(args[0])
	urls := args[1:]

	tool, _ := cmd.Flags().GetString("tool")
	deletePolicy, _ := cmd.Flags().GetString("delete-policy")
	wait, _ := cmd.Flags().GetBool("wait")
	pollInterval, _ := cmd.Flags().GetDuration("poll-interval")

	ctx := cmd.Context()

	client, logger, err := newClient(ctx)
	if err != nil {
		return err
	}

	tasks, err := client.OfflineAdd(ctx, urls, destPath, tool, deletePolicy)
	if err != nil {
		return fmt.Errorf("adding offline download: %w", err)
	}

	printTasks(tasks)

	if !wait {
		return nil
	}

	for i := range tasks {
		final, err := watchTask(ctx, client, tasks[i].ID, pollInterval, logger)
		if err != nil {
			return err
		}

		if final.State != openlist.TaskStateSucceeded {
			return fmt.Errorf("task %s %s: %s", final.ID, final.State, final.Error)
		}
	}

	return nil
}

func runOfflineList(cmd *cobra.Command, _ []string) error {
	onlyDone, _ := cmd.Flags().GetBool("done")
	onlyUndone, _ := cmd.Flags().GetBool("undone")

	ctx := cmd.Context()

	client, _, err := newClient(ctx)
	if err != nil {
		return err
	}

	var tasks []openlist.Task

	if !onlyDone {
		undone, err := client.TasksUndone(ctx)
		if err != nil {
			return fmt.Errorf("listing unfinished tasks: %w", err)
		}

		tasks = append(tasks, undone...)
	}

	if !onlyUndone {
		done, err := client.TasksDone(ctx)
		if err != nil {
			return fmt.Errorf("listing finished tasks: %w", err)
		}

		tasks = append(tasks, done...)
	}

	printTasks(tasks)

	return nil
}

func runOfflineInfo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, _, err := newClient(ctx)
	if err != nil {
		return err
	}

	task, err := client.TaskInfo(ctx, args[0])
	if err != nil {
		return fmt.Errorf("fetching task %q: %w", args[0], err)
	}

	printTasks([]openlist.Task{*task})

	return nil
}

func runOfflineCancel(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, _, err := newClient(ctx)
	if err != nil {
		return err
	}

	if err := client.TaskCancel(ctx, args[0]); err != nil {
		return fmt.Errorf("canceling task %q: %w", args[0], err)
	}

	statusf("Canceled task %s\n", args[0])

	return nil
}

func runOfflineDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, _, err := newClient(ctx)
	if err != nil {
		return err
	}

	if err := client.TaskDelete(ctx, args[0]); err != nil {
		return fmt.Errorf("deleting task %q: %w", args[0], err)
	}

	statusf("Deleted task %s\n", args[0])

	return nil
}

func runOfflineRetry(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, _, err := newClient(ctx)
	if err != nil {
		return err
	}

	if err := client.TaskRetry(ctx, args[0]); err != nil {
		return fmt.Errorf("retrying task %q: %w", args[0], err)
	}

	statusf("Retrying task %s\n", args[0])

	return nil
}

func runOfflineWatch(cmd *cobra.Command, args []string) error {
	pollInterval, _ := cmd.Flags().GetDuration("poll-interval")
	ctx := cmd.Context()

	client, logger, err := newClient(ctx)
	if err != nil {
		return err
	}

	final, err := watchTask(ctx, client, args[0], pollInterval, logger)
	if err != nil {
		return err
	}

	printTasks([]openlist.Task{*final})

	if final.State != openlist.TaskStateSucceeded {
		return fmt.Errorf("task %s %s: %s", final.ID, final.State, final.Error)
	}

	return nil
}

// watchTask polls one task until it reaches a terminal state. The server
// owns the state machine; this loop only observes it, one request at a
// time.
func watchTask(
	ctx context.Context, client *openlist.Client, taskID string, interval time.Duration, logger *slog.Logger,
) (*openlist.Task, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		task, err := client.TaskInfo(ctx, taskID)
		if err != nil {
			return nil, fmt.Errorf("polling task %q: %w", taskID, err)
		}

		logger.Debug("task state",
			slog.String("task_id", taskID),
			slog.String("state", task.State.String()),
			slog.Float64("progress", task.Progress),
		)

		if task.State.Terminal() {
			return task, nil
		}

		statusf("%s %s %.1f%%\n", task.ID, task.State, task.Progress)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func printTasks(tasks []openlist.Task) {
	if flagJSON {
		type taskJSON struct {
			ID       string  `json:"id"`
			Name     string  `json:"name"`
			State    string  `json:"state"`
			Progress float64 `json:"progress"`
			Error    string  `json:"error,omitempty"`
		}

		out := make([]taskJSON, 0, len(tasks))
		for i := range tasks {
			out = append(out, taskJSON{
				ID:       tasks[i].ID,
				Name:     tasks[i].Name,
				State:    tasks[i].State.String(),
				Progress: tasks[i].Progress,
				Error:    tasks[i].Error,
			})
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		_ = enc.Encode(out)

		return
	}

	var headers []string
	if stdoutIsTTY() {
		headers = []string{"ID", "NAME", "STATE", "PROGRESS", "ERROR"}
	}

	rows := make([][]string, 0, len(tasks))
	for i := range tasks {
		rows = append(rows, []string{
			tasks[i].ID,
			tasks[i].Name,
			tasks[i].State.String(),
			strconv.FormatFloat(tasks[i].Progress, 'f', 1, 64) + "%",
			tasks[i].Error,
		})
	}

	printTable(os.Stdout, headers, rows)
}
