package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openlist-contrib/openlist-go/internal/openlist"
)

func newPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <local-path> <remote-path>",
		Short: "Upload a file",
		Long: `Upload a local file to the server. The file is streamed, so size is
bounded by the server, not local memory. Content hashes are computed
before transfer so a server that already holds identical content can
skip the upload; use --no-hash to avoid the extra read pass on very
large files.

A remote path ending in "/" is treated as a directory and the local
file name is appended.`,
		Args: cobra.ExactArgs(2),
		RunE: runPut,
	}

	cmd.Flags().Bool("overwrite", false, "replace an existing remote file")
	cmd.Flags().Bool("as-task", false, "run the server-side copy as a background task")
	cmd.Flags().Bool("no-hash", false, "skip the content-hash pass")

	return cmd
}

func runPut(cmd *cobra.Command, args []string) error {
	localPath := args[0]
	remotePath := args[1]

	if strings.HasSuffix(remotePath, "/") {
		remotePath += filepath.Base(localPath)
	}

	remotePath = cleanRemotePath(remotePath)

	overwrite, _ := cmd.Flags().GetBool("overwrite")
	asTask, _ := cmd.Flags().GetBool("as-task")
	noHash, _ := cmd.Flags().GetBool("no-hash")

	ctx := cmd.Context()

	client, logger, err := newClient(ctx)
	if err != nil {
		return err
	}

	logger.Debug("put", "local_path", localPath, "remote_path", remotePath)

	task, err := client.Upload(ctx, localPath, remotePath, openlist.UploadOptions{
		Overwrite: overwrite,
		AsTask:    asTask,
		SkipHash:  noHash,
	})
	if err != nil {
		return fmt.Errorf("uploading %q: %w", localPath, err)
	}

	fi, statErr := os.Stat(localPath)
	if statErr == nil {
		statusf("Uploaded %s (%s) to %s\n", localPath, formatSize(fi.Size()), remotePath)
	} else {
		statusf("Uploaded %s to %s\n", localPath, remotePath)
	}

	if task != nil {
		statusf("Server task %s (%s)\n", task.ID, task.State)
	}

	return nil
}
