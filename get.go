package main

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <remote-path> [local-path]",
		Short: "Download a file",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runGet,
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	remotePath := cleanRemotePath(args[0])

	localPath := path.Base(remotePath)
	if len(args) > 1 {
		localPath = args[1]
	}

	ctx := cmd.Context()

	client, logger, err := newClient(ctx)
	if err != nil {
		return err
	}

	logger.Debug("get", "remote_path", remotePath, "local_path", localPath)

	// Write to a .partial file and rename on success so an interrupted
	// download never masquerades as a complete file.
	partialPath := localPath + ".partial"

	f, err := os.Create(partialPath)
	if err != nil {
		return fmt.Errorf("creating %q: %w", partialPath, err)
	}

	n, err := client.Download(ctx, remotePath, f)

	closeErr := f.Close()

	if err != nil {
		os.Remove(partialPath)

		return fmt.Errorf("downloading %q: %w", remotePath, err)
	}

	if closeErr != nil {
		os.Remove(partialPath)

		return fmt.Errorf("writing %q: %w", partialPath, closeErr)
	}

	if err := os.Rename(partialPath, localPath); err != nil {
		return fmt.Errorf("renaming download to %q: %w", localPath, err)
	}

	statusf("Downloaded %s (%s)\n", localPath, formatSize(n))

	return nil
}
