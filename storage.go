package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func newStoragesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "storages",
		Short: "List configured storage backends (admin only)",
		Args:  cobra.NoArgs,
		RunE:  runStorages,
	}
}

func runStorages(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	client, _, err := newClient(ctx)
	if err != nil {
		return err
	}

	storages, err := client.Storages(ctx)
	if err != nil {
		return fmt.Errorf("listing storages: %w", err)
	}

	if flagJSON {
		type storageJSON struct {
			ID        int    `json:"id"`
			MountPath string `json:"mount_path"`
			Driver    string `json:"driver"`
			Disabled  bool   `json:"disabled"`
			Status    string `json:"status"`
		}

		out := make([]storageJSON, 0, len(storages))
		for i := range storages {
			out = append(out, storageJSON{
				ID:        storages[i].ID,
				MountPath: storages[i].MountPath,
				Driver:    storages[i].Driver,
				Disabled:  storages[i].Disabled,
				Status:    storages[i].Status,
			})
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(out)
	}

	var headers []string
	if stdoutIsTTY() {
		headers = []string{"ID", "MOUNT_PATH", "DRIVER", "DISABLED", "STATUS"}
	}

	rows := make([][]string, 0, len(storages))
	for i := range storages {
		rows = append(rows, []string{
			strconv.Itoa(storages[i].ID),
			storages[i].MountPath,
			storages[i].Driver,
			strconv.FormatBool(storages[i].Disabled),
			storages[i].Status,
		})
	}

	printTable(os.Stdout, headers, rows)

	return nil
}
