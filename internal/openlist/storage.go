package openlist

import (
	"context"
	"log/slog"
	"net/http"
)

// storageResponse mirrors the admin storage list JSON.
type storageResponse struct {
	ID        int    `json:"id"`
	MountPath string `json:"mount_path"`
	Driver    string `json:"driver"`
	Disabled  bool   `json:"disabled"`
	Status    string `json:"status"`
	Remark    string `json:"remark"`
}

type storageListResponse struct {
	Content []storageResponse `json:"content"`
	Total   int               `json:"total"`
}

// Storages lists the configured storage backends. Requires an admin
// session; non-admin tokens get a 403 envelope from the server.
func (c *Client) Storages(ctx context.Context) ([]Storage, error) {
	c.logger.Info("listing storages")

	var slr storageListResponse

	if err := c.do(ctx, http.MethodGet, "/api/admin/storage/list", nil, nil, &slr); err != nil {
		return nil, err
	}

	storages := make([]Storage, 0, len(slr.Content))
	for i := range slr.Content {
		storages = append(storages, Storage{
			ID:        slr.Content[i].ID,
			MountPath: slr.Content[i].MountPath,
			Driver:    slr.Content[i].Driver,
			Disabled:  slr.Content[i].Disabled,
			Status:    slr.Content[i].Status,
			Remark:    slr.Content[i].Remark,
		})
	}

	c.logger.Debug("listed storages",
		slog.Int("count", len(storages)),
	)

	return storages, nil
}
