package openlist

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

// DefaultPageSize is the per_page value used when the caller does not ask
// for a specific page.
const DefaultPageSize = 30

// Search scopes for the /api/fs/search endpoint.
const (
	SearchScopeAll   = 0
	SearchScopeDirs  = 1
	SearchScopeFiles = 2
)

// entryResponse mirrors the server's JSON for one file entry. Unexported —
// callers see the normalized Entry.
type entryResponse struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	IsDir    bool   `json:"is_dir"`
	Modified string `json:"modified"`
	Sign     string `json:"sign"`
	Parent   string `json:"parent"`
	RawURL   string `json:"raw_url"`
}

func (e *entryResponse) toEntry(logger *slog.Logger) Entry {
	return Entry{
		Name:     e.Name,
		Size:     e.Size,
		IsDir:    e.IsDir,
		Modified: parseTimestamp(e.Modified, "modified", e.Name, logger),
		Parent:   e.Parent,
		Sign:     e.Sign,
		RawURL:   e.RawURL,
	}
}

type listRequest struct {
	Path    string `json:"path"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Refresh bool   `json:"refresh"`
}

type listResponse struct {
	Content []entryResponse `json:"content"`
	Total   int             `json:"total"`
}

type pathRequest struct {
	Path string `json:"path"`
}

type searchRequest struct {
	Parent   string `json:"parent"`
	Keywords string `json:"keywords"`
	Scope    int    `json:"scope"`
	Page     int    `json:"page"`
	PerPage  int    `json:"per_page"`
}

type renameRequest struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

type removeRequest struct {
	Dir   string   `json:"dir"`
	Names []string `json:"names"`
}

type transferRequest struct {
	SrcDir string   `json:"src_dir"`
	DstDir string   `json:"dst_dir"`
	Names  []string `json:"names"`
}

// List returns one page of directory contents plus the server-reported
// total entry count. Refresh asks the server to bypass its listing cache.
func (c *Client) List(ctx context.Context, path string, page, perPage int, refresh bool) ([]Entry, int, error) {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}

	if page <= 0 {
		page = 1
	}

	var lr listResponse

	err := c.do(ctx, http.MethodPost, "/api/fs/list", nil, &listRequest{
		Path:    path,
		Page:    page,
		PerPage: perPage,
		Refresh: refresh,
	}, &lr)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]Entry, 0, len(lr.Content))
	for i := range lr.Content {
		entries = append(entries, lr.Content[i].toEntry(c.logger))
	}

	return entries, lr.Total, nil
}

// ListAll returns all entries of a directory, paging through the listing
// until the server-reported total is reached.
func (c *Client) ListAll(ctx context.Context, path string) ([]Entry, error) {
	c.logger.Info("listing directory",
		slog.String("path", path),
	)

	var entries []Entry

	for page := 1; ; page++ {
		pageEntries, total, err := c.List(ctx, path, page, DefaultPageSize, false)
		if err != nil {
			return nil, err
		}

		entries = append(entries, pageEntries...)

		c.logger.Debug("fetched listing page",
			slog.Int("page", page),
			slog.Int("count", len(pageEntries)),
			slog.Int("total", total),
		)

		if len(entries) >= total || len(pageEntries) == 0 {
			break
		}
	}

	c.logger.Info("listing complete",
		slog.String("path", path),
		slog.Int("total_entries", len(entries)),
	)

	return entries, nil
}

// Stat returns the metadata of a single file or directory, including the
// signed download link fields when the entry is a file.
func (c *Client) Stat(ctx context.Context, path string) (*Entry, error) {
	var er entryResponse

	if err := c.do(ctx, http.MethodPost, "/api/fs/get", nil, &pathRequest{Path: path}, &er); err != nil {
		return nil, err
	}

	entry := er.toEntry(c.logger)

	return &entry, nil
}

// Search finds entries matching keywords under parent. scope is one of the
// SearchScope constants. Returns one page of hits plus the total count.
func (c *Client) Search(ctx context.Context, parent, keywords string, scope, page, perPage int) ([]Entry, int, error) {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}

	if page <= 0 {
		page = 1
	}

	c.logger.Info("searching",
		slog.String("parent", parent),
		slog.String("keywords", keywords),
		slog.Int("scope", scope),
	)

	var lr listResponse

	err := c.do(ctx, http.MethodPost, "/api/fs/search", nil, &searchRequest{
		Parent:   parent,
		Keywords: keywords,
		Scope:    scope,
		Page:     page,
		PerPage:  perPage,
	}, &lr)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]Entry, 0, len(lr.Content))
	for i := range lr.Content {
		entries = append(entries, lr.Content[i].toEntry(c.logger))
	}

	return entries, lr.Total, nil
}

// Mkdir creates a directory (including missing parents, server-side).
func (c *Client) Mkdir(ctx context.Context, path string) error {
	c.logger.Info("creating directory",
		slog.String("path", path),
	)

	return c.do(ctx, http.MethodPost, "/api/fs/mkdir", nil, &pathRequest{Path: path}, nil)
}

// Rename gives the file or directory at path a new name in place.
func (c *Client) Rename(ctx context.Context, path, newName string) error {
	c.logger.Info("renaming",
		slog.String("path", path),
		slog.String("new_name", newName),
	)

	return c.do(ctx, http.MethodPost, "/api/fs/rename", nil, &renameRequest{Path: path, Name: newName}, nil)
}

// ErrNoNames is returned when a multi-name operation is called with an
// empty name list.
var ErrNoNames = errors.New("openlist: at least one name is required")

// Remove deletes the named entries from dir in one call. Whatever
// atomicity the server provides for multi-name removal is passed through
// unchanged.
func (c *Client) Remove(ctx context.Context, dir string, names ...string) error {
	if len(names) == 0 {
		return ErrNoNames
	}

	c.logger.Info("removing entries",
		slog.String("dir", dir),
		slog.Int("count", len(names)),
	)

	return c.do(ctx, http.MethodPost, "/api/fs/remove", nil, &removeRequest{Dir: dir, Names: names}, nil)
}

// Copy copies the named entries from srcDir into dstDir.
func (c *Client) Copy(ctx context.Context, srcDir, dstDir string, names ...string) error {
	if len(names) == 0 {
		return ErrNoNames
	}

	c.logger.Info("copying entries",
		slog.String("src_dir", srcDir),
		slog.String("dst_dir", dstDir),
		slog.Int("count", len(names)),
	)

	return c.do(ctx, http.MethodPost, "/api/fs/copy", nil, &transferRequest{
		SrcDir: srcDir,
		DstDir: dstDir,
		Names:  names,
	}, nil)
}

// Move moves the named entries from srcDir into dstDir.
func (c *Client) Move(ctx context.Context, srcDir, dstDir string, names ...string) error {
	if len(names) == 0 {
		return ErrNoNames
	}

	c.logger.Info("moving entries",
		slog.String("src_dir", srcDir),
		slog.String("dst_dir", dstDir),
		slog.Int("count", len(names)),
	)

	return c.do(ctx, http.MethodPost, "/api/fs/move", nil, &transferRequest{
		SrcDir: srcDir,
		DstDir: dstDir,
		Names:  names,
	}, nil)
}

// userResponse mirrors the /api/me JSON.
type userResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	BasePath string `json:"base_path"`
	Role     int    `json:"role"`
	Disabled bool   `json:"disabled"`
}

// Me returns the account the session is authenticated as. Useful for
// verifying a static token without side effects.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var ur userResponse

	if err := c.do(ctx, http.MethodGet, "/api/me", nil, nil, &ur); err != nil {
		return nil, err
	}

	return &User{
		ID:       ur.ID,
		Username: ur.Username,
		BasePath: ur.BasePath,
		Role:     ur.Role,
		Disabled: ur.Disabled,
	}, nil
}
