package openlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ErrNoDownloadLink is returned when an entry offers neither a raw URL
// nor a signed server link. This happens for directories and for entries
// the session may not download.
var ErrNoDownloadLink = errors.New("openlist: entry has no download link")

// Download streams the content of a remote file to w and returns the
// number of bytes written. It stats the path first to obtain the signed
// link, then fetches the content in one request. Raw URLs issued by the
// backing storage are used as-is and never receive the bearer token —
// they carry their own authorization and may point at third-party hosts.
func (c *Client) Download(ctx context.Context, path string, w io.Writer) (int64, error) {
	entry, err := c.Stat(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("openlist: resolving %s for download: %w", path, err)
	}

	if entry.IsDir {
		return 0, fmt.Errorf("openlist: %s is a directory, not a file", path)
	}

	c.logger.Info("downloading file",
		slog.String("path", path),
		slog.Int64("size", entry.Size),
	)

	downloadURL, authorized := c.downloadURL(path, entry)
	if downloadURL == "" {
		return 0, ErrNoDownloadLink
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("openlist: creating download request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	if authorized {
		req.Header.Set("Authorization", c.session.Token)
	}

	resp, err := c.transferClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("openlist: download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return 0, fmt.Errorf("openlist: download of %s: HTTP %d: %w", path, resp.StatusCode, classifyCode(resp.StatusCode))
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		c.logger.Error("streaming download content failed",
			slog.String("path", path),
			slog.Int64("bytes_before_error", n),
			slog.String("error", err.Error()),
		)

		return n, fmt.Errorf("openlist: streaming download content: %w", err)
	}

	c.logger.Debug("download complete",
		slog.String("path", path),
		slog.Int64("bytes_written", n),
	)

	return n, nil
}

// downloadURL picks the transfer URL for an entry: the storage's raw URL
// when present, otherwise the server's /d/ path with the sign query.
// The second return reports whether the bearer token should accompany
// the request (only for URLs on our own server).
func (c *Client) downloadURL(path string, entry *Entry) (string, bool) {
	if entry.RawURL != "" {
		return entry.RawURL, false
	}

	u := c.baseURL + "/d" + encodePathSegments(path)
	if entry.Sign != "" {
		u += "?sign=" + entry.Sign
	}

	return u, true
}
