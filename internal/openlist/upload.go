package openlist

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
)

// UploadOptions controls a single upload.
type UploadOptions struct {
	// Overwrite replaces an existing remote file instead of failing.
	Overwrite bool

	// AsTask asks the server to run the upload copy-to-storage step as a
	// background task; the returned Task can then be polled.
	AsTask bool

	// SkipHash disables the content-hash pass. Hashing reads the whole
	// file once before transfer, so callers skip it for very large files.
	SkipHash bool
}

// contentHashes are the streaming digests attached as rapid-upload
// headers. A server that already holds identical content can short-circuit
// the transfer.
type contentHashes struct {
	md5    string
	sha1   string
	sha256 string
}

// hashFile computes all three digests in one pass and rewinds the file.
func hashFile(f *os.File) (*contentHashes, error) {
	md5h := md5.New()
	sha1h := sha1.New()
	sha256h := sha256.New()

	if _, err := io.Copy(io.MultiWriter(md5h, sha1h, sha256h), f); err != nil {
		return nil, fmt.Errorf("openlist: hashing %s: %w", f.Name(), err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("openlist: rewinding %s after hashing: %w", f.Name(), err)
	}

	return &contentHashes{
		md5:    hex.EncodeToString(md5h.Sum(nil)),
		sha1:   hex.EncodeToString(sha1h.Sum(nil)),
		sha256: hex.EncodeToString(sha256h.Sum(nil)),
	}, nil
}

// encodeFilePath encodes a remote path for the File-Path header using the
// configured scheme.
func encodeFilePath(path string, enc PathEncoding) string {
	if enc == PathEncodingPercent {
		return url.PathEscape(path)
	}

	return base64.StdEncoding.EncodeToString([]byte(path))
}

// putData is the /api/fs/put response data when the server defers work to
// a background task.
type putData struct {
	Task *taskResponse `json:"task"`
}

// Upload streams a local file to remotePath via PUT /api/fs/put. The file
// is sent as the raw request body with its length from stat, so files
// larger than available memory upload fine. Local failures (missing file,
// directory instead of file) surface before any network call. Returns the
// server-side task when AsTask is set, nil otherwise.
func (c *Client) Upload(ctx context.Context, localPath, remotePath string, opts UploadOptions) (*Task, error) {
	fi, err := os.Stat(localPath)
	if err != nil {
		return nil, fmt.Errorf("openlist: local file: %w", err)
	}

	if fi.IsDir() {
		return nil, fmt.Errorf("openlist: %s is a directory, not a file", localPath)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("openlist: opening %s: %w", localPath, err)
	}
	defer f.Close()

	var hashes *contentHashes

	if !opts.SkipHash {
		hashes, err = hashFile(f)
		if err != nil {
			return nil, err
		}
	}

	c.logger.Info("uploading file",
		slog.String("local_path", localPath),
		slog.String("remote_path", remotePath),
		slog.Int64("size", fi.Size()),
		slog.Bool("hashed", hashes != nil),
	)

	env, err := c.putOnce(ctx, f, fi.Size(), remotePath, hashes, opts)
	if err != nil {
		return nil, err
	}

	// Single re-login and replay on a rejected token. The body must be
	// rewound because the first attempt consumed it.
	if env.Code == http.StatusUnauthorized && c.creds != nil {
		if err := c.relogin(ctx); err != nil {
			return nil, err
		}

		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("openlist: rewinding %s for upload retry: %w", localPath, err)
		}

		env, err = c.putOnce(ctx, f, fi.Size(), remotePath, hashes, opts)
		if err != nil {
			return nil, err
		}
	}

	if env.Code != http.StatusOK {
		return nil, &APIError{Code: env.Code, Message: env.Message, Err: classifyCode(env.Code)}
	}

	c.logger.Info("upload complete",
		slog.String("remote_path", remotePath),
		slog.Int64("bytes", fi.Size()),
	)

	if len(env.Data) == 0 {
		return nil, nil
	}

	var pd putData
	if err := json.Unmarshal(env.Data, &pd); err != nil {
		// Older servers answer with data: null or an unrelated shape;
		// the upload itself already succeeded.
		return nil, nil
	}

	if pd.Task == nil {
		return nil, nil
	}

	task := pd.Task.toTask()

	return &task, nil
}

// putOnce issues a single PUT with the stream as body.
func (c *Client) putOnce(
	ctx context.Context, body io.Reader, size int64, remotePath string, hashes *contentHashes, opts UploadOptions,
) (*Envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/fs/put", body)
	if err != nil {
		return nil, fmt.Errorf("openlist: creating upload request: %w", err)
	}

	req.ContentLength = size
	req.Header.Set("Authorization", c.session.Token)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("File-Path", encodeFilePath(remotePath, c.pathEncoding))
	req.Header.Set("As-Task", strconv.FormatBool(opts.AsTask))
	req.Header.Set("Overwrite", strconv.FormatBool(opts.Overwrite))

	if hashes != nil {
		req.Header.Set("X-File-Md5", hashes.md5)
		req.Header.Set("X-File-Sha1", hashes.sha1)
		req.Header.Set("X-File-Sha256", hashes.sha256)
	}

	resp, err := c.transferClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openlist: upload request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp)
}
