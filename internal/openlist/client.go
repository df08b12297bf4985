package openlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const userAgent = "openlist-go/0.1"

// PathEncoding selects how the remote path is encoded into the File-Path
// upload header. Older servers expect base64, newer ones accept
// percent-encoding; the scheme is configurable rather than hardcoded.
type PathEncoding string

// Supported File-Path header encodings.
const (
	PathEncodingBase64  PathEncoding = "base64"
	PathEncodingPercent PathEncoding = "percent"
)

// Options configures a Client beyond its session.
type Options struct {
	// HTTPClient handles envelope (JSON) requests. Defaults to
	// http.DefaultClient; callers normally pass one with a fixed timeout.
	HTTPClient *http.Client

	// TransferClient handles streamed uploads and downloads, where an
	// overall client timeout would kill large transfers. Cancellation is
	// the caller's context. Defaults to HTTPClient without its timeout.
	TransferClient *http.Client

	// Credentials, when non-nil, enable a single re-login and replay
	// after the server reports 401 on an authenticated call. Token-only
	// sessions have nothing to re-login with and fail immediately.
	Credentials *Credentials

	// PathEncoding for upload File-Path headers. Defaults to base64.
	PathEncoding PathEncoding
}

// Client issues authenticated requests against one OpenList server.
// It is not safe for concurrent use: the CLI is single-threaded and the
// re-login path swaps the session in place.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	transferClient *http.Client
	session        Session
	creds          *Credentials
	pathEncoding   PathEncoding
	logger         *slog.Logger
}

// NewClient creates a client for the given session.
func NewClient(session Session, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	transferClient := opts.TransferClient
	if transferClient == nil {
		transferClient = &http.Client{Transport: httpClient.Transport}
	}

	pathEncoding := opts.PathEncoding
	if pathEncoding == "" {
		pathEncoding = PathEncodingBase64
	}

	return &Client{
		baseURL:        strings.TrimRight(session.ServerURL, "/"),
		httpClient:     httpClient,
		transferClient: transferClient,
		session:        Session{ServerURL: strings.TrimRight(session.ServerURL, "/"), Token: session.Token},
		creds:          opts.Credentials,
		pathEncoding:   pathEncoding,
		logger:         logger,
	}
}

// Session returns the client's current session. After a 401 re-login this
// carries the refreshed token.
func (c *Client) Session() Session {
	return c.session
}

// do executes one logical operation: build the request, attach the token,
// send, decode the envelope, and decode env.Data into out (when non-nil).
// A 401 envelope triggers a single re-login and replay when credentials
// are available; any other non-200 code is returned as an *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, reqBody, out any) error {
	var payload []byte

	if reqBody != nil {
		var err error

		payload, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("openlist: marshaling %s request: %w", path, err)
		}
	}

	env, err := c.doOnce(ctx, method, path, query, payload)
	if err != nil {
		return err
	}

	if env.Code == http.StatusUnauthorized && c.creds != nil {
		if err := c.relogin(ctx); err != nil {
			return err
		}

		env, err = c.doOnce(ctx, method, path, query, payload)
		if err != nil {
			return err
		}
	}

	if env.Code != http.StatusOK {
		return &APIError{Code: env.Code, Message: env.Message, Err: classifyCode(env.Code)}
	}

	return decodeData(env, path, out)
}

// doOnce sends a single HTTP request and decodes the envelope. Transport
// failures are not retried — re-invocation is the user's responsibility.
func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, payload []byte) (*Envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("openlist: creating %s %s request: %w", method, path, err)
	}

	req.Header.Set("User-Agent", userAgent)

	if c.session.Token != "" {
		req.Header.Set("Authorization", c.session.Token)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openlist: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request complete",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)

	return decodeEnvelope(resp)
}

// relogin refreshes the session after the server rejected the token.
func (c *Client) relogin(ctx context.Context) error {
	c.logger.Warn("token rejected, re-authenticating",
		slog.String("server", c.baseURL),
	)

	sess, err := Login(ctx, c.httpClient, c.baseURL, *c.creds, c.logger)
	if err != nil {
		return err
	}

	c.session = sess

	return nil
}

// decodeEnvelope reads and parses the uniform response wrapper. The HTTP
// status line is only reported when the body is not a valid envelope —
// the envelope code is authoritative otherwise.
func decodeEnvelope(resp *http.Response) (*Envelope, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openlist: reading response body: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("openlist: HTTP %d: decoding response envelope: %w", resp.StatusCode, err)
	}

	return &env, nil
}

// decodeData unmarshals env.Data into out. A null or absent data field
// with a non-nil out leaves out at its zero value — several endpoints
// return data: null on success.
func decodeData(env *Envelope, path string, out any) error {
	if out == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("openlist: decoding %s response data: %w", path, err)
	}

	return nil
}

// encodePathSegments URL-encodes each segment of a slash-separated path.
// Characters like #, ?, %, and spaces are encoded per-segment so the
// resulting path is safe for interpolation into download URLs.
func encodePathSegments(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}

	return strings.Join(segments, "/")
}
