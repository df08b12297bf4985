package openlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Credentials is a username/password pair for the login endpoint.
type Credentials struct {
	Username string
	Password string
}

// Session is an authenticated connection to one server: the base URL and
// the bearer token the server issued (or a pre-configured static token).
// Sessions live in memory for the duration of one command and are never
// written to disk.
type Session struct {
	ServerURL string
	Token     string
}

// StaticSession wraps a pre-issued token without any network call.
func StaticSession(serverURL, token string) Session {
	return Session{
		ServerURL: strings.TrimRight(serverURL, "/"),
		Token:     token,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginData struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a token via exactly one POST to
// /api/auth/login. There is no retry, no backoff, and no persistence —
// each process invocation authenticates afresh.
func Login(
	ctx context.Context, httpClient *http.Client, serverURL string, creds Credentials, logger *slog.Logger,
) (Session, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = slog.Default()
	}

	base := strings.TrimRight(serverURL, "/")

	logger.Info("logging in",
		slog.String("server", base),
		slog.String("username", creds.Username),
	)

	bodyBytes, err := json.Marshal(loginRequest{
		Username: creds.Username,
		Password: creds.Password,
	})
	if err != nil {
		return Session{}, fmt.Errorf("openlist: marshaling login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/auth/login", bytes.NewReader(bodyBytes))
	if err != nil {
		return Session{}, fmt.Errorf("openlist: creating login request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("openlist: login request failed: %w", err)
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return Session{}, err
	}

	if env.Code != http.StatusOK {
		return Session{}, fmt.Errorf("openlist: login failed: %w", &APIError{
			Code:    env.Code,
			Message: env.Message,
			Err:     classifyCode(env.Code),
		})
	}

	var ld loginData
	if err := json.Unmarshal(env.Data, &ld); err != nil {
		return Session{}, fmt.Errorf("openlist: decoding login response: %w", err)
	}

	if ld.Token == "" {
		return Session{}, fmt.Errorf("openlist: login succeeded but response carried no token")
	}

	logger.Info("login successful",
		slog.String("server", base),
	)

	return Session{ServerURL: base, Token: ld.Token}, nil
}
