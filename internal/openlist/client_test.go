package openlist

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// discardLogger returns a logger that swallows all output, for quiet tests.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeEnvelope writes a {code, message, data} response body.
func writeEnvelope(w http.ResponseWriter, code int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")

	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"message": message,
		"data":    data,
	})
}

// newTestClient creates a Client with a static token pointing at the
// given httptest server.
func newTestClient(t *testing.T, url string, opts Options) *Client {
	t.Helper()

	return NewClient(StaticSession(url, "test-token"), opts, discardLogger())
}

func TestDo_AttachesHeaders(t *testing.T) {
	var gotAuth, gotContentType, gotUserAgent string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotUserAgent = r.Header.Get("User-Agent")
		writeEnvelope(w, 200, "success", nil)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	require.NoError(t, client.Mkdir(context.Background(), "/new-dir"))

	// Raw token, no "Bearer" prefix.
	assert.Equal(t, "test-token", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, userAgent, gotUserAgent)
}

func TestDo_EnvelopeErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		sentinel error
	}{
		{"bad request", 400, ErrBadRequest},
		{"unauthorized", 401, ErrUnauthorized},
		{"forbidden", 403, ErrForbidden},
		{"not found", 404, ErrNotFound},
		{"conflict", 409, ErrConflict},
		{"server error", 500, ErrServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeEnvelope(w, tt.code, "something went wrong", nil)
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL, Options{})
			err := client.Mkdir(context.Background(), "/x")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, "something went wrong", apiErr.Message)
		})
	}
}

func TestDo_EnvelopeFailureOnTransportSuccess(t *testing.T) {
	// HTTP 200 with a failing envelope code is still a failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		writeEnvelope(w, 500, "storage not found", nil)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	err := client.Mkdir(context.Background(), "/x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerError)
}

func TestDo_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, 200, "success", nil)
	}))
	srv.Close() // refuse connections

	client := newTestClient(t, srv.URL, Options{})
	err := client.Mkdir(context.Background(), "/x")
	require.Error(t, err)

	// Transport failures carry no envelope code.
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestDo_InvalidEnvelopeBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	err := client.Mkdir(context.Background(), "/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestDo_ReauthOn401(t *testing.T) {
	var logins, attempts int

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		logins++
		writeEnvelope(w, 200, "success", map[string]string{"token": "fresh-token"})
	})
	mux.HandleFunc("/api/fs/mkdir", func(w http.ResponseWriter, r *http.Request) {
		attempts++

		if r.Header.Get("Authorization") != "fresh-token" {
			writeEnvelope(w, 401, "token is expired", nil)

			return
		}

		writeEnvelope(w, 200, "success", nil)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(StaticSession(srv.URL, "stale-token"), Options{
		Credentials: &Credentials{Username: "admin", Password: "pw"},
	}, discardLogger())

	require.NoError(t, client.Mkdir(context.Background(), "/x"))
	assert.Equal(t, 1, logins)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, "fresh-token", client.Session().Token)
}

func TestDo_NoReauthWithoutCredentials(t *testing.T) {
	var logins int

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		logins++
		writeEnvelope(w, 200, "success", map[string]string{"token": "fresh-token"})
	})
	mux.HandleFunc("/api/fs/mkdir", func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, 401, "token is expired", nil)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	err := client.Mkdir(context.Background(), "/x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, logins)
}

func TestDo_SecondUnauthorizedIsFinal(t *testing.T) {
	var logins, attempts int

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		logins++
		writeEnvelope(w, 200, "success", map[string]string{"token": "fresh-token"})
	})
	mux.HandleFunc("/api/fs/mkdir", func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		writeEnvelope(w, 401, "permission denied", nil)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(StaticSession(srv.URL, "stale-token"), Options{
		Credentials: &Credentials{Username: "admin", Password: "pw"},
	}, discardLogger())

	err := client.Mkdir(context.Background(), "/x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, logins)
	assert.Equal(t, 2, attempts)
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client := NewClient(Session{ServerURL: "http://example.com/", Token: "t"}, Options{}, discardLogger())
	assert.Equal(t, "http://example.com", client.baseURL)
}

func TestEncodePathSegments(t *testing.T) {
	assert.Equal(t, "/a%20b/c%23d", encodePathSegments("/a b/c#d"))
	assert.Equal(t, "/plain/path", encodePathSegments("/plain/path"))
}
