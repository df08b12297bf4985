package openlist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	var calls int

	var gotBody loginRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		writeEnvelope(w, 200, "success", map[string]string{"token": "issued-token"})
	}))
	defer srv.Close()

	sess, err := Login(context.Background(), srv.Client(), srv.URL+"/", Credentials{
		Username: "guest",
		Password: "guest",
	}, discardLogger())
	require.NoError(t, err)

	// Exactly one login request per process, trailing slash trimmed.
	assert.Equal(t, 1, calls)
	assert.Equal(t, "guest", gotBody.Username)
	assert.Equal(t, "guest", gotBody.Password)
	assert.Equal(t, srv.URL, sess.ServerURL)
	assert.Equal(t, "issued-token", sess.Token)
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, 401, "password is incorrect", nil)
	}))
	defer srv.Close()

	sess, err := Login(context.Background(), srv.Client(), srv.URL, Credentials{
		Username: "guest",
		Password: "wrong",
	}, discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "password is incorrect")
	assert.Empty(t, sess.Token)
}

func TestLogin_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, 200, "success", map[string]string{})
	}))
	defer srv.Close()

	_, err := Login(context.Background(), srv.Client(), srv.URL, Credentials{
		Username: "guest",
		Password: "guest",
	}, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token")
}

func TestStaticSession_MakesNoRequests(t *testing.T) {
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		writeEnvelope(w, 200, "success", nil)
	}))
	defer srv.Close()

	sess := StaticSession(srv.URL+"/", "configured-token")
	assert.Equal(t, srv.URL, sess.ServerURL)
	assert.Equal(t, "configured-token", sess.Token)
	assert.Zero(t, calls)
}
