package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestInstrumented_PasswordGrant(t *testing.T) {
	var gotRID, gotGrant, gotUser string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotRID = r.Header.Get("X-Request-Id")
		gotGrant = r.PostForm.Get("grant_type")
		gotUser = r.PostForm.Get("username")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer"}`))
	})

	tokenURL, err := c.URL("/auth/login/form")
	require.NoError(t, err)
	cfg := &oauth2.Config{Endpoint: oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams}}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.Instrumented())
	tok, err := cfg.PasswordCredentialsToken(ctx, "ada@example.com", "secret-pass")
	require.NoError(t, err)

	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, "password", gotGrant)
	assert.Equal(t, "ada@example.com", gotUser)
	assert.NotEmpty(t, gotRID)
	assert.Equal(t, 0, c.Loading().Count(), "body close releases the loading counter")
}

func TestTokenError_FromRetrieveError(t *testing.T) {
	c, bus := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Incorrect email or password"}`))
	})

	tokenURL, err := c.URL("/auth/login/form")
	require.NoError(t, err)
	cfg := &oauth2.Config{Endpoint: oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams}}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.Instrumented())
	_, err = cfg.PasswordCredentialsToken(ctx, "ada@example.com", "wrong")
	require.Error(t, err)

	err = c.TokenError(ctx, "/auth/login/form", err)
	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Incorrect email or password", apiErr.Message)
	assert.True(t, apiErr.FromServer)

	notices := bus.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, http.StatusUnauthorized, notices[0].Status)
	assert.Equal(t, 0, c.Loading().Count())
}

func TestTokenError_Nil(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.NoError(t, c.TokenError(context.Background(), "/x", nil))
}
