package backend

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turnupspot/turnupspot-client/internal/api"
	"github.com/turnupspot/turnupspot-client/internal/apitest"
)

// harness is a client wired to a fresh fake with a swappable session token
type harness struct {
	srv    *apitest.Server
	client *api.Client

	mu    sync.Mutex
	token string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{srv: apitest.Start(t)}
	c, err := api.New(h.srv.URL, api.WithTokenSource(api.TokenFunc(func() string {
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.token
	})))
	require.NoError(t, err)
	h.client = c
	return h
}

func (h *harness) signIn(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

func ptr[T any](v T) *T { return &v }
