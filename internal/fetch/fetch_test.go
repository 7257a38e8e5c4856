package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnupspot/turnupspot-client/internal/api"
	"github.com/turnupspot/turnupspot-client/internal/notify"
)

func TestResource_ReadyAndFailed(t *testing.T) {
	fail := errors.New("boom")
	calls := 0
	r := NewResource(func(ctx context.Context) (int, error) {
		calls++
		if calls == 2 {
			return 0, fail
		}
		return calls, nil
	})
	assert.Equal(t, Idle, r.View().State)

	require.NoError(t, r.Refetch(context.Background()))
	assert.Equal(t, View[int]{State: Ready, Data: 1}, r.View())

	assert.ErrorIs(t, r.Refetch(context.Background()), fail)
	v := r.View()
	assert.Equal(t, Failed, v.State)
	assert.False(t, v.NotFound)
	assert.Equal(t, "boom", v.Message())
}

func TestResource_NotFoundIsDistinct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Sport group not found"}`))
	}))
	defer srv.Close()
	c, err := api.New(srv.URL)
	require.NoError(t, err)

	r := NewResource(func(ctx context.Context) (map[string]any, error) {
		var out map[string]any
		_, err := c.Get(ctx, "/sport-groups/x", &out)
		return out, err
	})
	require.Error(t, r.Refetch(context.Background()))
	v := r.View()
	assert.Equal(t, Failed, v.State)
	assert.True(t, v.NotFound)
	assert.Equal(t, "Sport group not found", v.Message())
}

func TestResource_SyncOnlyOnDependencyChange(t *testing.T) {
	var calls int32
	r := NewResource(func(ctx context.Context) (int32, error) {
		return atomic.AddInt32(&calls, 1), nil
	})
	ctx := context.Background()

	require.NoError(t, r.Sync(ctx, "g1", "tok"))
	require.NoError(t, r.Sync(ctx, "g1", "tok"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	require.NoError(t, r.Sync(ctx, "g2", "tok"))
	require.NoError(t, r.Sync(ctx, "g2", "other"))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(3), r.View().Data)
}

func TestResource_StaleResponseIsDiscarded(t *testing.T) {
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})
	r := NewResource(func(ctx context.Context) (string, error) {
		if ctx.Value(slowKey{}) != nil {
			close(slowStarted)
			<-releaseSlow
			// ignores cancellation to model a response already in flight
			return "stale", nil
		}
		return "fresh", nil
	})

	slowDone := make(chan error, 1)
	go func() {
		slowDone <- r.Refetch(context.WithValue(context.Background(), slowKey{}, true))
	}()
	<-slowStarted

	require.NoError(t, r.Refetch(context.Background()))
	close(releaseSlow)

	assert.ErrorIs(t, <-slowDone, ErrSuperseded)
	assert.Equal(t, "fresh", r.View().Data)
}

type slowKey struct{}

func TestResource_NewLoadCancelsOld(t *testing.T) {
	canceled := make(chan struct{})
	started := make(chan struct{}, 1)
	var n int32
	r := NewResource(func(ctx context.Context) (int32, error) {
		if atomic.AddInt32(&n, 1) == 1 {
			started <- struct{}{}
			<-ctx.Done()
			close(canceled)
			return 0, ctx.Err()
		}
		return 2, nil
	})

	go func() { _ = r.Refetch(context.Background()) }()
	<-started
	require.NoError(t, r.Refetch(context.Background()))

	select {
	case <-canceled:
	case <-time.After(2 * time.Second):
		t.Fatal("first load was not canceled")
	}
	assert.Equal(t, Ready, r.View().State)
}

func TestResource_CloseDropsResult(t *testing.T) {
	started := make(chan struct{})
	r := NewResource(func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})

	done := make(chan error, 1)
	go func() { done <- r.Refetch(context.Background()) }()
	<-started
	r.Close()

	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.ErrorIs(t, r.Refetch(context.Background()), ErrClosed)
}

func TestResource_Patch(t *testing.T) {
	r := NewResource(func(ctx context.Context) ([]string, error) {
		return []string{"a", "b", "c"}, nil
	})
	assert.False(t, r.Patch(func(s []string) []string { return nil }), "patching before load")

	require.NoError(t, r.Refetch(context.Background()))
	var seen []State
	r.OnChange(func(v View[[]string]) { seen = append(seen, v.State) })

	assert.True(t, r.Patch(func(s []string) []string { return append(s[:1:1], s[2:]...) }))
	assert.Equal(t, []string{"a", "c"}, r.View().Data)
	assert.Equal(t, []State{Ready}, seen)
}

func TestResource_PatchDuringLoadIsReplayed(t *testing.T) {
	release := make(chan struct{})
	calls := 0
	r := NewResource(func(ctx context.Context) ([]string, error) {
		calls++
		if calls > 1 {
			<-release
		}
		// the in-flight answer was computed before the patch
		return []string{"a", "b", "c"}, nil
	})
	require.NoError(t, r.Refetch(context.Background()))

	errCh := make(chan error, 1)
	go func() { errCh <- r.Refetch(context.Background()) }()
	require.Eventually(t, func() bool { return r.View().State == Loading }, time.Second, 5*time.Millisecond)

	drop := func(s []string) []string {
		out := []string{}
		for _, v := range s {
			if v != "b" {
				out = append(out, v)
			}
		}
		return out
	}
	assert.True(t, r.Patch(drop))
	assert.Equal(t, []string{"a", "c"}, r.View().Data, "shown at once")

	close(release)
	require.NoError(t, <-errCh)
	assert.Equal(t, View[[]string]{State: Ready, Data: []string{"a", "c"}}, r.View())

	require.NoError(t, r.Refetch(context.Background()))
	assert.Equal(t, []string{"a", "b", "c"}, r.View().Data, "replayed once only")
}

func TestRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("success applies and notifies", func(t *testing.T) {
		bus := notify.NewBus(4)
		applied := false
		err := NewRunner(bus, nil).Run(ctx, Mutation{
			Name:    "leave",
			Do:      func(context.Context) error { return nil },
			Apply:   func() { applied = true },
			Success: "Left group",
		})
		require.NoError(t, err)
		assert.True(t, applied)
		notices := bus.Drain()
		require.Len(t, notices, 1)
		assert.Equal(t, notify.LevelSuccess, notices[0].Level)
	})

	t.Run("failure leaves state and uses fallback", func(t *testing.T) {
		bus := notify.NewBus(4)
		applied := false
		err := NewRunner(bus, nil).Run(ctx, Mutation{
			Do:      func(context.Context) error { return errors.New("dial tcp: refused") },
			Apply:   func() { applied = true },
			Failure: "Failed to leave group",
		})
		require.Error(t, err)
		assert.False(t, applied)
		notices := bus.Drain()
		require.Len(t, notices, 1)
		assert.Equal(t, notify.LevelError, notices[0].Level)
		assert.Equal(t, "Failed to leave group", notices[0].Message)
	})

	t.Run("declined confirmation never dispatches", func(t *testing.T) {
		dispatched := false
		err := NewRunner(nil, notify.NeverConfirm).Run(ctx, Mutation{
			Confirm: "Delete this group?",
			Do:      func(context.Context) error { dispatched = true; return nil },
		})
		assert.ErrorIs(t, err, ErrNotConfirmed)
		assert.False(t, dispatched)
	})

	t.Run("accepted confirmation dispatches", func(t *testing.T) {
		var prompt string
		confirm := notify.ConfirmFunc(func(_ context.Context, p string) (bool, error) {
			prompt = p
			return true, nil
		})
		dispatched := false
		err := NewRunner(nil, confirm).Run(ctx, Mutation{
			Confirm: "Delete this group?",
			Do:      func(context.Context) error { dispatched = true; return nil },
		})
		require.NoError(t, err)
		assert.True(t, dispatched)
		assert.Equal(t, "Delete this group?", prompt)
	})
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	p := Paginate(items, 8, 1)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, p.Items)
	assert.Equal(t, 2, p.Pages)
	assert.True(t, p.HasNext())
	assert.False(t, p.HasPrev())

	p = Paginate(items, 8, 9)
	assert.Equal(t, 2, p.Number)
	assert.Equal(t, []int{9, 10}, p.Items)

	p = Paginate(items, 8, -3)
	assert.Equal(t, 1, p.Number)

	empty := Paginate([]int(nil), 8, 4)
	assert.Equal(t, 1, empty.Number)
	assert.Equal(t, 1, empty.Pages)
	assert.Empty(t, empty.Items)
}
