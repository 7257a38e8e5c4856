package backend

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnupspot/turnupspot-client/internal/api"
	"github.com/turnupspot/turnupspot-client/internal/domain"
)

func TestGameDay_InfoPlayersCheckIn(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, token := h.srv.AddUser("ada@example.com", "longenough1", "Ada", "Obi", domain.RoleUser)
	h.signIn(token)
	team := 1
	h.srv.SetGameDay("g1", domain.GameDayInfo{IsPlayingDay: true, Day: "Monday", GameStartTime: "18:00:00"},
		[]domain.Player{{ID: "p1", UserID: "99", Name: "Sam", Status: domain.PlayerExpected, Team: &team}})
	games := NewGameDayService(h.client)

	info, err := games.Info(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, info.IsPlayingDay)
	assert.False(t, info.CheckInEnabled)

	players, err := games.Players(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, 1, *players[0].Team)

	err = games.CheckIn(ctx, "g1")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, api.StatusOf(err))

	h.srv.SetGameDay("g1", domain.GameDayInfo{IsPlayingDay: true, CheckInEnabled: true}, nil)
	require.NoError(t, games.CheckIn(ctx, "g1"))
	roster := h.srv.Players("g1")
	require.Len(t, roster, 1)
	assert.Equal(t, domain.PlayerArrived, roster[0].Status)
	assert.Equal(t, "Ada Obi", roster[0].Name)

	_, err = games.Info(ctx, "missing")
	assert.True(t, api.IsNotFound(err))
}

func TestChat_HistoryAndSend(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, token := h.srv.AddUser("ada@example.com", "longenough1", "Ada", "Obi", domain.RoleUser)
	h.signIn(token)
	for _, text := range []string{"one", "two", "three"} {
		h.srv.AddMessage("7", token, text)
	}
	chat := NewChatService(h.client, h.srv.WSURL)

	page, err := chat.Messages(ctx, "7", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "two", page[0].Content)
	assert.Equal(t, "Ada Obi", page[0].Author())

	sent, err := chat.Send(ctx, "7", "four")
	require.NoError(t, err)
	assert.Equal(t, "four", sent.Content)
	assert.Len(t, h.srv.Messages("7"), 4)
}

func TestChat_LiveFeed(t *testing.T) {
	h := newHarness(t)
	_, ada := h.srv.AddUser("ada@example.com", "longenough1", "Ada", "Obi", domain.RoleUser)
	_, ben := h.srv.AddUser("ben@example.com", "longenough1", "Ben", "Ade", domain.RoleUser)
	chat := NewChatService(h.client, h.srv.WSURL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	adaFeed, err := chat.Live(ctx, "7", ada)
	require.NoError(t, err)
	defer adaFeed.Close()
	benFeed, err := chat.Live(ctx, "7", ben)
	require.NoError(t, err)
	defer benFeed.Close()

	require.Eventually(t, func() bool { return h.srv.Sockets("7") == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, adaFeed.Send("hello"))
	select {
	case msg := <-benFeed.Messages():
		assert.Equal(t, "hello", msg.Content)
		assert.Equal(t, "Ada Obi", msg.SenderName)
	case <-ctx.Done():
		t.Fatal("message was not broadcast")
	}

	select {
	case msg := <-adaFeed.Messages():
		t.Fatalf("sender received its own message %q", msg.Content)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestChat_LiveFeedClosesWithContext(t *testing.T) {
	h := newHarness(t)
	_, ada := h.srv.AddUser("ada@example.com", "longenough1", "Ada", "Obi", domain.RoleUser)
	chat := NewChatService(h.client, h.srv.WSURL)

	ctx, cancel := context.WithCancel(context.Background())
	feed, err := chat.Live(ctx, "7", ada)
	require.NoError(t, err)
	cancel()

	require.Eventually(t, func() bool {
		_, open := <-feed.Messages()
		return !open
	}, 2*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, feed.Send("late"), ErrFeedClosed)
}

func TestChat_LiveRejectsBadToken(t *testing.T) {
	h := newHarness(t)
	_, err := NewChatService(h.client, h.srv.WSURL).Live(context.Background(), "7", "bogus")
	require.Error(t, err)
}
