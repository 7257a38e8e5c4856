package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/turnupspot/turnupspot-client/internal/api"
	"github.com/turnupspot/turnupspot-client/internal/domain"
	"github.com/turnupspot/turnupspot-client/internal/logging"
)

// ErrFeedClosed is returned by Send after the live feed has closed
var ErrFeedClosed = errors.New("live chat feed closed")

type ChatService struct {
	client *api.Client
	wsBase string
	dialer *websocket.Dialer
}

// NewChatService creates a chat binding. wsBase is the websocket root,
// e.g. ws://localhost:8000/api/v1
func NewChatService(client *api.Client, wsBase string) *ChatService {
	return &ChatService{
		client: client,
		wsBase: strings.TrimRight(wsBase, "/"),
		dialer: websocket.DefaultDialer,
	}
}

func roomPath(roomID string) string {
	return "/chat/rooms/" + url.PathEscape(roomID)
}

// Messages returns a page of a room's history, oldest first
func (s *ChatService) Messages(ctx context.Context, roomID string, skip, limit int) ([]domain.ChatMessage, error) {
	opts := []api.RequestOption{api.WithQuery("skip", strconv.Itoa(skip))}
	if limit > 0 {
		opts = append(opts, api.WithQuery("limit", strconv.Itoa(limit)))
	}

	var messages []domain.ChatMessage
	if _, err := s.client.Get(ctx, roomPath(roomID)+"/messages", &messages, opts...); err != nil {
		return nil, fmt.Errorf("list chat messages %s: %w", roomID, err)
	}
	return messages, nil
}

func (s *ChatService) Send(ctx context.Context, roomID, content string) (*domain.ChatMessage, error) {
	body := map[string]any{
		"content":      content,
		"message_type": "text",
		"chat_room_id": roomID,
	}
	if n, err := strconv.Atoi(roomID); err == nil {
		body["chat_room_id"] = n
	}

	var msg domain.ChatMessage
	if _, err := s.client.Post(ctx, roomPath(roomID)+"/messages", body, &msg); err != nil {
		return nil, fmt.Errorf("send chat message %s: %w", roomID, err)
	}
	return &msg, nil
}

// LiveFeed is an open websocket to a chat room. Messages broadcast by the
// backend arrive on Messages until the feed closes.
type LiveFeed struct {
	conn     *websocket.Conn
	messages chan domain.ChatMessage
	done     chan struct{}

	writeMu sync.Mutex
	once    sync.Once
	err     error
}

// Live connects to the room's websocket. The backend authenticates the
// socket with the token query parameter.
func (s *ChatService) Live(ctx context.Context, roomID, token string) (*LiveFeed, error) {
	u, err := url.Parse(s.wsBase + "/chat/ws/" + url.PathEscape(roomID))
	if err != nil {
		return nil, fmt.Errorf("parse websocket URL: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	conn, _, err := s.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("connect to chat room %s: %w", roomID, err)
	}

	feed := &LiveFeed{
		conn:     conn,
		messages: make(chan domain.ChatMessage, 16),
		done:     make(chan struct{}),
	}
	go feed.readLoop(logging.New(ctx).WithField("room_id", roomID))
	go func() {
		select {
		case <-ctx.Done():
			feed.Close()
		case <-feed.done:
		}
	}()
	return feed, nil
}

func (f *LiveFeed) readLoop(logger *logging.Logger) {
	defer close(f.messages)
	for {
		_, data, err := f.conn.ReadMessage()
		if err != nil {
			f.finish(err)
			return
		}

		var msg domain.ChatMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.LogWarnf("chat_live", "dropping undecodable frame: %v", err)
			continue
		}

		select {
		case f.messages <- msg:
		case <-f.done:
			return
		}
	}
}

// Messages delivers incoming messages; it is closed when the feed ends
func (f *LiveFeed) Messages() <-chan domain.ChatMessage {
	return f.messages
}

// Send writes a text message to the room
func (f *LiveFeed) Send(content string) error {
	select {
	case <-f.done:
		return ErrFeedClosed
	default:
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	if err := f.conn.WriteMessage(websocket.TextMessage, []byte(content)); err != nil {
		return fmt.Errorf("send live message: %w", err)
	}
	return nil
}

// Err returns why the feed ended, nil for a normal close
func (f *LiveFeed) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Close shuts the socket down
func (f *LiveFeed) Close() error {
	f.writeMu.Lock()
	_ = f.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	f.writeMu.Unlock()
	f.finish(nil)
	return nil
}

func (f *LiveFeed) finish(err error) {
	f.once.Do(func() {
		if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			f.err = err
		}
		close(f.done)
		f.conn.Close()
	})
}
