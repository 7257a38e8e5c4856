package screens

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/turnupspot/turnupspot-client/internal/backend"
	"github.com/turnupspot/turnupspot-client/internal/domain"
	"github.com/turnupspot/turnupspot-client/internal/fetch"
	"github.com/turnupspot/turnupspot-client/internal/logging"
)

// ChatHistoryLimit is how many messages are loaded when the room opens
const ChatHistoryLimit = 50

var ErrEmptyMessage = errors.New("message is empty")

// Chat is one chat room. History, sent messages and, when live, messages
// from other members all land in the same local collection.
type Chat struct {
	deps    *Deps
	room    string
	history *fetch.Resource[[]domain.ChatMessage]

	mu   sync.Mutex
	seen map[domain.ID]bool
	feed *backend.LiveFeed
}

func NewChat(deps *Deps, roomID string) *Chat {
	s := &Chat{deps: deps, room: roomID, seen: map[domain.ID]bool{}}
	s.history = fetch.NewResource(func(ctx context.Context) ([]domain.ChatMessage, error) {
		return deps.Chat.Messages(ctx, s.room, 0, ChatHistoryLimit)
	})
	s.history.OnChange(func(v fetch.View[[]domain.ChatMessage]) {
		if v.State != fetch.Ready {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, m := range v.Data {
			if m.ID != "" {
				s.seen[m.ID] = true
			}
		}
	})
	return s
}

func (s *Chat) Load(ctx context.Context) error {
	token, err := s.deps.requireToken()
	if err != nil {
		return err
	}
	return s.history.Sync(ctx, s.room, token)
}

func (s *Chat) View() fetch.View[[]domain.ChatMessage] { return s.history.View() }

// Messages is the local collection in arrival order
func (s *Chat) Messages() []domain.ChatMessage { return s.history.View().Data }

// add appends msg unless a message with its id is already shown
func (s *Chat) add(msg domain.ChatMessage) bool {
	s.mu.Lock()
	if msg.ID != "" && s.seen[msg.ID] {
		s.mu.Unlock()
		return false
	}
	if msg.ID != "" {
		s.seen[msg.ID] = true
	}
	s.mu.Unlock()

	ok := s.history.Patch(func(ms []domain.ChatMessage) []domain.ChatMessage {
		for _, m := range ms {
			if msg.ID != "" && m.ID == msg.ID {
				return ms
			}
		}
		return append(append([]domain.ChatMessage(nil), ms...), msg)
	})
	if !ok && msg.ID != "" {
		s.mu.Lock()
		delete(s.seen, msg.ID)
		s.mu.Unlock()
	}
	return ok
}

func (s *Chat) live() *backend.LiveFeed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed
}

// Send posts a message. While live it goes over the socket, which does not
// echo it back, so a local copy is shown under a local id.
func (s *Chat) Send(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}
	if feed := s.live(); feed != nil {
		err := feed.Send(content)
		if err == nil {
			s.add(s.localCopy(content))
			return nil
		}
		if !errors.Is(err, backend.ErrFeedClosed) {
			return err
		}
	}

	var sent *domain.ChatMessage
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "send_message",
		Do: func(ctx context.Context) error {
			m, err := s.deps.Chat.Send(ctx, s.room, content)
			sent = m
			return err
		},
		Apply:   func() { s.add(*sent) },
		Failure: "Failed to send message",
	})
}

func (s *Chat) localCopy(content string) domain.ChatMessage {
	msg := domain.ChatMessage{
		ID:         domain.ID("local-" + uuid.NewString()),
		ChatRoomID: domain.ID(s.room),
		Content:    content,
		CreatedAt:  s.deps.now().UTC().Format("2006-01-02T15:04:05"),
	}
	if u := s.deps.Session.User(); u != nil {
		msg.SenderID = u.ID
		msg.SenderName = u.FullName()
	}
	return msg
}

// OnMessages calls fn with the whole collection each time it changes
func (s *Chat) OnMessages(fn func([]domain.ChatMessage)) {
	s.history.OnChange(func(v fetch.View[[]domain.ChatMessage]) {
		if v.State == fetch.Ready {
			fn(v.Data)
		}
	})
}

// Live subscribes to the room's websocket until ctx ends or Close. The
// history must be loaded first.
func (s *Chat) Live(ctx context.Context) error {
	token, err := s.deps.requireToken()
	if err != nil {
		return err
	}
	feed, err := s.deps.Chat.Live(ctx, s.room, token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.feed != nil {
		s.feed.Close()
	}
	s.feed = feed
	s.mu.Unlock()

	logger := logging.New(ctx).WithField("room_id", s.room)
	go func() {
		for msg := range feed.Messages() {
			s.add(msg)
		}
		if err := feed.Err(); err != nil {
			logger.LogWarnf("chat_live", "live feed ended: %v", err)
		}
		s.mu.Lock()
		if s.feed == feed {
			s.feed = nil
		}
		s.mu.Unlock()
	}()
	return nil
}

func (s *Chat) Close() {
	s.mu.Lock()
	feed := s.feed
	s.feed = nil
	s.mu.Unlock()
	if feed != nil {
		feed.Close()
	}
	s.history.Close()
}
