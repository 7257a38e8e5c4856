package apitest

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/turnupspot/turnupspot-client/internal/domain"
)

type socket struct {
	conn   *websocket.Conn
	userID domain.ID
	mu     sync.Mutex
}

func (s *socket) write(msg domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.WriteJSON(msg)
}

// Messages returns the stored history of a room
func (b *Backend) Messages(roomID string) []domain.ChatMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.ChatMessage(nil), b.rooms[roomID]...)
}

// AddMessage seeds a message authored by the holder of token
func (b *Backend) AddMessage(roomID, token, content string) domain.ChatMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.appendMessageLocked(roomID, b.byToken[token], content)
}

// Broadcast pushes msg to every socket open on the room
func (b *Backend) Broadcast(roomID string, msg domain.ChatMessage) {
	b.mu.Lock()
	targets := append([]*socket(nil), b.sockets[roomID]...)
	b.mu.Unlock()
	for _, s := range targets {
		s.write(msg)
	}
}

// Sockets returns how many live connections a room has
func (b *Backend) Sockets(roomID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sockets[roomID])
}

func (b *Backend) closeSockets() {
	b.mu.Lock()
	all := b.sockets
	b.sockets = map[string][]*socket{}
	b.mu.Unlock()
	for _, room := range all {
		for _, s := range room {
			s.conn.Close()
		}
	}
}

func (b *Backend) appendMessageLocked(roomID string, u *user, content string) domain.ChatMessage {
	msg := domain.ChatMessage{
		ID:          b.newLocalID(),
		ChatRoomID:  domain.ID(roomID),
		Content:     content,
		MessageType: "text",
		CreatedAt:   time.Now().UTC().Format("2006-01-02T15:04:05.000000"),
	}
	if u != nil {
		msg.SenderID = u.ID
		msg.SenderName = u.FullName()
		msg.Sender = &domain.MemberUser{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
	}
	b.rooms[roomID] = append(b.rooms[roomID], msg)
	return msg
}

func (b *Backend) registerChat(api *gin.RouterGroup) {
	chat := api.Group("/chat")
	chat.GET("/rooms/:room/messages", b.listMessages)
	chat.POST("/rooms/:room/messages", b.postMessage)
	chat.GET("/ws/:room", b.serveSocket)
}

func (b *Backend) listMessages(c *gin.Context) {
	if _, ok := b.currentUser(c); !ok {
		return
	}
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	b.mu.Lock()
	defer b.mu.Unlock()
	all := b.rooms[c.Param("room")]
	out := []domain.ChatMessage{}
	for i := skip; i < len(all) && len(out) < limit; i++ {
		out = append(out, all[i])
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) postMessage(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Content     string `json:"content"`
		MessageType string `json:"message_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		detail(c, http.StatusUnprocessableEntity, "content is required")
		return
	}

	b.mu.Lock()
	msg := b.appendMessageLocked(c.Param("room"), u, req.Content)
	b.mu.Unlock()
	c.JSON(http.StatusOK, msg)
}

func (b *Backend) serveSocket(c *gin.Context) {
	room := c.Param("room")
	b.mu.Lock()
	u := b.byToken[c.Query("token")]
	b.mu.Unlock()
	if u == nil {
		detail(c, http.StatusForbidden, "Invalid token")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	s := &socket{conn: conn, userID: u.ID}
	b.mu.Lock()
	b.sockets[room] = append(b.sockets[room], s)
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		list := b.sockets[room]
		for i, x := range list {
			if x == s {
				b.sockets[room] = append(list[:i], list[i+1:]...)
				break
			}
		}
		b.mu.Unlock()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		b.mu.Lock()
		msg := b.appendMessageLocked(room, u, string(data))
		targets := append([]*socket(nil), b.sockets[room]...)
		b.mu.Unlock()

		for _, t := range targets {
			if t != s {
				t.write(msg)
			}
		}
	}
}
