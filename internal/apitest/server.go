// Package apitest runs an in-memory fake of the TurnUp Spot backend for
// tests. It implements the endpoints the client consumes with the same
// paths, shapes and error bodies.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/turnupspot/turnupspot-client/internal/domain"
)

const basePath = "/api/v1"

// Request is one recorded call, path relative to the API base
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
}

type fault struct {
	status int
	detail string
}

type user struct {
	domain.User
	password string
	token    string
}

type member struct {
	id       int
	userID   domain.ID
	role     domain.MemberRole
	approved bool
	joinedAt string
}

// Backend is the fake's state. All fields are guarded by mu.
type Backend struct {
	mu sync.Mutex

	nextID    int
	users     map[domain.ID]*user
	byToken   map[string]*user
	byEmail   map[string]*user
	pending   map[string]domain.ID // activation token -> user
	groups    map[string]*domain.SportGroup
	order     []string
	members   map[string][]*member
	vendors   []domain.Vendor
	gameDays  map[string]*domain.GameDayInfo
	players   map[string][]domain.Player
	rooms     map[string][]domain.ChatMessage
	sockets   map[string][]*socket
	requests  []Request
	faults    map[string]fault
	blockers  map[string]chan struct{}
	lastImage map[string]string
}

func NewBackend() *Backend {
	return &Backend{
		nextID:    1,
		users:     map[domain.ID]*user{},
		byToken:   map[string]*user{},
		byEmail:   map[string]*user{},
		pending:   map[string]domain.ID{},
		groups:    map[string]*domain.SportGroup{},
		members:   map[string][]*member{},
		gameDays:  map[string]*domain.GameDayInfo{},
		players:   map[string][]domain.Player{},
		rooms:     map[string][]domain.ChatMessage{},
		sockets:   map[string][]*socket{},
		faults:    map[string]fault{},
		blockers:  map[string]chan struct{}{},
		lastImage: map[string]string{},
	}
}

// Server is a running fake
type Server struct {
	*Backend
	HTTP *httptest.Server
	// URL is the API base, e.g. http://127.0.0.1:41234/api/v1
	URL string
	// WSURL is the websocket base
	WSURL string
}

// Start runs a fresh fake for the duration of the test
func Start(t testing.TB) *Server {
	t.Helper()
	b := NewBackend()
	srv := httptest.NewServer(b.Router())
	t.Cleanup(func() {
		b.closeSockets()
		srv.Close()
	})

	return &Server{
		Backend: b,
		HTTP:    srv,
		URL:     srv.URL + basePath,
		WSURL:   "ws" + strings.TrimPrefix(srv.URL, "http") + basePath,
	}
}

// Router builds the gin engine serving the fake
func (b *Backend) Router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group(basePath)
	api.Use(b.record(), b.faultInjection())

	b.registerAuth(api)
	b.registerGroups(api)
	b.registerGameDay(api)
	b.registerChat(api)
	return r
}

func key(method, path string) string {
	return method + " " + path
}

// Fail makes the next calls to method+path answer status with detail,
// until Clear is called. path is relative to the API base.
func (b *Backend) Fail(method, path string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faults[key(method, path)] = fault{status: status, detail: detail}
}

// Clear removes an injected failure
func (b *Backend) Clear(method, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.faults, key(method, path))
}

// Block holds calls to method+path until the returned release is called
func (b *Backend) Block(method, path string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.blockers[key(method, path)] = ch
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.blockers, key(method, path))
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Requests returns every recorded call
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// Count returns how many times method+path was called
func (b *Backend) Count(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Reset forgets the recorded calls
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

func (b *Backend) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		rel := strings.TrimPrefix(c.Request.URL.Path, basePath)
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:        c.Request.Method,
			Path:          rel,
			Query:         c.Request.URL.RawQuery,
			Authorization: c.GetHeader("Authorization"),
			ContentType:   c.ContentType(),
		})
		b.mu.Unlock()
		c.Next()
	}
}

func (b *Backend) faultInjection() gin.HandlerFunc {
	return func(c *gin.Context) {
		k := key(c.Request.Method, strings.TrimPrefix(c.Request.URL.Path, basePath))

		b.mu.Lock()
		f, failing := b.faults[k]
		gate := b.blockers[k]
		b.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}
		if failing {
			detail(c, f.status, f.detail)
			return
		}
		c.Next()
	}
}

func detail(c *gin.Context, status int, msg string) {
	if msg == "" {
		c.AbortWithStatus(status)
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

// currentUser resolves the bearer token; it answers 401 itself if absent
func (b *Backend) currentUser(c *gin.Context) (*user, bool) {
	u := b.optionalUser(c)
	if u == nil {
		detail(c, http.StatusUnauthorized, "Could not validate credentials")
		return nil, false
	}
	return u, true
}

func (b *Backend) optionalUser(c *gin.Context) *user {
	auth := c.GetHeader("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if token == "" || token == auth {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.byToken[token]
}

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
