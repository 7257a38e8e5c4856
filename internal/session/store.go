// Package session is the single source of truth for who is signed in and
// with which bearer token.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/turnupspot/turnupspot-client/internal/domain"
	"github.com/turnupspot/turnupspot-client/internal/logging"
	"github.com/turnupspot/turnupspot-client/internal/nav"
)

var (
	// ErrInvalidToken means the profile fetch for a token failed; the
	// session was torn down.
	ErrInvalidToken = errors.New("session token rejected")
	// ErrSuperseded means a newer SetToken or Logout won the race and the
	// result of this resolve was discarded.
	ErrSuperseded = errors.New("session change superseded")
	// ErrNoToken is returned when a user is set without a token
	ErrNoToken = errors.New("cannot set a user without a session token")
)

type State int

const (
	Anonymous State = iota
	Resolving
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Resolving:
		return "resolving"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// TokenStore persists the bearer token between runs
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// ProfileFetcher resolves the profile a token belongs to
type ProfileFetcher interface {
	Me(ctx context.Context, token string) (*domain.User, error)
}

// Snapshot is a consistent read of the session
type Snapshot struct {
	Token string
	User  *domain.User
	State State
}

// Store owns the only mutable copy of the session. Readers use Token, User
// and Snapshot; mutation goes through SetToken, SetUser and Logout.
type Store struct {
	tokens    TokenStore
	profiles  ProfileFetcher
	navigator nav.Navigator
	now       func() time.Time
	logger    *logging.Logger

	mu        sync.Mutex
	token     string
	user      *domain.User
	state     State
	gen       uint64
	cancel    context.CancelFunc
	listeners []func(Snapshot)
}

type Option func(*Store)

// WithClock overrides time.Now for token expiry checks
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(tokens TokenStore, profiles ProfileFetcher, navigator nav.Navigator, opts ...Option) *Store {
	if tokens == nil {
		tokens = NewMemoryStore()
	}
	if navigator == nil {
		navigator = nav.NavigatorFunc(func(nav.Route) {})
	}
	s := &Store{
		tokens:    tokens,
		profiles:  profiles,
		navigator: navigator,
		now:       time.Now,
		logger:    logging.For("session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns the current bearer token, or "" when anonymous. Store
// satisfies api.TokenSource through it.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns the resolved profile, or nil
func (s *Store) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.user)
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{Token: s.token, User: copyUser(s.user), State: s.state}
}

// OnChange registers fn to receive the session after every transition
func (s *Store) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Restore seeds the session from the persisted token. A token whose JWT
// expiry has passed is dropped without asking the backend.
func (s *Store) Restore(ctx context.Context) error {
	token, err := s.tokens.Load(ctx)
	if err != nil {
		return fmt.Errorf("load persisted token: %w", err)
	}
	if token == "" {
		return nil
	}

	if expired(token, s.now()) {
		s.logger.LogInfo("restore", "persisted token has expired, discarding")
		if err := s.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
			s.logger.LogError("restore", err)
		}
		return nil
	}

	return s.SetToken(ctx, token)
}

// SetToken installs token and resolves its profile. An empty token signs
// out without navigating. When the profile fetch fails for any reason the
// whole session is torn down and the user is sent to the landing route.
func (s *Store) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if token == "" {
		s.token, s.user, s.state = "", nil, Anonymous
		s.mu.Unlock()
		s.persist(ctx, "set_token", gen, "")
		s.emit()
		return nil
	}

	rctx, cancel := context.WithCancel(ctx)
	s.token, s.user, s.state = token, nil, Resolving
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	s.persist(ctx, "set_token", gen, token)
	s.emit()

	user, err := s.profiles.Me(rctx, token)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return ErrSuperseded
	}
	s.cancel = nil

	if err != nil || user == nil {
		if err == nil {
			err = errors.New("empty profile")
		}
		s.token, s.user, s.state = "", nil, Anonymous
		s.mu.Unlock()

		s.logger.LogWarnf("set_token", "profile fetch failed, signing out: %v", err)
		s.persist(ctx, "set_token", gen, "")
		s.navigator.Navigate(nav.Landing)
		s.emit()
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	s.user, s.state = copyUser(user), Authenticated
	s.mu.Unlock()

	s.logger.LogInfof("set_token", "signed in as user_id=%s", user.ID)
	s.emit()
	return nil
}

// SetUser replaces the profile, e.g. after a profile update
func (s *Store) SetUser(user *domain.User) error {
	s.mu.Lock()
	if user != nil && s.token == "" {
		s.mu.Unlock()
		return ErrNoToken
	}
	s.user = copyUser(user)
	switch {
	case user != nil:
		s.state = Authenticated
	case s.token != "":
		s.state = Resolving
	default:
		s.state = Anonymous
	}
	s.mu.Unlock()

	s.emit()
	return nil
}

// Logout clears everything and sends the user to sign in
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.token, s.user, s.state = "", nil, Anonymous
	s.mu.Unlock()

	s.persist(ctx, "logout", gen, "")
	s.navigator.Navigate(nav.SignIn)
	s.emit()
}

// persist writes token, or clears storage when it is "", as of generation
// gen. Writes run detached from ctx cancellation. A write that finishes
// after a newer SetToken or Logout is followed by a write of the current
// token, so storage always ends up matching the session.
func (s *Store) persist(ctx context.Context, operation string, gen uint64, token string) {
	ctx = context.WithoutCancel(ctx)
	for {
		if token == "" {
			if err := s.tokens.Clear(ctx); err != nil {
				s.logger.LogError(operation, fmt.Errorf("clear persisted token: %w", err))
			}
		} else if err := s.tokens.Save(ctx, token); err != nil {
			s.logger.LogError(operation, fmt.Errorf("persist token: %w", err))
		}

		s.mu.Lock()
		if s.gen == gen {
			s.mu.Unlock()
			return
		}
		gen, token = s.gen, s.token
		s.mu.Unlock()
	}
}

func (s *Store) emit() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	listeners := s.listeners
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func copyUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// expired reports whether token is a JWT whose exp claim is in the past.
// Tokens that are not JWTs are left for the backend to judge.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
