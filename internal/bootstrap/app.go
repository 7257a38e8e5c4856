// Package bootstrap wires configuration into a ready client: HTTP client,
// session, backend services and the shared screen dependencies.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/turnupspot/turnupspot-client/config"
	"github.com/turnupspot/turnupspot-client/internal/api"
	"github.com/turnupspot/turnupspot-client/internal/backend"
	"github.com/turnupspot/turnupspot-client/internal/fetch"
	"github.com/turnupspot/turnupspot-client/internal/geo"
	"github.com/turnupspot/turnupspot-client/internal/logging"
	"github.com/turnupspot/turnupspot-client/internal/nav"
	"github.com/turnupspot/turnupspot-client/internal/notify"
	"github.com/turnupspot/turnupspot-client/internal/places"
	"github.com/turnupspot/turnupspot-client/internal/screens"
	"github.com/turnupspot/turnupspot-client/internal/session"
	"github.com/turnupspot/turnupspot-client/internal/share"
)

// NoticeBuffer is how many unread notices the bus holds
const NoticeBuffer = 64

type AppDeps struct {
	Navigator nav.Navigator
	Confirmer notify.Confirmer
	Locator   geo.Locator
	Clipboard share.Clipboard
	Sharer    share.Sharer
	// Tokens overrides the configured token store
	Tokens TokenStore
}

// App is a wired client
type App struct {
	Config  *config.Config
	Screens *screens.Deps
	Notices *notify.Bus

	tokens TokenStore
}

// Build wires cfg. The persisted session is restored; a stale or rejected
// token leaves the app signed out rather than failing.
func Build(ctx context.Context, cfg *config.Config, dep AppDeps) (*App, error) {
	logging.Configure(cfg.App.Environment, cfg.App.LogLevel)
	logger := logging.For("bootstrap")

	if dep.Navigator == nil {
		dep.Navigator = nav.NavigatorFunc(func(nav.Route) {})
	}
	if dep.Locator == nil {
		dep.Locator = geo.Unsupported
	}
	if dep.Clipboard == nil {
		dep.Clipboard = share.UnavailableClipboard
	}
	if dep.Sharer == nil {
		dep.Sharer = share.UnavailableSharer
	}

	tokens := dep.Tokens
	if tokens == nil {
		var err error
		tokens, err = OpenTokenStore(ctx, TokenStoreOptions{Session: cfg.Session})
		if err != nil {
			return nil, err
		}
	}

	bus := notify.NewBus(NoticeBuffer)
	client, err := api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.RequestTimeout),
		api.WithRateLimit(cfg.API.RateLimitRPS, cfg.API.RateBurst),
		api.WithNotifier(notify.Multi{bus, notify.NewLogNotifier()}),
	)
	if err != nil {
		tokens.Close()
		return nil, fmt.Errorf("api client: %w", err)
	}

	users := backend.NewUserService(client)
	store := session.New(tokens, users, dep.Navigator)
	client.SetTokenSource(store)

	provider, err := places.New(ctx, cfg.Places.GoogleMapsAPIKey)
	if err != nil {
		logger.LogWarnf("places", "address suggestions disabled: %v", err)
		provider = places.Unavailable
	}

	deps := &screens.Deps{
		Client:   client,
		Session:  store,
		Auth:     backend.NewAuthService(client),
		Users:    users,
		Groups:   backend.NewGroupService(client),
		Members:  backend.NewMemberService(client),
		Vendors:  backend.NewVendorService(client),
		GameDays: backend.NewGameDayService(client),
		Chat:     backend.NewChatService(client, cfg.API.WebSocketURL),
		Places:   provider,
		Locator:  dep.Locator,
		Nav:      dep.Navigator,
		Notifier: bus,
		Runner:   fetch.NewRunner(bus, dep.Confirmer),

		Origin:    cfg.App.Origin,
		Clipboard: dep.Clipboard,
		Sharer:    dep.Sharer,
	}

	if err := store.Restore(ctx); err != nil && !errors.Is(err, session.ErrInvalidToken) {
		logger.LogError("restore_session", err)
	}

	return &App{Config: cfg, Screens: deps, Notices: bus, tokens: tokens}, nil
}

// Close releases the token store and the notice bus
func (a *App) Close() error {
	a.Notices.Close()
	return a.tokens.Close()
}
