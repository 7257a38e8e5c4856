// Package screens holds the page view models. Each screen owns the
// resources it renders, keyed by its route parameters and the session
// token, and the mutations a user can trigger from it.
package screens

import (
	"errors"
	"time"

	"github.com/turnupspot/turnupspot-client/internal/api"
	"github.com/turnupspot/turnupspot-client/internal/backend"
	"github.com/turnupspot/turnupspot-client/internal/fetch"
	"github.com/turnupspot/turnupspot-client/internal/geo"
	"github.com/turnupspot/turnupspot-client/internal/nav"
	"github.com/turnupspot/turnupspot-client/internal/notify"
	"github.com/turnupspot/turnupspot-client/internal/places"
	"github.com/turnupspot/turnupspot-client/internal/session"
	"github.com/turnupspot/turnupspot-client/internal/share"
)

// ErrSignInRequired is returned when a screen needs a session and there is
// none. The screen has already navigated to sign-in.
var ErrSignInRequired = errors.New("sign in required")

// Deps are the collaborators shared by every screen
type Deps struct {
	Client  *api.Client
	Session *session.Store

	Auth     *backend.AuthService
	Users    *backend.UserService
	Groups   *backend.GroupService
	Members  *backend.MemberService
	Vendors  *backend.VendorService
	GameDays *backend.GameDayService
	Chat     *backend.ChatService

	Places   places.Provider
	Locator  geo.Locator
	Nav      nav.Navigator
	Notifier notify.Notifier
	Runner   *fetch.Runner

	// Origin is the web app address invite links point at
	Origin    string
	Clipboard share.Clipboard
	Sharer    share.Sharer

	// Now defaults to time.Now
	Now func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) clipboard() share.Clipboard {
	if d.Clipboard == nil {
		return share.UnavailableClipboard
	}
	return d.Clipboard
}

func (d *Deps) sharer() share.Sharer {
	if d.Sharer == nil {
		return share.UnavailableSharer
	}
	return d.Sharer
}

func (d *Deps) notifier() notify.Notifier {
	switch {
	case d.Notifier != nil:
		return d.Notifier
	case d.Runner != nil:
		return d.Runner.Notifier()
	default:
		return notify.Discard
	}
}

// requireToken returns the session token, or navigates to sign-in
func (d *Deps) requireToken() (string, error) {
	token := d.Session.Token()
	if token == "" {
		d.Nav.Navigate(nav.SignIn)
		return "", ErrSignInRequired
	}
	return token, nil
}

// removeWhere returns items without those matching pred
func removeWhere[T any](items []T, pred func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !pred(it) {
			out = append(out, it)
		}
	}
	return out
}
