// Package share builds group invite links and holds the device
// capabilities used to hand them on. A device without a clipboard or a
// share sheet gets the Unavailable variants, which fail with
// ErrUnavailable so callers can fall back to showing the link.
package share

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/turnupspot/turnupspot-client/internal/nav"
)

var ErrUnavailable = errors.New("sharing unavailable")

// ErrInvalidInvite is returned for a link that names no group
var ErrInvalidInvite = errors.New("not a group invite link")

const (
	InviteTitle   = "Join our sports group!"
	InviteText    = "Click the link to join our sports group on Turnup Spot"
	emailSubject  = "Join our sports group on Turnup Spot"
	emailPrefix   = "Join our sports group by clicking this link: "
	messagePrefix = "Join our sports group on Turnup Spot: "
)

// Invite is what a share sheet receives
type Invite struct {
	Title string
	Text  string
	URL   string
}

type Clipboard interface {
	Available() bool
	Copy(ctx context.Context, text string) error
}

type Sharer interface {
	Available() bool
	Share(ctx context.Context, invite Invite) error
}

type unavailable struct{}

var (
	// UnavailableClipboard is used when the device has no clipboard
	UnavailableClipboard Clipboard = unavailable{}
	// UnavailableSharer is used when the device has no share sheet
	UnavailableSharer Sharer = unavailable{}
)

func (unavailable) Available() bool { return false }
func (unavailable) Copy(context.Context, string) error { return ErrUnavailable }
func (unavailable) Share(context.Context, Invite) error { return ErrUnavailable }

// ClipboardFunc adapts a plain function to an available Clipboard
type ClipboardFunc func(ctx context.Context, text string) error

func (f ClipboardFunc) Available() bool { return true }
func (f ClipboardFunc) Copy(ctx context.Context, text string) error { return f(ctx, text) }

// SharerFunc adapts a plain function to an available Sharer
type SharerFunc func(ctx context.Context, invite Invite) error

func (f SharerFunc) Available() bool { return true }
func (f SharerFunc) Share(ctx context.Context, invite Invite) error { return f(ctx, invite) }

// InviteLink is the join link of a group under the app origin
func InviteLink(origin, groupID string) string {
	return strings.TrimRight(origin, "/") + string(nav.GroupJoin(url.PathEscape(groupID)))
}

// NewInvite is the share sheet payload for link
func NewInvite(link string) Invite {
	return Invite{Title: InviteTitle, Text: InviteText, URL: link}
}

// MailtoURL opens a blank email carrying link
func MailtoURL(link string) string {
	return "mailto:?subject=" + escape(emailSubject) + "&body=" + escape(emailPrefix+link)
}

// WhatsAppURL opens WhatsApp with a message carrying link
func WhatsAppURL(link string) string {
	return "https://wa.me/?text=" + escape(messagePrefix+link)
}

// escape encodes s as a URI component, spaces as %20
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// ParseInvite returns the group id of an invite link. A bare id is
// accepted as is.
func ParseInvite(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidInvite
	}
	if !strings.Contains(s, "/") {
		return s, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInvite, err)
	}
	parts := strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
	n := len(parts)
	if n < 3 || parts[n-3] != "my-sports-groups" || parts[n-1] != "join" || parts[n-2] == "" {
		return "", ErrInvalidInvite
	}
	id, err := url.PathUnescape(parts[n-2])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInvite, err)
	}
	return id, nil
}
