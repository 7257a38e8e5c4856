package screens

import (
	"context"

	"github.com/turnupspot/turnupspot-client/internal/domain"
	"github.com/turnupspot/turnupspot-client/internal/fetch"
	"github.com/turnupspot/turnupspot-client/internal/nav"
	"github.com/turnupspot/turnupspot-client/internal/notify"
	"github.com/turnupspot/turnupspot-client/internal/share"
)

// InviteMembers hands out a group's join link. The link, email and
// WhatsApp links need no device capability; Copy and Share do.
type InviteMembers struct {
	deps  *Deps
	id    string
	group *fetch.Resource[*domain.SportGroup]
}

func NewInviteMembers(deps *Deps, groupID string) *InviteMembers {
	s := &InviteMembers{deps: deps, id: groupID}
	s.group = fetch.NewResource(func(ctx context.Context) (*domain.SportGroup, error) {
		return deps.Groups.Get(ctx, s.id)
	})
	return s
}

func (s *InviteMembers) Load(ctx context.Context) error {
	token, err := s.deps.requireToken()
	if err != nil {
		return err
	}
	return s.group.Sync(ctx, s.id, token)
}

func (s *InviteMembers) View() fetch.View[*domain.SportGroup] { return s.group.View() }
func (s *InviteMembers) Close() { s.group.Close() }

func (s *InviteMembers) Link() string { return share.InviteLink(s.deps.Origin, s.id) }
func (s *InviteMembers) MailtoURL() string { return share.MailtoURL(s.Link()) }
func (s *InviteMembers) WhatsAppURL() string { return share.WhatsAppURL(s.Link()) }

// Copy puts the link on the clipboard
func (s *InviteMembers) Copy(ctx context.Context) error {
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "copy_invite",
		Do: func(ctx context.Context) error {
			return s.deps.clipboard().Copy(ctx, s.Link())
		},
		Success: "Invite link copied",
		Failure: "Failed to copy link",
	})
}

// Share opens the device share sheet. Without one the link is copied
// instead, and without a clipboard either ErrUnavailable is returned so
// the caller can show the link.
func (s *InviteMembers) Share(ctx context.Context) error {
	if !s.deps.sharer().Available() {
		if s.deps.clipboard().Available() {
			return s.Copy(ctx)
		}
		notify.Failure(s.deps.notifier(), "Sharing is not available on this device")
		return share.ErrUnavailable
	}
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "share_invite",
		Do: func(ctx context.Context) error {
			return s.deps.sharer().Share(ctx, share.NewInvite(s.Link()))
		},
		Failure: "Share failed",
	})
}

// JoinInvite accepts an invite link. A member or pending applicant is
// taken to the group without a second request.
type JoinInvite struct {
	deps *Deps
	id   string
}

// NewJoinInvite accepts an invite link or a bare group id
func NewJoinInvite(deps *Deps, link string) (*JoinInvite, error) {
	id, err := share.ParseInvite(link)
	if err != nil {
		return nil, err
	}
	return &JoinInvite{deps: deps, id: id}, nil
}

func (s *JoinInvite) GroupID() string { return s.id }

// Accept joins the group and opens it. Anonymous users are sent to
// sign-in instead.
func (s *JoinInvite) Accept(ctx context.Context) error {
	if _, err := s.deps.requireToken(); err != nil {
		return err
	}
	var membership *domain.Membership
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "join_invite",
		Do: func(ctx context.Context) error {
			g, err := s.deps.Groups.Get(ctx, s.id)
			if err != nil {
				return err
			}
			if m := g.CurrentUserMembership; m != nil && (m.IsMember || m.IsPending) {
				membership = m
				return nil
			}
			_, err = s.deps.Groups.Join(ctx, s.id, "")
			return err
		},
		Apply: func() {
			switch {
			case membership == nil:
				notify.Success(s.deps.notifier(), "Join request submitted!")
			case membership.IsPending:
				notify.Info(s.deps.notifier(), "Your join request is already pending")
			default:
				notify.Info(s.deps.notifier(), "You are already a member of this group")
			}
			s.deps.Nav.Navigate(nav.MyGroupDetail(s.id))
		},
		Failure: "Failed to join group",
	})
}
