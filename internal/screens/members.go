package screens

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/turnupspot/turnupspot-client/internal/domain"
	"github.com/turnupspot/turnupspot-client/internal/fetch"
	"github.com/turnupspot/turnupspot-client/internal/nav"
)

// Roster is the admin view of a group's memberships
type Roster struct {
	Members []domain.Member
	Pending []domain.Member
}

// GroupMembers is the admin screen for approving, rejecting and removing
// members of one group
type GroupMembers struct {
	deps   *Deps
	id     string
	roster *fetch.Resource[Roster]
}

func NewGroupMembers(deps *Deps, groupID string) *GroupMembers {
	s := &GroupMembers{deps: deps, id: groupID}
	s.roster = fetch.NewResource(s.fetch)
	return s
}

// fetch loads members and pending requests in parallel
func (s *GroupMembers) fetch(ctx context.Context) (Roster, error) {
	var r Roster
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		members, err := s.deps.Members.List(ctx, s.id, false)
		r.Members = members
		return err
	})
	g.Go(func() error {
		pending, err := s.deps.Members.List(ctx, s.id, true)
		r.Pending = pending
		return err
	})
	if err := g.Wait(); err != nil {
		return Roster{}, err
	}
	return r, nil
}

func (s *GroupMembers) Load(ctx context.Context) error {
	token, err := s.deps.requireToken()
	if err != nil {
		return err
	}
	return s.roster.Sync(ctx, s.id, token)
}

func (s *GroupMembers) View() fetch.View[Roster] { return s.roster.View() }
func (s *GroupMembers) Close() { s.roster.Close() }

func byID(id string) func(domain.Member) bool {
	return func(m domain.Member) bool { return string(m.ID) == id }
}

// Approve moves a pending request into the member list
func (s *GroupMembers) Approve(ctx context.Context, memberID string) error {
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "approve_member",
		Do: func(ctx context.Context) error {
			return s.deps.Members.Approve(ctx, s.id, memberID)
		},
		Apply: func() {
			s.roster.Patch(func(r Roster) Roster {
				var approved *domain.Member
				for _, m := range r.Pending {
					if string(m.ID) == memberID {
						m := m
						approved = &m
						break
					}
				}
				r.Pending = removeWhere(r.Pending, byID(memberID))
				if approved == nil {
					return r
				}
				r.Members = removeWhere(r.Members, byID(memberID))
				approved.Role = domain.MemberRoleMember
				approved.IsApproved = true
				r.Members = append(r.Members, *approved)
				return r
			})
		},
		Success: "Member approved",
		Failure: "Failed to approve member",
	})
}

// Reject drops a pending request without creating a member
func (s *GroupMembers) Reject(ctx context.Context, memberID string) error {
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "reject_member",
		Do: func(ctx context.Context) error {
			return s.deps.Members.Remove(ctx, s.id, memberID)
		},
		Apply: func() {
			s.roster.Patch(func(r Roster) Roster {
				r.Pending = removeWhere(r.Pending, byID(memberID))
				return r
			})
		},
		Success: "Member rejected",
		Failure: "Failed to reject member",
	})
}

func (s *GroupMembers) Remove(ctx context.Context, memberID string) error {
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "remove_member",
		Do: func(ctx context.Context) error {
			return s.deps.Members.Remove(ctx, s.id, memberID)
		},
		Apply: func() {
			s.roster.Patch(func(r Roster) Roster {
				r.Members = removeWhere(r.Members, byID(memberID))
				return r
			})
		},
		Success: "Member removed successfully",
		Failure: "Failed to remove member",
	})
}

func (s *GroupMembers) MakeAdmin(ctx context.Context, memberID string) error {
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "make_admin",
		Do: func(ctx context.Context) error {
			return s.deps.Members.MakeAdmin(ctx, s.id, memberID)
		},
		Apply: func() {
			s.roster.Patch(func(r Roster) Roster {
				members := append([]domain.Member(nil), r.Members...)
				for i := range members {
					if string(members[i].ID) == memberID {
						members[i].Role = domain.MemberRoleAdmin
					}
				}
				r.Members = members
				return r
			})
		},
		Success: "Member is now an admin",
		Failure: "Failed to make member admin",
	})
}

// DeleteGroup removes the whole group after confirmation
func (s *GroupMembers) DeleteGroup(ctx context.Context) error {
	return deleteGroup(ctx, s.deps, s.id, "Group deleted successfully")
}

// Invite opens the invite page of the group
func (s *GroupMembers) Invite() {
	s.deps.Nav.Navigate(nav.GroupInvite(s.id))
}
