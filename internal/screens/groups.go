package screens

import (
	"context"

	"github.com/turnupspot/turnupspot-client/internal/domain"
	"github.com/turnupspot/turnupspot-client/internal/fetch"
	"github.com/turnupspot/turnupspot-client/internal/nav"
)

// MyGroups lists the groups the signed-in user belongs to
type MyGroups struct {
	deps   *Deps
	groups *fetch.Resource[[]domain.SportGroup]
}

func NewMyGroups(deps *Deps) *MyGroups {
	return &MyGroups{
		deps:   deps,
		groups: fetch.NewResource(deps.Groups.Mine),
	}
}

// Load fetches the list when the session token changed since the last load
func (s *MyGroups) Load(ctx context.Context) error {
	token, err := s.deps.requireToken()
	if err != nil {
		return err
	}
	return s.groups.Sync(ctx, token)
}

func (s *MyGroups) Refresh(ctx context.Context) error { return s.groups.Refetch(ctx) }
func (s *MyGroups) View() fetch.View[[]domain.SportGroup] { return s.groups.View() }
func (s *MyGroups) Close() { s.groups.Close() }

// Leave leaves a group and drops it from the loaded list
func (s *MyGroups) Leave(ctx context.Context, groupID string) error {
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "leave_group",
		Do: func(ctx context.Context) error {
			_, err := s.deps.Groups.Leave(ctx, groupID)
			return err
		},
		Apply: func() {
			s.groups.Patch(func(gs []domain.SportGroup) []domain.SportGroup {
				return removeWhere(gs, func(g domain.SportGroup) bool { return string(g.ID) == groupID })
			})
		},
		Success: "You have left the group",
		Failure: "Failed to leave group",
	})
}

func (s *MyGroups) Open(groupID string) {
	s.deps.Nav.Navigate(nav.MyGroupDetail(groupID))
}

// AllGroups lists every group, with membership when signed in
type AllGroups struct {
	deps   *Deps
	groups *fetch.Resource[[]domain.SportGroup]
}

func NewAllGroups(deps *Deps) *AllGroups {
	return &AllGroups{
		deps:   deps,
		groups: fetch.NewResource(deps.Groups.List),
	}
}

func (s *AllGroups) Load(ctx context.Context) error {
	return s.groups.Sync(ctx, s.deps.Session.Token())
}

func (s *AllGroups) View() fetch.View[[]domain.SportGroup] { return s.groups.View() }
func (s *AllGroups) Close() { s.groups.Close() }

// BySport returns the loaded groups of one sport, all when sport is empty
func (s *AllGroups) BySport(sport domain.SportsType) []domain.SportGroup {
	all := s.groups.View().Data
	if sport == "" {
		return all
	}
	return removeWhere(all, func(g domain.SportGroup) bool { return g.SportsType != sport })
}

// Join requests membership. Anonymous users are sent to sign-in instead.
func (s *AllGroups) Join(ctx context.Context, groupID string) error {
	if _, err := s.deps.requireToken(); err != nil {
		return err
	}
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "join_group",
		Do: func(ctx context.Context) error {
			_, err := s.deps.Groups.Join(ctx, groupID, "")
			return err
		},
		Apply: func() {
			s.groups.Patch(func(gs []domain.SportGroup) []domain.SportGroup {
				out := append([]domain.SportGroup(nil), gs...)
				for i := range out {
					if string(out[i].ID) != groupID {
						continue
					}
					m := domain.Membership{}
					if out[i].CurrentUserMembership != nil {
						m = *out[i].CurrentUserMembership
					}
					m.IsPending = true
					out[i].CurrentUserMembership = &m
				}
				return out
			})
		},
		Success: "Join request submitted successfully!",
		Failure: "Failed to join group",
	})
}

func (s *AllGroups) Open(groupID string) {
	s.deps.Nav.Navigate(nav.GroupDetail(groupID))
}

// GroupDetail shows one group. A missing group yields a NotFound view and
// Back leads to the list the user came from.
type GroupDetail struct {
	deps  *Deps
	id    string
	mine  bool
	group *fetch.Resource[*domain.SportGroup]
}

// NewGroupDetail creates the public detail screen, or the member one when
// mine is set
func NewGroupDetail(deps *Deps, groupID string, mine bool) *GroupDetail {
	s := &GroupDetail{deps: deps, id: groupID, mine: mine}
	s.group = fetch.NewResource(func(ctx context.Context) (*domain.SportGroup, error) {
		return deps.Groups.Get(ctx, s.id)
	})
	return s
}

func (s *GroupDetail) Load(ctx context.Context) error {
	return s.group.Sync(ctx, s.id, s.deps.Session.Token())
}

func (s *GroupDetail) View() fetch.View[*domain.SportGroup] { return s.group.View() }
func (s *GroupDetail) Close() { s.group.Close() }

// BackRoute is the list screen this detail belongs to
func (s *GroupDetail) BackRoute() nav.Route {
	if s.mine {
		return nav.MyGroups
	}
	return nav.AllGroups
}

func (s *GroupDetail) Back() {
	s.deps.Nav.Navigate(s.BackRoute())
}

// Leave leaves the group and returns to the list
func (s *GroupDetail) Leave(ctx context.Context) error {
	return s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "leave_group",
		Do: func(ctx context.Context) error {
			_, err := s.deps.Groups.Leave(ctx, s.id)
			return err
		},
		Apply:   s.Back,
		Success: "You have left the group",
		Failure: "Failed to leave group",
	})
}

// Delete removes the group after confirmation
func (s *GroupDetail) Delete(ctx context.Context) error {
	return deleteGroup(ctx, s.deps, s.id, "Group deleted successfully!")
}

func deleteGroup(ctx context.Context, deps *Deps, groupID, success string) error {
	return deps.Runner.Run(ctx, fetch.Mutation{
		Name:    "delete_group",
		Confirm: "Are you sure you want to delete this group? This action cannot be undone.",
		Do: func(ctx context.Context) error {
			return deps.Groups.Delete(ctx, groupID)
		},
		Apply:   func() { deps.Nav.Navigate(nav.MyGroups) },
		Success: success,
		Failure: "Failed to delete group",
	})
}
