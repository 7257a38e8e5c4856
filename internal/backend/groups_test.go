package backend

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnupspot/turnupspot-client/internal/api"
	"github.com/turnupspot/turnupspot-client/internal/domain"
)

func sampleFields() GroupFields {
	return GroupFields{
		Name:              "Sunday League",
		Description:       "Five a side",
		VenueName:         "Rec Ground",
		VenueAddress:      "1 Park Rd",
		VenueLatitude:     ptr(6.5244),
		VenueLongitude:    ptr(3.3792),
		PlayingDays:       domain.NewPlayingDays(domain.Monday, domain.Wednesday),
		GameStartTime:     "18:00",
		GameEndTime:       "20:00",
		MaxTeams:          4,
		MaxPlayersPerTeam: 5,
		SportsType:        domain.Football,
	}
}

func TestGroups_CreateRoundTripsPlayingDays(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, token := h.srv.AddUser("ada@example.com", "longenough1", "Ada", "Obi", domain.RoleUser)
	h.signIn(token)
	groups := NewGroupService(h.client)

	created, err := groups.Create(ctx, sampleFields(), &Image{Filename: "pitch.jpg", Content: strings.NewReader("JPEG")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Monday", "Wednesday"}, created.PlayingDays.Names())
	assert.Equal(t, "https://cdn.turnupspot.test/venues/pitch.jpg", created.VenueImageURL)
	assert.Equal(t, "JPEG", h.srv.LastUpload("venue_image"))
	assert.Equal(t, 1, created.MemberCount)
	require.NotNil(t, created.CurrentUserMembership)
	assert.True(t, created.CurrentUserMembership.IsAdmin())

	reqs := h.srv.Requests()
	assert.Equal(t, "multipart/form-data", reqs[len(reqs)-1].ContentType)

	fetched, err := groups.Get(ctx, string(created.ID))
	require.NoError(t, err)
	assert.Equal(t, created.PlayingDays, fetched.PlayingDays)
	assert.Equal(t, "18:00:00", fetched.GameStartTime)
}

func TestGroups_UpdateJSONAndMultipart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, token := h.srv.AddUser("ada@example.com", "longenough1", "Ada", "Obi", domain.RoleUser)
	h.signIn(token)
	groups := NewGroupService(h.client)
	created, err := groups.Create(ctx, sampleFields(), nil)
	require.NoError(t, err)

	fields := sampleFields()
	fields.Name = "Monday Night"
	fields.PlayingDays = domain.NewPlayingDays(domain.Friday)
	updated, err := groups.Update(ctx, string(created.ID), fields, nil)
	require.NoError(t, err)
	assert.Equal(t, "Monday Night", updated.Name)
	assert.Equal(t, []string{"Friday"}, updated.PlayingDays.Names())

	reqs := h.srv.Requests()
	assert.Equal(t, "application/json", reqs[len(reqs)-1].ContentType)

	fields.PlayingDays = domain.NewPlayingDays(domain.Saturday, domain.Sunday)
	updated, err = groups.Update(ctx, string(created.ID), fields, &Image{Filename: "new.jpg", Content: strings.NewReader("NEW")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Saturday", "Sunday"}, updated.PlayingDays.Names())
	assert.Equal(t, "https://cdn.turnupspot.test/venues/new.jpg", updated.VenueImageURL)
}

func TestGroups_GetMissingIsNotFound(t *testing.T) {
	h := newHarness(t)
	_, err := NewGroupService(h.client).Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	assert.Equal(t, "Sport group not found", api.MessageOf(err))
}

func TestGroups_JoinLeaveMine(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, owner := h.srv.AddUser("owner@example.com", "longenough1", "Olu", "Owner", domain.RoleUser)
	_, player := h.srv.AddUser("player@example.com", "longenough1", "Pat", "Player", domain.RoleUser)
	g := h.srv.AddGroup(owner, domain.SportGroup{Name: "Hoops", SportsType: domain.Basketball})
	groups := NewGroupService(h.client)

	h.signIn(player)
	msg, err := groups.Join(ctx, string(g.ID), "")
	require.NoError(t, err)
	assert.Equal(t, "Join request submitted successfully", msg)

	_, err = groups.Join(ctx, string(g.ID), "")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, api.StatusOf(err))

	mine, err := groups.Mine(ctx)
	require.NoError(t, err)
	assert.Empty(t, mine, "pending requests are not memberships")

	all, err := groups.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].CurrentUserMembership.IsPending)

	_, err = groups.Leave(ctx, string(g.ID))
	require.NoError(t, err)
	_, err = groups.Leave(ctx, string(g.ID))
	require.Error(t, err)
}

func TestGroups_DeleteRequiresCreator(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, owner := h.srv.AddUser("owner@example.com", "longenough1", "Olu", "Owner", domain.RoleUser)
	_, other := h.srv.AddUser("other@example.com", "longenough1", "Oti", "Other", domain.RoleUser)
	g := h.srv.AddGroup(owner, domain.SportGroup{Name: "Hoops"})
	groups := NewGroupService(h.client)

	h.signIn(other)
	err := groups.Delete(ctx, string(g.ID))
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, api.StatusOf(err))

	h.signIn(owner)
	require.NoError(t, groups.Delete(ctx, string(g.ID)))
	_, ok := h.srv.Group(string(g.ID))
	assert.False(t, ok)
}

func TestMembers_PendingApproveRemoveAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, owner := h.srv.AddUser("owner@example.com", "longenough1", "Olu", "Owner", domain.RoleUser)
	_, a := h.srv.AddUser("a@example.com", "longenough1", "Ann", "A", domain.RoleUser)
	_, b := h.srv.AddUser("b@example.com", "longenough1", "Ben", "B", domain.RoleUser)
	g := h.srv.AddGroup(owner, domain.SportGroup{Name: "Hoops"})
	gid := string(g.ID)
	aID := h.srv.AddMember(gid, a, false)
	bID := h.srv.AddMember(gid, b, false)
	members := NewMemberService(h.client)
	h.signIn(owner)

	pending, err := members.List(ctx, gid, true)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, domain.ID(aID), pending[0].ID)

	approved, err := members.List(ctx, gid, false)
	require.NoError(t, err)
	require.Len(t, approved, 1, "only the owner")

	require.NoError(t, members.Approve(ctx, gid, aID))
	require.NoError(t, members.Remove(ctx, gid, bID))

	pending, err = members.List(ctx, gid, true)
	require.NoError(t, err)
	assert.Empty(t, pending)

	approved, err = members.List(ctx, gid, false)
	require.NoError(t, err)
	require.Len(t, approved, 2)
	assert.Equal(t, "Ann A", approved[1].Name())
	assert.Equal(t, domain.MemberRoleMember, approved[1].Role)

	require.NoError(t, members.MakeAdmin(ctx, gid, aID))
	approved, err = members.List(ctx, gid, false)
	require.NoError(t, err)
	assert.Equal(t, domain.MemberRoleAdmin, approved[1].Role)
}

func TestMembers_NonAdminForbidden(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, owner := h.srv.AddUser("owner@example.com", "longenough1", "Olu", "Owner", domain.RoleUser)
	_, a := h.srv.AddUser("a@example.com", "longenough1", "Ann", "A", domain.RoleUser)
	g := h.srv.AddGroup(owner, domain.SportGroup{Name: "Hoops"})
	aID := h.srv.AddMember(string(g.ID), a, true)

	h.signIn(a)
	err := NewMemberService(h.client).MakeAdmin(ctx, string(g.ID), aID)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, api.StatusOf(err))
}
