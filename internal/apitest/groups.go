package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turnupspot/turnupspot-client/internal/domain"
)

type playingDayResponse struct {
	ID           string `json:"id"`
	SportGroupID string `json:"sport_group_id"`
	Day          string `json:"day"`
}

// groupResponse mirrors the backend shape, where playing_days are objects
type groupResponse struct {
	domain.SportGroup
	PlayingDays []playingDayResponse `json:"playing_days"`
}

type memberResponse struct {
	ID         int               `json:"id"`
	UserID     int               `json:"user_id"`
	Role       domain.MemberRole `json:"role"`
	IsApproved bool              `json:"is_approved"`
	JoinedAt   string            `json:"joined_at"`
	User       domain.MemberUser `json:"user"`
}

// AddGroup seeds a group created by the owner of ownerToken, who becomes
// its approved admin.
func (b *Backend) AddGroup(ownerToken string, g domain.SportGroup) domain.SportGroup {
	b.mu.Lock()
	defer b.mu.Unlock()
	owner := b.byToken[ownerToken]
	return b.addGroupLocked(owner, g).SportGroup
}

// AddMember seeds a membership and returns its member id
func (b *Backend) AddMember(groupID, userToken string, approved bool) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.byToken[userToken]
	m := b.addMemberLocked(groupID, u.ID, domain.MemberRoleMember, approved)
	return strconv.Itoa(m.id)
}

// Group returns the stored group
func (b *Backend) Group(id string) (domain.SportGroup, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.groups[id]
	if !ok {
		return domain.SportGroup{}, false
	}
	return *g, true
}

// Members returns the stored memberships of a group
func (b *Backend) Members(groupID string) []domain.Member {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.Member
	for _, m := range b.members[groupID] {
		r := b.memberResponseLocked(m)
		out = append(out, domain.Member{
			ID:         domain.ID(strconv.Itoa(r.ID)),
			UserID:     m.userID,
			Role:       r.Role,
			IsApproved: r.IsApproved,
			JoinedAt:   r.JoinedAt,
			User:       r.User,
		})
	}
	return out
}

func (b *Backend) addGroupLocked(owner *user, g domain.SportGroup) groupResponse {
	if g.ID == "" {
		g.ID = domain.ID(uuid.NewString())
	}
	if owner != nil {
		g.CreatedBy = owner.ID
	}
	g.IsActive = true
	g.CreatedAt = time.Now().UTC().Format("2006-01-02T15:04:05")
	stored := g
	b.groups[string(g.ID)] = &stored
	b.order = append(b.order, string(g.ID))
	if owner != nil {
		b.addMemberLocked(string(g.ID), owner.ID, domain.MemberRoleAdmin, true)
	}
	return b.groupResponseLocked(&stored, owner)
}

func (b *Backend) addMemberLocked(groupID string, userID domain.ID, role domain.MemberRole, approved bool) *member {
	m := &member{
		id:       b.nextID,
		userID:   userID,
		role:     role,
		approved: approved,
		joinedAt: time.Now().UTC().Format("2006-01-02T15:04:05"),
	}
	b.nextID++
	b.members[groupID] = append(b.members[groupID], m)
	return m
}

func (b *Backend) membershipLocked(groupID string, u *user) (*member, bool) {
	if u == nil {
		return nil, false
	}
	for _, m := range b.members[groupID] {
		if m.userID == u.ID {
			return m, true
		}
	}
	return nil, false
}

func (b *Backend) groupResponseLocked(g *domain.SportGroup, viewer *user) groupResponse {
	resp := groupResponse{SportGroup: *g}
	for _, d := range g.PlayingDays {
		resp.PlayingDays = append(resp.PlayingDays, playingDayResponse{
			ID:           string(g.ID) + "-" + d.String(),
			SportGroupID: string(g.ID),
			Day:          d.String(),
		})
	}
	count := 0
	for _, m := range b.members[string(g.ID)] {
		if m.approved {
			count++
		}
	}
	resp.MemberCount = count

	if viewer != nil {
		info := &domain.Membership{IsCreator: g.CreatedBy == viewer.ID}
		if m, ok := b.membershipLocked(string(g.ID), viewer); ok {
			info.IsMember = m.approved
			info.IsPending = !m.approved
			info.Role = m.role
		}
		resp.CurrentUserMembership = info
	}
	return resp
}

func (b *Backend) memberResponseLocked(m *member) memberResponse {
	u := b.users[m.userID]
	id, _ := strconv.Atoi(string(m.userID))
	return memberResponse{
		ID:         m.id,
		UserID:     id,
		Role:       m.role,
		IsApproved: m.approved,
		JoinedAt:   m.joinedAt,
		User: domain.MemberUser{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
		},
	}
}

func (b *Backend) isAdminLocked(groupID string, u *user) bool {
	m, ok := b.membershipLocked(groupID, u)
	return ok && m.approved && m.role == domain.MemberRoleAdmin
}

func (b *Backend) registerGroups(api *gin.RouterGroup) {
	g := api.Group("/sport-groups")
	g.GET("/", b.listGroups)
	g.GET("/my", b.myGroups)
	g.POST("/", b.createGroup)
	g.GET("/:id", b.getGroup)
	g.PUT("/:id", b.updateGroup)
	g.DELETE("/:id", b.deleteGroup)
	g.POST("/:id/join", b.joinGroup)
	g.POST("/:id/leave", b.leaveGroup)
	g.GET("/:id/members", b.listMembers)
	g.POST("/:id/members/:mid/approve", b.approveMember)
	g.DELETE("/:id/members/:mid", b.removeMember)
	g.POST("/:id/members/:mid/make-admin", b.makeAdmin)
}

func (b *Backend) listGroups(c *gin.Context) {
	viewer := b.optionalUser(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []groupResponse{}
	for _, id := range b.order {
		if g, ok := b.groups[id]; ok {
			out = append(out, b.groupResponseLocked(g, viewer))
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) myGroups(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []groupResponse{}
	for _, id := range b.order {
		g, exists := b.groups[id]
		if !exists {
			continue
		}
		if m, member := b.membershipLocked(id, u); member && m.approved {
			out = append(out, b.groupResponseLocked(g, u))
		}
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) getGroup(c *gin.Context) {
	viewer := b.optionalUser(c)
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.groups[c.Param("id")]
	if !ok {
		detail(c, http.StatusNotFound, "Sport group not found")
		return
	}
	c.JSON(http.StatusOK, b.groupResponseLocked(g, viewer))
}

func parseFloat(s string) *float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func ptr(s string) *string { return &s }

// clock stores HH:MM as the backend's HH:MM:SS
func clock(s *string) *string {
	if s == nil || len(*s) != 5 {
		return s
	}
	v := *s + ":00"
	return &v
}

// storeVenueImage keeps an uploaded venue_image and returns its URL
func (b *Backend) storeVenueImage(c *gin.Context) string {
	fh, err := c.FormFile("venue_image")
	if err != nil {
		return ""
	}
	f, err := fh.Open()
	if err != nil {
		return ""
	}
	defer f.Close()
	content, _ := io.ReadAll(f)

	b.mu.Lock()
	b.lastImage["venue_image"] = string(content)
	b.mu.Unlock()
	return "https://cdn.turnupspot.test/venues/" + fh.Filename
}

func (b *Backend) createGroup(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}

	var days domain.PlayingDays
	if err := json.Unmarshal([]byte(c.PostForm("playing_days")), &days); err != nil {
		detail(c, http.StatusBadRequest, "Invalid playing_days format")
		return
	}
	lat, lng := parseFloat(c.PostForm("venue_latitude")), parseFloat(c.PostForm("venue_longitude"))
	if lat == nil || lng == nil {
		detail(c, http.StatusBadRequest, "Latitude and longitude are required")
		return
	}
	maxTeams, _ := strconv.Atoi(c.PostForm("max_teams"))
	maxPlayers, _ := strconv.Atoi(c.PostForm("max_players_per_team"))
	minPlayers, _ := strconv.Atoi(c.DefaultPostForm("min_players_per_team", "3"))
	referee, _ := strconv.ParseBool(c.DefaultPostForm("referee_required", "false"))

	g := domain.SportGroup{
		Name:              c.PostForm("name"),
		Description:       c.PostForm("description"),
		VenueName:         c.PostForm("venue_name"),
		VenueAddress:      c.PostForm("venue_address"),
		VenueLatitude:     lat,
		VenueLongitude:    lng,
		PlayingDays:       days,
		GameStartTime:     *clock(ptr(c.PostForm("game_start_time"))),
		GameEndTime:       *clock(ptr(c.PostForm("game_end_time"))),
		MaxTeams:          maxTeams,
		MaxPlayersPerTeam: maxPlayers,
		MinPlayersPerTeam: minPlayers,
		Rules:             c.PostForm("rules"),
		RefereeRequired:   referee,
		SportsType:        domain.SportsType(c.PostForm("sports_type")),
	}

	g.VenueImageURL = b.storeVenueImage(c)

	b.mu.Lock()
	defer b.mu.Unlock()
	c.JSON(http.StatusOK, b.addGroupLocked(u, g))
}

func (b *Backend) updateGroup(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Name              *string             `json:"name"`
		Description       *string             `json:"description"`
		VenueName         *string             `json:"venue_name"`
		VenueAddress      *string             `json:"venue_address"`
		VenueLatitude     *float64            `json:"venue_latitude"`
		VenueLongitude    *float64            `json:"venue_longitude"`
		PlayingDays       *domain.PlayingDays `json:"playing_days"`
		GameStartTime     *string             `json:"game_start_time"`
		GameEndTime       *string             `json:"game_end_time"`
		MaxTeams          *int                `json:"max_teams"`
		MaxPlayersPerTeam *int                `json:"max_players_per_team"`
		Rules             *string             `json:"rules"`
		RefereeRequired   *bool               `json:"referee_required"`
		SportsType        *domain.SportsType  `json:"sports_type"`
	}
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		str := func(name string) *string {
			if v, ok := c.GetPostForm(name); ok {
				return &v
			}
			return nil
		}
		req.Name, req.Description = str("name"), str("description")
		req.VenueName, req.VenueAddress = str("venue_name"), str("venue_address")
		req.GameStartTime, req.GameEndTime = str("game_start_time"), str("game_end_time")
		req.Rules = str("rules")
		req.VenueLatitude = parseFloat(c.PostForm("venue_latitude"))
		req.VenueLongitude = parseFloat(c.PostForm("venue_longitude"))
		if v, ok := c.GetPostForm("playing_days"); ok {
			var days domain.PlayingDays
			if err := json.Unmarshal([]byte(v), &days); err != nil {
				detail(c, http.StatusBadRequest, "Invalid playing_days format")
				return
			}
			req.PlayingDays = &days
		}
		if v, err := strconv.Atoi(c.PostForm("max_teams")); err == nil {
			req.MaxTeams = &v
		}
		if v, err := strconv.Atoi(c.PostForm("max_players_per_team")); err == nil {
			req.MaxPlayersPerTeam = &v
		}
		if v, err := strconv.ParseBool(c.PostForm("referee_required")); err == nil {
			req.RefereeRequired = &v
		}
		if v, ok := c.GetPostForm("sports_type"); ok {
			st := domain.SportsType(v)
			req.SportsType = &st
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	imageURL := b.storeVenueImage(c)

	b.mu.Lock()
	defer b.mu.Unlock()
	g, exists := b.groups[c.Param("id")]
	if !exists {
		detail(c, http.StatusNotFound, "Sport group not found")
		return
	}
	if g.CreatedBy != u.ID {
		detail(c, http.StatusForbidden, "Not authorized to update this sport group")
		return
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&g.Name, req.Name)
	set(&g.Description, req.Description)
	set(&g.VenueName, req.VenueName)
	set(&g.VenueAddress, req.VenueAddress)
	set(&g.GameStartTime, clock(req.GameStartTime))
	set(&g.GameEndTime, clock(req.GameEndTime))
	if imageURL != "" {
		g.VenueImageURL = imageURL
	}
	set(&g.Rules, req.Rules)
	if req.VenueLatitude != nil {
		g.VenueLatitude = req.VenueLatitude
	}
	if req.VenueLongitude != nil {
		g.VenueLongitude = req.VenueLongitude
	}
	if req.PlayingDays != nil {
		g.PlayingDays = *req.PlayingDays
	}
	if req.MaxTeams != nil {
		g.MaxTeams = *req.MaxTeams
	}
	if req.MaxPlayersPerTeam != nil {
		g.MaxPlayersPerTeam = *req.MaxPlayersPerTeam
	}
	if req.RefereeRequired != nil {
		g.RefereeRequired = *req.RefereeRequired
	}
	if req.SportsType != nil {
		g.SportsType = *req.SportsType
	}
	c.JSON(http.StatusOK, b.groupResponseLocked(g, u))
}

func (b *Backend) deleteGroup(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := c.Param("id")
	g, exists := b.groups[id]
	if !exists {
		detail(c, http.StatusNotFound, "Sport group not found")
		return
	}
	if g.CreatedBy != u.ID {
		detail(c, http.StatusForbidden, "Not authorized to delete this sport group")
		return
	}
	delete(b.groups, id)
	delete(b.members, id)
	c.Status(http.StatusNoContent)
}

func (b *Backend) joinGroup(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := c.Param("id")
	if _, exists := b.groups[id]; !exists {
		detail(c, http.StatusNotFound, "Sport group not found")
		return
	}
	if m, member := b.membershipLocked(id, u); member {
		if m.approved {
			detail(c, http.StatusBadRequest, "You are already a member of this group")
		} else {
			detail(c, http.StatusBadRequest, "Your join request is already pending")
		}
		return
	}
	b.addMemberLocked(id, u.ID, domain.MemberRoleMember, false)
	c.JSON(http.StatusOK, gin.H{"message": "Join request submitted successfully"})
}

func (b *Backend) leaveGroup(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := c.Param("id")
	for i, m := range b.members[id] {
		if m.userID == u.ID {
			b.members[id] = append(b.members[id][:i], b.members[id][i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "Successfully left the group"})
			return
		}
	}
	detail(c, http.StatusBadRequest, "You are not a member of this group")
}

func (b *Backend) listMembers(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	pending, _ := strconv.ParseBool(c.DefaultQuery("include_pending", "false"))

	b.mu.Lock()
	defer b.mu.Unlock()
	id := c.Param("id")
	if _, exists := b.groups[id]; !exists {
		detail(c, http.StatusNotFound, "Sport group not found")
		return
	}
	if _, member := b.membershipLocked(id, u); !member {
		detail(c, http.StatusForbidden, "Only group members can view member list")
		return
	}
	out := []memberResponse{}
	for _, m := range b.members[id] {
		if m.approved != pending {
			out = append(out, b.memberResponseLocked(m))
		}
	}
	c.JSON(http.StatusOK, out)
}

// findMemberLocked resolves :mid for an admin caller, answering errors itself
func (b *Backend) findMemberLocked(c *gin.Context, u *user) (int, *member, bool) {
	id := c.Param("id")
	if !b.isAdminLocked(id, u) {
		detail(c, http.StatusForbidden, "Only group admins can manage members")
		return 0, nil, false
	}
	mid, _ := strconv.Atoi(c.Param("mid"))
	for i, m := range b.members[id] {
		if m.id == mid {
			return i, m, true
		}
	}
	detail(c, http.StatusNotFound, "Member not found")
	return 0, nil, false
}

func (b *Backend) approveMember(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, m, found := b.findMemberLocked(c, u); found {
		m.approved = true
		c.JSON(http.StatusOK, gin.H{"message": "Member approved successfully"})
	}
}

func (b *Backend) removeMember(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := c.Param("id")
	if i, _, found := b.findMemberLocked(c, u); found {
		b.members[id] = append(b.members[id][:i], b.members[id][i+1:]...)
		c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
	}
}

func (b *Backend) makeAdmin(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, m, found := b.findMemberLocked(c, u); found {
		if !m.approved {
			detail(c, http.StatusBadRequest, "Member must be approved first")
			return
		}
		m.role = domain.MemberRoleAdmin
		c.JSON(http.StatusOK, gin.H{"message": "Member promoted to admin"})
	}
}
