// Package domain holds the client-side view models of the TurnUp Spot
// backend resources.
package domain

import "strings"

type Role string

const (
	RoleUser   Role = "user"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

// User is the signed-in profile returned by /users/me
type User struct {
	ID              ID     `json:"id"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Role            Role   `json:"role"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	Bio             string `json:"bio,omitempty"`
	DateOfBirth     string `json:"date_of_birth,omitempty"`
	IsActive        bool   `json:"is_active"`
	IsVerified      bool   `json:"is_verified"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Token is the bearer credential returned by the login endpoints
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type SportsType string

const (
	Football    SportsType = "football"
	Basketball  SportsType = "basketball"
	Tennis      SportsType = "tennis"
	Volleyball  SportsType = "volleyball"
	Cricket     SportsType = "cricket"
	Baseball    SportsType = "baseball"
	Rugby       SportsType = "rugby"
	Hockey      SportsType = "hockey"
	Badminton   SportsType = "badminton"
	TableTennis SportsType = "table_tennis"
	Swimming    SportsType = "swimming"
	Athletics   SportsType = "athletics"
	OtherSport  SportsType = "other"
)

// SportsTypes lists every sport the backend accepts
var SportsTypes = []SportsType{
	Football, Basketball, Tennis, Volleyball, Cricket, Baseball, Rugby,
	Hockey, Badminton, TableTennis, Swimming, Athletics, OtherSport,
}

func (s SportsType) Valid() bool {
	for _, x := range SportsTypes {
		if x == s {
			return true
		}
	}
	return false
}

type MemberRole string

const (
	MemberRoleMember MemberRole = "member"
	MemberRoleAdmin  MemberRole = "admin"
)

// Membership is the caller's relation to a group, present when the group
// was fetched with a session token.
type Membership struct {
	IsMember  bool       `json:"is_member"`
	IsPending bool       `json:"is_pending"`
	Role      MemberRole `json:"role,omitempty"`
	IsCreator bool       `json:"is_creator"`
}

// IsAdmin reports whether the caller may manage the group
func (m *Membership) IsAdmin() bool {
	return m != nil && (m.IsCreator || m.Role == MemberRoleAdmin)
}

// SportGroup is the client view of a sport group
type SportGroup struct {
	ID                ID          `json:"id"`
	Name              string      `json:"name"`
	Description       string      `json:"description,omitempty"`
	VenueName         string      `json:"venue_name"`
	VenueAddress      string      `json:"venue_address"`
	VenueImageURL     string      `json:"venue_image_url,omitempty"`
	VenueLatitude     *float64    `json:"venue_latitude,omitempty"`
	VenueLongitude    *float64    `json:"venue_longitude,omitempty"`
	PlayingDays       PlayingDays `json:"playing_days"`
	GameStartTime     string      `json:"game_start_time"`
	GameEndTime       string      `json:"game_end_time"`
	MaxTeams          int         `json:"max_teams"`
	MaxPlayersPerTeam int         `json:"max_players_per_team"`
	MinPlayersPerTeam int         `json:"min_players_per_team,omitempty"`
	Rules             string      `json:"rules,omitempty"`
	RefereeRequired   bool        `json:"referee_required"`
	SportsType        SportsType  `json:"sports_type"`
	CreatedBy         ID          `json:"created_by,omitempty"`
	IsActive          bool        `json:"is_active"`
	CreatedAt         string      `json:"created_at,omitempty"`
	MemberCount       int         `json:"member_count"`

	CurrentUserMembership *Membership `json:"current_user_membership,omitempty"`
}

// Capacity is the maximum number of players the group can field
func (g SportGroup) Capacity() int {
	return g.MaxTeams * g.MaxPlayersPerTeam
}

type MemberUser struct {
	ID              ID     `json:"id,omitempty"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// Member is an approved or pending group member
type Member struct {
	ID           ID         `json:"id"`
	SportGroupID ID         `json:"sport_group_id,omitempty"`
	UserID       ID         `json:"user_id"`
	Role         MemberRole `json:"role"`
	IsApproved   bool       `json:"is_approved"`
	JoinedAt     string     `json:"joined_at,omitempty"`
	User         MemberUser `json:"user"`
}

func (m Member) Name() string {
	return strings.TrimSpace(m.User.FirstName + " " + m.User.LastName)
}

// Vendor is a business profile created by vendor signup
type Vendor struct {
	ID            ID     `json:"id,omitempty"`
	UserID        ID     `json:"user_id,omitempty"`
	BusinessName  string `json:"business_name"`
	BusinessType  string `json:"business_type"`
	Description   string `json:"description"`
	BusinessPhone string `json:"business_phone,omitempty"`
	BusinessEmail string `json:"business_email,omitempty"`
	WebsiteURL    string `json:"website_url,omitempty"`
}

type PlayerStatus string

const (
	PlayerArrived  PlayerStatus = "arrived"
	PlayerExpected PlayerStatus = "expected"
	PlayerDelayed  PlayerStatus = "delayed"
	PlayerAbsent   PlayerStatus = "absent"
)

// GameDayInfo describes today's game for a group
type GameDayInfo struct {
	IsPlayingDay      bool     `json:"is_playing_day"`
	Day               string   `json:"day"`
	Date              string   `json:"date"`
	GameStartTime     string   `json:"game_start_time"`
	GameEndTime       string   `json:"game_end_time"`
	MaxTeams          int      `json:"max_teams"`
	MaxPlayersPerTeam int      `json:"max_players_per_team"`
	CheckInEnabled    bool     `json:"check_in_enabled"`
	CurrentGameID     ID       `json:"current_game_id,omitempty"`
	GameStatus        string   `json:"game_status,omitempty"`
	VenueLatitude     *float64 `json:"venue_latitude,omitempty"`
	VenueLongitude    *float64 `json:"venue_longitude,omitempty"`
	VenueRadius       float64  `json:"venue_radius"`
}

// Player is one game day participant
type Player struct {
	ID          ID           `json:"id"`
	UserID      ID           `json:"user_id"`
	Name        string       `json:"name"`
	Status      PlayerStatus `json:"status"`
	ArrivalTime string       `json:"arrival_time,omitempty"`
	IsCaptain   bool         `json:"is_captain"`
	Team        *int         `json:"team,omitempty"`
}

// Team is derived on the client from players' team numbers
type Team struct {
	Number  int
	Captain *Player
	Players []Player
}

// ChatMessage is one message in a chat room
type ChatMessage struct {
	ID          ID          `json:"id"`
	ChatRoomID  ID          `json:"chat_room_id,omitempty"`
	SenderID    ID          `json:"sender_id"`
	SenderName  string      `json:"sender_name,omitempty"`
	Content     string      `json:"content"`
	MessageType string      `json:"message_type,omitempty"`
	CreatedAt   string      `json:"created_at,omitempty"`
	Sender      *MemberUser `json:"sender,omitempty"`
}

// Author is the display name of the sender
func (m ChatMessage) Author() string {
	if m.SenderName != "" {
		return m.SenderName
	}
	if m.Sender != nil {
		return strings.TrimSpace(m.Sender.FirstName + " " + m.Sender.LastName)
	}
	return string(m.SenderID)
}
