package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/turnupspot/turnupspot-client/internal/api"
	"github.com/turnupspot/turnupspot-client/internal/domain"
)

// GroupFields are the backend-shaped fields of a sport group submission
type GroupFields struct {
	Name              string
	Description       string
	VenueName         string
	VenueAddress      string
	VenueLatitude     *float64
	VenueLongitude    *float64
	PlayingDays       domain.PlayingDays
	GameStartTime     string // HH:MM
	GameEndTime       string // HH:MM
	MaxTeams          int
	MaxPlayersPerTeam int
	MinPlayersPerTeam int
	Rules             string
	RefereeRequired   bool
	SportsType        domain.SportsType
}

// Image is an uploaded venue picture
type Image struct {
	Filename string
	Content  io.Reader
}

// createForm encodes fields for the multipart create endpoint, where
// playing_days is a JSON array of {"day": name}.
func (f GroupFields) createForm(img *Image) *api.Multipart {
	m := f.baseForm()
	m.Field("playing_days", f.PlayingDays.CreateField())
	if img != nil {
		m.File("venue_image", img.Filename, img.Content)
	}
	return m
}

// updateForm is used when an update carries a new image
func (f GroupFields) updateForm(img *Image) *api.Multipart {
	m := f.baseForm()
	days, _ := json.Marshal(f.PlayingDays.Names())
	m.Field("playing_days", string(days))
	m.File("venue_image", img.Filename, img.Content)
	return m
}

func (f GroupFields) baseForm() *api.Multipart {
	m := api.NewMultipart().
		Field("name", f.Name).
		Field("description", f.Description).
		Field("venue_name", f.VenueName).
		Field("venue_address", f.VenueAddress).
		Field("game_start_time", f.GameStartTime).
		Field("game_end_time", f.GameEndTime).
		Field("max_teams", strconv.Itoa(f.MaxTeams)).
		Field("max_players_per_team", strconv.Itoa(f.MaxPlayersPerTeam)).
		Field("referee_required", strconv.FormatBool(f.RefereeRequired)).
		Field("sports_type", string(f.SportsType))
	if f.VenueLatitude != nil {
		m.Field("venue_latitude", strconv.FormatFloat(*f.VenueLatitude, 'f', -1, 64))
	}
	if f.VenueLongitude != nil {
		m.Field("venue_longitude", strconv.FormatFloat(*f.VenueLongitude, 'f', -1, 64))
	}
	if f.MinPlayersPerTeam > 0 {
		m.Field("min_players_per_team", strconv.Itoa(f.MinPlayersPerTeam))
	}
	if f.Rules != "" {
		m.Field("rules", f.Rules)
	}
	return m
}

// groupUpdateBody is the JSON body of PUT /sport-groups/{id}, with
// playing_days as a list of names.
type groupUpdateBody struct {
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	VenueName         string             `json:"venue_name"`
	VenueAddress      string             `json:"venue_address"`
	VenueLatitude     *float64           `json:"venue_latitude,omitempty"`
	VenueLongitude    *float64           `json:"venue_longitude,omitempty"`
	PlayingDays       domain.PlayingDays `json:"playing_days"`
	GameStartTime     string             `json:"game_start_time"`
	GameEndTime       string             `json:"game_end_time"`
	MaxTeams          int                `json:"max_teams"`
	MaxPlayersPerTeam int                `json:"max_players_per_team"`
	MinPlayersPerTeam int                `json:"min_players_per_team,omitempty"`
	Rules             string             `json:"rules"`
	RefereeRequired   bool               `json:"referee_required"`
	SportsType        domain.SportsType  `json:"sports_type"`
}

func (f GroupFields) updateBody() groupUpdateBody {
	return groupUpdateBody{
		Name:              f.Name,
		Description:       f.Description,
		VenueName:         f.VenueName,
		VenueAddress:      f.VenueAddress,
		VenueLatitude:     f.VenueLatitude,
		VenueLongitude:    f.VenueLongitude,
		PlayingDays:       f.PlayingDays,
		GameStartTime:     f.GameStartTime,
		GameEndTime:       f.GameEndTime,
		MaxTeams:          f.MaxTeams,
		MaxPlayersPerTeam: f.MaxPlayersPerTeam,
		MinPlayersPerTeam: f.MinPlayersPerTeam,
		Rules:             f.Rules,
		RefereeRequired:   f.RefereeRequired,
		SportsType:        f.SportsType,
	}
}

type GroupService struct {
	client *api.Client
}

func NewGroupService(client *api.Client) *GroupService {
	return &GroupService{client: client}
}

func groupPath(id string) string {
	return "/sport-groups/" + url.PathEscape(id)
}

// List returns every public group
func (s *GroupService) List(ctx context.Context) ([]domain.SportGroup, error) {
	var groups []domain.SportGroup
	if _, err := s.client.Get(ctx, "/sport-groups/", &groups); err != nil {
		return nil, fmt.Errorf("list sport groups: %w", err)
	}
	return groups, nil
}

// Mine returns the groups the signed-in user belongs to, with membership
func (s *GroupService) Mine(ctx context.Context) ([]domain.SportGroup, error) {
	var groups []domain.SportGroup
	if _, err := s.client.Get(ctx, "/sport-groups/my", &groups); err != nil {
		return nil, fmt.Errorf("list my sport groups: %w", err)
	}
	return groups, nil
}

func (s *GroupService) Get(ctx context.Context, id string) (*domain.SportGroup, error) {
	var group domain.SportGroup
	if _, err := s.client.Get(ctx, groupPath(id), &group); err != nil {
		return nil, fmt.Errorf("get sport group %s: %w", id, err)
	}
	return &group, nil
}

func (s *GroupService) Create(ctx context.Context, fields GroupFields, img *Image) (*domain.SportGroup, error) {
	var group domain.SportGroup
	if _, err := s.client.Post(ctx, "/sport-groups/", fields.createForm(img), &group); err != nil {
		return nil, fmt.Errorf("create sport group: %w", err)
	}
	return &group, nil
}

// Update replaces a group's fields. A new image switches the request to
// multipart; otherwise the body is JSON.
func (s *GroupService) Update(ctx context.Context, id string, fields GroupFields, img *Image) (*domain.SportGroup, error) {
	var body any = fields.updateBody()
	if img != nil {
		body = fields.updateForm(img)
	}

	var group domain.SportGroup
	if _, err := s.client.Put(ctx, groupPath(id), body, &group); err != nil {
		return nil, fmt.Errorf("update sport group %s: %w", id, err)
	}
	return &group, nil
}

func (s *GroupService) Delete(ctx context.Context, id string) error {
	if _, err := s.client.Delete(ctx, groupPath(id), nil); err != nil {
		return fmt.Errorf("delete sport group %s: %w", id, err)
	}
	return nil
}

// Join requests membership; the request stays pending until approved
func (s *GroupService) Join(ctx context.Context, id, message string) (string, error) {
	body := map[string]string{}
	if message != "" {
		body["message"] = message
	}
	return s.postMessage(ctx, groupPath(id)+"/join", body)
}

func (s *GroupService) Leave(ctx context.Context, id string) (string, error) {
	return s.postMessage(ctx, groupPath(id)+"/leave", nil)
}

func (s *GroupService) postMessage(ctx context.Context, path string, body any) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if _, err := s.client.Post(ctx, path, body, &out); err != nil {
		return "", fmt.Errorf("POST %s: %w", path, err)
	}
	return out.Message, nil
}
