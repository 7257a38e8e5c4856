package forms

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turnupspot/turnupspot-client/internal/backend"
	"github.com/turnupspot/turnupspot-client/internal/domain"
	"github.com/turnupspot/turnupspot-client/internal/logging"
	"github.com/turnupspot/turnupspot-client/internal/places"
)

// Upload is a picked file held by a draft until submission
type Upload struct {
	Filename string
	Content  []byte
}

// SportGroupDraft backs both the create and the edit group forms. Every
// change returns a new draft; the submitted payload derives from the draft
// alone.
type SportGroupDraft struct {
	Name              string
	Description       string
	VenueName         string
	VenueAddress      string
	Latitude          *float64
	Longitude         *float64
	PlayingDays       domain.PlayingDays
	StartTime         string // HH:MM
	EndTime           string // HH:MM
	MaxTeams          int
	MaxPlayersPerTeam int
	Rules             string
	RefereeRequired   bool
	SportsType        domain.SportsType

	// UI only, never submitted as is
	Image           *Upload
	PreviewURL      string
	Suggestions     []places.Suggestion
	ShowSuggestions bool
	// placeID is set while the venue fields come from a resolved suggestion
	placeID string
}

func NewSportGroupDraft(sport domain.SportsType) SportGroupDraft {
	if sport == "" {
		sport = domain.Football
	}
	return SportGroupDraft{SportsType: sport}
}

// SportGroupFrom seeds an edit draft from a fetched group
func SportGroupFrom(g domain.SportGroup) SportGroupDraft {
	d := SportGroupDraft{
		Name:              g.Name,
		Description:       g.Description,
		VenueName:         g.VenueName,
		VenueAddress:      g.VenueAddress,
		PlayingDays:       append(domain.PlayingDays(nil), g.PlayingDays...),
		StartTime:         clockHHMM(g.GameStartTime),
		EndTime:           clockHHMM(g.GameEndTime),
		MaxTeams:          g.MaxTeams,
		MaxPlayersPerTeam: g.MaxPlayersPerTeam,
		Rules:             g.Rules,
		RefereeRequired:   g.RefereeRequired,
		SportsType:        g.SportsType,
		PreviewURL:        g.VenueImageURL,
	}
	if g.VenueLatitude != nil {
		lat := *g.VenueLatitude
		d.Latitude = &lat
	}
	if g.VenueLongitude != nil {
		lng := *g.VenueLongitude
		d.Longitude = &lng
	}
	return d
}

// clockHHMM reduces "18:00:00" or "2024-05-01T18:00:00" to "18:00"
func clockHHMM(s string) string {
	if i := strings.LastIndex(s, "T"); i >= 0 {
		s = s[i+1:]
	}
	for _, layout := range []string{"15:04:05", "15:04", "15:04:05.999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04")
		}
	}
	return s
}

// Set updates one field from its text input
func (d SportGroupDraft) Set(field, value string) (SportGroupDraft, error) {
	value = strings.TrimSpace(value)
	switch field {
	case "name":
		d.Name = value
	case "description":
		d.Description = value
	case "venue_name":
		d.VenueName = value
	case "rules":
		d.Rules = value
	case "game_start_time":
		d.StartTime = value
	case "game_end_time":
		d.EndTime = value
	case "sports_type":
		d.SportsType = domain.SportsType(value)
	case "max_teams", "max_players_per_team":
		n, err := strconv.Atoi(value)
		if err != nil {
			return d, fmt.Errorf("%s: %w", field, err)
		}
		if field == "max_teams" {
			d.MaxTeams = n
		} else {
			d.MaxPlayersPerTeam = n
		}
	case "referee_required":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return d, fmt.Errorf("%s: %w", field, err)
		}
		d.RefereeRequired = b
	case "playing_days":
		days, err := domain.ParsePlayingDays(value)
		if err != nil {
			return d, fmt.Errorf("%s: %w", field, err)
		}
		d.PlayingDays = days
	default:
		return d, fmt.Errorf("unknown field %q", field)
	}
	return d, nil
}

func (d SportGroupDraft) ToggleDay(day domain.Weekday) SportGroupDraft {
	d.PlayingDays = d.PlayingDays.Toggle(day)
	return d
}

// AttachImage holds a venue picture and gives it a local preview reference
func (d SportGroupDraft) AttachImage(filename string, content []byte) SportGroupDraft {
	d.Image = &Upload{Filename: filename, Content: append([]byte(nil), content...)}
	d.PreviewURL = "blob:" + uuid.NewString()
	return d
}

// SetCoordinates enters the venue position by hand
func (d SportGroupDraft) SetCoordinates(lat, lng float64) SportGroupDraft {
	d.Latitude, d.Longitude = &lat, &lng
	d.placeID = ""
	return d
}

// TypeAddress records typed address text and refreshes suggestions.
// Coordinates that came from a previous suggestion no longer describe the
// address and are dropped. Suggestion failures only hide the list.
func (d SportGroupDraft) TypeAddress(ctx context.Context, provider places.Provider, text string) SportGroupDraft {
	d.VenueAddress = text
	if d.placeID != "" {
		d.Latitude, d.Longitude, d.placeID = nil, nil, ""
	}
	d.Suggestions, d.ShowSuggestions = nil, false

	if provider == nil || !provider.Available() || len([]rune(strings.TrimSpace(text))) < places.MinQueryLength {
		return d
	}
	found, err := provider.Suggest(ctx, text)
	if err != nil {
		logging.New(ctx).LogWarnf("address_suggestions", "suggestions unavailable: %v", err)
		return d
	}
	d.Suggestions = found
	d.ShowSuggestions = len(found) > 0
	return d
}

// SelectSuggestion resolves a suggestion and fills the venue from it. On
// failure the venue fields are left as they were.
func (d SportGroupDraft) SelectSuggestion(ctx context.Context, provider places.Provider, placeID string) (SportGroupDraft, error) {
	d.ShowSuggestions = false
	if provider == nil {
		return d, places.ErrUnavailable
	}
	place, err := provider.Details(ctx, placeID)
	if err != nil {
		return d, fmt.Errorf("resolve address: %w", err)
	}
	return d.ApplyPlace(*place), nil
}

// ApplyPlace sets address, venue name and both coordinates together
func (d SportGroupDraft) ApplyPlace(p places.Place) SportGroupDraft {
	lat, lng := p.Latitude, p.Longitude
	d.VenueAddress = p.Address
	d.VenueName = p.Name
	if d.VenueName == "" {
		d.VenueName = p.Address
	}
	d.Latitude, d.Longitude = &lat, &lng
	d.placeID = p.ID
	d.Suggestions, d.ShowSuggestions = nil, false
	return d
}

func validClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

func (d SportGroupDraft) Validate() error {
	var v ValidationError
	v.require("name", "Group name", d.Name)
	v.require("description", "Description", d.Description)
	v.require("venue_name", "Venue name", d.VenueName)
	v.require("venue_address", "Venue address", d.VenueAddress)
	if d.Latitude == nil || d.Longitude == nil {
		v.add("venue_location", "Venue coordinates are required; pick an address suggestion", ErrRequired)
	}
	if len(d.PlayingDays) == 0 {
		v.add("playing_days", "Select at least one playing day", ErrRequired)
	}
	if !validClock(d.StartTime) {
		v.add("game_start_time", "Start time must be HH:MM", ErrRequired)
	}
	if !validClock(d.EndTime) {
		v.add("game_end_time", "End time must be HH:MM", ErrRequired)
	}
	if d.MaxTeams <= 0 {
		v.add("max_teams", "Max teams must be at least 1", ErrRequired)
	}
	if d.MaxPlayersPerTeam <= 0 {
		v.add("max_players_per_team", "Max players per team must be at least 1", ErrRequired)
	}
	if !d.SportsType.Valid() {
		v.add("sports_type", fmt.Sprintf("Unknown sport %q", d.SportsType), ErrRequired)
	}
	return v.err()
}

func (d SportGroupDraft) fields() backend.GroupFields {
	return backend.GroupFields{
		Name:              strings.TrimSpace(d.Name),
		Description:       strings.TrimSpace(d.Description),
		VenueName:         strings.TrimSpace(d.VenueName),
		VenueAddress:      strings.TrimSpace(d.VenueAddress),
		VenueLatitude:     d.Latitude,
		VenueLongitude:    d.Longitude,
		PlayingDays:       d.PlayingDays,
		GameStartTime:     d.StartTime,
		GameEndTime:       d.EndTime,
		MaxTeams:          d.MaxTeams,
		MaxPlayersPerTeam: d.MaxPlayersPerTeam,
		Rules:             strings.TrimSpace(d.Rules),
		RefereeRequired:   d.RefereeRequired,
		SportsType:        d.SportsType,
	}
}

func (d SportGroupDraft) image() *backend.Image {
	if d.Image == nil {
		return nil
	}
	return &backend.Image{Filename: d.Image.Filename, Content: bytes.NewReader(d.Image.Content)}
}

// Submission validates the draft and derives the backend payload
func (d SportGroupDraft) Submission() (backend.GroupFields, *backend.Image, error) {
	if err := d.Validate(); err != nil {
		return backend.GroupFields{}, nil, err
	}
	return d.fields(), d.image(), nil
}
