package forms

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnupspot/turnupspot-client/internal/domain"
	"github.com/turnupspot/turnupspot-client/internal/places"
)

func TestCheckPassword(t *testing.T) {
	assert.ErrorIs(t, CheckPassword("abc", "abc"), ErrPasswordTooShort)
	assert.ErrorIs(t, CheckPassword("longenough1", "different"), ErrPasswordMismatch)
	assert.ErrorIs(t, CheckPassword("abc", "abd"), ErrPasswordMismatch, "mismatch is reported first")
	assert.NoError(t, CheckPassword("longenough1", "longenough1"))
}

func validSignup() UserSignupDraft {
	return UserSignupDraft{
		FirstName:       "Ada",
		LastName:        "Obi",
		Email:           "ada@example.com",
		Password:        "longenough1",
		ConfirmPassword: "longenough1",
	}
}

func TestUserSignupDraft_Validate(t *testing.T) {
	d := validSignup()
	require.NoError(t, d.Validate())

	d.Password, d.ConfirmPassword = "abc", "abc"
	err := d.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password must be at least 8 characters", verr.Field("password"))

	d = validSignup()
	d.ConfirmPassword = "different"
	err = d.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "passwords do not match", verr.Field("password"))
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	d = validSignup()
	d.Email = " "
	err = d.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Email is required", verr.Field("email"))
	assert.Empty(t, verr.Field("password"))
}

func TestUserSignupDraft_Request(t *testing.T) {
	d := validSignup()
	d.DateOfBirth = "1990-04-01"
	d = d.ToggleInterest("Technology").ToggleInterest("Education").ToggleInterest("Technology")

	req := d.Request()
	assert.Equal(t, "1990-04-01T00:00:00", req.DateOfBirth)
	assert.Equal(t, []string{"Education"}, req.Interests)
	assert.Equal(t, domain.RoleUser, req.Role)
}

func TestToggle(t *testing.T) {
	set := []string{"a", "b"}
	assert.Equal(t, []string{"a", "b", "c"}, Toggle(set, "c"))
	assert.Equal(t, []string{"b"}, Toggle(set, "a"))
	assert.Equal(t, set, Toggle(Toggle(set, "c"), "c"))
	assert.Equal(t, []string{"a", "b"}, set, "input is not mutated")
}

func TestVendorSignupDraft(t *testing.T) {
	d := VendorSignupDraft{
		BusinessName:    "Kit Store",
		Email:           "shop@example.com",
		Password:        "longenough1",
		ConfirmPassword: "longenough1",
		PhoneNumber:     "0800",
		BusinessType:    "retail",
		Description:     "Boots",
	}
	require.NoError(t, d.Validate())

	acct := d.Account()
	assert.Equal(t, domain.RoleVendor, acct.Role)
	assert.Equal(t, "Kit Store", acct.FirstName)

	v := d.Vendor()
	assert.Equal(t, "0800", v.BusinessPhone)
	assert.Equal(t, "shop@example.com", v.BusinessEmail)

	d.BusinessName = ""
	assert.Error(t, d.Validate())
}

func TestPasswordChangeDraft(t *testing.T) {
	var verr *ValidationError

	err := PasswordChangeDraft{OldPassword: "old", NewPassword: "newpassword", ConfirmPassword: "other"}.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "New passwords do not match.", verr.Field("new_password"))

	err = PasswordChangeDraft{OldPassword: "old", NewPassword: "short", ConfirmPassword: "short"}.Validate()
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	assert.NoError(t, PasswordChangeDraft{OldPassword: "old", NewPassword: "newpassword", ConfirmPassword: "newpassword"}.Validate())
}

func TestProfileDraft(t *testing.T) {
	d := ProfileFrom(domain.User{FirstName: "Ada", LastName: "Obi", Bio: "hi"})
	require.NoError(t, d.Validate())
	d.Bio = " Left back "
	upd := d.Update()
	assert.Equal(t, "Left back", *upd.Bio)

	d.FirstName = ""
	assert.Error(t, d.Validate())
}

var stadium = places.Place{ID: "p1", Name: "Teslim Balogun Stadium", Address: "Surulere, Lagos", Latitude: 6.4969, Longitude: 3.3614}

func completeDraft() SportGroupDraft {
	d := NewSportGroupDraft(domain.Football)
	d.Name, d.Description = "Sunday League", "Five a side"
	d = d.ApplyPlace(stadium)
	d = d.ToggleDay(domain.Monday).ToggleDay(domain.Wednesday)
	d.StartTime, d.EndTime = "18:00", "20:00"
	d.MaxTeams, d.MaxPlayersPerTeam = 4, 5
	return d
}

func TestSportGroupDraft_SelectSuggestionFillsAllFour(t *testing.T) {
	provider := places.Static{Places: []places.Place{stadium}}
	ctx := context.Background()

	d := NewSportGroupDraft("").TypeAddress(ctx, provider, "Teslim")
	require.True(t, d.ShowSuggestions)
	require.Len(t, d.Suggestions, 1)
	assert.Nil(t, d.Latitude)

	d, err := d.SelectSuggestion(ctx, provider, d.Suggestions[0].PlaceID)
	require.NoError(t, err)
	assert.Equal(t, "Surulere, Lagos", d.VenueAddress)
	assert.Equal(t, "Teslim Balogun Stadium", d.VenueName)
	require.NotNil(t, d.Latitude)
	require.NotNil(t, d.Longitude)
	assert.Equal(t, 6.4969, *d.Latitude)
	assert.Equal(t, 3.3614, *d.Longitude)
	assert.False(t, d.ShowSuggestions)
}

func TestSportGroupDraft_FailedSelectionLeavesVenue(t *testing.T) {
	failing := failingProvider{err: errors.New("quota")}
	d := NewSportGroupDraft("")
	d.VenueAddress, d.VenueName = "typed", "typed venue"

	got, err := d.SelectSuggestion(context.Background(), failing, "p1")
	require.Error(t, err)
	assert.Equal(t, "typed", got.VenueAddress)
	assert.Equal(t, "typed venue", got.VenueName)
	assert.Nil(t, got.Latitude)
	assert.Nil(t, got.Longitude)
}

func TestSportGroupDraft_TypingAfterSelectionDropsCoordinates(t *testing.T) {
	d := completeDraft().TypeAddress(context.Background(), places.Unavailable, "Somewhere else")
	assert.Nil(t, d.Latitude)
	assert.Nil(t, d.Longitude)
	assert.False(t, d.ShowSuggestions)

	var verr *ValidationError
	require.ErrorAs(t, d.Validate(), &verr)
	assert.NotEmpty(t, verr.Field("venue_location"))

	manual := d.SetCoordinates(1, 2).TypeAddress(context.Background(), places.Unavailable, "Somewhere")
	assert.NotNil(t, manual.Latitude, "hand-entered coordinates survive typing")
}

func TestSportGroupDraft_UnavailableProviderDegrades(t *testing.T) {
	d := NewSportGroupDraft("").TypeAddress(context.Background(), places.Unavailable, "Lekki Phase 1")
	assert.Equal(t, "Lekki Phase 1", d.VenueAddress)
	assert.Empty(t, d.Suggestions)

	d = NewSportGroupDraft("").TypeAddress(context.Background(), failingProvider{err: errors.New("x")}, "Lekki Phase 1")
	assert.False(t, d.ShowSuggestions)
}

func TestSportGroupDraft_ValidateBlocksEmptyFields(t *testing.T) {
	var verr *ValidationError
	require.ErrorAs(t, NewSportGroupDraft("").Validate(), &verr)
	for _, field := range []string{"name", "venue_address", "venue_location", "playing_days", "game_start_time", "max_teams"} {
		assert.NotEmpty(t, verr.Field(field), field)
	}
	require.NoError(t, completeDraft().Validate())
}

func TestSportGroupDraft_SubmissionRoundTripsDays(t *testing.T) {
	d := completeDraft().AttachImage("pitch.jpg", []byte("JPEG"))
	assert.True(t, strings.HasPrefix(d.PreviewURL, "blob:"))

	fields, img, err := d.Submission()
	require.NoError(t, err)

	var decoded domain.PlayingDays
	require.NoError(t, json.Unmarshal([]byte(fields.PlayingDays.CreateField()), &decoded))
	assert.Equal(t, []string{"Monday", "Wednesday"}, decoded.Names())

	require.NotNil(t, img)
	content, _ := io.ReadAll(img.Content)
	assert.Equal(t, "JPEG", string(content))

	// a second submission reads the image again
	_, img, _ = d.Submission()
	content, _ = io.ReadAll(img.Content)
	assert.Equal(t, "JPEG", string(content))
}

func TestSportGroupDraft_EditingLeavesOriginalUntouched(t *testing.T) {
	base := completeDraft()
	edited := base.ToggleDay(domain.Friday)
	assert.Equal(t, []string{"Monday", "Wednesday"}, base.PlayingDays.Names())
	assert.Equal(t, []string{"Monday", "Wednesday", "Friday"}, edited.PlayingDays.Names())
}

func TestSportGroupFrom(t *testing.T) {
	lat, lng := 6.5, 3.3
	d := SportGroupFrom(domain.SportGroup{
		Name:           "Hoops",
		VenueLatitude:  &lat,
		VenueLongitude: &lng,
		PlayingDays:    domain.NewPlayingDays(domain.Tuesday),
		GameStartTime:  "18:30:00",
		GameEndTime:    "2024-05-01T20:00:00",
		VenueImageURL:  "https://cdn/img.jpg",
		SportsType:     domain.Basketball,
	})
	assert.Equal(t, "18:30", d.StartTime)
	assert.Equal(t, "20:00", d.EndTime)
	assert.Equal(t, "https://cdn/img.jpg", d.PreviewURL)
	lat = 0
	assert.Equal(t, 6.5, *d.Latitude, "draft owns its coordinates")
}

func TestSportGroupDraft_Set(t *testing.T) {
	d, err := NewSportGroupDraft("").Set("max_teams", "6")
	require.NoError(t, err)
	assert.Equal(t, 6, d.MaxTeams)

	d, err = d.Set("playing_days", "monday,Fri")
	require.NoError(t, err)
	assert.Equal(t, []string{"Monday", "Friday"}, d.PlayingDays.Names())

	_, err = d.Set("max_teams", "lots")
	assert.Error(t, err)
	_, err = d.Set("colour", "red")
	assert.Error(t, err)
}

type failingProvider struct{ err error }

func (f failingProvider) Available() bool { return true }
func (f failingProvider) Suggest(context.Context, string) ([]places.Suggestion, error) {
	return nil, f.err
}
func (f failingProvider) Details(context.Context, string) (*places.Place, error) {
	return nil, f.err
}
