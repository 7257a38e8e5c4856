// Package places is the optional address-autocomplete capability. Without
// an API key the provider reports itself unavailable and every lookup
// fails with ErrUnavailable, so forms keep working without suggestions.
package places

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	placesapi "google.golang.org/api/places/v1"
)

// MinQueryLength is the shortest input that triggers suggestions
const MinQueryLength = 4

var ErrUnavailable = errors.New("places autocomplete unavailable")

// ErrIncomplete is returned when a place lacks an address or coordinates
var ErrIncomplete = errors.New("place details incomplete")

// Suggestion is one autocomplete prediction
type Suggestion struct {
	PlaceID     string
	Description string
	MainText    string
}

// Place is a resolved suggestion
type Place struct {
	ID        string
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
}

type Provider interface {
	Available() bool
	Suggest(ctx context.Context, input string) ([]Suggestion, error)
	Details(ctx context.Context, placeID string) (*Place, error)
}

type unavailable struct{}

// Unavailable is the provider used when no API key is configured
var Unavailable Provider = unavailable{}

func (unavailable) Available() bool { return false }

func (unavailable) Suggest(context.Context, string) ([]Suggestion, error) {
	return nil, ErrUnavailable
}

func (unavailable) Details(context.Context, string) (*Place, error) {
	return nil, ErrUnavailable
}

// Google serves suggestions from the Places API (New)
type Google struct {
	svc *placesapi.Service
}

// New returns a Google provider, or Unavailable when apiKey is empty.
// opts are appended after the API key.
func New(ctx context.Context, apiKey string, opts ...option.ClientOption) (Provider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return Unavailable, nil
	}
	svc, err := placesapi.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create places client: %w", err)
	}
	return &Google{svc: svc}, nil
}

func (g *Google) Available() bool { return true }

// Suggest returns predictions for input; short inputs yield none
func (g *Google) Suggest(ctx context.Context, input string) ([]Suggestion, error) {
	if len([]rune(strings.TrimSpace(input))) < MinQueryLength {
		return nil, nil
	}
	resp, err := g.svc.Places.Autocomplete(&placesapi.GoogleMapsPlacesV1AutocompletePlacesRequest{
		Input: input,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("autocomplete %q: %w", input, err)
	}

	var out []Suggestion
	for _, s := range resp.Suggestions {
		p := s.PlacePrediction
		if p == nil || p.PlaceId == "" {
			continue
		}
		sug := Suggestion{PlaceID: p.PlaceId}
		if p.Text != nil {
			sug.Description = p.Text.Text
		}
		if p.StructuredFormat != nil && p.StructuredFormat.MainText != nil {
			sug.MainText = p.StructuredFormat.MainText.Text
		}
		out = append(out, sug)
	}
	return out, nil
}

// Details resolves a place id into a name, address and coordinates
func (g *Google) Details(ctx context.Context, placeID string) (*Place, error) {
	p, err := g.svc.Places.Get("places/"+placeID).
		Fields("id", "displayName", "formattedAddress", "location").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("place details %s: %w", placeID, err)
	}
	if p.Location == nil || p.FormattedAddress == "" {
		return nil, ErrIncomplete
	}

	place := &Place{
		ID:        placeID,
		Address:   p.FormattedAddress,
		Latitude:  p.Location.Latitude,
		Longitude: p.Location.Longitude,
	}
	if p.DisplayName != nil {
		place.Name = p.DisplayName.Text
	}
	return place, nil
}

// Static serves fixed suggestions, for tests and offline use
type Static struct {
	Places []Place
}

func (s Static) Available() bool { return true }

func (s Static) Suggest(ctx context.Context, input string) ([]Suggestion, error) {
	if len([]rune(strings.TrimSpace(input))) < MinQueryLength {
		return nil, nil
	}
	q := strings.ToLower(input)
	var out []Suggestion
	for _, p := range s.Places {
		if strings.Contains(strings.ToLower(p.Name+" "+p.Address), q) {
			out = append(out, Suggestion{PlaceID: p.ID, Description: p.Address, MainText: p.Name})
		}
	}
	return out, nil
}

func (s Static) Details(ctx context.Context, placeID string) (*Place, error) {
	for _, p := range s.Places {
		if p.ID == placeID {
			p := p
			return &p, nil
		}
	}
	return nil, fmt.Errorf("place %s: %w", placeID, ErrIncomplete)
}
