package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestNew_NoKeyIsUnavailable(t *testing.T) {
	p, err := New(context.Background(), "  ")
	require.NoError(t, err)
	assert.False(t, p.Available())

	_, err = p.Suggest(context.Background(), "Lekki Phase 1")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = p.Details(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func fakePlacesAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		if key == "" {
			key = r.Header.Get("X-Goog-Api-Key")
		}
		assert.Equal(t, "test-key", key)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/v1/places:autocomplete"):
			var req map[string]any
			_ = json.NewDecoder(r.Body).Decode(&req)
			assert.Equal(t, "Teslim", req["input"])
			_, _ = w.Write([]byte(`{"suggestions":[
				{"placePrediction":{"placeId":"p1","text":{"text":"Teslim Balogun Stadium, Lagos"},
				 "structuredFormat":{"mainText":{"text":"Teslim Balogun Stadium"}}}},
				{"queryPrediction":{"text":{"text":"teslim balogun"}}}
			]}`))
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/v1/places/p1"):
			_, _ = w.Write([]byte(`{"id":"p1","displayName":{"text":"Teslim Balogun Stadium"},
				"formattedAddress":"Surulere, Lagos","location":{"latitude":6.4969,"longitude":3.3614}}`))
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/v1/places/p2"):
			_, _ = w.Write([]byte(`{"id":"p2","displayName":{"text":"Somewhere"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGoogle_SuggestAndDetails(t *testing.T) {
	srv := fakePlacesAPI(t)
	ctx := context.Background()
	p, err := New(ctx, "test-key", option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	require.True(t, p.Available())

	short, err := p.Suggest(ctx, "Tes")
	require.NoError(t, err)
	assert.Empty(t, short)

	got, err := p.Suggest(ctx, "Teslim")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Suggestion{PlaceID: "p1", Description: "Teslim Balogun Stadium, Lagos", MainText: "Teslim Balogun Stadium"}, got[0])

	place, err := p.Details(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, &Place{ID: "p1", Name: "Teslim Balogun Stadium", Address: "Surulere, Lagos", Latitude: 6.4969, Longitude: 3.3614}, place)

	_, err = p.Details(ctx, "p2")
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestStatic(t *testing.T) {
	s := Static{Places: []Place{
		{ID: "a", Name: "Rec Ground", Address: "1 Park Rd", Latitude: 1, Longitude: 2},
		{ID: "b", Name: "Arena", Address: "2 High St", Latitude: 3, Longitude: 4},
	}}
	got, err := s.Suggest(context.Background(), "park rd")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].PlaceID)

	place, err := s.Details(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "Arena", place.Name)
}
