package geo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0, Distance(6.5, 3.3, 6.5, 3.3), 1e-9)

	// one degree of latitude is about 111.2 km
	assert.InDelta(t, 111195, Distance(0, 0, 1, 0), 10)

	// London to Paris
	assert.InDelta(t, 343_500, Distance(51.5074, -0.1278, 48.8566, 2.3522), 1500)

	assert.InDelta(t, Distance(1, 2, 3, 4), Distance(3, 4, 1, 2), 1e-6)
}

func TestVenue_Contains(t *testing.T) {
	v := Venue{Latitude: 6.5244, Longitude: 3.3792, Radius: 100}

	assert.True(t, v.Contains(Position{Latitude: 6.5244, Longitude: 3.3792}))
	assert.True(t, v.Contains(Position{Latitude: 6.5250, Longitude: 3.3792}), "about 67 m north")
	assert.False(t, v.Contains(Position{Latitude: 6.5344, Longitude: 3.3792}), "about 1.1 km north")
}

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrPermissionDenied, "Location access was denied. Please enable location access in your settings to check in."},
		{fmt.Errorf("gps: %w", ErrPositionUnavailable), "Location information is unavailable. Please try again."},
		{ErrTimeout, "Location request timed out. Please try again."},
		{context.DeadlineExceeded, "Location request timed out. Please try again."},
		{ErrUnsupported, "Geolocation is not supported by your device"},
		{errors.New("weird"), "An unexpected error occurred while getting your location."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Message(tt.err))
	}
}

func TestStatic(t *testing.T) {
	pos, err := Static{Position: Position{Latitude: 1, Longitude: 2}}.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, pos.Latitude)

	_, err = Unsupported.Locate(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Static{}.Locate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
