package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want Weekday
	}{
		{"Monday", Monday},
		{"sunday", Sunday},
		{"WED", Wednesday},
		{"0", Monday},
		{" 6 ", Sunday},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekday(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"7", "-1", "Funday", ""} {
		_, err := ParseWeekday(bad)
		assert.Error(t, err, bad)
	}
}

func TestWeekdayOf(t *testing.T) {
	// 2026-10-12 is a Monday
	assert.Equal(t, Monday, WeekdayOf(time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, Sunday, WeekdayOf(time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)))
}

func TestPlayingDays_ToggleIsIdempotentUnderDoubleToggle(t *testing.T) {
	start := NewPlayingDays(Monday, Friday)

	for _, d := range AllWeekdays {
		got := start.Toggle(d).Toggle(d)
		assert.Equal(t, start, got, d.String())
	}
}

func TestPlayingDays_ToggleKeepsDisplayOrder(t *testing.T) {
	pd := NewPlayingDays().Toggle(Sunday).Toggle(Monday).Toggle(Wednesday)
	assert.Equal(t, []string{"Monday", "Wednesday", "Sunday"}, pd.Names())
	assert.Equal(t, []int{0, 2, 6}, pd.Indices())

	pd = pd.Toggle(Monday)
	assert.Equal(t, []string{"Wednesday", "Sunday"}, pd.Names())
}

func TestPlayingDays_WireRoundTrip(t *testing.T) {
	selected, err := ParsePlayingDays("Monday", "Wednesday")
	require.NoError(t, err)

	t.Run("create field", func(t *testing.T) {
		field := selected.CreateField()
		assert.JSONEq(t, `[{"day":"Monday"},{"day":"Wednesday"}]`, field)

		var decoded PlayingDays
		require.NoError(t, json.Unmarshal([]byte(field), &decoded))
		assert.Equal(t, []string{"Monday", "Wednesday"}, decoded.Names())
	})

	t.Run("update body", func(t *testing.T) {
		data, err := json.Marshal(selected)
		require.NoError(t, err)
		assert.JSONEq(t, `["Monday","Wednesday"]`, string(data))

		var decoded PlayingDays
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, selected, decoded)
	})
}

func TestPlayingDays_UnmarshalTolerantShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"response objects", `[{"id":"p1","sport_group_id":"g1","day":"Friday"},{"day":"Monday"}]`, []string{"Monday", "Friday"}},
		{"indices", `[0, 4]`, []string{"Monday", "Friday"}},
		{"index strings", `["2","2"]`, []string{"Wednesday"}},
		{"comma string", `"Monday,Tuesday"`, []string{"Monday", "Tuesday"}},
		{"null", `null`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pd PlayingDays
			require.NoError(t, json.Unmarshal([]byte(tt.in), &pd))
			assert.Equal(t, tt.want, pd.Names())
		})
	}

	var pd PlayingDays
	assert.Error(t, json.Unmarshal([]byte(`["Funday"]`), &pd))
	assert.Error(t, json.Unmarshal([]byte(`[{"id":"x"}]`), &pd))
}

func TestID_AcceptsNumbersAndStrings(t *testing.T) {
	var m Member
	require.NoError(t, json.Unmarshal([]byte(`{"id":12,"user_id":"7","role":"member","is_approved":false,"user":{"first_name":"Ada","last_name":"Obi","email":"ada@example.com"}}`), &m))
	assert.Equal(t, ID("12"), m.ID)
	assert.Equal(t, ID("7"), m.UserID)
	assert.Equal(t, "Ada Obi", m.Name())

	var g SportGroup
	require.NoError(t, json.Unmarshal([]byte(`{"id":"b7c2","name":"Five-a-side","created_by":null}`), &g))
	assert.Equal(t, ID("b7c2"), g.ID)
	assert.Equal(t, ID(""), g.CreatedBy)
}

func TestMembership_IsAdmin(t *testing.T) {
	var none *Membership
	assert.False(t, none.IsAdmin())
	assert.True(t, (&Membership{IsCreator: true}).IsAdmin())
	assert.True(t, (&Membership{IsMember: true, Role: MemberRoleAdmin}).IsAdmin())
	assert.False(t, (&Membership{IsMember: true, Role: MemberRoleMember}).IsAdmin())
}
