package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Weekday is a day of the week indexed Monday = 0 .. Sunday = 6. The index
// is for display ordering only; the wire form is always the day name.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// AllWeekdays lists the days in display order
var AllWeekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// Short returns the three letter label, e.g. "Mon"
func (d Weekday) Short() string {
	return d.String()[:3]
}

// WeekdayOf maps a time.Weekday (Sunday = 0) onto the Monday-first index
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// ParseWeekday accepts a day name in any case, a three letter prefix or a
// Monday-first index 0..6.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		d := Weekday(n)
		if !d.Valid() {
			return 0, fmt.Errorf("weekday index %d out of range", n)
		}
		return d, nil
	}
	for i, name := range weekdayNames {
		if strings.EqualFold(s, name) || (len(s) == 3 && strings.EqualFold(s, name[:3])) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func (d Weekday) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(d))
	}
	return json.Marshal(d.String())
}

func (d *Weekday) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := weekdayFromAny(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func weekdayFromAny(v any) (Weekday, error) {
	switch x := v.(type) {
	case string:
		return ParseWeekday(x)
	case float64:
		return ParseWeekday(strconv.Itoa(int(x)))
	case map[string]any:
		// {"day": "Monday", "id": ..., "sport_group_id": ...}
		day, ok := x["day"]
		if !ok {
			return 0, fmt.Errorf("playing day object without day field")
		}
		return weekdayFromAny(day)
	default:
		return 0, fmt.Errorf("unsupported weekday value %v", v)
	}
}

// PlayingDays is a set of weekdays kept in display order
type PlayingDays []Weekday

// NewPlayingDays builds a normalized set from days
func NewPlayingDays(days ...Weekday) PlayingDays {
	var pd PlayingDays
	for _, d := range days {
		if d.Valid() && !pd.Has(d) {
			pd = append(pd, d)
		}
	}
	sort.Slice(pd, func(i, j int) bool { return pd[i] < pd[j] })
	return pd
}

// ParsePlayingDays parses day names or indices
func ParsePlayingDays(values ...string) (PlayingDays, error) {
	days := make([]Weekday, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			d, err := ParseWeekday(part)
			if err != nil {
				return nil, err
			}
			days = append(days, d)
		}
	}
	return NewPlayingDays(days...), nil
}

func (pd PlayingDays) Has(d Weekday) bool {
	for _, x := range pd {
		if x == d {
			return true
		}
	}
	return false
}

// Toggle adds d when absent and removes it when present
func (pd PlayingDays) Toggle(d Weekday) PlayingDays {
	if pd.Has(d) {
		out := make(PlayingDays, 0, len(pd))
		for _, x := range pd {
			if x != d {
				out = append(out, x)
			}
		}
		return out
	}
	return NewPlayingDays(append(append(PlayingDays{}, pd...), d)...)
}

// Names returns the wire names in display order
func (pd PlayingDays) Names() []string {
	out := make([]string, 0, len(pd))
	for _, d := range pd {
		out = append(out, d.String())
	}
	return out
}

// Indices returns the display indices
func (pd PlayingDays) Indices() []int {
	out := make([]int, 0, len(pd))
	for _, d := range pd {
		out = append(out, int(d))
	}
	return out
}

func (pd PlayingDays) String() string {
	return strings.Join(pd.Names(), ", ")
}

// CreateField encodes the days the way the multipart create endpoint
// expects them: a JSON array of {"day": name} objects.
func (pd PlayingDays) CreateField() string {
	type item struct {
		Day string `json:"day"`
	}
	items := make([]item, 0, len(pd))
	for _, n := range pd.Names() {
		items = append(items, item{Day: n})
	}
	data, _ := json.Marshal(items)
	return string(data)
}

// MarshalJSON encodes the set as a list of day names
func (pd PlayingDays) MarshalJSON() ([]byte, error) {
	return json.Marshal(pd.Names())
}

// UnmarshalJSON accepts a list of names, indices or {"day": ...} objects,
// or a single comma separated string.
func (pd *PlayingDays) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch x := raw.(type) {
	case nil:
		*pd = nil
		return nil
	case string:
		parsed, err := ParsePlayingDays(x)
		if err != nil {
			return err
		}
		*pd = parsed
		return nil
	case []any:
		days := make([]Weekday, 0, len(x))
		for _, item := range x {
			d, err := weekdayFromAny(item)
			if err != nil {
				return err
			}
			days = append(days, d)
		}
		*pd = NewPlayingDays(days...)
		return nil
	default:
		return fmt.Errorf("unsupported playing_days value %v", raw)
	}
}
