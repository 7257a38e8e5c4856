package screens

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/turnupspot/turnupspot-client/internal/api"
	"github.com/turnupspot/turnupspot-client/internal/domain"
	"github.com/turnupspot/turnupspot-client/internal/fetch"
	"github.com/turnupspot/turnupspot-client/internal/geo"
	"github.com/turnupspot/turnupspot-client/internal/logging"
)

const (
	// PlayersPerPage is the arrival list page size
	PlayersPerPage = 8
	// LocationCheckSchedule fires the evening venue check, seconds first
	LocationCheckSchedule = "0 0 18 * * *"
	locationCheckHour     = 18
)

var ErrCheckInClosed = errors.New("check-in is not enabled")

const (
	msgCheckInClosed = "Check-in is not enabled yet. It opens 1 hour before game start."
	msgNotAtVenue    = "You must be at the venue to check in"
)

// GameDayData is one load of the game day screen
type GameDayData struct {
	Info    *domain.GameDayInfo
	Players []domain.Player
}

// CheckInStatus is the location check-in panel
type CheckInStatus struct {
	AtVenue   bool
	Error     string
	CheckedIn bool
}

// GameDay shows today's game for a group: arrivals, teams and check-in
type GameDay struct {
	deps *Deps
	id   string
	data *fetch.Resource[GameDayData]

	mu     sync.Mutex
	status CheckInStatus
}

func NewGameDay(deps *Deps, groupID string) *GameDay {
	s := &GameDay{deps: deps, id: groupID}
	s.data = fetch.NewResource(s.fetch)
	return s
}

func (s *GameDay) fetch(ctx context.Context) (GameDayData, error) {
	var d GameDayData
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		info, err := s.deps.GameDays.Info(ctx, s.id)
		d.Info = info
		return err
	})
	g.Go(func() error {
		players, err := s.deps.GameDays.Players(ctx, s.id)
		d.Players = players
		return err
	})
	if err := g.Wait(); err != nil {
		return GameDayData{}, err
	}
	return d, nil
}

func (s *GameDay) Load(ctx context.Context) error {
	token, err := s.deps.requireToken()
	if err != nil {
		return err
	}
	return s.data.Sync(ctx, s.id, token)
}

func (s *GameDay) Refresh(ctx context.Context) error { return s.data.Refetch(ctx) }
func (s *GameDay) View() fetch.View[GameDayData] { return s.data.View() }
func (s *GameDay) Close() { s.data.Close() }

func (s *GameDay) Status() CheckInStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *GameDay) setStatus(fn func(*CheckInStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.status)
}

// arrivalOrder puts earlier arrivals first and arrived players ahead of
// the rest
func arrivalOrder(players []domain.Player) []domain.Player {
	out := append([]domain.Player(nil), players...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ArrivalTime != "" && b.ArrivalTime != "" {
			return a.ArrivalTime < b.ArrivalTime
		}
		return a.Status == domain.PlayerArrived && b.Status != domain.PlayerArrived
	})
	return out
}

// Page returns page n of the arrival list
func (s *GameDay) Page(n int) fetch.Page[domain.Player] {
	return fetch.Paginate(arrivalOrder(s.data.View().Data.Players), PlayersPerPage, n)
}

// Teams groups players by team number in ascending order. Players without
// a team are left out.
func (s *GameDay) Teams() []domain.Team {
	return TeamsOf(s.data.View().Data.Players)
}

func TeamsOf(players []domain.Player) []domain.Team {
	byNumber := map[int]*domain.Team{}
	var numbers []int
	for _, p := range players {
		if p.Team == nil {
			continue
		}
		t, ok := byNumber[*p.Team]
		if !ok {
			t = &domain.Team{Number: *p.Team}
			byNumber[*p.Team] = t
			numbers = append(numbers, *p.Team)
		}
		if p.IsCaptain && t.Captain == nil {
			captain := p
			t.Captain = &captain
		}
		t.Players = append(t.Players, p)
	}
	sort.Ints(numbers)
	teams := make([]domain.Team, 0, len(numbers))
	for _, n := range numbers {
		teams = append(teams, *byNumber[n])
	}
	return teams
}

// StatusMessage describes where team formation stands
func (s *GameDay) StatusMessage() string {
	d := s.data.View().Data
	if d.Info == nil {
		return ""
	}
	if !d.Info.IsPlayingDay {
		return "Today is not a playing day"
	}
	if !d.Info.CheckInEnabled {
		return "Check-in opens 1 hour before game start"
	}
	arrived := 0
	for _, p := range d.Players {
		if p.Status == domain.PlayerArrived {
			arrived++
		}
	}
	if arrived == 0 {
		return "It's game day! Waiting for arrivals"
	}
	return fmt.Sprintf("Players arrived: %d", arrived)
}

// Venue is the check-in geofence of the loaded game
func (s *GameDay) Venue() (geo.Venue, error) {
	info := s.data.View().Data.Info
	if info == nil || info.VenueLatitude == nil || info.VenueLongitude == nil {
		return geo.Venue{}, geo.ErrNoVenue
	}
	return geo.Venue{
		Latitude:  *info.VenueLatitude,
		Longitude: *info.VenueLongitude,
		Radius:    info.VenueRadius,
	}, nil
}

// CheckLocation locates the device and records whether it is inside the
// venue fence
func (s *GameDay) CheckLocation(ctx context.Context) (bool, error) {
	venue, err := s.Venue()
	if err == nil {
		locator := s.deps.Locator
		if locator == nil {
			locator = geo.Unsupported
		}
		var pos geo.Position
		if pos, err = locator.Locate(ctx); err == nil {
			at := venue.Contains(pos)
			s.setStatus(func(st *CheckInStatus) {
				st.AtVenue = at
				st.Error = ""
				if !at {
					st.Error = msgNotAtVenue
				}
			})
			return at, nil
		}
	}

	logging.New(ctx).WithField("group_id", s.id).LogWarnf("check_location", "locating failed: %v", err)
	s.setStatus(func(st *CheckInStatus) {
		st.AtVenue = false
		st.Error = geo.Message(err)
	})
	return false, err
}

// CheckIn records the user's arrival. A device outside or not yet known to
// be at the venue is located first, but a manual check-in still goes
// ahead; the backend has the final say.
func (s *GameDay) CheckIn(ctx context.Context) error {
	info := s.data.View().Data.Info
	if info == nil || !info.CheckInEnabled {
		s.setStatus(func(st *CheckInStatus) { st.Error = msgCheckInClosed })
		return ErrCheckInClosed
	}
	if !s.Status().AtVenue {
		_, _ = s.CheckLocation(ctx)
	}

	err := s.deps.Runner.Run(ctx, fetch.Mutation{
		Name: "check_in",
		Do: func(ctx context.Context) error {
			return s.deps.GameDays.CheckIn(ctx, s.id)
		},
		Success: "Checked in successfully",
		Failure: "Failed to check in",
	})
	if err != nil {
		s.setStatus(func(st *CheckInStatus) { st.Error = api.ServerMessage(err, "Failed to check in") })
		return err
	}
	s.setStatus(func(st *CheckInStatus) {
		st.CheckedIn = true
		st.Error = ""
	})
	return s.data.Refetch(ctx)
}

// Countdown is the time left until today's kickoff, zero once it passed.
// It reports false when the schedule cannot be read.
func (s *GameDay) Countdown() (time.Duration, bool) {
	info := s.data.View().Data.Info
	if info == nil {
		return 0, false
	}
	now := s.deps.now()
	start, ok := kickoff(info, now)
	if !ok {
		return 0, false
	}
	if left := start.Sub(now); left > 0 {
		return left, true
	}
	return 0, true
}

func kickoff(info *domain.GameDayInfo, now time.Time) (time.Time, bool) {
	var clock time.Time
	var err error
	for _, layout := range []string{"15:04:05", "15:04"} {
		if clock, err = time.Parse(layout, info.GameStartTime); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, false
	}
	day := now
	if info.Date != "" {
		d, err := time.ParseInLocation("2006-01-02", info.Date, now.Location())
		if err != nil {
			return time.Time{}, false
		}
		day = d
	}
	y, m, dd := day.Date()
	return time.Date(y, m, dd, clock.Hour(), clock.Minute(), clock.Second(), 0, now.Location()), true
}

// Watch re-checks the device location every evening from 18:00 while ctx
// lives, and at once when the screen opens after that hour. The returned
// stop waits for a running check.
func (s *GameDay) Watch(ctx context.Context) (stop func(), err error) {
	logger := logging.New(ctx).WithField("group_id", s.id)
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(s.deps.now().Location()),
		cron.WithLogger(cron.PrintfLogger(logger)),
	)
	if _, err := c.AddFunc(LocationCheckSchedule, func() { s.checkIfVenue(ctx) }); err != nil {
		return nil, fmt.Errorf("schedule location check: %w", err)
	}
	c.Start()

	if s.deps.now().Hour() >= locationCheckHour {
		s.checkIfVenue(ctx)
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			<-c.Stop().Done()
		case <-done:
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-c.Stop().Done()
		})
	}, nil
}

// checkIfVenue checks the location only when the game has a venue
func (s *GameDay) checkIfVenue(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.Venue(); err != nil {
		return
	}
	_, _ = s.CheckLocation(ctx)
}
