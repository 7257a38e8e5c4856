package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/turnupspot/turnupspot-client/internal/domain"
	"github.com/turnupspot/turnupspot-client/internal/screens"
)

var (
	gamedayPage    int
	gamedayTeams   bool
	gamedayCheckIn bool
	gamedayWatch   bool
)

func init() {
	f := gamedayCmd.Flags()
	f.IntVar(&gamedayPage, "page", 1, "page of the player list")
	f.BoolVar(&gamedayTeams, "teams", false, "show teams instead of players")
	f.BoolVar(&gamedayCheckIn, "check-in", false, "check in at the venue")
	f.BoolVar(&gamedayWatch, "watch", false, "keep checking the location every evening until interrupted")
	f.Float64Var(&latitude, "lat", 0, "device latitude")
	f.Float64Var(&longitude, "lng", 0, "device longitude")

	RootCmd.AddCommand(gamedayCmd)
}

var gamedayCmd = &cobra.Command{
	Use:   "gameday <group-id>",
	Short: "Show today's game, teams and check-in for a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		w := cmd.OutOrStdout()
		s := screens.NewGameDay(deps(), args[0])
		defer s.Close()
		if err := s.Load(ctx); err != nil {
			return err
		}

		if gamedayCheckIn {
			if err := s.CheckIn(ctx); err != nil {
				return err
			}
		}

		printGameDay(w, s)
		if gamedayTeams {
			printTeams(w, s.Teams())
		} else {
			printPlayers(w, s)
		}

		if !gamedayWatch {
			return nil
		}
		stop, err := s.Watch(ctx)
		if err != nil {
			return err
		}
		defer stop()
		<-ctx.Done()
		if st := s.Status(); st.Error != "" {
			fmt.Fprintln(w, st.Error)
		}
		return nil
	},
}

func printGameDay(w io.Writer, s *screens.GameDay) {
	fmt.Fprintln(w, s.StatusMessage())
	info := s.View().Data.Info
	if info == nil {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Day:\t%s %s\n", info.Day, info.Date)
	fmt.Fprintf(tw, "Time:\t%s - %s\n", info.GameStartTime, info.GameEndTime)
	if left, ok := s.Countdown(); ok && left > 0 {
		fmt.Fprintf(tw, "Kickoff in:\t%s\n", left.Truncate(time.Minute))
	}
	st := s.Status()
	switch {
	case st.CheckedIn:
		fmt.Fprintf(tw, "Check-in:\tdone\n")
	case st.Error != "":
		fmt.Fprintf(tw, "Check-in:\t%s\n", st.Error)
	case info.CheckInEnabled:
		fmt.Fprintf(tw, "Check-in:\topen\n")
	}
	tw.Flush()
}

func printPlayers(w io.Writer, s *screens.GameDay) {
	page := s.Page(gamedayPage)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS\tARRIVED\tTEAM")
	for _, p := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", playerName(p), p.Status, p.ArrivalTime, teamLabel(p.Team))
	}
	tw.Flush()
	fmt.Fprintf(w, "page %d of %d, %d players\n", page.Number, page.Pages, page.Total)
}

func printTeams(w io.Writer, teams []domain.Team) {
	if len(teams) == 0 {
		fmt.Fprintln(w, "No teams yet")
		return
	}
	for _, t := range teams {
		fmt.Fprintf(w, "Team %d (%d players)\n", t.Number, len(t.Players))
		for _, p := range t.Players {
			fmt.Fprintf(w, "  %s\n", playerName(p))
		}
	}
}

func playerName(p domain.Player) string {
	if p.IsCaptain {
		return p.Name + " (C)"
	}
	return p.Name
}

func teamLabel(team *int) string {
	if team == nil {
		return "-"
	}
	return fmt.Sprint(*team)
}
