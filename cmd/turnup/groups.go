package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/turnupspot/turnupspot-client/internal/domain"
	"github.com/turnupspot/turnupspot-client/internal/forms"
	"github.com/turnupspot/turnupspot-client/internal/screens"
)

var (
	groupsMine  bool
	groupsSport string

	groupFields []string
	groupImage  string
	groupPlace  string
)

func init() {
	groupsCmd.Flags().BoolVar(&groupsMine, "mine", false, "only groups you belong to")
	groupsCmd.Flags().StringVar(&groupsSport, "sport", "", "filter by sport, e.g. football")
	groupCmd.Flags().BoolVar(&groupsMine, "mine", false, "open from your groups")

	for _, c := range []*cobra.Command{createGroupCmd, editGroupCmd} {
		c.Flags().StringArrayVar(&groupFields, "set", nil, "field=value, repeatable (name, venue_name, playing_days, ...)")
		c.Flags().StringVar(&groupImage, "image", "", "venue picture to upload")
		c.Flags().StringVar(&groupPlace, "place", "", "address to resolve to its first suggestion")
	}

	RootCmd.AddCommand(groupsCmd, groupCmd, joinCmd, leaveCmd, deleteCmd, createGroupCmd, editGroupCmd)
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List sport groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if groupsMine {
			s := screens.NewMyGroups(deps())
			defer s.Close()
			if err := s.Load(ctx); err != nil {
				return err
			}
			printGroups(cmd.OutOrStdout(), s.View().Data)
			return nil
		}

		s := screens.NewAllGroups(deps())
		defer s.Close()
		if err := s.Load(ctx); err != nil {
			return err
		}
		printGroups(cmd.OutOrStdout(), s.BySport(domain.SportsType(groupsSport)))
		return nil
	},
}

var groupCmd = &cobra.Command{
	Use:   "group <group-id>",
	Short: "Show one sport group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := screens.NewGroupDetail(deps(), args[0], groupsMine)
		defer s.Close()
		if err := s.Load(cmd.Context()); err != nil {
			if v := s.View(); v.NotFound {
				return fmt.Errorf("group %s not found", args[0])
			}
			return err
		}
		printGroup(cmd.OutOrStdout(), s.View().Data)
		return nil
	},
}

var joinCmd = &cobra.Command{
	Use:   "join <group-id>",
	Short: "Ask to join a sport group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := screens.NewAllGroups(deps())
		defer s.Close()
		if err := s.Load(cmd.Context()); err != nil {
			return err
		}
		return s.Join(cmd.Context(), args[0])
	},
}

var leaveCmd = &cobra.Command{
	Use:   "leave <group-id>",
	Short: "Leave a sport group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := screens.NewMyGroups(deps())
		defer s.Close()
		if err := s.Load(cmd.Context()); err != nil {
			return err
		}
		return s.Leave(cmd.Context(), args[0])
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <group-id>",
	Short: "Delete a sport group you administer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := screens.NewGroupDetail(deps(), args[0], true)
		defer s.Close()
		return s.Delete(cmd.Context())
	},
}

var createGroupCmd = &cobra.Command{
	Use:   "create-group <sport>",
	Short: "Create a sport group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := screens.NewCreateGroup(deps(), domain.SportsType(args[0]))
		if err := fillDraft(ctx, s); err != nil {
			return err
		}
		g, err := s.Submit(ctx)
		if err != nil {
			return err
		}
		printGroup(cmd.OutOrStdout(), g)
		return nil
	},
}

var editGroupCmd = &cobra.Command{
	Use:   "edit-group <group-id>",
	Short: "Edit a sport group you administer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := screens.NewEditGroup(deps(), args[0])
		defer s.Close()
		if err := s.Load(ctx); err != nil {
			return err
		}
		if err := fillDraft(ctx, s); err != nil {
			return err
		}
		g, err := s.Submit(ctx)
		if err != nil {
			return err
		}
		printGroup(cmd.OutOrStdout(), g)
		return nil
	},
}

// groupForm is the create and the edit group screen
type groupForm interface {
	Update(fn func(forms.SportGroupDraft) forms.SportGroupDraft) forms.SportGroupDraft
	TypeAddress(ctx context.Context, text string) forms.SportGroupDraft
	SelectSuggestion(ctx context.Context, placeID string) (forms.SportGroupDraft, error)
}

// fillDraft applies --set, --place and --image to a group form
func fillDraft(ctx context.Context, form groupForm) error {
	var setErr error
	form.Update(func(d forms.SportGroupDraft) forms.SportGroupDraft {
		for _, kv := range groupFields {
			field, value, ok := strings.Cut(kv, "=")
			if !ok {
				setErr = fmt.Errorf("--set %q: want field=value", kv)
				return d
			}
			next, err := d.Set(field, value)
			if err != nil {
				setErr = err
				return d
			}
			d = next
		}
		return d
	})
	if setErr != nil {
		return setErr
	}

	if groupPlace != "" {
		d := form.TypeAddress(ctx, groupPlace)
		if len(d.Suggestions) > 0 {
			if _, err := form.SelectSuggestion(ctx, d.Suggestions[0].PlaceID); err != nil {
				return err
			}
		}
	}

	if groupImage != "" {
		content, err := os.ReadFile(groupImage)
		if err != nil {
			return err
		}
		name := filepath.Base(groupImage)
		form.Update(func(d forms.SportGroupDraft) forms.SportGroupDraft {
			return d.AttachImage(name, content)
		})
	}
	return nil
}

func printGroups(w io.Writer, groups []domain.SportGroup) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSPORT\tVENUE\tDAYS\tMEMBERS")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", g.ID, g.Name, g.SportsType, g.VenueName, g.PlayingDays, g.MemberCount)
	}
	tw.Flush()
}

func printGroup(w io.Writer, g *domain.SportGroup) {
	if g == nil {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", g.Name)
	fmt.Fprintf(tw, "Sport:\t%s\n", g.SportsType)
	fmt.Fprintf(tw, "Venue:\t%s, %s\n", g.VenueName, g.VenueAddress)
	fmt.Fprintf(tw, "Days:\t%s\n", g.PlayingDays)
	fmt.Fprintf(tw, "Time:\t%s - %s\n", g.GameStartTime, g.GameEndTime)
	fmt.Fprintf(tw, "Teams:\t%d x %d players\n", g.MaxTeams, g.MaxPlayersPerTeam)
	fmt.Fprintf(tw, "Members:\t%d\n", g.MemberCount)
	if g.Rules != "" {
		fmt.Fprintf(tw, "Rules:\t%s\n", g.Rules)
	}
	if m := g.CurrentUserMembership; m != nil {
		fmt.Fprintf(tw, "You:\t%s\n", m.Role)
	}
	tw.Flush()
}
