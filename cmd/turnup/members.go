package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/turnupspot/turnupspot-client/internal/domain"
	"github.com/turnupspot/turnupspot-client/internal/screens"
)

func init() {
	membersCmd.AddCommand(removeMemberCmd, makeAdminCmd)
	RootCmd.AddCommand(membersCmd, approveCmd, rejectCmd)
}

var membersCmd = &cobra.Command{
	Use:   "members <group-id>",
	Short: "List approved and pending members of a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openRoster(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer s.Close()
		roster := s.View().Data
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Members (%d)\n", len(roster.Members))
		printMembers(w, roster.Members)
		if len(roster.Pending) > 0 {
			fmt.Fprintf(w, "\nPending (%d)\n", len(roster.Pending))
			printMembers(w, roster.Pending)
		}
		return nil
	},
}

// rosterAction runs one admin action against a loaded roster
func rosterAction(use, short string, do func(*screens.GroupMembers, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <group-id> <member-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openRoster(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer s.Close()
			return do(s, cmd.Context(), args[1])
		},
	}
}

var (
	approveCmd      = rosterAction("approve", "Approve a pending member", (*screens.GroupMembers).Approve)
	rejectCmd       = rosterAction("reject", "Reject a pending member", (*screens.GroupMembers).Reject)
	removeMemberCmd = rosterAction("remove", "Remove a member from the group", (*screens.GroupMembers).Remove)
	makeAdminCmd    = rosterAction("make-admin", "Promote a member to admin", (*screens.GroupMembers).MakeAdmin)
)

func openRoster(ctx context.Context, groupID string) (*screens.GroupMembers, error) {
	s := screens.NewGroupMembers(deps(), groupID)
	if err := s.Load(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func printMembers(w io.Writer, members []domain.Member) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE")
	for _, m := range members {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Name(), m.User.Email, m.Role)
	}
	tw.Flush()
}
