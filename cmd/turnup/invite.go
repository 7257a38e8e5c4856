package main

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/turnupspot/turnupspot-client/internal/screens"
	"github.com/turnupspot/turnupspot-client/internal/share"
)

var inviteCopy bool

func init() {
	inviteCmd.Flags().BoolVarP(&inviteCopy, "copy", "c", false, "copy the invite link to the clipboard")
	RootCmd.AddCommand(inviteCmd, joinInviteCmd)
}

var inviteCmd = &cobra.Command{
	Use:   "invite <group-id>",
	Short: "Print a group's invite link and share links",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := screens.NewInviteMembers(deps(), args[0])
		defer s.Close()
		if err := s.Load(ctx); err != nil {
			if v := s.View(); v.NotFound {
				return fmt.Errorf("group %s not found", args[0])
			}
			return err
		}

		w := cmd.OutOrStdout()
		if g := s.View().Data; g != nil {
			fmt.Fprintf(w, "Invite members to %s\n", g.Name)
		}
		fmt.Fprintf(w, "Link:      %s\n", s.Link())
		fmt.Fprintf(w, "Email:     %s\n", s.MailtoURL())
		fmt.Fprintf(w, "WhatsApp:  %s\n", s.WhatsAppURL())

		if inviteCopy {
			// the link is already printed, a missing clipboard is not fatal
			_ = s.Copy(ctx)
		}
		return nil
	},
}

var joinInviteCmd = &cobra.Command{
	Use:   "join-invite <invite-link|group-id>",
	Short: "Accept an invite link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := screens.NewJoinInvite(deps(), args[0])
		if err != nil {
			return err
		}
		return s.Accept(cmd.Context())
	},
}

// systemClipboard is the desktop clipboard, when a clipboard tool is
// installed
func systemClipboard() share.Clipboard {
	if clipboard.Unsupported {
		return share.UnavailableClipboard
	}
	return share.ClipboardFunc(func(_ context.Context, text string) error {
		return clipboard.WriteAll(text)
	})
}
