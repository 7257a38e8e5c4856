package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/turnupspot/turnupspot-client/internal/domain"
	"github.com/turnupspot/turnupspot-client/internal/screens"
)

var (
	chatSend   string
	chatFollow bool
)

func init() {
	chatCmd.Flags().StringVarP(&chatSend, "send", "m", "", "message to send")
	chatCmd.Flags().BoolVarP(&chatFollow, "follow", "f", false, "stream new messages until interrupted")
	RootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat <room-id>",
	Short: "Read and write a group chat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := screens.NewChat(deps(), args[0])
		defer s.Close()
		if err := s.Load(ctx); err != nil {
			return err
		}

		out := &chatPrinter{w: cmd.OutOrStdout()}
		out.print(s.Messages())
		s.OnMessages(out.print)

		if chatFollow {
			if err := s.Live(ctx); err != nil {
				return err
			}
		}
		if chatSend != "" {
			if err := s.Send(ctx, chatSend); err != nil {
				return err
			}
		}
		if chatFollow {
			<-ctx.Done()
		}
		return nil
	},
}

// chatPrinter writes each message of a growing collection once
type chatPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	printed int
}

func (p *chatPrinter) print(all []domain.ChatMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range all[min(p.printed, len(all)):] {
		fmt.Fprintf(p.w, "%s  %s: %s\n", m.CreatedAt, m.Author(), m.Content)
	}
	p.printed = max(p.printed, len(all))
}
