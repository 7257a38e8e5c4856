package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/turnupspot/turnupspot-client/internal/api"
	"github.com/turnupspot/turnupspot-client/internal/logging"
	"github.com/turnupspot/turnupspot-client/internal/notify"
)

// ErrNotConfirmed is returned when the user declined a destructive action
var ErrNotConfirmed = errors.New("action not confirmed")

// Mutation is one user-triggered change.
type Mutation struct {
	// Name identifies the mutation in logs
	Name string
	// Confirm, when set, is shown to the user before dispatch
	Confirm string
	Do      func(ctx context.Context) error
	// Apply patches local state after Do succeeds
	Apply func()
	// Success is the notice shown after Apply, if any
	Success string
	// Failure is shown when the server gives no message of its own
	Failure string
}

// Runner executes mutations with confirmation and notices
type Runner struct {
	notifier  notify.Notifier
	confirmer notify.Confirmer
}

func NewRunner(notifier notify.Notifier, confirmer notify.Confirmer) *Runner {
	if notifier == nil {
		notifier = notify.Discard
	}
	if confirmer == nil {
		confirmer = notify.NeverConfirm
	}
	return &Runner{notifier: notifier, confirmer: confirmer}
}

// Notifier is where the runner publishes notices
func (r *Runner) Notifier() notify.Notifier {
	return r.notifier
}

// Run dispatches m. On failure local state is untouched and a failure
// notice carries the server message when there is one.
func (r *Runner) Run(ctx context.Context, m Mutation) error {
	logger := logging.New(ctx).WithField("mutation", m.Name)

	if m.Confirm != "" {
		ok, err := r.confirmer.Confirm(ctx, m.Confirm)
		if err != nil {
			return fmt.Errorf("confirm %s: %w", m.Name, err)
		}
		if !ok {
			logger.LogInfo("mutation", "declined by user")
			return ErrNotConfirmed
		}
	}

	if err := m.Do(ctx); err != nil {
		if !api.IsCanceled(err) && !errors.Is(err, context.Canceled) {
			notify.Failure(r.notifier, api.ServerMessage(err, m.Failure))
		}
		logger.LogError("mutation", err)
		return err
	}

	if m.Apply != nil {
		m.Apply()
	}
	if m.Success != "" {
		notify.Success(r.notifier, m.Success)
	}
	return nil
}
