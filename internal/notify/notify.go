// Package notify carries global, non-blocking user notifications (toasts)
// and the confirmation capability used by destructive actions.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/turnupspot/turnupspot-client/internal/logging"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is one user-visible notification
type Notice struct {
	Level   Level
	Message string
	// Status is the HTTP status that caused the notice, 0 otherwise
	Status int
	At     time.Time
}

// Notifier publishes notices. Implementations must not block the caller.
type Notifier interface {
	Notify(n Notice)
}

// Func adapts a plain function to Notifier
type Func func(n Notice)

func (f Func) Notify(n Notice) { f(n) }

// Discard drops every notice
var Discard Notifier = Func(func(Notice) {})

// Multi fans a notice out to several notifiers
type Multi []Notifier

func (m Multi) Notify(n Notice) {
	for _, x := range m {
		x.Notify(n)
	}
}

// Success is a shorthand for a success notice
func Success(to Notifier, message string) {
	to.Notify(Notice{Level: LevelSuccess, Message: message, At: time.Now()})
}

func Info(to Notifier, message string) {
	to.Notify(Notice{Level: LevelInfo, Message: message, At: time.Now()})
}

// Failure is a shorthand for an error notice
func Failure(to Notifier, message string) {
	to.Notify(Notice{Level: LevelError, Message: message, At: time.Now()})
}

// Bus is a buffered notifier. When the buffer is full new notices are
// dropped rather than blocking the request path.
type Bus struct {
	mu      sync.Mutex
	ch      chan Notice
	closed  bool
	dropped int
}

// NewBus creates a bus holding up to size pending notices
func NewBus(size int) *Bus {
	if size <= 0 {
		size = 16
	}
	return &Bus{ch: make(chan Notice, size)}
}

func (b *Bus) Notify(n Notice) {
	if n.At.IsZero() {
		n.At = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.ch <- n:
	default:
		b.dropped++
	}
}

// C exposes the receive side of the bus
func (b *Bus) C() <-chan Notice {
	return b.ch
}

// Drain returns every notice currently buffered without waiting
func (b *Bus) Drain() []Notice {
	var out []Notice
	for {
		select {
		case n, ok := <-b.ch:
			if !ok {
				return out
			}
			out = append(out, n)
		default:
			return out
		}
	}
}

// Dropped returns how many notices were discarded because the bus was full
func (b *Bus) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Close stops accepting notices and closes the channel
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.ch)
}

// LogNotifier writes notices to the structured log
type LogNotifier struct {
	logger *logging.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: logging.For("notify")}
}

func (l *LogNotifier) Notify(n Notice) {
	switch n.Level {
	case LevelError:
		l.logger.LogErrorf("notify", "status=%d %s", n.Status, n.Message)
	case LevelWarning:
		l.logger.LogWarnf("notify", "status=%d %s", n.Status, n.Message)
	default:
		l.logger.LogInfof("notify", "%s", n.Message)
	}
}

// Confirmer asks the user to confirm a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a plain function to Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm approves every prompt
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return true, nil
})

// NeverConfirm declines every prompt
var NeverConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return false, nil
})
