package pipeline

import (
	"context"
	"log/slog"

	"github.com/n0madic/go-genpipe/internal/config"
)

// SettingsSource supplies the settings snapshot read at the start of every
// call.
type SettingsSource interface {
	Settings() config.Settings
}

// HostProvider generates text through the host application's own model
// access instead of the user-configured endpoint.
type HostProvider interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// HostFunc adapts a function to HostProvider.
type HostFunc func(ctx context.Context, prompt, system string) (string, error)

func (f HostFunc) Generate(ctx context.Context, prompt, system string) (string, error) {
	return f(ctx, prompt, system)
}

// Confirmer asks a human to approve a billable call before it is made.
// Returning false or an error declines.
type Confirmer interface {
	Confirm(ctx context.Context, label, providerModel, preview string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, label, providerModel, preview string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, label, providerModel, preview string) (bool, error) {
	return f(ctx, label, providerModel, preview)
}

// Level is the severity of a user-facing notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// Notifier shows short notices to the user. Calls are fire-and-forget.
type Notifier interface {
	Notify(level Level, msg string)
}

// SlogNotifier writes notices to the default slog logger.
type SlogNotifier struct{}

func (SlogNotifier) Notify(level Level, msg string) {
	switch level {
	case LevelError:
		slog.Error("pipeline.notice", "msg", msg)
	case LevelWarn:
		slog.Warn("pipeline.notice", "msg", msg)
	default:
		slog.Info("pipeline.notice", "msg", msg)
	}
}
