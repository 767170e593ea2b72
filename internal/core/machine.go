package core

import (
	"context"
	"io"

	"heygpt/pkg/stream"
)

// State is one step of a session. Execute returns the next state, or nil
// once the session is finished.
type State interface {
	Name() string
	Execute(ctx context.Context, m Model) (State, Model, error)
}

// Session drives states from Init until one finishes or fails.
type Session struct {
	fx    Effects
	runID string
}

// NewSession creates a session over fx. runID tags every log entry.
func NewSession(fx Effects, runID string) *Session {
	if fx.Log == nil {
		fx.Log = NopLogger()
	}
	return &Session{fx: fx, runID: runID}
}

// Run executes the session from Init. Errors from any state are returned
// unchanged.
func (s *Session) Run(ctx context.Context, m Model) (Model, error) {
	return Drive(ctx, NewInitState(s.fx), m, s.fx.Log, s.runID)
}

// Drive executes states starting at start until a state returns nil.
func Drive(ctx context.Context, start State, m Model, log Logger, runID string) (Model, error) {
	for state := start; state != nil; {
		log.Debug("Executing state",
			"run_id", runID,
			"state", state.Name(),
			"mode", m.Mode.Kind.String(),
		)

		next, updated, err := state.Execute(ctx, m)
		if err != nil {
			log.Debug("State failed", "run_id", runID, "state", state.Name(), "error", err)
			return updated, err
		}
		state, m = next, updated
	}
	return m, nil
}

// printStream aggregates src through the displayer and releases it.
func printStream(ctx context.Context, fx Effects, src stream.Source) ([]string, error) {
	if c, ok := src.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				fx.Log.Warn("Failed to close response stream", "error", err)
			}
		}()
	}
	return fx.Displayer.PrintStream(ctx, src)
}
