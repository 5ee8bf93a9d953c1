// Package daemon implements the enforcement run loop.
package daemon

import (
	"context"

	"go.uber.org/zap"

	"github.com/focusgate/focusgate/internal/domain"
	"github.com/focusgate/focusgate/internal/usecase"
)

// Runner owns the single goroutine on which all session-state mutation,
// OS-event handling, and timer ticks execute. Events are handled
// run-to-completion in delivery order; public methods marshal their work
// onto the loop via the command channel, so callers never touch the
// Session concurrently.
type Runner struct {
	ctrl   *usecase.Controller
	cmds   chan func()
	logger *zap.Logger
}

// NewRunner creates a runner around a lifecycle controller.
func NewRunner(ctrl *usecase.Controller, logger *zap.Logger) *Runner {
	return &Runner{
		ctrl:   ctrl,
		cmds:   make(chan func(), 16),
		logger: logger,
	}
}

// Run executes the owner loop until the context is cancelled. On shutdown
// an active session is ended without a record.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("enforcement loop started")

	for {
		select {
		case <-ctx.Done():
			r.ctrl.EndSession(false)
			r.logger.Info("enforcement loop stopping")
			return ctx.Err()

		case fn := <-r.cmds:
			fn()

		case ev, ok := <-r.ctrl.EventC():
			if !ok {
				r.ctrl.DetachEvents()
				continue
			}
			r.ctrl.HandleEvent(ev)

		case <-r.ctrl.TickC():
			r.ctrl.Tick()
		}
	}
}

// StartSession marshals a session start onto the loop and reports its
// result.
func (r *Runner) StartSession(apps []domain.AppSelection, mode domain.SessionMode, durationMinutes int) error {
	errc := make(chan error, 1)
	r.cmds <- func() {
		errc <- r.ctrl.StartSession(apps, mode, durationMinutes)
	}
	return <-errc
}

// EndSession marshals a session end onto the loop and waits for it.
func (r *Runner) EndSession(completedNaturally bool) {
	r.do(func() { r.ctrl.EndSession(completedNaturally) })
}

// AddTime marshals a session extension onto the loop and waits for it.
func (r *Runner) AddTime(minutes int) {
	r.do(func() { r.ctrl.AddTime(minutes) })
}

// AcknowledgeCompletion marshals a completion acknowledgment onto the loop.
func (r *Runner) AcknowledgeCompletion() {
	r.do(func() { r.ctrl.AcknowledgeCompletion() })
}

// Status reads a snapshot of the session state from the loop.
func (r *Runner) Status() domain.StatusSnapshot {
	out := make(chan domain.StatusSnapshot, 1)
	r.cmds <- func() {
		s := r.ctrl.Session()
		out <- domain.StatusSnapshot{
			Active:           s.Status == domain.StatusActive,
			RemainingSeconds: s.RemainingSeconds,
		}
	}
	return <-out
}

func (r *Runner) do(fn func()) {
	done := make(chan struct{})
	r.cmds <- func() {
		fn()
		close(done)
	}
	<-done
}
