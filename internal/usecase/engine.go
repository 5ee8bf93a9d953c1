// Package usecase contains application business logic.
package usecase

import (
	"go.uber.org/zap"

	"github.com/focusgate/focusgate/internal/domain"
	"github.com/focusgate/focusgate/internal/policy"
)

// Engine enforces session policy against OS process events. It is stateless
// apart from its collaborators; the Session it acts on is passed in by the
// lifecycle controller, which owns it. All methods must be called from the
// runner's goroutine.
type Engine struct {
	processes     domain.ProcessController
	oracle        domain.FullscreenOracle
	toast         domain.ToastSink
	bypassEnabled bool
	logger        *zap.Logger
}

// NewEngine creates an enforcement engine. bypassEnabled gates the
// fullscreen oracle: when false the oracle is never consulted.
func NewEngine(
	pc domain.ProcessController,
	oracle domain.FullscreenOracle,
	toast domain.ToastSink,
	bypassEnabled bool,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		processes:     pc,
		oracle:        oracle,
		toast:         toast,
		bypassEnabled: bypassEnabled,
		logger:        logger,
	}
}

// HandleEvent processes a single OS lifecycle/focus event against the
// active session. Events with no resolvable identity are dropped (fail-open:
// the engine never denies based on absence of information).
func (e *Engine) HandleEvent(s *domain.Session, ev domain.ProcessEvent) {
	if ev.Kind == domain.EventEnvironmentChanged {
		// Coarse signal, no single process to blame: reconcile everything.
		e.Sweep(s)
		return
	}

	id := ev.Process.Identifier
	if id == "" || ev.Process.Terminated {
		e.logger.Debug("dropping unresolvable event", zap.String("kind", string(ev.Kind)))
		return
	}

	if e.bypassed() {
		// Foreground is already undistractable; suspend enforcement and
		// remember this identifier as the refocus target.
		s.LastKnownAllowedIdentifier = id
		e.logger.Debug("fullscreen bypass",
			zap.String("identifier", id),
			zap.String("reason", string(domain.ReasonFullscreenBypass)))
		return
	}

	decision := policy.Evaluate(id, s)
	if decision.Verdict == domain.VerdictAllow {
		s.LastKnownAllowedIdentifier = id
		return
	}

	e.deny(s, ev.Process, decision)
}

// Sweep is the full reconciliation pass: enumerate all running processes and
// apply the deny action to every violator. Invoked at session start and after
// environment changes. The fullscreen bypass is evaluated once for the whole
// sweep, not per process.
func (e *Engine) Sweep(s *domain.Session) {
	if e.bypassed() {
		e.logger.Debug("sweep skipped, foreground undistractable")
		return
	}

	procs, err := e.processes.RunningProcesses()
	if err != nil {
		// No violation found this round; the next event retries naturally.
		e.logger.Warn("process enumeration failed, skipping sweep", zap.Error(err))
		return
	}

	for _, p := range procs {
		if p.Identifier == "" || p.Terminated {
			continue
		}
		decision := policy.Evaluate(p.Identifier, s)
		if decision.Verdict == domain.VerdictDeny {
			e.deny(s, p, decision)
		}
	}
}

// deny applies the corrective action: toast, terminate, then refocus.
// Termination strictly precedes refocus so the OS cannot re-surface the
// denied process.
func (e *Engine) deny(s *domain.Session, p domain.ProcessInfo, decision domain.PolicyDecision) {
	name := p.DisplayName
	if name == "" {
		name = p.Identifier
	}

	if e.toast != nil {
		e.toast.Denied(name)
	}

	if err := e.processes.Terminate(p.Identifier); err != nil {
		// Process exited between decision and kill: treated as success.
		e.logger.Debug("termination reported error, treated as terminated",
			zap.String("identifier", p.Identifier),
			zap.Error(err))
	}

	e.logger.Info("denied process",
		zap.String("identifier", p.Identifier),
		zap.String("reason", string(decision.Reason)))

	e.refocus(s)
}

// refocus brings the last known-allowed process back to the foreground,
// falling back to the enforcement app itself. Always ends with some
// activation attempt.
func (e *Engine) refocus(s *domain.Session) {
	if target := s.LastKnownAllowedIdentifier; target != "" {
		if err := e.processes.Activate(target); err == nil {
			return
		}
		e.logger.Debug("refocus target gone, activating self",
			zap.String("identifier", target))
	}
	if err := e.processes.Activate(e.processes.SelfIdentifier()); err != nil {
		e.logger.Warn("self activation failed", zap.Error(err))
	}
}

func (e *Engine) bypassed() bool {
	return e.bypassEnabled && e.oracle != nil && e.oracle.ForegroundUndistractable()
}
