package usecase

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/focusgate/focusgate/internal/domain"
)

// ErrEmptyAllowList rejects an allow-list session with nothing allowed.
var ErrEmptyAllowList = errors.New("allow-list session requires at least one app in scope")

// ControllerConfig holds lifecycle controller configuration.
type ControllerConfig struct {
	TickInterval time.Duration // countdown granularity (default 1s)
}

// DefaultControllerConfig returns the production configuration.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{TickInterval: time.Second}
}

// Controller orchestrates session start/end/extend and owns the Session
// aggregate. All methods must be called from the runner's goroutine; the
// controller itself takes no locks.
type Controller struct {
	config    ControllerConfig
	engine    *Engine
	events    domain.EventSource
	history   domain.HistoryStore
	protected map[string]bool
	listeners []domain.StatusListener
	logger    *zap.Logger

	session *domain.Session
	timer   *sessionTimer
	eventCh <-chan domain.ProcessEvent

	now func() time.Time
}

// NewController creates a session lifecycle controller. protected is the
// configured set of OS-critical identifiers that are never terminated.
func NewController(
	config ControllerConfig,
	engine *Engine,
	events domain.EventSource,
	history domain.HistoryStore,
	protected map[string]bool,
	logger *zap.Logger,
) *Controller {
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	return &Controller{
		config:    config,
		engine:    engine,
		events:    events,
		history:   history,
		protected: protected,
		logger:    logger,
		session:   &domain.Session{Status: domain.StatusInactive},
		now:       time.Now,
	}
}

// AddStatusListener registers a status observer. Listeners receive
// snapshots only; they can never mutate the session.
func (c *Controller) AddStatusListener(l domain.StatusListener) {
	c.listeners = append(c.listeners, l)
}

// Session exposes the aggregate for same-goroutine collaborators and tests.
func (c *Controller) Session() *domain.Session {
	return c.session
}

// StartSession begins a new focus session. An already-active session is
// implicitly ended first, without a history record. Returns
// ErrEmptyAllowList, with no state change, for an allow-list session with an
// empty selection.
func (c *Controller) StartSession(apps []domain.AppSelection, mode domain.SessionMode, durationMinutes int) error {
	if mode == domain.ModeAllowList && len(apps) == 0 {
		return ErrEmptyAllowList
	}

	if c.session.Status == domain.StatusActive {
		c.logger.Info("starting new session, ending active one without record")
		c.EndSession(false)
	}

	self := c.engine.processes.SelfIdentifier()
	s := &domain.Session{
		Mode:                 mode,
		AllowedIdentifiers:   make(map[string]bool),
		BlockedIdentifiers:   make(map[string]bool),
		ProtectedIdentifiers: make(map[string]bool, len(c.protected)),
		SelfIdentifier:       self,
		DisplayNames:         make(map[string]string, len(apps)),
		Status:               domain.StatusActive,
		StartedAt:            c.now(),
	}
	for id := range c.protected {
		s.ProtectedIdentifiers[id] = true
	}

	for _, app := range apps {
		if app.Identifier == "" {
			continue
		}
		s.DisplayNames[app.Identifier] = app.DisplayName
		switch mode {
		case domain.ModeAllowList:
			s.AllowedIdentifiers[app.Identifier] = true
		case domain.ModeBlockList:
			// Protected processes can never be placed in the denied set,
			// even if explicitly selected.
			if !s.ProtectedIdentifiers[app.Identifier] && app.Identifier != self {
				s.BlockedIdentifiers[app.Identifier] = true
			}
		}
	}
	if mode == domain.ModeAllowList {
		s.AllowedIdentifiers[self] = true
		for id := range s.ProtectedIdentifiers {
			s.AllowedIdentifiers[id] = true
		}
	}

	seconds := durationMinutes * 60
	if seconds < 1 {
		seconds = 1
	}
	s.TotalSeconds = seconds
	s.RemainingSeconds = seconds

	c.session = s

	ch, err := c.events.Subscribe()
	if err != nil {
		// Enforcement degrades to sweep-only; the session still runs.
		c.logger.Warn("event subscription failed", zap.Error(err))
	} else {
		c.eventCh = ch
	}

	c.timer = startTimer(c.config.TickInterval)

	c.logger.Info("session started",
		zap.String("mode", string(mode)),
		zap.Int("seconds", seconds),
		zap.Int("apps", len(apps)))

	// A running, now-disallowed app must die the instant the session
	// starts, not wait for its next focus event.
	c.engine.Sweep(s)

	c.publishStatus()
	return nil
}

// EndSession tears down the active session. With completedNaturally a
// SessionRecord is appended and the completion summary held until
// acknowledged; a manual end records nothing. No-op if no session is active.
func (c *Controller) EndSession(completedNaturally bool) {
	s := c.session
	if s.Status != domain.StatusActive {
		return
	}

	// Unsubscribe and invalidate the timer in the same step as clearing
	// state; a concurrently-arriving event is rejected by the Active guard.
	c.events.Unsubscribe()
	c.eventCh = nil
	c.timer.Stop()
	c.timer = nil

	if completedNaturally {
		elapsed := s.TotalSeconds - s.RemainingSeconds
		minutes := int(math.Round(float64(elapsed) / 60.0))
		if minutes < 1 {
			minutes = 1
		}

		record := domain.SessionRecord{
			ID:              uuid.NewString(),
			StartedAt:       s.StartedAt,
			DurationMinutes: minutes,
			Mode:            s.Mode,
			AppNames:        scopeNames(s),
		}
		if c.history != nil {
			if err := c.history.Append(record); err != nil {
				c.logger.Warn("failed to persist session record", zap.Error(err))
			}
		}

		c.clearScope(s)
		s.Status = domain.StatusCompletedPendingAck
		s.CompletedMinutes = minutes

		c.logger.Info("session completed",
			zap.Int("duration_minutes", minutes),
			zap.String("mode", string(record.Mode)))

		for _, l := range c.listeners {
			l.SessionCompleted(minutes)
		}
	} else {
		c.clearScope(s)
		s.Status = domain.StatusInactive
		c.logger.Info("session ended without record")
	}

	c.publishStatus()
}

// AddTime extends the active session. No-op unless active and minutes > 0.
func (c *Controller) AddTime(minutes int) {
	if c.session.Status != domain.StatusActive || minutes <= 0 {
		return
	}
	c.session.TotalSeconds += minutes * 60
	c.session.RemainingSeconds += minutes * 60
	c.logger.Info("session extended", zap.Int("minutes", minutes))
	c.publishStatus()
}

// AcknowledgeCompletion clears the held completion summary. Idempotent when
// already inactive.
func (c *Controller) AcknowledgeCompletion() {
	if c.session.Status != domain.StatusCompletedPendingAck {
		return
	}
	c.session.Status = domain.StatusInactive
	c.session.CompletedMinutes = 0
}

// Tick advances the countdown by one interval. Reaching zero is the only
// automatic trigger for natural completion.
func (c *Controller) Tick() {
	s := c.session
	if s.Status != domain.StatusActive {
		return
	}
	if s.RemainingSeconds > 0 {
		s.RemainingSeconds--
		c.publishStatus()
	}
	if s.RemainingSeconds == 0 {
		c.EndSession(true)
	}
}

// HandleEvent routes an OS event into the enforcement engine. The Active
// guard comes first so an event racing a teardown is never evaluated
// against cleared state.
func (c *Controller) HandleEvent(ev domain.ProcessEvent) {
	if c.session.Status != domain.StatusActive {
		return
	}
	c.engine.HandleEvent(c.session, ev)
}

// EventC returns the subscribed event channel, nil while inactive.
func (c *Controller) EventC() <-chan domain.ProcessEvent {
	return c.eventCh
}

// DetachEvents drops a closed event stream so the run loop stops selecting
// on it.
func (c *Controller) DetachEvents() {
	c.eventCh = nil
}

// TickC returns the countdown tick channel, nil while inactive.
func (c *Controller) TickC() <-chan time.Time {
	return c.timer.C()
}

func (c *Controller) publishStatus() {
	snap := domain.StatusSnapshot{
		Active:           c.session.Status == domain.StatusActive,
		RemainingSeconds: c.session.RemainingSeconds,
	}
	for _, l := range c.listeners {
		l.SessionStatusChanged(snap)
	}
}

// clearScope wipes session-scoped enforcement state.
func (c *Controller) clearScope(s *domain.Session) {
	s.AllowedIdentifiers = nil
	s.BlockedIdentifiers = nil
	s.DisplayNames = nil
	s.LastKnownAllowedIdentifier = ""
	s.RemainingSeconds = 0
}

func scopeNames(s *domain.Session) []string {
	names := make([]string, 0, len(s.DisplayNames))
	for id, name := range s.DisplayNames {
		if name == "" {
			name = id
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
