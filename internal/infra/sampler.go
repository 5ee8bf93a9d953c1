package infra

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/focusgate/focusgate/internal/domain"
)

const defaultPollInterval = 500 * time.Millisecond

// samplerBuffer bounds the delivery channel; delivery never blocks the
// sampling goroutine, overflow events are dropped and the next full sweep
// reconciles.
const samplerBuffer = 64

// Sampler implements domain.EventSource by polling the process table and
// the foreground window, synthesizing launch and activate events from
// snapshot diffs. It stands in for the OS push notifications the original
// platform frameworks deliver natively.
type Sampler struct {
	interval   time.Duration
	enumerate  func() ([]domain.ProcessInfo, error)
	foreground func() (identifier, displayName string, err error)
	desktop    func() (string, error)
	logger     *zap.Logger

	ch   chan domain.ProcessEvent
	stop chan struct{}
	done chan struct{}
}

// NewSampler creates an event sampler backed by the real process table and
// platform foreground query.
func NewSampler(pc domain.ProcessController, interval time.Duration, logger *zap.Logger) *Sampler {
	return newSamplerWithQueries(pc.RunningProcesses, foregroundProcess, currentDesktop, interval, logger)
}

func newSamplerWithQueries(
	enumerate func() ([]domain.ProcessInfo, error),
	foreground func() (string, string, error),
	desktop func() (string, error),
	interval time.Duration,
	logger *zap.Logger,
) *Sampler {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Sampler{
		interval:   interval,
		enumerate:  enumerate,
		foreground: foreground,
		desktop:    desktop,
		logger:     logger,
	}
}

// Subscribe starts the sampling goroutine. The first snapshot is a baseline
// and produces no events; the session-start sweep covers anything already
// running.
func (s *Sampler) Subscribe() (<-chan domain.ProcessEvent, error) {
	if s.ch != nil {
		return nil, fmt.Errorf("sampler already subscribed")
	}

	s.ch = make(chan domain.ProcessEvent, samplerBuffer)
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.run()
	return s.ch, nil
}

// Unsubscribe stops sampling and closes the delivery channel. Events in
// flight are discarded. Safe to call when not subscribed.
func (s *Sampler) Unsubscribe() {
	if s.ch == nil {
		return
	}
	close(s.stop)
	<-s.done
	close(s.ch)
	s.ch = nil
	s.stop = nil
	s.done = nil
}

func (s *Sampler) run() {
	defer close(s.done)

	known := s.snapshot()
	lastForeground := ""
	if id, _, err := s.foreground(); err == nil {
		lastForeground = id
	}
	lastDesktop, haveDesktop := "", false
	if d, err := s.desktop(); err == nil {
		lastDesktop, haveDesktop = d, true
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}

		current := s.snapshot()
		if current != nil {
			if known == nil {
				// Baseline was never established; take one now, no events.
				known = current
			} else {
				for id, info := range current {
					if _, seen := known[id]; !seen {
						s.emit(domain.ProcessEvent{Kind: domain.EventDidLaunch, Process: info})
					}
				}
				known = current
			}
		}

		if id, name, err := s.foreground(); err == nil && id != "" && id != lastForeground {
			lastForeground = id
			s.emit(domain.ProcessEvent{
				Kind:    domain.EventDidActivate,
				Process: domain.ProcessInfo{Identifier: id, DisplayName: name},
			})
		}

		// A virtual-desktop switch cannot be attributed to a single process
		// event; signal a coarse environment change instead.
		if d, err := s.desktop(); err == nil {
			if haveDesktop && d != lastDesktop {
				s.emit(domain.ProcessEvent{Kind: domain.EventEnvironmentChanged})
			}
			lastDesktop, haveDesktop = d, true
		}
	}
}

// snapshot returns the current process table keyed by identifier, or nil on
// enumeration failure (the previous baseline is kept).
func (s *Sampler) snapshot() map[string]domain.ProcessInfo {
	procs, err := s.enumerate()
	if err != nil {
		s.logger.Debug("process snapshot failed", zap.Error(err))
		return nil
	}
	m := make(map[string]domain.ProcessInfo, len(procs))
	for _, p := range procs {
		if p.Identifier == "" || p.Terminated {
			continue
		}
		m[p.Identifier] = p
	}
	return m
}

func (s *Sampler) emit(ev domain.ProcessEvent) {
	select {
	case s.ch <- ev:
	default:
		s.logger.Debug("event buffer full, dropping",
			zap.String("kind", string(ev.Kind)),
			zap.String("identifier", ev.Process.Identifier))
	}
}

// Ensure Sampler implements domain.EventSource.
var _ domain.EventSource = (*Sampler)(nil)
