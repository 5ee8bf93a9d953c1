package usecase

import "time"

// sessionTimer wraps the single repeating countdown ticker. It is created on
// session start and stopped on every session end regardless of cause, so a
// stray tick can never fire against a reset session.
type sessionTimer struct {
	ticker *time.Ticker
}

func startTimer(interval time.Duration) *sessionTimer {
	return &sessionTimer{ticker: time.NewTicker(interval)}
}

// C returns the tick channel, or nil when no timer is running. A nil channel
// blocks forever in a select, which is exactly the idle behavior we want.
func (t *sessionTimer) C() <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.ticker.C
}

func (t *sessionTimer) Stop() {
	if t != nil {
		t.ticker.Stop()
	}
}
