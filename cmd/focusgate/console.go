package main

import (
	"fmt"

	"github.com/focusgate/focusgate/internal/domain"
)

// consoleStatus renders the countdown to the terminal and signals natural
// completion to the start command. It only ever receives snapshots from the
// controller; runner goroutine calls in, main goroutine reads completed.
type consoleStatus struct {
	completed chan int
}

func newConsoleStatus() *consoleStatus {
	return &consoleStatus{completed: make(chan int, 1)}
}

func (c *consoleStatus) SessionStatusChanged(status domain.StatusSnapshot) {
	if !status.Active {
		return
	}
	fmt.Printf("\r%02d:%02d remaining ",
		status.RemainingSeconds/60, status.RemainingSeconds%60)
}

func (c *consoleStatus) SessionCompleted(durationMinutes int) {
	select {
	case c.completed <- durationMinutes:
	default:
	}
}

// Ensure consoleStatus implements domain.StatusListener.
var _ domain.StatusListener = (*consoleStatus)(nil)
