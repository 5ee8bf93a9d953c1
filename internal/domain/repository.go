package domain

// ProcessController handles OS process operations.
// Implementation: uses gopsutil for cross-platform support.
type ProcessController interface {
	// RunningProcesses returns all currently running processes.
	// Used by the full-sweep reconciliation pass.
	RunningProcesses() ([]ProcessInfo, error)

	// Terminate forcefully kills all processes with the identifier.
	// Idempotent: a process that is already gone is treated as terminated.
	Terminate(identifier string) error

	// Activate brings the identified process to the foreground.
	// Returns an error if the process is no longer running.
	Activate(identifier string) error

	// SelfIdentifier returns the enforcement app's own process identity.
	SelfIdentifier() string
}

// EventSource delivers OS lifecycle/focus events while subscribed.
// Push-based: the core registers once per session rather than polling.
type EventSource interface {
	// Subscribe starts event delivery and returns the delivery channel.
	Subscribe() (<-chan ProcessEvent, error)

	// Unsubscribe stops delivery. An event arriving after Unsubscribe is
	// never delivered; the channel is closed.
	Unsubscribe()
}

// FullscreenOracle reports whether the current foreground context is
// already full-screen / undistractable. Implementations use a
// window-geometry heuristic (frontmost window bounds vs display bounds),
// so a maximized-but-not-native-fullscreen window may read as false.
type FullscreenOracle interface {
	ForegroundUndistractable() bool
}

// ToastSink receives user-visible denial signals. Fire-and-forget:
// failures here never affect enforcement.
type ToastSink interface {
	Denied(displayName string)
}

// HistoryStore persists completed-session records.
type HistoryStore interface {
	Append(record SessionRecord) error
	Recent(limit int) ([]SessionRecord, error)
	Close() error
}

// StatusListener observes session state. Listeners receive snapshots,
// never the Session itself.
type StatusListener interface {
	// SessionStatusChanged fires on every tick and on session start/end.
	SessionStatusChanged(status StatusSnapshot)

	// SessionCompleted fires once per natural completion.
	SessionCompleted(durationMinutes int)
}

// InstanceLock guards against a second enforcement process, backing the
// at-most-one-active-session invariant machine-wide.
type InstanceLock interface {
	// Acquire takes the lock, breaking a stale lock left by a dead process.
	Acquire() error
	Release() error
}

// KeyProvider abstracts the source of the history database encryption key.
type KeyProvider interface {
	GetKey() ([]byte, error)
	StoreKey(key []byte) error
	KeyExists() bool
}
