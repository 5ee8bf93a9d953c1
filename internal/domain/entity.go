// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import "time"

// SessionMode selects how the in-scope app set is interpreted.
type SessionMode string

const (
	// ModeAllowList: only the selected apps may run.
	ModeAllowList SessionMode = "allow"
	// ModeBlockList: the selected apps may not run, everything else may.
	ModeBlockList SessionMode = "block"
)

// SessionStatus is the lifecycle state of the session aggregate.
type SessionStatus string

const (
	StatusInactive SessionStatus = "inactive"
	StatusActive   SessionStatus = "active"
	// StatusCompletedPendingAck holds the finished-session summary until the
	// presentation layer acknowledges it.
	StatusCompletedPendingAck SessionStatus = "completed_pending_ack"
)

// AppSelection is a user-chosen app in scope for a session.
type AppSelection struct {
	Identifier  string
	DisplayName string
}

// Session is the central aggregate. It is exclusively owned and mutated on
// the runner's single goroutine; collaborators only ever receive snapshots.
type Session struct {
	Mode SessionMode

	// Exactly one of these is populated, per Mode. In allow mode the set
	// always includes SelfIdentifier and all protected identifiers; in block
	// mode protected identifiers are never present.
	AllowedIdentifiers map[string]bool
	BlockedIdentifiers map[string]bool

	// OS-critical identifiers that are never terminated regardless of mode.
	ProtectedIdentifiers map[string]bool

	// Identifier of the enforcement app itself, always allowed.
	SelfIdentifier string

	// Display names by identifier for the apps in scope, kept for the
	// history record built at natural completion.
	DisplayNames map[string]string

	TotalSeconds     int
	RemainingSeconds int
	StartedAt        time.Time

	// Most recent identifier confirmed compliant; refocus target after a
	// denial. Empty means fall back to self-focus.
	LastKnownAllowedIdentifier string

	Status SessionStatus

	// Completed-session summary carried while Status is CompletedPendingAck.
	CompletedMinutes int
}

// SessionRecord is an immutable historical fact, created only on natural
// completion and never mutated.
type SessionRecord struct {
	ID              string
	StartedAt       time.Time
	DurationMinutes int // rounded, minimum 1
	Mode            SessionMode
	AppNames        []string
}

// Verdict is the outcome of a single policy evaluation.
type Verdict string

const (
	VerdictAllow Verdict = "allow"
	VerdictDeny  Verdict = "deny"
)

// DecisionReason explains a verdict.
type DecisionReason string

const (
	ReasonSelf             DecisionReason = "self"
	ReasonProtected        DecisionReason = "protected"
	ReasonInAllowSet       DecisionReason = "in-allow-set"
	ReasonNotInAllowSet    DecisionReason = "not-in-allow-set"
	ReasonInBlockSet       DecisionReason = "in-block-set"
	ReasonNotInBlockSet    DecisionReason = "not-in-block-set"
	ReasonFullscreenBypass DecisionReason = "fullscreen-bypass"
)

// PolicyDecision is a transient per-event value, never persisted.
type PolicyDecision struct {
	Identifier string
	Verdict    Verdict
	Reason     DecisionReason
}

// ProcessInfo identifies a running (or just-terminated) process.
type ProcessInfo struct {
	Identifier  string
	DisplayName string
	Terminated  bool
}

// ProcessEventKind distinguishes the OS lifecycle/focus notifications.
type ProcessEventKind string

const (
	EventWillLaunch  ProcessEventKind = "will_launch"
	EventDidLaunch   ProcessEventKind = "did_launch"
	EventDidActivate ProcessEventKind = "did_activate"
	EventDidUnhide   ProcessEventKind = "did_unhide"
	// EventEnvironmentChanged is a coarse signal (e.g. virtual-desktop
	// switch) carrying no process payload; it triggers a full sweep.
	EventEnvironmentChanged ProcessEventKind = "environment_changed"
)

// ProcessEvent is a single push notification from the OS event source.
type ProcessEvent struct {
	Kind    ProcessEventKind
	Process ProcessInfo
}

// StatusSnapshot is the session state published to status listeners on
// every tick and on session start/end.
type StatusSnapshot struct {
	Active           bool
	RemainingSeconds int
}
