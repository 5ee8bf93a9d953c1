package usecase

import (
	"sync"

	"github.com/focusgate/focusgate/internal/domain"
)

// mockProcessController implements domain.ProcessController for testing.
// All mutators are locked so runner tests can read from other goroutines.
type mockProcessController struct {
	mu           sync.Mutex
	running      []domain.ProcessInfo
	runningErr   error
	runningCalls int
	self         string
	terminated   []string
	terminateErr error
	activated    []string
	activateErr  map[string]error
	ops          []string // interleaved op log for ordering assertions
}

func (m *mockProcessController) RunningProcesses() ([]domain.ProcessInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runningCalls++
	if m.runningErr != nil {
		return nil, m.runningErr
	}
	return append([]domain.ProcessInfo(nil), m.running...), nil
}

func (m *mockProcessController) Terminate(identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terminated = append(m.terminated, identifier)
	m.ops = append(m.ops, "terminate:"+identifier)
	return m.terminateErr
}

func (m *mockProcessController) Activate(identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.activateErr[identifier]; ok && err != nil {
		m.ops = append(m.ops, "activate-failed:"+identifier)
		return err
	}
	m.activated = append(m.activated, identifier)
	m.ops = append(m.ops, "activate:"+identifier)
	return nil
}

func (m *mockProcessController) SelfIdentifier() string {
	if m.self == "" {
		return "focusgate"
	}
	return m.self
}

func (m *mockProcessController) terminatedList() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.terminated...)
}

func (m *mockProcessController) opsList() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ops...)
}

// mockOracle implements domain.FullscreenOracle for testing.
type mockOracle struct {
	mu     sync.Mutex
	result bool
	calls  int
}

func (m *mockOracle) ForegroundUndistractable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.result
}

func (m *mockOracle) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockToast implements domain.ToastSink for testing. Shares the process
// controller's op log when wired.
type mockToast struct {
	mu     sync.Mutex
	denied []string
	pc     *mockProcessController
}

func (m *mockToast) Denied(displayName string) {
	m.mu.Lock()
	m.denied = append(m.denied, displayName)
	m.mu.Unlock()
	if m.pc != nil {
		m.pc.mu.Lock()
		m.pc.ops = append(m.pc.ops, "toast:"+displayName)
		m.pc.mu.Unlock()
	}
}

func (m *mockToast) deniedList() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.denied...)
}

// mockEventSource implements domain.EventSource for testing.
type mockEventSource struct {
	mu           sync.Mutex
	ch           chan domain.ProcessEvent
	subErr       error
	subscribed   int
	unsubscribed int
}

func (m *mockEventSource) Subscribe() (<-chan domain.ProcessEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribed++
	if m.subErr != nil {
		return nil, m.subErr
	}
	m.ch = make(chan domain.ProcessEvent, 16)
	return m.ch, nil
}

func (m *mockEventSource) Unsubscribe() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unsubscribed++
}

func (m *mockEventSource) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribed, m.unsubscribed
}

// mockHistory implements domain.HistoryStore for testing.
type mockHistory struct {
	mu        sync.Mutex
	records   []domain.SessionRecord
	appendErr error
}

func (m *mockHistory) Append(record domain.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockHistory) Recent(limit int) ([]domain.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.SessionRecord(nil), m.records...), nil
}

func (m *mockHistory) Close() error { return nil }

func (m *mockHistory) recordList() []domain.SessionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.SessionRecord(nil), m.records...)
}

// mockListener implements domain.StatusListener for testing.
type mockListener struct {
	mu          sync.Mutex
	statuses    []domain.StatusSnapshot
	completions []int
}

func (m *mockListener) SessionStatusChanged(status domain.StatusSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
}

func (m *mockListener) SessionCompleted(durationMinutes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completions = append(m.completions, durationMinutes)
}

func (m *mockListener) statusList() []domain.StatusSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.StatusSnapshot(nil), m.statuses...)
}

func (m *mockListener) completionList() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.completions...)
}
