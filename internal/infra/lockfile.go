package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/focusgate/focusgate/internal/domain"
)

const lockFileName = ".focusgate.pid"

// PIDLock implements domain.InstanceLock with a PID file. A second
// enforcement process cannot start while the owning PID is alive, backing
// the at-most-one-active-session invariant machine-wide. Locks left by a
// dead process are broken on acquire.
type PIDLock struct {
	path      string
	isRunning func(pid int) bool
	owned     bool
}

// NewPIDLock creates an instance lock in the given data directory.
func NewPIDLock(dataDir string, isRunning func(pid int) bool) *PIDLock {
	return &PIDLock{
		path:      filepath.Join(dataDir, lockFileName),
		isRunning: isRunning,
	}
}

// Acquire takes the lock or reports the PID that holds it.
func (l *PIDLock) Acquire() error {
	if pid, ok := l.HolderPID(); ok {
		if pid != os.Getpid() {
			return fmt.Errorf("another focusgate instance is running (pid %d)", pid)
		}
		l.owned = true
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}
	if err := os.WriteFile(l.path, []byte(strconv.Itoa(os.Getpid())), 0600); err != nil {
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	l.owned = true
	return nil
}

// Release removes the lock if this process owns it.
func (l *PIDLock) Release() error {
	if !l.owned {
		return nil
	}
	l.owned = false
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// HolderPID returns the live PID holding the lock, if any. A lock file
// pointing at a dead PID counts as unheld.
func (l *PIDLock) HolderPID() (int, bool) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	if !l.isRunning(pid) {
		return 0, false
	}
	return pid, true
}

// Ensure PIDLock implements domain.InstanceLock.
var _ domain.InstanceLock = (*PIDLock)(nil)
