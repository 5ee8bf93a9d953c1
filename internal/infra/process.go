// Package infra implements infrastructure concerns (process control, OS
// event sampling, persistence, platform notifications).
package infra

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/focusgate/focusgate/internal/domain"
)

// ProcessControllerImpl implements domain.ProcessController using gopsutil.
// Process identity is the executable name; identities are opaque strings to
// the core, so any stable per-app string works.
type ProcessControllerImpl struct {
	self string
}

// NewProcessController creates a process controller.
func NewProcessController() *ProcessControllerImpl {
	self := ""
	if exe, err := os.Executable(); err == nil {
		self = filepath.Base(exe)
	}
	return &ProcessControllerImpl{self: self}
}

// RunningProcesses returns the current process table.
func (pc *ProcessControllerImpl) RunningProcesses() ([]domain.ProcessInfo, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	infos := make([]domain.ProcessInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || name == "" {
			continue // Process may have exited
		}
		infos = append(infos, domain.ProcessInfo{
			Identifier:  name,
			DisplayName: name,
		})
	}
	return infos, nil
}

// Terminate kills every process matching the identifier (SIGKILL).
// Idempotent: no match, or a process exiting mid-kill, is not an error.
func (pc *ProcessControllerImpl) Terminate(identifier string) error {
	procs, err := process.Processes()
	if err != nil {
		return err
	}

	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		if strings.EqualFold(name, identifier) {
			// Already-gone processes fail the kill; that is success here.
			_ = p.Kill()
		}
	}
	return nil
}

// Activate brings the identified app to the foreground via the platform
// window system.
func (pc *ProcessControllerImpl) Activate(identifier string) error {
	return activateProcess(identifier)
}

// SelfIdentifier returns this binary's process identity.
func (pc *ProcessControllerImpl) SelfIdentifier() string {
	return pc.self
}

// IsPIDRunning checks liveness of a PID. Used by the instance lock to
// detect stale locks.
func (pc *ProcessControllerImpl) IsPIDRunning(pid int) bool {
	running, err := process.PidExists(int32(pid))
	return err == nil && running
}

// Ensure ProcessControllerImpl implements domain.ProcessController.
var _ domain.ProcessController = (*ProcessControllerImpl)(nil)
