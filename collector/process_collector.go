package collector

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/process"

	"sysmeter/counters"
	"sysmeter/dto"
	"sysmeter/snapshot"
)

// Procs implements the process liveness and metadata queries the registry
// reconciles against. Handles are live process lookups; a handle whose
// process has exited fails every subsequent query, which the registry treats
// as termination.
type Procs struct{}

func NewProcs() Procs {
	return Procs{}
}

func (Procs) Pids() ([]int32, error) {
	return process.Pids()
}

func (Procs) Lookup(pid int32) (snapshot.ProcHandle, error) {
	return process.NewProcess(pid)
}

// StillActive reports whether the handle's process is still running. A failed
// probe counts as terminated.
func (Procs) StillActive(h snapshot.ProcHandle) bool {
	p, ok := h.(*process.Process)
	if !ok {
		return false
	}
	running, err := p.IsRunning()
	return err == nil && running
}

func (Procs) Metadata(h snapshot.ProcHandle) (*dto.ProcessInfo, error) {
	p, ok := h.(*process.Process)
	if !ok {
		return nil, fmt.Errorf("not a process handle: %T", h)
	}
	name, err := p.Name()
	if err != nil {
		return nil, err
	}
	info := &dto.ProcessInfo{Name: name}
	// Everything past the name is best-effort: fields some platforms refuse
	// to expose stay zero instead of failing the whole probe.
	info.Exe, _ = p.Exe()
	info.Cmdline, _ = p.Cmdline()
	info.Username, _ = p.Username()
	if st, err := p.Status(); err == nil && len(st) > 0 {
		info.Status = st[0]
	}
	info.CreateTime, _ = p.CreateTime()
	if mi, err := p.MemoryInfo(); err == nil && mi != nil {
		info.Memory = mi.RSS
		info.VirtualMemory = mi.VMS
	}
	return info, nil
}

// BusyTicks returns the cumulative kernel+user CPU time consumed by the
// handle's process, in 100-nanosecond ticks.
func (Procs) BusyTicks(h snapshot.ProcHandle) (uint64, error) {
	p, ok := h.(*process.Process)
	if !ok {
		return 0, fmt.Errorf("not a process handle: %T", h)
	}
	t, err := p.Times()
	if err != nil {
		return 0, err
	}
	return uint64((t.User + t.System) * counters.TicksPerSecond), nil
}
