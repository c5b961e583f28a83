package snapshot

import (
	"time"

	"sysmeter/counters"
	"sysmeter/dto"
)

// ProcHandle is the opaque identity token a ProcessAPI hands out for a live
// process. The registry holds it for liveness probes and per-process counter
// reads; it is released when the entry is evicted.
type ProcHandle interface{}

// ProcessAPI is the platform service the registry reconciles against. Lookup
// failing and StillActive returning false are both expected, frequent
// conditions, never errors: the OS owns process lifecycles, not us.
type ProcessAPI interface {
	// Pids enumerates the pids currently alive on the host.
	Pids() ([]int32, error)
	// Lookup resolves a pid into a handle, failing if no such process exists.
	Lookup(pid int32) (ProcHandle, error)
	// StillActive reports whether the handle's process is still running. Any
	// probe failure counts as terminated.
	StillActive(h ProcHandle) bool
	// Metadata returns the current metadata for the handle's process.
	Metadata(h ProcHandle) (*dto.ProcessInfo, error)
	// BusyTicks returns the cumulative kernel+user CPU time consumed by the
	// process, in 100-nanosecond ticks.
	BusyTicks(h ProcHandle) (uint64, error)
}

// ProcessEntry is one tracked process. Entries are created by a successful
// refresh of an untracked pid, updated in place on every later refresh, and
// removed the moment a liveness probe fails. A pid reused by the OS after
// removal becomes a brand-new entry.
type ProcessEntry struct {
	pid    int32
	handle ProcHandle
	info   dto.ProcessInfo
	usage  float64

	prevTicks uint64
	prevTime  time.Time
	hasPrev   bool
}

func (e *ProcessEntry) Pid() int32 { return e.pid }

func (e *ProcessEntry) Name() string { return e.info.Name }

func (e *ProcessEntry) Exe() string { return e.info.Exe }

func (e *ProcessEntry) Cmdline() string { return e.info.Cmdline }

func (e *ProcessEntry) Username() string { return e.info.Username }

func (e *ProcessEntry) Status() string { return e.info.Status }

// CreateTime is milliseconds since the epoch.
func (e *ProcessEntry) CreateTime() int64 { return e.info.CreateTime }

// Memory is the resident set size in kibibytes.
func (e *ProcessEntry) Memory() uint64 { return e.info.Memory >> 10 }

// VirtualMemory is the virtual size in kibibytes.
func (e *ProcessEntry) VirtualMemory() uint64 { return e.info.VirtualMemory >> 10 }

// CPUUsage is the fraction of one core's wall-clock time this process spent
// on CPU between its two most recent refreshes, normalized by the logical
// processor count, in [0, 100].
func (e *ProcessEntry) CPUUsage() float64 { return e.usage }

// computeCPUUsage folds one cumulative busy-tick sample taken at now into the
// usage percentage. Process CPU time can exceed one core's worth of wall time
// on multi-core hosts, hence the extra division by nbProcessors. The first
// sample only establishes the baseline and yields 0.
func (e *ProcessEntry) computeCPUUsage(ticks uint64, now time.Time, nbProcessors int) {
	if nbProcessors < 1 {
		nbProcessors = 1
	}
	if !e.hasPrev {
		e.prevTicks = ticks
		e.prevTime = now
		e.hasPrev = true
		e.usage = 0
		return
	}
	elapsed := now.Sub(e.prevTime).Seconds()
	if elapsed <= 0 {
		return
	}
	var busy float64
	if ticks > e.prevTicks {
		busy = float64(ticks-e.prevTicks) / counters.TicksPerSecond
	}
	e.usage = clampPercent(busy / elapsed / float64(nbProcessors) * 100)
	e.prevTicks = ticks
	e.prevTime = now
}
