// Package snapshot maintains an in-memory view of host metrics, refreshed on
// demand by the caller. Raw platform counters are turned into derived values:
// per-core and aggregate CPU percentages, per-process usage, memory totals in
// kibibytes, uptime and boot time.
package snapshot

import (
	"fmt"
	"log"
	"time"

	"sysmeter/catalog"
	"sysmeter/counters"
	"sysmeter/dto"
)

// Platform bundles the one-shot host queries the snapshot consumes. All of
// them return point-in-time values with no temporal state.
type Platform interface {
	Topology() (*dto.CPUTopology, error)
	Memory() (*dto.MemoryInfo, error)
	Swap() (*dto.SwapInfo, error)
	Uptime() (uint64, error)
	LoadAvg() (*dto.LoadAvg, error)
	Disks() ([]dto.DiskInfo, error)
	Networks() ([]dto.NetInfo, error)
	Users() ([]dto.UserInfo, error)
	Sensors() ([]dto.SensorInfo, error)
}

// Specifics selects which metric categories the constructor refreshes once
// the session is set up. The zero value refreshes nothing.
type Specifics struct {
	CPU         bool
	Memory      bool
	Processes   bool
	Disks       bool
	Networks    bool
	Users       bool
	Components  bool
	LoadAverage bool
}

// EverythingSpecifics selects every category.
func EverythingSpecifics() Specifics {
	return Specifics{
		CPU:         true,
		Memory:      true,
		Processes:   true,
		Disks:       true,
		Networks:    true,
		Users:       true,
		Components:  true,
		LoadAverage: true,
	}
}

// Network is one interface with per-refresh traffic deltas derived from the
// platform's cumulative counters.
type Network struct {
	info        dto.NetInfo
	received    uint64
	transmitted uint64
}

func (n *Network) Name() string { return n.info.Name }

// Received is the bytes received between the two most recent network
// refreshes; TotalReceived is the cumulative interface counter.
func (n *Network) Received() uint64 { return n.received }

func (n *Network) Transmitted() uint64 { return n.transmitted }

func (n *Network) TotalReceived() uint64 { return n.info.BytesRecv }

func (n *Network) TotalTransmitted() uint64 { return n.info.BytesSent }

// System is the long-lived mutable root owning all tracked metrics. It is
// refreshed category by category through the Refresh* methods, each of which
// pulls fresh data synchronously on the calling goroutine and never
// implicitly triggers another category. System is not safe for concurrent
// mutation: callers sharing one across goroutines must serialize refreshes.
type System struct {
	platform Platform
	query    *counters.Query

	global     *Processor
	processors []*Processor
	registry   *registry

	memTotal  uint64
	memFree   uint64
	swapTotal uint64
	swapFree  uint64

	bootTime uint64

	disks      []dto.DiskInfo
	networks   []*Network
	users      []dto.UserInfo
	components []dto.SensorInfo
	load       dto.LoadAvg
}

// New builds a snapshot session: processor topology discovery, best-effort
// counter subscriptions through the catalog, boot-time capture, then one
// initial refresh per the requested specifics. Subscription failures degrade
// to "no CPU percentage available" instead of aborting construction.
func New(platform Platform, procs ProcessAPI, src counters.Source, cat *catalog.Catalog, specifics Specifics) *System {
	s := &System{platform: platform}

	var topo dto.CPUTopology
	if t, err := platform.Topology(); err == nil {
		topo = *t
	} else {
		log.Printf("snapshot: cannot discover CPU topology: %v", err)
		topo.Cores = 1
	}
	s.global = newProcessor("Total CPU", topo.VendorID, topo.Brand)
	for i := 0; i < topo.Cores; i++ {
		s.processors = append(s.processors, newProcessor(fmt.Sprintf("CPU %d", i), topo.VendorID, topo.Brand))
	}
	s.registry = newRegistry(procs, len(s.processors))

	s.query = counters.Open(src)
	if s.query != nil {
		s.subscribeProcessorCounters(cat)
	}

	if up, err := platform.Uptime(); err == nil {
		// Computed once; Uptime() stays live but the boot instant does not move.
		s.bootTime = uint64(time.Now().Unix()) - up
	} else {
		log.Printf("snapshot: cannot read uptime: %v", err)
	}

	s.refreshSpecifics(specifics)
	return s
}

// subscribeProcessorCounters registers the aggregate and per-core busy-time
// counters. A translation miss skips the subscription and leaves the
// processor without a counter key, so its usage stays at 0.
func (s *System) subscribeProcessorCounters(cat *catalog.Catalog) {
	procTrans, ok := cat.Translate("Processor")
	if !ok {
		log.Printf("snapshot: no translation for \"Processor\", CPU usage unavailable")
		return
	}
	timeTrans, ok := cat.Translate("% Processor Time")
	if !ok {
		log.Printf("snapshot: no translation for \"%% Processor Time\", CPU usage unavailable")
		return
	}
	if s.query.AddCounter(fmt.Sprintf(`\%s(_Total)\%s`, procTrans, timeTrans), "tot_0") {
		s.global.counterKey = "tot_0"
	}
	for i, p := range s.processors {
		key := fmt.Sprintf("%d_0", i)
		if s.query.AddCounter(fmt.Sprintf(`\%s(%d)\%s`, procTrans, i, timeTrans), key) {
			p.counterKey = key
		}
	}
}

func (s *System) refreshSpecifics(sp Specifics) {
	if sp.CPU {
		s.RefreshCPU()
	}
	if sp.Memory {
		s.RefreshMemory()
	}
	if sp.Processes {
		s.RefreshProcesses()
	}
	if sp.Disks {
		s.RefreshDisksList()
	}
	if sp.Networks {
		s.RefreshNetworks()
	}
	if sp.Users {
		s.RefreshUsersList()
	}
	if sp.Components {
		s.RefreshComponentsList()
	}
	if sp.LoadAverage {
		s.RefreshLoadAverage()
	}
}

// RefreshAll refreshes every metric category.
func (s *System) RefreshAll() {
	s.refreshSpecifics(EverythingSpecifics())
}

// RefreshCPU takes one batch counter sample and recomputes the aggregate and
// per-core usage percentages. A no-op while the counter subsystem is
// unavailable.
func (s *System) RefreshCPU() {
	if s.query == nil {
		return
	}
	s.query.Refresh()
	now := time.Now()
	if s.global.counterKey != "" {
		s.global.setCPUUsage(s.query.Get(s.global.counterKey), now)
	}
	for _, p := range s.processors {
		if p.counterKey != "" {
			p.setCPUUsage(s.query.Get(p.counterKey), now)
		}
	}
}

// RefreshMemory re-reads physical memory and swap totals.
func (s *System) RefreshMemory() {
	if m, err := s.platform.Memory(); err == nil {
		s.memTotal = m.Total
		s.memFree = m.Free
	} else {
		log.Printf("snapshot: cannot read memory: %v", err)
	}
	if sw, err := s.platform.Swap(); err == nil {
		s.swapTotal = sw.Total
		s.swapFree = sw.Free
	} else {
		log.Printf("snapshot: cannot read swap: %v", err)
	}
}

// RefreshProcess refreshes a single pid, tracking it if needed. It returns
// false when the process could not be found or just died; the registry holds
// no entry for the pid afterwards.
func (s *System) RefreshProcess(pid int32) bool {
	return s.registry.refreshOne(pid, true)
}

// RefreshProcesses reconciles the whole process table against the live pid
// set: every tracked process is re-evaluated exactly once, new pids are
// added, dead ones evicted.
func (s *System) RefreshProcesses() {
	s.registry.refreshAll()
}

// RefreshDisksList re-enumerates mounted filesystems and their usage.
func (s *System) RefreshDisksList() {
	disks, err := s.platform.Disks()
	if err != nil {
		log.Printf("snapshot: cannot list disks: %v", err)
		return
	}
	s.disks = disks
}

// RefreshNetworks re-reads interface counters and derives per-refresh traffic
// deltas against the previous reading of the same interface.
func (s *System) RefreshNetworks() {
	infos, err := s.platform.Networks()
	if err != nil {
		log.Printf("snapshot: cannot list networks: %v", err)
		return
	}
	prev := make(map[string]*Network, len(s.networks))
	for _, n := range s.networks {
		prev[n.info.Name] = n
	}
	nets := make([]*Network, 0, len(infos))
	for _, info := range infos {
		n := &Network{info: info}
		if old, ok := prev[info.Name]; ok {
			if info.BytesRecv >= old.info.BytesRecv {
				n.received = info.BytesRecv - old.info.BytesRecv
			}
			if info.BytesSent >= old.info.BytesSent {
				n.transmitted = info.BytesSent - old.info.BytesSent
			}
		}
		nets = append(nets, n)
	}
	s.networks = nets
}

// RefreshUsersList re-reads the logged-in user sessions.
func (s *System) RefreshUsersList() {
	users, err := s.platform.Users()
	if err != nil {
		log.Printf("snapshot: cannot list users: %v", err)
		return
	}
	s.users = users
}

// RefreshComponentsList re-reads the temperature components.
func (s *System) RefreshComponentsList() {
	sensors, err := s.platform.Sensors()
	if err != nil {
		log.Printf("snapshot: cannot list components: %v", err)
		return
	}
	s.components = sensors
}

// RefreshLoadAverage re-reads the run-queue load average.
func (s *System) RefreshLoadAverage() {
	l, err := s.platform.LoadAvg()
	if err != nil {
		log.Printf("snapshot: cannot read load average: %v", err)
		return
	}
	s.load = *l
}

// GlobalProcessor is the aggregate instance covering all cores.
func (s *System) GlobalProcessor() *Processor { return s.global }

// Processors returns the per-core instances, fixed at construction.
func (s *System) Processors() []*Processor { return s.processors }

// Processes returns the tracked process table keyed by pid. The map is owned
// by the snapshot; callers must not mutate it.
func (s *System) Processes() map[int32]*ProcessEntry { return s.registry.procs }

// Process returns the tracked entry for pid, or nil.
func (s *System) Process(pid int32) *ProcessEntry { return s.registry.procs[pid] }

// TotalMemory is the physical memory size in kibibytes.
func (s *System) TotalMemory() uint64 { return s.memTotal >> 10 }

// FreeMemory is the reusable physical memory in kibibytes.
func (s *System) FreeMemory() uint64 { return s.memFree >> 10 }

// UsedMemory is TotalMemory minus FreeMemory, in kibibytes.
func (s *System) UsedMemory() uint64 { return s.TotalMemory() - s.FreeMemory() }

func (s *System) TotalSwap() uint64 { return s.swapTotal >> 10 }

func (s *System) FreeSwap() uint64 { return s.swapFree >> 10 }

func (s *System) UsedSwap() uint64 { return s.TotalSwap() - s.FreeSwap() }

// Uptime is seconds since boot, read live from the platform clock.
func (s *System) Uptime() uint64 {
	up, err := s.platform.Uptime()
	if err != nil {
		log.Printf("snapshot: cannot read uptime: %v", err)
		return 0
	}
	return up
}

// BootTime is the boot instant in seconds since the epoch, computed once at
// construction and cached for the session.
func (s *System) BootTime() uint64 { return s.bootTime }

func (s *System) Disks() []dto.DiskInfo { return s.disks }

func (s *System) Networks() []*Network { return s.networks }

func (s *System) Users() []dto.UserInfo { return s.users }

func (s *System) Components() []dto.SensorInfo { return s.components }

func (s *System) LoadAverage() dto.LoadAvg { return s.load }
