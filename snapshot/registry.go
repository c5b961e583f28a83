package snapshot

import (
	"log"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// registry is the keyed collection of tracked processes. Membership is
// reconciled against liveness probes: a failed probe evicts the entry
// synchronously, with no grace period. The registry never holds two entries
// for the same pid.
type registry struct {
	procs        map[int32]*ProcessEntry
	api          ProcessAPI
	nbProcessors int
}

func newRegistry(api ProcessAPI, nbProcessors int) *registry {
	return &registry{
		procs:        make(map[int32]*ProcessEntry),
		api:          api,
		nbProcessors: nbProcessors,
	}
}

// refreshOne updates the entry for pid, creating it if the pid is not yet
// tracked. It returns false when the process could not be found or just died,
// in which case any stale entry is already gone and callers should drop the
// pid rather than retry.
func (r *registry) refreshOne(pid int32, computeCPU bool) bool {
	if entry, ok := r.procs[pid]; ok {
		if !r.updateEntry(entry, time.Now(), computeCPU) {
			delete(r.procs, pid)
			return false
		}
		return true
	}
	entry := r.newEntry(pid, time.Now())
	if entry == nil {
		return false
	}
	r.procs[pid] = entry
	return true
}

// refreshAll re-evaluates every live pid exactly once: tracked entries are
// updated in place, unseen pids become new entries, and tracked pids that are
// gone from the enumeration are evicted. Per-entry work only touches that
// entry's own state, so it fans out across the available parallelism.
func (r *registry) refreshAll() {
	pids, err := r.api.Pids()
	if err != nil {
		log.Printf("snapshot: cannot enumerate processes: %v", err)
		return
	}
	now := time.Now()

	var (
		mu    sync.Mutex
		added []*ProcessEntry
		dead  []int32
	)
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, pid := range pids {
		entry, tracked := r.procs[pid]
		pid := pid
		g.Go(func() error {
			if tracked {
				if !r.updateEntry(entry, now, true) {
					mu.Lock()
					dead = append(dead, pid)
					mu.Unlock()
				}
				return nil
			}
			if e := r.newEntry(pid, now); e != nil {
				mu.Lock()
				added = append(added, e)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	live := make(map[int32]struct{}, len(pids))
	for _, pid := range pids {
		live[pid] = struct{}{}
	}
	for pid := range r.procs {
		if _, ok := live[pid]; !ok {
			delete(r.procs, pid)
		}
	}
	for _, pid := range dead {
		delete(r.procs, pid)
	}
	for _, e := range added {
		r.procs[e.pid] = e
	}
}

// updateEntry probes liveness through the entry's own handle and, while the
// process is still running, refreshes its metadata in place. It returns false
// when the probe or the metadata lookup fails, both of which mean the process
// is terminated as far as the registry is concerned.
func (r *registry) updateEntry(entry *ProcessEntry, now time.Time, computeCPU bool) bool {
	if !r.api.StillActive(entry.handle) {
		return false
	}
	info, err := r.api.Metadata(entry.handle)
	if err != nil {
		return false
	}
	entry.info = *info
	if computeCPU {
		if ticks, err := r.api.BusyTicks(entry.handle); err == nil {
			entry.computeCPUUsage(ticks, now, r.nbProcessors)
		}
	}
	return true
}

// newEntry builds an entry from a fresh process lookup, or nil when the OS
// has no such process. The initial CPU computation only sets the baseline,
// so a new entry always reports 0 usage.
func (r *registry) newEntry(pid int32, now time.Time) *ProcessEntry {
	h, err := r.api.Lookup(pid)
	if err != nil {
		return nil
	}
	info, err := r.api.Metadata(h)
	if err != nil {
		return nil
	}
	entry := &ProcessEntry{
		pid:    pid,
		handle: h,
		info:   *info,
	}
	if ticks, err := r.api.BusyTicks(h); err == nil {
		entry.computeCPUUsage(ticks, now, r.nbProcessors)
	}
	return entry
}
