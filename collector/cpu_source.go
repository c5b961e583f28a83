package collector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"

	"sysmeter/counters"
)

// CPUSource feeds the counter query with cumulative per-processor busy time,
// in 100-nanosecond ticks, read from the kernel's CPU accounting. Counter
// paths follow the \Category(instance)\Counter convention: instance "_Total"
// selects the aggregate, a core index selects one logical processor.
type CPUSource struct {
	subs  []cpuCounter
	total uint64
	cores []uint64
}

type cpuCounter struct {
	total bool
	core  int
}

func NewCPUSource() *CPUSource {
	return &CPUSource{}
}

// Subscribe resolves a counter path into a handle. Category and counter names
// are opaque here; only the instance matters for routing samples.
func (s *CPUSource) Subscribe(path string) (counters.Handle, error) {
	instance, err := parseCounterPath(path)
	if err != nil {
		return 0, err
	}
	c := cpuCounter{total: instance == "_Total"}
	if !c.total {
		core, err := strconv.Atoi(instance)
		if err != nil || core < 0 {
			return 0, fmt.Errorf("bad counter instance %q in %q", instance, path)
		}
		c.core = core
	}
	s.subs = append(s.subs, c)
	return counters.Handle(len(s.subs) - 1), nil
}

// Sample takes one batch reading covering the aggregate and every core.
func (s *CPUSource) Sample() error {
	perCore, err := cpu.Times(true)
	if err != nil {
		return err
	}
	agg, err := cpu.Times(false)
	if err != nil {
		return err
	}
	if len(agg) == 0 {
		return fmt.Errorf("no aggregate CPU times reported")
	}
	cores := make([]uint64, len(perCore))
	for i, t := range perCore {
		cores[i] = busyTicks(t)
	}
	s.cores = cores
	s.total = busyTicks(agg[0])
	return nil
}

func (s *CPUSource) Read(h counters.Handle) (uint64, error) {
	if int(h) < 0 || int(h) >= len(s.subs) {
		return 0, fmt.Errorf("unknown counter handle %d", h)
	}
	c := s.subs[h]
	if c.total {
		return s.total, nil
	}
	if c.core >= len(s.cores) {
		return 0, fmt.Errorf("no sample for core %d", c.core)
	}
	return s.cores[c.core], nil
}

// busyTicks converts one cumulative times reading into busy 100 ns ticks.
// Iowait counts as idle: the processor is not executing during it.
func busyTicks(t cpu.TimesStat) uint64 {
	busy := t.User + t.System + t.Nice + t.Irq + t.Softirq + t.Steal
	return uint64(busy * counters.TicksPerSecond)
}

// parseCounterPath extracts the instance from a \Category(instance)\Counter
// path.
func parseCounterPath(path string) (string, error) {
	if !strings.HasPrefix(path, `\`) {
		return "", fmt.Errorf("counter path %q must start with '\\'", path)
	}
	open := strings.Index(path, "(")
	end := strings.Index(path, ")")
	if open < 0 || end < open+2 {
		return "", fmt.Errorf("counter path %q has no instance", path)
	}
	rest := path[end+1:]
	if !strings.HasPrefix(rest, `\`) || len(rest) < 2 {
		return "", fmt.Errorf("counter path %q has no counter name", path)
	}
	return path[open+1 : end], nil
}
