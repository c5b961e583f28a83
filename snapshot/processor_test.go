package snapshot

import (
	"math"
	"testing"
	"time"

	"sysmeter/counters"
)

func TestFirstSampleYieldsZero(t *testing.T) {
	p := newProcessor("CPU 0", "vendor", "brand")
	p.setCPUUsage(12345678, time.Now())
	if got := p.CPUUsage(); got != 0 {
		t.Errorf("first computation = %v, want exactly 0", got)
	}
}

func TestHalfBusySecondYieldsFifty(t *testing.T) {
	p := newProcessor("CPU 0", "vendor", "brand")
	base := time.Now()
	p.setCPUUsage(0, base)
	// Half a second of busy time over one second of wall clock.
	p.setCPUUsage(counters.TicksPerSecond/2, base.Add(time.Second))
	if got := p.CPUUsage(); math.Abs(got-50) > 0.01 {
		t.Errorf("usage = %v, want 50", got)
	}
}

func TestUsageIsClamped(t *testing.T) {
	p := newProcessor("CPU 0", "vendor", "brand")
	base := time.Now()
	p.setCPUUsage(0, base)
	// More busy ticks than wall clock elapsed: must clamp at 100.
	p.setCPUUsage(3*counters.TicksPerSecond, base.Add(time.Second))
	if got := p.CPUUsage(); got != 100 {
		t.Errorf("usage = %v, want clamped 100", got)
	}
}

func TestCounterGoingBackwardsYieldsZero(t *testing.T) {
	p := newProcessor("CPU 0", "vendor", "brand")
	base := time.Now()
	p.setCPUUsage(5*counters.TicksPerSecond, base)
	p.setCPUUsage(counters.TicksPerSecond, base.Add(time.Second))
	if got := p.CPUUsage(); got != 0 {
		t.Errorf("usage after counter reset = %v, want 0", got)
	}
}

func TestProcessorsAreIndependentSeries(t *testing.T) {
	a := newProcessor("CPU 0", "vendor", "brand")
	b := newProcessor("CPU 1", "vendor", "brand")
	base := time.Now()

	a.setCPUUsage(0, base)
	b.setCPUUsage(0, base)
	a.setCPUUsage(counters.TicksPerSecond, base.Add(time.Second))
	b.setCPUUsage(counters.TicksPerSecond/4, base.Add(time.Second))

	if got := a.CPUUsage(); math.Abs(got-100) > 0.01 {
		t.Errorf("a usage = %v, want 100", got)
	}
	if got := b.CPUUsage(); math.Abs(got-25) > 0.01 {
		t.Errorf("b usage = %v, want 25", got)
	}
}

func TestProcessUsageDividesByProcessorCount(t *testing.T) {
	e := &ProcessEntry{pid: 1}
	base := time.Now()
	e.computeCPUUsage(0, base, 4)
	if got := e.CPUUsage(); got != 0 {
		t.Fatalf("baseline usage = %v, want 0", got)
	}
	// Two cores' worth of CPU time in one wall second on a 4-core host.
	e.computeCPUUsage(2*counters.TicksPerSecond, base.Add(time.Second), 4)
	if got := e.CPUUsage(); math.Abs(got-50) > 0.01 {
		t.Errorf("usage = %v, want 50", got)
	}
}
