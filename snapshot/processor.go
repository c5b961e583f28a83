package snapshot

import (
	"time"

	"sysmeter/counters"
)

// Processor tracks the usage of one logical processor, or of the aggregate
// when it is the global instance. Instances are created once at construction
// and live for the whole session.
type Processor struct {
	name     string
	vendorID string
	brand    string
	usage    float64

	// counterKey is the logical key of this processor's subscription in the
	// counter query; empty when the subscription could not be created, in
	// which case usage stays at 0.
	counterKey string

	prevSample uint64
	prevTime   time.Time
	hasPrev    bool
}

func newProcessor(name, vendorID, brand string) *Processor {
	return &Processor{
		name:     name,
		vendorID: vendorID,
		brand:    brand,
	}
}

func (p *Processor) Name() string { return p.name }

func (p *Processor) VendorID() string { return p.vendorID }

func (p *Processor) Brand() string { return p.brand }

// CPUUsage is the fraction of wall-clock time this processor spent busy
// between the two most recent CPU refreshes, in [0, 100]. It is 0 until a
// second sample exists.
func (p *Processor) CPUUsage() float64 { return p.usage }

// setCPUUsage folds one cumulative busy-tick sample taken at now into the
// usage percentage. Each processor is an independent series: the previous
// sample retained here is never shared with other instances.
func (p *Processor) setCPUUsage(sample uint64, now time.Time) {
	if !p.hasPrev {
		p.prevSample = sample
		p.prevTime = now
		p.hasPrev = true
		p.usage = 0
		return
	}
	elapsed := now.Sub(p.prevTime).Seconds()
	if elapsed <= 0 {
		return
	}
	var busy float64
	if sample > p.prevSample {
		busy = float64(sample-p.prevSample) / counters.TicksPerSecond
	}
	p.usage = clampPercent(busy / elapsed * 100)
	p.prevSample = sample
	p.prevTime = now
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
