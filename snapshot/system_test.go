package snapshot

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"sysmeter/catalog"
	"sysmeter/counters"
	"sysmeter/dto"
)

type fakePlatform struct {
	topo        dto.CPUTopology
	mem         dto.MemoryInfo
	swap        dto.SwapInfo
	uptime      uint64
	load        dto.LoadAvg
	disks       []dto.DiskInfo
	nets        []dto.NetInfo
	users       []dto.UserInfo
	sensors     []dto.SensorInfo
	memoryCalls int
}

func newFakePlatform(cores int) *fakePlatform {
	return &fakePlatform{
		topo:   dto.CPUTopology{Cores: cores, VendorID: "GenuineTest", Brand: "Test CPU"},
		mem:    dto.MemoryInfo{Total: 16 << 30, Free: 4 << 30},
		swap:   dto.SwapInfo{Total: 8 << 30, Free: 8 << 30},
		uptime: 3600,
	}
}

func (f *fakePlatform) Topology() (*dto.CPUTopology, error) {
	t := f.topo
	return &t, nil
}

func (f *fakePlatform) Memory() (*dto.MemoryInfo, error) {
	f.memoryCalls++
	m := f.mem
	return &m, nil
}

func (f *fakePlatform) Swap() (*dto.SwapInfo, error) {
	s := f.swap
	return &s, nil
}

func (f *fakePlatform) Uptime() (uint64, error) { return f.uptime, nil }

func (f *fakePlatform) LoadAvg() (*dto.LoadAvg, error) {
	l := f.load
	return &l, nil
}

func (f *fakePlatform) Disks() ([]dto.DiskInfo, error) { return f.disks, nil }

func (f *fakePlatform) Networks() ([]dto.NetInfo, error) { return f.nets, nil }

func (f *fakePlatform) Users() ([]dto.UserInfo, error) { return f.users, nil }

func (f *fakePlatform) Sensors() ([]dto.SensorInfo, error) { return f.sensors, nil }

// fakeTickSource serves scripted busy-tick values keyed by counter instance.
type fakeTickSource struct {
	subs  []string
	ticks map[string]uint64
}

func newFakeTickSource() *fakeTickSource {
	return &fakeTickSource{ticks: make(map[string]uint64)}
}

func (f *fakeTickSource) Subscribe(path string) (counters.Handle, error) {
	open := strings.Index(path, "(")
	end := strings.Index(path, ")")
	if open < 0 || end < open {
		return 0, errors.New("bad path")
	}
	f.subs = append(f.subs, path[open+1:end])
	return counters.Handle(len(f.subs) - 1), nil
}

func (f *fakeTickSource) Sample() error { return nil }

func (f *fakeTickSource) Read(h counters.Handle) (uint64, error) {
	return f.ticks[f.subs[h]], nil
}

func englishCatalog() *catalog.Catalog {
	return catalog.New(catalog.EnglishTable())
}

func newTestSystem(platform Platform, procs ProcessAPI, src counters.Source, cat *catalog.Catalog) *System {
	return New(platform, procs, src, cat, Specifics{})
}

func TestMemoryArithmeticInKibibytes(t *testing.T) {
	s := newTestSystem(newFakePlatform(2), newFakeProcs(), newFakeTickSource(), englishCatalog())
	s.RefreshMemory()

	if got, want := s.TotalMemory(), uint64(16<<30)>>10; got != want {
		t.Errorf("TotalMemory = %d, want %d", got, want)
	}
	if s.TotalMemory()-s.FreeMemory() != s.UsedMemory() {
		t.Errorf("total-free = %d, used = %d; memory arithmetic must be consistent",
			s.TotalMemory()-s.FreeMemory(), s.UsedMemory())
	}
	if s.TotalSwap()-s.FreeSwap() != s.UsedSwap() {
		t.Errorf("swap arithmetic inconsistent: total=%d free=%d used=%d",
			s.TotalSwap(), s.FreeSwap(), s.UsedSwap())
	}
}

func TestZeroSpecificsRefreshesNothing(t *testing.T) {
	platform := newFakePlatform(2)
	newTestSystem(platform, newFakeProcs(), newFakeTickSource(), englishCatalog())
	if platform.memoryCalls != 0 {
		t.Errorf("construction with zero specifics read memory %d times, want 0", platform.memoryCalls)
	}
}

func TestUsageStaysInRangeAcrossRefreshes(t *testing.T) {
	src := newFakeTickSource()
	s := newTestSystem(newFakePlatform(2), newFakeProcs(), src, englishCatalog())

	for cycle := 0; cycle < 3; cycle++ {
		src.ticks["_Total"] += 40_000_000
		src.ticks["0"] += 30_000_000
		src.ticks["1"] += 10_000_000
		s.RefreshCPU()
		time.Sleep(5 * time.Millisecond)

		check := append([]*Processor{s.GlobalProcessor()}, s.Processors()...)
		for _, p := range check {
			if u := p.CPUUsage(); u < 0 || u > 100 {
				t.Fatalf("cycle %d: %s usage %v outside [0,100]", cycle, p.Name(), u)
			}
		}
	}
}

func TestFirstCPURefreshYieldsZero(t *testing.T) {
	src := newFakeTickSource()
	src.ticks["_Total"] = 123_456_789
	src.ticks["0"] = 23_456_789
	s := newTestSystem(newFakePlatform(1), newFakeProcs(), src, englishCatalog())

	s.RefreshCPU()
	if got := s.GlobalProcessor().CPUUsage(); got != 0 {
		t.Errorf("first refresh global usage = %v, want 0", got)
	}
	for _, p := range s.Processors() {
		if got := p.CPUUsage(); got != 0 {
			t.Errorf("first refresh %s usage = %v, want 0", p.Name(), got)
		}
	}
}

func TestTranslationMissDegradesCPUOnly(t *testing.T) {
	src := newFakeTickSource()
	src.ticks["_Total"] = 1 << 40
	emptyCatalog := catalog.New(nil)
	s := newTestSystem(newFakePlatform(2), newFakeProcs(), src, emptyCatalog)

	for i := 0; i < 3; i++ {
		src.ticks["_Total"] += 1 << 20
		s.RefreshCPU()
		if got := s.GlobalProcessor().CPUUsage(); got != 0 {
			t.Fatalf("usage = %v without a counter subscription, want 0", got)
		}
		for _, p := range s.Processors() {
			if got := p.CPUUsage(); got != 0 {
				t.Fatalf("%s usage = %v without a counter subscription, want 0", p.Name(), got)
			}
		}
	}

	// The other categories must be unaffected.
	s.RefreshMemory()
	if s.TotalMemory() == 0 {
		t.Error("memory refresh should proceed when CPU counters are unavailable")
	}
}

func TestProcessorTopologyIsFixed(t *testing.T) {
	s := newTestSystem(newFakePlatform(4), newFakeProcs(), newFakeTickSource(), englishCatalog())
	if got := len(s.Processors()); got != 4 {
		t.Fatalf("%d processors, want 4", got)
	}
	if got := s.GlobalProcessor().Name(); got != "Total CPU" {
		t.Errorf("global processor name = %q, want %q", got, "Total CPU")
	}
	if got := s.Processors()[2].Name(); got != "CPU 2" {
		t.Errorf("third core name = %q, want %q", got, "CPU 2")
	}
	if got := s.GlobalProcessor().VendorID(); got != "GenuineTest" {
		t.Errorf("vendor id = %q, want %q", got, "GenuineTest")
	}
}

func TestBootTimeCachedUptimeLive(t *testing.T) {
	platform := newFakePlatform(1)
	platform.uptime = 1000
	s := newTestSystem(platform, newFakeProcs(), newFakeTickSource(), englishCatalog())

	boot := s.BootTime()
	if boot == 0 {
		t.Fatal("boot time should be computed at construction")
	}

	platform.uptime = 2000
	if got := s.Uptime(); got != 2000 {
		t.Errorf("Uptime = %d, want live value 2000", got)
	}
	if got := s.BootTime(); got != boot {
		t.Errorf("BootTime changed from %d to %d; it must be cached", boot, got)
	}
}

func TestRefreshProcessFacade(t *testing.T) {
	api := newFakeProcs()
	worker := api.spawn(42, "worker")
	s := newTestSystem(newFakePlatform(2), api, newFakeTickSource(), englishCatalog())

	if s.RefreshProcess(7) {
		t.Error("RefreshProcess for an unknown pid should return false")
	}
	if !s.RefreshProcess(42) {
		t.Fatal("RefreshProcess should track pid 42")
	}
	if s.Process(42) == nil {
		t.Fatal("pid 42 missing from the process table")
	}

	worker.running = false
	if s.RefreshProcess(42) {
		t.Error("RefreshProcess should report the exited process")
	}
	if s.Process(42) != nil {
		t.Error("exited pid still readable from the process table")
	}
	if _, ok := s.Processes()[42]; ok {
		t.Error("exited pid still present in the process table")
	}
}

func TestNetworkDeltas(t *testing.T) {
	platform := newFakePlatform(1)
	platform.nets = []dto.NetInfo{{Name: "eth0", BytesRecv: 1000, BytesSent: 500}}
	s := newTestSystem(platform, newFakeProcs(), newFakeTickSource(), englishCatalog())

	s.RefreshNetworks()
	if got := s.Networks()[0].Received(); got != 0 {
		t.Errorf("first refresh delta = %d, want 0", got)
	}

	platform.nets = []dto.NetInfo{{Name: "eth0", BytesRecv: 1800, BytesSent: 900}}
	s.RefreshNetworks()
	n := s.Networks()[0]
	if got := n.Received(); got != 800 {
		t.Errorf("received delta = %d, want 800", got)
	}
	if got := n.Transmitted(); got != 400 {
		t.Errorf("transmitted delta = %d, want 400", got)
	}
	if got := n.TotalReceived(); got != 1800 {
		t.Errorf("cumulative received = %d, want 1800", got)
	}
}

func TestRefreshAllCoversEveryCategory(t *testing.T) {
	platform := newFakePlatform(1)
	platform.load = dto.LoadAvg{One: 1.5, Five: 1.0, Fifteen: 0.5}
	platform.disks = []dto.DiskInfo{{Device: "/dev/sda1", Mountpoint: "/"}}
	platform.users = []dto.UserInfo{{Name: "root"}}
	api := newFakeProcs()
	api.spawn(1, "init")
	s := newTestSystem(platform, api, newFakeTickSource(), englishCatalog())

	s.RefreshAll()

	if s.TotalMemory() == 0 {
		t.Error("memory not refreshed")
	}
	if got := s.LoadAverage().One; got != 1.5 {
		t.Errorf("load1 = %v, want 1.5", got)
	}
	if len(s.Disks()) != 1 || len(s.Users()) != 1 {
		t.Errorf("disks=%d users=%d, want 1 each", len(s.Disks()), len(s.Users()))
	}
	if s.Process(1) == nil {
		t.Error("process table not refreshed")
	}
}

func TestCounterKeysAreUniquePerCore(t *testing.T) {
	src := newFakeTickSource()
	newTestSystem(newFakePlatform(3), newFakeProcs(), src, englishCatalog())

	seen := make(map[string]bool)
	for _, inst := range src.subs {
		if seen[inst] {
			t.Fatalf("instance %q subscribed twice", inst)
		}
		seen[inst] = true
	}
	if !seen["_Total"] {
		t.Error("aggregate counter not subscribed")
	}
	for i := 0; i < 3; i++ {
		if !seen[strconv.Itoa(i)] {
			t.Errorf("core %d counter not subscribed", i)
		}
	}
}
