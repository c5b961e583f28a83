package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"sort"
	"time"

	"sysmeter/collector"
	"sysmeter/conf"
	"sysmeter/snapshot"
)

type sample struct {
	Time        string             `json:"time"`
	CPUUsage    float64            `json:"cpu_usage"`
	CoreUsage   []float64          `json:"core_usage,omitempty"`
	TotalMemKiB uint64             `json:"total_memory_kib"`
	UsedMemKiB  uint64             `json:"used_memory_kib"`
	UsedSwapKiB uint64             `json:"used_swap_kib"`
	Load1       float64            `json:"load1"`
	Processes   int                `json:"processes"`
	TopCPU      []processUsage     `json:"top_cpu,omitempty"`
	Uptime      uint64             `json:"uptime_secs"`
}

type processUsage struct {
	Pid      int32   `json:"pid"`
	Name     string  `json:"name"`
	CPUUsage float64 `json:"cpu_usage"`
	MemKiB   uint64  `json:"memory_kib"`
}

func main() {
	configPath := flag.String("config", "sysmeter.yaml", "path to the sampler config file")
	flag.Parse()

	config, err := conf.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", *configPath, err)
	}

	logFile, err := os.OpenFile(config.LogFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("Failed to open log file: %s", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	sys := collector.NewSystem(config.Specifics())
	log.Printf("sysmeter started: %d cores, boot time %d", len(sys.Processors()), sys.BootTime())

	interval := time.Duration(config.SampleIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	enc := json.NewEncoder(os.Stdout)
	for range ticker.C {
		refresh(sys, config.Refresh)
		if err := enc.Encode(buildSample(sys)); err != nil {
			log.Printf("Error encoding sample: %v", err)
		}
	}
}

func refresh(sys *snapshot.System, r conf.RefreshConfig) {
	if r.CPU {
		sys.RefreshCPU()
	}
	if r.Memory {
		sys.RefreshMemory()
	}
	if r.Processes {
		sys.RefreshProcesses()
	}
	if r.Disks {
		sys.RefreshDisksList()
	}
	if r.Networks {
		sys.RefreshNetworks()
	}
	if r.Users {
		sys.RefreshUsersList()
	}
	if r.Components {
		sys.RefreshComponentsList()
	}
	if r.LoadAverage {
		sys.RefreshLoadAverage()
	}
}

func buildSample(sys *snapshot.System) sample {
	s := sample{
		Time:        time.Now().Format(time.RFC3339),
		CPUUsage:    sys.GlobalProcessor().CPUUsage(),
		TotalMemKiB: sys.TotalMemory(),
		UsedMemKiB:  sys.UsedMemory(),
		UsedSwapKiB: sys.UsedSwap(),
		Load1:       sys.LoadAverage().One,
		Processes:   len(sys.Processes()),
		Uptime:      sys.Uptime(),
	}
	for _, p := range sys.Processors() {
		s.CoreUsage = append(s.CoreUsage, p.CPUUsage())
	}
	s.TopCPU = topCPU(sys, 5)
	return s
}

// topCPU picks the n busiest tracked processes for the sample line.
func topCPU(sys *snapshot.System, n int) []processUsage {
	var top []processUsage
	for _, e := range sys.Processes() {
		top = append(top, processUsage{
			Pid:      e.Pid(),
			Name:     e.Name(),
			CPUUsage: e.CPUUsage(),
			MemKiB:   e.Memory(),
		})
	}
	sort.Slice(top, func(i, j int) bool { return top[i].CPUUsage > top[j].CPUUsage })
	if len(top) > n {
		top = top[:n]
	}
	return top
}
