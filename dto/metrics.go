package dto

// MemoryInfo holds physical memory totals in bytes. Free counts memory that is
// actually reusable (available), not merely unmapped.
type MemoryInfo struct {
	Total uint64 `json:"total"`
	Free  uint64 `json:"free"`
}

// SwapInfo holds swap totals in bytes.
type SwapInfo struct {
	Total uint64 `json:"total"`
	Free  uint64 `json:"free"`
}

// CPUTopology describes the processors discovered at startup. The core count
// is fixed for the lifetime of a snapshot session.
type CPUTopology struct {
	Cores    int    `json:"cores"`
	VendorID string `json:"vendor_id"`
	Brand    string `json:"brand"`
}

// LoadAvg is the 1/5/15 minute run-queue average.
type LoadAvg struct {
	One     float64 `json:"load1"`
	Five    float64 `json:"load5"`
	Fifteen float64 `json:"load15"`
}

type DiskInfo struct {
	Device      string  `json:"device"`
	Mountpoint  string  `json:"mountpoint"`
	Fstype      string  `json:"fstype"`
	Total       uint64  `json:"total"`
	Free        uint64  `json:"free"`
	Used        uint64  `json:"used"`
	UsedPercent float64 `json:"used_percent"`
}

// NetInfo holds cumulative per-interface IO counters.
type NetInfo struct {
	Name        string `json:"name"`
	BytesRecv   uint64 `json:"bytes_recv"`
	BytesSent   uint64 `json:"bytes_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	ErrsIn      uint64 `json:"errs_in"`
	ErrsOut     uint64 `json:"errs_out"`
}

type UserInfo struct {
	Name     string `json:"name"`
	Terminal string `json:"terminal"`
	Host     string `json:"host"`
	Started  int    `json:"started"`
}

// SensorInfo is one temperature component reading, in degrees Celsius.
type SensorInfo struct {
	Label       string  `json:"label"`
	Temperature float64 `json:"temperature"`
	High        float64 `json:"high"`
	Critical    float64 `json:"critical"`
}

// ProcessInfo is the per-process metadata refreshed on every probe. Memory
// figures are in bytes; CreateTime is milliseconds since the epoch.
type ProcessInfo struct {
	Name          string `json:"name"`
	Exe           string `json:"exe"`
	Cmdline       string `json:"cmdline"`
	Username      string `json:"username"`
	Status        string `json:"status"`
	CreateTime    int64  `json:"create_time"`
	Memory        uint64 `json:"memory"`
	VirtualMemory uint64 `json:"virtual_memory"`
}
