package collector

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"sysmeter/dto"
)

// Platform answers the snapshot engine's one-shot host queries from the
// running system.
type Platform struct{}

func NewPlatform() Platform {
	return Platform{}
}

func (Platform) Topology() (*dto.CPUTopology, error) {
	count, err := cpu.Counts(true)
	if err != nil {
		return nil, err
	}
	topo := &dto.CPUTopology{Cores: count}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		topo.VendorID = infos[0].VendorID
		topo.Brand = infos[0].ModelName
	}
	return topo, nil
}

func (Platform) Memory() (*dto.MemoryInfo, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, err
	}
	return &dto.MemoryInfo{
		Total: vm.Total,
		Free:  vm.Available,
	}, nil
}

func (Platform) Swap() (*dto.SwapInfo, error) {
	sm, err := mem.SwapMemory()
	if err != nil {
		return nil, err
	}
	return &dto.SwapInfo{
		Total: sm.Total,
		Free:  sm.Free,
	}, nil
}

func (Platform) Uptime() (uint64, error) {
	return host.Uptime()
}

func (Platform) LoadAvg() (*dto.LoadAvg, error) {
	avg, err := load.Avg()
	if err != nil {
		return nil, err
	}
	return &dto.LoadAvg{
		One:     avg.Load1,
		Five:    avg.Load5,
		Fifteen: avg.Load15,
	}, nil
}

func (Platform) Users() ([]dto.UserInfo, error) {
	stats, err := host.Users()
	if err != nil {
		return nil, err
	}
	users := make([]dto.UserInfo, 0, len(stats))
	for _, u := range stats {
		users = append(users, dto.UserInfo{
			Name:     u.User,
			Terminal: u.Terminal,
			Host:     u.Host,
			Started:  u.Started,
		})
	}
	return users, nil
}

func (Platform) Sensors() ([]dto.SensorInfo, error) {
	stats, err := host.SensorsTemperatures()
	if err != nil {
		return nil, err
	}
	sensors := make([]dto.SensorInfo, 0, len(stats))
	for _, t := range stats {
		sensors = append(sensors, dto.SensorInfo{
			Label:       t.SensorKey,
			Temperature: t.Temperature,
			High:        t.High,
			Critical:    t.Critical,
		})
	}
	return sensors, nil
}
