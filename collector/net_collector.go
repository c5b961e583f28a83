package collector

import (
	"github.com/shirou/gopsutil/v3/net"

	"sysmeter/dto"
)

// Networks returns the cumulative per-interface IO counters. The snapshot
// layer derives per-refresh deltas from successive readings.
func (Platform) Networks() ([]dto.NetInfo, error) {
	stats, err := net.IOCounters(true)
	if err != nil {
		return nil, err
	}
	infos := make([]dto.NetInfo, 0, len(stats))
	for _, s := range stats {
		infos = append(infos, dto.NetInfo{
			Name:        s.Name,
			BytesRecv:   s.BytesRecv,
			BytesSent:   s.BytesSent,
			PacketsRecv: s.PacketsRecv,
			PacketsSent: s.PacketsSent,
			ErrsIn:      s.Errin,
			ErrsOut:     s.Errout,
		})
	}
	return infos, nil
}
