package collector

import (
	"log"

	"github.com/shirou/gopsutil/v3/disk"

	"sysmeter/dto"
)

// Disks enumerates mounted filesystems with their usage. Mounts whose usage
// cannot be read (virtual or stale mounts, permissions) are skipped.
func (Platform) Disks() ([]dto.DiskInfo, error) {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return nil, err
	}
	disks := make([]dto.DiskInfo, 0, len(partitions))
	for _, p := range partitions {
		usage, err := disk.Usage(p.Mountpoint)
		if err != nil {
			log.Printf("collector: disk usage for %s: %v", p.Mountpoint, err)
			continue
		}
		disks = append(disks, dto.DiskInfo{
			Device:      p.Device,
			Mountpoint:  p.Mountpoint,
			Fstype:      p.Fstype,
			Total:       usage.Total,
			Free:        usage.Free,
			Used:        usage.Used,
			UsedPercent: usage.UsedPercent,
		})
	}
	return disks, nil
}
