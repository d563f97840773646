// Package metrics samples host utilization and daemon liveness for the
// dashboard. Metrics are diagnostic, not load-bearing: every sampling
// failure degrades to a conservative default instead of an error.
package metrics

import (
	"context"
	"path/filepath"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/tunneldeck/tunneldeck/internal/database"
)

// cpuSampleInterval keeps a single Collect call from blocking noticeably.
const cpuSampleInterval = 100 * time.Millisecond

// Snapshot is one point-in-time view of the host and daemon. The
// Authenticated flag comes from the advisory cache, not a live provider
// check, and may be stale.
type Snapshot struct {
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	MemoryUsedMB  uint64    `json:"memory_used_mb"`
	MemoryTotalMB uint64    `json:"memory_total_mb"`
	DiskPercent   float64   `json:"disk_percent"`
	DaemonRunning bool      `json:"daemon_running"`
	Authenticated bool      `json:"authenticated"`
	SampledAt     time.Time `json:"sampled_at"`
}

// Collector samples read-only OS state. It holds no mutable state of its
// own and is safe for concurrent use.
type Collector struct {
	daemonName string
	diskPath   string
}

func NewCollector(daemonBin string) *Collector {
	return &Collector{
		daemonName: filepath.Base(daemonBin),
		diskPath:   "/",
	}
}

// Collect samples CPU, memory, disk and daemon liveness. Individual
// sampling failures leave the corresponding fields at their zero values.
func (c *Collector) Collect(ctx context.Context) Snapshot {
	snap := Snapshot{SampledAt: time.Now().UTC()}

	if percents, err := cpu.PercentWithContext(ctx, cpuSampleInterval, false); err == nil && len(percents) > 0 {
		snap.CPUPercent = percents[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		snap.MemoryPercent = vm.UsedPercent
		snap.MemoryUsedMB = vm.Used / (1024 * 1024)
		snap.MemoryTotalMB = vm.Total / (1024 * 1024)
	}

	if usage, err := disk.UsageWithContext(ctx, c.diskPath); err == nil {
		snap.DiskPercent = usage.UsedPercent
	}

	snap.DaemonRunning = c.daemonRunning(ctx)

	if database.DB != nil {
		snap.Authenticated, _ = database.CachedAuthState()
	}

	return snap
}

// daemonRunning scans the process table for the tunneling daemon binary.
func (c *Collector) daemonRunning(ctx context.Context) bool {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false
	}
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if name == c.daemonName {
			return true
		}
	}
	return false
}
