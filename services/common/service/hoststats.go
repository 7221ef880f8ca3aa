package service

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// HostStats describes the machine and process serving requests.
type HostStats struct {
	Hostname      string  `json:"hostname"`
	OS            string  `json:"os"`
	Platform      string  `json:"platform"`
	UptimeSeconds uint64  `json:"uptime_seconds"`
	MemTotal      uint64  `json:"mem_total_bytes"`
	MemUsedPct    float64 `json:"mem_used_percent"`
	ProcessRSS    uint64  `json:"process_rss_bytes"`
	Goroutines    int     `json:"goroutines"`
}

// CollectHostStats samples host and process statistics.
func CollectHostStats(ctx context.Context) (*HostStats, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("host info: %w", err)
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("virtual memory: %w", err)
	}

	stats := &HostStats{
		Hostname:      info.Hostname,
		OS:            info.OS,
		Platform:      info.Platform,
		UptimeSeconds: info.Uptime,
		MemTotal:      vm.Total,
		MemUsedPct:    vm.UsedPercent,
		Goroutines:    runtime.NumGoroutine(),
	}

	// RSS is best effort; some sandboxes hide /proc/self.
	if p, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfoWithContext(ctx); err == nil {
			stats.ProcessRSS = mi.RSS
		}
	}
	return stats, nil
}
