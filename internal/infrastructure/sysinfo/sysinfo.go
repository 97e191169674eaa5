package sysinfo

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot describes host load, shown in the UI while conversions run.
type Snapshot struct {
	CPUModel   string  `json:"cpuModel"`
	CPUThreads int     `json:"cpuThreads"`
	CPUPercent float64 `json:"cpuPercent"`
	MemTotal   uint64  `json:"memTotal"`
	MemUsed    uint64  `json:"memUsed"`
	MemPercent float64 `json:"memPercent"`
}

// Monitor samples host CPU and memory usage.
type Monitor struct{}

// Sample gathers an immediate host load reading.
func (Monitor) Sample(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	info, _ := cpu.InfoWithContext(ctx)
	snap.CPUModel = "unknown"
	if len(info) > 0 {
		snap.CPUModel = info[0].ModelName
	}
	snap.CPUThreads = runtime.NumCPU()

	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return snap, fmt.Errorf("cpu stats: %w", err)
	}
	if len(percents) > 0 {
		snap.CPUPercent = percents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return snap, fmt.Errorf("mem stats: %w", err)
	}
	snap.MemTotal = vm.Total
	snap.MemUsed = vm.Used
	snap.MemPercent = vm.UsedPercent

	return snap, nil
}
