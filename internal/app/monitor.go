package app

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/go-co-op/gocron/v2"

	"image-effect-desktop/internal/logger"
	"image-effect-desktop/internal/models"
	"image-effect-desktop/internal/opencv/safe"
)

// MemorySink receives heap figures after each sample
type MemorySink interface {
	SetMemoryInfo(used, total uint64)
}

// Snapshot is one runtime sample
type Snapshot struct {
	HeapAllocMB     uint64
	HeapSysMB       uint64
	TotalAllocMB    uint64
	NumGC           uint32
	Goroutines      int
	LiveMats        int64
	EffectsApplied  int
	AverageEffectMS int64
	LastEffect      string
}

// Monitor periodically logs runtime and effect statistics
type Monitor struct {
	scheduler gocron.Scheduler
	logger    logger.Logger
	history   *models.EffectHistory
	sink      MemorySink
	interval  time.Duration
}

func NewMonitor(interval time.Duration, history *models.EffectHistory, sink MemorySink, log logger.Logger) *Monitor {
	return &Monitor{
		logger:   log,
		history:  history,
		sink:     sink,
		interval: interval,
	}
}

// Start schedules sampling. A zero interval leaves the monitor idle.
func (m *Monitor) Start() error {
	if m.interval <= 0 || m.scheduler != nil {
		return nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create monitor scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(m.interval),
		gocron.NewTask(func() { m.Sample() }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to schedule monitor: %w", err)
	}

	m.scheduler = scheduler
	m.scheduler.Start()
	m.logger.Debug("Monitor", "runtime monitor started", map[string]interface{}{
		"interval": m.interval.String(),
	})
	return nil
}

// Sample takes one snapshot, logs it and forwards memory usage to the sink
func (m *Monitor) Sample() Snapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snap := Snapshot{
		HeapAllocMB:  memStats.Alloc / 1024 / 1024,
		HeapSysMB:    memStats.Sys / 1024 / 1024,
		TotalAllocMB: memStats.TotalAlloc / 1024 / 1024,
		NumGC:        memStats.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		LiveMats:     safe.Live(),
	}

	if m.history != nil {
		stats := m.history.Stats()
		snap.EffectsApplied = stats.Total
		snap.AverageEffectMS = stats.AverageTime.Milliseconds()
		if stats.Last != nil {
			snap.LastEffect = stats.Last.Effect
		}
	}

	m.logger.Debug("Monitor", "performance metrics", map[string]interface{}{
		"go_memory_mb":      snap.HeapAllocMB,
		"go_sys_mb":         snap.HeapSysMB,
		"go_total_alloc_mb": snap.TotalAllocMB,
		"go_gc_runs":        snap.NumGC,
		"goroutine_count":   snap.Goroutines,
		"opencv_live_mats":  snap.LiveMats,
		"effects_applied":   snap.EffectsApplied,
		"avg_effect_ms":     snap.AverageEffectMS,
		"last_effect":       snap.LastEffect,
	})

	if m.sink != nil {
		m.sink.SetMemoryInfo(memStats.Alloc, memStats.Sys)
	}

	return snap
}

func (m *Monitor) Name() string {
	return "Monitor"
}

func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.scheduler == nil {
		return nil
	}
	return m.scheduler.Shutdown()
}
