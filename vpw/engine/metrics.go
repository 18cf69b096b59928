package engine

import (
	"sync"
	"time"
)

// EngineMetrics holds statistical information about engine activity.
type EngineMetrics struct {
	Ticks             int64
	Rebuilds          int64
	LoadRequests      int64
	AnchorCorrections int64
	MoreRequests      int64
	LastRebuild       time.Time
	LastUpdated       time.Time
}

// metricsCollector provides concurrency-safe metrics collection for the
// engine, returning copies on read to prevent external modification.
type metricsCollector struct {
	mu      sync.Mutex
	metrics EngineMetrics
}

func (mc *metricsCollector) tick() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics.Ticks++
	mc.metrics.LastUpdated = time.Now()
}

func (mc *metricsCollector) rebuild() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics.Rebuilds++
	mc.metrics.LastRebuild = time.Now()
}

func (mc *metricsCollector) loadRequests(n int) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics.LoadRequests += int64(n)
}

func (mc *metricsCollector) anchorCorrection() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics.AnchorCorrections++
}

func (mc *metricsCollector) moreRequest() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.metrics.MoreRequests++
}

// snapshot returns a copy of the current metrics.
func (mc *metricsCollector) snapshot() EngineMetrics {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.metrics
}
