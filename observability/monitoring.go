package observability

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// MonitoringStats is the snapshot served by the debug endpoint.
type MonitoringStats struct {
	EventsPublished  uint64  `json:"events_published"`
	EventsPerSecond  float64 `json:"events_per_second"`
	DomainsCreated   uint64  `json:"domains_created"`
	DomainsClosed    uint64  `json:"domains_closed"`
	CommitsSucceeded uint64  `json:"commits_succeeded"`

	ProcessRSSMb  uint64  `json:"process_rss_mb"`
	ProcessCPU    float64 `json:"process_cpu_percent"`
	ProcessStatus string  `json:"process_status"`

	AllocMemMb uint64 `json:"alloc_mem_mb"`
	NumGC      uint32 `json:"num_gc"`
}

// MonitoringManager aggregates engine telemetry. Counters are atomic so the
// hot paths (event publication, commits) never contend on the snapshot lock.
type MonitoringManager struct {
	log         *slog.Logger
	mu          sync.RWMutex
	latestStats MonitoringStats

	eventsPublished  uint64
	domainsCreated   uint64
	domainsClosed    uint64
	commitsSucceeded uint64

	windowEvents uint64
	lastCheck    time.Time
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log, lastCheck: time.Now()}
}

func (mm *MonitoringManager) IncrEventsPublished() {
	atomic.AddUint64(&mm.eventsPublished, 1)
	atomic.AddUint64(&mm.windowEvents, 1)
}

func (mm *MonitoringManager) IncrDomainsCreated() { atomic.AddUint64(&mm.domainsCreated, 1) }
func (mm *MonitoringManager) IncrDomainsClosed()  { atomic.AddUint64(&mm.domainsClosed, 1) }
func (mm *MonitoringManager) IncrCommitsOK()      { atomic.AddUint64(&mm.commitsSucceeded, 1) }

// UpdateProcess stores the latest gopsutil self-stats from the heartbeat.
func (mm *MonitoringManager) UpdateProcess(rss uint64, cpu float64, status string) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.latestStats.ProcessRSSMb = rss / 1024 / 1024
	mm.latestStats.ProcessCPU = cpu
	mm.latestStats.ProcessStatus = status
}

// Listen refreshes the snapshot once a second until ctx is done.
func (mm *MonitoringManager) Listen(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			mm.log.Info("Monitoring manager stopped")
			return
		case <-ticker.C:
			mm.updateStats()
		}
	}
}

func (mm *MonitoringManager) updateStats() {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	now := time.Now()
	duration := now.Sub(mm.lastCheck).Seconds()
	if duration > 0 {
		window := atomic.SwapUint64(&mm.windowEvents, 0)
		mm.latestStats.EventsPerSecond = float64(window) / duration
	}
	mm.lastCheck = now

	mm.latestStats.EventsPublished = atomic.LoadUint64(&mm.eventsPublished)
	mm.latestStats.DomainsCreated = atomic.LoadUint64(&mm.domainsCreated)
	mm.latestStats.DomainsClosed = atomic.LoadUint64(&mm.domainsClosed)
	mm.latestStats.CommitsSucceeded = atomic.LoadUint64(&mm.commitsSucceeded)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	mm.latestStats.AllocMemMb = m.Alloc / 1024 / 1024
	mm.latestStats.NumGC = m.NumGC
}

func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.latestStats
}
