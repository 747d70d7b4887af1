package fhirclient

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofhir/client/resolve"
)

// Metrics tracks client activity using lock-free atomic operations.
// All methods are safe for concurrent use.
type Metrics struct {
	// HTTP request counts
	requestsTotal  atomic.Uint64
	requestsFailed atomic.Uint64

	// Timing (stored as nanoseconds)
	requestTimeTotal atomic.Uint64
	requestTimeMin   atomic.Uint64
	requestTimeMax   atomic.Uint64

	// Resolution outcomes by source
	resolvedContained atomic.Uint64
	resolvedBundle    atomic.Uint64
	resolvedCache     atomic.Uint64
	resolvedRemote    atomic.Uint64
	resolveFailed     atomic.Uint64

	// Per-operation timing
	operations sync.Map // map[string]*operationMetrics
}

// operationMetrics tracks metrics for a single client operation.
type operationMetrics struct {
	invocations atomic.Uint64
	failures    atomic.Uint64
	totalTime   atomic.Uint64 // nanoseconds
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	// Initialize min to max uint64 so first value becomes the minimum
	m.requestTimeMin.Store(^uint64(0))
	return m
}

// --- Recording Methods ---

// RecordRequest records a completed HTTP request.
func (m *Metrics) RecordRequest(duration time.Duration, failed bool) {
	m.requestsTotal.Add(1)
	if failed {
		m.requestsFailed.Add(1)
	}

	ns := uint64(duration.Nanoseconds()) //nolint:gosec // Safe: nanoseconds are always positive for valid durations
	m.requestTimeTotal.Add(ns)

	// Update min (CAS loop)
	for {
		old := m.requestTimeMin.Load()
		if ns >= old {
			break
		}
		if m.requestTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}

	// Update max (CAS loop)
	for {
		old := m.requestTimeMax.Load()
		if ns <= old {
			break
		}
		if m.requestTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordOperation records one client operation.
func (m *Metrics) RecordOperation(name string, duration time.Duration, failed bool) {
	om := m.getOrCreateOperation(name)
	om.invocations.Add(1)
	if failed {
		om.failures.Add(1)
	}
	om.totalTime.Add(uint64(duration.Nanoseconds())) //nolint:gosec // Safe: nanoseconds are always positive
}

func (m *Metrics) getOrCreateOperation(name string) *operationMetrics {
	if v, ok := m.operations.Load(name); ok {
		return v.(*operationMetrics)
	}
	om := &operationMetrics{}
	actual, _ := m.operations.LoadOrStore(name, om)
	return actual.(*operationMetrics)
}

// RecordResolution records the outcome of a reference resolution.
func (m *Metrics) RecordResolution(source resolve.Source, err error) {
	if err != nil {
		m.resolveFailed.Add(1)
		return
	}
	switch source {
	case resolve.SourceContained:
		m.resolvedContained.Add(1)
	case resolve.SourceBundle:
		m.resolvedBundle.Add(1)
	case resolve.SourceCache:
		m.resolvedCache.Add(1)
	case resolve.SourceRemote:
		m.resolvedRemote.Add(1)
	}
}

// --- Query Methods ---

// RequestsTotal returns the number of HTTP requests sent.
func (m *Metrics) RequestsTotal() uint64 {
	return m.requestsTotal.Load()
}

// RequestsFailed returns the number of HTTP requests that failed.
func (m *Metrics) RequestsFailed() uint64 {
	return m.requestsFailed.Load()
}

// AverageRequestTime returns the average request duration.
func (m *Metrics) AverageRequestTime() time.Duration {
	total := m.requestsTotal.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(m.requestTimeTotal.Load() / total) //nolint:gosec // Safe: nanoseconds within int64 range
}

// MinRequestTime returns the minimum request duration.
func (m *Metrics) MinRequestTime() time.Duration {
	minVal := m.requestTimeMin.Load()
	if minVal == ^uint64(0) {
		return 0
	}
	return time.Duration(minVal) //nolint:gosec // Safe: nanoseconds within int64 range
}

// MaxRequestTime returns the maximum request duration.
func (m *Metrics) MaxRequestTime() time.Duration {
	return time.Duration(m.requestTimeMax.Load()) //nolint:gosec // Safe: nanoseconds within int64 range
}

// LocalResolutions returns resolutions answered without network access.
func (m *Metrics) LocalResolutions() uint64 {
	return m.resolvedContained.Load() + m.resolvedBundle.Load() + m.resolvedCache.Load()
}

// RemoteResolutions returns resolutions that needed a fetch.
func (m *Metrics) RemoteResolutions() uint64 {
	return m.resolvedRemote.Load()
}

// FailedResolutions returns resolutions that ended in an error.
func (m *Metrics) FailedResolutions() uint64 {
	return m.resolveFailed.Load()
}

// OperationStats holds statistics for one client operation.
type OperationStats struct {
	Name        string        `json:"name"`
	Invocations uint64        `json:"invocations"`
	Failures    uint64        `json:"failures"`
	TotalTime   time.Duration `json:"total_time"`
	AvgTime     time.Duration `json:"avg_time"`
}

func (om *operationMetrics) stats(name string) OperationStats {
	invocations := om.invocations.Load()
	totalTime := om.totalTime.Load()

	var avgTime time.Duration
	if invocations > 0 {
		avgTime = time.Duration(totalTime / invocations) //nolint:gosec // Safe: nanoseconds within int64 range
	}
	return OperationStats{
		Name:        name,
		Invocations: invocations,
		Failures:    om.failures.Load(),
		TotalTime:   time.Duration(totalTime), //nolint:gosec // Safe: nanoseconds within int64 range
		AvgTime:     avgTime,
	}
}

// OperationStats returns statistics for a specific operation.
func (m *Metrics) OperationStats(name string) (OperationStats, bool) {
	v, ok := m.operations.Load(name)
	if !ok {
		return OperationStats{Name: name}, false
	}
	return v.(*operationMetrics).stats(name), true
}

// AllOperationStats returns statistics for all operations, sorted by name.
func (m *Metrics) AllOperationStats() []OperationStats {
	var stats []OperationStats
	m.operations.Range(func(key, value any) bool {
		stats = append(stats, value.(*operationMetrics).stats(key.(string)))
		return true
	})
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// --- Export Methods ---

// Snapshot represents a point-in-time snapshot of all metrics.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`

	RequestsTotal  uint64 `json:"requests_total"`
	RequestsFailed uint64 `json:"requests_failed"`

	AvgRequestTimeNs uint64 `json:"avg_request_time_ns"`
	MinRequestTimeNs uint64 `json:"min_request_time_ns"`
	MaxRequestTimeNs uint64 `json:"max_request_time_ns"`

	ResolvedContained uint64 `json:"resolved_contained"`
	ResolvedBundle    uint64 `json:"resolved_bundle"`
	ResolvedCache     uint64 `json:"resolved_cache"`
	ResolvedRemote    uint64 `json:"resolved_remote"`
	ResolveFailed     uint64 `json:"resolve_failed"`

	Operations []OperationStats `json:"operations,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	total := m.requestsTotal.Load()

	var avg uint64
	if total > 0 {
		avg = m.requestTimeTotal.Load() / total
	}
	minTime := m.requestTimeMin.Load()
	if minTime == ^uint64(0) {
		minTime = 0
	}

	return Snapshot{
		Timestamp:         time.Now(),
		RequestsTotal:     total,
		RequestsFailed:    m.requestsFailed.Load(),
		AvgRequestTimeNs:  avg,
		MinRequestTimeNs:  minTime,
		MaxRequestTimeNs:  m.requestTimeMax.Load(),
		ResolvedContained: m.resolvedContained.Load(),
		ResolvedBundle:    m.resolvedBundle.Load(),
		ResolvedCache:     m.resolvedCache.Load(),
		ResolvedRemote:    m.resolvedRemote.Load(),
		ResolveFailed:     m.resolveFailed.Load(),
		Operations:        m.AllOperationStats(),
	}
}

// Export returns metrics as a flat map for external systems.
func (m *Metrics) Export() map[string]any {
	s := m.Snapshot()
	out := map[string]any{
		"requests_total":      s.RequestsTotal,
		"requests_failed":     s.RequestsFailed,
		"avg_request_time_ns": s.AvgRequestTimeNs,
		"min_request_time_ns": s.MinRequestTimeNs,
		"max_request_time_ns": s.MaxRequestTimeNs,
		"resolved_contained":  s.ResolvedContained,
		"resolved_bundle":     s.ResolvedBundle,
		"resolved_cache":      s.ResolvedCache,
		"resolved_remote":     s.ResolvedRemote,
		"resolve_failed":      s.ResolveFailed,
	}
	for _, op := range s.Operations {
		out["operation_"+op.Name+"_total"] = op.Invocations
		out["operation_"+op.Name+"_failures"] = op.Failures
	}
	return out
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.requestsTotal.Store(0)
	m.requestsFailed.Store(0)
	m.requestTimeTotal.Store(0)
	m.requestTimeMin.Store(^uint64(0))
	m.requestTimeMax.Store(0)
	m.resolvedContained.Store(0)
	m.resolvedBundle.Store(0)
	m.resolvedCache.Store(0)
	m.resolvedRemote.Store(0)
	m.resolveFailed.Store(0)
	m.operations.Range(func(key, _ any) bool {
		m.operations.Delete(key)
		return true
	})
}
