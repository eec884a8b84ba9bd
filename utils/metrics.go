package utils

import (
	"sync"
	"time"
)

// Metrics holds application counters
type Metrics struct {
	mu sync.RWMutex

	// Request metrics
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Rent ledger metrics
	PeriodsCreated    int64
	PlannedActivated  int64
	PlannedDeleted    int64
	LastLedgerWrite   time.Time
	SchedulesComputed int64

	// Error metrics
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics returns the shared metrics instance
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			ErrorTypes: make(map[string]int64),
		}
	})
	return metrics
}

// RecordRequest records an HTTP request
func (m *Metrics) RecordRequest(duration time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if failed {
		m.FailedRequests++
	}
}

// RecordLedgerOperation records a rent ledger write
func (m *Metrics) RecordLedgerOperation(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastLedgerWrite = time.Now()

	switch operation {
	case "create":
		m.PeriodsCreated++
	case "activate":
		m.PlannedActivated++
	case "delete":
		m.PlannedDeleted++
	}
}

// RecordScheduleComputed records one amortization schedule computation
func (m *Metrics) RecordScheduleComputed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SchedulesComputed++
}

// RecordError records an error occurrence
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}

	m.ErrorTypes[errorType]++
}

// Snapshot returns a copy of the current counters for reporting
func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"totalRequests":     m.TotalRequests,
		"failedRequests":    m.FailedRequests,
		"averageLatencyMs":  m.AverageLatency.Milliseconds(),
		"periodsCreated":    m.PeriodsCreated,
		"plannedActivated":  m.PlannedActivated,
		"plannedDeleted":    m.PlannedDeleted,
		"schedulesComputed": m.SchedulesComputed,
		"errorCount":        m.ErrorCount,
	}
}
