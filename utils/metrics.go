package utils

import (
	"sync"
	"time"
)

// Metrics содержит метрики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики запросов
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Метрики членства
	AthletesCreated   int64
	AthletesDeleted   int64
	RenewalsProcessed int64

	// Метрики шкафчиков
	ShelfAssignments int64
	ShelfReleases    int64
	ShelfConflicts   int64

	// Метрики ошибок
	ErrorCount    int64
	LastErrorTime time.Time
}

// MetricsSnapshot представляет метрики для отдачи наружу
type MetricsSnapshot struct {
	TotalRequests     int64  `json:"total_requests"`
	FailedRequests    int64  `json:"failed_requests"`
	AverageLatencyMs  int64  `json:"average_latency_ms"`
	AthletesCreated   int64  `json:"athletes_created"`
	AthletesDeleted   int64  `json:"athletes_deleted"`
	RenewalsProcessed int64  `json:"renewals_processed"`
	ShelfAssignments  int64  `json:"shelf_assignments"`
	ShelfReleases     int64  `json:"shelf_releases"`
	ShelfConflicts    int64  `json:"shelf_conflicts"`
	ErrorCount        int64  `json:"error_count"`
	LastErrorTime     string `json:"last_error_time,omitempty"`
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics возвращает экземпляр метрик
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{}
	})
	return metrics
}

// RecordRequest записывает метрики запроса
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

// RecordAthleteOperation записывает метрики операции с атлетом
func (m *Metrics) RecordAthleteOperation(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch operation {
	case "create":
		m.AthletesCreated++
	case "delete":
		m.AthletesDeleted++
	case "renew":
		m.RenewalsProcessed++
	}

	if err != nil {
		m.recordErrorLocked()
	}
}

// RecordShelfOperation записывает метрики операции со шкафчиком
func (m *Metrics) RecordShelfOperation(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch operation {
	case "assign":
		m.ShelfAssignments++
	case "release":
		m.ShelfReleases++
	case "conflict":
		m.ShelfConflicts++
	}

	if err != nil {
		m.recordErrorLocked()
	}
}

// Snapshot возвращает копию метрик для сериализации
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := MetricsSnapshot{
		TotalRequests:     m.TotalRequests,
		FailedRequests:    m.FailedRequests,
		AverageLatencyMs:  m.AverageLatency.Milliseconds(),
		AthletesCreated:   m.AthletesCreated,
		AthletesDeleted:   m.AthletesDeleted,
		RenewalsProcessed: m.RenewalsProcessed,
		ShelfAssignments:  m.ShelfAssignments,
		ShelfReleases:     m.ShelfReleases,
		ShelfConflicts:    m.ShelfConflicts,
		ErrorCount:        m.ErrorCount,
	}
	if !m.LastErrorTime.IsZero() {
		snapshot.LastErrorTime = m.LastErrorTime.Format(time.RFC3339)
	}
	return snapshot
}

// recordErrorLocked увеличивает счетчик ошибок; вызывается под мьютексом
func (m *Metrics) recordErrorLocked() {
	m.ErrorCount++
	m.LastErrorTime = time.Now()
}
