package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "session_scheduler"

// Metrics набор prometheus-метрик сервиса.
// Все методы Observe*/Inc* безопасны для nil-получателя, чтобы метрики можно было отключить в конфиге.
type Metrics struct {
	serviceName string

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbQueryErrors   *prometheus.CounterVec
	dbConnections   *prometheus.GaugeVec

	slotsGenerated    *prometheus.CounterVec
	slotsUnavailable  *prometheus.CounterVec
	skippedRecords    *prometheus.CounterVec
	policyDecisions   *prometheus.CounterVec
	bookingConflicts  *prometheus.CounterVec
	availabilityCache *prometheus.CounterVec
}

// New регистрирует метрики в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в переданном реестре (в тестах - prometheus.NewRegistry())
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		serviceName: serviceName,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		}, []string{"service", "method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "method", "route"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query latency",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"service", "operation"}),
		dbQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Database query errors",
		}, []string{"service", "operation"}),
		dbConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "connections",
			Help:      "Connection pool state",
		}, []string{"service", "state"}),
		slotsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "slots_generated_total",
			Help:      "Candidate slots produced",
		}, []string{"service", "flow"}),
		slotsUnavailable: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "slots_unavailable_total",
			Help:      "Candidate slots marked unavailable, by reason",
		}, []string{"service", "reason"}),
		skippedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "skipped_booking_records_total",
			Help:      "Malformed booking records ignored during conflict checks",
		}, []string{"service"}),
		policyDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "reschedule_decisions_total",
			Help:      "Reschedule policy evaluations, by resulting state",
		}, []string{"service", "state"}),
		bookingConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "booking_conflicts_total",
			Help:      "Writes rejected because the slot was taken",
		}, []string{"service", "operation"}),
		availabilityCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "availability_lookups_total",
			Help:      "Availability cache lookups, by result",
		}, []string{"service", "result"}),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dbQueryDuration,
		m.dbQueryErrors,
		m.dbConnections,
		m.slotsGenerated,
		m.slotsUnavailable,
		m.skippedRecords,
		m.policyDecisions,
		m.bookingConflicts,
		m.availabilityCache,
	)
	return m
}

// ObserveHTTPRequest фиксирует обработанный HTTP-запрос
func (m *Metrics) ObserveHTTPRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(m.serviceName, method, route, status).Inc()
	m.httpRequestDuration.WithLabelValues(m.serviceName, method, route).Observe(seconds)
}

// ObserveDBQuery фиксирует длительность запроса к БД и ошибку, если она была
func (m *Metrics) ObserveDBQuery(operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(m.serviceName, operation).Observe(seconds)
	if err != nil {
		m.dbQueryErrors.WithLabelValues(m.serviceName, operation).Inc()
	}
}

// SetDBConnections выставляет состояние пула соединений
func (m *Metrics) SetDBConnections(open, inUse, idle int) {
	if m == nil {
		return
	}
	m.dbConnections.WithLabelValues(m.serviceName, "open").Set(float64(open))
	m.dbConnections.WithLabelValues(m.serviceName, "in_use").Set(float64(inUse))
	m.dbConnections.WithLabelValues(m.serviceName, "idle").Set(float64(idle))
}

// ObserveSlots фиксирует количество сгенерированных слотов для сценария (booking/reschedule)
func (m *Metrics) ObserveSlots(flow string, generated int) {
	if m == nil {
		return
	}
	m.slotsGenerated.WithLabelValues(m.serviceName, flow).Add(float64(generated))
}

// IncSlotUnavailable фиксирует слот, помеченный недоступным
func (m *Metrics) IncSlotUnavailable(reason string) {
	if m == nil {
		return
	}
	m.slotsUnavailable.WithLabelValues(m.serviceName, reason).Inc()
}

// AddSkippedRecords фиксирует пропущенные битые записи бронирований
func (m *Metrics) AddSkippedRecords(n int) {
	if m == nil || n == 0 {
		return
	}
	m.skippedRecords.WithLabelValues(m.serviceName).Add(float64(n))
}

// IncPolicyDecision фиксирует решение политики переноса
func (m *Metrics) IncPolicyDecision(state string) {
	if m == nil {
		return
	}
	m.policyDecisions.WithLabelValues(m.serviceName, state).Inc()
}

// IncBookingConflict фиксирует отказ записи из-за занятого слота
func (m *Metrics) IncBookingConflict(operation string) {
	if m == nil {
		return
	}
	m.bookingConflicts.WithLabelValues(m.serviceName, operation).Inc()
}

// IncAvailabilityCache фиксирует попадание/промах кэша расписаний
func (m *Metrics) IncAvailabilityCache(result string) {
	if m == nil {
		return
	}
	m.availabilityCache.WithLabelValues(m.serviceName, result).Inc()
}
