package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SagaMetrics содержит метрики для saga операций.
type SagaMetrics struct {
	// Счётчики операций
	sagaStarted   prometheus.Counter
	sagaCompleted prometheus.Counter
	sagaFailed    prometheus.Counter
	compensations prometheus.Counter

	// Гистограммы времени выполнения
	sagaDuration prometheus.Histogram
	stepDuration *prometheus.HistogramVec

	// Gauge для активных саг
	activeSagas prometheus.Gauge
}

// NewSagaMetrics создаёт новый экземпляр метрик saga.
func NewSagaMetrics() *SagaMetrics {
	return newSagaMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newSagaMetricsWithRegisterer(registerer prometheus.Registerer) *SagaMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &SagaMetrics{
		sagaStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ordersaga_saga_started_total",
			Help: "Total number of order sagas started",
		}),
		sagaCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ordersaga_saga_completed_total",
			Help: "Total number of order sagas completed successfully",
		}),
		sagaFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ordersaga_saga_failed_total",
			Help: "Total number of order sagas failed",
		}),
		compensations: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ordersaga_saga_compensations_total",
			Help: "Total number of compensation runs",
		}),
		sagaDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "ordersaga_saga_duration_seconds",
			Help:    "Duration of order sagas in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		stepDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "ordersaga_saga_step_duration_seconds",
			Help:    "Duration of individual saga steps in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"step"}),
		activeSagas: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "ordersaga_active_sagas",
			Help: "Number of currently active order sagas",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordSagaStarted увеличивает счётчик запущенных саг.
func (m *SagaMetrics) RecordSagaStarted() {
	m.sagaStarted.Inc()
	m.activeSagas.Inc()
}

// RecordSagaCompleted увеличивает счётчик завершённых саг.
func (m *SagaMetrics) RecordSagaCompleted() {
	m.sagaCompleted.Inc()
}

// RecordSagaFailed увеличивает счётчик неудачных саг.
func (m *SagaMetrics) RecordSagaFailed() {
	m.sagaFailed.Inc()
}

// RecordCompensation увеличивает счётчик компенсационных прогонов.
func (m *SagaMetrics) RecordCompensation() {
	m.compensations.Inc()
}

// RecordSagaInFlightFinished уменьшает количество активных саг.
func (m *SagaMetrics) RecordSagaInFlightFinished() {
	m.activeSagas.Dec()
}

// RecordSagaDuration записывает время выполнения саги.
func (m *SagaMetrics) RecordSagaDuration(duration time.Duration) {
	m.sagaDuration.Observe(duration.Seconds())
}

// RecordStepDuration записывает время выполнения шага саги.
func (m *SagaMetrics) RecordStepDuration(step string, duration time.Duration) {
	m.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}
