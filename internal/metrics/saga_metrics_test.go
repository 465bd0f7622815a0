package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := c.Write(metric); err != nil {
		t.Fatalf("write counter: %v", err)
	}
	return metric.Counter.GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := g.Write(metric); err != nil {
		t.Fatalf("write gauge: %v", err)
	}
	return metric.Gauge.GetValue()
}

func TestNewSagaMetrics(t *testing.T) {
	m := newSagaMetricsWithRegisterer(prometheus.NewRegistry())

	if m.sagaStarted == nil || m.sagaCompleted == nil || m.sagaFailed == nil {
		t.Fatal("saga counters should not be nil")
	}
	if m.compensations == nil {
		t.Fatal("compensations counter should not be nil")
	}
	if m.sagaDuration == nil || m.stepDuration == nil {
		t.Fatal("duration histograms should not be nil")
	}
	if m.activeSagas == nil {
		t.Fatal("activeSagas gauge should not be nil")
	}
}

func TestNewSagaMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	// Повторная регистрация в том же registry переиспользует коллекторы.
	first := newSagaMetricsWithRegisterer(reg)
	second := newSagaMetricsWithRegisterer(reg)

	first.RecordSagaStarted()
	second.RecordSagaStarted()

	if got := counterValue(t, first.sagaStarted); got != 2.0 {
		t.Fatalf("expected shared counter value 2.0, got %f", got)
	}
}

func TestSagaLifecycleCounters(t *testing.T) {
	m := newSagaMetricsWithRegisterer(prometheus.NewRegistry())

	m.RecordSagaStarted()
	m.RecordSagaStarted()
	m.RecordSagaStarted()

	m.RecordSagaCompleted()
	m.RecordSagaInFlightFinished()

	m.RecordSagaFailed()
	m.RecordCompensation()
	m.RecordSagaInFlightFinished()

	if got := counterValue(t, m.sagaStarted); got != 3.0 {
		t.Fatalf("expected 3 started, got %f", got)
	}
	if got := counterValue(t, m.sagaCompleted); got != 1.0 {
		t.Fatalf("expected 1 completed, got %f", got)
	}
	if got := counterValue(t, m.sagaFailed); got != 1.0 {
		t.Fatalf("expected 1 failed, got %f", got)
	}
	if got := counterValue(t, m.compensations); got != 1.0 {
		t.Fatalf("expected 1 compensation, got %f", got)
	}
	if got := gaugeValue(t, m.activeSagas); got != 1.0 {
		t.Fatalf("expected 1 active saga, got %f", got)
	}
}

func TestRecordSagaDuration(t *testing.T) {
	m := newSagaMetricsWithRegisterer(prometheus.NewRegistry())

	m.RecordSagaDuration(100 * time.Millisecond)
	m.RecordSagaDuration(500 * time.Millisecond)
	m.RecordSagaDuration(time.Second)

	metric := &dto.Metric{}
	if err := m.sagaDuration.Write(metric); err != nil {
		t.Fatalf("write histogram: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 3 {
		t.Fatalf("expected 3 samples, got %d", metric.Histogram.GetSampleCount())
	}
	sum := metric.Histogram.GetSampleSum()
	if sum < 1.5 || sum > 1.7 {
		t.Fatalf("expected sum around 1.6, got %f", sum)
	}
}

func TestRecordStepDuration(t *testing.T) {
	m := newSagaMetricsWithRegisterer(prometheus.NewRegistry())

	m.RecordStepDuration("reserve", 50*time.Millisecond)
	m.RecordStepDuration("confirm", 25*time.Millisecond)
	m.RecordStepDuration("reserve", 75*time.Millisecond)

	metric := &dto.Metric{}
	observer := m.stepDuration.WithLabelValues("reserve")
	if err := observer.(prometheus.Histogram).Write(metric); err != nil {
		t.Fatalf("write step histogram: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Fatalf("expected 2 samples for reserve, got %d", metric.Histogram.GetSampleCount())
	}
}
