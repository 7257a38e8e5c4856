package api

import (
	"sync/atomic"
	"time"
)

// Metrics tracks backend call counts and latency for one Client
type Metrics struct {
	calls    int64
	errors   int64
	canceled int64
	latency  int64 // Total latency in nanoseconds
}

// MetricsSnapshot is a point-in-time copy of Metrics
type MetricsSnapshot struct {
	Calls    int64
	Errors   int64
	Canceled int64
	Latency  time.Duration
}

func (m *Metrics) snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Calls:    atomic.LoadInt64(&m.calls),
		Errors:   atomic.LoadInt64(&m.errors),
		Canceled: atomic.LoadInt64(&m.canceled),
		Latency:  time.Duration(atomic.LoadInt64(&m.latency)),
	}
}

func (m *Metrics) reset() {
	atomic.StoreInt64(&m.calls, 0)
	atomic.StoreInt64(&m.errors, 0)
	atomic.StoreInt64(&m.canceled, 0)
	atomic.StoreInt64(&m.latency, 0)
}

// record records one settled call
func (m *Metrics) record(duration time.Duration, err error) {
	atomic.AddInt64(&m.calls, 1)
	atomic.AddInt64(&m.latency, duration.Nanoseconds())
	if err == nil {
		return
	}
	if IsCanceled(err) {
		atomic.AddInt64(&m.canceled, 1)
		return
	}
	atomic.AddInt64(&m.errors, 1)
}

// AverageLatency returns the average latency in milliseconds
func (s MetricsSnapshot) AverageLatency() float64 {
	if s.Calls == 0 {
		return 0
	}
	avgNs := float64(s.Latency.Nanoseconds()) / float64(s.Calls)
	return avgNs / 1e6
}

// ErrorRate returns the error rate as a percentage
func (s MetricsSnapshot) ErrorRate() float64 {
	if s.Calls == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Calls) * 100
}
