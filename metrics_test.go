package kiteconnect

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	close(ch)
	m := <-ch
	var pb dto.Metric
	require.NoError(t, m.Write(&pb))
	if pb.Counter != nil {
		return pb.Counter.GetValue()
	}
	return 0
}

func TestNewMetrics_RegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	m.ChunksTotal.Inc()
	require.Equal(t, 1.0, counterValue(t, m.ChunksTotal))
}

func TestRequestTimer_StopRecordsDurationAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	timer := m.StartRequest("orders.place")
	time.Sleep(time.Millisecond)
	timer.Stop("success")

	got := counterValue(t, m.RequestsTotal.WithLabelValues("orders.place", "success"))
	require.Equal(t, 1.0, got)
}

func TestRequestTimer_StopIsNilSafeWithoutMetrics(t *testing.T) {
	var timer *RequestTimer
	require.NotPanics(t, func() {
		timer = (&Metrics{}).StartRequest("x")
		timer.metrics = nil
		timer.Stop("success")
	})
}
