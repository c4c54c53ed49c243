package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func labelValue(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

func TestRecordAPIRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer(reg)

	m.RecordAPIRequest("list_products", 20*time.Millisecond, nil)
	m.RecordAPIRequest("list_products", 30*time.Millisecond, nil)
	m.RecordAPIRequest("submit_order", time.Second, errors.New("boom"))

	families := gather(t, reg)
	requests := families["storefront_api_requests_total"]
	require.NotNil(t, requests)

	counts := map[string]float64{}
	for _, metric := range requests.GetMetric() {
		key := labelValue(metric, "operation") + "/" + labelValue(metric, "outcome")
		counts[key] = metric.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"list_products/ok": 2, "submit_order/error": 1}, counts)

	duration := families["storefront_api_request_duration_seconds"]
	require.NotNil(t, duration)
	assert.Len(t, duration.GetMetric(), 2)
}

func TestOrderAndSessionMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer(reg)

	m.RecordOrderPlaced()
	m.RecordOrderFailed()
	m.RecordOrderPlaced()
	m.RecordSessionStarted()
	m.RecordSessionStarted()
	m.RecordSessionEnded(true)

	families := gather(t, reg)
	assert.Equal(t, 2.0, families["storefront_orders_placed_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 1.0, families["storefront_orders_failed_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 1.0, families["storefront_active_sessions"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 1.0, families["storefront_sessions_expired_total"].GetMetric()[0].GetCounter().GetValue())
}

func TestRegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewWithRegisterer(reg)
	second := NewWithRegisterer(reg)

	first.RecordOrderPlaced()
	second.RecordOrderPlaced()

	families := gather(t, reg)
	assert.Equal(t, 2.0, families["storefront_orders_placed_total"].GetMetric()[0].GetCounter().GetValue())
}
