package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/responsewatch/backend/internal/models"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Webhook("inbound", "tracked")
	m.Webhook("inbound", "tracked")
	m.AlertSent(models.TierWarning)
	m.AlertFailed(models.TierCritical)

	require.Equal(t, 2.0, testutil.ToFloat64(m.webhooks.WithLabelValues("inbound", "tracked")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.alertsSent.WithLabelValues("warning")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.alertFailures.WithLabelValues("critical")))
}

func TestSweepGauges(t *testing.T) {
	m := New()
	m.Sweep(4, 3, 2, 1, true)
	require.Equal(t, 4.0, testutil.ToFloat64(m.tracked))
	require.Equal(t, 3.0, testutil.ToFloat64(m.pending))
	require.Equal(t, 1.0, testutil.ToFloat64(m.businessOpen))

	m.Sweep(0, 0, 0, 0, false)
	require.Equal(t, 0.0, testutil.ToFloat64(m.businessOpen))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.AlertSent(models.TierCritical)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), `responsewatch_alerts_sent_total{tier="critical"} 1`))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Webhook("inbound", "tracked")
	m.AlertSent(models.TierWarning)
	m.Sweep(1, 1, 0, 0, true)
	require.Nil(t, m.Registry())
}
