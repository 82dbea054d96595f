package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveTranslation("md", 150*time.Millisecond, OutcomeSuccess)
	pr.ObserveTranslation("md", 50*time.Millisecond, OutcomeSuccess)
	pr.ObserveTranslation("xml", time.Millisecond, OutcomeFailed)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]int{}
	for _, mf := range mfs {
		byName[mf.GetName()] = len(mf.GetMetric())
		if mf.GetName() == "guidexml_translations_total" {
			var total float64
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
			assert.Equal(t, 3.0, total)
		}
	}
	assert.Equal(t, 2, byName["guidexml_translations_total"], "md/success and xml/failed series")
	assert.Equal(t, 2, byName["guidexml_translate_duration_seconds"])
	assert.Same(t, reg, pr.Registry())
}

func TestPrometheusRecorder_Handler(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.ObserveTranslation("txt", time.Millisecond, OutcomeSuccess)

	rec := httptest.NewRecorder()
	pr.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `guidexml_translations_total{format="txt",outcome="success"} 1`)
}

func TestMulti(t *testing.T) {
	stats := NewLatencyStats(time.Hour)
	pr := NewPrometheusRecorder(nil)
	rec := Multi(stats, nil, pr, NoopRecorder{})
	rec.ObserveTranslation("md", 10*time.Millisecond, OutcomeSuccess)

	assert.Equal(t, 1, stats.Snapshot().Count)
	mfs, err := pr.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}
