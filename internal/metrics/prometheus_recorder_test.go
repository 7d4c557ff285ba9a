package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("current", StageRead, 150*time.Millisecond)
	pr.ObserveVersionDuration("current", 500*time.Millisecond)
	pr.IncVersionResult("current", ResultSuccess)
	pr.SetVersionDocs("current", 12, 3)
	pr.IncDocFailure("1.0")
	pr.IncDocFailure("1.0")

	assert.Equal(t, 1.0, testutil.ToFloat64(pr.versionResults.WithLabelValues("current", "success")))
	assert.Equal(t, 12.0, testutil.ToFloat64(pr.docs.WithLabelValues("current", "published")))
	assert.Equal(t, 3.0, testutil.ToFloat64(pr.docs.WithLabelValues("current", "draft")))
	assert.Equal(t, 2.0, testutil.ToFloat64(pr.docFailures.WithLabelValues("1.0")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestPrometheusRecorder_Textfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.SetVersionDocs("current", 4, 0)

	p := filepath.Join(t.TempDir(), "docgraph.prom")
	require.NoError(t, pr.WriteTextfile(p))
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `docgraph_docs{state="published",version="current"} 4`)
}

func TestPrometheusRecorder_HTTPHandler(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncVersionResult("current", ResultFailed)

	rec := httptest.NewRecorder()
	pr.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "docgraph_version_loads_total")
}

func TestResultFor(t *testing.T) {
	assert.Equal(t, ResultSuccess, ResultFor(nil, false))
	assert.Equal(t, ResultFailed, ResultFor(errors.New("x"), false))
	assert.Equal(t, ResultCanceled, ResultFor(errors.New("x"), true))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("current", StageLink, time.Second)
	r.ObserveVersionDuration("current", time.Second)
	r.IncVersionResult("current", ResultSuccess)
	r.SetVersionDocs("current", 1, 1)
	r.IncDocFailure("current")
}
