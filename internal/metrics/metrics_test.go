package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/narsvm/internal/navm"
)

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ObserveCommand(navm.NSE, 0)
	m.ObserveCommand(navm.CYC, 10)
	m.ObserveCommand(navm.CYC, 5)
	m.ObserveOutputs([]navm.Output{{Type: navm.OutIn}, {Type: navm.OutOut}, {Type: navm.OutOut}})
	m.ObserveState(4, 2, 1)

	assert.Equal(t, 15.0, testutil.ToFloat64(m.cycles))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.commands.WithLabelValues("CYC")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("NSE")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.outputs.WithLabelValues("OUT")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.concepts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.novelTasks))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.ErrorContains(t, err, "register metrics")
}

func TestHandler_ServesText(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	m.ObserveCommand(navm.CYC, 3)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "narsvm_cycles_total 3"), string(body))
}
