package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Healthz(t *testing.T) {
	healthy := httptest.NewServer(Handler(func(context.Context) error { return nil }))
	defer healthy.Close()
	resp, err := http.Get(healthy.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	sick := httptest.NewServer(Handler(func(context.Context) error { return errors.New("pg down") }))
	defer sick.Close()
	resp2, err := http.Get(sick.URL + "/healthz")
	require.NoError(t, err)
	defer resp2.Body.Close()
	body, _ := io.ReadAll(resp2.Body)
	assert.Equal(t, http.StatusServiceUnavailable, resp2.StatusCode)
	assert.Contains(t, string(body), "pg down")
}

func TestNewTracker(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTracker(reg)

	m.Mutations.WithLabelValues("add").Inc()
	m.Mutations.WithLabelValues("add").Inc()
	m.WSClients.Set(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Mutations.WithLabelValues("add")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.WSClients))
}
