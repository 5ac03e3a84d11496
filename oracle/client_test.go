package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reilabs/cairo-hints-go/oracleerr"
	"github.com/reilabs/cairo-hints-go/schema"
)

func ctxBG() context.Context { return context.Background() }

func TestInvokeSyncBareObjectResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sqrt", r.URL.Path)
		assert.Equal(t, "qwerty", r.Header.Get("x-admin-api-key"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(1764), body["n"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"n":42}`))
	}))
	defer srv.Close()

	c := New()
	cfg := schema.ServerConfig{ServerURL: srv.URL}
	result, err := c.Invoke(ctxBG(), cfg, "sqrt", map[string]any{"n": float64(1764)})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": float64(42)}, result)
}

func TestInvokeSyncRejectsNonObjectResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`42`))
	}))
	defer srv.Close()

	c := New()
	cfg := schema.ServerConfig{ServerURL: srv.URL}
	_, err := c.Invoke(ctxBG(), cfg, "sqrt", map[string]any{"n": float64(4)})
	require.Error(t, err)
	var taxErr *oracleerr.Error
	require.ErrorAs(t, err, &taxErr)
	assert.Equal(t, oracleerr.RpcFailure, taxErr.Category())
}

func TestInvokePollingCompletesAfterProcessingRounds(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/sqrt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jobId":"abc"}`))
	})
	mux.HandleFunc("/sqrt/status/abc", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&polls, 1)
		if n <= 2 {
			_, _ = w.Write([]byte(`{"status":"processing"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"completed","result":{"n":7}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New()
	cfg := schema.ServerConfig{
		ServerURL: srv.URL,
		Polling:   true,
		PollingConfig: &schema.PollingConfig{
			MaxAttempts:      10,
			PollingIntervalS: 0,
			RequestTimeoutS:  5,
			OverallTimeoutS:  30,
		},
	}
	result, err := c.Invoke(ctxBG(), cfg, "sqrt", map[string]any{"n": float64(49)})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": float64(7)}, result)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&polls), int32(3))
}

func TestInvokePollingTimesOutAfterMaxAttempts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sqrt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jobId":"abc"}`))
	})
	mux.HandleFunc("/sqrt/status/abc", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"processing"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New()
	cfg := schema.ServerConfig{
		ServerURL: srv.URL,
		Polling:   true,
		PollingConfig: &schema.PollingConfig{
			MaxAttempts:      2,
			PollingIntervalS: 0,
			RequestTimeoutS:  5,
			OverallTimeoutS:  30,
		},
	}
	_, err := c.Invoke(ctxBG(), cfg, "sqrt", map[string]any{"n": float64(49)})
	require.Error(t, err)
	var taxErr *oracleerr.Error
	require.ErrorAs(t, err, &taxErr)
	assert.Equal(t, oracleerr.PollingTimeout, taxErr.Category())
}

func TestHealthCheckReportsUnhealthyStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health_check", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"degraded"}`))
	}))
	defer srv.Close()

	c := New()
	err := c.HealthCheck(ctxBG(), srv.URL)
	require.Error(t, err)
}

func TestHealthCheckOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := New()
	require.NoError(t, c.HealthCheck(ctxBG(), srv.URL))
}
