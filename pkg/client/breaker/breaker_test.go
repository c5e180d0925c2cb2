package breaker

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestServer answers with the queued status codes in order, then with 200.
func setupTestServer(t *testing.T, codes ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := int(calls.Add(1)) - 1
		if n < len(codes) {
			w.WriteHeader(codes[n])
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:             true,
		MaxRequests:         1,
		ConsecutiveFailures: 2,
		ErrorRatePercent:    100,
		OpenTimeout:         time.Minute,
	}
}

func Test_Transport_OpensAfterServerErrors(t *testing.T) {
	// given
	srv, calls := setupTestServer(t, http.StatusBadGateway, http.StatusServiceUnavailable)
	var transitions []gobreaker.State
	cb := NewCircuitBreaker("test", testConfig(), func(_ string, _, to gobreaker.State) {
		transitions = append(transitions, to)
	})
	client := &http.Client{Transport: NewTransport(nil, cb)}

	// when
	for range 2 {
		resp, err := client.Get(srv.URL)
		require.NoError(t, err, "5xx responses are returned to the caller")
		_ = resp.Body.Close()
	}
	_, err := client.Get(srv.URL)

	// then
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), calls.Load(), "open breaker must not reach the server")
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func Test_Transport_ClientErrorsDoNotTrip(t *testing.T) {
	// given
	srv, calls := setupTestServer(t, http.StatusNotFound, http.StatusBadRequest, http.StatusNotFound)
	cb := NewCircuitBreaker("test", testConfig(), nil)
	client := &http.Client{Transport: NewTransport(nil, cb)}

	// when
	for range 3 {
		resp, err := client.Get(srv.URL)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	// then
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
