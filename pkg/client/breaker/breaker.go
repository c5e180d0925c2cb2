// Package breaker wraps outgoing HTTP calls in a circuit breaker.
package breaker

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// StateChangeFunc is notified whenever the breaker changes state.
type StateChangeFunc func(name string, from, to gobreaker.State)

// serverError marks a 5xx response so the breaker counts it as a failure
// while the response itself is still handed to the caller.
type serverError struct {
	statusCode int
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server responded with status %d", e.statusCode)
}

// NewCircuitBreaker creates a breaker that trips on consecutive failures or on a failure rate
// above cfg.ErrorRatePercent once more than cfg.ConsecutiveFailures requests were seen.
// Transport errors and 5xx responses are failures, 4xx responses are not.
func NewCircuitBreaker(name string, cfg config.CircuitBreakerConfig, onChange StateChangeFunc) *gobreaker.CircuitBreaker[*http.Response] {
	maxRequests := cfg.MaxRequests
	if maxRequests == 0 {
		maxRequests = 1
	}
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: maxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	}
	if onChange != nil {
		st.OnStateChange = onChange
	}
	return gobreaker.NewCircuitBreaker[*http.Response](st)
}

// Transport is an http.RoundTripper that routes every request through a circuit breaker.
// While the breaker is open, RoundTrip fails fast with gobreaker.ErrOpenState.
type Transport struct {
	next http.RoundTripper
	cb   *gobreaker.CircuitBreaker[*http.Response]
}

// NewTransport wraps next, http.DefaultTransport when nil.
func NewTransport(next http.RoundTripper, cb *gobreaker.CircuitBreaker[*http.Response]) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{next: next, cb: cb}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.cb.Execute(func() (*http.Response, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, &serverError{statusCode: resp.StatusCode}
		}
		return resp, nil
	})
	var se *serverError
	if errors.As(err, &se) {
		return resp, nil
	}
	return resp, err
}
