package web

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_RequestIDInjector(t *testing.T) {
	testCases := []struct {
		name       string
		header     string
		expectSame bool
	}{
		{name: "Propagates incoming header", header: "abc-123", expectSame: true},
		{name: "Generates an ID when missing", header: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var seen string
			handler := RequestIDInjector(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = GetRequestID(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(HeaderRequestID, tc.header)
			}
			rr := httptest.NewRecorder()

			// when
			handler.ServeHTTP(rr, req)

			// then
			assert.NotEmpty(t, seen)
			assert.Equal(t, seen, rr.Header().Get(HeaderRequestID))
			if tc.expectSame {
				assert.Equal(t, tc.header, seen)
			}
		})
	}
}

func Test_Recoverer(t *testing.T) {
	// given
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := Recoverer(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()

	// when
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	// then
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, buf.String(), "Panic recovered")
}

func Test_RespondJSON(t *testing.T) {
	// given
	rr := httptest.NewRecorder()

	// when
	RespondError(rr, slog.Default(), http.StatusBadRequest, "bad input")

	// then
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"bad input"}`, rr.Body.String())
}
