package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/abgdnv/storefront/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ContextHandler_AddsRequestID(t *testing.T) {
	// given
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))
	ctx := web.WithRequestID(context.Background(), "req-42")

	// when
	log.InfoContext(ctx, "hello", "component", "test")

	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "req-42", record["request_id"])
	assert.Equal(t, "test", record["component"])
	assert.NotContains(t, record, "trace_id")
}

func Test_ContextHandler_WithoutRequestID(t *testing.T) {
	// given
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil))).With("component", "test")

	// when
	log.Info("hello")

	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.NotContains(t, record, "request_id")
	assert.Equal(t, "test", record["component"])
}
