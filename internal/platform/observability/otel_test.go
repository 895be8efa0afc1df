package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_LoggerCarriesServiceAndLevel(t *testing.T) {
	var buf bytes.Buffer
	inst, err := Setup(context.Background(), Settings{
		ServiceName: "tracker-test",
		Component:   "api",
		Environment: "test",
		LogLevel:    "warn",
		LogOutput:   &buf,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = inst.Shutdown(context.Background()) })

	inst.Logger.Info("dropped")
	inst.Logger.Warn("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line), buf.String())
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "tracker-test", line["service"])

	_, span := inst.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}

func TestSetup_RequiresServiceName(t *testing.T) {
	_, err := Setup(context.Background(), Settings{})
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestInstruments_NilSafe(t *testing.T) {
	var inst *Instruments
	require.NoError(t, inst.Shutdown(context.Background()))
	assert.NotNil(t, inst.Tracer("x"))
	assert.NotNil(t, inst.Meter("x"))
}
