package observability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	require.Nil(t, parseHeaders(""))
	require.Nil(t, parseHeaders("junk, =x"))
	require.Equal(t, map[string]string{"a": "1", "b": "2=3"}, parseHeaders(" a=1 ,b=2=3,c="))
}

func TestOtelConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLER_RATIO", "4")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	cfg := OtelConfigFromEnv("cqox-api")
	require.True(t, cfg.Enabled)
	require.Equal(t, 1.0, cfg.SampleRatio)
	require.Equal(t, "cqox-api", cfg.ServiceName)
	require.Equal(t, "collector:4318", cfg.Endpoint)
}
