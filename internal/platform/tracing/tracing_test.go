package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_NoneIsNoop(t *testing.T) {
	p, err := NewProvider(Config{Exporter: "none"})
	require.NoError(t, err)
	assert.NotNil(t, p.Tracer())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_Unsupported(t *testing.T) {
	_, err := NewProvider(Config{Exporter: "zipkin"})
	assert.Error(t, err)
}
