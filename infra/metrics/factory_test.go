package metrics

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/isnet/core/factory"
	coremetrics "github.com/kilianp07/isnet/core/metrics"
)

func TestNewSink_Registered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isnet.prom")
	sink, err := coremetrics.NewSink([]factory.ModuleConfig{
		{Type: "nop"},
		{Type: "prometheus", Conf: map[string]any{"path": path}},
	})
	require.NoError(t, err)
	require.NoError(t, sink.RecordRun(coremetrics.RunEvent{Status: "Optimal"}))
	assert.FileExists(t, path)
}

func TestNewSink_MQTTRequiresBroker(t *testing.T) {
	_, err := coremetrics.NewSink([]factory.ModuleConfig{{Type: "mqtt", Conf: map[string]any{"topic": "x"}}})
	assert.Error(t, err)
}
