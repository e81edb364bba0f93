package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/isnet/core/factory"
)

type recordSink struct {
	count  int
	fail   bool
	closed bool
}

func (r *recordSink) RecordRun(RunEvent) error {
	r.count++
	if r.fail {
		return errors.New("sink down")
	}
	return nil
}

func (r *recordSink) Close() error {
	r.closed = true
	return nil
}

// TestMultiSink ensures events reach every sink even when one fails.
func TestMultiSink(t *testing.T) {
	s1 := &recordSink{fail: true}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2, NopSink{})
	err := m.RecordRun(RunEvent{RunID: "r"})
	require.Error(t, err)
	assert.Equal(t, 1, s1.count)
	assert.Equal(t, 1, s2.count)

	require.NoError(t, m.Close())
	assert.True(t, s1.closed)
	assert.True(t, s2.closed)
}

func TestNewSink(t *testing.T) {
	require.NoError(t, RegisterSink("record-test", func(map[string]any) (Sink, error) {
		return &recordSink{}, nil
	}))

	s, err := NewSink(nil)
	require.NoError(t, err)
	assert.IsType(t, NopSink{}, s)

	s, err = NewSink([]factory.ModuleConfig{{Type: "record-test"}})
	require.NoError(t, err)
	assert.IsType(t, &recordSink{}, s)

	s, err = NewSink([]factory.ModuleConfig{{Type: "record-test"}, {Type: "record-test"}})
	require.NoError(t, err)
	multi, ok := s.(*MultiSink)
	require.True(t, ok)
	assert.Len(t, multi.Sinks, 2)

	_, err = NewSink([]factory.ModuleConfig{{Type: "record-test"}, {Type: "missing"}})
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.Error(t, Config{Sinks: []factory.ModuleConfig{{}}}.Validate())
}
