package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	messages []string
	levels   []Level
}

func (s *captureSink) Write(level Level, timestamp time.Time, message string) error {
	s.levels = append(s.levels, level)
	s.messages = append(s.messages, message)
	return nil
}

func (s *captureSink) Close() error { return nil }

func TestParseLevel(t *testing.T) {
	for input, want := range map[string]Level{
		"debug": DebugLevel,
		"INFO":  InfoLevel,
		"warn":  WarnLevel,
		"ERROR": ErrorLevel,
	} {
		level, err := ParseLevel(input)
		require.NoError(t, err)
		assert.Equal(t, want, level)
	}

	_, err := ParseLevel("shouting")
	assert.Error(t, err)
}

func TestLogger_LevelFiltering(t *testing.T) {
	sink := &captureSink{}
	log := New(sink)

	log.Debug("hidden at default level")
	log.Info("info %d", 1)
	log.Warn("warn")

	require.Len(t, sink.messages, 2)
	assert.Equal(t, "info 1", sink.messages[0])
	assert.Equal(t, []Level{InfoLevel, WarnLevel}, sink.levels)

	log.SetLevel(DebugLevel)
	log.Debug("now visible")
	assert.Len(t, sink.messages, 3)
}

func TestFileSink(t *testing.T) {
	filename := t.TempDir() + "/logs/build.log"
	sink, err := NewFileSink(filename)
	require.NoError(t, err)

	require.NoError(t, sink.Write(InfoLevel, time.Now(), "hello"))
	require.NoError(t, sink.Close())
}
