package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelWarn},
		{"verbose", slog.LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in, slog.LevelWarn))
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("default hides info and time", func(t *testing.T) {
		var buf bytes.Buffer
		log := newLogger(&buf, false, "")

		log.Info("hidden")
		log.Warn("shown", "step", "EIP4337Manager")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "step=EIP4337Manager")
		assert.NotContains(t, out, "time=")
	})

	t.Run("env level", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger(&buf, false, "info").Info("deployed")
		assert.Contains(t, buf.String(), "deployed")
	})

	t.Run("debug adds source and time", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger(&buf, true, "error").Debug("details")

		out := buf.String()
		assert.Contains(t, out, "details")
		assert.Contains(t, out, "time=")
		assert.Contains(t, out, "source=")
	})
}

func TestShortPath(t *testing.T) {
	assert.Equal(t, "internal/usecase/run_pipeline.go", shortPath("/home/dev/sling/internal/usecase/run_pipeline.go"))
	assert.Equal(t, "pkg/create2/create2.go", shortPath("/go/src/sling/pkg/create2/create2.go"))
	assert.Equal(t, "main.go", shortPath("/tmp/main.go"))
}
