package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer
	New("info", "json", &buf).Info("hello", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	New("info", "text", &buf).Debug("hidden")
	assert.Empty(t, buf.String(), "debug is below info")

	buf.Reset()
	WithFile(New("debug", "text", &buf), "a.json").Debug("shown")
	assert.Contains(t, buf.String(), "file=a.json")

	buf.Reset()
	WithExemplar(New("info", "text", &buf), "abc").Info("x")
	assert.Contains(t, buf.String(), "exemplar_id=abc")
}

func TestNoop(t *testing.T) {
	assert.False(t, Noop().Enabled(context.Background(), slog.LevelError))
}
