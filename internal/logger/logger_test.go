package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOutputAndLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(nil)
		SetLevel("info")
	})

	SetLevel("info")
	Debugf("hidden %d", 1)
	Infof("shown %d", 2)
	out := buf.String()
	assert.NotContains(t, out, "hidden 1")
	assert.Contains(t, out, "shown 2")

	buf.Reset()
	SetLevel("debug")
	Debugf("now visible")
	assert.Contains(t, buf.String(), "now visible")

	buf.Reset()
	SetLevel("error")
	Warnf("suppressed")
	Errorf("surfaced")
	out = buf.String()
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "surfaced")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel(" WARNING "))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}
