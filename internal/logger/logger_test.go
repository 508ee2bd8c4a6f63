package logger

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oggyb/nameless/internal/config"
)

// captureOutput redirects stdout to a buffer during f()
func captureOutput(t *testing.T, f func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	_ = r.Close()

	return buf.String()
}

func appConfig(level, format, component string) *config.Config {
	c := &config.Config{}
	c.Log.Level = level
	c.Log.Format = format
	c.Log.Component = component
	return c
}

func TestLogger_TextFormat(t *testing.T) {
	out := captureOutput(t, func() {
		InitFromConfig(appConfig("debug", "text", "test"))
		Info("hello nameless", "key", "value")
	})

	assert.Contains(t, out, "hello nameless")
	assert.Contains(t, out, "component=test")
	assert.Contains(t, out, "key=value")
}

func TestLogger_JSONFormat(t *testing.T) {
	out := captureOutput(t, func() {
		InitFromConfig(appConfig("info", "json", "json_test"))
		Info("json log", "foo", "bar")
	})

	assert.Contains(t, out, `"msg":"json log"`)
	assert.Contains(t, out, `"component":"json_test"`)
	assert.Contains(t, out, `"foo":"bar"`)
}

func TestLogger_LevelFilter(t *testing.T) {
	out := captureOutput(t, func() {
		InitFromConfig(appConfig("error", "text", ""))
		Info("should not appear")
		Error("should appear")
	})

	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
}

func TestLogger_WithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	Init(&Config{Level: "debug", Format: FormatText, Output: &buf})

	With("req_id", "123").Info("processing request")

	assert.Contains(t, buf.String(), "req_id=123")
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	scoped := New(Config{Level: "info", Format: FormatJSON, Output: &buf}).With("req_id", "abc")

	ctx := NewContext(context.Background(), scoped)
	FromContext(ctx, nil).Info("scoped")

	assert.True(t, strings.Contains(buf.String(), `"req_id":"abc"`), buf.String())

	fallback := Discard()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))
}
