package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn")

	l.Printf("hidden %d", 1)
	l.Debugf("hidden too")
	l.Warnf("birth date %q ignored", "soon")
	l.Errorf("boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `birth date "soon" ignored`)
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "logger_test.go")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("WARNING"))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel("whatever"))
}
