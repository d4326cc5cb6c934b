package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name          string
		level         Level
		logFunc       func(Logger, string)
		expectedInLog bool
	}{
		{
			name:          "debug message when level is debug",
			level:         LevelDebug,
			logFunc:       func(l Logger, msg string) { l.Debug(msg) },
			expectedInLog: true,
		},
		{
			name:          "debug message when level is info",
			level:         LevelInfo,
			logFunc:       func(l Logger, msg string) { l.Debug(msg) },
			expectedInLog: false,
		},
		{
			name:          "warn message when level is error",
			level:         LevelError,
			logFunc:       func(l Logger, msg string) { l.Warn(msg) },
			expectedInLog: false,
		},
		{
			name:          "error message when level is error",
			level:         LevelError,
			logFunc:       func(l Logger, msg string) { l.Error(msg) },
			expectedInLog: true,
		},
		{
			name:          "error message when silent",
			level:         LevelSilent,
			logFunc:       func(l Logger, msg string) { l.Error(msg) },
			expectedInLog: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			log := NewLogger(tt.level, buf)

			tt.logFunc(log, "test message")

			assert.Equal(t, tt.expectedInLog, strings.Contains(buf.String(), "test message"))
		})
	}
}

func TestLogger_Fields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(LevelInfo, buf).WithFields(Component("scanner"))

	log.Info("scan complete", F("files", 12))

	out := buf.String()
	assert.Contains(t, out, "component=scanner")
	assert.Contains(t, out, "files=12")
	assert.Equal(t, 1, strings.Count(out, "|"))
}

func TestLogger_SetLevelSharedWithChildren(t *testing.T) {
	buf := &bytes.Buffer{}
	parent := NewLogger(LevelInfo, buf)
	child := parent.WithFields(F("k", "v"))

	parent.SetLevel(LevelError)
	child.Info("hidden")

	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelSilent, ParseLevel("off"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestOrSilent(t *testing.T) {
	assert.NotNil(t, OrSilent(nil))

	l := NewSilentLogger()
	assert.Same(t, l, OrSilent(l))
}
