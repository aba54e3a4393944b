package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo)

	logger.Info("boom", "error", errors.New("bad"))
	assert.Contains(t, buf.String(), "err=bad")
	assert.NotContains(t, buf.String(), "error=")
}

func TestDiagnostic_TagsChannel(t *testing.T) {
	var buf bytes.Buffer
	Diagnostic(NewWithWriter(&buf, slog.LevelInfo)).Warn("host missing")
	assert.Contains(t, buf.String(), "channel=diagnostic")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	assert.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = ParseLevel("")
	assert.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
