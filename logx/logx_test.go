package logx

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	InitWithOutput(buf)
	t.Cleanup(func() {
		InitWithOutput(os.Stdout)
		SetDebug(false)
	})
	return buf
}

func TestLevelsAreTagged(t *testing.T) {
	buf := capture(t)
	Info("CHAIN", "appended ", 3)
	Warn("MINER", "slow")
	Error("WORKER", "boom")

	out := buf.String()
	assert.Contains(t, out, "[INFO][CHAIN]")
	assert.Contains(t, out, "appended 3")
	assert.Contains(t, out, "[WARN][MINER]")
	assert.Contains(t, out, "[ERROR][WORKER]")
}

func TestDebugIsGated(t *testing.T) {
	buf := capture(t)
	Debug("MINER", "hidden")
	assert.Empty(t, buf.String())

	SetDebug(true)
	Debug("MINER", "shown")
	assert.Contains(t, buf.String(), "[DEBUG][MINER]")
}

func TestErrorfReturnsError(t *testing.T) {
	buf := capture(t)
	base := errors.New("root")
	err := Errorf("wrapped: %w", base)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, buf.String(), "wrapped: root")
}

func TestInitWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "powchain.log")
	Init(Config{File: path, MaxSizeMB: 1, MaxAgeDays: 1})
	t.Cleanup(func() { InitWithOutput(os.Stdout) })

	Info("TEST", "to file")
	require.NoError(t, Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "to file")
}
