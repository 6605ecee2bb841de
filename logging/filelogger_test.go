package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoggerWritesConsoleLog(t *testing.T) {
	base := t.TempDir()
	l, err := NewFileLogger(base, "abc-123")
	require.NoError(t, err)

	require.NoError(t, l.Append("compiling tb_top_module"))
	require.NoError(t, l.Append("simulation successful"))
	require.NoError(t, l.Close())

	assert.Equal(t, filepath.Join(base, "testrun-abc-123"), l.Directory())

	data, err := os.ReadFile(filepath.Join(l.Directory(), ConsoleLogFilename))
	require.NoError(t, err)
	assert.Equal(t, "compiling tb_top_module\nsimulation successful\n", string(data))
}

func TestFileLoggerStripsANSI(t *testing.T) {
	l, err := NewFileLogger(t.TempDir(), "run")
	require.NoError(t, err)

	require.NoError(t, l.Append("\x1b[32msimulation successful\x1b[0m"))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(l.Directory(), ConsoleLogFilename))
	require.NoError(t, err)
	assert.Equal(t, "simulation successful\n", string(data))
}

func TestFileLoggerRequiresRunID(t *testing.T) {
	_, err := NewFileLogger(t.TempDir(), "")
	require.Error(t, err)
}

func TestFileLoggerAppendAfterClose(t *testing.T) {
	l, err := NewFileLogger(t.TempDir(), "run")
	require.NoError(t, err)

	require.NoError(t, l.Close())
	assert.Error(t, l.Append("late line"))
	// Closing twice is harmless.
	assert.NoError(t, l.Close())
}
