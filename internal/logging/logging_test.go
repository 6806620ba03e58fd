package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "labconsole.log")

	log, err := New(path, "info")
	require.NoError(t, err)

	log.Named("poller").Info("started", zap.String("backend", "http://localhost:8000"))
	log.Debug("hidden")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"logger":"poller"`)
	assert.Contains(t, string(data), `"backend":"http://localhost:8000"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNewEmptyPath(t *testing.T) {
	log, err := New("", "info")
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestNewBadLevel(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "x.log"), "loud")
	assert.Error(t, err)

	_, err = NewConsole("loud")
	assert.Error(t, err)
}
