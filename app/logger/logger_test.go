package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yatube/app/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	dir := t.TempDir()
	cfg := config.LogConfig{Path: dir, FileName: "test.log", Level: "info", MaxSize: 1}

	log, err := New(cfg, "release")
	require.NoError(t, err)
	log.Debug("hidden")
	log.Info("request served", zap.Int("status", 200))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "request served", entry["msg"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Contains(t, entry, "time")
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Path: t.TempDir(), Level: "loud"}, "release")
	assert.Error(t, err)
}
