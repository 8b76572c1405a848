package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, &Config{Level: "debug", Format: "json"})

	l.WithComponent("spclient").WithSite("https://contoso.sharepoint.com").Request("GET", "https://contoso.sharepoint.com/_api/web")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "spclient", rec["component"])
	assert.Equal(t, "https://contoso.sharepoint.com", rec["site_url"])
	assert.Equal(t, "GET", rec["method"])
	assert.Equal(t, "sharepoint", rec["subsystem"])
	assert.Contains(t, rec, "timestamp")
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, &Config{Level: "info", Format: "text"})

	l.Request("GET", "https://contoso.sharepoint.com/_api/web")
	assert.Empty(t, buf.String())

	l.WithSnapshot(7).Info("snapshot started")
	assert.Contains(t, buf.String(), "snapshot_id=7")
}

func TestNewLoggerFileOutputIsClosable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spshare.log")
	l := NewLogger(&Config{Level: "info", Format: "json", Output: path})

	l.WithComponent("database").Info("Opened catalog")
	require.NoError(t, l.Close())
	assert.NoError(t, l.Close(), "second close is a no-op")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Opened catalog")
}

func TestCloseIgnoresStandardStreams(t *testing.T) {
	l := NewLogger(&Config{Output: "stderr"})
	assert.NoError(t, l.Close())
	assert.NoError(t, l.WithComponent("x").Close())
	assert.NoError(t, NewLogger(&Config{Output: "stdout"}).Close())
}
