package logger

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func reset(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetTimestamps(false)
		SetOutput(os.Stderr)
		now = time.Now
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	reset(t)

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())
}

func TestLevels_WhenVerbose(t *testing.T) {
	buf := reset(t)
	SetVerbose(true)

	Debug("fetch %s", "invoices")
	Info("synced %d", 3)
	Warn("slow")
	Error("boom")

	assert.Equal(t, "[DEBUG] fetch invoices\n[INFO] synced 3\n[WARN] slow\n[ERROR] boom\n", buf.String())
}

func TestLevels_WhenNotVerbose(t *testing.T) {
	buf := reset(t)
	SetVerbose(false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("hidden")
	Error("shown %d", 1)

	assert.Equal(t, "[ERROR] shown 1\n", buf.String())
}

func TestSection(t *testing.T) {
	buf := reset(t)
	SetVerbose(true)

	Section("Sync")

	assert.Equal(t, "\n=== Sync ===\n", buf.String())
}

func TestTimestamps(t *testing.T) {
	buf := reset(t)
	now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	SetTimestamps(true)

	Error("boom")

	assert.Equal(t, "2024-06-01T12:00:00Z [ERROR] boom\n", buf.String())
}
