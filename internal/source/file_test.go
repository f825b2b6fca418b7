package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"logship/internal/logging"
	"logship/internal/testutils"
)

func TestGuessLevel(t *testing.T) {
	cases := map[string]logging.Level{
		"2025-01-01 ERROR something failed":  logging.LevelError,
		"warn: disk almost full":             logging.LevelWarning,
		"WARNING: deprecated flag":           logging.LevelWarning,
		"debug trace enabled":                logging.LevelDebug,
		"FATAL: cannot start":                logging.LevelCritical,
		"CRITICAL failure in module":         logging.LevelCritical,
		"request served in 12ms":             logging.LevelInfo,
		"":                                   logging.LevelInfo,
	}

	for text, want := range cases {
		assert.Equal(t, want, guessLevel(text), "line: %q", text)
	}
}

func TestFileSource_TailsAppendedLines(t *testing.T) {
	mockShipper := &testutils.MockShipper{}
	tempDir := t.TempDir()
	file := filepath.Join(tempDir, "tailme.log")
	if err := os.WriteFile(file, []byte("start\n"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src := New(ctx, Config{
		Paths:   []string{file},
		Service: "demo-app",
		Host:    "node-1",
		Env:     "test",
	}, mockShipper)
	src.Start()

	time.Sleep(200 * time.Millisecond)

	f, err := os.OpenFile(file, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	_, _ = f.WriteString("l1\n")
	_, _ = f.WriteString("ERROR l2\n")
	_ = f.Close()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if len(mockShipper.GetRecords()) >= 2 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	records := mockShipper.GetRecords()
	assert.GreaterOrEqual(t, len(records), 2)
	assert.Equal(t, "demo-app", records[0].Service)
	assert.Equal(t, "tailme.log", records[0].Attrs["file"])

	var sawError bool
	for _, rec := range records {
		if rec.Level == logging.LevelError {
			sawError = true
		}
	}
	assert.True(t, sawError)

	src.Stop()
}

func TestFileSource_MissingFileDoesNotPanic(t *testing.T) {
	mockShipper := &testutils.MockShipper{}
	src := New(context.Background(), Config{
		Paths: []string{filepath.Join(t.TempDir(), "nope", "missing.log")},
	}, mockShipper)

	src.Start()
	time.Sleep(100 * time.Millisecond)
	src.Stop()

	assert.Equal(t, 0, len(mockShipper.GetRecords()))
}
