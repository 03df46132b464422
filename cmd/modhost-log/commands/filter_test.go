package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modhost-project/modhost-go/pkg/log"
)

func TestFilterByUnit(t *testing.T) {
	ts := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Unit: "testunit", Category: log.CategoryLifecycle,
			Lifecycle: &log.LifecycleEvent{Phase: log.PhaseAttach}},
		{Timestamp: ts, Unit: "thermostat", Category: log.CategoryLifecycle,
			Lifecycle: &log.LifecycleEvent{Phase: log.PhaseAttach}},
		{Timestamp: ts, Unit: "testunit", Category: log.CategoryParam,
			Param: &log.ParamEvent{Param: "test_value", OldValue: 42, NewValue: 100}},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.mlog")

	var buf bytes.Buffer
	err := RunFilter(path, FilterOptions{Output: outPath, Unit: "testunit"}, &buf)
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	if !strings.Contains(buf.String(), "Filtered 2 events") {
		t.Errorf("expected 2 filtered events, got: %s", buf.String())
	}

	// The output file must itself be a readable log file
	reader, err := log.NewReader(outPath)
	if err != nil {
		t.Fatalf("failed to open filtered file: %v", err)
	}
	defer reader.Close()

	filtered, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("failed to read filtered file: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 events in filtered file, got %d", len(filtered))
	}
	for _, e := range filtered {
		if e.Unit != "testunit" {
			t.Errorf("unexpected unit in filtered file: %s", e.Unit)
		}
	}
}

func TestFilterByTimeRange(t *testing.T) {
	ts := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Category: log.CategoryState},
		{Timestamp: ts.Add(time.Minute), Category: log.CategoryState},
		{Timestamp: ts.Add(2 * time.Minute), Category: log.CategoryState},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.mlog")

	var buf bytes.Buffer
	err := RunFilter(path, FilterOptions{
		Output:    outPath,
		TimeStart: ts.Add(30 * time.Second).Format(time.RFC3339),
		TimeEnd:   ts.Add(90 * time.Second).Format(time.RFC3339),
	}, &buf)
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	if !strings.Contains(buf.String(), "Filtered 1 events") {
		t.Errorf("expected 1 filtered event, got: %s", buf.String())
	}
}

func TestFilterByCategoryAndLevel(t *testing.T) {
	ts := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Level: log.LevelInfo, Category: log.CategoryState},
		{Timestamp: ts, Level: log.LevelWarn, Category: log.CategoryError,
			Error: &log.ErrorEventData{Message: "warn"}},
		{Timestamp: ts, Level: log.LevelError, Category: log.CategoryError,
			Error: &log.ErrorEventData{Message: "err"}},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.mlog")

	var buf bytes.Buffer
	err := RunFilter(path, FilterOptions{
		Output:   outPath,
		Category: "error",
		MinLevel: "error",
	}, &buf)
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	if !strings.Contains(buf.String(), "Filtered 1 events") {
		t.Errorf("expected 1 filtered event, got: %s", buf.String())
	}
}

func TestFilterInvalidTime(t *testing.T) {
	path := createTestLogFile(t, []log.Event{
		{Timestamp: time.Now(), Category: log.CategoryState},
	})

	var buf bytes.Buffer
	err := RunFilter(path, FilterOptions{
		Output:    filepath.Join(t.TempDir(), "out.mlog"),
		TimeStart: "yesterday",
	}, &buf)
	if err == nil {
		t.Fatal("expected error for invalid time")
	}
	if !strings.Contains(err.Error(), "time-start") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFilterInvalidCategory(t *testing.T) {
	path := createTestLogFile(t, []log.Event{
		{Timestamp: time.Now(), Category: log.CategoryState},
	})

	var buf bytes.Buffer
	err := RunFilter(path, FilterOptions{
		Output:   filepath.Join(t.TempDir(), "out.mlog"),
		Category: "bogus",
	}, &buf)
	if err == nil {
		t.Fatal("expected error for invalid category")
	}
}
