package interactive

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/modhost-project/modhost-go/pkg/examples"
	"github.com/modhost-project/modhost-go/pkg/host"
	"github.com/modhost-project/modhost-go/pkg/model"
	"github.com/modhost-project/modhost-go/pkg/options"
)

func newLocalSession(t *testing.T) *LocalSession {
	t.Helper()
	h := host.New(host.Config{})
	if _, err := h.Load(examples.NewTestUnit()); err != nil {
		t.Fatalf("failed to load test unit: %v", err)
	}
	return NewLocalSession(h, nil, nil)
}

func TestLocalSessionListAndInfo(t *testing.T) {
	s := newLocalSession(t)

	units, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(units) != 1 || units[0].Name != examples.TestUnitName {
		t.Fatalf("unexpected list: %+v", units)
	}
	if units[0].State != "ATTACHED" {
		t.Errorf("expected ATTACHED, got %s", units[0].State)
	}

	info, err := s.Info(examples.TestUnitName)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.License != "GPL" {
		t.Errorf("expected GPL license, got %s", info.License)
	}
	if len(info.Params) != 2 {
		t.Errorf("expected 2 params, got %d", len(info.Params))
	}
}

func TestLocalSessionReadWrite(t *testing.T) {
	s := newLocalSession(t)

	value, err := s.Read(examples.TestUnitName, "test_value")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if value != examples.TestValueDefault {
		t.Errorf("expected %d, got %d", examples.TestValueDefault, value)
	}

	result, err := s.Write(examples.TestUnitName, "test_value", 100)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if result.OldValue != 42 || result.NewValue != 100 {
		t.Errorf("unexpected result: %+v", result)
	}

	// Read-only parameters stay read-only even for local sessions
	_, err = s.Write(examples.TestUnitName, "readonly_value", 1)
	if !errors.Is(err, model.ErrParamNotWritable) {
		t.Fatalf("expected ErrParamNotWritable, got %v", err)
	}
}

func TestLocalSessionLoadUnload(t *testing.T) {
	s := newLocalSession(t)

	instanceID, err := s.Load("thermostat")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if instanceID == "" {
		t.Error("expected non-empty instance ID")
	}

	if _, err := s.Load("nosuchunit"); err == nil {
		t.Error("expected error for unknown unit")
	}

	if err := s.Unload("thermostat"); err != nil {
		t.Fatalf("Unload failed: %v", err)
	}
	if err := s.Unload("thermostat"); err == nil {
		t.Error("expected error unloading twice")
	}
}

func TestLocalSessionOptions(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "10-site.conf"),
		[]byte("options testunit test_value=500\n"), 0o644); err != nil {
		t.Fatalf("failed to write conf: %v", err)
	}

	store, err := options.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}

	h := host.New(host.Config{Options: store})
	s := NewLocalSession(h, store, nil)

	opts := s.Options("testunit")
	if len(opts) != 1 || opts[0].Value != 500 {
		t.Fatalf("unexpected options: %+v", opts)
	}

	if err := s.SetOption("testunit", "test_value", 600); err != nil {
		t.Fatalf("SetOption failed: %v", err)
	}

	// Managed file must exist on disk after Save
	if _, err := os.Stat(filepath.Join(dir, options.ManagedFileName)); err != nil {
		t.Errorf("managed file not written: %v", err)
	}

	// No store means option commands fail cleanly
	bare := NewLocalSession(h, nil, nil)
	if err := bare.SetOption("testunit", "test_value", 1); err == nil {
		t.Error("expected error without option store")
	}
}

func TestLocalSessionLogLevel(t *testing.T) {
	level := new(slog.LevelVar)
	h := host.New(host.Config{})
	s := NewLocalSession(h, nil, level)

	if err := s.SetLogLevel("debug"); err != nil {
		t.Fatalf("SetLogLevel failed: %v", err)
	}
	if level.Level() != slog.LevelDebug {
		t.Errorf("expected debug, got %v", level.Level())
	}

	if err := s.SetLogLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}

	bare := NewLocalSession(h, nil, nil)
	if err := bare.SetLogLevel("info"); err == nil {
		t.Error("expected error without level var")
	}
}
