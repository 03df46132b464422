package modhost_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modhost-project/modhost-go/pkg/examples"
	"github.com/modhost-project/modhost-go/pkg/host"
	"github.com/modhost-project/modhost-go/pkg/log"
	"github.com/modhost-project/modhost-go/pkg/model"
	"github.com/modhost-project/modhost-go/pkg/options"
	"github.com/modhost-project/modhost-go/pkg/surface"
	"github.com/modhost-project/modhost-go/pkg/wire"
)

// startHost brings up a host with the test unit loaded and a control
// surface listening on loopback. Returns the host, the surface address,
// and the memory logger capturing events.
func startHost(t *testing.T, writeToken string) (*host.Host, string, *log.MemoryLogger) {
	t.Helper()

	events := log.NewMemoryLogger()
	h := host.New(host.Config{
		ID:          "modhost-e2e",
		EventLogger: events,
	})

	if _, err := h.Load(examples.NewTestUnit()); err != nil {
		t.Fatalf("failed to load test unit: %v", err)
	}

	srv, err := surface.NewServer(surface.ServerConfig{
		Host:        h,
		Address:     "127.0.0.1:0",
		WriteToken:  writeToken,
		EventLogger: events,
	})
	if err != nil {
		t.Fatalf("failed to create surface server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("failed to start surface server: %v", err)
	}
	t.Cleanup(func() {
		srv.Stop()
		cancel()
	})

	return h, srv.Addr().String(), events
}

func connect(t *testing.T, addr, token string) *surface.Client {
	t.Helper()
	client, err := surface.Connect(surface.ClientConfig{
		Address:     addr,
		WriteToken:  token,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// TestE2E_ModuleLifecycle walks the full lifecycle: load, inspect over
// the control surface, write, unload, and verify the detach hook saw
// the written value.
func TestE2E_ModuleLifecycle(t *testing.T) {
	h, addr, events := startHost(t, "")
	client := connect(t, addr, "")

	// List shows the loaded unit
	units, err := client.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(units) != 1 || units[0].Name != examples.TestUnitName {
		t.Fatalf("unexpected unit list: %+v", units)
	}
	if units[0].State != "ATTACHED" {
		t.Errorf("expected ATTACHED state, got %s", units[0].State)
	}

	// Info carries the metadata and both parameters
	info, err := client.Info(examples.TestUnitName)
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Author != "Nomi" || info.License != "GPL" {
		t.Errorf("unexpected metadata: author=%s license=%s", info.Author, info.License)
	}
	if len(info.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(info.Params))
	}

	// Defaults are visible over the wire
	value, err := client.Read(examples.TestUnitName, "test_value")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if value != examples.TestValueDefault {
		t.Errorf("expected %d, got %d", examples.TestValueDefault, value)
	}

	roValue, err := client.Read(examples.TestUnitName, "readonly_value")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if roValue != examples.ReadOnlyValueDefault {
		t.Errorf("expected %d, got %d", examples.ReadOnlyValueDefault, roValue)
	}

	// Write the new value
	result, err := client.Write(examples.TestUnitName, "test_value", 100)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if result.OldValue != 42 || result.NewValue != 100 {
		t.Errorf("unexpected write result: %+v", result)
	}

	// Read-only parameter rejects writes
	_, err = client.Write(examples.TestUnitName, "readonly_value", 1)
	var statusErr *surface.StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != wire.StatusNotWritable {
		t.Fatalf("expected StatusNotWritable, got %v", err)
	}

	// Unload and check the detach hook observed the written value
	if err := h.Unload(examples.TestUnitName); err != nil {
		t.Fatalf("Unload failed: %v", err)
	}

	var attachSeen, detachSeen bool
	for _, e := range events.Events() {
		if strings.Contains(e.Message, "Test module loaded. Current value: 42") {
			attachSeen = true
		}
		if strings.Contains(e.Message, "Test module unloaded. Final value was: 100") {
			detachSeen = true
		}
	}
	if !attachSeen {
		t.Error("attach hook message not logged")
	}
	if !detachSeen {
		t.Error("detach hook message not logged")
	}

	// Unloaded unit is gone from the surface
	units, err = client.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(units) != 0 {
		t.Errorf("expected empty unit list, got %+v", units)
	}
}

// TestE2E_WriteToken verifies the write privilege gate end to end.
func TestE2E_WriteToken(t *testing.T) {
	_, addr, _ := startHost(t, "secret")

	// Without the token, writes are rejected but reads work
	unprivileged := connect(t, addr, "")

	if _, err := unprivileged.Read(examples.TestUnitName, "test_value"); err != nil {
		t.Fatalf("unprivileged read failed: %v", err)
	}

	_, err := unprivileged.Write(examples.TestUnitName, "test_value", 50)
	var statusErr *surface.StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != wire.StatusPermissionDenied {
		t.Fatalf("expected StatusPermissionDenied, got %v", err)
	}

	// With the token, writes succeed
	privileged := connect(t, addr, "secret")
	result, err := privileged.Write(examples.TestUnitName, "test_value", 50)
	if err != nil {
		t.Fatalf("privileged write failed: %v", err)
	}
	if result.NewValue != 50 {
		t.Errorf("expected 50, got %d", result.NewValue)
	}
}

// TestE2E_PersistentOptions verifies that option files set parameters
// before the attach hook runs, including read-only parameters.
func TestE2E_PersistentOptions(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "10-test.conf")
	content := "# site overrides\noptions testunit test_value=1000 readonly_value=9\n"
	if err := os.WriteFile(conf, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write conf: %v", err)
	}

	store, err := options.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if warnings := store.Warnings(); len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	events := log.NewMemoryLogger()
	h := host.New(host.Config{
		EventLogger: events,
		Options:     store,
	})

	if _, err := h.Load(examples.NewTestUnit()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// The attach hook must see the persistent value
	var found bool
	for _, e := range events.Events() {
		if strings.Contains(e.Message, "Test module loaded. Current value: 1000") {
			found = true
		}
	}
	if !found {
		t.Error("attach hook did not observe the persistent option value")
	}

	// Even the read-only parameter was seeded
	value, err := h.ReadParam(examples.TestUnitName, "readonly_value")
	if err != nil {
		t.Fatalf("ReadParam failed: %v", err)
	}
	if value != 9 {
		t.Errorf("expected 9, got %d", value)
	}

	// But external writes to it still fail
	_, err = h.WriteParam(examples.TestUnitName, "readonly_value", 10, true)
	if !errors.Is(err, model.ErrParamNotWritable) {
		t.Fatalf("expected ErrParamNotWritable, got %v", err)
	}
}

// TestE2E_EventLogFile verifies the event log file round trip: events
// captured during a session can be read back with the log reader.
func TestE2E_EventLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host.mlog")

	fileLogger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create file logger: %v", err)
	}

	h := host.New(host.Config{
		ID:          "modhost-filelog",
		EventLogger: fileLogger,
	})
	if _, err := h.Load(examples.NewTestUnit()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := h.WriteParam(examples.TestUnitName, "test_value", 77, true); err != nil {
		t.Fatalf("WriteParam failed: %v", err)
	}
	if err := h.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := fileLogger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Read back only the lifecycle events
	cat := log.CategoryLifecycle
	reader, err := log.NewFilteredReader(path, log.Filter{Category: &cat})
	if err != nil {
		t.Fatalf("failed to open log: %v", err)
	}
	defer reader.Close()

	lifecycle, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(lifecycle) != 2 {
		t.Fatalf("expected 2 lifecycle events, got %d", len(lifecycle))
	}
	if lifecycle[0].Lifecycle.Phase != log.PhaseAttach {
		t.Errorf("expected attach first, got %v", lifecycle[0].Lifecycle.Phase)
	}
	if lifecycle[1].Lifecycle.Phase != log.PhaseDetach {
		t.Errorf("expected detach second, got %v", lifecycle[1].Lifecycle.Phase)
	}
	for _, e := range lifecycle {
		if e.HostID != "modhost-filelog" {
			t.Errorf("event missing host ID: %+v", e)
		}
	}

	// The detach hook's final value lands in the message stream
	full, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("failed to reopen log: %v", err)
	}
	defer full.Close()

	all, err := full.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	var finalSeen bool
	for _, e := range all {
		if strings.Contains(e.Message, "Test module unloaded. Final value was: 77") {
			finalSeen = true
		}
	}
	if !finalSeen {
		t.Error("detach hook message with final value not logged")
	}
}
