package examples

import (
	"errors"
	"fmt"
	"testing"

	"github.com/modhost-project/modhost-go/pkg/model"
)

func TestNewTestUnit(t *testing.T) {
	u := NewTestUnit()

	if u.Name() != "testunit" {
		t.Errorf("Name() = %q, want testunit", u.Name())
	}
	info := u.Info()
	if info.License != "GPL" {
		t.Errorf("License = %q, want GPL", info.License)
	}
	if want := "Small test module for developing a Python-based kernel module tool"; info.Description != want {
		t.Errorf("Description = %q, want %q", info.Description, want)
	}

	params := u.Params()
	if len(params) != 2 {
		t.Fatalf("Params() returned %d, want 2", len(params))
	}
	if want := "Simple test parameter that can be modified at runtime"; params[0].Metadata().Description != want {
		t.Errorf("test_value description = %q, want %q", params[0].Metadata().Description, want)
	}
	if want := "Read-only parameter (cannot be modified at runtime)"; params[1].Metadata().Description != want {
		t.Errorf("readonly_value description = %q, want %q", params[1].Metadata().Description, want)
	}
	if params[0].Name() != "test_value" || params[0].Value() != 42 {
		t.Errorf("params[0] = %s=%d, want test_value=42", params[0].Name(), params[0].Value())
	}
	if params[1].Name() != "readonly_value" || params[1].Value() != 7 {
		t.Errorf("params[1] = %s=%d, want readonly_value=7", params[1].Name(), params[1].Value())
	}
	if params[0].Access() != model.AccessReadWrite {
		t.Error("test_value should be writable")
	}
	if params[1].Access() != model.AccessReadOnly {
		t.Error("readonly_value should be read-only")
	}
}

func TestTestUnitLifecycleMessages(t *testing.T) {
	u := NewTestUnit()

	var lines []string
	logf := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	if err := u.Attach(logf); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	p, err := u.Param("test_value")
	if err != nil {
		t.Fatalf("Param() error = %v", err)
	}
	if err := p.SetValue(100); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}

	if err := u.Detach(logf); err != nil {
		t.Fatalf("Detach() error = %v", err)
	}

	want := []string{
		"Test module loaded. Current value: 42",
		"Test module unloaded. Final value was: 100",
	}
	if len(lines) != len(want) {
		t.Fatalf("logged %d lines, want %d: %v", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestNewThermostat(t *testing.T) {
	u := NewThermostat(DefaultThermostatConfig())

	p, err := u.Param("setpoint")
	if err != nil {
		t.Fatalf("Param() error = %v", err)
	}
	if p.Value() != 210 {
		t.Errorf("setpoint = %d, want 210", p.Value())
	}

	// Range constraints hold
	if err := p.SetValue(301); !errors.Is(err, model.ErrParamOutOfRange) {
		t.Errorf("SetValue(301) = %v, want ErrParamOutOfRange", err)
	}
	if err := p.SetValue(49); !errors.Is(err, model.ErrParamOutOfRange) {
		t.Errorf("SetValue(49) = %v, want ErrParamOutOfRange", err)
	}
	if err := p.SetValue(180); err != nil {
		t.Errorf("SetValue(180) = %v, want nil", err)
	}

	fw, err := u.Param("firmware_rev")
	if err != nil {
		t.Fatalf("Param() error = %v", err)
	}
	if err := fw.SetValue(4); !errors.Is(err, model.ErrParamNotWritable) {
		t.Errorf("SetValue on firmware_rev = %v, want ErrParamNotWritable", err)
	}
}
