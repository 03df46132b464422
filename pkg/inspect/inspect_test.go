package inspect

import (
	"errors"
	"strings"
	"testing"

	"github.com/modhost-project/modhost-go/pkg/examples"
	"github.com/modhost-project/modhost-go/pkg/host"
	"github.com/modhost-project/modhost-go/pkg/model"
)

func newTestInspector(t *testing.T) *Inspector {
	t.Helper()

	h := host.New(host.Config{ID: "inspect-host"})
	if _, err := h.Load(examples.NewTestUnit()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return NewInspector(h)
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		input   string
		unit    string
		param   string
		partial bool
		wantErr error
	}{
		{input: "testunit/test_value", unit: "testunit", param: "test_value"},
		{input: "testunit.test_value", unit: "testunit", param: "test_value"},
		{input: "testunit", unit: "testunit", partial: true},
		{input: "  testunit/test_value  ", unit: "testunit", param: "test_value"},
		{input: "", wantErr: ErrEmptyPath},
		{input: "/test_value", wantErr: ErrInvalidPath},
		{input: "testunit/", wantErr: ErrInvalidPath},
		{input: "a/b/c", wantErr: ErrInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ParsePath(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParsePath(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePath(%q) error = %v", tt.input, err)
			}
			if p.Unit != tt.unit || p.Param != tt.param || p.IsPartial != tt.partial {
				t.Errorf("ParsePath(%q) = %+v", tt.input, p)
			}
		})
	}
}

func TestInspectHost(t *testing.T) {
	ins := newTestInspector(t)

	tree := ins.InspectHost()
	if tree.HostID != "inspect-host" {
		t.Errorf("HostID = %q, want inspect-host", tree.HostID)
	}
	if len(tree.Units) != 1 {
		t.Fatalf("Units = %d, want 1", len(tree.Units))
	}

	unit := tree.Units[0]
	if unit.Name != "testunit" || unit.State != "ATTACHED" {
		t.Errorf("unit = %s [%s], want testunit [ATTACHED]", unit.Name, unit.State)
	}
	if len(unit.Params) != 2 {
		t.Fatalf("Params = %d, want 2", len(unit.Params))
	}
	if unit.Params[0].Name != "test_value" || unit.Params[0].Value != 42 {
		t.Errorf("params[0] = %+v, want test_value=42", unit.Params[0])
	}
}

func TestInspectorReadWrite(t *testing.T) {
	ins := newTestInspector(t)

	path, err := ParsePath("testunit/test_value")
	if err != nil {
		t.Fatalf("ParsePath() error = %v", err)
	}

	v, err := ins.ReadParam(path)
	if err != nil {
		t.Fatalf("ReadParam() error = %v", err)
	}
	if v != 42 {
		t.Errorf("ReadParam() = %d, want 42", v)
	}

	result, err := ins.WriteParam(path, 100)
	if err != nil {
		t.Fatalf("WriteParam() error = %v", err)
	}
	if result.OldValue != 42 || result.NewValue != 100 {
		t.Errorf("WriteParam() = %+v, want 42 -> 100", result)
	}

	// Read-only parameters reject writes even for the inspector
	roPath, _ := ParsePath("testunit/readonly_value")
	if _, err := ins.WriteParam(roPath, 1); !errors.Is(err, model.ErrParamNotWritable) {
		t.Errorf("WriteParam(readonly) = %v, want ErrParamNotWritable", err)
	}

	// Partial paths don't name a parameter
	partial, _ := ParsePath("testunit")
	if _, err := ins.ReadParam(partial); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("ReadParam(partial) = %v, want ErrInvalidPath", err)
	}
}

func TestSearch(t *testing.T) {
	candidates := []string{"testunit", "thermostat", "net_filter", "unit_test"}

	t.Run("ExactFirst", func(t *testing.T) {
		matches := Search("testunit", candidates)
		if len(matches) == 0 || matches[0].Name != "testunit" || matches[0].Kind != MatchExact {
			t.Errorf("Search(testunit) = %v", matches)
		}
	})

	t.Run("PrefixBeforeSubstring", func(t *testing.T) {
		matches := Search("test", candidates)
		if len(matches) != 2 {
			t.Fatalf("Search(test) returned %d matches: %v", len(matches), matches)
		}
		if matches[0].Name != "testunit" || matches[0].Kind != MatchPrefix {
			t.Errorf("matches[0] = %v, want testunit as prefix match", matches[0])
		}
		if matches[1].Name != "unit_test" || matches[1].Kind != MatchSubstring {
			t.Errorf("matches[1] = %v, want unit_test as substring match", matches[1])
		}
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		matches := Search("THERMO", candidates)
		if len(matches) != 1 || matches[0].Name != "thermostat" {
			t.Errorf("Search(THERMO) = %v", matches)
		}
	})

	t.Run("EmptyMatchesAll", func(t *testing.T) {
		matches := Search("", candidates)
		if len(matches) != len(candidates) {
			t.Errorf("Search(\"\") returned %d matches, want %d", len(matches), len(candidates))
		}
	})

	t.Run("NoMatch", func(t *testing.T) {
		if matches := Search("zzz", candidates); len(matches) != 0 {
			t.Errorf("Search(zzz) = %v, want none", matches)
		}
	})
}

func TestSearchUnits(t *testing.T) {
	ins := newTestInspector(t)

	matches := ins.SearchUnits("test")
	if len(matches) != 1 || matches[0].Name != "testunit" {
		t.Errorf("SearchUnits(test) = %v", matches)
	}

	params, err := ins.SearchParams("testunit", "value")
	if err != nil {
		t.Fatalf("SearchParams() error = %v", err)
	}
	if len(params) != 2 {
		t.Errorf("SearchParams(value) = %v, want both parameters", params)
	}
}

func TestFormatter(t *testing.T) {
	ins := newTestInspector(t)
	f := NewFormatter()

	tree := ins.InspectHost()
	out := f.FormatTree(tree)

	for _, want := range []string{
		"Host: inspect-host",
		"testunit [ATTACHED] v1.0",
		"test_value = 42 (rw, 0644)",
		"readonly_value = 7 (ro, 0444)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatTree() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatterInfo(t *testing.T) {
	ins := newTestInspector(t)
	f := NewFormatter()

	node, err := ins.InspectUnit("testunit")
	if err != nil {
		t.Fatalf("InspectUnit() error = %v", err)
	}

	out := f.FormatInfo(node)
	for _, want := range []string{
		"name:        testunit",
		"license:     GPL",
		"parm:        test_value:Simple test parameter that can be modified at runtime (rw)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatInfo() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatValueWithUnit(t *testing.T) {
	f := NewFormatter()
	if got := f.FormatValue(210, "deci-celsius"); got != "210 deci-celsius" {
		t.Errorf("FormatValue() = %q", got)
	}
	if got := f.FormatValue(5, ""); got != "5" {
		t.Errorf("FormatValue() = %q", got)
	}
}
