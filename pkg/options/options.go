package options

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/modhost-project/modhost-go/pkg/host"
)

// ManagedFileName is the file runtime overrides are saved to. The
// "99-" prefix sorts it last so runtime overrides win over files
// shipped by hand.
const ManagedFileName = "99-modhost-managed.conf"

// Warning reports a skipped line.
type Warning struct {
	File    string
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: %s", w.File, w.Line, w.Message)
}

// entry is one resolved override.
type entry struct {
	value  int64
	source string
}

// Store holds parameter overrides parsed from a configuration
// directory. It implements host.OptionSource.
type Store struct {
	mu sync.RWMutex

	dir      string
	entries  map[string]map[string]entry
	managed  map[string]map[string]int64
	warnings []Warning
}

// LoadDir parses all .conf files in dir. A missing directory yields an
// empty store, so hosts run fine without any configuration.
func LoadDir(dir string) (*Store, error) {
	s := &Store{
		dir:     dir,
		entries: make(map[string]map[string]entry),
		managed: make(map[string]map[string]int64),
	}

	names, err := filepath.Glob(filepath.Join(dir, "*.conf"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.parseFile(name); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// parseFile folds one file into the store. Later files overwrite
// earlier entries for the same unit and parameter.
func (s *Store) parseFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	base := filepath.Base(path)
	managed := base == ManagedFileName

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if fields[0] != "options" {
			// Other directives are outside this store's scope.
			continue
		}
		if len(fields) < 3 {
			s.warn(base, lineNo, "options line needs a unit and at least one assignment")
			continue
		}

		unit := fields[1]
		for _, assignment := range fields[2:] {
			param, raw, found := strings.Cut(assignment, "=")
			if !found || param == "" {
				s.warn(base, lineNo, fmt.Sprintf("malformed assignment %q", assignment))
				continue
			}
			value, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				s.warn(base, lineNo, fmt.Sprintf("%s: value %q is not an integer", param, raw))
				continue
			}
			s.set(unit, param, value, base)
			if managed {
				s.setManaged(unit, param, value)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

func (s *Store) warn(file string, line int, msg string) {
	s.warnings = append(s.warnings, Warning{File: file, Line: line, Message: msg})
}

func (s *Store) set(unit, param string, value int64, source string) {
	params, exists := s.entries[unit]
	if !exists {
		params = make(map[string]entry)
		s.entries[unit] = params
	}
	params[param] = entry{value: value, source: source}
}

func (s *Store) setManaged(unit, param string, value int64) {
	params, exists := s.managed[unit]
	if !exists {
		params = make(map[string]int64)
		s.managed[unit] = params
	}
	params[param] = value
}

// Warnings returns the lines skipped during parsing.
func (s *Store) Warnings() []Warning {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Warning(nil), s.warnings...)
}

// OptionsFor returns the overrides for a unit, sorted by parameter
// name. Implements host.OptionSource.
func (s *Store) OptionsFor(unit string) []host.Option {
	s.mu.RLock()
	defer s.mu.RUnlock()

	params, exists := s.entries[unit]
	if !exists {
		return nil
	}

	opts := make([]host.Option, 0, len(params))
	for param, e := range params {
		opts = append(opts, host.Option{
			Param:  param,
			Value:  e.value,
			Source: e.source,
		})
	}
	sort.Slice(opts, func(i, j int) bool {
		return opts[i].Param < opts[j].Param
	})
	return opts
}

// Units returns all unit names with overrides, sorted.
func (s *Store) Units() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set records a runtime override. It takes effect for future loads and
// persists once Save is called.
func (s *Store) Set(unit, param string, value int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(unit, param, value, ManagedFileName)
	s.setManaged(unit, param, value)
}

// Unset removes a runtime override. Overrides from hand-written files
// are left alone.
func (s *Store) Unset(unit, param string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	params, exists := s.managed[unit]
	if !exists {
		return false
	}
	if _, exists := params[param]; !exists {
		return false
	}
	delete(params, param)
	if len(params) == 0 {
		delete(s.managed, unit)
	}

	// Drop the resolved entry too when it came from the managed file.
	if resolved, ok := s.entries[unit]; ok {
		if e, ok := resolved[param]; ok && e.source == ManagedFileName {
			delete(resolved, param)
			if len(resolved) == 0 {
				delete(s.entries, unit)
			}
		}
	}
	return true
}

// Save writes the managed overrides to the managed file using a
// temp-file rename so a crash never leaves a half-written file.
func (s *Store) Save() error {
	s.mu.RLock()
	var b strings.Builder
	b.WriteString("# Managed by modhost. Hand edits to this file are overwritten.\n")
	fmt.Fprintf(&b, "# Saved at %s\n", time.Now().UTC().Format(time.RFC3339))

	units := make([]string, 0, len(s.managed))
	for unit := range s.managed {
		units = append(units, unit)
	}
	sort.Strings(units)
	for _, unit := range units {
		params := make([]string, 0, len(s.managed[unit]))
		for param := range s.managed[unit] {
			params = append(params, param)
		}
		sort.Strings(params)
		for _, param := range params {
			fmt.Fprintf(&b, "options %s %s=%d\n", unit, param, s.managed[unit][param])
		}
	}
	dir := s.dir
	s.mu.RUnlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, ManagedFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename %s: %w", tmp, err)
	}
	return nil
}
