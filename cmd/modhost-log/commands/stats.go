package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/modhost-project/modhost-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	EventsByLevel    map[log.Level]int
	Units            map[string]*UnitStats
	Connections      map[string]*ConnectionStats
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// UnitStats holds statistics for a single unit.
type UnitStats struct {
	Events      int
	Attaches    int
	Detaches    int
	ParamWrites int
}

// ConnectionStats holds statistics for a single connection.
type ConnectionStats struct {
	FirstSeen  time.Time
	LastSeen   time.Time
	Events     int
	RemoteAddr string
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		EventsByLevel:    make(map[log.Level]int),
		Units:            make(map[string]*UnitStats),
		Connections:      make(map[string]*ConnectionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++
		stats.EventsByLevel[event.Level]++

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		// Track per-unit stats
		if event.Unit != "" {
			unit, ok := stats.Units[event.Unit]
			if !ok {
				unit = &UnitStats{}
				stats.Units[event.Unit] = unit
			}
			unit.Events++
			if event.Lifecycle != nil {
				switch event.Lifecycle.Phase {
				case log.PhaseAttach:
					unit.Attaches++
				case log.PhaseDetach:
					unit.Detaches++
				}
			}
			if event.Param != nil && event.Param.OldValue != event.Param.NewValue {
				unit.ParamWrites++
			}
		}

		// Track connection stats
		if event.ConnectionID != "" {
			conn, ok := stats.Connections[event.ConnectionID]
			if !ok {
				conn = &ConnectionStats{
					FirstSeen: event.Timestamp,
					LastSeen:  event.Timestamp,
				}
				stats.Connections[event.ConnectionID] = conn
			}
			conn.Events++
			if event.Timestamp.After(conn.LastSeen) {
				conn.LastSeen = event.Timestamp
			}
			if event.RemoteAddr != "" && conn.RemoteAddr == "" {
				conn.RemoteAddr = event.RemoteAddr
			}
		}

		// Count errors
		if event.Error != nil {
			stats.Errors++
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Modhost Event Log Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	// Total events
	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	// Events by category
	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryLifecycle, log.CategoryParam, log.CategoryState, log.CategoryError, log.CategoryMessage} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Events by level
	fmt.Fprintln(w, "Events by Level:")
	for _, lvl := range []log.Level{log.LevelInfo, log.LevelWarn, log.LevelError} {
		if count := stats.EventsByLevel[lvl]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", lvl.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Units
	fmt.Fprintf(w, "Units: %d\n", len(stats.Units))
	if len(stats.Units) > 0 {
		names := make([]string, 0, len(stats.Units))
		for name := range stats.Units {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			u := stats.Units[name]
			fmt.Fprintf(w, "  %-16s %d events, %d attaches, %d detaches, %d writes\n",
				name, u.Events, u.Attaches, u.Detaches, u.ParamWrites)
		}
	}
	fmt.Fprintln(w)

	// Connections
	fmt.Fprintf(w, "Connections: %d\n", len(stats.Connections))
	if len(stats.Connections) > 0 {
		// Sort by first seen time
		type connInfo struct {
			id    string
			stats *ConnectionStats
		}
		conns := make([]connInfo, 0, len(stats.Connections))
		for id, cs := range stats.Connections {
			conns = append(conns, connInfo{id, cs})
		}
		sort.Slice(conns, func(i, j int) bool {
			return conns[i].stats.FirstSeen.Before(conns[j].stats.FirstSeen)
		})

		fmt.Fprintln(w, "")
		for _, c := range conns {
			duration := c.stats.LastSeen.Sub(c.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenID(c.id), c.stats.Events, duration)
			if c.stats.RemoteAddr != "" {
				fmt.Fprintf(w, "           Remote: %s\n", c.stats.RemoteAddr)
			}
		}
	}

	// Errors
	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
