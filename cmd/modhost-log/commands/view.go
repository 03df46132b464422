// Package commands implements the modhost-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/modhost-project/modhost-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Unit      string
	Direction *log.Direction
	Category  *log.Category
	MinLevel  *log.Level
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [conn:id] LEVEL DIRECTION CATEGORY Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	var scope string
	switch {
	case event.ConnectionID != "":
		scope = "conn:" + shortenID(event.ConnectionID)
	case event.Unit != "":
		scope = "unit:" + event.Unit
	default:
		scope = "host"
	}

	// Determine event type label
	var typeLabel string
	switch {
	case event.Lifecycle != nil:
		typeLabel = event.Lifecycle.Phase.String()
	case event.Param != nil:
		typeLabel = "Param"
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Frame != nil:
		typeLabel = "Frame"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Log"
	}

	dir := ""
	if event.Category == log.CategoryMessage {
		dir = event.Direction.String() + " "
	}

	fmt.Fprintf(w, "%s [%s] %-5s %s%s %s\n", ts, scope, event.Level, dir, event.Category, typeLabel)

	if event.Message != "" {
		fmt.Fprintf(w, "  Message: %s\n", event.Message)
	}

	// Type-specific details
	switch {
	case event.Lifecycle != nil:
		formatLifecycleDetails(w, event.Lifecycle)
	case event.Param != nil:
		formatParamDetails(w, event.Param)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenID returns the first 8 characters of an identifier.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatLifecycleDetails(w io.Writer, lc *log.LifecycleEvent) {
	if lc.InstanceID != "" {
		fmt.Fprintf(w, "  Instance: %s\n", shortenID(lc.InstanceID))
	}
}

func formatParamDetails(w io.Writer, p *log.ParamEvent) {
	if p.OldValue != p.NewValue {
		fmt.Fprintf(w, "  %s: %d -> %d\n", p.Param, p.OldValue, p.NewValue)
	} else {
		fmt.Fprintf(w, "  %s = %d\n", p.Param, p.NewValue)
	}
	if p.Privileged {
		fmt.Fprintln(w, "  Privileged: yes")
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity)
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
		if frame.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

func formatErrorDetails(w io.Writer, errData *log.ErrorEventData) {
	fmt.Fprintf(w, "  Error: %s\n", errData.Message)
	if errData.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", errData.Context)
	}
}

// matchesView returns true if the event passes the view filter.
func matchesView(event log.Event, filter ViewFilter) bool {
	if filter.Unit != "" && event.Unit != filter.Unit {
		return false
	}
	if filter.Direction != nil && event.Direction != *filter.Direction {
		return false
	}
	if filter.Category != nil && event.Category != *filter.Category {
		return false
	}
	if filter.MinLevel != nil && event.Level < *filter.MinLevel {
		return false
	}
	return true
}

// ParseDirectionFlag parses a direction string from a command-line flag
// (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category string from a command-line flag
// (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "lifecycle":
		return log.CategoryLifecycle, nil
	case "param":
		return log.CategoryParam, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	case "message":
		return log.CategoryMessage, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be lifecycle, param, state, error, or message)", s)
	}
}

// ParseLevelFlag parses a minimum level string from a command-line flag
// (case-insensitive).
func ParseLevelFlag(s string) (log.Level, error) {
	switch strings.ToLower(s) {
	case "info":
		return log.LevelInfo, nil
	case "warn":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid level: %s (must be info, warn, or error)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		if !matchesView(event, filter) {
			continue
		}

		formatEvent(output, event)
	}

	return nil
}
