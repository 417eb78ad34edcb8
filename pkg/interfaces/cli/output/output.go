package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vsinha/mps/pkg/application/dto"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatSVG  = "svg"
)

// Config holds configuration for output generation
type Config struct {
	Format string
	Color  string
}

// View selects which part of a result the text format shows
type View int

const (
	ViewFeasibility View = iota
	ViewSchedule
)

// Write renders results to w in the configured format. SVG output needs exactly one scheduled result.
func Write(w io.Writer, results []*dto.PlanResult, view View, cfg Config) error {
	switch cfg.Format {
	case FormatText, "":
		th := NewTheme(w, cfg.Color)
		for i, r := range results {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			var err error
			if view == ViewSchedule {
				err = WriteSchedule(w, th, r)
			} else {
				err = WriteFeasibility(w, th, r)
			}
			if err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		if len(results) == 1 {
			return WriteJSON(w, results[0])
		}
		return WriteJSON(w, results)
	case FormatSVG:
		if len(results) != 1 || results[0].Schedule == nil {
			return fmt.Errorf("svg output needs exactly one schedule, got %d results", len(results))
		}
		s := results[0].Schedule
		_, err := io.WriteString(w, NewGanttChart(s).GenerateSVG(s))
		return err
	default:
		return fmt.Errorf("unsupported output format: %s", cfg.Format)
	}
}

// WriteJSON writes v as indented JSON
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}
