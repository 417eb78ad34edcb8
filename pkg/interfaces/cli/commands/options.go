package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/vsinha/mps/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

// Options are the flags shared by every subcommand
type Options struct {
	ScenarioDir   string
	BOMFile       string
	InventoryFile string
	MaterialsFile string
	DemandsFile   string
	ConfigFile    string
	Format        string
	Color         string
	OutputFile    string
	Verbose       bool
}

func (o *Options) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.ScenarioDir, "scenario", "", "Directory holding bom, inventory, materials and demands files (.csv or .xlsx)")
	fs.StringVar(&o.BOMFile, "bom", "", "BOM file (.csv or .xlsx)")
	fs.StringVar(&o.InventoryFile, "inventory", "", "Inventory file (.csv or .xlsx)")
	fs.StringVar(&o.MaterialsFile, "materials", "", "Material master file (.csv or .xlsx)")
	fs.StringVar(&o.DemandsFile, "demands", "", "Demands file (.csv or .xlsx)")
	fs.StringVar(&o.ConfigFile, "config", "", "YAML config file (default $MPS_CONFIG)")
	fs.StringVar(&o.Format, "format", "", "Output format: text, json, svg")
	fs.StringVar(&o.Color, "color", "", "Colour output: auto, always, never")
	fs.StringVarP(&o.OutputFile, "output", "o", "", "Write output to this file instead of stdout")
	fs.BoolVarP(&o.Verbose, "verbose", "v", false, "Log planner activity to stderr")
}

// inputFiles are the resolved data file paths; optional files may be empty
type inputFiles struct {
	BOM       string
	Inventory string
	Materials string
	Demands   string
}

// resolveInputs picks files from the scenario directory, with explicit flags taking precedence
func (o *Options) resolveInputs() (inputFiles, error) {
	files := inputFiles{
		BOM:       o.BOMFile,
		Inventory: o.InventoryFile,
		Materials: o.MaterialsFile,
		Demands:   o.DemandsFile,
	}
	if o.ScenarioDir != "" {
		info, err := os.Stat(o.ScenarioDir)
		if err != nil {
			return files, fmt.Errorf("scenario directory: %w", err)
		}
		if !info.IsDir() {
			return files, fmt.Errorf("scenario %s is not a directory", o.ScenarioDir)
		}
		fill := func(dst *string, name string) {
			if *dst == "" {
				*dst = findDataFile(o.ScenarioDir, name)
			}
		}
		fill(&files.BOM, "bom")
		fill(&files.Inventory, "inventory")
		fill(&files.Materials, "materials")
		fill(&files.Demands, "demands")
	}

	if files.BOM == "" || files.Inventory == "" {
		return files, errors.New("must specify either --scenario directory or --bom and --inventory files")
	}
	return files, nil
}

func findDataFile(dir, name string) string {
	for _, ext := range []string{".csv", ".xlsx"} {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// dateValue is a YYYY-MM-DD flag; "today" resolves against the App clock when read
type dateValue struct {
	t     time.Time
	today bool
}

var _ pflag.Value = (*dateValue)(nil)

func (d *dateValue) String() string {
	switch {
	case d.today:
		return "today"
	case d.t.IsZero():
		return ""
	default:
		return d.t.Format(dateLayout)
	}
}

func (d *dateValue) Set(s string) error {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "today") {
		d.today = true
		d.t = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD or today)", s)
	}
	d.t = t
	d.today = false
	return nil
}

func (d *dateValue) Type() string {
	return "date"
}

// resolve returns the date, or the zero time when the flag was not set
func (d *dateValue) resolve(now func() time.Time) time.Time {
	if d.today {
		return entities.TruncateDay(now())
	}
	return d.t
}

// ptr returns the resolved date or nil when unset
func (d *dateValue) ptr(now func() time.Time) *time.Time {
	t := d.resolve(now)
	if t.IsZero() {
		return nil
	}
	return &t
}
