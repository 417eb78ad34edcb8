package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vsinha/mps/pkg/application/services/planning"
	"github.com/vsinha/mps/pkg/config"
	"github.com/vsinha/mps/pkg/domain/entities"
	"github.com/vsinha/mps/pkg/infrastructure/events"
	"github.com/vsinha/mps/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/mps/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/mps/pkg/interfaces/cli/output"
)

// runtime is the wired state of one command invocation
type runtime struct {
	cfg       *config.Config
	logger    *slog.Logger
	planner   *planning.Planner
	edges     []*entities.BOMEdge
	demands   []*entities.Demand
	materials []*entities.MaterialInfo
}

// loadConfig reads configuration and applies flag overrides
func (a *App) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.FromEnvironment(a.opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = a.opts.Format
	}
	if flags.Changed("color") {
		cfg.Output.Color = a.opts.Color
	}
	if a.opts.Verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads configuration and data files and wires a planner over in-memory repositories
func (a *App) setup(cmd *cobra.Command) (*runtime, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := cfg.NewLogger(cmd.ErrOrStderr())

	files, err := a.opts.resolveInputs()
	if err != nil {
		return nil, err
	}

	loader := csv.NewLoader()
	rt := &runtime{cfg: cfg, logger: logger}

	rt.edges, err = loader.LoadBOM(files.BOM)
	if err != nil {
		return nil, fmt.Errorf("error loading BOM: %w", err)
	}
	records, err := loader.LoadInventory(files.Inventory)
	if err != nil {
		return nil, fmt.Errorf("error loading inventory: %w", err)
	}
	if files.Materials != "" {
		rt.materials, err = loader.LoadMaterials(files.Materials)
		if err != nil {
			return nil, fmt.Errorf("error loading materials: %w", err)
		}
	}
	if files.Demands != "" {
		rt.demands, err = loader.LoadDemands(files.Demands)
		if err != nil {
			return nil, fmt.Errorf("error loading demands: %w", err)
		}
	}
	logger.Debug("data loaded",
		"bom_edges", len(rt.edges),
		"inventory_records", len(records),
		"materials", len(rt.materials),
		"demands", len(rt.demands))

	bomRepo := memory.NewBOMRepository(len(rt.edges))
	if err := bomRepo.LoadEdges(rt.edges); err != nil {
		return nil, fmt.Errorf("failed to load BOM edges into repository: %w", err)
	}
	if err := bomRepo.LoadMaterials(rt.materials); err != nil {
		return nil, fmt.Errorf("failed to load materials into repository: %w", err)
	}
	inventoryRepo := memory.NewInventoryRepository()
	if err := inventoryRepo.LoadRecords(records); err != nil {
		return nil, fmt.Errorf("failed to load inventory into repository: %w", err)
	}
	demandRepo := memory.NewDemandRepository()
	if err := demandRepo.LoadDemands(rt.demands); err != nil {
		return nil, fmt.Errorf("failed to load demands into repository: %w", err)
	}

	store := events.NewInMemoryEventStore(logger)
	if err := store.Subscribe(events.AllPlanEvents, &events.HandlerFunc{
		Types: events.AllPlanEvents,
		Fn: func(e events.Event) error {
			logger.Debug("plan event", "type", e.Type(), "stream", e.StreamID(), "version", e.Version())
			return nil
		},
	}); err != nil {
		return nil, err
	}

	deps := planning.Dependencies{
		BOM:       bomRepo,
		Inventory: inventoryRepo,
		Demands:   demandRepo,
		Events:    store,
		Logger:    logger,
	}
	if len(rt.materials) > 0 {
		deps.Materials = bomRepo
	}
	rt.planner, err = planning.NewPlanner(deps, planning.SettingsFromConfig(cfg), planning.NewLogUseCaseObserver(logger))
	if err != nil {
		return nil, err
	}
	rt.planner.WithClock(a.Now)
	return rt, nil
}

// openOutput returns the writer selected by --output and a function closing it
func (a *App) openOutput(cmd *cobra.Command) (io.Writer, func() error, error) {
	if a.opts.OutputFile == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(a.opts.OutputFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

func (rt *runtime) outputConfig() output.Config {
	return output.Config{Format: rt.cfg.Output.Format, Color: rt.cfg.Output.Color}
}

// rootProducts returns parents that never appear as a child, in BOM order
func rootProducts(edges []*entities.BOMEdge) []entities.MaterialCode {
	children := make(map[entities.MaterialCode]bool)
	for _, e := range edges {
		children[e.ChildCode] = true
	}
	var roots []entities.MaterialCode
	seen := make(map[entities.MaterialCode]bool)
	for _, e := range edges {
		if !children[e.ParentCode] && !seen[e.ParentCode] {
			seen[e.ParentCode] = true
			roots = append(roots, e.ParentCode)
		}
	}
	return roots
}
