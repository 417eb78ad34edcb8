package planning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/vsinha/mps/pkg/application/dto"
	"github.com/vsinha/mps/pkg/application/services/assembly"
	"github.com/vsinha/mps/pkg/application/services/leadtime"
	"github.com/vsinha/mps/pkg/application/services/risk"
	"github.com/vsinha/mps/pkg/application/services/schedule"
	"github.com/vsinha/mps/pkg/config"
	"github.com/vsinha/mps/pkg/domain/entities"
	"github.com/vsinha/mps/pkg/domain/repositories"
	"github.com/vsinha/mps/pkg/domain/services"
	"github.com/vsinha/mps/pkg/infrastructure/events"
)

// DefaultWorkers bounds how many products PlanAll computes at once
const DefaultWorkers = 4

// Dependencies are the collaborators a Planner reads from and publishes to.
// Materials, Demands, Events and Logger are optional.
type Dependencies struct {
	BOM       repositories.BOMRepository
	Inventory repositories.InventoryRepository
	Materials repositories.MaterialRepository
	Demands   repositories.DemandRepository
	Events    events.EventStore
	Logger    *slog.Logger
}

// Settings tune the planning pipeline
type Settings struct {
	MaxDepth              int
	DefaultProductionRate float64
	DefaultDeliveryDays   int
	Schedule              schedule.Config
	PlanQuantity          float64
	Workers               int
}

// DefaultSettings returns the built-in settings
func DefaultSettings() Settings {
	return Settings{
		MaxDepth:              assembly.DefaultMaxDepth,
		DefaultProductionRate: leadtime.DefaultProductionRate,
		DefaultDeliveryDays:   leadtime.DefaultDeliveryDays,
		Schedule:              schedule.DefaultConfig(),
		PlanQuantity:          1,
		Workers:               DefaultWorkers,
	}
}

// SettingsFromConfig maps loaded configuration onto planner settings
func SettingsFromConfig(cfg *config.Config) Settings {
	s := DefaultSettings()
	if cfg == nil {
		return s
	}
	s.MaxDepth = cfg.Feasibility.MaxDepth
	s.DefaultProductionRate = cfg.Schedule.DefaultProductionRate
	s.DefaultDeliveryDays = cfg.Schedule.DefaultDeliveryDays
	s.Schedule = schedule.Config{
		BufferDays:            cfg.Schedule.BufferDays,
		OvershootCriticalDays: cfg.Schedule.OvershootCriticalDays,
	}
	s.PlanQuantity = cfg.Schedule.PlanQuantity
	return s
}

// Planner runs tree building, feasibility, scheduling and risk synthesis over repository data.
// Feasibility analyses are memoised per product and inventory version.
type Planner struct {
	deps        Dependencies
	settings    Settings
	builder     *assembly.TreeBuilder
	calculator  *assembly.Calculator
	generator   *schedule.Generator
	synthesizer *risk.Synthesizer
	observer    UseCaseObserver
	logger      *slog.Logger
	now         func() time.Time

	group singleflight.Group
	mu    sync.RWMutex
	cache map[dto.FeasibilityCacheKey]*dto.FeasibilityAnalysis
}

// NewPlanner creates a planner; BOM and Inventory repositories are required
func NewPlanner(deps Dependencies, settings Settings, observers ...UseCaseObserver) (*Planner, error) {
	if deps.BOM == nil {
		return nil, errors.New("planner requires a BOM repository")
	}
	if deps.Inventory == nil {
		return nil, errors.New("planner requires an inventory repository")
	}
	if settings.Workers <= 0 {
		settings.Workers = DefaultWorkers
	}
	if settings.PlanQuantity <= 0 {
		settings.PlanQuantity = 1
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	resolver := leadtime.NewResolver(settings.DefaultProductionRate, settings.DefaultDeliveryDays)
	return &Planner{
		deps:        deps,
		settings:    settings,
		builder:     assembly.NewTreeBuilder(settings.MaxDepth),
		calculator:  assembly.NewCalculator(),
		generator:   schedule.NewGenerator(resolver, settings.Schedule),
		synthesizer: risk.NewSynthesizer(),
		observer:    useCaseObserverOrNoop(observers),
		logger:      logger,
		now:         time.Now,
		cache:       make(map[dto.FeasibilityCacheKey]*dto.FeasibilityAnalysis),
	}, nil
}

// WithClock replaces the clock used for "today" in schedules and reference dates
func (p *Planner) WithClock(now func() time.Time) *Planner {
	p.now = now
	p.generator.WithClock(now)
	return p
}

// Invalidate drops every memoised analysis, e.g. after the BOM was reloaded
func (p *Planner) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[dto.FeasibilityCacheKey]*dto.FeasibilityAnalysis)
}

// Feasibility computes how many units of productCode the current inventory supports
func (p *Planner) Feasibility(ctx context.Context, productCode entities.MaterialCode) (result *dto.PlanResult, err error) {
	start := time.Now()
	ev := UseCaseEvent{Name: UseCaseFeasibility, Product: productCode}
	defer func() { p.observe(ctx, &ev, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	version := p.deps.Inventory.Version()
	analysis, hit, err := p.analyze(ctx, productCode, version)
	if err != nil {
		return nil, err
	}

	alerts := p.synthesizer.Synthesize(risk.Input{
		Tree:            analysis.Tree,
		Feasibility:     analysis.Root,
		PlannedQuantity: p.settings.PlanQuantity,
	})
	result = &dto.PlanResult{
		RunID:            uuid.New(),
		ProductCode:      productCode,
		Quantity:         p.settings.PlanQuantity,
		InventoryVersion: version,
		Feasibility:      analysis.Root,
		Tree:             analysis.Tree,
		Alerts:           alerts,
		Diagnostics:      analysis.Diagnostics,
		Bottlenecks:      bottlenecks(analysis.Root),
		CacheHit:         hit,
		GeneratedAt:      p.now(),
		Duration:         time.Since(start),
	}
	ev.MaxSets = result.MaxSets()
	ev.CacheHit = hit
	ev.Alerts = len(alerts)
	return result, nil
}

// Plan computes feasibility, the schedule and the risk alerts of one request
func (p *Planner) Plan(ctx context.Context, req dto.PlanRequest) (result *dto.PlanResult, err error) {
	start := time.Now()
	ev := UseCaseEvent{Name: UseCasePlan, Product: req.ProductCode}
	defer func() { p.observe(ctx, &ev, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.ProductCode == "" {
		return nil, errors.New("product code cannot be empty")
	}
	if req.Quantity <= 0 {
		req.Quantity = p.settings.PlanQuantity
	}
	if req.Policy == "" {
		req.Policy = entities.PolicyForward
	}
	if req.ReferenceDate.IsZero() {
		req.ReferenceDate = entities.TruncateDay(p.now())
	}
	ev.Policy = req.Policy

	runID := uuid.New()
	stream := "plan-" + runID.String()
	version := p.deps.Inventory.Version()
	p.publish(stream, events.PlanRequestedEvent, events.PlanRequested{
		ProductCode:      req.ProductCode,
		Quantity:         req.Quantity,
		Policy:           req.Policy,
		InventoryVersion: version,
	})

	result, err = p.plan(ctx, req, runID, stream, version)
	if err != nil {
		p.publish(stream, events.PlanFailedEvent, events.PlanFailed{ProductCode: req.ProductCode, Error: err.Error()})
		return nil, err
	}
	result.Duration = time.Since(start)
	p.publish(stream, events.PlanCompletedEvent, events.PlanCompleted{
		ProductCode: req.ProductCode,
		DurationMs:  result.Duration.Milliseconds(),
	})

	ev.CacheHit = result.CacheHit
	ev.Alerts = len(result.Alerts)
	ev.Feasible = result.Schedule.Feasible
	return result, nil
}

func (p *Planner) plan(ctx context.Context, req dto.PlanRequest, runID uuid.UUID, stream string, version uint64) (*dto.PlanResult, error) {
	analysis, hit, err := p.analyze(ctx, req.ProductCode, version)
	if err != nil {
		return nil, err
	}
	p.publish(stream, events.FeasibilityCalculatedEvent, events.FeasibilityCalculated{
		ProductCode:    req.ProductCode,
		MaxSets:        analysis.Root.MaxSets,
		LimitingFactor: analysis.Root.LimitingCode,
		CacheHit:       hit,
	})

	sched, err := p.generator.Generate(ctx, schedule.Request{
		Tree:          analysis.Tree,
		Materials:     analysis.Materials,
		Policy:        req.Policy,
		ReferenceDate: req.ReferenceDate,
		Quantity:      req.Quantity,
		TargetDate:    req.TargetDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate schedule for %s: %w", req.ProductCode, err)
	}
	sched.RunID = runID
	p.publish(stream, events.ScheduleGeneratedEvent, events.ScheduleGenerated{
		ProductCode:  req.ProductCode,
		Policy:       sched.Policy,
		Tasks:        len(sched.Tasks()),
		Feasible:     sched.Feasible,
		ShiftDays:    sched.ShiftDays,
		CriticalPath: sched.CriticalPath,
	})

	alerts := p.synthesizer.Synthesize(risk.Input{
		Tree:            analysis.Tree,
		Feasibility:     analysis.Root,
		Schedule:        sched,
		PlannedQuantity: req.Quantity,
	})
	result := &dto.PlanResult{
		RunID:            runID,
		ProductCode:      req.ProductCode,
		Quantity:         req.Quantity,
		InventoryVersion: version,
		Feasibility:      analysis.Root,
		Tree:             analysis.Tree,
		Schedule:         sched,
		Alerts:           alerts,
		Diagnostics:      sched.Diagnostics,
		Bottlenecks:      bottlenecks(analysis.Root),
		CacheHit:         hit,
		GeneratedAt:      p.now(),
	}
	p.publish(stream, events.RiskAlertsRaisedEvent, events.RiskAlertsRaised{
		ProductCode: req.ProductCode,
		Critical:    result.CriticalAlerts(),
		Warning:     len(alerts) - result.CriticalAlerts(),
	})
	return result, nil
}

// PlanAll plans every request concurrently and returns the results in request order.
// The first failure cancels the remaining runs.
func (p *Planner) PlanAll(ctx context.Context, reqs []dto.PlanRequest) (results []*dto.PlanResult, err error) {
	start := time.Now()
	ev := UseCaseEvent{Name: UseCasePlanAll, Requests: len(reqs)}
	defer func() { p.observe(ctx, &ev, start, err) }()

	results = make([]*dto.PlanResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.settings.Workers)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := p.Plan(gctx, req)
			if err != nil {
				return fmt.Errorf("failed to plan %s: %w", req.ProductCode, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// PlanDemands plans every stored demand; forward demands start at reference
func (p *Planner) PlanDemands(ctx context.Context, reference time.Time) ([]*dto.PlanResult, error) {
	if p.deps.Demands == nil {
		return nil, errors.New("planner has no demand repository")
	}
	demands, err := p.deps.Demands.GetDemands()
	if err != nil {
		return nil, fmt.Errorf("failed to load demands: %w", err)
	}
	if len(demands) == 0 {
		return nil, errors.New("no demands provided for planning")
	}
	if reference.IsZero() {
		reference = entities.TruncateDay(p.now())
	}

	reqs := make([]dto.PlanRequest, 0, len(demands))
	for _, d := range demands {
		reqs = append(reqs, dto.PlanRequestFromDemand(d, reference))
	}
	return p.PlanAll(ctx, reqs)
}

// Validate checks the loaded BOM and material master for structural problems
func (p *Planner) Validate(ctx context.Context) (result *services.ValidationResult, err error) {
	start := time.Now()
	ev := UseCaseEvent{Name: UseCaseValidate}
	defer func() { p.observe(ctx, &ev, start, err) }()

	edgePtrs, err := p.deps.BOM.GetAllEdges()
	if err != nil {
		return nil, fmt.Errorf("failed to load BOM: %w", err)
	}
	edges := make([]entities.BOMEdge, 0, len(edgePtrs))
	for _, e := range edgePtrs {
		edges = append(edges, *e)
	}

	validator := services.NewBOMValidator()
	result = validator.ValidateBOM(edges)
	if p.deps.Materials != nil {
		materials, err := p.deps.Materials.GetAllMaterials()
		if err != nil {
			return nil, fmt.Errorf("failed to load materials: %w", err)
		}
		list := make([]entities.MaterialInfo, 0, len(materials))
		for _, m := range materials {
			list = append(list, *m)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
		mat := validator.ValidateMaterials(list, edges)
		result.Errors = append(result.Errors, mat.Errors...)
		result.Warnings = append(result.Warnings, mat.Warnings...)
	}

	ev.Edges = len(edges)
	ev.Errors = len(result.Errors)
	ev.Warnings = len(result.Warnings)
	return result, nil
}

// analyze returns the memoised analysis for (productCode, version), computing it at most once
// across concurrent callers. The bool reports whether the result was reused.
func (p *Planner) analyze(ctx context.Context, productCode entities.MaterialCode, version uint64) (*dto.FeasibilityAnalysis, bool, error) {
	key := dto.FeasibilityCacheKey{ProductCode: productCode, InventoryVersion: version}
	if cached := p.cached(key); cached != nil {
		return cached, true, nil
	}

	v, err, shared := p.group.Do(fmt.Sprintf("%s@%d", productCode, version), func() (any, error) {
		if cached := p.cached(key); cached != nil {
			return cached, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		analysis, err := p.compute(productCode)
		if err != nil {
			return nil, err
		}
		// inventory changed while loading: do not cache under the stale version
		if p.deps.Inventory.Version() == version {
			p.mu.Lock()
			p.cache[key] = analysis
			p.mu.Unlock()
		}
		return analysis, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*dto.FeasibilityAnalysis), shared, nil
}

func (p *Planner) cached(key dto.FeasibilityCacheKey) *dto.FeasibilityAnalysis {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cache[key]
}

func (p *Planner) compute(productCode entities.MaterialCode) (*dto.FeasibilityAnalysis, error) {
	edges, err := p.deps.BOM.GetProductEdges(productCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load BOM of %s: %w", productCode, err)
	}
	inventory, err := p.deps.Inventory.GetSnapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	var materials map[entities.MaterialCode]*entities.MaterialInfo
	if p.deps.Materials != nil {
		materials, err = p.deps.Materials.GetAllMaterials()
		if err != nil {
			return nil, fmt.Errorf("failed to load materials: %w", err)
		}
	}

	tree, res, err := assembly.AnalyzeWith(p.builder, p.calculator, productCode, edges, inventory, materials)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", productCode, err)
	}
	return &dto.FeasibilityAnalysis{
		Tree:        tree,
		Root:        res.Root,
		Materials:   materials,
		Diagnostics: res.Diagnostics,
		ComputedAt:  p.now(),
	}, nil
}

func (p *Planner) publish(stream, eventType string, data any) {
	if p.deps.Events == nil {
		return
	}
	// a failed append does not fail the run
	if err := p.deps.Events.AppendEvent(stream, events.NewEvent(eventType, stream, data)); err != nil {
		p.logger.Warn("plan event dropped", "type", eventType, "stream", stream, "error", err)
	}
}

func (p *Planner) observe(ctx context.Context, ev *UseCaseEvent, start time.Time, err error) {
	ev.Duration = time.Since(start)
	ev.Err = err
	p.observer.ObserveUseCase(ctx, *ev)
}

func bottlenecks(root *entities.AssemblyNode) []entities.MaterialCode {
	if root == nil {
		return nil
	}
	var codes []entities.MaterialCode
	for _, n := range root.BottleneckChain() {
		codes = append(codes, n.Code)
	}
	return codes
}
