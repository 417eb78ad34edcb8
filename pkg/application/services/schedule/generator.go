package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vsinha/mps/pkg/application/services/leadtime"
	"github.com/vsinha/mps/pkg/domain/entities"
)

const (
	DefaultBufferDays            = 3
	DefaultOvershootCriticalDays = 7
)

// Config holds the thresholds used to classify tasks
type Config struct {
	// BufferDays marks a backward task as warning when it must start within this many days of now
	BufferDays int
	// OvershootCriticalDays is the forward overshoot beyond the target date that turns a warning critical
	OvershootCriticalDays int
}

// DefaultConfig returns the default thresholds
func DefaultConfig() Config {
	return Config{
		BufferDays:            DefaultBufferDays,
		OvershootCriticalDays: DefaultOvershootCriticalDays,
	}
}

// Request describes one schedule generation
type Request struct {
	Tree      *entities.BOMTree
	Materials map[entities.MaterialCode]*entities.MaterialInfo
	Policy    entities.Policy
	// ReferenceDate is the plan start for the forward policy and the required completion date for the backward policy
	ReferenceDate time.Time
	// Quantity of the root product to plan; zero means 1
	Quantity float64
	// TargetDate is the forward policy's deadline; nil disables overshoot classification
	TargetDate *time.Time
}

// Generator produces Gantt task trees from a structure tree and resolved lead times
type Generator struct {
	resolver *leadtime.Resolver
	cfg      Config
	now      func() time.Time
}

// NewGenerator creates a schedule generator
func NewGenerator(resolver *leadtime.Resolver, cfg Config) *Generator {
	if resolver == nil {
		resolver = leadtime.NewResolver(leadtime.DefaultProductionRate, leadtime.DefaultDeliveryDays)
	}
	if cfg.BufferDays < 0 {
		cfg.BufferDays = 0
	}
	if cfg.OvershootCriticalDays < 0 {
		cfg.OvershootCriticalDays = 0
	}
	return &Generator{
		resolver: resolver,
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithClock replaces the clock used to decide which start dates are already in the past
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate schedules the tree under the requested policy.
// Data problems are reported as diagnostics on the schedule; only a nil tree,
// an unknown policy or a cancelled context return an error.
func (g *Generator) Generate(ctx context.Context, req Request) (*entities.Schedule, error) {
	if req.Tree == nil || req.Tree.Root == nil {
		return nil, entities.ErrNilTree
	}
	if req.Policy != entities.PolicyForward && req.Policy != entities.PolicyBackward {
		return nil, fmt.Errorf("%w: %q", entities.ErrUnknownPolicy, req.Policy)
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	p := &pass{
		ctx:      ctx,
		gen:      g,
		req:      req,
		backward: req.Policy == entities.PolicyBackward,
		today:    entities.TruncateDay(g.now()),
		diagSeen: make(map[string]bool),
	}

	reference := entities.TruncateDay(req.ReferenceDate)
	root, err := p.scheduleRoot(req.Tree.Root, reference)
	if err != nil {
		return nil, err
	}

	s := &entities.Schedule{
		RunID:         uuid.New(),
		Policy:        req.Policy,
		ProductCode:   req.Tree.Root.Code,
		Quantity:      req.Quantity,
		ReferenceDate: reference,
		Root:          root,
	}
	s.Diagnostics = append(s.Diagnostics, req.Tree.Diagnostics...)
	s.Diagnostics = append(s.Diagnostics, p.diags...)

	if p.backward {
		due := reference
		s.TargetDate = &due
		g.summarizeBackward(s, p.today)
	} else {
		if req.TargetDate != nil {
			target := entities.TruncateDay(*req.TargetDate)
			s.TargetDate = &target
		}
		g.summarizeForward(s)
	}

	return s, nil
}

// pass is the state of one Generate call
type pass struct {
	ctx      context.Context
	gen      *Generator
	req      Request
	backward bool
	today    time.Time
	diags    []entities.Diagnostic
	diagSeen map[string]bool
}

func (p *pass) diagnose(kind entities.DiagnosticKind, code entities.MaterialCode, format string, args ...any) {
	key := string(kind) + "|" + string(code)
	if p.diagSeen[key] {
		return
	}
	p.diagSeen[key] = true
	p.diags = append(p.diags, entities.NewDiagnostic(kind, code, format, args...))
}

// trial runs fn with diagnostics collected apart from the pass and returns them unrecorded
func (p *pass) trial(fn func() error) ([]entities.Diagnostic, error) {
	diags, seen := p.diags, p.diagSeen
	p.diags, p.diagSeen = nil, map[string]bool{}
	err := fn()
	collected := p.diags
	p.diags, p.diagSeen = diags, seen
	return collected, err
}

// record adds diagnostics collected by trial, skipping ones already seen
func (p *pass) record(diags []entities.Diagnostic) {
	for _, d := range diags {
		key := string(d.Kind) + "|" + string(d.Code)
		if p.diagSeen[key] {
			continue
		}
		p.diagSeen[key] = true
		p.diags = append(p.diags, d)
	}
}

// place returns start and end of a task of duration days anchored at anchor:
// the anchor is the start when scheduling forward and the end when scheduling backward.
func (p *pass) place(anchor time.Time, duration int) (time.Time, time.Time) {
	if p.backward {
		return anchor.AddDate(0, 0, -duration), anchor
	}
	return anchor, anchor.AddDate(0, 0, duration)
}

func (p *pass) material(node *entities.StructureNode) (*entities.MaterialInfo, entities.MaterialType) {
	fallback := entities.Purchased
	if !node.IsLeaf() || node.Level == 0 {
		fallback = entities.SelfMade
	}
	info, ok := p.req.Materials[node.Code]
	if !ok || info == nil {
		p.diagnose(entities.DiagMissingMaterial, node.Code,
			"no material metadata for %s, scheduling it as %s", node.Code, fallback)
		return nil, fallback
	}
	return info, info.Type
}

func (p *pass) resolve(node *entities.StructureNode, info *entities.MaterialInfo, materialType entities.MaterialType, quantity float64) entities.ResolvedLeadTime {
	lt := p.gen.resolver.ResolveMaterial(info, materialType, quantity)
	if lt.Defaulted() && info != nil {
		p.diagnose(entities.DiagMalformedLeadTime, node.Code, "%s: %s", node.Code, lt.Warning)
	}
	return lt
}

// scheduleRoot schedules the finished product. The product is always assembled for
// the full planned quantity; its components are netted against inventory.
func (p *pass) scheduleRoot(root *entities.StructureNode, reference time.Time) (*entities.GanttTask, error) {
	if err := p.ctx.Err(); err != nil {
		return nil, fmt.Errorf("schedule cancelled: %w", err)
	}

	info, materialType := p.material(root)
	lt := p.resolve(root, info, materialType, p.req.Quantity)
	start, end := p.place(reference, lt.Days)

	task := &entities.GanttTask{
		ID:        string(root.Code),
		Code:      root.Code,
		Name:      root.Name,
		Type:      entities.TaskProduct,
		Level:     0,
		StartDate: start,
		EndDate:   end,
		Duration:  lt.Days,
		Status:    entities.StatusNormal,
		Detail: &entities.MaterialDetail{
			MaterialType:       materialType,
			ChildQuantity:      1,
			RequiredQuantity:   p.req.Quantity,
			AvailableInventory: root.Inventory,
			Deficit:            p.req.Quantity,
			LeadTime:           lt,
		},
	}

	if root.Truncated != entities.NotTruncated {
		return task, nil
	}
	for _, group := range root.Groups {
		children, err := p.scheduleGroup(group, task, p.req.Quantity)
		if err != nil {
			return nil, err
		}
		task.Children = append(task.Children, children...)
	}
	return task, nil
}

// scheduleNode schedules a component needing quantity units, netted against its inventory
func (p *pass) scheduleNode(node *entities.StructureNode, parentID string, quantity float64, anchor time.Time) (*entities.GanttTask, error) {
	if err := p.ctx.Err(); err != nil {
		return nil, fmt.Errorf("schedule cancelled: %w", err)
	}

	info, materialType := p.material(node)
	deficit := entities.Deficit(quantity, node.Inventory)
	ready := deficit <= 0

	lt := p.resolve(node, info, materialType, deficit)
	duration := lt.Days
	if ready {
		duration = 0
	}
	start, end := p.place(anchor, duration)

	task := &entities.GanttTask{
		ID:        parentID + "/" + string(node.Code),
		Code:      node.Code,
		Name:      node.Name,
		Type:      entities.TaskTypeForLevel(node.Level, node.IsLeaf()),
		Level:     node.Level,
		StartDate: start,
		EndDate:   end,
		Duration:  duration,
		Status:    entities.StatusNormal,
		Detail: &entities.MaterialDetail{
			MaterialType:       materialType,
			ChildQuantity:      node.RequiredPerSet,
			LossRate:           node.LossRate,
			RequiredQuantity:   quantity,
			AvailableInventory: node.Inventory,
			Deficit:            deficit,
			Ready:              ready,
			LeadTime:           lt,
		},
	}

	// stock covers the requirement: nothing flows down to the components
	if ready || node.Truncated != entities.NotTruncated {
		return task, nil
	}
	for _, group := range node.Groups {
		children, err := p.scheduleGroup(group, task, deficit)
		if err != nil {
			return nil, err
		}
		task.Children = append(task.Children, children...)
	}
	return task, nil
}

// scheduleGroup schedules one component slot of parent for parentUnits units of the parent
func (p *pass) scheduleGroup(group *entities.ComponentGroup, parent *entities.GanttTask, parentUnits float64) ([]*entities.GanttTask, error) {
	if len(group.Members) == 0 {
		return nil, nil
	}
	// forward: every tier starts with its parent; backward: components are ready when the parent starts
	anchor := parent.StartDate

	if group.Kind == entities.SingleComponent {
		member := group.Members[0]
		qty := entities.RequiredQuantity(parentUnits, member.RequiredPerSet, member.LossRate)
		task, err := p.scheduleNode(member, parent.ID, qty, anchor)
		if err != nil {
			return nil, err
		}
		return []*entities.GanttTask{task}, nil
	}

	return p.selectAlternatives(group, parent, parentUnits, anchor)
}
