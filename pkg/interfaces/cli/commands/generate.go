package commands

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vsinha/mps/pkg/domain/entities"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Items     int     // Total number of materials to generate
	MaxDepth  int     // Maximum depth of BOM tree
	Demands   int     // Number of demand lines
	Inventory float64 // Inventory multiplier (0.5 = half of one set, 4.0 = four sets)
	OutputDir string
	Seed      int64
	StartDate time.Time // First possible due date
}

// scenarioNode is a material in the generated BOM tree
type scenarioNode struct {
	Code        string
	Level       int
	IsRoot      bool
	Children    []*scenarioLink
	Parents     []*scenarioNode
	Alternative *scenarioNode // primary member this node substitutes for
}

type scenarioLink struct {
	Child    *scenarioNode
	Quantity int
	LossRate float64
	Group    string
}

// scenarioGenerator builds a random but reproducible scenario
type scenarioGenerator struct {
	config GenerateConfig
	rand   *rand.Rand
	nodes  []*scenarioNode
	groups int
}

func newScenarioGenerator(config GenerateConfig) *scenarioGenerator {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &scenarioGenerator{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
	}
}

func newGenerateCmd(app *App) *cobra.Command {
	cfg := GenerateConfig{
		Items:     50,
		MaxDepth:  4,
		Demands:   5,
		Inventory: 1.0,
	}
	var start dateValue

	cmd := &cobra.Command{
		Use:   "generate <output-dir>",
		Short: "Generate a random scenario of bom, materials, inventory and demands files",
		Example: `  mps generate ./scenario --items 100 --max-depth 5 --demands 10 --inventory 0.5
  mps generate ./repro --items 1000 --seed 12345`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.OutputDir = args[0]
			cfg.StartDate = start.resolve(app.Now)
			if cfg.StartDate.IsZero() {
				cfg.StartDate = entities.TruncateDay(app.Now())
			}
			if cfg.Items < 2 {
				return errors.New("--items must be at least 2")
			}
			if cfg.MaxDepth < 1 {
				return errors.New("--max-depth must be at least 1")
			}
			if cfg.Inventory < 0 {
				return errors.New("--inventory cannot be negative")
			}

			gen := newScenarioGenerator(cfg)
			if err := gen.Write(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scenario with %d materials written to %s\n", len(gen.nodes), cfg.OutputDir)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.Items, "items", cfg.Items, "Number of materials to generate")
	flags.IntVar(&cfg.MaxDepth, "max-depth", cfg.MaxDepth, "Maximum depth of the BOM tree")
	flags.IntVar(&cfg.Demands, "demands", cfg.Demands, "Number of demand lines")
	flags.Float64Var(&cfg.Inventory, "inventory", cfg.Inventory, "Inventory as a multiple of one set of every component")
	flags.Int64Var(&cfg.Seed, "seed", 0, "Random seed for reproducible output (0 picks one)")
	flags.Var(&start, "start", "Earliest due date for demands, YYYY-MM-DD or today")
	return cmd
}

// Write generates the tree and writes all four files
func (g *scenarioGenerator) Write() error {
	if err := os.MkdirAll(g.config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	g.generateTree()

	files := []struct {
		name  string
		write func(*csv.Writer) error
	}{
		{"bom.csv", g.writeBOM},
		{"materials.csv", g.writeMaterials},
		{"inventory.csv", g.writeInventory},
		{"demands.csv", g.writeDemands},
	}
	for _, f := range files {
		if err := writeCSV(filepath.Join(g.config.OutputDir, f.name), f.write); err != nil {
			return fmt.Errorf("failed to generate %s: %w", f.name, err)
		}
	}
	return nil
}

func writeCSV(path string, write func(*csv.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(file)
	if err := write(w); err != nil {
		file.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (g *scenarioGenerator) newNode(code string, level int) *scenarioNode {
	n := &scenarioNode{Code: code, Level: level}
	g.nodes = append(g.nodes, n)
	return n
}

// generateTree creates products level by level with shared components and alternative pairs
func (g *scenarioGenerator) generateTree() {
	numRoots := max(1, g.config.Items/50+g.rand.Intn(3))
	var roots []*scenarioNode
	for i := 0; i < numRoots && len(g.nodes) < g.config.Items; i++ {
		n := g.newNode(fmt.Sprintf("PRODUCT_%03d", i+1), 0)
		n.IsRoot = true
		roots = append(roots, n)
	}

	current := roots
	level := 0
	for level < g.config.MaxDepth && len(g.nodes) < g.config.Items {
		level++
		var next []*scenarioNode

		for _, parent := range current {
			numChildren := 2 + g.rand.Intn(5)
			for c := 0; c < numChildren && len(g.nodes) < g.config.Items; c++ {
				var child *scenarioNode
				if level > 1 && g.rand.Float64() < 0.2 {
					if candidates := g.shareableParts(level, parent); len(candidates) > 0 {
						child = candidates[g.rand.Intn(len(candidates))]
					}
				}
				if child == nil {
					child = g.newNode(fmt.Sprintf("PART_L%d_%04d", level, len(g.nodes)), level)
					next = append(next, child)
				}
				link := g.link(parent, child, level)

				// occasionally add a substitute for a fresh purchased part
				if level > 1 && len(child.Parents) == 1 && g.rand.Float64() < 0.1 && len(g.nodes) < g.config.Items {
					g.groups++
					link.Group = strconv.Itoa(g.groups)
					alt := g.newNode(child.Code+"_ALT", level)
					alt.Alternative = child
					altLink := g.link(parent, alt, level)
					altLink.Quantity = link.Quantity
					altLink.Group = link.Group
				}
			}
		}

		if len(next) == 0 {
			break
		}
		current = next
	}
}

func (g *scenarioGenerator) link(parent, child *scenarioNode, level int) *scenarioLink {
	qty := 1 + g.rand.Intn(4)
	if level > 2 {
		qty += g.rand.Intn(6)
	}
	var loss float64
	if g.rand.Float64() < 0.25 {
		loss = float64(1+g.rand.Intn(5)) / 100
	}
	l := &scenarioLink{Child: child, Quantity: qty, LossRate: loss}
	parent.Children = append(parent.Children, l)
	child.Parents = append(child.Parents, parent)
	return l
}

// shareableParts finds existing parts that can be reused without creating a cycle
func (g *scenarioGenerator) shareableParts(level int, parent *scenarioNode) []*scenarioNode {
	var candidates []*scenarioNode
	for _, n := range g.nodes {
		if n.IsRoot || n.Alternative != nil || n == parent {
			continue
		}
		if n.Level >= level-1 && len(n.Parents) < 3 && !isAncestor(n, parent, map[string]bool{}) && !hasChild(parent, n) {
			candidates = append(candidates, n)
		}
	}
	return candidates
}

// isAncestor reports whether candidate is an ancestor of node
func isAncestor(candidate, node *scenarioNode, visited map[string]bool) bool {
	if visited[node.Code] {
		return false
	}
	visited[node.Code] = true
	for _, p := range node.Parents {
		if p == candidate || isAncestor(candidate, p, visited) {
			return true
		}
	}
	return false
}

func hasChild(parent, child *scenarioNode) bool {
	for _, l := range parent.Children {
		if l.Child == child {
			return true
		}
	}
	return false
}

func (g *scenarioGenerator) writeBOM(w *csv.Writer) error {
	if err := w.Write([]string{"parent_code", "parent_name", "child_code", "child_name", "child_quantity", "unit", "loss_rate", "alternative_group", "alternative_part"}); err != nil {
		return err
	}
	for _, parent := range g.nodes {
		for _, l := range parent.Children {
			altPart := ""
			if l.Child.Alternative != nil {
				altPart = l.Child.Alternative.Code
			}
			record := []string{
				parent.Code, g.describe(parent),
				l.Child.Code, g.describe(l.Child),
				strconv.Itoa(l.Quantity), "pcs",
				strconv.FormatFloat(l.LossRate, 'f', -1, 64),
				l.Group, altPart,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *scenarioGenerator) describe(n *scenarioNode) string {
	switch {
	case n.IsRoot:
		return n.Code + " Complete Assembly"
	case len(n.Children) > 0:
		return n.Code + " Subassembly"
	case n.Alternative != nil:
		return n.Alternative.Code + " Substitute"
	default:
		return n.Code + " Component"
	}
}

func (g *scenarioGenerator) writeMaterials(w *csv.Writer) error {
	if err := w.Write([]string{"material_code", "material_name", "material_type", "delivery_duration"}); err != nil {
		return err
	}
	for _, n := range g.nodes {
		materialType, duration := g.leadTime(n)
		if err := w.Write([]string{n.Code, g.describe(n), materialType.String(), duration}); err != nil {
			return err
		}
	}
	return nil
}

// leadTime makes assemblies self-made with a daily rate and leaves purchased or outsourced with a delivery time
func (g *scenarioGenerator) leadTime(n *scenarioNode) (entities.MaterialType, string) {
	if n.IsRoot || len(n.Children) > 0 {
		return entities.SelfMade, fmt.Sprintf("%d/day", 5*(1+g.rand.Intn(40)))
	}
	if g.rand.Float64() < 0.2 {
		return entities.Outsourced, fmt.Sprintf("%d days", 5+g.rand.Intn(20))
	}
	return entities.Purchased, fmt.Sprintf("%d days", 3+g.rand.Intn(40))
}

func (g *scenarioGenerator) writeInventory(w *csv.Writer) error {
	if err := w.Write([]string{"material_code", "material_name", "available_quantity"}); err != nil {
		return err
	}
	perSet := g.partCounts()
	for _, n := range g.nodes {
		if n.IsRoot {
			continue
		}
		qty := int(float64(perSet[n.Code]) * g.config.Inventory * (0.5 + g.rand.Float64()))
		if err := w.Write([]string{n.Code, g.describe(n), strconv.Itoa(qty)}); err != nil {
			return err
		}
	}
	return nil
}

// partCounts explodes one set of every product, ignoring loss
func (g *scenarioGenerator) partCounts() map[string]int {
	counts := make(map[string]int)
	for _, n := range g.nodes {
		if n.IsRoot {
			explode(n, 1, counts)
		}
	}
	return counts
}

func explode(n *scenarioNode, qty int, counts map[string]int) {
	counts[n.Code] += qty
	for _, l := range n.Children {
		explode(l.Child, qty*l.Quantity, counts)
	}
}

func (g *scenarioGenerator) writeDemands(w *csv.Writer) error {
	if err := w.Write([]string{"product_code", "quantity", "due_date", "policy"}); err != nil {
		return err
	}
	var roots []*scenarioNode
	for _, n := range g.nodes {
		if n.IsRoot {
			roots = append(roots, n)
		}
	}
	for i := 0; i < g.config.Demands; i++ {
		root := roots[g.rand.Intn(len(roots))]
		due := g.config.StartDate.AddDate(0, 0, 14+g.rand.Intn(180))
		policy := entities.PolicyBackward
		if g.rand.Float64() < 0.3 {
			policy = entities.PolicyForward
		}
		record := []string{root.Code, strconv.Itoa(1 + g.rand.Intn(20)), due.Format(dateLayout), string(policy)}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}
