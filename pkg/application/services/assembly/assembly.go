package assembly

import (
	"github.com/vsinha/mps/pkg/domain/entities"
)

// Result is a feasibility tree together with the data problems met while building it
type Result struct {
	Root        *entities.AssemblyNode
	Diagnostics []entities.Diagnostic
}

// Feasible reports how many finished units can be assembled now
func (r *Result) Feasible() int64 {
	if r == nil || r.Root == nil {
		return 0
	}
	return r.Root.MaxSets
}

// Analyze builds the structure tree of rootCode and computes its feasibility
func Analyze(
	builder *TreeBuilder,
	rootCode entities.MaterialCode,
	edges []*entities.BOMEdge,
	inventory map[entities.MaterialCode]float64,
	materials map[entities.MaterialCode]*entities.MaterialInfo,
) (*entities.BOMTree, *Result, error) {
	return AnalyzeWith(builder, NewCalculator(), rootCode, edges, inventory, materials)
}

// AnalyzeWith is Analyze with an explicit calculator
func AnalyzeWith(
	builder *TreeBuilder,
	calculator *Calculator,
	rootCode entities.MaterialCode,
	edges []*entities.BOMEdge,
	inventory map[entities.MaterialCode]float64,
	materials map[entities.MaterialCode]*entities.MaterialInfo,
) (*entities.BOMTree, *Result, error) {
	tree, err := builder.Build(rootCode, edges, inventory, materials)
	if err != nil {
		return nil, nil, err
	}
	root, err := calculator.Calculate(tree)
	if err != nil {
		return nil, nil, err
	}
	return tree, &Result{Root: root, Diagnostics: tree.Diagnostics}, nil
}

// BuildAssemblyTree returns the feasibility tree of rootCode with the default depth ceiling.
// Data problems degrade the result instead of failing; use Analyze to see them.
func BuildAssemblyTree(
	rootCode entities.MaterialCode,
	edges []*entities.BOMEdge,
	inventory map[entities.MaterialCode]float64,
) *entities.AssemblyNode {
	_, result, err := Analyze(NewTreeBuilder(DefaultMaxDepth), rootCode, edges, inventory, nil)
	if err != nil {
		return nil
	}
	return result.Root
}
