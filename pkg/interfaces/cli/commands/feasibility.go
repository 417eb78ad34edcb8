package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/mps/pkg/application/dto"
	"github.com/vsinha/mps/pkg/domain/entities"
	"github.com/vsinha/mps/pkg/interfaces/cli/output"
)

func newFeasibilityCmd(app *App) *cobra.Command {
	var products []string

	cmd := &cobra.Command{
		Use:   "feasibility",
		Short: "Show how many units current inventory supports",
		Long: `Computes the maximum number of complete sets of each product that on-hand
inventory supports, walking every BOM tier and alternative group, and reports
the limiting component chain. Without --product every root product is analysed.`,
		Example: `  mps feasibility --scenario ./data
  mps feasibility --bom bom.csv --inventory inventory.csv --product DRONE --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.setup(cmd)
			if err != nil {
				return err
			}

			codes := toCodes(products)
			if len(codes) == 0 {
				codes = rootProducts(rt.edges)
			}
			if len(codes) == 0 {
				return fmt.Errorf("no products found in BOM")
			}

			results := make([]*dto.PlanResult, 0, len(codes))
			for _, code := range codes {
				res, err := rt.planner.Feasibility(cmd.Context(), code)
				if err != nil {
					return err
				}
				results = append(results, res)
			}

			w, closeOut, err := app.openOutput(cmd)
			if err != nil {
				return err
			}
			if err := output.Write(w, results, output.ViewFeasibility, rt.outputConfig()); err != nil {
				closeOut()
				return err
			}
			return closeOut()
		},
	}

	cmd.Flags().StringSliceVarP(&products, "product", "p", nil, "Product code to analyse (repeatable)")
	return cmd
}

func toCodes(values []string) []entities.MaterialCode {
	codes := make([]entities.MaterialCode, 0, len(values))
	for _, v := range values {
		if v != "" {
			codes = append(codes, entities.MaterialCode(v))
		}
	}
	return codes
}
