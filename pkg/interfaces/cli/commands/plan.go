package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/vsinha/mps/pkg/application/dto"
	"github.com/vsinha/mps/pkg/domain/entities"
	"github.com/vsinha/mps/pkg/interfaces/cli/output"
)

func newPlanCmd(app *App) *cobra.Command {
	var (
		products []string
		policy   string
		quantity float64
		date     dateValue
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan every demand (or the given products) concurrently",
		Long: `Runs feasibility, scheduling and risk analysis for each line of the demands
file. Backward demands complete on their due date; forward demands start at
--date (default today). With --product the listed products are planned with
--policy and --quantity instead of the demands file.`,
		Example: `  mps plan --scenario ./data
  mps plan --scenario ./data --product DRONE --product ROVER --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := entities.ParsePolicy(policy)
			if err != nil {
				return err
			}
			codes := toCodes(products)
			if len(codes) > 0 && p == entities.PolicyBackward && !cmd.Flags().Changed("date") {
				return errors.New("backward scheduling requires --date (the required completion date)")
			}

			rt, err := app.setup(cmd)
			if err != nil {
				return err
			}

			var results []*dto.PlanResult
			if len(codes) == 0 {
				results, err = rt.planner.PlanDemands(cmd.Context(), date.resolve(app.Now))
			} else {
				reqs := make([]dto.PlanRequest, 0, len(codes))
				for _, code := range codes {
					reqs = append(reqs, dto.PlanRequest{
						ProductCode:   code,
						Quantity:      quantity,
						Policy:        p,
						ReferenceDate: date.resolve(app.Now),
					})
				}
				results, err = rt.planner.PlanAll(cmd.Context(), reqs)
			}
			if err != nil {
				return err
			}

			w, closeOut, err := app.openOutput(cmd)
			if err != nil {
				return err
			}
			if err := output.Write(w, results, output.ViewSchedule, rt.outputConfig()); err != nil {
				closeOut()
				return err
			}
			return closeOut()
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&products, "product", "p", nil, "Product code to plan instead of the demands file (repeatable)")
	flags.StringVar(&policy, "policy", string(entities.PolicyForward), "Scheduling policy for --product runs: forward or backward")
	flags.Float64VarP(&quantity, "quantity", "q", 0, "Quantity for --product runs (default schedule.plan_quantity)")
	flags.Var(&date, "date", "Reference date, YYYY-MM-DD or today")
	return cmd
}
