package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/vsinha/mps/pkg/application/dto"
	"github.com/vsinha/mps/pkg/domain/entities"
	"github.com/vsinha/mps/pkg/interfaces/cli/output"
)

func newScheduleCmd(app *App) *cobra.Command {
	var (
		product  string
		policy   string
		quantity float64
		date     dateValue
		target   dateValue
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate a multi-level production schedule for one product",
		Long: `Builds a Gantt task tree for a product. The forward policy starts every tier
at --date (default today) and judges the end against --target. The backward
policy works back from the completion date given by --date and reports the
latest safe start of every component.`,
		Example: `  mps schedule --scenario ./data --product DRONE --policy backward --date 2025-03-31 --quantity 10
  mps schedule --scenario ./data --product DRONE --format svg -o drone.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if product == "" {
				return errors.New("--product is required")
			}
			p, err := entities.ParsePolicy(policy)
			if err != nil {
				return err
			}
			if p == entities.PolicyBackward && !cmd.Flags().Changed("date") {
				return errors.New("backward scheduling requires --date (the required completion date)")
			}

			rt, err := app.setup(cmd)
			if err != nil {
				return err
			}

			res, err := rt.planner.Plan(cmd.Context(), dto.PlanRequest{
				ProductCode:   entities.MaterialCode(product),
				Quantity:      quantity,
				Policy:        p,
				ReferenceDate: date.resolve(app.Now),
				TargetDate:    target.ptr(app.Now),
			})
			if err != nil {
				return err
			}

			w, closeOut, err := app.openOutput(cmd)
			if err != nil {
				return err
			}
			if err := output.Write(w, []*dto.PlanResult{res}, output.ViewSchedule, rt.outputConfig()); err != nil {
				closeOut()
				return err
			}
			return closeOut()
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&product, "product", "p", "", "Product code to schedule (required)")
	flags.StringVar(&policy, "policy", string(entities.PolicyForward), "Scheduling policy: forward or backward")
	flags.Float64VarP(&quantity, "quantity", "q", 0, "Quantity to plan (default schedule.plan_quantity)")
	flags.Var(&date, "date", "Start date (forward) or required completion date (backward), YYYY-MM-DD or today")
	flags.Var(&target, "target", "Target completion date for forward plans, YYYY-MM-DD")
	return cmd
}
