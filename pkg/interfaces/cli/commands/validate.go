package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/mps/pkg/interfaces/cli/output"
)

func newValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the BOM and material master for structural problems",
		Long: `Reports cycles, duplicate edges, non-positive quantities, malformed
alternative groups and unparseable lead times. Exits non-zero when errors are found.`,
		Example: `  mps validate --scenario ./data`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := app.setup(cmd)
			if err != nil {
				return err
			}
			res, err := rt.planner.Validate(cmd.Context())
			if err != nil {
				return err
			}

			w, closeOut, err := app.openOutput(cmd)
			if err != nil {
				return err
			}
			if rt.cfg.Output.Format == output.FormatJSON {
				err = output.WriteJSON(w, res)
			} else {
				err = output.WriteValidation(w, output.NewTheme(w, rt.cfg.Output.Color), res)
			}
			if err != nil {
				closeOut()
				return err
			}
			if err := closeOut(); err != nil {
				return err
			}
			if !res.Valid() {
				return fmt.Errorf("BOM validation failed with %d errors", len(res.Errors))
			}
			return nil
		},
	}
}
