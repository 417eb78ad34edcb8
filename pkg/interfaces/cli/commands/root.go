package commands

import (
	"time"

	"github.com/spf13/cobra"
)

// App holds state shared by all subcommands
type App struct {
	// Now is the clock used for "today"; tests replace it
	Now func() time.Time

	opts Options
}

// NewApp creates an App using the wall clock
func NewApp() *App {
	return &App{Now: time.Now}
}

// NewRootCmd creates the top-level "mps" command and registers all subcommands
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "mps",
		Short: "BOM-driven production feasibility and scheduling",
		Long: `mps computes how many finished units current inventory supports, builds
forward or backward production schedules from the BOM and lead times,
and reports bottlenecks and schedule risks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app.opts.register(root.PersistentFlags())

	root.AddCommand(
		newFeasibilityCmd(app),
		newScheduleCmd(app),
		newPlanCmd(app),
		newValidateCmd(app),
		newGenerateCmd(app),
	)

	return root
}
