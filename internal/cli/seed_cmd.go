package cli

import (
	"github.com/alexanderramin/dropdown/internal/cli/formatter"
	"github.com/alexanderramin/dropdown/internal/seed"
	"github.com/spf13/cobra"
)

func newSeedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Load entities, users and dropdown rows from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := seed.LoadFile(args[0])
			if err != nil {
				return err
			}
			stop := func() {}
			if !app.asJSON && app.IsInteractive != nil && app.IsInteractive() {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Loading "+args[0])
			}
			sum, err := app.Seeds.Load(cmd.Context(), ds)
			stop()
			if err != nil {
				return err
			}
			return app.render(cmd.OutOrStdout(), sum, func() string {
				return formatter.FormatCounts("Seeded "+args[0],
					[]string{"Entities", "Profiles", "Users", "Dropdowns", "Translations", "Assets", "Netpoints"},
					[]int{sum.Entities, sum.Profiles, sum.Users, sum.Dropdowns, sum.Translations, sum.Assets, sum.Netpoints})
			})
		},
	}
}
