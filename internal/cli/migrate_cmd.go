package cli

import (
	"fmt"

	"github.com/alexanderramin/dropdown/internal/cli/formatter"
	"github.com/spf13/cobra"
)

type migrateResult struct {
	DSN    string `json:"dsn"`
	Status string `json:"status"`
}

// The schema is migrated when the database is opened, so migrate only
// has to open it.
func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := migrateResult{DSN: app.Config.Database.DSN, Status: "up to date"}
			return app.render(cmd.OutOrStdout(), res, func() string {
				return fmt.Sprintf("%s %s\n", formatter.StyleGreen.Render("✔"), "Schema up to date: "+res.DSN)
			})
		},
	}
}
