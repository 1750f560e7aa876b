package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/dropdown/internal/cli/formatter"
	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var req contract.ImportRequest

	cmd := &cobra.Command{
		Use:   "import ITEMTYPE [NAME]",
		Short: "Find or create a dropdown row by name",
		Long: `Find or create a dropdown row by name.

Tree types accept --completename "Parent > Child" and create every
missing level. Without --login the import runs unchecked.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			req.ItemType = args[0]
			if len(args) == 2 {
				req.Name = args[1]
			}
			if strings.TrimSpace(req.Name) == "" && strings.TrimSpace(req.CompleteName) == "" && app.Prompt != nil {
				if err := app.Prompt(fmt.Sprintf("Name of the new %s", req.ItemType), &req.Name); err != nil {
					return err
				}
			}

			sess, err := app.optionalSession(ctx)
			if err != nil {
				return err
			}
			id, err := app.Imports.Import(ctx, sess, req)
			if err != nil {
				return err
			}
			res := contract.ImportResult{ID: id}
			return app.render(cmd.OutOrStdout(), res, func() string {
				return fmt.Sprintf("%s %s #%d\n", formatter.StyleGreen.Render("✔"), req.ItemType, id)
			})
		},
	}

	cmd.Flags().StringVar(&req.CompleteName, "completename", "", `Full path of a tree row, e.g. "Building A > Floor 1"`)
	cmd.Flags().Int64Var(&req.EntityID, "entity", 0, "Entity of the row")
	cmd.Flags().Int64Var(&req.ParentID, "parent", 0, "Parent of the row (tree types)")
	cmd.Flags().StringVar(&req.Comment, "comment", "", "Comment of the created row")
	return cmd
}
