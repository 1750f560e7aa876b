package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/alexanderramin/dropdown/internal/cli/formatter"
	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// pageFlags are shared by every paginated listing.
type pageFlags struct {
	search    string
	page      int
	pageLimit int
	entity    string
}

func (p *pageFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&p.search, "search", "s", "", "Search text")
	fs.IntVar(&p.page, "page", 1, "Page number, from 1")
	fs.IntVar(&p.pageLimit, "page-limit", 0, "Rows per page (0 uses the configured maximum)")
	fs.StringVar(&p.entity, "entity", "", `Entity restriction: an ID, "1,2", "[1,2]" or "default"`)
}

func (p *pageFlags) restrict() (contract.EntityRestrict, error) {
	return contract.ParseEntityRestrict(p.entity)
}

func newValueCmd(app *App) *cobra.Command {
	var (
		pf           pageFlags
		used         []int64
		condition    string
		toAdd        string
		emptyChoice  bool
		emptyLabel   string
		selectParent bool
		displayWith  []string
		parentID     int64
		oneID        int64
	)

	cmd := &cobra.Command{
		Use:   "value ITEMTYPE",
		Short: "List the rows of a dropdown table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := app.session(ctx)
			if err != nil {
				return err
			}
			restrict, err := pf.restrict()
			if err != nil {
				return err
			}
			cond, err := contract.ParseCondition(condition)
			if err != nil {
				return err
			}

			req := contract.NewValueRequest(args[0])
			req.SearchText = pf.search
			req.Page = pf.page
			req.PageLimit = pf.pageLimit
			req.EntityRestrict = restrict
			req.Used = used
			req.Condition = cond
			req.DisplayEmptyChoice = contract.Flag(emptyChoice)
			req.EmptyLabel = emptyLabel
			req.PermitSelectParent = contract.Flag(selectParent)
			req.DisplayWith = displayWith
			if toAdd != "" {
				if err := json.Unmarshal([]byte(toAdd), &req.ToAdd); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("parent-id") {
				req.ParentID = &parentID
			}
			if cmd.Flags().Changed("one-id") {
				req.OneID = &oneID
			}
			req.IDORToken = sess.NewIDORToken(req.ItemType, restrict.String())

			res, err := app.Dropdown.Value(ctx, sess, req)
			if err != nil {
				return err
			}
			return app.render(cmd.OutOrStdout(), res, func() string {
				return formatter.FormatResults(req.ItemType, res)
			})
		},
	}

	pf.register(cmd.Flags())
	cmd.Flags().Int64SliceVar(&used, "used", nil, "IDs to leave out")
	cmd.Flags().StringVar(&condition, "condition", "", `Filters as JSON, e.g. {"name": ["LIKE", "%a%"]}`)
	cmd.Flags().StringVar(&toAdd, "toadd", "", `Extra entries as JSON, e.g. {"-1": "All"}`)
	cmd.Flags().BoolVar(&emptyChoice, "empty-choice", false, "Start the first page with an empty choice")
	cmd.Flags().StringVar(&emptyLabel, "empty-label", "", "Label of the empty choice")
	cmd.Flags().BoolVar(&selectParent, "permit-select-parent", false, "Make inserted parent rows selectable")
	cmd.Flags().StringSliceVar(&displayWith, "displaywith", nil, "Columns appended to labels")
	cmd.Flags().Int64Var(&parentID, "parent-id", 0, "Only list the rows below this node")
	cmd.Flags().Int64Var(&oneID, "one-id", 0, "Only fetch this row")
	return cmd
}

func newConnectCmd(app *App) *cobra.Command {
	var (
		pf         pageFlags
		used       []int64
		onlyGlobal bool
	)

	cmd := &cobra.Command{
		Use:   "connect FROMTYPE ITEMTYPE",
		Short: "List the devices that can be connected to an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := app.session(ctx)
			if err != nil {
				return err
			}
			restrict, err := pf.restrict()
			if err != nil {
				return err
			}

			req := contract.NewConnectRequest(args[0], args[1])
			req.SearchText = pf.search
			req.Page = pf.page
			req.PageLimit = pf.pageLimit
			req.EntityRestrict = restrict
			req.OnlyGlobal = contract.Flag(onlyGlobal)
			if len(used) > 0 {
				req.Used = map[string][]int64{req.ItemType: used}
			}
			req.IDORToken = sess.NewIDORToken(req.ItemType, restrict.String())

			res, err := app.Dropdown.Connect(ctx, sess, req)
			if err != nil {
				return err
			}
			return app.render(cmd.OutOrStdout(), res, func() string {
				return formatter.FormatConnect(req.ItemType, res)
			})
		},
	}

	pf.register(cmd.Flags())
	cmd.Flags().Int64SliceVar(&used, "used", nil, "Device IDs already connected")
	cmd.Flags().BoolVar(&onlyGlobal, "onlyglobal", false, "Only list global devices")
	return cmd
}

func newNumberCmd(app *App) *cobra.Command {
	var (
		pf   pageFlags
		used []float64
	)
	req := contract.NewNumberRequest()

	cmd := &cobra.Command{
		Use:   "number",
		Short: "List numeric values from --min to --max by --step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := app.session(ctx)
			if err != nil {
				return err
			}
			req.SearchText = pf.search
			req.Page = pf.page
			req.PageLimit = pf.pageLimit
			req.Used = used

			res, err := app.Dropdown.Number(ctx, sess, req)
			if err != nil {
				return err
			}
			return app.render(cmd.OutOrStdout(), res, func() string {
				return formatter.FormatResults("Values", res)
			})
		},
	}

	cmd.Flags().StringVarP(&pf.search, "search", "s", "", "Search text")
	cmd.Flags().IntVar(&pf.page, "page", 1, "Page number, from 1")
	cmd.Flags().IntVar(&pf.pageLimit, "page-limit", 0, "Values per page")
	cmd.Flags().Float64Var(&req.Min, "min", req.Min, "First value")
	cmd.Flags().Float64Var(&req.Max, "max", req.Max, "Last value (0 uses the configured maximum)")
	cmd.Flags().Float64Var(&req.Step, "step", req.Step, "Increment")
	cmd.Flags().StringVar(&req.Unit, "unit", "", `Unit of the labels, e.g. "second", "hour" or "auto"`)
	cmd.Flags().Float64SliceVar(&used, "used", nil, "Values to leave out")
	return cmd
}

func newUsersCmd(app *App) *cobra.Command {
	var (
		pf   pageFlags
		used []int64
		all  bool
	)
	req := contract.NewUsersRequest()

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List the users holding a right",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := app.session(ctx)
			if err != nil {
				return err
			}
			restrict, err := pf.restrict()
			if err != nil {
				return err
			}
			req.SearchText = pf.search
			req.Page = pf.page
			req.PageLimit = pf.pageLimit
			req.EntityRestrict = restrict
			req.Used = used
			req.All = contract.Flag(all)
			req.IDORToken = sess.NewIDORToken(service.UserItemType, restrict.String())

			res, err := app.Dropdown.Users(ctx, sess, req)
			if err != nil {
				return err
			}
			return app.render(cmd.OutOrStdout(), res, func() string {
				return formatter.FormatResults("Users", res)
			})
		},
	}

	pf.register(cmd.Flags())
	cmd.Flags().StringVar(&req.Right, "right", req.Right, `"all", "id" for yourself, or a right module such as "computer"`)
	cmd.Flags().BoolVar(&all, "all", false, `Add an "All" entry`)
	cmd.Flags().Int64SliceVar(&used, "used", nil, "User IDs to leave out")
	return cmd
}

func newNetpointCmd(app *App) *cobra.Command {
	var (
		pf         pageFlags
		locationID int64
	)
	req := contract.NewNetpointRequest()

	cmd := &cobra.Command{
		Use:   "netpoint",
		Short: "List network outlets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := app.session(ctx)
			if err != nil {
				return err
			}
			restrict, err := pf.restrict()
			if err != nil {
				return err
			}
			req.SearchText = pf.search
			req.Page = pf.page
			req.PageLimit = pf.pageLimit
			req.EntityRestrict = restrict
			if cmd.Flags().Changed("location") {
				req.LocationID = &locationID
			}

			res, err := app.Dropdown.Netpoint(ctx, sess, req)
			if err != nil {
				return err
			}
			return app.render(cmd.OutOrStdout(), res, func() string {
				return formatter.FormatResults("Netpoints", res)
			})
		},
	}

	pf.register(cmd.Flags())
	cmd.Flags().Int64Var(&locationID, "location", 0, "Only list the outlets of this location")
	cmd.Flags().StringVar(&req.DevType, "devtype", "", "Hide outlets wired to ports of this item type")
	cmd.Flags().Int64Var(&req.DevID, "devid", 0, "Keep the outlets wired to this device")
	return cmd
}

func newNameCmd(app *App) *cobra.Command {
	var withComment, noTranslate, raw bool

	cmd := &cobra.Command{
		Use:   "name TABLE ID",
		Short: "Resolve the label of a row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid ID %q: %w", args[1], err)
			}
			sess, err := app.optionalSession(cmd.Context())
			if err != nil {
				return err
			}
			req := contract.NewNameRequest(args[0], id)
			req.WithComment = contract.Flag(withComment)
			req.Translate = contract.Flag(!noTranslate)
			req.Tooltip = contract.Flag(!raw)

			res, err := app.Dropdown.Name(cmd.Context(), sess, req)
			if err != nil {
				return err
			}
			return app.render(cmd.OutOrStdout(), res, func() string {
				return formatter.FormatName(res)
			})
		},
	}

	cmd.Flags().BoolVarP(&withComment, "comment", "c", false, "Include the comment")
	cmd.Flags().BoolVar(&noTranslate, "no-translate", false, "Skip translations")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the comment as stored")
	return cmd
}

func newUnitCmd(app *App) *cobra.Command {
	var decimals int

	cmd := &cobra.Command{
		Use:   "unit VALUE UNIT",
		Short: "Format a value with its unit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.optionalSession(cmd.Context())
			if err != nil {
				return err
			}
			req := contract.UnitRequest{Value: args[0], Unit: args[1]}
			if cmd.Flags().Changed("decimals") {
				req.Decimals = &decimals
			}
			res := contract.UnitResult{Text: app.Dropdown.ValueWithUnit(sess, req)}
			return app.render(cmd.OutOrStdout(), res, func() string {
				return res.Text + "\n"
			})
		},
	}

	cmd.Flags().IntVar(&decimals, "decimals", 0, "Decimals (defaults to the configured precision)")
	return cmd
}

func newLanguagesCmd(app *App) *cobra.Command {
	var req contract.LanguagesRequest
	var emptyChoice bool

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the configured languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.optionalSession(cmd.Context())
			if err != nil {
				return err
			}
			req.DisplayEmptyChoice = contract.Flag(emptyChoice)
			langs := app.Dropdown.Languages(sess, req)
			return app.render(cmd.OutOrStdout(), langs, func() string {
				return formatter.FormatLanguages(langs)
			})
		},
	}

	cmd.Flags().StringVar(&req.Value, "value", "", "Language code to mark as selected")
	cmd.Flags().BoolVar(&emptyChoice, "empty-choice", false, "Start with an empty choice")
	return cmd
}

func newListCmd(app *App) *cobra.Command {
	var (
		start, limit   int
		search, entity string
	)

	cmd := &cobra.Command{
		Use:   "list ITEMTYPE",
		Short: "Page through a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := app.session(ctx)
			if err != nil {
				return err
			}
			restrict, err := contract.ParseEntityRestrict(entity)
			if err != nil {
				return err
			}
			page, err := app.Dropdown.List(ctx, sess, contract.ListRequest{
				ItemType:       args[0],
				Start:          start,
				Limit:          limit,
				SearchText:     search,
				EntityRestrict: restrict,
			})
			if err != nil {
				return err
			}
			return app.render(cmd.OutOrStdout(), page, func() string {
				return formatter.FormatListPage(args[0], page)
			})
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "Offset of the first row")
	cmd.Flags().IntVar(&limit, "limit", 0, "Rows per page (0 uses your preference)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search text")
	cmd.Flags().StringVar(&entity, "entity", "", "Entity restriction")
	return cmd
}
