package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alexanderramin/dropdown/internal/config"
	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/httpapi"
	"github.com/alexanderramin/dropdown/internal/seed"
	"github.com/alexanderramin/dropdown/internal/service"
	"github.com/alexanderramin/dropdown/internal/session"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App holds the services used by CLI commands.
type App struct {
	Dropdown service.DropdownService
	Imports  service.ImportService
	Sessions service.SessionService
	Seeds    *seed.Loader
	Server   *httpapi.Server
	Config   *config.Config
	Logger   *zap.Logger

	// Bootstrap wires the fields above from the config file at path. It
	// runs before every command when set; tests leave it nil.
	Bootstrap func(app *App, path string) error
	// Close releases what Bootstrap opened.
	Close func() error

	// IsInteractive reports whether output goes to a terminal. Non
	// interactive output is JSON.
	IsInteractive func() bool
	// Prompt asks for a missing value; nil disables prompting.
	Prompt func(title string, value *string) error

	configPath string
	login      string
	asJSON     bool
}

// NewRootCmd creates the top-level "dropdown" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "dropdown",
		Short:         "Search-as-you-type listings of dropdown tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Bootstrap == nil {
				return nil
			}
			return app.Bootstrap(app, app.configPath)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app.Close == nil {
				return nil
			}
			return app.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.configPath, "config", defaultConfigPath(), "Config file (YAML)")
	flags.StringVar(&app.login, "login", os.Getenv("DROPDOWN_LOGIN"), "Login of the user the listing is run for")
	flags.BoolVar(&app.asJSON, "json", false, "Print JSON instead of formatted output")

	root.AddCommand(
		newServeCmd(app),
		newMigrateCmd(app),
		newSeedCmd(app),
		newValueCmd(app),
		newConnectCmd(app),
		newNumberCmd(app),
		newUsersCmd(app),
		newNetpointCmd(app),
		newNameCmd(app),
		newImportCmd(app),
		newUnitCmd(app),
		newLanguagesCmd(app),
		newListCmd(app),
		newPickCmd(app),
	)
	return root
}

func defaultConfigPath() string {
	if p := os.Getenv("DROPDOWN_CONFIG"); p != "" {
		return p
	}
	return "dropdown.yaml"
}

// StdoutIsTerminal reports whether stdout is a terminal.
func StdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// session opens a session for the --login user. Every listing command
// runs on behalf of a user so rights and entities apply.
func (app *App) session(ctx context.Context) (*session.Session, error) {
	if app.login == "" {
		return nil, fmt.Errorf("--login is required (or set DROPDOWN_LOGIN)")
	}
	return app.Sessions.Login(ctx, contract.LoginRequest{Login: app.login})
}

// optionalSession is session for commands that also run anonymously.
func (app *App) optionalSession(ctx context.Context) (*session.Session, error) {
	if app.login == "" {
		return nil, nil
	}
	return app.session(ctx)
}

// render prints v as JSON or, on a terminal, as the text human returns.
func (app *App) render(w io.Writer, v any, human func() string) error {
	if app.asJSON || app.IsInteractive == nil || !app.IsInteractive() {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprint(w, human())
	return err
}
