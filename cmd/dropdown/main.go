package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/dropdown/internal/cli"
	"github.com/alexanderramin/dropdown/internal/config"
	"github.com/alexanderramin/dropdown/internal/db"
	"github.com/alexanderramin/dropdown/internal/httpapi"
	"github.com/alexanderramin/dropdown/internal/logging"
	"github.com/alexanderramin/dropdown/internal/seed"
	"github.com/alexanderramin/dropdown/internal/service"
	"github.com/alexanderramin/dropdown/internal/session"
)

func main() {
	app := &cli.App{
		Bootstrap:     bootstrap,
		IsInteractive: cli.StdoutIsTerminal,
	}
	if cli.StdoutIsTerminal() {
		app.Prompt = cli.HuhPrompt
	}

	if err := cli.NewRootCmd(app).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads the config at path and wires the services of app.
func bootstrap(app *cli.App, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	lggr, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	database, err := db.Open(context.Background(), cfg.Database.DSN, cfg.Database.ConnectRetries)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	// Wire repositories and services
	settings := service.SettingsFromConfig(cfg)
	repos := service.NewSQLRepos(database)
	repos.Entities.TTL = cfg.Dropdown.EntityCacheTTL
	uow := db.NewUnitOfWork(database)
	observer := service.NewZapUseCaseObserver(lggr)

	app.Config = cfg
	app.Logger = lggr
	app.Dropdown = service.NewDropdownService(repos, settings, observer)
	app.Imports = service.NewImportService(uow, observer)
	app.Sessions = service.NewSessionService(repos, session.NewStore(cfg.Session.IDORTokenTTL), settings, observer)
	app.Seeds = seed.NewLoader(uow, lggr, observer).WithCaches(repos.Entities)
	app.Server = httpapi.NewServer(app.Dropdown, app.Imports, app.Sessions, lggr)

	app.Close = func() error {
		_ = lggr.Sync()
		return database.Close()
	}
	return nil
}
