package service

import (
	"github.com/alexanderramin/dropdown/internal/config"
	"github.com/alexanderramin/dropdown/internal/db"
	"github.com/alexanderramin/dropdown/internal/format"
	"github.com/alexanderramin/dropdown/internal/repository"
)

// Settings are the global options the services read on every request.
type Settings struct {
	// Max caps the page size of every dropdown.
	Max       int
	ListLimit int
	Translate bool
	Decimals  int

	Languages       []config.Language
	DefaultLanguage string

	// Session defaults applied at login.
	ShowIDs      bool
	FlatTree     bool
	NumberFormat format.NumberFormat
}

// SettingsFromConfig extracts the service settings from cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Max:             cfg.Dropdown.Max,
		ListLimit:       cfg.Dropdown.ListLimit,
		Translate:       cfg.Dropdown.Translate,
		Decimals:        cfg.Dropdown.Decimals,
		Languages:       cfg.Languages,
		DefaultLanguage: cfg.Session.DefaultLanguage,
		ShowIDs:         cfg.Session.ShowIDs,
		FlatTree:        cfg.Session.FlatTree,
		NumberFormat:    format.NumberFormat(cfg.Dropdown.NumberFormat),
	}
}

// Repos bundles the repositories the services read from.
type Repos struct {
	Items        repository.ItemRepo
	Entities     *repository.EntityTree
	Users        repository.UserRepo
	Profiles     repository.ProfileRepo
	Connect      repository.ConnectRepo
	Netpoints    repository.NetpointRepo
	Lookups      repository.LookupRepo
	Translations repository.TranslationRepo
}

// NewSQLRepos wires the SQL repositories of database.
func NewSQLRepos(database *db.DB) Repos {
	d := database.Dialect
	return Repos{
		Items:        repository.NewSQLItemRepo(database, d),
		Entities:     repository.NewEntityTree(repository.NewSQLEntityRepo(database, d)),
		Users:        repository.NewSQLUserRepo(database, d),
		Profiles:     repository.NewSQLProfileRepo(database, d),
		Connect:      repository.NewSQLConnectRepo(database, d),
		Netpoints:    repository.NewSQLNetpointRepo(database, d),
		Lookups:      repository.NewSQLLookupRepo(database, d),
		Translations: repository.NewSQLTranslationRepo(database, d),
	}
}
