package service

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/alexanderramin/dropdown/internal/format"
	"github.com/alexanderramin/dropdown/internal/repository"
	"github.com/alexanderramin/dropdown/internal/session"
)

type dropdownService struct {
	items        repository.ItemRepo
	entities     *repository.EntityTree
	users        repository.UserRepo
	connect      repository.ConnectRepo
	netpoints    repository.NetpointRepo
	lookups      repository.LookupRepo
	translations repository.TranslationRepo
	settings     Settings
	observer     UseCaseObserver
}

func NewDropdownService(repos Repos, settings Settings, observers ...UseCaseObserver) DropdownService {
	if settings.Max <= 0 {
		settings.Max = 100
	}
	if settings.ListLimit <= 0 {
		settings.ListLimit = 15
	}
	return &dropdownService{
		items:        repos.Items,
		entities:     repos.Entities,
		users:        repos.Users,
		connect:      repos.Connect,
		netpoints:    repos.Netpoints,
		lookups:      repos.Lookups,
		translations: repos.Translations,
		settings:     settings,
		observer:     useCaseObserverOrNoop(observers),
	}
}

func lookupType(name string) (domain.ItemType, error) {
	typ, ok := domain.LookupItemType(name)
	if !ok {
		return domain.ItemType{}, fmt.Errorf("%w: %q", domain.ErrUnknownItemType, name)
	}
	return typ, nil
}

func requireSession(sess *session.Session) error {
	if sess == nil {
		return fmt.Errorf("%w: no session", domain.ErrForbidden)
	}
	return nil
}

func requireRight(sess *session.Session, typ domain.ItemType, want domain.Right) error {
	if !sess.HaveRight(typ.RightModule, want) {
		return fmt.Errorf("%w: %s on %s", domain.ErrForbidden, rightName(want), typ.Name)
	}
	return nil
}

func rightName(r domain.Right) string {
	switch r {
	case domain.RightRead:
		return "READ"
	case domain.RightUpdate:
		return "UPDATE"
	case domain.RightCreate:
		return "CREATE"
	case domain.RightDelete:
		return "DELETE"
	case domain.RightPurge:
		return "PURGE"
	}
	return fmt.Sprintf("right %d", int(r))
}

// pageBounds clamps the requested page and page size and returns the
// offset of the first row.
func (s *dropdownService) pageBounds(page, pageLimit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageLimit <= 0 || pageLimit > s.settings.Max {
		pageLimit = s.settings.Max
	}
	return page, pageLimit, (page - 1) * pageLimit
}

// restrictEntities resolves entity_restrict against the session. Explicit
// IDs are kept only when they are active.
func restrictEntities(sess *session.Session, r contract.EntityRestrict) []int64 {
	switch {
	case r.Default:
		return []int64{sess.DefaultEntity}
	case r.IsSet():
		var ids []int64
		for _, id := range r.IDs {
			if sess.IsActiveEntity(id) {
				ids = append(ids, id)
			}
		}
		return ids
	}
	return slices.Clone(sess.ActiveEntities)
}

// language returns the language labels are translated to, or "" when
// translations are disabled.
func (s *dropdownService) language(sess *session.Session) string {
	if !s.settings.Translate || sess == nil {
		return ""
	}
	return sess.Language
}

// condition returns the filters of c. A key the session does not know
// applies no filter.
func condition(sess *session.Session, c contract.Condition) []domain.Filter {
	if c.Key != "" {
		filters, ok := sess.Condition(c.Key)
		if !ok {
			return nil
		}
		return filters
	}
	return c.Filters
}

func numberFormat(sess *session.Session) format.NumberFormat {
	if sess == nil {
		return format.FormatFrench
	}
	return sess.Prefs.NumberFormat
}

func showIDs(sess *session.Session) bool {
	return sess != nil && sess.Prefs.ShowIDs
}

func isSearching(text string) bool {
	return strings.TrimSpace(text) != ""
}

// withID appends the row ID to label when IDs are visible or the label is
// empty.
func withID(sess *session.Session, label string, id int64) string {
	if showIDs(sess) || label == "" {
		return fmt.Sprintf("%s (%d)", label, id)
	}
	return label
}

// joinLabel renders "a - b", or a alone when b is empty.
func joinLabel(a, b string) string {
	if b == "" {
		return a
	}
	return a + " - " + b
}

func emptyChoice(label string) contract.Option {
	if label == "" {
		label = domain.EmptyChoiceLabel
	}
	return contract.Option{ID: int64(0), Text: label}
}

func extraOptions(extras contract.Extras) []contract.Option {
	out := make([]contract.Option, 0, len(extras))
	for _, e := range extras {
		out = append(out, contract.Option{ID: e.ID, Text: e.Text})
	}
	return out
}
