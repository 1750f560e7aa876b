package seed

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/db"
	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/alexanderramin/dropdown/internal/repository"
	"github.com/alexanderramin/dropdown/internal/service"
	"go.uber.org/zap"
)

// Summary counts the rows of a data set, whether they were created or
// matched existing ones.
type Summary struct {
	Entities     int `json:"entities"`
	Profiles     int `json:"profiles"`
	Users        int `json:"users"`
	Dropdowns    int `json:"dropdowns"`
	Translations int `json:"translations"`
	Assets       int `json:"assets"`
	Netpoints    int `json:"netpoints"`
}

// Loader writes data sets into a database. Dropdowns and translations go
// through the import service as a trusted caller so twins are reused and
// completenames are maintained.
type Loader struct {
	uow       db.UnitOfWork
	observers []service.UseCaseObserver
	caches    []Cache
	lggr      *zap.Logger
}

// Cache is a read cache over rows a data set may write.
type Cache interface {
	Invalidate()
}

func NewLoader(uow db.UnitOfWork, lggr *zap.Logger, observers ...service.UseCaseObserver) *Loader {
	if lggr == nil {
		lggr = zap.NewNop()
	}
	return &Loader{uow: uow, observers: observers, lggr: lggr.Named("seed")}
}

// WithCaches registers caches dropped after every successful load.
func (l *Loader) WithCaches(caches ...Cache) *Loader {
	l.caches = append(l.caches, caches...)
	return l
}

// refs resolves the refs of a data set to database IDs.
type refs struct {
	entities  map[string]int64
	profiles  map[string]int64
	locations map[string]int64
}

func newRefs() *refs {
	return &refs{
		entities:  map[string]int64{"": domain.RootEntityID},
		profiles:  make(map[string]int64),
		locations: make(map[string]int64),
	}
}

// Load validates ds and applies it in one transaction: nothing is written
// unless every row is. Rows that already exist are reused, so loading the
// same data set twice is a no-op.
func (l *Loader) Load(ctx context.Context, ds *Dataset) (*Summary, error) {
	if errs := Validate(ds); len(errs) > 0 {
		return nil, fmt.Errorf("invalid seed data: %w", errors.Join(errs...))
	}

	var sum *Summary
	err := l.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		sum = &Summary{}
		r := newRefs()
		if err := l.loadAccounts(ctx, tx, ds, r, sum); err != nil {
			return err
		}
		imports := service.NewImportService(db.JoinTx(tx, l.uow.Dialect()), l.observers...)
		if err := l.loadDropdowns(ctx, imports, ds.Dropdowns, r, sum); err != nil {
			return err
		}
		return l.loadAssets(ctx, tx, ds, r, sum)
	})
	if err != nil {
		return nil, err
	}
	for _, c := range l.caches {
		c.Invalidate()
	}

	l.lggr.Info("seed loaded",
		zap.Int("entities", sum.Entities),
		zap.Int("users", sum.Users),
		zap.Int("dropdowns", sum.Dropdowns),
		zap.Int("assets", sum.Assets),
	)
	return sum, nil
}

// existing returns the ID found by lookup, or ok=false when the row does
// not exist yet.
func existing(id int64, err error) (int64, bool, error) {
	switch {
	case err == nil:
		return id, true, nil
	case errors.Is(err, domain.ErrNotFound):
		return 0, false, nil
	}
	return 0, false, err
}

func (l *Loader) loadAccounts(ctx context.Context, tx db.DBTX, ds *Dataset, r *refs, sum *Summary) error {
	d := l.uow.Dialect()
	entities := repository.NewSQLEntityRepo(tx, d)
	for _, e := range ds.Entities {
		parent := r.entities[e.Parent]
		id, found, err := existing(entities.FindChild(ctx, e.Name, parent))
		if err != nil {
			return err
		}
		if !found {
			ent := &domain.Entity{Name: e.Name, ParentID: &parent, Comment: e.Comment}
			if err := entities.Create(ctx, ent); err != nil {
				return err
			}
			id = ent.ID
		}
		r.entities[e.Ref] = id
		sum.Entities++
	}

	profiles := repository.NewSQLProfileRepo(tx, d)
	for _, p := range ds.Profiles {
		prof, err := profiles.GetByName(ctx, p.Name)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if prof == nil {
			prof = &domain.Profile{Name: p.Name, Rights: make(domain.Rights, len(p.Rights))}
			for module, raw := range p.Rights {
				right, err := ParseRight(raw)
				if err != nil {
					return fmt.Errorf("profile %q: %w", p.Name, err)
				}
				prof.Rights[module] = right
			}
			if err := profiles.Create(ctx, prof); err != nil {
				return err
			}
		}
		r.profiles[p.Name] = prof.ID
		sum.Profiles++
	}

	users := repository.NewSQLUserRepo(tx, d)
	for _, u := range ds.Users {
		sum.Users++
		_, err := users.GetByName(ctx, u.Login)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		user := &domain.User{
			Name:      u.Login,
			RealName:  u.RealName,
			FirstName: u.FirstName,
			Language:  u.Language,
			IsActive:  !u.Inactive,
			EntityID:  r.entities[u.Entity],
		}
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		for _, a := range u.Profiles {
			err := profiles.Assign(ctx, domain.ProfileAssignment{
				UserID:      user.ID,
				ProfileID:   r.profiles[a.Profile],
				EntityID:    r.entities[a.Entity],
				IsRecursive: a.Recursive,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Loader) loadDropdowns(ctx context.Context, imports service.ImportService, dropdowns []DropdownSeed, r *refs, sum *Summary) error {
	for _, d := range dropdowns {
		id, err := imports.Import(ctx, nil, contract.ImportRequest{
			ItemType:     d.ItemType,
			Name:         d.Name,
			CompleteName: d.CompleteName,
			EntityID:     r.entities[d.Entity],
			Comment:      d.Comment,
		})
		if err != nil {
			return fmt.Errorf("importing %s %q: %w", d.ItemType, label(d), err)
		}
		if d.Ref != "" && d.ItemType == "Location" {
			r.locations[d.Ref] = id
		}
		sum.Dropdowns++

		languages := make([]string, 0, len(d.Translations))
		for lang := range d.Translations {
			languages = append(languages, lang)
		}
		sort.Strings(languages)
		for _, lang := range languages {
			tr := d.Translations[lang]
			for field, value := range map[string]string{"name": tr.Name, "comment": tr.Comment} {
				if value == "" {
					continue
				}
				err := imports.Translate(ctx, nil, contract.TranslateRequest{
					ItemType: d.ItemType,
					ID:       id,
					Language: lang,
					Field:    field,
					Value:    value,
				})
				if err != nil {
					return fmt.Errorf("translating %s %q: %w", d.ItemType, label(d), err)
				}
				sum.Translations++
			}
		}
	}
	return nil
}

func (l *Loader) loadAssets(ctx context.Context, tx db.DBTX, ds *Dataset, r *refs, sum *Summary) error {
	d := l.uow.Dialect()
	items := repository.NewSQLItemRepo(tx, d)
	for _, a := range ds.Assets {
		typ, _ := domain.LookupItemType(a.ItemType)
		entityID := r.entities[a.Entity]
		_, found, err := existing(items.FindTwin(ctx, typ, a.Name, 0, entityID))
		if err != nil {
			return err
		}
		sum.Assets++
		if found {
			continue
		}
		item := &domain.Item{
			Name:          a.Name,
			EntityID:      entityID,
			IsRecursive:   a.Recursive,
			IsGlobal:      a.Global,
			LocationID:    r.locations[a.Location],
			Serial:        a.Serial,
			OtherSerial:   a.OtherSerial,
			ProductNumber: a.ProductNumber,
			Comment:       a.Comment,
		}
		if err := items.Create(ctx, typ, item); err != nil {
			return err
		}
	}

	netpoints := repository.NewSQLNetpointRepo(tx, d)
	for _, n := range ds.Netpoints {
		np := &domain.Netpoint{
			Name:       n.Name,
			EntityID:   r.entities[n.Entity],
			LocationID: r.locations[n.Location],
			Comment:    n.Comment,
		}
		_, found, err := existing(netpoints.FindTwin(ctx, np.Name, np.EntityID, np.LocationID))
		if err != nil {
			return err
		}
		sum.Netpoints++
		if found {
			continue
		}
		if err := netpoints.Create(ctx, np); err != nil {
			return err
		}
	}
	return nil
}

func label(d DropdownSeed) string {
	return domain.CoalesceStr(d.CompleteName, d.Name)
}
