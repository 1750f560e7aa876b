package testutil

import (
	"context"
	"testing"

	"github.com/alexanderramin/dropdown/internal/db"
	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/alexanderramin/dropdown/internal/repository"
)

// Item options
type ItemOption func(*domain.Item)

func WithEntity(id int64) ItemOption {
	return func(it *domain.Item) {
		it.EntityID = id
	}
}

func WithRecursive() ItemOption {
	return func(it *domain.Item) {
		it.IsRecursive = true
	}
}

func WithParent(id int64) ItemOption {
	return func(it *domain.Item) {
		it.ParentID = id
	}
}

func WithComment(c string) ItemOption {
	return func(it *domain.Item) {
		it.Comment = c
	}
}

func WithProductNumber(n string) ItemOption {
	return func(it *domain.Item) {
		it.ProductNumber = n
	}
}

func WithSerial(serial, other string) ItemOption {
	return func(it *domain.Item) {
		it.Serial = serial
		it.OtherSerial = other
	}
}

func WithGlobal() ItemOption {
	return func(it *domain.Item) {
		it.IsGlobal = true
	}
}

func WithLocation(id int64) ItemOption {
	return func(it *domain.Item) {
		it.LocationID = id
	}
}

func WithDeleted() ItemOption {
	return func(it *domain.Item) {
		it.IsDeleted = true
	}
}

func WithTemplate() ItemOption {
	return func(it *domain.Item) {
		it.IsTemplate = true
	}
}

func NewTestItem(name string, opts ...ItemOption) *domain.Item {
	it := &domain.Item{Name: name}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// CreateItem inserts a row of the named item type and returns its ID.
func CreateItem(t testing.TB, database *db.DB, itemtype, name string, opts ...ItemOption) int64 {
	t.Helper()
	typ, ok := domain.LookupItemType(itemtype)
	if !ok {
		t.Fatalf("unknown item type %q", itemtype)
	}
	it := NewTestItem(name, opts...)
	repo := repository.NewSQLItemRepo(database, database.Dialect)
	if err := repo.Create(context.Background(), typ, it); err != nil {
		t.Fatalf("creating %s %q: %v", itemtype, name, err)
	}
	return it.ID
}

// CreateEntity inserts an entity below parent and returns its ID.
func CreateEntity(t testing.TB, database *db.DB, name string, parent int64) int64 {
	t.Helper()
	e := &domain.Entity{Name: name, ParentID: &parent}
	if err := repository.NewSQLEntityRepo(database, database.Dialect).Create(context.Background(), e); err != nil {
		t.Fatalf("creating entity %q: %v", name, err)
	}
	return e.ID
}

// Fixture holds the IDs of the rows created by SeedFixture, keyed by type
// and name.
type Fixture struct {
	t   testing.TB
	ids map[string]map[string]int64
}

func (f *Fixture) set(itemtype, name string, id int64) {
	if f.ids[itemtype] == nil {
		f.ids[itemtype] = make(map[string]int64)
	}
	f.ids[itemtype][name] = id
}

// ID returns the ID of the named fixture row, failing the test when it
// was never created.
func (f *Fixture) ID(itemtype, name string) int64 {
	f.t.Helper()
	id, ok := f.ids[itemtype][name]
	if !ok {
		f.t.Fatalf("no fixture %s %q", itemtype, name)
	}
	return id
}

// Fixture profile names.
const (
	ProfileSuperAdmin  = "Super-Admin"
	ProfileTechnician  = "Technician"
	ProfileObserver    = "Observer"
	ProfileSelfService = "Self-Service"
)

// FixtureLanguage is the language fixture translations are stored in.
const FixtureLanguage = "fr_FR"

// SeedFixture populates database with the reference data set used across
// service and transport tests:
//
//	Root entity > _test_root_entity > _test_child_1, _test_child_2
//
// plus task categories, locations, computers, printers, models, document
// types, users with profiles, a netpoint, a contact, a supplier and a
// budget.
func SeedFixture(t testing.TB, database *db.DB) *Fixture {
	t.Helper()
	ctx := context.Background()
	f := &Fixture{t: t, ids: make(map[string]map[string]int64)}
	item := func(itemtype, name string, opts ...ItemOption) int64 {
		id := CreateItem(t, database, itemtype, name, opts...)
		f.set(itemtype, name, id)
		return id
	}

	f.set("Entity", db.RootEntityName, domain.RootEntityID)
	root := CreateEntity(t, database, "_test_root_entity", domain.RootEntityID)
	f.set("Entity", "_test_root_entity", root)
	child1 := CreateEntity(t, database, "_test_child_1", root)
	f.set("Entity", "_test_child_1", child1)
	child2 := CreateEntity(t, database, "_test_child_2", root)
	f.set("Entity", "_test_child_2", child2)

	cat := item("TaskCategory", "_cat_1",
		WithEntity(domain.RootEntityID), WithRecursive(), WithComment("Comment for category _cat_1"))
	subcat := item("TaskCategory", "_subcat_1",
		WithEntity(domain.RootEntityID), WithRecursive(), WithParent(cat), WithComment("Comment for sub-category _subcat_1"))

	translations := repository.NewSQLTranslationRepo(database, database.Dialect)
	for _, tr := range []domain.Translation{
		{ItemType: "TaskCategory", ItemID: cat, Language: FixtureLanguage, Field: "name", Value: "FR - _cat_1"},
		{ItemType: "TaskCategory", ItemID: cat, Language: FixtureLanguage, Field: "completename", Value: "FR - _cat_1"},
		{ItemType: "TaskCategory", ItemID: subcat, Language: FixtureLanguage, Field: "name", Value: "FR - _subcat_1"},
		{ItemType: "TaskCategory", ItemID: subcat, Language: FixtureLanguage, Field: "completename", Value: "FR - _cat_1 > FR - _subcat_1"},
		{ItemType: "TaskCategory", ItemID: subcat, Language: FixtureLanguage, Field: "comment", Value: "FR - Commentaire pour sous-catégorie _subcat_1"},
	} {
		if err := translations.Upsert(ctx, tr); err != nil {
			t.Fatalf("seeding translation: %v", err)
		}
	}

	location := item("Location", "_location01", WithEntity(root), WithComment("Comment for location _location01"))
	item("Location", "_location02", WithEntity(root), WithComment("Comment for location _location02"))

	item("Computer", "_test_pc01", WithEntity(root))
	item("Computer", "_test_pc02", WithEntity(root))
	item("Computer", "_test_pc11", WithEntity(child1))
	item("Computer", "_test_pc12", WithEntity(child1))
	item("Computer", "_test_pc21", WithEntity(child2))
	item("Computer", "_test_pc22", WithEntity(child2))

	item("Printer", "_test_printer_all", WithEntity(root), WithRecursive(), WithGlobal())
	item("Printer", "_test_printer_ent0", WithEntity(root))
	item("Printer", "_test_printer_ent1", WithEntity(child1))
	item("Printer", "_test_printer_ent2", WithEntity(child2))

	item("ComputerModel", "_test_computermodel_1", WithProductNumber("CMP_ADEAF5E1"))
	item("ComputerModel", "_test_computermodel_2", WithProductNumber("CMP_567AEC68"))

	item("DocumentType", "markdown")
	item("DocumentType", "JPEG")

	budgetType := item("BudgetType", "_budgettype01")

	seedUsers(t, database, f)

	netpoints := repository.NewSQLNetpointRepo(database, database.Dialect)
	np := &domain.Netpoint{
		EntityID:   root,
		LocationID: location,
		Name:       "_netpoint01",
		Comment:    "Comment for netpoint _netpoint01",
	}
	if err := netpoints.Create(ctx, np); err != nil {
		t.Fatalf("seeding netpoint: %v", err)
	}
	f.set("Netpoint", np.Name, np.ID)

	lookups := repository.NewSQLLookupRepo(database, database.Dialect)
	contact := &domain.Contact{
		EntityID:  root,
		Name:      "_contact01_name",
		FirstName: "_contact01_firstname",
		Phone:     "0123456789",
		Phone2:    "0123456788",
		Mobile:    "0623456789",
		Fax:       "0123456787",
		Email:     "_contact01_firstname._contact01_name@glpi.com",
		Comment:   "Comment for contact _contact01_name",
	}
	if err := lookups.CreateContact(ctx, contact); err != nil {
		t.Fatalf("seeding contact: %v", err)
	}
	f.set("Contact", contact.Name, contact.ID)

	supplier := &domain.Supplier{
		EntityID: root,
		Name:     "_suplier01_name",
		Phone:    "0123456789",
		Fax:      "0123456787",
		Email:    "info@_supplier01_name.com",
		Comment:  "Comment for supplier _suplier01_name",
	}
	if err := lookups.CreateSupplier(ctx, supplier); err != nil {
		t.Fatalf("seeding supplier: %v", err)
	}
	f.set("Supplier", supplier.Name, supplier.ID)

	budget := &domain.Budget{
		EntityID:     root,
		Name:         "_budget01",
		Comment:      "Comment for budget _budget01",
		LocationID:   location,
		BudgetTypeID: budgetType,
		BeginDate:    "2016-10-18",
		EndDate:      "2016-12-31",
	}
	if err := lookups.CreateBudget(ctx, budget); err != nil {
		t.Fatalf("seeding budget: %v", err)
	}
	f.set("Budget", budget.Name, budget.ID)

	return f
}

// allRights grants RightAll on every module the registered types check.
func allRights() domain.Rights {
	rights := domain.Rights{"user": domain.RightAll, "entity": domain.RightAll}
	for _, name := range domain.ItemTypeNames() {
		typ, _ := domain.LookupItemType(name)
		rights[typ.RightModule] = domain.RightAll
	}
	return rights
}

func seedUsers(t testing.TB, database *db.DB, f *Fixture) {
	t.Helper()
	ctx := context.Background()
	profiles := repository.NewSQLProfileRepo(database, database.Dialect)
	users := repository.NewSQLUserRepo(database, database.Dialect)

	read := domain.RightRead
	readWrite := domain.RightRead | domain.RightUpdate
	profileRights := map[string]domain.Rights{
		ProfileSuperAdmin: allRights(),
		ProfileTechnician: {
			"computer": readWrite, "printer": readWrite, "monitor": readWrite, "taskcategory": read,
			"location": read, "netpoint": read, "user": read,
		},
		ProfileObserver: {
			"computer": read, "printer": read, "monitor": read, "taskcategory": read, "location": read, "user": read,
		},
		ProfileSelfService: {
			"taskcategory": read,
		},
	}
	for _, name := range []string{ProfileSuperAdmin, ProfileTechnician, ProfileObserver, ProfileSelfService} {
		p := &domain.Profile{Name: name, Rights: profileRights[name]}
		if err := profiles.Create(ctx, p); err != nil {
			t.Fatalf("seeding profile: %v", err)
		}
		f.set("Profile", name, p.ID)
	}

	for _, u := range []struct {
		login   string
		profile string
	}{
		{"_test_user", ProfileSuperAdmin},
		{"glpi", ProfileSuperAdmin},
		{"normal", ProfileObserver},
		{"post-only", ProfileSelfService},
		{"tech", ProfileTechnician},
	} {
		user := &domain.User{Name: u.login, IsActive: true, EntityID: domain.RootEntityID}
		if err := users.Create(ctx, user); err != nil {
			t.Fatalf("seeding user: %v", err)
		}
		f.set("User", u.login, user.ID)
		err := profiles.Assign(ctx, domain.ProfileAssignment{
			UserID:      user.ID,
			ProfileID:   f.ID("Profile", u.profile),
			EntityID:    domain.RootEntityID,
			IsRecursive: true,
		})
		if err != nil {
			t.Fatalf("assigning profile: %v", err)
		}
	}
}
