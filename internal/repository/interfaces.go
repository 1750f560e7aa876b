package repository

import (
	"context"

	"github.com/alexanderramin/dropdown/internal/domain"
)

// ItemQuery selects rows of one dropdown table.
type ItemQuery struct {
	Type  domain.ItemType
	Scope *EntityScope
	// OnlyIDs restricts the rows to the given IDs when non-nil.
	OnlyIDs    []int64
	ExcludeIDs []int64
	Filters    []domain.Filter
	// Search is raw user text; see makeTextSearchValue.
	Search string
	// SearchFields are matched against Search besides the label column.
	SearchFields []string
	// SearchID also matches the ID when Search is an integer.
	SearchID bool
	// Columns are returned in Item.Extra.
	Columns []string
	// Language selects translated labels when non-empty.
	Language string
	// GroupByEntity orders rows by entity before the label.
	GroupByEntity  bool
	IncludeDeleted bool
	Offset         int
	Limit          int
}

type ItemRepo interface {
	Search(ctx context.Context, q ItemQuery) ([]*domain.Item, error)
	Count(ctx context.Context, q ItemQuery) (int, error)
	GetByID(ctx context.Context, t domain.ItemType, id int64, language string) (*domain.Item, error)
	Descendants(ctx context.Context, t domain.ItemType, id int64) ([]int64, error)
	FindTwin(ctx context.Context, t domain.ItemType, name string, parentID, entityID int64) (int64, error)
	Create(ctx context.Context, t domain.ItemType, item *domain.Item) error
}

type EntityRepo interface {
	Create(ctx context.Context, e *domain.Entity) error
	GetByID(ctx context.Context, id int64) (*domain.Entity, error)
	FindChild(ctx context.Context, name string, parentID int64) (int64, error)
	List(ctx context.Context) ([]*domain.Entity, error)
}

// UserQuery selects users through their profile assignments.
type UserQuery struct {
	// Scope applies to the entity of the profile assignment.
	Scope *EntityScope
	// Right, when set, requires a profile granting Want on that module.
	Right      string
	Want       domain.Right
	OnlyIDs    []int64
	ExcludeIDs []int64
	Search     string
	Offset     int
	Limit      int
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
	Search(ctx context.Context, q UserQuery) ([]*domain.User, error)
}

type ProfileRepo interface {
	Create(ctx context.Context, p *domain.Profile) error
	GetByID(ctx context.Context, id int64) (*domain.Profile, error)
	GetByName(ctx context.Context, name string) (*domain.Profile, error)
	Assign(ctx context.Context, a domain.ProfileAssignment) error
	ListAssignments(ctx context.Context, userID int64) ([]domain.ProfileAssignment, error)
}

// ConnectQuery selects devices that can be attached to a computer.
type ConnectQuery struct {
	Type       domain.ItemType
	Scope      *EntityScope
	ExcludeIDs []int64
	OnlyGlobal bool
	Search     string
	Offset     int
	Limit      int
}

// ConnectCandidate is a device joined with the completename of its entity.
type ConnectCandidate struct {
	ID                 int64
	EntityID           int64
	Name               string
	Serial             string
	OtherSerial        string
	EntityCompleteName string
}

type ConnectRepo interface {
	Candidates(ctx context.Context, q ConnectQuery) ([]ConnectCandidate, error)
	Connect(ctx context.Context, computerID int64, itemtype string, itemID int64) error
}

// NetpointQuery selects network outlets.
type NetpointQuery struct {
	Scope      *EntityScope
	LocationID *int64
	// DevType excludes outlets already wired to ports of that item type,
	// except the ports of device DevID.
	DevType    string
	DevID      int64
	ExcludeIDs []int64
	Search     string
	Offset     int
	Limit      int
}

// NetworkPort binds a device to a netpoint.
type NetworkPort struct {
	ID         int64
	ItemType   string
	ItemID     int64
	EntityID   int64
	NetpointID int64
	Name       string
}

type NetpointRepo interface {
	Create(ctx context.Context, n *domain.Netpoint) error
	GetByID(ctx context.Context, id int64) (*domain.Netpoint, error)
	FindTwin(ctx context.Context, name string, entityID, locationID int64) (int64, error)
	Search(ctx context.Context, q NetpointQuery) ([]*domain.Netpoint, error)
	AddPort(ctx context.Context, p *NetworkPort) error
}

// LookupRepo reads the tables whose labels carry more than a name.
type LookupRepo interface {
	Contact(ctx context.Context, id int64) (*domain.Contact, error)
	Supplier(ctx context.Context, id int64) (*domain.Supplier, error)
	Budget(ctx context.Context, id int64) (*domain.Budget, error)
	CreateContact(ctx context.Context, c *domain.Contact) error
	CreateSupplier(ctx context.Context, s *domain.Supplier) error
	CreateBudget(ctx context.Context, b *domain.Budget) error
}

type TranslationRepo interface {
	Upsert(ctx context.Context, tr domain.Translation) error
	Get(ctx context.Context, itemtype string, itemID int64, language, field string) (string, error)
	ListByItem(ctx context.Context, itemtype string, itemID int64) ([]domain.Translation, error)
}
