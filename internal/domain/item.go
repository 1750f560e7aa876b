package domain

// RootEntityID is the ID of the top of the entity hierarchy.
const RootEntityID int64 = 0

// Entity is an organisational scope items are assigned to.
type Entity struct {
	ID           int64
	Name         string
	ParentID     *int64
	CompleteName string
	Level        int
	Comment      string
}

// Item is a row of any dropdown table. Fields a table does not carry are
// left at their zero value.
type Item struct {
	ID           int64
	EntityID     int64
	IsRecursive  bool
	Name         string
	Comment      string
	ParentID     int64
	CompleteName string
	Level        int

	ProductNumber string
	Serial        string
	OtherSerial   string
	IsDeleted     bool
	IsTemplate    bool
	IsGlobal      bool
	LocationID    int64

	// Extra holds additional columns requested by the caller, keyed by
	// column name.
	Extra map[string]string
}

// Netpoint is a network outlet, usually bound to a location.
type Netpoint struct {
	ID                   int64
	EntityID             int64
	Name                 string
	Comment              string
	LocationID           int64
	LocationCompleteName string
}

// Contact is a person attached to suppliers.
type Contact struct {
	ID        int64
	EntityID  int64
	Name      string
	FirstName string
	Phone     string
	Phone2    string
	Mobile    string
	Fax       string
	Email     string
	Comment   string
}

// DisplayName joins name and first name the way contacts are listed.
func (c Contact) DisplayName() string {
	if c.FirstName == "" {
		return c.Name
	}
	if c.Name == "" {
		return c.FirstName
	}
	return c.Name + " " + c.FirstName
}

// Supplier is a vendor company.
type Supplier struct {
	ID       int64
	EntityID int64
	Name     string
	Phone    string
	Fax      string
	Email    string
	Comment  string
}

// Budget is a spending envelope bound to a location and a budget type.
type Budget struct {
	ID           int64
	EntityID     int64
	Name         string
	Comment      string
	LocationID   int64
	BudgetTypeID int64
	BeginDate    string
	EndDate      string
}

// Translation is a per-language override of a dropdown field.
type Translation struct {
	ItemType string
	ItemID   int64
	Language string
	Field    string
	Value    string
}
