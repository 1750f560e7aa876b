package contract

// ValueRequest lists the rows of one dropdown table.
type ValueRequest struct {
	ItemType   string `json:"itemtype" validate:"required"`
	IDORToken  string `json:"_idor_token"`
	SearchText string `json:"searchText"`
	// Used rows are left out of the results.
	Used           []int64        `json:"used"`
	EntityRestrict EntityRestrict `json:"entity_restrict"`
	Condition      Condition      `json:"condition"`

	Page      int `json:"page" validate:"gte=0"`
	PageLimit int `json:"page_limit" validate:"gte=0"`

	DisplayEmptyChoice Flag   `json:"display_emptychoice"`
	EmptyLabel         string `json:"emptylabel"`
	ToAdd              Extras `json:"toadd"`
	PermitSelectParent Flag   `json:"permit_select_parent"`
	// DisplayWith columns are appended to the label of flat types.
	DisplayWith []string `json:"displaywith"`
	// ParentID limits tree listings to the rows below that node.
	ParentID *int64 `json:"parent_id"`
	// OneID fetches a single row regardless of paging.
	OneID *int64 `json:"_one_id"`
}

// NewValueRequest returns a first-page request for itemtype.
func NewValueRequest(itemtype string) ValueRequest {
	return ValueRequest{ItemType: itemtype, Page: 1}
}

// ConnectRequest lists the devices of ItemType that can be attached to an
// item of FromType.
type ConnectRequest struct {
	FromType   string `json:"fromtype" validate:"required"`
	ItemType   string `json:"itemtype" validate:"required"`
	IDORToken  string `json:"_idor_token"`
	SearchText string `json:"searchText"`
	// Used is keyed by item type.
	Used           map[string][]int64 `json:"used"`
	EntityRestrict EntityRestrict     `json:"entity_restrict"`
	OnlyGlobal     Flag               `json:"onlyglobal"`

	Page      int `json:"page" validate:"gte=0"`
	PageLimit int `json:"page_limit" validate:"gte=0"`
}

func NewConnectRequest(fromtype, itemtype string) ConnectRequest {
	return ConnectRequest{FromType: fromtype, ItemType: itemtype, Page: 1}
}

// NumberRequest lists the values from Min to Max by Step.
type NumberRequest struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step" validate:"gte=0"`
	Unit string  `json:"unit"`

	SearchText string    `json:"searchText"`
	Used       []float64 `json:"used"`
	ToAdd      Extras    `json:"toadd"`

	Page      int `json:"page" validate:"gte=0"`
	PageLimit int `json:"page_limit" validate:"gte=0"`
}

// NewNumberRequest returns the defaults: from 1 by 1, up to the display
// maximum when Max stays 0.
func NewNumberRequest() NumberRequest {
	return NumberRequest{Min: 1, Step: 1, Page: 1}
}

// User right selectors.
const (
	RightAll     = "all"
	RightCurrent = "id"
)

// UsersRequest lists the users holding Right in the restricted entities.
type UsersRequest struct {
	IDORToken string `json:"_idor_token"`
	// Right is "all", "id" for the current user, or a right module name.
	Right          string         `json:"right"`
	All            Flag           `json:"all"`
	Used           []int64        `json:"used"`
	EntityRestrict EntityRestrict `json:"entity_restrict"`
	SearchText     string         `json:"searchText"`

	Page      int `json:"page" validate:"gte=0"`
	PageLimit int `json:"page_limit" validate:"gte=0"`
}

func NewUsersRequest() UsersRequest {
	return UsersRequest{Right: RightAll, Page: 1}
}

// NetpointRequest lists network outlets.
type NetpointRequest struct {
	EntityRestrict EntityRestrict `json:"entity_restrict"`
	// LocationID limits the outlets to one location when set.
	LocationID *int64 `json:"locations_id"`
	// DevType hides outlets already wired to ports of that item type, except
	// those of DevID.
	DevType    string `json:"devtype"`
	DevID      int64  `json:"devid"`
	SearchText string `json:"searchText"`

	Page      int `json:"page" validate:"gte=0"`
	PageLimit int `json:"page_limit" validate:"gte=0"`
}

func NewNetpointRequest() NetpointRequest {
	return NetpointRequest{Page: 1}
}

// NameRequest resolves the label of one row.
type NameRequest struct {
	Table string `json:"table" validate:"required"`
	ID    int64  `json:"id"`
	// WithComment adds the comment, formatted as a tooltip when Tooltip is set.
	WithComment Flag `json:"withcomment"`
	Translate   Flag `json:"translate"`
	Tooltip     Flag `json:"tooltip"`
}

func NewNameRequest(table string, id int64) NameRequest {
	return NameRequest{Table: table, ID: id, Translate: true, Tooltip: true}
}

// ImportRequest finds or creates a dropdown row by name. Tree types may
// give CompleteName instead, creating every missing level.
type ImportRequest struct {
	ItemType     string `json:"itemtype" validate:"required"`
	Name         string `json:"name"`
	CompleteName string `json:"completename"`
	EntityID     int64  `json:"entities_id" validate:"gte=0"`
	ParentID     int64  `json:"parent_id" validate:"gte=0"`
	Comment      string `json:"comment"`
}

// TranslateRequest stores a per-language value of a dropdown field.
type TranslateRequest struct {
	ItemType string `json:"itemtype" validate:"required"`
	ID       int64  `json:"id" validate:"gt=0"`
	Language string `json:"language" validate:"required"`
	Field    string `json:"field" validate:"required,oneof=name comment"`
	Value    string `json:"value"`
}

// LanguagesRequest lists the configured languages.
type LanguagesRequest struct {
	DisplayEmptyChoice Flag   `json:"display_emptychoice"`
	EmptyLabel         string `json:"emptylabel"`
	// Value marks the matching language as selected.
	Value string `json:"value"`
}

// UnitRequest formats a value with its unit.
type UnitRequest struct {
	Value    string `json:"value"`
	Unit     string `json:"unit"`
	Decimals *int   `json:"decimals" validate:"omitempty,gte=0,lte=10"`
}

// ListRequest pages through a table outside of a dropdown.
type ListRequest struct {
	ItemType       string         `json:"itemtype" validate:"required"`
	Start          int            `json:"start" validate:"gte=0"`
	Limit          int            `json:"limit" validate:"gte=0"`
	SearchText     string         `json:"searchText"`
	EntityRestrict EntityRestrict `json:"entity_restrict"`
}

// LoginRequest opens a session for a user. Authentication happens upstream.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Language string `json:"language"`
	ShowIDs  *bool  `json:"show_ids"`
	FlatTree *bool  `json:"flat_tree"`
}

// TokenRequest asks for an IDOR token for a listing.
type TokenRequest struct {
	ItemType       string         `json:"itemtype" validate:"required"`
	EntityRestrict EntityRestrict `json:"entity_restrict"`
}
