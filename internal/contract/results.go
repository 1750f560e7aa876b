package contract

import "github.com/alexanderramin/dropdown/internal/pager"

// Option is one entry of a dropdown. Group entries carry Text and
// Children only.
type Option struct {
	ID            any      `json:"id,omitempty"`
	Text          string   `json:"text"`
	Level         *int     `json:"level,omitempty"`
	Title         string   `json:"title,omitempty"`
	SelectionText string   `json:"selection_text,omitempty"`
	Disabled      bool     `json:"disabled,omitempty"`
	Children      []Option `json:"children,omitempty"`
}

// Lvl returns a pointer to level for Option.Level.
func Lvl(level int) *int {
	return &level
}

// Results is a page of options. Count only includes real rows, not the
// empty choice, groups or synthetic entries.
type Results struct {
	Results []Option `json:"results"`
	Count   int      `json:"count"`
}

// ConnectResults is a page of connectable devices.
type ConnectResults struct {
	Results []Option `json:"results"`
}

// NameResult is the label of one row with its optional comment.
type NameResult struct {
	Name    string `json:"name"`
	Comment string `json:"comment,omitempty"`
}

// LanguageOption is an entry of the language selector.
type LanguageOption struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Selected bool   `json:"selected,omitempty"`
}

// SessionInfo describes an opened session.
type SessionInfo struct {
	ID             string  `json:"id"`
	Login          string  `json:"login"`
	Language       string  `json:"language"`
	ActiveEntities []int64 `json:"active_entities"`
	DefaultEntity  int64   `json:"default_entity"`
}

// TokenResult carries a new IDOR token.
type TokenResult struct {
	Token string `json:"token"`
}

// ConditionResult carries the key of a stored condition.
type ConditionResult struct {
	Key string `json:"key"`
}

// ImportResult carries the ID of the found or created row.
type ImportResult struct {
	ID int64 `json:"id"`
}

// UnitResult carries a formatted value.
type UnitResult struct {
	Text string `json:"text"`
}

// ListItem is a row of a plain listing.
type ListItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Entity   string `json:"entity,omitempty"`
	Comment  string `json:"comment,omitempty"`
	Complete string `json:"completename,omitempty"`
}

// ListPage is one page of a plain listing with its navigation window.
type ListPage struct {
	Items  []ListItem   `json:"items"`
	Window pager.Window `json:"window"`
}
