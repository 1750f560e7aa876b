// Package pager computes the navigation window of paginated lists.
package pager

// MaxLimit is the "show everything" page size offered next to the stepped choices.
const MaxLimit = 9999999

// Window describes the page starting at Start out of Total rows.
type Window struct {
	Start int `json:"start"`
	Total int `json:"total"`
	Limit int `json:"limit"`

	// Back is the offset of the previous page when HasPrevious is set.
	Back        int  `json:"back"`
	HasPrevious bool `json:"has_previous"`

	// Forward and End are offsets of the next and last pages; they are only
	// meaningful when HasNext is set.
	Forward int  `json:"forward"`
	End     int  `json:"end"`
	HasNext bool `json:"has_next"`

	// CurrentStart and CurrentEnd are the 1-based bounds shown to the user.
	CurrentStart int `json:"current_start"`
	CurrentEnd   int `json:"current_end"`
}

// Compute returns the window for a list of total rows read limit at a time.
func Compute(start, total, limit int) Window {
	if limit <= 0 {
		limit = 1
	}
	if start < 0 {
		start = 0
	}

	w := Window{
		Start:        start,
		Total:        total,
		Limit:        limit,
		Forward:      start + limit,
		End:          total - limit,
		CurrentStart: start + 1,
	}
	if w.End < 0 {
		w.End = 0
	}

	w.CurrentEnd = w.CurrentStart + limit - 1
	if w.CurrentEnd > total {
		w.CurrentEnd = total
	}

	if w.CurrentStart-limit > 0 {
		w.Back = start - limit
	}

	w.HasPrevious = start != 0
	w.HasNext = w.Forward < total
	return w
}

// LimitChoices returns the page sizes a user may pick from.
func LimitChoices() []int {
	choices := make([]int, 0, 41)
	for i := 5; i <= 200; i += 5 {
		choices = append(choices, i)
	}
	return append(choices, MaxLimit)
}

// ValidLimit reports whether limit is one of LimitChoices.
func ValidLimit(limit int) bool {
	if limit == MaxLimit {
		return true
	}
	return limit >= 5 && limit <= 200 && limit%5 == 0
}
