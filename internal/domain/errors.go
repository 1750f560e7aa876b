package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrUnknownItemType  = errors.New("unknown item type")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidToken     = errors.New("invalid idor token")
	ErrEmptyName        = errors.New("empty name")
	ErrNotImportable    = errors.New("item type cannot be imported")
	ErrInvalidCondition = errors.New("invalid condition")
	ErrInvalidRequest   = errors.New("invalid request")
)

// EmptyLabel is returned by name lookups that find nothing.
const EmptyLabel = "&nbsp;"

// EmptyChoiceLabel is the default label of the "no selection" entry.
const EmptyChoiceLabel = "-----"
