package domain

import "strings"

// Right is a bitmask of permissions on a right module.
type Right int

const (
	RightRead   Right = 1
	RightUpdate Right = 2
	RightCreate Right = 4
	RightDelete Right = 8
	RightPurge  Right = 16

	RightAll = RightRead | RightUpdate | RightCreate | RightDelete | RightPurge
)

// Has reports whether every bit of want is set.
func (r Right) Has(want Right) bool {
	return r&want == want
}

// Rights maps a right module name to the granted bitmask.
type Rights map[string]Right

// Have reports whether the module grants want.
func (r Rights) Have(module string, want Right) bool {
	return r[module].Has(want)
}

// Merge ORs other into r.
func (r Rights) Merge(other Rights) {
	for k, v := range other {
		r[k] |= v
	}
}

// User is an account that can be picked in user dropdowns.
type User struct {
	ID        int64
	Name      string
	RealName  string
	FirstName string
	IsActive  bool
	IsDeleted bool
	EntityID  int64
	Language  string
}

// DisplayName renders "realname firstname", falling back to the login.
func (u User) DisplayName() string {
	return FormatUserName(u.Name, u.RealName, u.FirstName)
}

// FormatUserName renders a user label from its parts.
func FormatUserName(login, realname, firstname string) string {
	full := strings.TrimSpace(strings.TrimSpace(realname) + " " + strings.TrimSpace(firstname))
	if strings.TrimSpace(realname) == "" || full == "" {
		return login
	}
	return full
}

// Profile is a named set of rights.
type Profile struct {
	ID     int64
	Name   string
	Rights Rights
}

// ProfileAssignment grants a profile to a user on an entity.
type ProfileAssignment struct {
	UserID      int64
	ProfileID   int64
	EntityID    int64
	IsRecursive bool
}
