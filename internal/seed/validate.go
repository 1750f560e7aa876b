package seed

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/dropdown/internal/domain"
)

var rightNames = map[string]domain.Right{
	"read":   domain.RightRead,
	"update": domain.RightUpdate,
	"create": domain.RightCreate,
	"delete": domain.RightDelete,
	"purge":  domain.RightPurge,
	"all":    domain.RightAll,
}

// ParseRight converts "read,update" or "all" into a bitmask.
func ParseRight(s string) (domain.Right, error) {
	var r domain.Right
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		bit, ok := rightNames[part]
		if !ok {
			return 0, fmt.Errorf("unknown right %q", part)
		}
		r |= bit
	}
	return r, nil
}

// Validate checks the data set for errors before it is applied. It
// returns every problem found.
func Validate(ds *Dataset) []error {
	var errs []error

	entityRefs := map[string]bool{"": true}
	errs = append(errs, validateEntities(ds.Entities, entityRefs)...)

	profiles := make(map[string]bool)
	errs = append(errs, validateProfiles(ds.Profiles, profiles)...)
	errs = append(errs, validateUsers(ds.Users, profiles, entityRefs)...)

	locationRefs := make(map[string]bool)
	errs = append(errs, validateDropdowns(ds.Dropdowns, entityRefs, locationRefs)...)
	errs = append(errs, validateAssets(ds.Assets, entityRefs, locationRefs)...)

	for i, n := range ds.Netpoints {
		prefix := fmt.Sprintf("netpoints[%d]", i)
		if strings.TrimSpace(n.Name) == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		errs = append(errs, checkRef(prefix+".entity", n.Entity, entityRefs)...)
		if n.Location != "" {
			errs = append(errs, checkRef(prefix+".location", n.Location, locationRefs)...)
		}
	}
	return errs
}

func validateEntities(entities []EntitySeed, refs map[string]bool) []error {
	var errs []error
	for i, e := range entities {
		prefix := fmt.Sprintf("entities[%d]", i)
		if strings.TrimSpace(e.Name) == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		if e.Parent != "" && !refs[e.Parent] {
			errs = append(errs, fmt.Errorf("%s.parent: ref %q not found (must appear earlier in entities list)", prefix, e.Parent))
		}
		switch {
		case e.Ref == "":
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		case refs[e.Ref]:
			errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, e.Ref))
		default:
			refs[e.Ref] = true
		}
	}
	return errs
}

func validateProfiles(profiles []ProfileSeed, names map[string]bool) []error {
	var errs []error
	for i, p := range profiles {
		prefix := fmt.Sprintf("profiles[%d]", i)
		switch {
		case p.Name == "":
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		case names[p.Name]:
			errs = append(errs, fmt.Errorf("%s.name: duplicate profile %q", prefix, p.Name))
		default:
			names[p.Name] = true
		}
		for module, rights := range p.Rights {
			if _, err := ParseRight(rights); err != nil {
				errs = append(errs, fmt.Errorf("%s.rights.%s: %w", prefix, module, err))
			}
		}
	}
	return errs
}

func validateUsers(users []UserSeed, profiles, entityRefs map[string]bool) []error {
	var errs []error
	logins := make(map[string]bool)
	for i, u := range users {
		prefix := fmt.Sprintf("users[%d]", i)
		switch {
		case u.Login == "":
			errs = append(errs, fmt.Errorf("%s.login is required", prefix))
		case logins[u.Login]:
			errs = append(errs, fmt.Errorf("%s.login: duplicate login %q", prefix, u.Login))
		default:
			logins[u.Login] = true
		}
		errs = append(errs, checkRef(prefix+".entity", u.Entity, entityRefs)...)
		for j, a := range u.Profiles {
			aprefix := fmt.Sprintf("%s.profiles[%d]", prefix, j)
			if !profiles[a.Profile] {
				errs = append(errs, fmt.Errorf("%s.profile: profile %q not found", aprefix, a.Profile))
			}
			errs = append(errs, checkRef(aprefix+".entity", a.Entity, entityRefs)...)
		}
	}
	return errs
}

func validateDropdowns(dropdowns []DropdownSeed, entityRefs, locationRefs map[string]bool) []error {
	var errs []error
	refs := make(map[string]bool)
	for i, d := range dropdowns {
		prefix := fmt.Sprintf("dropdowns[%d]", i)
		typ, ok := domain.LookupItemType(d.ItemType)
		if !ok {
			errs = append(errs, fmt.Errorf("%s.itemtype: unknown item type %q", prefix, d.ItemType))
		} else if !typ.Importable {
			errs = append(errs, fmt.Errorf("%s.itemtype: %s cannot be imported, list it under assets", prefix, d.ItemType))
		}
		if strings.TrimSpace(d.Name) == "" && strings.TrimSpace(d.CompleteName) == "" {
			errs = append(errs, fmt.Errorf("%s: name or completename is required", prefix))
		}
		if d.CompleteName != "" && ok && !typ.Tree {
			errs = append(errs, fmt.Errorf("%s.completename: %s is not a tree", prefix, d.ItemType))
		}
		errs = append(errs, checkRef(prefix+".entity", d.Entity, entityRefs)...)
		for lang, tr := range d.Translations {
			if tr.Comment != "" && ok && !typ.HasComment {
				errs = append(errs, fmt.Errorf("%s.translations.%s.comment: %s has no comment", prefix, lang, d.ItemType))
			}
		}
		if d.Ref != "" {
			if refs[d.Ref] {
				errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, d.Ref))
			}
			refs[d.Ref] = true
			if d.ItemType == "Location" {
				locationRefs[d.Ref] = true
			}
		}
	}
	return errs
}

func validateAssets(assets []AssetSeed, entityRefs, locationRefs map[string]bool) []error {
	var errs []error
	for i, a := range assets {
		prefix := fmt.Sprintf("assets[%d]", i)
		if _, ok := domain.LookupItemType(a.ItemType); !ok {
			errs = append(errs, fmt.Errorf("%s.itemtype: unknown item type %q", prefix, a.ItemType))
		}
		if strings.TrimSpace(a.Name) == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}
		errs = append(errs, checkRef(prefix+".entity", a.Entity, entityRefs)...)
		if a.Location != "" {
			errs = append(errs, checkRef(prefix+".location", a.Location, locationRefs)...)
		}
	}
	return errs
}

func checkRef(field, ref string, refs map[string]bool) []error {
	if refs[ref] {
		return nil
	}
	return []error{fmt.Errorf("%s: ref %q not found", field, ref)}
}
