package service

import (
	"context"
	"sort"
	"time"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/alexanderramin/dropdown/internal/format"
	"github.com/alexanderramin/dropdown/internal/pager"
	"github.com/alexanderramin/dropdown/internal/repository"
	"github.com/alexanderramin/dropdown/internal/session"
)

// Languages lists the configured languages sorted by display name.
func (s *dropdownService) Languages(_ *session.Session, req contract.LanguagesRequest) []contract.LanguageOption {
	langs := make([]contract.LanguageOption, 0, len(s.settings.Languages)+1)
	if req.DisplayEmptyChoice {
		label := req.EmptyLabel
		if label == "" {
			label = domain.EmptyChoiceLabel
		}
		langs = append(langs, contract.LanguageOption{Name: label, Selected: req.Value == ""})
	}
	sorted := make([]contract.LanguageOption, 0, len(s.settings.Languages))
	for _, l := range s.settings.Languages {
		sorted = append(sorted, contract.LanguageOption{Code: l.Code, Name: l.Name, Selected: l.Code == req.Value})
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return append(langs, sorted...)
}

// ValueWithUnit formats req.Value with its unit in the number format of
// the session.
func (s *dropdownService) ValueWithUnit(sess *session.Session, req contract.UnitRequest) string {
	decimals := s.settings.Decimals
	if req.Decimals != nil {
		decimals = *req.Decimals
	}
	return format.ValueWithUnit(req.Value, req.Unit, decimals, numberFormat(sess))
}

// List pages through a table outside of a dropdown and returns the pager
// window alongside the rows.
func (s *dropdownService) List(ctx context.Context, sess *session.Session, req contract.ListRequest) (res *contract.ListPage, err error) {
	fields := map[string]any{"itemtype": req.ItemType, "start": req.Start}
	defer observe(ctx, s.observer, "list", time.Now(), fields, &err)

	if err := requireSession(sess); err != nil {
		return nil, err
	}
	typ, err := lookupType(req.ItemType)
	if err != nil {
		return nil, err
	}
	if err := requireRight(sess, typ, domain.RightRead); err != nil {
		return nil, err
	}

	limit := req.Limit
	if !pager.ValidLimit(limit) {
		limit = sess.Prefs.ListLimit
	}
	if limit <= 0 {
		limit = s.settings.ListLimit
	}
	scope, err := s.entities.Scope(ctx, restrictEntities(sess, req.EntityRestrict))
	if err != nil {
		return nil, err
	}
	q := repository.ItemQuery{
		Type:     typ,
		Scope:    scope,
		Search:   req.SearchText,
		Language: s.language(sess),
	}
	total, err := s.items.Count(ctx, q)
	if err != nil {
		return nil, err
	}
	q.Offset = max(req.Start, 0)
	q.Limit = limit
	items, err := s.items.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	out := make([]contract.ListItem, 0, len(items))
	for _, it := range items {
		li := contract.ListItem{
			ID:       it.ID,
			Name:     it.Name,
			Comment:  it.Comment,
			Complete: it.CompleteName,
		}
		if typ.EntityAssign {
			if li.Entity, err = s.entities.CompleteName(ctx, it.EntityID); err != nil {
				return nil, err
			}
		}
		out = append(out, li)
	}
	fields["total"] = total
	return &contract.ListPage{Items: out, Window: pager.Compute(req.Start, total, limit)}, nil
}
