package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/alexanderramin/dropdown/internal/repository"
	"github.com/alexanderramin/dropdown/internal/session"
)

// Value lists the rows of a dropdown table for a search-as-you-type widget.
//
// Tree types are listed in completename order with their level. Ancestors
// of a listed row that are not part of the page are inserted before it as
// disabled entries, or selectable ones when PermitSelectParent is set.
// When the type is entity-assigned and several entities are visible, rows
// are grouped under the completename of their entity.
func (s *dropdownService) Value(ctx context.Context, sess *session.Session, req contract.ValueRequest) (res *contract.Results, err error) {
	fields := map[string]any{"itemtype": req.ItemType, "page": req.Page}
	defer observe(ctx, s.observer, "dropdown-value", time.Now(), fields, &err)

	if err := requireSession(sess); err != nil {
		return nil, err
	}
	typ, err := lookupType(req.ItemType)
	if err != nil {
		return nil, err
	}
	if err := sess.ValidateIDORToken(req.IDORToken, req.ItemType, req.EntityRestrict.String()); err != nil {
		return nil, err
	}
	if err := requireRight(sess, typ, domain.RightRead); err != nil {
		return nil, err
	}

	page, limit, start := s.pageBounds(req.Page, req.PageLimit)
	entities := restrictEntities(sess, req.EntityRestrict)
	scope, err := s.entities.Scope(ctx, entities)
	if err != nil {
		return nil, err
	}

	multi := typ.EntityAssign && (typ.MayBeRecursive || len(entities) > 1)
	if typ.Table == "glpi_entities" || req.OneID != nil {
		multi = false
	}

	q := repository.ItemQuery{
		Type:          typ,
		Scope:         scope,
		ExcludeIDs:    req.Used,
		Filters:       condition(sess, req.Condition),
		Search:        req.SearchText,
		SearchID:      showIDs(sess),
		Language:      s.language(sess),
		GroupByEntity: multi,
		Offset:        start,
		Limit:         limit,
	}
	if req.ParentID != nil && typ.Tree {
		ids, err := s.items.Descendants(ctx, typ, *req.ParentID)
		if err != nil {
			return nil, err
		}
		q.OnlyIDs = make([]int64, 0, len(ids))
		for _, id := range ids {
			if id != *req.ParentID {
				q.OnlyIDs = append(q.OnlyIDs, id)
			}
		}
	}
	if req.OneID != nil {
		q.OnlyIDs = []int64{*req.OneID}
	}

	// Later pages of a tree start one row early so the ancestors of the
	// first row can be resolved against the previous page.
	continuing := typ.Tree && page > 1
	if continuing {
		q.Offset--
		q.Limit++
	}

	var columns []string
	if !typ.Tree {
		for _, col := range req.DisplayWith {
			if typ.HasColumn(col) {
				columns = append(columns, col)
			}
		}
		q.Columns = columns
		q.SearchFields = columns
	}

	items, err := s.items.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	results := make([]contract.Option, 0, len(items)+2)
	if page == 1 {
		if bool(req.DisplayEmptyChoice) && !isSearching(req.SearchText) {
			results = append(results, emptyChoice(req.EmptyLabel))
		}
		results = append(results, extraOptions(req.ToAdd)...)
	}

	g := newEntityGrouper(s.entities, multi)
	var count int
	if typ.Tree {
		count, err = s.treeOptions(ctx, sess, g, typ, items, req, continuing)
	} else {
		count, err = s.flatOptions(ctx, sess, g, items, typ, columns)
	}
	if err != nil {
		return nil, err
	}
	opts, err := g.options(ctx)
	if err != nil {
		return nil, err
	}
	fields["count"] = count
	return &contract.Results{Results: append(results, opts...), Count: count}, nil
}

func (s *dropdownService) treeOptions(
	ctx context.Context,
	sess *session.Session,
	g *entityGrouper,
	typ domain.ItemType,
	items []*domain.Item,
	req contract.ValueRequest,
	continuing bool,
) (int, error) {
	language := s.language(sess)
	flat := sess.Prefs.FlatTree
	lastLevel := map[int]int64{}
	skip := continuing
	count := 0

	for _, it := range items {
		entered, err := g.enter(ctx, it.EntityID)
		if err != nil {
			return 0, err
		}
		if entered {
			lastLevel = map[int]int64{}
			if skip {
				g.continueFrom()
			}
		}

		level := it.Level
		label := it.Name
		if flat {
			label = it.CompleteName
			level = 0
		} else {
			if level > 1 && req.OneID == nil {
				if shown, ok := lastLevel[level-1]; !ok || shown != it.ParentID {
					parents, err := s.ancestorOptions(ctx, typ, it, lastLevel, language, skip, bool(req.PermitSelectParent))
					if err != nil {
						return 0, err
					}
					g.add(parents...)
				}
			}
			lastLevel[level] = it.ID
		}

		if !skip {
			g.add(contract.Option{
				ID:            it.ID,
				Text:          withID(sess, label, it.ID),
				Level:         contract.Lvl(level),
				Title:         joinLabel(it.CompleteName, it.Comment),
				SelectionText: it.CompleteName,
			})
			count++
		}
		skip = false
	}
	return count, nil
}

// ancestorOptions walks up from it until it meets an ancestor already
// listed, returning the missing ones root first. lastLevel is updated even
// when hidden is set.
func (s *dropdownService) ancestorOptions(
	ctx context.Context,
	typ domain.ItemType,
	it *domain.Item,
	lastLevel map[int]int64,
	language string,
	hidden, selectable bool,
) ([]contract.Option, error) {
	var chain []contract.Option
	level := it.Level - 1
	parentID := it.ParentID
	for level >= 1 {
		parent, err := s.items.GetByID(ctx, typ, parentID, language)
		if errors.Is(err, domain.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		if !hidden {
			opt := contract.Option{
				ID:       parent.ID,
				Text:     parent.Name,
				Level:    contract.Lvl(level),
				Disabled: true,
			}
			if selectable {
				opt.Title = joinLabel(parent.CompleteName, parent.Comment)
				opt.SelectionText = parent.CompleteName
				opt.Disabled = false
			}
			chain = append([]contract.Option{opt}, chain...)
		}
		lastLevel[level] = parent.ID
		level--
		parentID = parent.ParentID
		if shown, ok := lastLevel[level]; ok && shown == parentID {
			break
		}
	}
	return chain, nil
}

func (s *dropdownService) flatOptions(
	ctx context.Context,
	sess *session.Session,
	g *entityGrouper,
	items []*domain.Item,
	typ domain.ItemType,
	columns []string,
) (int, error) {
	count := 0
	for _, it := range items {
		if _, err := g.enter(ctx, it.EntityID); err != nil {
			return 0, err
		}
		label := it.Name
		if typ.ProductNumber {
			label = joinLabel(label, it.ProductNumber)
		}
		for _, col := range columns {
			value, err := s.displayWith(ctx, sess, col, it.Extra[col])
			if err != nil {
				return 0, err
			}
			label = joinLabel(label, value)
		}
		g.add(contract.Option{
			ID:    it.ID,
			Text:  withID(sess, label, it.ID),
			Title: joinLabel(label, it.Comment),
		})
		count++
	}
	return count, nil
}

// displayWith renders an extra column, resolving foreign keys to the label
// of the referenced row.
func (s *dropdownService) displayWith(ctx context.Context, sess *session.Session, col, value string) (string, error) {
	ref, ok := domain.LookupForeignKey(col)
	if !ok {
		return value, nil
	}
	id, ok := parseID(value)
	if !ok {
		return "", nil
	}
	return s.refName(ctx, sess, ref.Table, id, true)
}
