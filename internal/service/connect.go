package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/alexanderramin/dropdown/internal/repository"
	"github.com/alexanderramin/dropdown/internal/session"
)

// Connect lists the devices of req.ItemType that can still be attached to
// an item of req.FromType: global devices and devices not connected yet.
func (s *dropdownService) Connect(ctx context.Context, sess *session.Session, req contract.ConnectRequest) (res *contract.ConnectResults, err error) {
	fields := map[string]any{"fromtype": req.FromType, "itemtype": req.ItemType}
	defer observe(ctx, s.observer, "dropdown-connect", time.Now(), fields, &err)

	if err := requireSession(sess); err != nil {
		return nil, err
	}
	from, err := lookupType(req.FromType)
	if err != nil {
		return nil, err
	}
	typ, err := lookupType(req.ItemType)
	if err != nil {
		return nil, err
	}
	if !typ.Connectable {
		return nil, fmt.Errorf("%w: %s cannot be connected", domain.ErrInvalidRequest, typ.Name)
	}
	if err := sess.ValidateIDORToken(req.IDORToken, req.ItemType, req.EntityRestrict.String()); err != nil {
		return nil, err
	}
	if err := requireRight(sess, from, domain.RightUpdate); err != nil {
		return nil, err
	}

	page, limit, start := s.pageBounds(req.Page, req.PageLimit)
	entities := restrictEntities(sess, req.EntityRestrict)
	scope, err := s.entities.Scope(ctx, entities)
	if err != nil {
		return nil, err
	}
	multi := typ.MayBeRecursive || len(entities) > 1

	candidates, err := s.connect.Candidates(ctx, repository.ConnectQuery{
		Type:       typ,
		Scope:      scope,
		ExcludeIDs: req.Used[typ.Name],
		OnlyGlobal: bool(req.OnlyGlobal),
		Search:     req.SearchText,
		Offset:     start,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}

	results := make([]contract.Option, 0, len(candidates)+1)
	if page == 1 && !isSearching(req.SearchText) {
		results = append(results, emptyChoice(""))
	}
	g := newEntityGrouper(s.entities, multi)
	for _, c := range candidates {
		if _, err := g.enter(ctx, c.EntityID); err != nil {
			return nil, err
		}
		label := withID(sess, c.Name, c.ID)
		label = joinLabel(label, c.Serial)
		label = joinLabel(label, c.OtherSerial)
		g.add(contract.Option{ID: c.ID, Text: label})
	}
	opts, err := g.options(ctx)
	if err != nil {
		return nil, err
	}
	fields["count"] = len(candidates)
	return &contract.ConnectResults{Results: append(results, opts...)}, nil
}
