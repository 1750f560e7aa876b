package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/repository"
	"github.com/alexanderramin/dropdown/internal/session"
)

// Netpoint lists network outlets with the completename of their location.
func (s *dropdownService) Netpoint(ctx context.Context, sess *session.Session, req contract.NetpointRequest) (res *contract.Results, err error) {
	defer observe(ctx, s.observer, "dropdown-netpoint", time.Now(), map[string]any{"devtype": req.DevType}, &err)

	if err := requireSession(sess); err != nil {
		return nil, err
	}
	page, limit, start := s.pageBounds(req.Page, req.PageLimit)
	scope, err := s.entities.Scope(ctx, restrictEntities(sess, req.EntityRestrict))
	if err != nil {
		return nil, err
	}
	byLocation := req.LocationID != nil && *req.LocationID > 0
	q := repository.NetpointQuery{
		Scope:   scope,
		DevType: req.DevType,
		DevID:   req.DevID,
		Search:  req.SearchText,
		Offset:  start,
		Limit:   limit,
	}
	if byLocation {
		q.LocationID = req.LocationID
	}
	netpoints, err := s.netpoints.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	results := make([]contract.Option, 0, len(netpoints)+1)
	if page == 1 && !isSearching(req.SearchText) {
		results = append(results, emptyChoice(""))
	}
	for _, n := range netpoints {
		label := withID(sess, n.Name, n.ID)
		if !byLocation && n.LocationCompleteName != "" {
			label = fmt.Sprintf("%s (%s)", label, n.LocationCompleteName)
		}
		title := joinLabel(n.Name, n.LocationCompleteName)
		title = joinLabel(title, n.Comment)
		results = append(results, contract.Option{ID: n.ID, Text: label, Title: title})
	}
	return &contract.Results{Results: results, Count: len(netpoints)}, nil
}
