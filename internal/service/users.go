package service

import (
	"context"
	"time"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/alexanderramin/dropdown/internal/repository"
	"github.com/alexanderramin/dropdown/internal/session"
)

// UserItemType is the item type IDOR tokens for user listings are issued for.
const UserItemType = "User"

// Users lists the active users holding a profile in the restricted
// entities, ordered by real name, first name and login.
func (s *dropdownService) Users(ctx context.Context, sess *session.Session, req contract.UsersRequest) (res *contract.Results, err error) {
	fields := map[string]any{"right": req.Right}
	defer observe(ctx, s.observer, "dropdown-users", time.Now(), fields, &err)

	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if err := sess.ValidateIDORToken(req.IDORToken, UserItemType, req.EntityRestrict.String()); err != nil {
		return nil, err
	}

	page, limit, start := s.pageBounds(req.Page, req.PageLimit)
	scope, err := s.entities.Scope(ctx, restrictEntities(sess, req.EntityRestrict))
	if err != nil {
		return nil, err
	}
	q := repository.UserQuery{
		Scope:      scope,
		ExcludeIDs: req.Used,
		Search:     req.SearchText,
		Offset:     start,
		Limit:      limit,
	}
	switch req.Right {
	case "", contract.RightAll:
	case contract.RightCurrent:
		q.OnlyIDs = []int64{sess.UserID}
	default:
		q.Right = req.Right
		q.Want = domain.RightRead
	}

	users, err := s.users.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	results := make([]contract.Option, 0, len(users)+1)
	if page == 1 && !isSearching(req.SearchText) {
		if req.All {
			results = append(results, contract.Option{ID: int64(0), Text: "All"})
		} else {
			results = append(results, emptyChoice(""))
		}
	}
	for _, u := range users {
		label := withID(sess, u.DisplayName(), u.ID)
		results = append(results, contract.Option{
			ID:    u.ID,
			Text:  label,
			Title: joinLabel(label, u.Name),
		})
	}
	fields["count"] = len(users)
	return &contract.Results{Results: results, Count: len(users)}, nil
}
