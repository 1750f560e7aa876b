package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/alexanderramin/dropdown/internal/session"
)

// Name resolves the label of one row. Unknown tables and rows yield the
// &nbsp; placeholder rather than an error.
func (s *dropdownService) Name(ctx context.Context, sess *session.Session, req contract.NameRequest) (res *contract.NameResult, err error) {
	defer observe(ctx, s.observer, "dropdown-name", time.Now(), map[string]any{"table": req.Table, "id": req.ID}, &err)

	out, err := s.name(ctx, sess, req.Table, req.ID, bool(req.Translate), bool(req.Tooltip))
	if err != nil {
		return nil, err
	}
	if !req.WithComment {
		out.Comment = ""
	}
	return &out, nil
}

func (s *dropdownService) name(ctx context.Context, sess *session.Session, table string, id int64, translate, tooltip bool) (contract.NameResult, error) {
	empty := contract.NameResult{Name: domain.EmptyLabel}
	typ, ok := domain.LookupTable(table)
	if !ok || id < 0 || (id == 0 && table != "glpi_entities") {
		return empty, nil
	}
	language := ""
	if translate {
		language = s.language(sess)
	}

	var (
		out contract.NameResult
		err error
	)
	switch table {
	case "glpi_contacts":
		out, err = s.contactName(ctx, id, tooltip)
	case "glpi_suppliers":
		out, err = s.supplierName(ctx, id, tooltip)
	case "glpi_budgets":
		out, err = s.budgetName(ctx, sess, id, translate, tooltip)
	case "glpi_netpoints":
		out, err = s.netpointName(ctx, sess, id, translate)
	default:
		out, err = s.itemName(ctx, typ, id, language, tooltip)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return empty, nil
	}
	if err != nil {
		return contract.NameResult{}, err
	}
	if out.Name == "" {
		out.Name = domain.EmptyLabel
	}
	return out, nil
}

func (s *dropdownService) itemName(ctx context.Context, typ domain.ItemType, id int64, language string, tooltip bool) (contract.NameResult, error) {
	it, err := s.items.GetByID(ctx, typ, id, language)
	if err != nil {
		return contract.NameResult{}, err
	}
	out := contract.NameResult{Name: it.Name, Comment: it.Comment}
	if typ.Tree {
		out.Name = it.CompleteName
		if tooltip {
			out.Comment = fmt.Sprintf("Complete name: %s\nComments: %s", it.CompleteName, it.Comment)
		}
	}
	if typ.Name == "Computer" && out.Name == "" {
		out.Name = fmt.Sprintf("(%d)", id)
	}
	return out, nil
}

func (s *dropdownService) contactName(ctx context.Context, id int64, tooltip bool) (contract.NameResult, error) {
	c, err := s.lookups.Contact(ctx, id)
	if err != nil {
		return contract.NameResult{}, err
	}
	out := contract.NameResult{Name: c.DisplayName(), Comment: c.Comment}
	if tooltip {
		out.Comment = tooltipLines(c.Comment,
			"Phone", c.Phone,
			"Phone 2", c.Phone2,
			"Mobile phone", c.Mobile,
			"Fax", c.Fax,
			"Email", c.Email,
		)
	}
	return out, nil
}

func (s *dropdownService) supplierName(ctx context.Context, id int64, tooltip bool) (contract.NameResult, error) {
	sup, err := s.lookups.Supplier(ctx, id)
	if err != nil {
		return contract.NameResult{}, err
	}
	out := contract.NameResult{Name: sup.Name, Comment: sup.Comment}
	if tooltip {
		out.Comment = tooltipLines(sup.Comment,
			"Phone", sup.Phone,
			"Fax", sup.Fax,
			"Email", sup.Email,
		)
	}
	return out, nil
}

func (s *dropdownService) budgetName(ctx context.Context, sess *session.Session, id int64, translate, tooltip bool) (contract.NameResult, error) {
	b, err := s.lookups.Budget(ctx, id)
	if err != nil {
		return contract.NameResult{}, err
	}
	out := contract.NameResult{Name: b.Name, Comment: b.Comment}
	if !tooltip {
		return out, nil
	}
	location, err := s.refName(ctx, sess, "glpi_locations", b.LocationID, translate)
	if err != nil {
		return contract.NameResult{}, err
	}
	budgetType, err := s.refName(ctx, sess, "glpi_budgettypes", b.BudgetTypeID, translate)
	if err != nil {
		return contract.NameResult{}, err
	}
	out.Comment = tooltipLines(b.Comment,
		"Location", location,
		"Type", budgetType,
		"Start date", b.BeginDate,
		"End date", b.EndDate,
	)
	return out, nil
}

func (s *dropdownService) netpointName(ctx context.Context, sess *session.Session, id int64, translate bool) (contract.NameResult, error) {
	n, err := s.netpoints.GetByID(ctx, id)
	if err != nil {
		return contract.NameResult{}, err
	}
	location, err := s.refName(ctx, sess, "glpi_locations", n.LocationID, translate)
	if err != nil {
		return contract.NameResult{}, err
	}
	name := n.Name
	if location != "" {
		name = fmt.Sprintf("%s (%s)", name, location)
	}
	return contract.NameResult{Name: name, Comment: n.Comment}, nil
}

// refName returns the label of a referenced row, or "" when there is none.
func (s *dropdownService) refName(ctx context.Context, sess *session.Session, table string, id int64, translate bool) (string, error) {
	if id <= 0 {
		return "", nil
	}
	res, err := s.name(ctx, sess, table, id, translate, false)
	if err != nil {
		return "", err
	}
	if res.Name == domain.EmptyLabel {
		return "", nil
	}
	return res.Name, nil
}

// tooltipLines renders comment followed by a "Label: value" line for every
// non-empty value. pairs alternates labels and values.
func tooltipLines(comment string, pairs ...string) string {
	var lines []string
	if comment != "" {
		lines = append(lines, comment)
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			lines = append(lines, pairs[i]+": "+pairs[i+1])
		}
	}
	return strings.Join(lines, "\n")
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
