package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/db"
	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/alexanderramin/dropdown/internal/repository"
	"github.com/alexanderramin/dropdown/internal/session"
)

type importService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewImportService(uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// Import returns the ID of the row named req.Name, creating it when no
// twin exists under the same parent and entity. Tree types may pass a
// completename instead; every missing level is created in one transaction.
func (s *importService) Import(ctx context.Context, sess *session.Session, req contract.ImportRequest) (id int64, err error) {
	fields := map[string]any{"itemtype": req.ItemType}
	defer observe(ctx, s.observer, "dropdown-import", time.Now(), fields, &err)

	typ, err := lookupType(req.ItemType)
	if err != nil {
		return 0, err
	}
	if !typ.Importable {
		return 0, fmt.Errorf("%w: %s", domain.ErrNotImportable, typ.Name)
	}
	if sess != nil {
		if err := requireRight(sess, typ, domain.RightCreate); err != nil {
			return 0, err
		}
	}

	var path []string
	if typ.Tree && strings.TrimSpace(req.CompleteName) != "" {
		path = domain.SplitCompleteName(req.CompleteName)
	} else if name := strings.TrimSpace(req.Name); name != "" {
		path = []string{name}
	}
	if len(path) == 0 {
		return 0, domain.ErrEmptyName
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		items := repository.NewSQLItemRepo(tx, s.uow.Dialect())
		parent := int64(0)
		if typ.Tree {
			parent = req.ParentID
		}
		for i, name := range path {
			twin, err := items.FindTwin(ctx, typ, name, parent, req.EntityID)
			if err == nil {
				parent = twin
				continue
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			item := &domain.Item{Name: name, EntityID: req.EntityID, ParentID: parent}
			if i == len(path)-1 {
				item.Comment = req.Comment
			}
			if err := items.Create(ctx, typ, item); err != nil {
				return err
			}
			parent = item.ID
		}
		id = parent
		return nil
	})
	if err != nil {
		return 0, err
	}
	fields["id"] = id
	return id, nil
}

// Translate stores a translated field of a row. Translating the name of a
// tree row refreshes the translated completenames of its whole subtree.
func (s *importService) Translate(ctx context.Context, sess *session.Session, req contract.TranslateRequest) (err error) {
	fields := map[string]any{"itemtype": req.ItemType, "id": req.ID, "language": req.Language}
	defer observe(ctx, s.observer, "dropdown-translate", time.Now(), fields, &err)

	typ, err := lookupType(req.ItemType)
	if err != nil {
		return err
	}
	if req.Field != "name" && req.Field != "comment" {
		return fmt.Errorf("%w: field %q cannot be translated", domain.ErrInvalidRequest, req.Field)
	}
	if req.Field == "comment" && !typ.HasComment {
		return fmt.Errorf("%w: %s has no comment", domain.ErrInvalidRequest, typ.Name)
	}
	if strings.TrimSpace(req.Language) == "" {
		return fmt.Errorf("%w: missing language", domain.ErrInvalidRequest)
	}
	if sess != nil {
		if err := requireRight(sess, typ, domain.RightUpdate); err != nil {
			return err
		}
	}

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		items := repository.NewSQLItemRepo(tx, s.uow.Dialect())
		translations := repository.NewSQLTranslationRepo(tx, s.uow.Dialect())
		if _, err := items.GetByID(ctx, typ, req.ID, ""); err != nil {
			return err
		}
		err := translations.Upsert(ctx, domain.Translation{
			ItemType: typ.Name,
			ItemID:   req.ID,
			Language: req.Language,
			Field:    req.Field,
			Value:    req.Value,
		})
		if err != nil {
			return err
		}
		if typ.Tree && req.Field == "name" {
			return refreshCompleteNames(ctx, items, translations, typ, req.ID, req.Language)
		}
		return nil
	})
}

// refreshCompleteNames rebuilds the translated completename of id and its
// descendants from the translated names of their ancestors.
func refreshCompleteNames(
	ctx context.Context,
	items repository.ItemRepo,
	translations repository.TranslationRepo,
	typ domain.ItemType,
	id int64,
	language string,
) error {
	ids, err := items.Descendants(ctx, typ, id)
	if err != nil {
		return err
	}
	for _, sub := range ids {
		var parts []string
		cur := sub
		for {
			it, err := items.GetByID(ctx, typ, cur, language)
			if err != nil {
				return fmt.Errorf("resolving path of %s %d: %w", typ.Name, sub, err)
			}
			parts = append([]string{it.Name}, parts...)
			if it.Level <= 1 || it.ParentID == it.ID {
				break
			}
			cur = it.ParentID
		}
		err := translations.Upsert(ctx, domain.Translation{
			ItemType: typ.Name,
			ItemID:   sub,
			Language: language,
			Field:    "completename",
			Value:    domain.JoinCompleteName(parts...),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
