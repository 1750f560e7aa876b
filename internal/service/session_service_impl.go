package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/alexanderramin/dropdown/internal/repository"
	"github.com/alexanderramin/dropdown/internal/session"
)

type sessionService struct {
	users    repository.UserRepo
	profiles repository.ProfileRepo
	entities *repository.EntityTree
	store    *session.Store
	settings Settings
	observer UseCaseObserver
}

func NewSessionService(repos Repos, store *session.Store, settings Settings, observers ...UseCaseObserver) SessionService {
	return &sessionService{
		users:    repos.Users,
		profiles: repos.Profiles,
		entities: repos.Entities,
		store:    store,
		settings: settings,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Login opens a session for an active user. The caller has already
// authenticated the user; Login only gathers what listings need: the
// entities reachable through the user's profiles and the merged rights.
func (s *sessionService) Login(ctx context.Context, req contract.LoginRequest) (sess *session.Session, err error) {
	defer observe(ctx, s.observer, "login", time.Now(), map[string]any{"login": req.Login}, &err)

	user, err := s.users.GetByName(ctx, req.Login)
	if err != nil {
		return nil, err
	}
	if !user.IsActive || user.IsDeleted {
		return nil, fmt.Errorf("%w: user %s is disabled", domain.ErrForbidden, user.Name)
	}
	assignments, err := s.profiles.ListAssignments(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, fmt.Errorf("%w: user %s has no profile", domain.ErrForbidden, user.Name)
	}

	rights := domain.Rights{}
	profiles := map[int64]bool{}
	var entities []int64
	for _, a := range assignments {
		if !profiles[a.ProfileID] {
			p, err := s.profiles.GetByID(ctx, a.ProfileID)
			if err != nil {
				return nil, err
			}
			rights.Merge(p.Rights)
			profiles[a.ProfileID] = true
		}
		ids := []int64{a.EntityID}
		if a.IsRecursive {
			if ids, err = s.entities.Descendants(ctx, a.EntityID); err != nil {
				return nil, err
			}
		}
		for _, id := range ids {
			if !slices.Contains(entities, id) {
				entities = append(entities, id)
			}
		}
	}
	slices.Sort(entities)

	defaultEntity := entities[0]
	if slices.Contains(entities, user.EntityID) {
		defaultEntity = user.EntityID
	}

	prefs := session.Prefs{
		ShowIDs:      domain.ValueOr(s.settings.ShowIDs, req.ShowIDs),
		FlatTree:     domain.ValueOr(s.settings.FlatTree, req.FlatTree),
		NumberFormat: s.settings.NumberFormat,
		ListLimit:    s.settings.ListLimit,
	}
	return s.store.Open(&session.Session{
		UserID:         user.ID,
		Login:          user.Name,
		Language:       s.pickLanguage(req.Language, user.Language),
		ActiveEntities: entities,
		DefaultEntity:  defaultEntity,
		Rights:         rights,
		Prefs:          prefs,
	}), nil
}

// pickLanguage returns the first known language among the requested one
// and the user's, falling back to the configured default.
func (s *sessionService) pickLanguage(candidates ...string) string {
	for _, code := range candidates {
		for _, l := range s.settings.Languages {
			if code != "" && l.Code == code {
				return code
			}
		}
	}
	return s.settings.DefaultLanguage
}

func (s *sessionService) Get(id string) (*session.Session, error) {
	return s.store.Get(id)
}

func (s *sessionService) Logout(id string) {
	s.store.Close(id)
}
