// Package session holds the per-user state dropdown queries read: active
// entities, rights, display preferences, stored conditions and the IDOR
// tokens that authorise listings.
package session

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/alexanderramin/dropdown/internal/format"
	"github.com/google/uuid"
)

// Prefs are the display preferences of a session.
type Prefs struct {
	ShowIDs      bool
	FlatTree     bool
	NumberFormat format.NumberFormat
	ListLimit    int
}

// Session is the state of one logged-in user. Identity fields are set once
// at login; conditions and tokens are guarded by mu.
type Session struct {
	ID             string
	UserID         int64
	Login          string
	Language       string
	ActiveEntities []int64
	DefaultEntity  int64
	Rights         domain.Rights
	Prefs          Prefs

	tokenTTL time.Duration
	now      func() time.Time

	mu         sync.Mutex
	conditions map[string][]domain.Filter
	tokens     map[string]idorToken
}

type idorToken struct {
	itemtype       string
	entityRestrict string
	expires        time.Time
}

// HaveRight reports whether the session grants want on module.
func (s *Session) HaveRight(module string, want domain.Right) bool {
	return s.Rights.Have(module, want)
}

// MultiEntities reports whether more than one entity is active.
func (s *Session) MultiEntities() bool {
	return len(s.ActiveEntities) > 1
}

// IsActiveEntity reports whether id is one of the active entities.
func (s *Session) IsActiveEntity(id int64) bool {
	return slices.Contains(s.ActiveEntities, id)
}

func (s *Session) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// NewIDORToken issues a token allowing listings of itemtype. When
// entityRestrict is not empty the token only validates for that exact
// restriction.
func (s *Session) NewIDORToken(itemtype, entityRestrict string) string {
	ttl := s.tokenTTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		s.tokens = make(map[string]idorToken)
	}
	now := s.clock()
	for k, tok := range s.tokens {
		if now.After(tok.expires) {
			delete(s.tokens, k)
		}
	}
	s.tokens[token] = idorToken{
		itemtype:       itemtype,
		entityRestrict: entityRestrict,
		expires:        now.Add(ttl),
	}
	return token
}

// ValidateIDORToken checks that token was issued for itemtype and, when it
// carries one, for entityRestrict. Tokens stay valid until they expire.
func (s *Session) ValidateIDORToken(token, itemtype, entityRestrict string) error {
	if token == "" {
		return fmt.Errorf("%w: missing token", domain.ErrInvalidToken)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.tokens[token]
	if !ok {
		return fmt.Errorf("%w: unknown token", domain.ErrInvalidToken)
	}
	if s.clock().After(tok.expires) {
		delete(s.tokens, token)
		return fmt.Errorf("%w: token expired", domain.ErrInvalidToken)
	}
	if tok.itemtype != itemtype {
		return fmt.Errorf("%w: token issued for %s, not %s", domain.ErrInvalidToken, tok.itemtype, itemtype)
	}
	if tok.entityRestrict != "" && tok.entityRestrict != entityRestrict {
		return fmt.Errorf("%w: entity restriction mismatch", domain.ErrInvalidToken)
	}
	return nil
}

// StoreCondition saves filters and returns the key that designates them in
// later requests. Identical filters always get the same key.
func (s *Session) StoreCondition(filters []domain.Filter) (string, error) {
	raw, err := json.Marshal(filters)
	if err != nil {
		return "", fmt.Errorf("encoding condition: %w", err)
	}
	sum := sha1.Sum(raw)
	key := hex.EncodeToString(sum[:])

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conditions == nil {
		s.conditions = make(map[string][]domain.Filter)
	}
	s.conditions[key] = slices.Clone(filters)
	return key, nil
}

// Condition returns the filters stored under key.
func (s *Session) Condition(key string) ([]domain.Filter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	filters, ok := s.conditions[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(filters), true
}
