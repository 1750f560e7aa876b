package session

import (
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/dropdown/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestSession(t *testing.T) (*Session, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := NewStore(time.Hour, WithClock(clock.Now))
	sess := store.Open(&Session{
		UserID:         7,
		Login:          "tech",
		ActiveEntities: []int64{0, 1, 2},
		Rights:         domain.Rights{"computer": domain.RightRead | domain.RightUpdate},
	})
	return sess, clock
}

func TestSession_IDORToken(t *testing.T) {
	sess, _ := newTestSession(t)

	tok := sess.NewIDORToken("Computer", "")
	require.NotEmpty(t, tok)
	require.NoError(t, sess.ValidateIDORToken(tok, "Computer", ""))
	require.NoError(t, sess.ValidateIDORToken(tok, "Computer", "[3]"), "unrestricted token accepts any restriction")
	require.NoError(t, sess.ValidateIDORToken(tok, "Computer", ""), "tokens are reusable")

	assert.ErrorIs(t, sess.ValidateIDORToken(tok, "Printer", ""), domain.ErrInvalidToken)
	assert.ErrorIs(t, sess.ValidateIDORToken("", "Computer", ""), domain.ErrInvalidToken)
	assert.ErrorIs(t, sess.ValidateIDORToken("forged", "Computer", ""), domain.ErrInvalidToken)
}

func TestSession_IDORTokenEntityRestrict(t *testing.T) {
	sess, _ := newTestSession(t)

	tok := sess.NewIDORToken("Computer", "[3]")
	require.NoError(t, sess.ValidateIDORToken(tok, "Computer", "[3]"))
	assert.ErrorIs(t, sess.ValidateIDORToken(tok, "Computer", "[4]"), domain.ErrInvalidToken)
	assert.ErrorIs(t, sess.ValidateIDORToken(tok, "Computer", ""), domain.ErrInvalidToken)
}

func TestSession_IDORTokenExpiry(t *testing.T) {
	sess, clock := newTestSession(t)

	tok := sess.NewIDORToken("Location", "")
	clock.Advance(59 * time.Minute)
	require.NoError(t, sess.ValidateIDORToken(tok, "Location", ""))

	clock.Advance(2 * time.Minute)
	assert.ErrorIs(t, sess.ValidateIDORToken(tok, "Location", ""), domain.ErrInvalidToken)
}

func TestSession_Conditions(t *testing.T) {
	sess, _ := newTestSession(t)
	filters := []domain.Filter{{Field: "name", Operator: domain.OpLike, Value: "%3%"}}

	key, err := sess.StoreCondition(filters)
	require.NoError(t, err)
	again, err := sess.StoreCondition(filters)
	require.NoError(t, err)
	assert.Equal(t, key, again, "same filters, same key")
	assert.Len(t, key, 40)

	got, ok := sess.Condition(key)
	require.True(t, ok)
	assert.Equal(t, filters, got)

	_, ok = sess.Condition("nope")
	assert.False(t, ok)
}

func TestSession_Rights(t *testing.T) {
	sess, _ := newTestSession(t)
	assert.True(t, sess.HaveRight("computer", domain.RightRead))
	assert.True(t, sess.HaveRight("computer", domain.RightUpdate))
	assert.False(t, sess.HaveRight("computer", domain.RightDelete))
	assert.False(t, sess.HaveRight("printer", domain.RightRead))
	assert.True(t, sess.MultiEntities())
	assert.True(t, sess.IsActiveEntity(2))
	assert.False(t, sess.IsActiveEntity(9))
}

func TestStore(t *testing.T) {
	store := NewStore(time.Hour)
	a := store.Open(&Session{Login: "a"})
	b := store.Open(&Session{Login: "b"})
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, store.Len())

	got, err := store.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	store.Close(a.ID)
	_, err = store.Get(a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	store.Close(a.ID)
	assert.Equal(t, 1, store.Len())
}

func TestStore_ConcurrentTokens(t *testing.T) {
	store := NewStore(time.Hour)
	sess := store.Open(&Session{Login: "glpi"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tok := sess.NewIDORToken("Location", "")
				if err := sess.ValidateIDORToken(tok, "Location", ""); err != nil {
					t.Errorf("validate: %v", err)
					return
				}
				if _, err := store.Get(sess.ID); err != nil {
					t.Errorf("get: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
