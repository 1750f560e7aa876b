package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/alexanderramin/dropdown/internal/domain"
)

// EntityTree caches the entity hierarchy. It loads lazily on first use and
// reloads after Invalidate, or once the snapshot is older than TTL. A zero
// TTL keeps the snapshot until Invalidate.
type EntityTree struct {
	repo EntityRepo
	TTL  time.Duration

	mu   sync.RWMutex
	snap *entitySnapshot
}

// entitySnapshot is immutable once built.
type entitySnapshot struct {
	loadedAt   time.Time
	byID       map[int64]*domain.Entity
	childrenOf map[int64][]int64
}

// NewEntityTree creates a cache backed by repo.
func NewEntityTree(repo EntityRepo) *EntityTree {
	return &EntityTree{repo: repo}
}

// Invalidate drops the cached hierarchy.
func (t *EntityTree) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap = nil
}

func (t *EntityTree) ensure(ctx context.Context) (*entitySnapshot, error) {
	t.mu.RLock()
	snap := t.snap
	t.mu.RUnlock()
	if snap != nil && (t.TTL <= 0 || time.Since(snap.loadedAt) < t.TTL) {
		return snap, nil
	}

	entities, err := t.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading entity tree: %w", err)
	}
	snap = &entitySnapshot{
		loadedAt:   time.Now(),
		byID:       make(map[int64]*domain.Entity, len(entities)),
		childrenOf: make(map[int64][]int64),
	}
	for _, e := range entities {
		snap.byID[e.ID] = e
		if e.ParentID != nil && *e.ParentID != e.ID {
			snap.childrenOf[*e.ParentID] = append(snap.childrenOf[*e.ParentID], e.ID)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap = snap
	return snap, nil
}

// Get returns the cached entity, or ErrNotFound.
func (t *EntityTree) Get(ctx context.Context, id int64) (*domain.Entity, error) {
	snap, err := t.ensure(ctx)
	if err != nil {
		return nil, err
	}
	e, ok := snap.byID[id]
	if !ok {
		return nil, fmt.Errorf("entity %d: %w", id, domain.ErrNotFound)
	}
	return e, nil
}

// CompleteName returns the full path of id, or "" when it does not exist.
func (t *EntityTree) CompleteName(ctx context.Context, id int64) (string, error) {
	e, err := t.Get(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return e.CompleteName, nil
}

// Count returns the number of entities.
func (t *EntityTree) Count(ctx context.Context) (int, error) {
	snap, err := t.ensure(ctx)
	if err != nil {
		return 0, err
	}
	return len(snap.byID), nil
}

// Ancestors returns the sorted ancestors of ids, excluding ids themselves.
func (t *EntityTree) Ancestors(ctx context.Context, ids []int64) ([]int64, error) {
	snap, err := t.ensure(ctx)
	if err != nil {
		return nil, err
	}

	self := make(map[int64]bool, len(ids))
	for _, id := range ids {
		self[id] = true
	}
	seen := make(map[int64]bool)
	for _, id := range ids {
		e, ok := snap.byID[id]
		for ok && e.ParentID != nil && !seen[*e.ParentID] && *e.ParentID != e.ID {
			seen[*e.ParentID] = true
			e, ok = snap.byID[*e.ParentID]
		}
	}
	out := make([]int64, 0, len(seen))
	for id := range seen {
		if !self[id] {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Descendants returns id and every entity below it, sorted.
func (t *EntityTree) Descendants(ctx context.Context, id int64) ([]int64, error) {
	snap, err := t.ensure(ctx)
	if err != nil {
		return nil, err
	}

	if _, ok := snap.byID[id]; !ok {
		return nil, fmt.Errorf("entity %d: %w", id, domain.ErrNotFound)
	}
	seen := map[int64]bool{id: true}
	queue := []int64{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range snap.childrenOf[cur] {
			if !seen[child] {
				seen[child] = true
				queue = append(queue, child)
			}
		}
	}
	out := make([]int64, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	slices.Sort(out)
	return out, nil
}

// Scope builds the EntityScope of ids, including the ancestors whose
// recursive rows are visible from them.
func (t *EntityTree) Scope(ctx context.Context, ids []int64) (*EntityScope, error) {
	ancestors, err := t.Ancestors(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &EntityScope{IDs: slices.Clone(ids), Ancestors: ancestors}, nil
}
