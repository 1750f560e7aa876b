package service

import (
	"context"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/repository"
)

// noEntity marks that no group is open.
const noEntity int64 = -1

// entityGrouper nests options under the completename of their entity when
// a listing spans several entities. Rows continuing the last group of the
// previous page are emitted flat.
type entityGrouper struct {
	tree  *repository.EntityTree
	multi bool

	out       []contract.Option
	pending   []contract.Option
	current   int64
	continued int64
}

func newEntityGrouper(tree *repository.EntityTree, multi bool) *entityGrouper {
	return &entityGrouper{tree: tree, multi: multi, current: noEntity, continued: noEntity}
}

// enter closes the open group when entityID starts a new one and reports
// whether it did.
func (g *entityGrouper) enter(ctx context.Context, entityID int64) (bool, error) {
	if !g.multi || entityID == g.current {
		return false, nil
	}
	if err := g.flush(ctx); err != nil {
		return false, err
	}
	g.current = entityID
	return true, nil
}

// continueFrom marks the open group as the tail of the previous page.
func (g *entityGrouper) continueFrom() {
	g.continued = g.current
}

func (g *entityGrouper) add(opts ...contract.Option) {
	g.pending = append(g.pending, opts...)
}

func (g *entityGrouper) flush(ctx context.Context) error {
	if len(g.pending) == 0 {
		return nil
	}
	if !g.multi || g.current == g.continued {
		g.out = append(g.out, g.pending...)
		g.pending = nil
		return nil
	}
	label, err := g.tree.CompleteName(ctx, g.current)
	if err != nil {
		return err
	}
	g.out = append(g.out, contract.Option{Text: label, Children: g.pending})
	g.pending = nil
	return nil
}

// options closes the open group and returns everything collected.
func (g *entityGrouper) options(ctx context.Context) ([]contract.Option, error) {
	if err := g.flush(ctx); err != nil {
		return nil, err
	}
	return g.out, nil
}
