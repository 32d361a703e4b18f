package engine

import "context"

// Cached is a read-through evaluation cache in front of an Oracle, keyed by
// position encoding. Capacity is fixed: once full, new evaluations pass
// through uncached. Nothing is ever evicted — positions are not revisited
// across unrelated games, so stale entries cost nothing.
//
// Best moves are not cached; the simulator never asks for the best move of
// the same position twice.
type Cached struct {
	inner Oracle
	max   int
	evals map[string]Eval
}

// NewCached wraps an oracle with an eval cache of at most size entries.
func NewCached(inner Oracle, size int) *Cached {
	if size <= 0 {
		size = 100000
	}
	return &Cached{
		inner: inner,
		max:   size,
		evals: make(map[string]Eval),
	}
}

func (c *Cached) Evaluate(ctx context.Context, fen string) (Eval, error) {
	if ev, ok := c.evals[fen]; ok {
		return ev, nil
	}
	ev, err := c.inner.Evaluate(ctx, fen)
	if err != nil {
		return Eval{}, err
	}
	if len(c.evals) < c.max {
		c.evals[fen] = ev
	}
	return ev, nil
}

func (c *Cached) BestMove(ctx context.Context, fen string) (string, error) {
	return c.inner.BestMove(ctx, fen)
}

// Close shuts down the underlying oracle if it is closeable.
func (c *Cached) Close() error {
	if closer, ok := c.inner.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
