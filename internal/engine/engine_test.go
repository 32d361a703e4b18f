package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected Eval
		ok       bool
	}{
		{
			name:     "cp score",
			line:     "info depth 20 seldepth 28 score cp 35 nodes 100 pv e2e4",
			expected: Eval{Kind: EvalCP, CP: 35},
			ok:       true,
		},
		{
			name:     "negative cp score",
			line:     "info depth 18 score cp -250 nodes 42",
			expected: Eval{Kind: EvalCP, CP: -250},
			ok:       true,
		},
		{
			name:     "mate for side to move",
			line:     "info depth 12 score mate 3 pv h5f7",
			expected: Eval{Kind: EvalMate, MateIn: 3},
			ok:       true,
		},
		{
			name:     "mate against side to move",
			line:     "info depth 12 score mate -2",
			expected: Eval{Kind: EvalMate, MateIn: -2},
			ok:       true,
		},
		{
			name: "no score token",
			line: "info depth 20 nodes 12345 nps 100000",
			ok:   false,
		},
		{
			name: "bound token instead of number",
			line: "info depth 20 score lowerbound cp",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := parseScore(tt.line)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.expected, ev)
			}
		})
	}
}

func TestEvalString(t *testing.T) {
	assert.Equal(t, "cp 35", Eval{Kind: EvalCP, CP: 35}.String())
	assert.Equal(t, "mate -2", Eval{Kind: EvalMate, MateIn: -2}.String())
}

type countingOracle struct {
	evalCalls int
	moveCalls int
}

func (o *countingOracle) Evaluate(_ context.Context, fen string) (Eval, error) {
	o.evalCalls++
	return Eval{Kind: EvalCP, CP: len(fen)}, nil
}

func (o *countingOracle) BestMove(_ context.Context, _ string) (string, error) {
	o.moveCalls++
	return "e2e4", nil
}

func TestCached_Evaluate(t *testing.T) {
	inner := &countingOracle{}
	cached := NewCached(inner, 2)
	ctx := context.Background()

	ev1, err := cached.Evaluate(ctx, "fen-a")
	require.NoError(t, err)
	ev2, err := cached.Evaluate(ctx, "fen-a")
	require.NoError(t, err)
	assert.Equal(t, ev1, ev2)
	assert.Equal(t, 1, inner.evalCalls, "second lookup must hit the cache")

	_, err = cached.Evaluate(ctx, "fen-bb")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.evalCalls)

	// Cache is full: this entry passes through every time.
	_, err = cached.Evaluate(ctx, "fen-ccc")
	require.NoError(t, err)
	_, err = cached.Evaluate(ctx, "fen-ccc")
	require.NoError(t, err)
	assert.Equal(t, 4, inner.evalCalls)

	// Cached entries still answer without the oracle.
	_, err = cached.Evaluate(ctx, "fen-a")
	require.NoError(t, err)
	assert.Equal(t, 4, inner.evalCalls)
}

func TestCached_BestMovePassthrough(t *testing.T) {
	inner := &countingOracle{}
	cached := NewCached(inner, 10)

	mv, err := cached.BestMove(context.Background(), "fen-a")
	require.NoError(t, err)
	assert.Equal(t, "e2e4", mv)

	_, err = cached.BestMove(context.Background(), "fen-a")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.moveCalls, "best moves are never cached")
}
