package analysis_test

import (
	"context"
	"errors"
	"testing"

	"github.com/corentings/chess/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iklasky/tactic-trainer/internal/analysis"
	"github.com/iklasky/tactic-trainer/internal/engine"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestDetector_Detect(t *testing.T) {
	// posBefore has the opponent (black) to move, posAfter the player.
	posBefore := mustPosition(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	posAfter := mustPosition(t, "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2")

	tests := []struct {
		name       string
		evalBefore engine.Eval
		evalAfter  engine.Eval
		expected   *analysis.Opportunity
	}{
		{
			name:       "swing above threshold",
			evalBefore: cpEval(-20), // black to move, so +20 for the player
			evalAfter:  cpEval(150),
			expected:   &analysis.Opportunity{Kind: analysis.KindCP, CP: 130, EvalBefore: 20},
		},
		{
			name:       "swing exactly at threshold counts",
			evalBefore: cpEval(-50),
			evalAfter:  cpEval(150),
			expected:   &analysis.Opportunity{Kind: analysis.KindCP, CP: 100, EvalBefore: 50},
		},
		{
			name:       "swing below threshold",
			evalBefore: cpEval(-20),
			evalAfter:  cpEval(110),
			expected:   nil,
		},
		{
			name:       "negative swing clamps to zero",
			evalBefore: cpEval(-300),
			evalAfter:  cpEval(-100),
			expected:   nil,
		},
		{
			name:       "forced mate for the player bypasses threshold",
			evalBefore: cpEval(-30),
			evalAfter:  mateEval(2),
			expected:   &analysis.Opportunity{Kind: analysis.KindMate, MateIn: 2, EvalBefore: 30},
		},
		{
			name:       "mate against the player is no opportunity",
			evalBefore: cpEval(100),
			evalAfter:  mateEval(-3),
			expected:   nil,
		},
		{
			name:       "mate score before the move blocks cp classification",
			evalBefore: mateEval(-1),
			evalAfter:  cpEval(400),
			expected:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle := &fakeOracle{evals: []engine.Eval{tt.evalBefore, tt.evalAfter}}
			det := analysis.NewDetector(oracle, analysis.DefaultParams())

			opp, err := det.Detect(context.Background(), posBefore, posAfter, chess.White)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, opp)
		})
	}
}

func TestDetector_Detect_BlackPlayerPerspective(t *testing.T) {
	// posBefore has white (the opponent) to move.
	posBefore := mustPosition(t, startFEN)
	posAfter := mustPosition(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")

	oracle := &fakeOracle{evals: []engine.Eval{cpEval(40), cpEval(120)}}
	det := analysis.NewDetector(oracle, analysis.DefaultParams())

	opp, err := det.Detect(context.Background(), posBefore, posAfter, chess.Black)
	require.NoError(t, err)
	require.NotNil(t, opp)
	// +40 for white before becomes -40 for the player; +120 black to move
	// stays +120.
	assert.Equal(t, analysis.KindCP, opp.Kind)
	assert.Equal(t, 160, opp.CP)
	assert.Equal(t, -40, opp.EvalBefore)
}

func TestDetector_Detect_TerminalPosition(t *testing.T) {
	mated := mustPosition(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 0 3")
	oracle := &fakeOracle{}
	det := analysis.NewDetector(oracle, analysis.DefaultParams())

	opp, err := det.Detect(context.Background(), mated, mated, chess.White)
	require.NoError(t, err)
	assert.Nil(t, opp)
	assert.Zero(t, oracle.evalCalls, "terminal positions must not be evaluated")
}

func TestDetector_Detect_OracleError(t *testing.T) {
	posBefore := mustPosition(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	posAfter := mustPosition(t, "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2")

	oracle := &fakeOracle{evalErr: errors.New("engine gone")}
	det := analysis.NewDetector(oracle, analysis.DefaultParams())

	opp, err := det.Detect(context.Background(), posBefore, posAfter, chess.White)
	assert.Error(t, err)
	assert.Nil(t, opp)
}
