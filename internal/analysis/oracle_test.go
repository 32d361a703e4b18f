package analysis_test

import (
	"context"
	"testing"

	"github.com/corentings/chess/v2"
	"github.com/stretchr/testify/require"

	"github.com/iklasky/tactic-trainer/internal/engine"
)

// fakeOracle pops scripted answers in call order. Exhausted queues return a
// neutral cp eval and an empty best move unless an error is scripted.
type fakeOracle struct {
	evals     []engine.Eval
	moves     []string
	evalErr   error
	moveErr   error
	evalCalls int
	moveCalls int
}

func (f *fakeOracle) Evaluate(_ context.Context, _ string) (engine.Eval, error) {
	f.evalCalls++
	if len(f.evals) == 0 {
		if f.evalErr != nil {
			return engine.Eval{}, f.evalErr
		}
		return engine.Eval{Kind: engine.EvalCP}, nil
	}
	ev := f.evals[0]
	f.evals = f.evals[1:]
	return ev, nil
}

func (f *fakeOracle) BestMove(_ context.Context, _ string) (string, error) {
	f.moveCalls++
	if len(f.moves) == 0 {
		if f.moveErr != nil {
			return "", f.moveErr
		}
		return "", nil
	}
	mv := f.moves[0]
	f.moves = f.moves[1:]
	return mv, nil
}

func cpEval(cp int) engine.Eval {
	return engine.Eval{Kind: engine.EvalCP, CP: cp}
}

func mateEval(in int) engine.Eval {
	return engine.Eval{Kind: engine.EvalMate, MateIn: in}
}

func mustPosition(t *testing.T, fen string) *chess.Position {
	t.Helper()
	opt, err := chess.FEN(fen)
	require.NoError(t, err)
	return chess.NewGame(opt).Position()
}

// mustLine replays UCI moves from a FEN and returns the root position plus
// the decoded move list.
func mustLine(t *testing.T, fen string, ucis ...string) (*chess.Position, []*chess.Move) {
	t.Helper()
	opt, err := chess.FEN(fen)
	require.NoError(t, err)
	game := chess.NewGame(opt)
	root := game.Position()
	for _, uci := range ucis {
		require.NoError(t, game.PushNotationMove(uci, chess.UCINotation{}, nil), "move %s", uci)
	}
	return root, game.Moves()
}
