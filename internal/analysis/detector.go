package analysis

import (
	"context"

	"github.com/corentings/chess/v2"

	"github.com/iklasky/tactic-trainer/internal/engine"
)

// Detector decides whether an opponent move created a scoring opportunity
// by comparing oracle evaluations on either side of the move.
type Detector struct {
	oracle engine.Oracle
	params Params
}

// NewDetector creates a Detector querying the given oracle.
func NewDetector(oracle engine.Oracle, params Params) *Detector {
	return &Detector{oracle: oracle, params: params}
}

// Detect compares evaluations before and after the opponent's move. A nil
// result with nil error means "no opportunity"; an error means the oracle
// could not answer (callers degrade to "no opportunity" and move on).
//
// Mate opportunities bypass the centipawn threshold and are mutually
// exclusive with cp classification for the same move.
func (d *Detector) Detect(ctx context.Context, posBefore, posAfter *chess.Position, player chess.Color) (*Opportunity, error) {
	// Terminal positions are not evaluable.
	if posBefore.Status() != chess.NoMethod || posAfter.Status() != chess.NoMethod {
		return nil, nil
	}

	evalBefore, err := d.oracle.Evaluate(ctx, posBefore.String())
	if err != nil {
		return nil, err
	}
	evalAfter, err := d.oracle.Evaluate(ctx, posAfter.String())
	if err != nil {
		return nil, err
	}

	// After the opponent's move the player is on turn; a positive mate
	// score means the player forces mate.
	if evalAfter.Kind == engine.EvalMate && evalAfter.MateIn > 0 {
		return &Opportunity{
			Kind:       KindMate,
			MateIn:     evalAfter.MateIn,
			EvalBefore: playerCP(evalBefore, posBefore.Turn(), player),
		}, nil
	}

	// Centipawn opportunity needs cp on both sides of the move.
	if evalBefore.Kind != engine.EvalCP || evalAfter.Kind != engine.EvalCP {
		return nil, nil
	}

	before := playerCP(evalBefore, posBefore.Turn(), player)
	after := playerCP(evalAfter, posAfter.Turn(), player)

	magnitude := after - before
	if magnitude < 0 {
		magnitude = 0
	}
	if magnitude < d.params.MinOpportunityCP {
		return nil, nil
	}
	return &Opportunity{
		Kind:       KindCP,
		CP:         magnitude,
		EvalBefore: before,
	}, nil
}

// playerCP converts an eval from the side-to-move perspective at the
// queried position into the player's fixed perspective. Mate evals carry no
// cp value and map to 0.
func playerCP(e engine.Eval, sideToMove, player chess.Color) int {
	if e.Kind != engine.EvalCP {
		return 0
	}
	if sideToMove == player {
		return e.CP
	}
	return -e.CP
}
