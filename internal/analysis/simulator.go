package analysis

import (
	"context"

	"github.com/corentings/chess/v2"

	"github.com/iklasky/tactic-trainer/internal/engine"
	"github.com/iklasky/tactic-trainer/internal/logger"
)

// Simulator walks best play from the position after an opponent error and
// determines whether, and at which ply, the opportunity is realized.
type Simulator struct {
	oracle engine.Oracle
	params Params
}

// NewSimulator creates a Simulator querying the given oracle for best moves
// and PV evaluations.
func NewSimulator(oracle engine.Oracle, params Params) *Simulator {
	return &Simulator{oracle: oracle, params: params}
}

// Simulate runs the engine-predicted conversion check. Oracle faults and
// malformed move encodings degrade to an unrealized outcome; they never
// abort the caller's game. The returned PV is truncated to the conversion
// ply when the outcome is achieved.
func (s *Simulator) Simulate(ctx context.Context, posAfter *chess.Position, opp *Opportunity, player chess.Color) (Conversion, PV) {
	if opp.Kind == KindMate {
		return s.simulateMate(ctx, posAfter, player)
	}
	return s.simulateCP(ctx, posAfter, opp, player)
}

// simulateMate walks best moves until the board is checkmate or the horizon
// runs out. Mate is terminal, so there is no hold requirement.
func (s *Simulator) simulateMate(ctx context.Context, posAfter *chess.Position, player chess.Color) (Conversion, PV) {
	log := logger.FromContext(ctx).WithPrefix("simulator")

	walk, err := newLineWalk(posAfter)
	if err != nil {
		log.Warn("failed to reconstruct position: %v", err)
		return Conversion{}, PV{}
	}

	var pv PV
	for ply := 1; ply <= s.params.MaxHorizonPlies; ply++ {
		pos := walk.position()
		if pos.Status() != chess.NoMethod {
			return Conversion{}, pv
		}

		move, err := s.oracle.BestMove(ctx, pos.String())
		if err != nil || move == "" {
			if err != nil {
				log.Warn("best move query failed at ply %d: %v", ply, err)
			}
			return Conversion{}, pv
		}
		if err := walk.push(move); err != nil {
			log.Warn("engine returned unplayable move %q at ply %d: %v", move, ply, err)
			return Conversion{}, pv
		}

		cur := walk.position()
		pv.Moves = append(pv.Moves, move)
		pv.Evals = append(pv.Evals, s.pvEval(ctx, cur))

		if cur.Status() == chess.Checkmate {
			if cur.Turn().Other() != player {
				// The line ended in mate against the player; the
				// opportunity is gone.
				return Conversion{}, pv
			}
			return Conversion{Achieved: true, Ply: ply}, pv
		}
	}
	return Conversion{}, pv
}

// simulateCP applies the sustained-advantage rule: the material gain must
// stay at or above the target for three consecutive plies, and the reported
// ply is the first ply of that hold window, not the confirmation tail.
func (s *Simulator) simulateCP(ctx context.Context, posAfter *chess.Position, opp *Opportunity, player chess.Color) (Conversion, PV) {
	log := logger.FromContext(ctx).WithPrefix("simulator")

	target := s.params.targetPawns(opp.CP)
	if target < 1 {
		return Conversion{}, PV{}
	}
	baseline := MaterialBalance(posAfter, s.params.PieceValues)

	walk, err := newLineWalk(posAfter)
	if err != nil {
		log.Warn("failed to reconstruct position: %v", err)
		return Conversion{}, PV{}
	}

	var pv PV
	sustained := 0
	firstCross := 0

	for ply := 1; ply <= s.params.MaxHorizonPlies; ply++ {
		pos := walk.position()
		if pos.Status() != chess.NoMethod {
			return Conversion{}, pv
		}

		move, err := s.oracle.BestMove(ctx, pos.String())
		if err != nil || move == "" {
			if err != nil {
				log.Warn("best move query failed at ply %d: %v", ply, err)
			}
			return Conversion{}, pv
		}
		if err := walk.push(move); err != nil {
			log.Warn("engine returned unplayable move %q at ply %d: %v", move, ply, err)
			return Conversion{}, pv
		}

		cur := walk.position()
		pv.Moves = append(pv.Moves, move)
		pv.Evals = append(pv.Evals, s.pvEval(ctx, cur))

		gain := materialGain(MaterialBalance(cur, s.params.PieceValues), baseline, player)
		if gain >= target {
			if firstCross == 0 {
				firstCross = ply
			}
			sustained++
			if sustained >= 3 {
				pv.Moves = pv.Moves[:firstCross]
				pv.Evals = pv.Evals[:firstCross]
				return Conversion{Achieved: true, Ply: firstCross}, pv
			}
		} else {
			sustained = 0
			firstCross = 0
		}
	}
	return Conversion{}, pv
}

// pvEval fetches the cp eval for a PV position. Terminal positions, mate
// scores and oracle faults all record as 0.
func (s *Simulator) pvEval(ctx context.Context, pos *chess.Position) int {
	if pos.Status() != chess.NoMethod {
		return 0
	}
	ev, err := s.oracle.Evaluate(ctx, pos.String())
	if err != nil || ev.Kind != engine.EvalCP {
		return 0
	}
	return ev.CP
}

// lineWalk replays a move line on a scratch game rooted at a position.
type lineWalk struct {
	game *chess.Game
}

func newLineWalk(pos *chess.Position) (*lineWalk, error) {
	opt, err := chess.FEN(pos.String())
	if err != nil {
		return nil, err
	}
	return &lineWalk{game: chess.NewGame(opt)}, nil
}

func (w *lineWalk) position() *chess.Position {
	return w.game.Position()
}

func (w *lineWalk) push(uci string) error {
	return w.game.PushNotationMove(uci, chess.UCINotation{}, nil)
}
