package analysis

import (
	"context"
	"strings"

	"github.com/corentings/chess/v2"

	"github.com/iklasky/tactic-trainer/internal/engine"
	"github.com/iklasky/tactic-trainer/internal/errors"
	"github.com/iklasky/tactic-trainer/internal/logger"
	"github.com/iklasky/tactic-trainer/internal/models"
	"github.com/iklasky/tactic-trainer/internal/pgn"
)

// Analyzer runs the full per-game pipeline: detect opponent errors, simulate
// the engine conversion, and replay the actual continuation.
type Analyzer struct {
	oracle    engine.Oracle
	params    Params
	detector  *Detector
	simulator *Simulator
}

// New creates an Analyzer bound to one oracle. The oracle is queried
// serially; callers wanting parallelism run one Analyzer per oracle.
func New(oracle engine.Oracle, params Params) *Analyzer {
	return &Analyzer{
		oracle:    oracle,
		params:    params,
		detector:  NewDetector(oracle, params),
		simulator: NewSimulator(oracle, params),
	}
}

// AnalyzeGame analyzes a single PGN for the given player and returns one
// record per realized opportunity. A game the player is not part of yields
// zero records and no error. Oracle faults on individual plies are logged
// and skipped; only an unparseable game or a cancelled context is an error.
func (a *Analyzer) AnalyzeGame(ctx context.Context, pgnText, username, gameURL string) ([]models.OpportunityRecord, models.GameMeta, error) {
	log := logger.FromContext(ctx).WithPrefix("analyzer").WithField("game", gameURL)

	headers := pgn.ParseHeaders(pgnText)
	colorStr, ok := pgn.PlayerColor(headers, username)
	meta := pgn.DeriveMeta(headers, username, colorStr, gameURL)
	if !ok {
		log.Debug("player %s not in game, skipping", username)
		return nil, meta, nil
	}
	player := chess.White
	if colorStr == "black" {
		player = chess.Black
	}

	opt, err := chess.PGN(strings.NewReader(pgnText))
	if err != nil {
		return nil, meta, errors.NewValidationError("pgn", err.Error())
	}
	game := chess.NewGame(opt)
	positions := game.Positions()
	moves := game.Moves()

	var records []models.OpportunityRecord
	for i, move := range moves {
		if err := ctx.Err(); err != nil {
			return records, meta, err
		}
		posBefore := positions[i]
		if posBefore.Turn() == player {
			continue
		}
		posAfter := positions[i+1]

		opp, err := a.detector.Detect(ctx, posBefore, posAfter, player)
		if err != nil {
			log.Warn("evaluation failed at ply %d: %v", i, err)
			continue
		}
		if opp == nil {
			continue
		}

		conv, pv := a.simulator.Simulate(ctx, posAfter, opp, player)
		if !conv.Achieved {
			// The engine could not realize the opportunity within the
			// horizon; nothing to report.
			continue
		}

		remaining := moves[i+1:]
		rec := a.buildRecord(meta, len(records), i, posBefore, posAfter, move, opp, conv, pv)
		a.fillActual(&rec, posAfter, remaining, opp, player)
		records = append(records, rec)
	}

	log.Info("analyzed game: %d opportunities", len(records))
	return records, meta, nil
}

func (a *Analyzer) buildRecord(meta models.GameMeta, eventIndex, plyIndex int, posBefore, posAfter *chess.Position, move *chess.Move, opp *Opportunity, conv Conversion, pv PV) models.OpportunityRecord {
	rec := models.OpportunityRecord{
		Username:   meta.Username,
		GameURL:    meta.GameURL,
		EventIndex: eventIndex,

		Kind:        string(opp.Kind),
		TargetPawns: a.params.targetPawns(opp.CP),

		EnginePly: conv.Ply,

		OpponentMovePly: plyIndex,
		OpponentMoveSAN: encodeSAN(posBefore, move),
		OpponentMoveUCI: move.String(),

		FENBefore: posBefore.String(),
		FENAfter:  posAfter.String(),

		PVMoves: pv.Moves,
		PVEvals: pv.Evals,

		EvalBefore: opp.EvalBefore,

		WhitePlayer: meta.WhitePlayer,
		BlackPlayer: meta.BlackPlayer,
		PlayerColor: meta.PlayerColor,
		TimeControl: meta.TimeControl,
		GameResult:  meta.GameResult,
		EndTime:     meta.EndTime,
	}

	switch opp.Kind {
	case KindCP:
		cp := opp.CP
		rec.OpportunityCP = &cp
	case KindMate:
		m := opp.MateIn
		rec.MateIn = &m
		rec.TargetPawns = 0
	}

	if len(pv.Moves) > 0 {
		rec.BestReplyUCI = pv.Moves[0]
		rec.BestReplySAN = uciToSAN(posAfter, pv.Moves[0])
	}
	return rec
}

// fillActual replays the moves actually played after the error and records
// whether the player converted in reality.
func (a *Analyzer) fillActual(rec *models.OpportunityRecord, posAfter *chess.Position, remaining []*chess.Move, opp *Opportunity, player chess.Color) {
	var actual Conversion
	switch opp.Kind {
	case KindMate:
		actual = CheckActualMate(posAfter, remaining, player, a.params.MaxHorizonPlies)
	default:
		actual = CheckActualConversion(posAfter, remaining, rec.TargetPawns, player, a.params.MaxHorizonPlies, a.params.PieceValues)
	}
	rec.ConvertedActual = actual.Achieved
	if actual.Achieved {
		ply := actual.Ply
		rec.ActualPly = &ply
	}
}

func encodeSAN(pos *chess.Position, move *chess.Move) string {
	san := chess.AlgebraicNotation{}.Encode(pos, move)
	if san == "" {
		return move.String()
	}
	return san
}

// uciToSAN re-encodes a UCI move string in algebraic notation for the given
// position, falling back to the UCI form if it does not decode.
func uciToSAN(pos *chess.Position, uci string) string {
	move, err := chess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return uci
	}
	return encodeSAN(pos, move)
}
