package analysis

import (
	"github.com/corentings/chess/v2"
)

// CheckActualConversion replays the moves actually played after the opponent
// error and applies the same sustained-advantage rule the simulator uses: the
// player's material gain over the baseline must hold for three consecutive
// plies, and the reported ply is the first crossing of the hold window. No
// engine is consulted.
func CheckActualConversion(posAfter *chess.Position, remaining []*chess.Move, targetPawns int, player chess.Color, horizon int, values map[chess.PieceType]int) Conversion {
	if targetPawns < 1 {
		return Conversion{}
	}
	if len(remaining) < horizon {
		horizon = len(remaining)
	}
	baseline := MaterialBalance(posAfter, values)

	walk, err := newLineWalk(posAfter)
	if err != nil {
		return Conversion{}
	}

	sustained := 0
	firstCross := 0
	for ply := 1; ply <= horizon; ply++ {
		if err := walk.push(remaining[ply-1].String()); err != nil {
			break
		}
		gain := materialGain(MaterialBalance(walk.position(), values), baseline, player)
		if gain >= targetPawns {
			if firstCross == 0 {
				firstCross = ply
			}
			sustained++
			if sustained >= 3 {
				return Conversion{Achieved: true, Ply: firstCross}
			}
		} else {
			sustained = 0
			firstCross = 0
		}
	}
	return Conversion{}
}

// CheckActualMate replays the actually-played moves and reports whether the
// player delivered checkmate within the horizon. Mate by the opponent, or a
// game that ends any other way, is unrealized.
func CheckActualMate(posAfter *chess.Position, remaining []*chess.Move, player chess.Color, horizon int) Conversion {
	if len(remaining) < horizon {
		horizon = len(remaining)
	}

	walk, err := newLineWalk(posAfter)
	if err != nil {
		return Conversion{}
	}

	for ply := 1; ply <= horizon; ply++ {
		if err := walk.push(remaining[ply-1].String()); err != nil {
			break
		}
		pos := walk.position()
		if pos.Status() == chess.Checkmate {
			if pos.Turn().Other() == player {
				return Conversion{Achieved: true, Ply: ply}
			}
			return Conversion{}
		}
	}
	return Conversion{}
}
