package analysis

import "github.com/corentings/chess/v2"

// MaterialBalance tallies board material as white minus black in pawn
// units, using the configured piece-value table. Pure function of the
// position.
func MaterialBalance(pos *chess.Position, values map[chess.PieceType]int) int {
	total := 0
	for _, piece := range pos.Board().SquareMap() {
		v := values[piece.Type()]
		if piece.Color() == chess.White {
			total += v
		} else {
			total -= v
		}
	}
	return total
}

// materialGain converts the white-minus-black balance into progress for the
// given player relative to a baseline.
func materialGain(balance, baseline int, player chess.Color) int {
	if player == chess.White {
		return balance - baseline
	}
	return baseline - balance
}
