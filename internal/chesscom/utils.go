package chesscom

import "strings"

// drawCodes are the per-player result codes the chess.com API reports for
// drawn games. Win is the single code "win"; every other code is a way to
// lose (checkmated, resigned, timeout, abandoned, variant losses).
var drawCodes = map[string]struct{}{
	"agreed":             {},
	"repetition":         {},
	"stalemate":          {},
	"insufficient":       {},
	"timevsinsufficient": {},
	"fiftymove":          {},
	"draw":               {},
}

// DeriveResult reports the color the user held in a game payload, their
// opponent's username, and the normalized result from the user's side.
// A username matching neither player reads as black.
func DeriveResult(username string, mg MonthlyGame) (playedAs, opponent, result string) {
	if strings.EqualFold(mg.White.Username, username) {
		return "white", mg.Black.Username, NormalizeResult(mg.White.Result)
	}
	return "black", mg.White.Username, NormalizeResult(mg.Black.Result)
}

// NormalizeResult folds a chess.com per-player result code down to
// win/draw/loss. Unknown codes read as a loss.
func NormalizeResult(res string) string {
	res = strings.ToLower(strings.TrimSpace(res))
	if res == "win" {
		return "win"
	}
	if _, ok := drawCodes[res]; ok {
		return "draw"
	}
	return "loss"
}
