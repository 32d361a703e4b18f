package analysis

import (
	"github.com/corentings/chess/v2"

	"github.com/iklasky/tactic-trainer/internal/models"
)

// Kind discriminates the two opportunity classes.
type Kind string

const (
	// KindCP is a centipawn-threshold opportunity.
	KindCP Kind = models.KindCP
	// KindMate is a forced mate created by the opponent's move.
	KindMate Kind = models.KindMate
)

// Opportunity describes a detected opponent error. Exactly one of CP or
// MateIn is meaningful, selected by Kind.
type Opportunity struct {
	Kind       Kind
	CP         int // magnitude in centipawns, player POV (cp kind)
	MateIn     int // plies to mate (mate kind)
	EvalBefore int // player POV cp before the error, for reporting
}

// Conversion is the outcome of simulating or replaying a line. Ply counts
// from the position immediately after the opponent error, starting at 1.
type Conversion struct {
	Achieved bool
	Ply      int
}

// PV is the principal-variation trace collected while simulating. Evals are
// centipawns from the side to move at each PV position; mate and terminal
// positions are stored as 0.
type PV struct {
	Moves []string
	Evals []int
}

// Params is the immutable configuration surface of the analysis core.
type Params struct {
	MinOpportunityCP int
	MaxHorizonPlies  int
	CPPerPawn        int
	PieceValues      map[chess.PieceType]int
}

// DefaultPieceValues returns the standard material table in pawn units.
func DefaultPieceValues() map[chess.PieceType]int {
	return map[chess.PieceType]int{
		chess.Pawn:   1,
		chess.Knight: 3,
		chess.Bishop: 3,
		chess.Rook:   5,
		chess.Queen:  9,
		chess.King:   0,
	}
}

// DefaultParams returns the thresholds the original tuning uses.
func DefaultParams() Params {
	return Params{
		MinOpportunityCP: 100,
		MaxHorizonPlies:  40,
		CPPerPawn:        100,
		PieceValues:      DefaultPieceValues(),
	}
}

// targetPawns converts a centipawn magnitude into the material-unit gain
// the conversion rules require. The factor is configurable; see Params.
func (p Params) targetPawns(cp int) int {
	per := p.CPPerPawn
	if per <= 0 {
		per = 100
	}
	return cp / per
}
