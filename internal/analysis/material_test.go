package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iklasky/tactic-trainer/internal/analysis"
)

func TestMaterialBalance(t *testing.T) {
	values := analysis.DefaultPieceValues()

	tests := []struct {
		name     string
		fen      string
		expected int
	}{
		{
			name:     "starting position is even",
			fen:      "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			expected: 0,
		},
		{
			name:     "white up queen and rook vs rook and pawn",
			fen:      "1r5k/p7/8/8/8/8/1P6/QR5K w - - 0 1",
			expected: 9,
		},
		{
			name:     "black up a knight",
			fen:      "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/R1BQKBNR w KQkq - 0 1",
			expected: -3,
		},
		{
			name:     "bare kings",
			fen:      "7k/8/8/8/8/8/8/7K w - - 0 1",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := mustPosition(t, tt.fen)
			assert.Equal(t, tt.expected, analysis.MaterialBalance(pos, values))
		})
	}
}
