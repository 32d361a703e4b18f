package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iklasky/tactic-trainer/internal/models"
)

func cpRecord(cp, enginePly int) models.OpportunityRecord {
	return models.OpportunityRecord{
		Kind:          models.KindCP,
		OpportunityCP: &cp,
		EnginePly:     enginePly,
	}
}

func TestComputeHistogram(t *testing.T) {
	mateIn := 2
	records := []models.OpportunityRecord{
		cpRecord(100, 1),  // first delta bin, first turn bin
		cpRecord(199, 3),  // still 100-199 / 1-3
		cpRecord(250, 10), // 200-299 / 8-15
		cpRecord(900, 40), // 800+ / 32+
		cpRecord(50, 2),   // below the lowest delta edge, dropped
		{Kind: models.KindMate, MateIn: &mateIn, EnginePly: 1}, // mate, excluded
	}

	h := models.ComputeHistogram(records)

	require.Equal(t, []string{"100-199", "200-299", "300-499", "500-799", "800+"}, h.DeltaBins)
	require.Equal(t, []string{"1-3", "4-7", "8-15", "16-31", "32+"}, h.TurnBins)

	assert.Equal(t, 2, h.Counts[0][0])
	assert.Equal(t, 1, h.Counts[1][2])
	assert.Equal(t, 1, h.Counts[4][4])

	total := 0
	for _, row := range h.Counts {
		for _, c := range row {
			total += c
		}
	}
	assert.Equal(t, 4, total, "sub-threshold and mate records are not binned")
}

func TestComputeHistogram_Empty(t *testing.T) {
	h := models.ComputeHistogram(nil)
	require.Len(t, h.Counts, 5)
	for _, row := range h.Counts {
		assert.Equal(t, []int{0, 0, 0, 0, 0}, row)
	}
}
