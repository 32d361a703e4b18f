package models

// Histogram is a 2D count of cp opportunities bucketed by magnitude and by
// engine conversion time. Mate opportunities are excluded: they have no cp
// magnitude.
type Histogram struct {
	DeltaBins []string `json:"delta_bins"`
	TurnBins  []string `json:"t_bins"`
	Counts    [][]int  `json:"counts"`
}

var (
	deltaEdges  = []int{100, 200, 300, 500, 800}
	deltaLabels = []string{"100-199", "200-299", "300-499", "500-799", "800+"}
	turnEdges   = []int{1, 4, 8, 16, 32}
	turnLabels  = []string{"1-3", "4-7", "8-15", "16-31", "32+"}
)

// ComputeHistogram bins cp records by (opportunity magnitude, engine
// conversion ply). Records below the lowest edge are dropped.
func ComputeHistogram(records []OpportunityRecord) Histogram {
	h := Histogram{
		DeltaBins: deltaLabels,
		TurnBins:  turnLabels,
		Counts:    make([][]int, len(deltaLabels)),
	}
	for i := range h.Counts {
		h.Counts[i] = make([]int, len(turnLabels))
	}

	for _, r := range records {
		if r.Kind != KindCP || r.OpportunityCP == nil {
			continue
		}
		di := binIndex(deltaEdges, *r.OpportunityCP)
		ti := binIndex(turnEdges, r.EnginePly)
		if di < 0 || ti < 0 {
			continue
		}
		h.Counts[di][ti]++
	}
	return h
}

// binIndex returns the index of the last edge ≤ v, or -1 when v is below
// the first edge.
func binIndex(edges []int, v int) int {
	idx := -1
	for i, e := range edges {
		if v >= e {
			idx = i
		}
	}
	return idx
}
