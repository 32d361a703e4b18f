package worker

import (
	"context"

	"github.com/iklasky/tactic-trainer/internal/analysis"
	"github.com/iklasky/tactic-trainer/internal/engine"
	"github.com/iklasky/tactic-trainer/internal/models"
)

// GameResult is the aggregation unit emitted once per analyzed game. Err is
// set when the game could not be analyzed at all; partial oracle failures
// inside a game degrade silently to fewer records.
type GameResult struct {
	Username  string
	GameURL   string
	GameIndex int
	Records   []models.OpportunityRecord
	Meta      models.GameMeta
	Err       error
}

// AnalyzeGameJob runs the full detection pipeline over one game on the
// worker's oracle and reports to the aggregator channel.
type AnalyzeGameJob struct {
	Params    analysis.Params
	Username  string
	GameURL   string
	PGN       string
	GameIndex int
	Results   chan<- GameResult
}

func (j *AnalyzeGameJob) Name() string { return "analyze_game" }

func (j *AnalyzeGameJob) Run(ctx context.Context, oracle engine.Oracle) error {
	analyzer := analysis.New(oracle, j.Params)
	records, meta, err := analyzer.AnalyzeGame(ctx, j.PGN, j.Username, j.GameURL)
	for i := range records {
		records[i].GameIndex = j.GameIndex
	}

	result := GameResult{
		Username:  j.Username,
		GameURL:   j.GameURL,
		GameIndex: j.GameIndex,
		Records:   records,
		Meta:      meta,
		Err:       err,
	}
	select {
	case j.Results <- result:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}
