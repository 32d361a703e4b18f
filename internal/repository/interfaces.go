package repository

import (
	"context"

	"github.com/iklasky/tactic-trainer/internal/models"
)

// OpportunityRepository handles opportunity record data access
type OpportunityRepository interface {
	UpsertBatch(ctx context.Context, records []models.OpportunityRecord) (int, error)
	List(ctx context.Context, filter models.RecordFilter) ([]models.OpportunityRecord, error)
	Count(ctx context.Context, filter models.RecordFilter) (int, error)
	Players(ctx context.Context) ([]models.PlayerSummary, error)
}

// GameRepository handles analyzed-game summaries
type GameRepository interface {
	Upsert(ctx context.Context, game models.GameSummary) error
	List(ctx context.Context, username string, limit, offset int) ([]models.GameSummary, error)
	Count(ctx context.Context, username string) (int, error)
}
