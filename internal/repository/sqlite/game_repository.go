package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"

	"github.com/iklasky/tactic-trainer/internal/logger"
	"github.com/iklasky/tactic-trainer/internal/models"
	"github.com/iklasky/tactic-trainer/internal/repository"
)

type gameRepository struct {
	db *sql.DB
}

// NewGameRepository creates a new GameRepository implementation
func NewGameRepository(db *sql.DB) repository.GameRepository {
	return &gameRepository{db: db}
}

// Upsert inserts or refreshes the per-game summary keyed by
// (username, game_url). Re-analyzing a game overwrites its counters.
func (r *gameRepository) Upsert(ctx context.Context, game models.GameSummary) error {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("upserting game: username=%s, url=%s", game.Username, game.GameURL)

	query := sqlBuilder.Insert("games").
		Columns(
			"username", "game_url", "game_index", "white_player", "black_player",
			"white_elo", "black_elo", "player_color", "opponent", "time_control",
			"game_result", "end_time", "opportunities",
		).
		Values(
			game.Username, game.GameURL, game.GameIndex, game.WhitePlayer, game.BlackPlayer,
			game.WhiteElo, game.BlackElo, game.PlayerColor, game.Opponent, game.TimeControl,
			game.GameResult, game.EndTime, game.Opportunities,
		).
		Suffix(`ON CONFLICT (username, game_url) DO UPDATE SET
game_index = excluded.game_index,
opportunities = excluded.opportunities`)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build upsert: %v", err)
		return err
	}
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		log.Error("failed to upsert game: %v", err)
		return err
	}
	return nil
}

func (r *gameRepository) List(ctx context.Context, username string, limit, offset int) ([]models.GameSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("listing games: username=%s", username)

	query := sqlBuilder.Select(
		"username", "game_url", "game_index", "white_player", "black_player",
		"white_elo", "black_elo", "player_color", "opponent", "time_control",
		"game_result", "end_time", "opportunities",
	).From("games")

	if username != "" {
		query = query.Where(squirrel.Eq{"username": username})
	}
	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	query = query.OrderBy("username", "game_index").Limit(uint64(limit)).Offset(uint64(offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list games: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.GameSummary
	for rows.Next() {
		var g models.GameSummary
		if err := rows.Scan(
			&g.Username, &g.GameURL, &g.GameIndex, &g.WhitePlayer, &g.BlackPlayer,
			&g.WhiteElo, &g.BlackElo, &g.PlayerColor, &g.Opponent, &g.TimeControl,
			&g.GameResult, &g.EndTime, &g.Opportunities,
		); err != nil {
			log.Error("failed to scan game row: %v", err)
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *gameRepository) Count(ctx context.Context, username string) (int, error) {
	query := sqlBuilder.Select("COUNT(*)").From("games")
	if username != "" {
		query = query.Where(squirrel.Eq{"username": username})
	}
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
