package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"

	"github.com/iklasky/tactic-trainer/internal/logger"
	"github.com/iklasky/tactic-trainer/internal/models"
	"github.com/iklasky/tactic-trainer/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var opportunityColumns = []string{
	"username", "game_url", "game_index", "event_index",
	"opportunity_kind", "opportunity_cp", "mate_in", "target_pawns",
	"t_turns_engine", "converted_actual", "t_turns_actual",
	"opponent_move_ply_index", "opponent_move_san", "opponent_move_uci",
	"best_reply_san", "best_reply_uci", "fen_before", "fen_after",
	"pv_moves", "pv_evals", "eval_before",
	"white_player", "black_player", "player_color",
	"time_control", "game_result", "end_time",
}

type opportunityRepository struct {
	db *sql.DB
}

// NewOpportunityRepository creates a new OpportunityRepository implementation
func NewOpportunityRepository(db *sql.DB) repository.OpportunityRepository {
	return &opportunityRepository{db: db}
}

// UpsertBatch inserts records in one transaction, skipping rows whose
// (username, game_url, event_index) key already exists. Returns the number
// of rows actually inserted, so re-runs over the same games are idempotent.
func (r *opportunityRepository) UpsertBatch(ctx context.Context, records []models.OpportunityRecord) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("opportunity_repo")
	if len(records) == 0 {
		return 0, nil
	}
	log.Debug("upserting %d records", len(records))

	inserted := 0
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		for _, rec := range records {
			query := sqlBuilder.Insert("opportunities").
				Columns(opportunityColumns...).
				Values(
					rec.Username, rec.GameURL, rec.GameIndex, rec.EventIndex,
					rec.Kind, rec.OpportunityCP, rec.MateIn, rec.TargetPawns,
					rec.EnginePly, rec.ConvertedActual, rec.ActualPly,
					rec.OpponentMovePly, rec.OpponentMoveSAN, rec.OpponentMoveUCI,
					rec.BestReplySAN, rec.BestReplyUCI, rec.FENBefore, rec.FENAfter,
					joinMoves(rec.PVMoves), joinEvals(rec.PVEvals), rec.EvalBefore,
					rec.WhitePlayer, rec.BlackPlayer, rec.PlayerColor,
					rec.TimeControl, rec.GameResult, rec.EndTime,
				).
				Suffix("ON CONFLICT (username, game_url, event_index) DO NOTHING")

			sqlStr, args, err := query.ToSql()
			if err != nil {
				return err
			}
			res, err := tx.ExecContext(ctx, sqlStr, args...)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to upsert records: %v", err)
		return 0, err
	}
	log.Debug("upserted %d records, %d new", len(records), inserted)
	return inserted, nil
}

func (r *opportunityRepository) List(ctx context.Context, filter models.RecordFilter) ([]models.OpportunityRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("opportunity_repo")
	log.Debug("listing records: username=%s, kind=%s, min_cp=%d", filter.Username, filter.Kind, filter.MinCP)

	query := applyFilter(sqlBuilder.Select(opportunityColumns...).From("opportunities"), filter).
		OrderBy("username", "game_url", "event_index")

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list records: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.OpportunityRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			log.Error("failed to scan record row: %v", err)
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *opportunityRepository) Count(ctx context.Context, filter models.RecordFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("opportunity_repo")

	query := applyFilter(sqlBuilder.Select("COUNT(*)").From("opportunities"), filter)
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count records: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *opportunityRepository) Players(ctx context.Context) ([]models.PlayerSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("opportunity_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT username,
       COUNT(DISTINCT game_url),
       COUNT(*),
       SUM(CASE WHEN converted_actual = 0 THEN 1 ELSE 0 END)
FROM opportunities
GROUP BY username
ORDER BY username
`)
	if err != nil {
		log.Error("failed to query player summaries: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.PlayerSummary
	for rows.Next() {
		var p models.PlayerSummary
		if err := rows.Scan(&p.Username, &p.Games, &p.Records, &p.Missed); err != nil {
			log.Error("failed to scan player summary: %v", err)
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// applyFilter adds the dynamic WHERE clauses shared by List and Count.
func applyFilter(query squirrel.SelectBuilder, filter models.RecordFilter) squirrel.SelectBuilder {
	if filter.Username != "" {
		query = query.Where(squirrel.Eq{"username": filter.Username})
	}
	if filter.Kind != "" {
		query = query.Where(squirrel.Eq{"opportunity_kind": filter.Kind})
	}
	if filter.MinCP > 0 {
		query = query.Where(squirrel.GtOrEq{"opportunity_cp": filter.MinCP})
	}
	if filter.Converted != nil {
		query = query.Where(squirrel.Eq{"converted_actual": *filter.Converted})
	}
	if filter.TimeControl != "" {
		query = query.Where(squirrel.Eq{"time_control": filter.TimeControl})
	}
	return query
}

func scanRecord(rows *sql.Rows) (models.OpportunityRecord, error) {
	var rec models.OpportunityRecord
	var pvMoves, pvEvals string
	err := rows.Scan(
		&rec.Username, &rec.GameURL, &rec.GameIndex, &rec.EventIndex,
		&rec.Kind, &rec.OpportunityCP, &rec.MateIn, &rec.TargetPawns,
		&rec.EnginePly, &rec.ConvertedActual, &rec.ActualPly,
		&rec.OpponentMovePly, &rec.OpponentMoveSAN, &rec.OpponentMoveUCI,
		&rec.BestReplySAN, &rec.BestReplyUCI, &rec.FENBefore, &rec.FENAfter,
		&pvMoves, &pvEvals, &rec.EvalBefore,
		&rec.WhitePlayer, &rec.BlackPlayer, &rec.PlayerColor,
		&rec.TimeControl, &rec.GameResult, &rec.EndTime,
	)
	if err != nil {
		return rec, err
	}
	rec.PVMoves = splitMoves(pvMoves)
	rec.PVEvals = splitEvals(pvEvals)
	return rec, nil
}
