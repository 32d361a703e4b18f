package sqlite

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/iklasky/tactic-trainer/internal/logger"
)

// Helper functions shared across repository implementations

func tx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("repo")
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	log.Debug("transaction committed")
	return nil
}

// joinMoves and joinEvals flatten PV slices into the pipe-separated form the
// schema stores; splitMoves and splitEvals invert them.

func joinMoves(moves []string) string {
	return strings.Join(moves, "|")
}

func splitMoves(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "|")
}

func joinEvals(evals []int) string {
	parts := make([]string, len(evals))
	for i, e := range evals {
		parts[i] = strconv.Itoa(e)
	}
	return strings.Join(parts, "|")
}

func splitEvals(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
