package batch

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/iklasky/tactic-trainer/internal/models"
)

var csvHeader = []string{
	"username", "game_url", "game_index", "event_index",
	"opportunity_kind", "opportunity_cp", "mate_in", "target_pawns",
	"t_turns_engine", "converted_actual", "t_turns_actual",
	"opponent_move_ply_index", "opponent_move_san", "opponent_move_uci",
	"best_reply_san", "best_reply_uci", "fen_before", "fen_after",
	"pv_moves", "pv_evals", "eval_before",
	"white_player", "black_player", "player_color",
	"time_control", "game_result", "end_time",
}

// CSVWriter appends opportunity records to a flat file alongside the
// database. The file is truncated at open and flushed after every game so a
// killed run still leaves usable output.
type CSVWriter struct {
	f *os.File
	w *csv.Writer
}

func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, err
	}
	return &CSVWriter{f: f, w: w}, nil
}

func (c *CSVWriter) WriteRecords(records []models.OpportunityRecord) error {
	for _, rec := range records {
		if err := c.w.Write(csvRow(rec)); err != nil {
			return err
		}
	}
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.f.Close()
		return err
	}
	return c.f.Close()
}

func csvRow(rec models.OpportunityRecord) []string {
	evals := make([]string, len(rec.PVEvals))
	for i, e := range rec.PVEvals {
		evals[i] = strconv.Itoa(e)
	}
	return []string{
		rec.Username, rec.GameURL, strconv.Itoa(rec.GameIndex), strconv.Itoa(rec.EventIndex),
		rec.Kind, intPtrField(rec.OpportunityCP), intPtrField(rec.MateIn), strconv.Itoa(rec.TargetPawns),
		strconv.Itoa(rec.EnginePly), strconv.FormatBool(rec.ConvertedActual), intPtrField(rec.ActualPly),
		strconv.Itoa(rec.OpponentMovePly), rec.OpponentMoveSAN, rec.OpponentMoveUCI,
		rec.BestReplySAN, rec.BestReplyUCI, rec.FENBefore, rec.FENAfter,
		strings.Join(rec.PVMoves, "|"), strings.Join(evals, "|"), strconv.Itoa(rec.EvalBefore),
		rec.WhitePlayer, rec.BlackPlayer, rec.PlayerColor,
		rec.TimeControl, rec.GameResult, rec.EndTime,
	}
}

func intPtrField(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
