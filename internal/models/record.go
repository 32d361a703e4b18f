package models

// Opportunity kinds. "cp" is a centipawn-threshold opportunity, "mate" a
// forced mate created by the opponent's move.
const (
	KindCP   = "cp"
	KindMate = "mate"
)

// GameMeta carries the per-game context copied onto every record. It is
// derived from PGN headers and the game source payload; analysis logic
// never reads it.
type GameMeta struct {
	Username    string `json:"username"`
	GameURL     string `json:"game_url"`
	WhitePlayer string `json:"white_player"`
	BlackPlayer string `json:"black_player"`
	WhiteElo    int    `json:"white_elo"`
	BlackElo    int    `json:"black_elo"`
	PlayerColor string `json:"player_color"` // "white" | "black"
	TimeControl string `json:"time_control"`
	GameResult  string `json:"game_result"`
	EndTime     string `json:"end_time"`
}

// Opponent returns the name of the other player.
func (m GameMeta) Opponent() string {
	if m.PlayerColor == "white" {
		return m.BlackPlayer
	}
	return m.WhitePlayer
}

// OpportunityRecord is one detected opponent error together with the
// engine-simulated and actually-played conversion outcomes. Records are
// append-only: once emitted by the analyzer they are never mutated.
type OpportunityRecord struct {
	Username   string `json:"username"`
	GameURL    string `json:"game_url"`
	GameIndex  int    `json:"game_index"`
	EventIndex int    `json:"event_index"`

	Kind          string `json:"opportunity_kind"` // KindCP | KindMate
	OpportunityCP *int   `json:"opportunity_cp"`   // cp kind only, player POV
	MateIn        *int   `json:"mate_in"`          // mate kind only, plies
	TargetPawns   int    `json:"target_pawns"`

	EnginePly       int  `json:"t_turns_engine"`
	ConvertedActual bool `json:"converted_actual"`
	ActualPly       *int `json:"t_turns_actual"`

	OpponentMovePly int    `json:"opponent_move_ply_index"`
	OpponentMoveSAN string `json:"opponent_move_san"`
	OpponentMoveUCI string `json:"opponent_move_uci"`
	BestReplySAN    string `json:"best_reply_san"`
	BestReplyUCI    string `json:"best_reply_uci"`

	FENBefore string `json:"fen_before"`
	FENAfter  string `json:"fen_after"`

	PVMoves []string `json:"pv_moves"` // truncated to EnginePly
	PVEvals []int    `json:"pv_evals"` // cp per PV position, mate/terminal as 0

	EvalBefore int `json:"eval_before"` // player POV cp before the error

	WhitePlayer string `json:"white_player"`
	BlackPlayer string `json:"black_player"`
	PlayerColor string `json:"player_color"`
	TimeControl string `json:"time_control"`
	GameResult  string `json:"game_result"`
	EndTime     string `json:"end_time"`
}

// GameSummary is the per-game row persisted alongside records so that games
// yielding zero opportunities are still visible in reporting.
type GameSummary struct {
	Username      string `json:"username"`
	GameURL       string `json:"game_url"`
	GameIndex     int    `json:"game_index"`
	WhitePlayer   string `json:"white_player"`
	BlackPlayer   string `json:"black_player"`
	WhiteElo      int    `json:"white_elo"`
	BlackElo      int    `json:"black_elo"`
	PlayerColor   string `json:"player_color"`
	Opponent      string `json:"opponent"`
	TimeControl   string `json:"time_control"`
	GameResult    string `json:"game_result"`
	EndTime       string `json:"end_time"`
	Opportunities int    `json:"opportunities"`
}

// RecordFilter selects opportunity records for listing and counting.
type RecordFilter struct {
	Username    string
	Kind        string
	MinCP       int
	Converted   *bool
	TimeControl string
	Limit       int
	Offset      int
}

// PlayerSummary aggregates record counts per analyzed player.
type PlayerSummary struct {
	Username string `json:"username"`
	Games    int    `json:"games"`
	Records  int    `json:"records"`
	Missed   int    `json:"missed"`
}
