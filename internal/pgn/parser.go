package pgn

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/iklasky/tactic-trainer/internal/models"
)

var headerRe = regexp.MustCompile(`\[(\w+)\s+"([^"]*)"\]`)

// ParseHeaders extracts PGN header tags into a map.
func ParseHeaders(pgn string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(pgn, "\n") {
		if !strings.HasPrefix(line, "[") {
			continue
		}
		m := headerRe.FindStringSubmatch(line)
		if len(m) == 3 {
			out[m[1]] = m[2]
		}
	}
	return out
}

var gameIDRe = regexp.MustCompile(`.*/game/[^/]+/([0-9]+)`)

// ExtractGameID extracts the game ID from a chess.com game URL.
func ExtractGameID(url string) string {
	m := gameIDRe.FindStringSubmatch(url)
	if len(m) == 2 {
		return m[1]
	}
	return url
}

// PlayerColor matches the username (case-insensitively) against the White
// and Black header tags. ok is false when the player is not in the game.
func PlayerColor(headers map[string]string, username string) (color string, ok bool) {
	u := strings.ToLower(username)
	switch {
	case u == strings.ToLower(headers["White"]):
		return "white", true
	case u == strings.ToLower(headers["Black"]):
		return "black", true
	}
	return "", false
}

// DeriveMeta builds the per-game metadata block copied onto output records.
// fallbackURL takes precedence over the Site header when present, since the
// API payload URL is more stable than the PGN tag.
func DeriveMeta(headers map[string]string, username, playerColor, fallbackURL string) models.GameMeta {
	url := fallbackURL
	if url == "" {
		url = headers["Site"]
	}
	endTime := strings.TrimSpace(headers["UTCDate"] + " " + headers["UTCTime"])
	return models.GameMeta{
		Username:    username,
		GameURL:     url,
		WhitePlayer: headers["White"],
		BlackPlayer: headers["Black"],
		WhiteElo:    eloOrZero(headers["WhiteElo"]),
		BlackElo:    eloOrZero(headers["BlackElo"]),
		PlayerColor: playerColor,
		TimeControl: headers["TimeControl"],
		GameResult:  headers["Result"],
		EndTime:     endTime,
	}
}

// eloOrZero parses a rating header, treating missing or malformed tags as
// an unknown rating.
func eloOrZero(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}
