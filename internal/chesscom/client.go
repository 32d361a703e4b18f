package chesscom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iklasky/tactic-trainer/internal/logger"
)

// Chess.com asks published API consumers to identify themselves.
const userAgent = "tactic-trainer/1.0 (github.com/iklasky/tactic-trainer)"

type Client struct {
	httpClient *http.Client
	log        *logger.Logger
}

func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logger.Default().WithPrefix("chesscom"),
	}
}

type archivesResp struct {
	Archives []string `json:"archives"`
}

type MonthlyGame struct {
	URL       string `json:"url"`
	PGN       string `json:"pgn"`
	TimeClass string `json:"time_class"`
	EndTime   int64  `json:"end_time"`
	White     Player `json:"white"`
	Black     Player `json:"black"`
}

type Player struct {
	Username string `json:"username"`
	Result   string `json:"result"`
}

func (c *Client) FetchArchives(ctx context.Context, username string) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("chesscom").WithField("username", username)
	url := fmt.Sprintf("https://api.chess.com/pub/player/%s/games/archives", username)

	log.Debug("fetching archives from: %s", url)
	start := time.Now()

	var out archivesResp
	if err := c.getJSON(ctx, url, &out); err != nil {
		log.Error("failed to fetch archives: %v", err)
		return nil, err
	}

	log.Info("fetched %d archives for user %s in %v", len(out.Archives), username, time.Since(start))
	return out.Archives, nil
}

func (c *Client) FetchMonthly(ctx context.Context, archiveURL string) ([]MonthlyGame, error) {
	log := logger.FromContext(ctx).WithPrefix("chesscom").WithField("archive_url", archiveURL)

	log.Debug("fetching monthly games")
	start := time.Now()

	var payload struct {
		Games []MonthlyGame `json:"games"`
	}
	if err := c.getJSON(ctx, archiveURL, &payload); err != nil {
		log.Error("failed to fetch monthly games: %v", err)
		return nil, err
	}

	log.Info("fetched %d games from archive in %v", len(payload.Games), time.Since(start))
	return payload.Games, nil
}

// FetchRecent walks the monthly archives newest-first and returns up to n of
// the player's most recent games, newest first.
func (c *Client) FetchRecent(ctx context.Context, username string, n int) ([]MonthlyGame, error) {
	log := logger.FromContext(ctx).WithPrefix("chesscom").WithField("username", username)

	archives, err := c.FetchArchives(ctx, username)
	if err != nil {
		return nil, err
	}

	var out []MonthlyGame
	for i := len(archives) - 1; i >= 0 && len(out) < n; i-- {
		games, err := c.FetchMonthly(ctx, archives[i])
		if err != nil {
			return nil, err
		}
		// Archive payloads are oldest-first within the month.
		for j := len(games) - 1; j >= 0 && len(out) < n; j-- {
			if games[j].PGN == "" {
				continue
			}
			out = append(out, games[j])
		}
	}

	log.Info("collected %d recent games for %s", len(out), username)
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
