package batch

import (
	"context"
	"errors"
	"time"

	"github.com/iklasky/tactic-trainer/internal/analysis"
	"github.com/iklasky/tactic-trainer/internal/chesscom"
	"github.com/iklasky/tactic-trainer/internal/logger"
	"github.com/iklasky/tactic-trainer/internal/models"
	"github.com/iklasky/tactic-trainer/internal/repository"
	"github.com/iklasky/tactic-trainer/internal/worker"
)

// ErrMemoryPressure is returned when the watchdog aborts a run. Callers map
// it to a distinct exit code so schedulers can tell "crashed" from "killed
// itself before the OOM killer did".
var ErrMemoryPressure = errors.New("memory pressure limit exceeded")

// ErrNoOracle is returned when not a single worker could start its engine,
// which almost always means a bad engine path in the environment. Queuing
// work with nobody to run it would block forever.
var ErrNoOracle = errors.New("no worker could start an engine")

// Runner fans analyzed games out over a worker pool and funnels every result
// through a single aggregator goroutine, which is the only writer to the
// database and the CSV file.
type Runner struct {
	Client        chesscom.ClientInterface
	Opportunities repository.OpportunityRepository
	Games         repository.GameRepository
	CSV           *CSVWriter

	Params       analysis.Params
	Factory      worker.Factory
	Workers      int
	QueueSize    int
	Usernames    []string
	GamesPerUser int

	MaxMemoryPercent float64
	MonitorInterval  time.Duration
}

type task struct {
	job  *worker.AnalyzeGameJob
	game chesscom.MonthlyGame
}

// Run fetches the configured players' recent games, analyzes them all, and
// persists the results. Failed games are logged and skipped; there are no
// retries.
func (r *Runner) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("batch")
	start := time.Now()

	tasks, err := r.collectTasks(ctx)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		log.Info("no games to analyze")
		return nil
	}
	log.Info("analyzing %d games with %d workers", len(tasks), r.Workers)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pressure := make(chan float64, 1)
	if r.MaxMemoryPercent > 0 {
		go newMemoryWatchdog(r.MaxMemoryPercent, r.MonitorInterval).watch(runCtx, pressure)
	}

	results := make(chan worker.GameResult, len(tasks))
	queue := r.QueueSize
	if queue < len(tasks) {
		queue = len(tasks)
	}
	pool := worker.NewPool(r.Workers, queue, r.Factory)
	if pool.Start(runCtx) == 0 {
		pool.Drain()
		return ErrNoOracle
	}

	byURL := make(map[string]chesscom.MonthlyGame, len(tasks))
	for _, t := range tasks {
		t.job.Results = results
		byURL[t.job.GameURL] = t.game
		pool.Submit(t.job)
	}

	var games, records, inserted int
	for done := 0; done < len(tasks); done++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case used := <-pressure:
			log.Error("memory usage %.1f%% exceeded limit %.1f%%, aborting run", used, r.MaxMemoryPercent)
			cancel()
			return ErrMemoryPressure
		case res := <-results:
			n, err := r.persist(ctx, res, byURL[res.GameURL])
			if err != nil {
				log.Error("failed to persist game %s: %v", res.GameURL, err)
				continue
			}
			games++
			records += len(res.Records)
			inserted += n
		}
	}
	pool.Drain()

	log.Info("batch complete: %d games, %d records (%d new) in %v", games, records, inserted, time.Since(start))
	return nil
}

func (r *Runner) collectTasks(ctx context.Context) ([]task, error) {
	log := logger.FromContext(ctx).WithPrefix("batch")

	var tasks []task
	for _, username := range r.Usernames {
		games, err := r.Client.FetchRecent(ctx, username, r.GamesPerUser)
		if err != nil {
			return nil, err
		}
		log.Info("queued %d games for %s", len(games), username)
		for i, g := range games {
			tasks = append(tasks, task{
				job: &worker.AnalyzeGameJob{
					Params:    r.Params,
					Username:  username,
					GameURL:   g.URL,
					PGN:       g.PGN,
					GameIndex: i,
				},
				game: g,
			})
		}
	}
	return tasks, nil
}

// persist is the aggregator's write path: one game summary upsert, one
// record batch, one CSV append. Returns the number of newly inserted
// records.
func (r *Runner) persist(ctx context.Context, res worker.GameResult, game chesscom.MonthlyGame) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("batch")

	if res.Err != nil {
		log.Warn("game %s failed analysis: %v", res.GameURL, res.Err)
		return 0, nil
	}

	summary := r.summarize(res, game)
	if err := r.Games.Upsert(ctx, summary); err != nil {
		return 0, err
	}
	if len(res.Records) == 0 {
		return 0, nil
	}

	inserted, err := r.Opportunities.UpsertBatch(ctx, res.Records)
	if err != nil {
		return 0, err
	}
	if r.CSV != nil {
		if err := r.CSV.WriteRecords(res.Records); err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}

func (r *Runner) summarize(res worker.GameResult, game chesscom.MonthlyGame) models.GameSummary {
	meta := res.Meta
	if meta.PlayerColor == "" {
		// PGN headers did not place the player; fall back to the API
		// payload's color assignment.
		playedAs, _, result := chesscom.DeriveResult(res.Username, game)
		meta.PlayerColor = playedAs
		meta.WhitePlayer = game.White.Username
		meta.BlackPlayer = game.Black.Username
		if meta.GameResult == "" {
			meta.GameResult = result
		}
	}
	return models.GameSummary{
		Username:      res.Username,
		GameURL:       res.GameURL,
		GameIndex:     res.GameIndex,
		WhitePlayer:   meta.WhitePlayer,
		BlackPlayer:   meta.BlackPlayer,
		WhiteElo:      meta.WhiteElo,
		BlackElo:      meta.BlackElo,
		PlayerColor:   meta.PlayerColor,
		Opponent:      meta.Opponent(),
		TimeControl:   meta.TimeControl,
		GameResult:    meta.GameResult,
		EndTime:       meta.EndTime,
		Opportunities: len(res.Records),
	}
}
