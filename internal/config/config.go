package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr    string
	DBPath  string
	CSVPath string

	StockfishPath    string
	StockfishDepth   int
	StockfishThreads int
	EvalCacheSize    int

	// Analysis thresholds. Read once at startup and treated as immutable
	// for the whole run.
	MinOpportunityCP int
	MaxHorizonPlies  int
	CPPerPawn        int
	PawnValue        int
	KnightValue      int
	BishopValue      int
	RookValue        int
	QueenValue       int

	Workers          int
	QueueSize        int
	MaxMemoryPercent float64
	MonitorInterval  time.Duration

	Usernames    []string
	GamesPerUser int

	LogLevel string
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the binaries still start when .env is absent.
	_ = godotenv.Load()

	return Config{
		Addr:    envOr("ADDR", ":8080"),
		DBPath:  envOr("DB_PATH", "file:tactictrainer.db"),
		CSVPath: envOr("CSV_PATH", "analysis_results.csv"),

		StockfishPath:    envOr("STOCKFISH_PATH", "stockfish"),
		StockfishDepth:   envIntOr("STOCKFISH_DEPTH", 20),
		StockfishThreads: envIntOr("STOCKFISH_THREADS", 1),
		EvalCacheSize:    envIntOr("EVAL_CACHE_SIZE", 100000),

		MinOpportunityCP: envIntOr("MIN_OPPORTUNITY_CP", 100),
		MaxHorizonPlies:  envIntOr("MAX_HORIZON_PLIES", 40),
		CPPerPawn:        envIntOr("CP_PER_PAWN", 100),
		PawnValue:        envIntOr("PAWN_VALUE", 1),
		KnightValue:      envIntOr("KNIGHT_VALUE", 3),
		BishopValue:      envIntOr("BISHOP_VALUE", 3),
		RookValue:        envIntOr("ROOK_VALUE", 5),
		QueenValue:       envIntOr("QUEEN_VALUE", 9),

		Workers:          envIntOr("WORKERS", 6),
		QueueSize:        envIntOr("QUEUE_SIZE", 512),
		MaxMemoryPercent: envFloatOr("MAX_MEMORY_PERCENT", 80),
		MonitorInterval:  envDurationOr("MONITOR_INTERVAL", 3*time.Second),

		Usernames:    envListOr("USERNAMES", nil),
		GamesPerUser: envIntOr("GAMES_PER_USER", 100),

		LogLevel: envOr("LOG_LEVEL", "INFO"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %g", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}

// envListOr parses a comma-separated list, dropping empty entries.
func envListOr(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
