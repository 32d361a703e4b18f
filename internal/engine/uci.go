package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/iklasky/tactic-trainer/internal/logger"
)

// EvalKind discriminates the two shapes an engine score can take.
type EvalKind int

const (
	// EvalCP is a centipawn score.
	EvalCP EvalKind = iota
	// EvalMate is a forced mate. MateIn is the ply count reported by the
	// engine; positive means the side to move delivers the mate.
	EvalMate
)

// Eval is the engine's judgement of a position, from the perspective of
// the side to move at the queried position. Consumers must switch on Kind;
// a mate is never a centipawn number.
type Eval struct {
	Kind   EvalKind
	CP     int
	MateIn int
}

func (e Eval) String() string {
	if e.Kind == EvalMate {
		return fmt.Sprintf("mate %d", e.MateIn)
	}
	return fmt.Sprintf("cp %d", e.CP)
}

// Oracle is the capability surface the analysis core needs from a position
// evaluator. Implementations are not safe for concurrent use; callers own
// exactly one oracle at a time.
type Oracle interface {
	Evaluate(ctx context.Context, fen string) (Eval, error)
	BestMove(ctx context.Context, fen string) (string, error)
}

// Config controls how the UCI subprocess is started.
type Config struct {
	Path    string
	Depth   int
	Threads int
}

// Engine wraps a long-lived UCI subprocess. One engine serves one caller;
// the mutex only guards against accidental reentrancy, not for sharing.
type Engine struct {
	cfg Config
	log *logger.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.Writer
	stdout *bufio.Reader
}

// New starts the engine process and completes the UCI handshake.
func New(cfg Config) (*Engine, error) {
	log := logger.Default().WithPrefix("engine")

	if cfg.Path == "" {
		cfg.Path = "stockfish"
	}
	if cfg.Depth <= 0 {
		cfg.Depth = 20
	}
	if cfg.Threads <= 0 {
		cfg.Threads = 1
	}

	log.Debug("starting engine: %s (depth=%d threads=%d)", cfg.Path, cfg.Depth, cfg.Threads)
	cmd := exec.Command(cfg.Path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		log:    log,
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}

	if err := cmd.Start(); err != nil {
		log.Error("failed to start engine: %v", err)
		return nil, err
	}
	if err := e.handshake(); err != nil {
		log.Error("UCI handshake failed: %v", err)
		_ = e.Close()
		return nil, err
	}

	log.Debug("engine ready")
	return e, nil
}

func (e *Engine) handshake() error {
	if err := e.send("uci"); err != nil {
		return err
	}
	if err := e.waitFor("uciok", 2*time.Second); err != nil {
		return err
	}
	if err := e.send(fmt.Sprintf("setoption name Threads value %d", e.cfg.Threads)); err != nil {
		return err
	}
	if err := e.send("isready"); err != nil {
		return err
	}
	return e.waitFor("readyok", 2*time.Second)
}

// Close quits the engine process.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd == nil {
		return nil
	}
	_ = e.send("quit")
	err := e.cmd.Wait()
	e.cmd = nil
	if err != nil {
		e.log.Debug("engine process exited: %v", err)
	}
	return err
}

// Evaluate runs a fixed-depth search on the position and returns its score.
func (e *Engine) Evaluate(ctx context.Context, fen string) (Eval, error) {
	eval, _, err := e.search(ctx, fen)
	return eval, err
}

// BestMove returns the engine's best move in UCI notation, or "" when the
// engine reports no move for the position.
func (e *Engine) BestMove(ctx context.Context, fen string) (string, error) {
	_, move, err := e.search(ctx, fen)
	return move, err
}

// search drives one go-depth request. The hash stays warm between calls on
// purpose: within a game the simulator queries closely related positions.
func (e *Engine) search(ctx context.Context, fen string) (Eval, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd == nil {
		return Eval{}, "", errors.New("engine closed")
	}
	if err := e.send("position fen " + fen); err != nil {
		return Eval{}, "", err
	}
	if err := e.send(fmt.Sprintf("go depth %d", e.cfg.Depth)); err != nil {
		return Eval{}, "", err
	}

	var (
		eval    Eval
		gotEval bool
	)
	deadline := time.Now().Add(30 * time.Second)
	for {
		if err := ctx.Err(); err != nil {
			return Eval{}, "", err
		}
		if time.Now().After(deadline) {
			return Eval{}, "", errors.New("engine search timeout")
		}
		line, err := e.stdout.ReadString('\n')
		if err != nil {
			return Eval{}, "", err
		}
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "info ") {
			if ev, ok := parseScore(line); ok {
				eval = ev
				gotEval = true
			}
			continue
		}
		if strings.HasPrefix(line, "bestmove") {
			parts := strings.Fields(line)
			move := ""
			if len(parts) >= 2 && parts[1] != "(none)" {
				move = parts[1]
			}
			if !gotEval {
				return Eval{}, move, errors.New("no score in engine output")
			}
			return eval, move, nil
		}
	}
}

// parseScore extracts a "score cp N" or "score mate N" token pair from a
// UCI info line. Both are from the side to move's perspective.
func parseScore(line string) (Eval, bool) {
	parts := strings.Fields(line)
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] != "score" {
			continue
		}
		v, err := strconv.Atoi(parts[i+2])
		if err != nil {
			return Eval{}, false
		}
		switch parts[i+1] {
		case "cp":
			return Eval{Kind: EvalCP, CP: v}, true
		case "mate":
			return Eval{Kind: EvalMate, MateIn: v}, true
		}
		return Eval{}, false
	}
	return Eval{}, false
}

func (e *Engine) send(cmd string) error {
	_, err := e.stdin.Write([]byte(cmd + "\n"))
	return err
}

func (e *Engine) waitFor(marker string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for %s", marker)
		}
		line, err := e.stdout.ReadString('\n')
		if err != nil {
			return err
		}
		if strings.Contains(line, marker) {
			return nil
		}
	}
}
