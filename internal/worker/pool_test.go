package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iklasky/tactic-trainer/internal/engine"
	"github.com/iklasky/tactic-trainer/internal/worker"
)

// stubOracle records which jobs ran on it so tests can assert affinity.
type stubOracle struct {
	mu     sync.Mutex
	jobs   int
	closed bool
}

func (o *stubOracle) Evaluate(_ context.Context, _ string) (engine.Eval, error) {
	return engine.Eval{Kind: engine.EvalCP}, nil
}

func (o *stubOracle) BestMove(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (o *stubOracle) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	return nil
}

type recordingJob struct {
	oracles chan engine.Oracle
}

func (j *recordingJob) Name() string { return "recording" }

func (j *recordingJob) Run(_ context.Context, oracle engine.Oracle) error {
	if so, ok := oracle.(*stubOracle); ok {
		so.mu.Lock()
		so.jobs++
		so.mu.Unlock()
	}
	j.oracles <- oracle
	return nil
}

func TestPool_OraclePerWorker(t *testing.T) {
	var created []*stubOracle
	var mu sync.Mutex
	factory := func() (engine.Oracle, error) {
		o := &stubOracle{}
		mu.Lock()
		created = append(created, o)
		mu.Unlock()
		return o, nil
	}

	const jobs = 12
	oracles := make(chan engine.Oracle, jobs)
	pool := worker.NewPool(3, jobs, factory)
	require.Equal(t, 3, pool.Start(context.Background()))

	for i := 0; i < jobs; i++ {
		pool.Submit(&recordingJob{oracles: oracles})
	}
	pool.Drain()

	close(oracles)
	seen := map[engine.Oracle]bool{}
	count := 0
	for o := range oracles {
		seen[o] = true
		count++
	}
	require.Equal(t, jobs, count, "every job must have run")
	assert.LessOrEqual(t, len(seen), 3, "jobs never run on an oracle outside the pool's workers")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, created, 3, "one oracle per worker")
	for _, o := range created {
		o.mu.Lock()
		assert.True(t, o.closed, "oracles are closed on shutdown")
		o.mu.Unlock()
	}
}

func TestPool_FactoryFailureDoesNotBlockOthers(t *testing.T) {
	var built int32
	factory := func() (engine.Oracle, error) {
		if atomic.AddInt32(&built, 1) == 1 {
			return nil, errors.New("spawn failed")
		}
		return &stubOracle{}, nil
	}

	oracles := make(chan engine.Oracle, 4)
	pool := worker.NewPool(2, 4, factory)
	require.Equal(t, 1, pool.Start(context.Background()), "surviving worker is reported")

	for i := 0; i < 4; i++ {
		pool.Submit(&recordingJob{oracles: oracles})
	}
	pool.Drain()

	close(oracles)
	count := 0
	for range oracles {
		count++
	}
	assert.Equal(t, 4, count, "surviving worker drains the whole queue")
}

func TestPool_StartReportsZeroWhenNoOracleComesUp(t *testing.T) {
	factory := func() (engine.Oracle, error) {
		return nil, errors.New("spawn failed")
	}

	pool := worker.NewPool(2, 4, factory)
	assert.Equal(t, 0, pool.Start(context.Background()))
	pool.Drain()
}
