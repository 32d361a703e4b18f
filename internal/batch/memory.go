package batch

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/mem"

	"github.com/iklasky/tactic-trainer/internal/logger"
)

// memoryWatchdog samples system memory and fires once when usage crosses the
// configured ceiling. One worker per engine process adds up quickly on small
// machines; the run is aborted rather than letting the OOM killer pick a
// victim.
type memoryWatchdog struct {
	maxPercent float64
	interval   time.Duration
	log        *logger.Logger
}

func newMemoryWatchdog(maxPercent float64, interval time.Duration) *memoryWatchdog {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &memoryWatchdog{
		maxPercent: maxPercent,
		interval:   interval,
		log:        logger.Default().WithPrefix("memwatch"),
	}
}

// watch blocks until the context ends or the ceiling is crossed. The used
// percentage is sent on out at most once.
func (w *memoryWatchdog) watch(ctx context.Context, out chan<- float64) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			vm, err := mem.VirtualMemoryWithContext(ctx)
			if err != nil {
				w.log.Warn("failed to sample memory: %v", err)
				continue
			}
			w.log.Debug("memory used: %.1f%%", vm.UsedPercent)
			if vm.UsedPercent >= w.maxPercent {
				select {
				case out <- vm.UsedPercent:
				default:
				}
				return
			}
		}
	}
}
