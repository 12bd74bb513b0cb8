package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/dskvich/trigger-telegram-bot/pkg/logger"
)

type Worker interface {
	Name() string
	Run(ctx context.Context) error
}

type Group []Worker

// Run starts every worker and blocks until ctx is done or one of them returns.
// A worker that fails or returns early cancels the rest; all errors are returned together.
func (g Group) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result *multierror.Error
	)
	wg.Add(len(g))
	for _, w := range g {
		go func(w Worker) {
			defer wg.Done()

			err := w.Run(runCtx)
			switch {
			case err != nil:
				slog.Error("Worker failed, stopping group", "name", w.Name(), logger.Err(err))
				mu.Lock()
				result = multierror.Append(result, fmt.Errorf("%s: %w", w.Name(), err))
				mu.Unlock()
			case runCtx.Err() == nil:
				slog.Warn("Worker exited early, stopping group", "name", w.Name())
			}
			cancelFn()
		}(w)
	}

	wg.Wait()

	return result.ErrorOrNil()
}
