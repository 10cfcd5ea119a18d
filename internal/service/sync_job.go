package service

import (
	"context"
	"sync"
	"time"

	"github.com/avelichko/revise/internal/logger"
)

const defaultSyncInterval = 5 * time.Minute

type syncJob struct {
	resources ResourceService
	log       *logger.Logger
	trigger   chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates a syncJob that runs the full sync pass and replays
// pending changes on a ticker. The job is idle until Start is called.
func NewSyncJob(resources ResourceService, log *logger.Logger) SyncJob {
	return &syncJob{
		resources: resources,
		log:       log,
		trigger:   make(chan struct{}, 1),
	}
}

// Start implements [SyncJob]. It stops any previously running job, then
// launches a background goroutine that runs a pass every interval and on each
// Trigger signal. The goroutine exits when ctx is cancelled or Stop is called.
func (j *syncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSyncInterval
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.runPass(jobCtx)
			case <-j.trigger:
				j.runPass(jobCtx)
			}
		}
	}()
}

// Trigger implements [SyncJob].
func (j *syncJob) Trigger() {
	select {
	case j.trigger <- struct{}{}:
	default:
	}
}

// Stop implements [SyncJob]. It cancels the background goroutine's context
// and blocks until the goroutine has fully exited. Safe to call when the job
// is not running (no-op in that case).
func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

func (j *syncJob) runPass(ctx context.Context) {
	if err := j.resources.Sync(ctx); err != nil {
		j.log.Warn().Err(err).Msg("background sync pass failed")
	}
	if remaining, _ := j.resources.SyncPendingChanges(ctx); remaining > 0 {
		j.log.Debug().Int("remaining", remaining).Msg("pending changes still queued")
	}
}
