package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/llmrelay/chat-service/internal/api/metrics"
	"github.com/llmrelay/chat-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Flusher persists session balances to the credential store through a fixed
// set of workers, sharded by identity so writes for one user stay ordered.
// A failed write is logged and dropped; the in-memory balance stays
// authoritative until the next flush for that user lands.
type Flusher struct {
	workers []chan ports.FlushInput
	repo    ports.UserRepository
	log     zerolog.Logger
}

// NewFlusher creates a Flusher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewFlusher(numWorkers int, repo ports.UserRepository, log zerolog.Logger) *Flusher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	f := &Flusher{
		workers: make([]chan ports.FlushInput, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range f.workers {
		f.workers[i] = make(chan ports.FlushInput, channelBuffer)
	}
	return f
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (f *Flusher) Start(ctx context.Context) {
	for i, ch := range f.workers {
		go f.runWorker(ctx, i, ch)
	}
}

// Enqueue schedules one balance write. Non-blocking up to channelBuffer
// capacity per shard.
func (f *Flusher) Enqueue(in ports.FlushInput) {
	f.workers[f.shardIndex(in.Identity.String())] <- in
}

// shardIndex maps an identity deterministically to a worker index.
func (f *Flusher) shardIndex(identity string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identity))
	return int(h.Sum32()) % len(f.workers)
}

func (f *Flusher) runWorker(ctx context.Context, id int, ch <-chan ports.FlushInput) {
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-ch:
			if !ok {
				return
			}
			if err := f.repo.UpdateBalance(ctx, in.Identity, in.Credit, in.Rights); err != nil {
				metrics.BalanceFlushErrorsTotal.Inc()
				f.log.Error().Err(err).
					Str("identity", in.Identity.String()).
					Float64("credit", in.Credit).
					Int("worker_id", id).
					Msg("balance flush failed")
			}
		}
	}
}
