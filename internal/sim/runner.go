// Package sim runs operation scripts against an in-memory pool and streams
// the resulting logs, events and rejections to storage.
package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"ammPool/internal/evmlog"
	"ammPool/internal/indexer"
	"ammPool/internal/metrics"
	"ammPool/internal/model"
	"ammPool/internal/storage"
)

// Config holds runtime settings for a simulation run. Operation i (zero
// based) runs in block i+1 at StartTime + i*BlockInterval.
type Config struct {
	ChainID           uint64
	PoolAddress       common.Address
	TokenA            common.Address
	TokenB            common.Address
	TokenAMeta        model.TokenMeta
	TokenBMeta        model.TokenMeta
	StartTime         uint64
	BlockInterval     uint64
	BatchSize         uint64
	CheckpointPath    string
	CheckpointEnabled bool
	StopOnError       bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// StateStorage receives the pool state at the end of every batch.
type StateStorage interface {
	UpsertPoolState(ctx context.Context, chainID uint64, blockNumber uint64, state model.PoolState) error
}

// Sinks are the outputs of a run. Any of them may be nil.
type Sinks struct {
	Logs   storage.Storage
	Events storage.EventStorage
	Errors storage.ErrorStorage
	State  StateStorage
}

// Summary describes a finished run.
type Summary struct {
	Applied  uint64
	Rejected uint64
	Replayed uint64
	Events   uint64
	State    model.PoolState
}

// Runner applies a script to a World batch by batch.
type Runner struct {
	cfg        Config
	sinks      Sinks
	world      *World
	collector  *collector
	encoder    *evmlog.Encoder
	checkpoint *indexer.CheckpointStore
	metrics    *metrics.PoolMetrics
	logger     *zap.Logger
}

func NewRunner(cfg Config, sinks Sinks, m *metrics.PoolMetrics, logger *zap.Logger) (*Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if cfg.BlockInterval == 0 {
		cfg.BlockInterval = 1
	}

	events := &collector{chainID: cfg.ChainID}
	// metrics are attached once replay is done, see Run
	world, err := NewWorld(cfg, events, nil, logger)
	if err != nil {
		return nil, err
	}
	encoder, err := evmlog.NewEncoder()
	if err != nil {
		return nil, err
	}

	return &Runner{
		cfg:        cfg,
		sinks:      sinks,
		world:      world,
		collector:  events,
		encoder:    encoder,
		checkpoint: indexer.NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
		metrics:    m,
		logger:     logger,
	}, nil
}

// World exposes the simulated chain.
func (r *Runner) World() *World {
	return r.world
}

// Run applies ops. With a checkpoint, already processed operations are
// replayed silently and the resulting state must equal the saved one.
// Metrics count only the operations applied by this run.
func (r *Runner) Run(ctx context.Context, ops []model.Operation) (Summary, error) {
	var summary Summary
	if len(ops) == 0 {
		r.logger.Info("empty script")
		summary.State = r.world.Pool.State()
		return summary, nil
	}

	from := uint64(1)
	to := uint64(len(ops))

	cp, ok, err := r.checkpoint.Load()
	if err != nil {
		return summary, err
	}
	if ok && cp.LastProcessed > 0 {
		if cp.LastProcessed > to {
			return summary, fmt.Errorf("checkpoint at operation %d beyond script length %d", cp.LastProcessed, to)
		}
		if err := r.replay(ops[:cp.LastProcessed], cp.Pool); err != nil {
			return summary, err
		}
		summary.Replayed = cp.LastProcessed
		from = cp.LastProcessed + 1
		r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", cp.LastProcessed), zap.Uint64("from", from))
	}
	r.world.Pool.SetMetrics(r.metrics)

	if from > to {
		r.logger.Info("nothing to run", zap.Uint64("from", from), zap.Uint64("to", to))
		summary.State = r.world.Pool.State()
		return summary, nil
	}

	ranges, err := indexer.SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return summary, err
	}

	r.collector.enabled = true
	defer func() { r.collector.enabled = false }()

	for _, batch := range ranges {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		var rejected []model.OperationError
		var stop error
		for block := batch.From; block <= batch.To; block++ {
			index := block - 1
			op := ops[index]
			raw, err := json.Marshal(op)
			if err != nil {
				return summary, fmt.Errorf("marshal operation %d: %w", index, err)
			}
			r.collector.begin(block, r.blockTime(index), txHash(index, raw))

			if err := r.world.Apply(op); err != nil {
				opErr := operationError(index, block, op, err)
				rejected = append(rejected, opErr)
				r.logger.Debug("operation rejected",
					zap.Uint64("index", index),
					zap.String("op", op.Op),
					zap.String("kind", opErr.Kind),
					zap.Error(err),
				)
				if r.cfg.StopOnError {
					stop = fmt.Errorf("operation %d (%s): %w", index, op.Op, err)
					batch.To = block
					break
				}
				continue
			}
			summary.Applied++
		}

		events := r.collector.drain()
		if err := r.flush(ctx, batch, events, rejected); err != nil {
			return summary, err
		}
		summary.Rejected += uint64(len(rejected))
		summary.Events += uint64(len(events))

		r.logger.Info("batch complete",
			zap.Uint64("from", batch.From),
			zap.Uint64("to", batch.To),
			zap.Int("events", len(events)),
			zap.Int("rejected", len(rejected)),
		)
		if stop != nil {
			summary.State = r.world.Pool.State()
			return summary, stop
		}
	}

	summary.State = r.world.Pool.State()
	return summary, nil
}

func (r *Runner) replay(ops []model.Operation, want *model.PoolState) error {
	for _, op := range ops {
		_ = r.world.Apply(op)
	}
	if want == nil {
		return nil
	}
	if got := r.world.Pool.State(); got != *want {
		return ErrStateMismatch.Wrapf("after %d operations: got %+v, checkpoint %+v", len(ops), got, *want)
	}
	return nil
}

// flush writes one batch to every sink and then advances the checkpoint.
func (r *Runner) flush(ctx context.Context, batch indexer.BlockRange, events []model.TypedEvent, rejected []model.OperationError) error {
	ingestedAt := time.Now().UTC().Format(time.RFC3339Nano)
	logs := make([]model.LogRecord, 0, len(events))
	for i := range events {
		record, err := r.encoder.Encode(events[i])
		if err != nil {
			return fmt.Errorf("encode %s at block %d: %w", events[i].EventName, events[i].BlockNumber, err)
		}
		record.IngestedAt = ingestedAt
		events[i].Raw = &model.RawLogRef{Topic0: record.Topic0(), Data: record.Data}
		logs = append(logs, record)
	}

	if r.sinks.Logs != nil {
		if err := r.retry(ctx, "logs", func(context.Context) error { return r.sinks.Logs.PutLogBatch(logs) }); err != nil {
			return fmt.Errorf("store logs: %w", err)
		}
	}
	if r.sinks.Events != nil {
		if err := r.retry(ctx, "events", func(context.Context) error { return r.sinks.Events.PutEventBatch(events) }); err != nil {
			return fmt.Errorf("store events: %w", err)
		}
	}
	if r.sinks.Errors != nil && len(rejected) > 0 {
		if err := r.retry(ctx, "errors", func(context.Context) error { return r.sinks.Errors.PutErrorBatch(rejected) }); err != nil {
			return fmt.Errorf("store errors: %w", err)
		}
	}

	state := r.world.Pool.State()
	if r.sinks.State != nil {
		err := r.retry(ctx, "pool state", func(ctx context.Context) error {
			return r.sinks.State.UpsertPoolState(ctx, r.cfg.ChainID, batch.To, state)
		})
		if err != nil {
			return fmt.Errorf("store pool state: %w", err)
		}
	}

	return r.checkpoint.Save(batch.To, &state)
}

func (r *Runner) retry(ctx context.Context, sink string, fn func(context.Context) error) error {
	return indexer.WithRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil {
			r.logger.Warn("sink write failed", zap.String("sink", sink), zap.Error(err))
		}
		return err
	})
}

func (r *Runner) blockTime(index uint64) uint64 {
	return r.cfg.StartTime + index*r.cfg.BlockInterval
}
