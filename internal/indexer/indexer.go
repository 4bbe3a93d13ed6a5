// Package indexer implements the Indexer (component C, spec.md §4.2): an
// incremental, resumable consumer that keeps the Secondary Store consistent
// with the canonical chain via catch-up scans, steady-state event
// consumption, and reorg rollback.
package indexer

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/dxpool/hns-backend/internal/chainclient"
	"github.com/dxpool/hns-backend/internal/logger"
	"github.com/dxpool/hns-backend/internal/logs"
	"github.com/dxpool/hns-backend/internal/model"
	"github.com/dxpool/hns-backend/internal/panics"
	"github.com/dxpool/hns-backend/internal/store"
)

// Indexer keeps the Secondary Store consistent with the upstream chain
// (spec.md §4.2). A single mutex (mu) serializes catch-up scans, per-block
// application, and rollback (spec.md §5 "Mutual exclusion"); a connect
// event that can't acquire mu sets the pending flag rather than blocking,
// so the indexer never queues events (spec.md §5 "Backpressure").
type Indexer struct {
	client chainclient.Client
	store  store.Store
	pools  *model.PoolTable
	params model.ConsensusParams
	log    *logs.Logger
	spawn  func(func())

	mu      sync.Mutex
	pending atomic.Bool

	// errCh carries indexer-internal errors to anyone observing the
	// indexer (spec.md §7 "Indexer errors are logged and emitted on an
	// error channel; they do not tear down the process").
	errCh chan error
}

// New constructs an Indexer. pools and params are passed by construction
// (spec.md §9 "no process-wide mutable singletons").
func New(client chainclient.Client, st store.Store, pools *model.PoolTable, params model.ConsensusParams) *Indexer {
	log := logger.Get(logger.SubsystemIndexer)
	return &Indexer{
		client: client,
		store:  st,
		pools:  pools,
		params: params,
		log:    log,
		spawn:  panics.GoroutineWrapperFunc(log),
		errCh:  make(chan error, 64),
	}
}

// Errors returns the channel indexer-internal errors are published on.
func (ix *Indexer) Errors() <-chan error { return ix.errCh }

func (ix *Indexer) reportError(err error) {
	ix.log.Errorf("%+v", err)
	select {
	case ix.errCh <- err:
	default:
		// errCh is a bounded buffer of "recent errors for observability";
		// dropping the oldest-first would need a ring buffer, so under
		// sustained back-pressure we just drop the newest rather than
		// block the indexer loop on a slow consumer.
	}
}

// Start runs the initial catch-up scan, then consumes the chain client's
// event stream until ctx is canceled. It returns once the initial scan and
// event-subscription setup complete; ongoing work continues on a
// panic-safe background goroutine (spec.md §4.2).
func (ix *Indexer) Start(ctx context.Context) error {
	events, err := ix.client.Subscribe(ctx)
	if err != nil {
		return errors.Wrap(err, "subscribing to chain client events")
	}

	ix.triggerScan(ctx)

	ix.spawn(func() {
		ix.consumeEvents(ctx, events)
	})
	return nil
}

func (ix *Indexer) consumeEvents(ctx context.Context, events <-chan chainclient.Event) {
	for ev := range events {
		switch ev.Kind {
		case chainclient.EventConnect:
			ix.log.Debugf("chain client connected")
		case chainclient.EventBlockConnect:
			ix.triggerScan(ctx)
		case chainclient.EventChainReset:
			ix.triggerReset(ctx, ev.Entry.Height)
		case chainclient.EventError:
			ix.reportError(errors.Wrap(ev.Err, "chain client reported an error"))
		}
	}
}

// triggerScan acquires the index mutex and scans forward to the chain
// tip, draining any connect events that arrive while the scan is running
// (spec.md §4.2 "Concurrency discipline"). If the mutex is already held
// (a scan or rollback is in progress), it sets the pending flag and
// returns immediately rather than blocking.
func (ix *Indexer) triggerScan(ctx context.Context) {
	if !ix.mu.TryLock() {
		ix.pending.Store(true)
		return
	}
	defer ix.mu.Unlock()
	ix.scanLocked(ctx)
}

// scanLocked must be called with mu held. It scans from H+1 to the current
// tip (from genesis when no block is indexed yet), then re-scans if a connect event set the pending flag while this
// scan was running, looping until a pass with no pending events lands.
func (ix *Indexer) scanLocked(ctx context.Context) {
	for {
		ix.pending.Store(false)

		head, err := ix.store.MaxBlockHeight(ctx)
		if err != nil {
			ix.reportError(errors.Wrap(err, "reading head height"))
			return
		}
		tip, err := ix.client.GetTip(ctx)
		if err != nil {
			ix.reportError(errors.Wrap(err, "fetching chain tip"))
			return
		}

		// An empty store and one holding only genesis both report head 0;
		// start at genesis when it has not been indexed yet.
		start := head + 1
		if head == 0 {
			genesis, err := ix.store.GetBlockByHeight(ctx, 0)
			if err != nil {
				ix.reportError(errors.Wrap(err, "reading genesis block record"))
				return
			}
			if genesis == nil {
				start = 0
			}
		}

		for h := start; h <= tip.Height; h++ {
			if err := ix.fetchAndApply(ctx, h); err != nil {
				ix.reportError(errors.Wrapf(err, "applying block %d", h))
				return
			}
		}

		if !ix.pending.Load() {
			return
		}
	}
}

func (ix *Indexer) fetchAndApply(ctx context.Context, height uint32) error {
	entry, err := ix.client.GetEntry(ctx, height)
	if err != nil {
		return errors.Wrapf(err, "fetching entry %d", height)
	}
	block, err := ix.client.GetBlockByHeight(ctx, height)
	if err != nil {
		return errors.Wrapf(err, "fetching block %d", height)
	}
	view, err := ix.client.GetBlockView(ctx, block)
	if err != nil {
		return errors.Wrapf(err, "fetching block view %d", height)
	}
	return ix.applyBlock(ctx, entry, block, view)
}

// triggerReset rolls back to height h, then re-scans forward to catch up
// any blocks connected on the new fork since (spec.md §4.2 "Reorg").
func (ix *Indexer) triggerReset(ctx context.Context, h uint32) {
	ix.mu.Lock()
	err := ix.rollback(ctx, h)
	ix.mu.Unlock()
	if err != nil {
		ix.reportError(errors.Wrapf(err, "rolling back to height %d", h))
		return
	}
	ix.triggerScan(ctx)
}
