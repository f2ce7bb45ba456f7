package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/poolvest/deposit-recon-api/database/models"
	"github.com/poolvest/deposit-recon-api/recon"
)

// Source is the read-only view of the three record collections. Satisfied by
// *database.Database; tests substitute stubs.
type Source interface {
	GetDepositIntents(ctx context.Context) ([]models.DepositIntent, error)
	GetPendingTransactions(ctx context.Context) ([]models.PendingTransaction, error)
	GetCreditedEntries(ctx context.Context) ([]models.CreditedEntry, error)
}

// Snapshot is one published result of a refresh cycle. Snapshots are immutable
// once published; a new cycle swaps in a whole new one rather than patching.
type Snapshot struct {
	Payments     map[string]*recon.UnifiedPayment
	FetchedAt    time.Time
	Partial      bool
	SourceErrors map[string]string
}

// Engine periodically re-reads the three sources, correlates them from scratch
// and publishes the result. Re-running on an interval is required, not an
// optimization: delay thresholds are time-relative, so derived state changes
// even with no new writes.
type Engine struct {
	source       Source
	logger       *slog.Logger
	interval     time.Duration
	fetchTimeout time.Duration

	mu       sync.RWMutex
	snapshot *Snapshot
}

type EngineOpts struct {
	Source       Source
	Logger       *slog.Logger
	Interval     time.Duration
	FetchTimeout time.Duration
}

const (
	defaultInterval     = 30 * time.Second
	defaultFetchTimeout = 10 * time.Second
)

func NewEngine(opts EngineOpts) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	return &Engine{
		source:       opts.Source,
		logger:       opts.Logger,
		interval:     opts.Interval,
		fetchTimeout: opts.FetchTimeout,
	}
}

// Run refreshes immediately, then on every tick until the context is canceled.
func (e *Engine) Run(ctx context.Context) error {
	e.Refresh(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Refresh(ctx)
		}
	}
}

type fetchResult struct {
	source  string
	intents []models.DepositIntent
	txs     []models.PendingTransaction
	credits []models.CreditedEntry
	err     error
}

// Refresh reads all three sources concurrently and publishes a new snapshot.
// A failed source degrades the snapshot to partial instead of aborting; only
// when every source fails is the previous snapshot left in place.
func (e *Engine) Refresh(ctx context.Context) {
	resChan := make(chan fetchResult, 3)

	go func() {
		fctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
		defer cancel()
		intents, err := e.source.GetDepositIntents(fctx)
		resChan <- fetchResult{source: "deposit_intents", intents: intents, err: err}
	}()
	go func() {
		fctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
		defer cancel()
		txs, err := e.source.GetPendingTransactions(fctx)
		resChan <- fetchResult{source: "pending_transactions", txs: txs, err: err}
	}()
	go func() {
		fctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
		defer cancel()
		credits, err := e.source.GetCreditedEntries(fctx)
		resChan <- fetchResult{source: "credited_entries", credits: credits, err: err}
	}()

	var (
		intents      []models.DepositIntent
		txs          []models.PendingTransaction
		credits      []models.CreditedEntry
		sourceErrors = make(map[string]string)
	)
	for i := 0; i < 3; i++ {
		res := <-resChan
		if res.err != nil {
			e.logger.Error("source fetch failed", "source", res.source, "error", res.err)
			sourceErrors[res.source] = res.err.Error()
			continue
		}
		switch res.source {
		case "deposit_intents":
			intents = res.intents
		case "pending_transactions":
			txs = res.txs
		case "credited_entries":
			credits = res.credits
		}
	}

	if len(sourceErrors) == 3 {
		e.logger.Error("all sources unavailable, keeping previous snapshot")
		return
	}

	payments := recon.Correlate(intents, txs, credits)

	snap := &Snapshot{
		Payments:     payments,
		FetchedAt:    time.Now(),
		Partial:      len(sourceErrors) > 0,
		SourceErrors: sourceErrors,
	}

	e.mu.Lock()
	e.snapshot = snap
	e.mu.Unlock()

	e.logger.Debug("snapshot refreshed",
		"payments", len(payments),
		"intents", len(intents),
		"transactions", len(txs),
		"credits", len(credits),
		"partial", snap.Partial)
}

// Snapshot returns the latest published snapshot, or nil before the first
// successful refresh.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}
