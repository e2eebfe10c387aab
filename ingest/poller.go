package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"courtflow/court"
	"courtflow/dispute"
)

// Source fetches remote snapshots. Implemented by *Client.
type Source interface {
	FetchCourt(ctx context.Context, chainID int64, courtID string) (court.UpsertParams, error)
	FetchDisputes(ctx context.Context, courtID string) ([]dispute.SnapshotParams, error)
}

// CourtStore persists court config snapshots.
type CourtStore interface {
	UpsertConfig(ctx context.Context, params court.UpsertParams) (court.Record, error)
}

// DisputeStore persists dispute snapshots.
type DisputeStore interface {
	UpsertSnapshot(ctx context.Context, params dispute.SnapshotParams) error
}

// Poller periodically mirrors every tracked court. Each tick is a single
// attempt; a failed court is logged and picked up again on the next tick.
type Poller struct {
	source   Source
	courts   CourtStore
	disputes DisputeStore
	courtIDs []string
	chainID  int64
	interval time.Duration
	logger   *slog.Logger
}

func NewPoller(source Source, courts CourtStore, disputes DisputeStore, courtIDs []string, chainID int64, interval time.Duration, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		source:   source,
		courts:   courts,
		disputes: disputes,
		courtIDs: courtIDs,
		chainID:  chainID,
		interval: interval,
		logger:   logger,
	}
}

// Run syncs immediately, then on every tick until the context ends.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Sync(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Sync(ctx)
		}
	}
}

// Sync mirrors all tracked courts once, fanning out with a bounded group.
// Per-court failures are logged, not propagated: one stale court must not
// stop the others from refreshing.
func (p *Poller) Sync(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, courtID := range p.courtIDs {
		g.Go(func() error {
			started := time.Now()
			if err := p.syncCourt(ctx, courtID); err != nil {
				p.logger.Error("court sync failed",
					slog.String("court", courtID),
					slog.String("error", err.Error()))
				return nil
			}
			p.logger.Debug("court synced",
				slog.String("court", courtID),
				slog.Duration("took", time.Since(started)))
			return nil
		})
	}
	_ = g.Wait()
}

func (p *Poller) syncCourt(ctx context.Context, courtID string) error {
	cfg, err := p.source.FetchCourt(ctx, p.chainID, courtID)
	if err != nil {
		return fmt.Errorf("fetch court: %w", err)
	}
	if _, err := p.courts.UpsertConfig(ctx, cfg); err != nil {
		return fmt.Errorf("store court: %w", err)
	}

	snapshots, err := p.source.FetchDisputes(ctx, courtID)
	if err != nil {
		return fmt.Errorf("fetch disputes: %w", err)
	}
	for _, snapshot := range snapshots {
		if err := p.disputes.UpsertSnapshot(ctx, snapshot); err != nil {
			return fmt.Errorf("store dispute %s: %w", snapshot.ID, err)
		}
	}
	return nil
}
