package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"courtflow/court"
	"courtflow/dispute"
)

type fakeSource struct {
	mu       sync.Mutex
	failFor  map[string]error
	disputes map[string][]dispute.SnapshotParams
}

func (f *fakeSource) FetchCourt(_ context.Context, chainID int64, courtID string) (court.UpsertParams, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[courtID]; err != nil {
		return court.UpsertParams{}, err
	}
	return court.UpsertParams{ID: courtID, ChainID: chainID, TermDuration: 1000}, nil
}

func (f *fakeSource) FetchDisputes(_ context.Context, courtID string) ([]dispute.SnapshotParams, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disputes[courtID], nil
}

type fakeCourtStore struct {
	mu       sync.Mutex
	upserted []court.UpsertParams
}

func (f *fakeCourtStore) UpsertConfig(_ context.Context, params court.UpsertParams) (court.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, params)
	return court.Record{ID: params.ID}, nil
}

type fakeDisputeStore struct {
	mu       sync.Mutex
	upserted []dispute.SnapshotParams
}

func (f *fakeDisputeStore) UpsertSnapshot(_ context.Context, params dispute.SnapshotParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, params)
	return nil
}

func TestSyncMirrorsAllCourts(t *testing.T) {
	source := &fakeSource{
		disputes: map[string][]dispute.SnapshotParams{
			"0xa": {{ID: "d1", CourtID: "0xa"}, {ID: "d2", CourtID: "0xa"}},
			"0xb": {{ID: "d3", CourtID: "0xb"}},
		},
	}
	courts := &fakeCourtStore{}
	disputes := &fakeDisputeStore{}

	p := NewPoller(source, courts, disputes, []string{"0xa", "0xb"}, 1, time.Minute, slog.Default())
	p.Sync(context.Background())

	if len(courts.upserted) != 2 {
		t.Fatalf("expected 2 court upserts, got %d", len(courts.upserted))
	}
	if len(disputes.upserted) != 3 {
		t.Fatalf("expected 3 dispute upserts, got %d", len(disputes.upserted))
	}
}

func TestSyncContinuesPastFailingCourt(t *testing.T) {
	source := &fakeSource{
		failFor: map[string]error{"0xa": errors.New("subgraph down")},
		disputes: map[string][]dispute.SnapshotParams{
			"0xb": {{ID: "d3", CourtID: "0xb"}},
		},
	}
	courts := &fakeCourtStore{}
	disputes := &fakeDisputeStore{}

	p := NewPoller(source, courts, disputes, []string{"0xa", "0xb"}, 1, time.Minute, slog.Default())
	p.Sync(context.Background())

	if len(courts.upserted) != 1 || courts.upserted[0].ID != "0xb" {
		t.Fatalf("expected only 0xb to be stored, got %+v", courts.upserted)
	}
	if len(disputes.upserted) != 1 || disputes.upserted[0].ID != "d3" {
		t.Fatalf("expected only d3 to be stored, got %+v", disputes.upserted)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	source := &fakeSource{}
	p := NewPoller(source, &fakeCourtStore{}, &fakeDisputeStore{}, nil, 1, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}
