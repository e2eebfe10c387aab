package dispute

import (
	"context"
	"fmt"
	"time"

	"courtflow/court"
	"courtflow/phase"
)

// SnapshotStore abstracts the repository for testability.
type SnapshotStore interface {
	List(ctx context.Context, courtID string, state phase.DisputeState) ([]Record, error)
	Get(ctx context.Context, id string) (Record, []RoundRecord, error)
	UpsertSnapshot(ctx context.Context, params SnapshotParams) error
	ListEvents(ctx context.Context, disputeID string) ([]Event, error)
}

// ConfigSource supplies the court configuration a dispute is evaluated under.
type ConfigSource interface {
	GetByID(ctx context.Context, id string) (court.Record, error)
}

// Service combines stored snapshots with the pure phase engine.
type Service struct {
	repo   SnapshotStore
	courts ConfigSource
	now    func() time.Time
}

func NewService(repo SnapshotStore, courts ConfigSource) *Service {
	return &Service{
		repo:   repo,
		courts: courts,
		now:    time.Now,
	}
}

// WithNow overrides the clock, for tests and replay tooling.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// View is one dispute with its computed phase state attached.
type View struct {
	Record   Record
	Rounds   []RoundRecord
	Current  phase.Result
	Timeline []phase.TimelineItem
}

// List returns mirrored disputes filtered by court and state.
func (s *Service) List(ctx context.Context, courtID string, state phase.DisputeState) ([]Record, error) {
	return s.repo.List(ctx, courtID, state)
}

// Get loads a dispute and resolves its phase and timeline. When at is non-nil
// the dispute is evaluated as of that millisecond timestamp instead of the
// current wall clock, which serves historical queries.
func (s *Service) Get(ctx context.Context, id string, at *int64) (View, error) {
	rec, rounds, err := s.repo.Get(ctx, id)
	if err != nil {
		return View{}, err
	}

	courtRec, err := s.courts.GetByID(ctx, rec.CourtID)
	if err != nil {
		return View{}, fmt.Errorf("dispute: load court %s: %w", rec.CourtID, err)
	}
	cfg := courtRec.Config()

	now := s.now().UnixMilli()
	if at != nil {
		now = *at
	}

	snapshot := Assemble(rec, rounds)
	current, err := phase.Resolve(snapshot, cfg, now)
	if err != nil {
		return View{}, err
	}
	timeline, err := phase.BuildTimeline(snapshot, cfg, now)
	if err != nil {
		return View{}, err
	}

	return View{
		Record:   rec,
		Rounds:   rounds,
		Current:  current,
		Timeline: timeline,
	}, nil
}

// Events returns the observed-transition trail for a dispute.
func (s *Service) Events(ctx context.Context, id string) ([]Event, error) {
	return s.repo.ListEvents(ctx, id)
}

// Ingest stores a freshly observed snapshot.
func (s *Service) Ingest(ctx context.Context, params SnapshotParams) error {
	return s.repo.UpsertSnapshot(ctx, params)
}
