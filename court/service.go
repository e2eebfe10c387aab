package court

import "context"

// ConfigStore abstracts repository operations for the service.
type ConfigStore interface {
	GetByID(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, limit int) ([]Record, error)
	UpsertConfig(ctx context.Context, params UpsertParams) (Record, error)
}

// Service exposes business-level court operations.
type Service struct {
	repo ConfigStore
}

// NewService builds a Service using the provided repository.
func NewService(repo ConfigStore) *Service {
	return &Service{repo: repo}
}

// GetByID returns the tracked court for the given address.
func (s *Service) GetByID(ctx context.Context, id string) (Record, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns up to limit tracked courts.
func (s *Service) List(ctx context.Context, limit int) ([]Record, error) {
	return s.repo.List(ctx, limit)
}

// UpsertConfig records a freshly observed configuration snapshot.
func (s *Service) UpsertConfig(ctx context.Context, params UpsertParams) (Record, error) {
	return s.repo.UpsertConfig(ctx, params)
}
