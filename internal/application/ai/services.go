package ai

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/forensight/internal/application"
	"github.com/bryanwahyu/forensight/internal/domain/ai"
	"github.com/bryanwahyu/forensight/internal/domain/analyst"
)

type Service struct {
	client ai.Client
	repo   analyst.Repository
	clock  application.Clock
}

func NewService(client ai.Client, repo analyst.Repository, clock application.Clock) *Service {
	return &Service{client: client, repo: repo, clock: clock}
}

// ReviewAndStore asks the model for a second opinion on a serialized report
// and persists the verdict for auditing.
func (s *Service) ReviewAndStore(ctx context.Context, tenant, fileMD5, reportJSON string) (*analyst.Analysis, error) {
	result, err := s.client.Review(ctx, reportJSON)
	if err != nil {
		return nil, err
	}
	a := &analyst.Analysis{
		ID:        analyst.AnalysisID(uuid.NewString()),
		TenantID:  tenant,
		FileMD5:   fileMD5,
		Result:    result,
		CreatedAt: s.now(),
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, tenant string, page, pageSize int) ([]*analyst.Analysis, error) {
	return s.repo.Paginate(ctx, tenant, page, pageSize)
}

func (s *Service) LatestByFile(ctx context.Context, tenant, fileMD5 string) (*analyst.Analysis, error) {
	return s.repo.LatestByFile(ctx, tenant, fileMD5)
}

func (s *Service) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}
