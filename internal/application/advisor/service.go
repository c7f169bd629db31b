package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "github.com/streamdab/eti-monitor/internal/domain/advisor"
)

// Service runs the AI advisor over stored report artifacts and keeps the
// results for auditing.
type Service struct {
	client domain.Client
	repo   domain.Repository
}

func NewService(client domain.Client, repo domain.Repository) *Service {
	return &Service{client: client, repo: repo}
}

// SummarizeAndStore generates a summary for one report artifact and
// persists it.
func (s *Service) SummarizeAndStore(ctx context.Context, station, reportID, fileURL string) (*domain.Summary, error) {
	if fileURL == "" {
		return nil, fmt.Errorf("file url is required")
	}
	result, err := s.client.Summarize(ctx, fileURL)
	if err != nil {
		return nil, err
	}
	sum := &domain.Summary{
		ID:        domain.SummaryID(uuid.New().String()),
		StationID: station,
		ReportID:  reportID,
		FileURL:   fileURL,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Save(ctx, sum); err != nil {
		return nil, err
	}
	return sum, nil
}

// ListSummaries pages through stored summaries.
func (s *Service) ListSummaries(ctx context.Context, station string, page, pageSize int) ([]*domain.Summary, error) {
	return s.repo.Paginate(ctx, station, page, pageSize)
}

// LatestForReport returns the newest summary for one report.
func (s *Service) LatestForReport(ctx context.Context, station, reportID string) (*domain.Summary, error) {
	return s.repo.LatestByReport(ctx, station, reportID)
}
