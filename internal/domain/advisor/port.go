package advisor

import "context"

// Client port: generates a narrative from a stored report artifact.
type Client interface {
	Summarize(ctx context.Context, fileURL string) (string, error)
}

// Repository port for persisting and querying summaries
type Repository interface {
	Save(ctx context.Context, s *Summary) error
	LatestByReport(ctx context.Context, station string, reportID string) (*Summary, error)
	Paginate(ctx context.Context, station string, page, pageSize int) ([]*Summary, error)
}
