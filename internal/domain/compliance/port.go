package compliance

import (
	"context"
	"time"

	"github.com/streamdab/eti-monitor/internal/domain/thai"
)

// Sink port: a transport collaborator that accepts analysis output.
// A false return means "not delivered this cycle", never fatal; the
// pipeline retries on later cycles up to its retry bound.
type Sink interface {
	Name() string
	Connected() bool
	SendResult(ctx context.Context, r ComplianceResult) bool
	SendThaiAnalysis(ctx context.Context, m *thai.ThaiMetadata) bool
	SendReport(ctx context.Context, rep *ETIAnalysisReport) bool
}

// ConnectionHandler is registered once by the pipeline to observe the
// asynchronous connection lifecycle of a sink.
type ConnectionHandler func(sink string, connected bool)

// ReportRepository port for report persistence
type ReportRepository interface {
	Save(ctx context.Context, rep *ETIAnalysisReport) error
	Get(ctx context.Context, station string, id ReportID) (*ETIAnalysisReport, error)
	Latest(ctx context.Context, station string, limit int) ([]*ETIAnalysisReport, error)
	Summary(ctx context.Context, station string, sinceDays int) (total int, critical int, avgScore float64, err error)
}

// ViolationRepository port for the persisted incident trail
type ViolationRepository interface {
	Save(ctx context.Context, station string, v ComplianceResult) error
	Recent(ctx context.Context, station string, since time.Time, limit int) ([]ComplianceResult, error)
}

// ArtifactStore port for raw report artifacts (full JSON dumps)
type ArtifactStore interface {
	UploadJSON(ctx context.Context, key string, payload []byte) (string, error)
}
