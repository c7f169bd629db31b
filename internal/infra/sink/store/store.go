// Package store adapts the persistence ports (report repository,
// violation repository, artifact store) into a pipeline sink, so stored
// history rides the same dispatch path as the realtime sinks.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apex/log"

	"github.com/streamdab/eti-monitor/internal/domain/compliance"
	"github.com/streamdab/eti-monitor/internal/domain/thai"
)

// Sink persists everything the pipeline dispatches.
type Sink struct {
	station    string
	reports    compliance.ReportRepository
	violations compliance.ViolationRepository
	artifacts  compliance.ArtifactStore
}

// New builds a persistence sink for one station. The artifact store may
// be nil; reports are then saved without an artifact URL.
func New(station string, reports compliance.ReportRepository, violations compliance.ViolationRepository, artifacts compliance.ArtifactStore) *Sink {
	return &Sink{station: station, reports: reports, violations: violations, artifacts: artifacts}
}

// Name implements compliance.Sink.
func (s *Sink) Name() string { return "store" }

// Connected implements compliance.Sink.
func (s *Sink) Connected() bool { return true }

// SendResult persists a violation incident.
func (s *Sink) SendResult(ctx context.Context, r compliance.ComplianceResult) bool {
	if err := s.violations.Save(ctx, s.station, r); err != nil {
		log.WithError(err).WithField("check", r.CheckName).Error("violation save failed")
		return false
	}
	return true
}

// SendThaiAnalysis implements compliance.Sink. Thai metadata is embedded
// in the report rows; standalone records are not persisted.
func (s *Sink) SendThaiAnalysis(_ context.Context, _ *thai.ThaiMetadata) bool {
	return true
}

// SendReport uploads the full report JSON as an artifact, then persists
// the report row pointing at it. The sink works on its own copy; the
// caller's report is never written to, so producers can keep reading it
// while the worker delivers.
func (s *Sink) SendReport(ctx context.Context, rep *compliance.ETIAnalysisReport) bool {
	row := *rep
	if row.StationID == "" {
		row.StationID = s.station
	}
	if s.artifacts != nil {
		payload, err := json.Marshal(&row)
		if err == nil {
			key := fmt.Sprintf("%s/reports/%s.json", s.station, row.ID)
			url, uerr := s.artifacts.UploadJSON(ctx, key, payload)
			if uerr != nil {
				log.WithError(uerr).WithField("report", string(row.ID)).Warn("artifact upload failed")
			} else {
				row.ArtifactURL = url
			}
		}
	}
	if err := s.reports.Save(ctx, &row); err != nil {
		log.WithError(err).WithField("report", string(row.ID)).Error("report save failed")
		return false
	}
	return true
}
