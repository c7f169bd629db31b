package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"

	"github.com/streamdab/eti-monitor/internal/domain/compliance"
	"github.com/streamdab/eti-monitor/internal/domain/thai"
)

// ErrQueueFull is returned by Submit when the bounded pending-report
// queue rejects a report. The drop is also counted in ReportsDropped.
var ErrQueueFull = errors.New("pipeline: pending report queue full")

// Config is the streaming configuration value object. Passed by value
// and never mutated by the pipeline; UpdateConfig swaps the active copy
// atomically after validation.
type Config struct {
	MonitorURL                string `yaml:"monitor_url"`
	WebSocketEndpoint         string `yaml:"websocket_endpoint"`
	EnableRealtimeStreaming   bool   `yaml:"enable_realtime_streaming"`
	EnableBatchReporting      bool   `yaml:"enable_batch_reporting"`
	ReportingIntervalSeconds  int    `yaml:"reporting_interval_seconds"`
	EnableThaiStreaming       bool   `yaml:"enable_thai_analysis_streaming"`
	EnableGovernmentReporting bool   `yaml:"enable_government_reporting"`
	GovernmentAPIEndpoint     string `yaml:"government_api_endpoint"`
	APIKey                    string `yaml:"api_key"`

	QueueCapacity        int `yaml:"queue_capacity"`
	MaxDeliveryAttempts  int `yaml:"max_delivery_attempts"`
	ViolationHistorySize int `yaml:"violation_history_size"`
}

// DefaultConfig mirrors the defaults the monitor ships with.
func DefaultConfig() Config {
	return Config{
		MonitorURL:               "http://localhost:8002",
		WebSocketEndpoint:        "/ws/etisnoop",
		EnableBatchReporting:     true,
		EnableThaiStreaming:      true,
		ReportingIntervalSeconds: 30,
		QueueCapacity:            1000,
		MaxDeliveryAttempts:      3,
		ViolationHistorySize:     100,
	}
}

// Validate rejects configuration/usage errors before they are applied.
func (c Config) Validate() error {
	if c.ReportingIntervalSeconds <= 0 {
		return fmt.Errorf("reporting interval must be positive, got %d", c.ReportingIntervalSeconds)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("queue capacity must be positive, got %d", c.QueueCapacity)
	}
	if c.MaxDeliveryAttempts <= 0 {
		return fmt.Errorf("max delivery attempts must be positive, got %d", c.MaxDeliveryAttempts)
	}
	if c.ViolationHistorySize <= 0 {
		return fmt.Errorf("violation history size must be positive, got %d", c.ViolationHistorySize)
	}
	if c.EnableGovernmentReporting && c.GovernmentAPIEndpoint == "" {
		return errors.New("government reporting enabled but endpoint is empty")
	}
	return nil
}

// Stats is a point-in-time snapshot of the pipeline counters.
type Stats struct {
	ReportsSent        int     `json:"reports_sent"`
	ViolationsDetected int     `json:"violations_detected"`
	ReportsDropped     int     `json:"reports_dropped"`
	ReportsAbandoned   int     `json:"reports_abandoned"`
	SinkErrors         int     `json:"sink_errors"`
	TotalAnalyses      int     `json:"total_analyses"`
	AverageScore       float64 `json:"average_compliance_score"`
	PendingReports     int     `json:"pending_reports"`
}

type pendingReport struct {
	report   *compliance.ETIAnalysisReport
	attempts int
}

// Pipeline owns the pending queues, the background worker, and the
// running statistics. Producers enqueue and return; sink I/O runs on
// the worker goroutine, critical-violation escalation excepted, and no
// lock is ever held across a sink call.
type Pipeline struct {
	cfgMu sync.RWMutex
	cfg   Config

	sinks []compliance.Sink

	queueMu   sync.Mutex
	queue     []pendingReport
	thaiQueue []*thai.ThaiMetadata

	statsMu          sync.Mutex
	reportsSent      int
	violations       int
	dropped          int
	abandoned        int
	sinkErrors       int
	totalScore       float64
	totalAnalyses    int
	recentViolations []compliance.ComplianceResult

	stop      chan struct{}
	done      chan struct{}
	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// New builds a pipeline over the given sinks. The config is validated
// up front; an invalid config never produces a half-built pipeline.
func New(cfg Config, sinks ...compliance.Sink) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:   cfg,
		sinks: sinks,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}, nil
}

// Start launches the background reporting worker. Safe to call once.
func (p *Pipeline) Start() {
	p.startOnce.Do(func() {
		p.started.Store(true)
		go p.run()
	})
}

// ConnectionHandler returns the callback the pipeline registers on each
// sink to observe connection-state changes.
func (p *Pipeline) ConnectionHandler() compliance.ConnectionHandler {
	return func(sink string, connected bool) {
		if connected {
			log.WithField("sink", sink).Info("sink connected")
		} else {
			log.WithField("sink", sink).Warn("sink disconnected")
		}
	}
}

// Submit enqueues a completed report. Never blocks beyond the queue
// lock; a full queue rejects the report, counts the drop, and returns
// ErrQueueFull.
func (p *Pipeline) Submit(rep *compliance.ETIAnalysisReport) error {
	p.cfgMu.RLock()
	capacity := p.cfg.QueueCapacity
	p.cfgMu.RUnlock()

	p.queueMu.Lock()
	if len(p.queue) >= capacity {
		p.queueMu.Unlock()
		p.statsMu.Lock()
		p.dropped++
		p.statsMu.Unlock()
		log.WithField("filename", rep.Filename).Warn("report dropped: queue full")
		return ErrQueueFull
	}
	p.queue = append(p.queue, pendingReport{report: rep})
	p.queueMu.Unlock()
	return nil
}

// SubmitViolation records a violation in the bounded history and, for
// CRITICAL severity, escalates to every sink synchronously before
// returning, out of band from the periodic flush. No lock is held
// during the sink calls.
func (p *Pipeline) SubmitViolation(v compliance.ComplianceResult) {
	p.cfgMu.RLock()
	historySize := p.cfg.ViolationHistorySize
	p.cfgMu.RUnlock()

	p.statsMu.Lock()
	p.violations++
	p.recentViolations = append(p.recentViolations, v)
	if len(p.recentViolations) > historySize {
		// FIFO eviction, oldest first
		p.recentViolations = p.recentViolations[len(p.recentViolations)-historySize:]
	}
	p.statsMu.Unlock()

	if v.Severity == compliance.SeverityCritical {
		p.escalate(v)
	}
}

func (p *Pipeline) escalate(v compliance.ComplianceResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	failures := 0
	for _, s := range p.sinks {
		if !s.SendResult(ctx, v) {
			failures++
		}
	}
	if failures > 0 {
		p.statsMu.Lock()
		p.sinkErrors += failures
		p.statsMu.Unlock()
		log.WithField("check", v.CheckName).WithField("failed_sinks", failures).
			Error("critical violation escalation incomplete")
	}
}

// SubmitThaiAnalysis queues a Thai metadata record for the next flush
// cycle when Thai streaming is enabled. Like Submit, it only takes the
// queue lock; all sink I/O happens on the worker. Best effort, no
// retries for Thai records.
func (p *Pipeline) SubmitThaiAnalysis(m *thai.ThaiMetadata) {
	p.cfgMu.RLock()
	enabled := p.cfg.EnableThaiStreaming
	capacity := p.cfg.QueueCapacity
	p.cfgMu.RUnlock()
	if !enabled {
		return
	}

	p.queueMu.Lock()
	if len(p.thaiQueue) >= capacity {
		p.queueMu.Unlock()
		log.WithField("title", m.TitleThai).Warn("thai record dropped: queue full")
		return
	}
	p.thaiQueue = append(p.thaiQueue, m)
	p.queueMu.Unlock()
}

// UpdateConfig validates and atomically swaps the active configuration.
// On error the previous configuration remains active.
func (p *Pipeline) UpdateConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.cfgMu.Lock()
	p.cfg = cfg
	p.cfgMu.Unlock()
	return nil
}

// GetConfig returns a snapshot of the active configuration.
func (p *Pipeline) GetConfig() Config {
	p.cfgMu.RLock()
	defer p.cfgMu.RUnlock()
	return p.cfg
}

// Shutdown stops the worker cooperatively: the current flush cycle
// finishes, one final drain runs, and the number of reports that could
// not be delivered (still queued) is returned so callers know nothing
// was silently lost.
func (p *Pipeline) Shutdown() int {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	// a pipeline that was never started has no worker to wait for
	if p.started.Load() {
		<-p.done
	}

	p.queueMu.Lock()
	left := len(p.queue)
	p.queueMu.Unlock()
	if left > 0 {
		log.WithField("pending", left).Warn("shutdown with undelivered reports still queued")
	}
	return left
}

func (p *Pipeline) run() {
	defer close(p.done)

	// re-armed each cycle so UpdateConfig can change the interval of a
	// live pipeline
	timer := time.NewTimer(p.flushInterval())
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			p.flush()
			timer.Reset(p.flushInterval())
		case <-p.stop:
			// final drain before exiting
			p.flush()
			return
		}
	}
}

func (p *Pipeline) flushInterval() time.Duration {
	p.cfgMu.RLock()
	defer p.cfgMu.RUnlock()
	return time.Duration(p.cfg.ReportingIntervalSeconds) * time.Second
}

// flush drains the pending queues and forwards each record to every
// sink, in submission order. Reports no sink accepted are requeued for
// a later cycle until the attempt bound is reached.
func (p *Pipeline) flush() {
	p.cfgMu.RLock()
	maxAttempts := p.cfg.MaxDeliveryAttempts
	batchEnabled := p.cfg.EnableBatchReporting
	p.cfgMu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	p.flushThai(ctx)

	// report batching has its own switch; thai records flow regardless
	if !batchEnabled {
		return
	}

	p.queueMu.Lock()
	batch := p.queue
	p.queue = nil
	p.queueMu.Unlock()
	if len(batch) == 0 {
		return
	}

	var requeue []pendingReport
	for _, item := range batch {
		delivered := p.deliver(ctx, item.report)
		if delivered {
			p.fold(item.report)
			continue
		}
		item.attempts++
		if item.attempts >= maxAttempts {
			p.statsMu.Lock()
			p.abandoned++
			p.statsMu.Unlock()
			log.WithField("filename", item.report.Filename).
				WithField("attempts", item.attempts).
				Error("report abandoned after delivery retries")
			continue
		}
		requeue = append(requeue, item)
	}

	if len(requeue) > 0 {
		// retried reports go back to the front to keep FIFO order
		p.queueMu.Lock()
		p.queue = append(requeue, p.queue...)
		p.queueMu.Unlock()
	}
}

func (p *Pipeline) flushThai(ctx context.Context) {
	p.queueMu.Lock()
	batch := p.thaiQueue
	p.thaiQueue = nil
	p.queueMu.Unlock()

	for _, m := range batch {
		for _, s := range p.sinks {
			if !s.SendThaiAnalysis(ctx, m) {
				p.statsMu.Lock()
				p.sinkErrors++
				p.statsMu.Unlock()
			}
		}
	}
}

// deliver forwards one report to every sink. Delivered means every sink
// accepted it; any refusal counts as a sink error and schedules a retry.
func (p *Pipeline) deliver(ctx context.Context, rep *compliance.ETIAnalysisReport) bool {
	if len(p.sinks) == 0 {
		return true
	}
	ok := true
	for _, s := range p.sinks {
		if !s.SendReport(ctx, rep) {
			ok = false
			p.statsMu.Lock()
			p.sinkErrors++
			p.statsMu.Unlock()
		}
	}
	return ok
}

func (p *Pipeline) fold(rep *compliance.ETIAnalysisReport) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.reportsSent++
	p.violations += rep.TotalViolationsFound
	p.totalScore += rep.OverallComplianceScore
	p.totalAnalyses++
}

// ReportsSent snapshot.
func (p *Pipeline) ReportsSent() int {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.reportsSent
}

// ViolationsDetected snapshot.
func (p *Pipeline) ViolationsDetected() int {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.violations
}

// AverageComplianceScore snapshot across all dispatched reports.
func (p *Pipeline) AverageComplianceScore() float64 {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	if p.totalAnalyses == 0 {
		return 0
	}
	return p.totalScore / float64(p.totalAnalyses)
}

// RecentViolations returns a copy of the bounded violation history,
// oldest first.
func (p *Pipeline) RecentViolations() []compliance.ComplianceResult {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	out := make([]compliance.ComplianceResult, len(p.recentViolations))
	copy(out, p.recentViolations)
	return out
}

// Stats returns a point-in-time snapshot of all counters.
func (p *Pipeline) Stats() Stats {
	p.queueMu.Lock()
	pending := len(p.queue)
	p.queueMu.Unlock()

	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	avg := 0.0
	if p.totalAnalyses > 0 {
		avg = p.totalScore / float64(p.totalAnalyses)
	}
	return Stats{
		ReportsSent:        p.reportsSent,
		ViolationsDetected: p.violations,
		ReportsDropped:     p.dropped,
		ReportsAbandoned:   p.abandoned,
		SinkErrors:         p.sinkErrors,
		TotalAnalyses:      p.totalAnalyses,
		AverageScore:       avg,
		PendingReports:     pending,
	}
}
