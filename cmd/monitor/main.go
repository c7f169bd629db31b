package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/joho/godotenv"

	appadvisor "github.com/streamdab/eti-monitor/internal/application/advisor"
	"github.com/streamdab/eti-monitor/internal/application/analysis"
	appthai "github.com/streamdab/eti-monitor/internal/application/thai"
	"github.com/streamdab/eti-monitor/internal/application/pipeline"
	"github.com/streamdab/eti-monitor/internal/config"
	"github.com/streamdab/eti-monitor/internal/domain/compliance"
	aiopenai "github.com/streamdab/eti-monitor/internal/infra/ai/openai"
	mysqlp "github.com/streamdab/eti-monitor/internal/infra/db/mysql"
	"github.com/streamdab/eti-monitor/internal/infra/gov"
	"github.com/streamdab/eti-monitor/internal/infra/httpserver"
	"github.com/streamdab/eti-monitor/internal/infra/sink/httpapi"
	storesink "github.com/streamdab/eti-monitor/internal/infra/sink/store"
	"github.com/streamdab/eti-monitor/internal/infra/sink/ws"
	minioStore "github.com/streamdab/eti-monitor/internal/infra/storage"
	"github.com/streamdab/eti-monitor/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.WithError(err).Fatal("config load error")
	}

	ctx := context.Background()

	// connect MySQL
	db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
	if err != nil {
		log.WithError(err).Fatal("mysql connect error")
	}
	defer db.Close()

	reportRepo := mysqlp.NewReportRepository(db)
	violationRepo := mysqlp.NewViolationRepository(db)
	summaryRepo := mysqlp.NewSummaryRepository(db)

	// init minio
	artifacts, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.WithError(err).Fatal("minio init error")
	}

	station := cfg.Analyzer.StationID
	if station == "" {
		station = "default"
	}

	// Thai engine + analyzer
	thaiEngine := appthai.NewDefaultEngine()
	analyzer := analysis.NewAnalyzer()
	analyzer.SetThaiEngine(thaiEngine)
	analyzer.EnableThaiValidation(cfg.Analyzer.ThaiValidation)
	if err := analyzer.SetStrictness(cfg.Analyzer.Strictness); err != nil {
		log.WithError(err).Fatal("invalid strictness")
	}

	// delivery sinks
	streamCfg := cfg.Streaming
	var sinks []compliance.Sink

	httpSink := httpapi.NewClient(streamCfg.MonitorURL, streamCfg.APIKey)
	sinks = append(sinks, httpSink)

	var wsSink *ws.Client
	if streamCfg.EnableRealtimeStreaming {
		wsSink = ws.NewClient(wsURL(streamCfg.MonitorURL) + streamCfg.WebSocketEndpoint)
		sinks = append(sinks, wsSink)
	}

	sinks = append(sinks, storesink.New(station, reportRepo, violationRepo, artifacts))

	pipe, err := pipeline.New(streamCfg, sinks...)
	if err != nil {
		log.WithError(err).Fatal("pipeline init error")
	}
	if wsSink != nil {
		wsSink.SetConnectionHandler(pipe.ConnectionHandler())
		wsSink.Connect()
	}
	pipe.Start()

	// advisor
	aiClient := aiopenai.NewClient(cfg.AI.APIKey, cfg.AI.Model)
	advisorSvc := appadvisor.NewService(aiClient, summaryRepo)

	// government reporting loop
	govCtx, govCancel := context.WithCancel(ctx)
	defer govCancel()
	if streamCfg.EnableGovernmentReporting {
		reporter := gov.NewReporter(station, httpapi.NewClient(streamCfg.GovernmentAPIEndpoint, streamCfg.APIKey))
		go runGovernmentReporting(govCtx, reporter, reportRepo, station)
	}

	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"monitor":  &middleware.SinkHealthChecker{Name: httpSink.Name(), Connected: httpSink.Connected},
	}

	handler := httpserver.NewRouter(analyzer, pipe, reportRepo, advisorSvc, checkers)
	if len(cfg.Auth.Keys) > 0 {
		handler = middleware.APIKeyAuth(cfg.Auth.Keys)(handler)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.WithField("addr", addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.WithError(err).Error("server shutdown error")
	}

	govCancel()
	if wsSink != nil {
		wsSink.Close()
	}
	if left := pipe.Shutdown(); left > 0 {
		log.WithField("pending", left).Warn("undelivered reports at shutdown")
	}
}

// runGovernmentReporting submits a daily batch of stored reports to the
// regulator endpoint.
func runGovernmentReporting(ctx context.Context, reporter *gov.Reporter, repo compliance.ReportRepository, station string) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reports, err := repo.Latest(ctx, station, 100)
			if err != nil {
				log.WithError(err).Error("government report query failed")
				continue
			}
			if err := reporter.SubmitDailyReport(ctx, reports); err != nil {
				log.WithError(err).Error("government daily report failed")
				continue
			}
			log.WithField("reports", len(reports)).Info("government daily report submitted")
		}
	}
}

// wsURL rewrites an http base URL to its websocket scheme.
func wsURL(base string) string {
	switch {
	case len(base) > 7 && base[:7] == "http://":
		return "ws://" + base[7:]
	case len(base) > 8 && base[:8] == "https://":
		return "wss://" + base[8:]
	default:
		return base
	}
}
