package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/BFGOrangle/spmOrangle-sub001/internal/api"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/broker"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/config"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/db"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/delivery"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/domain"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/mailer"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/metrics"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/pipeline"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/ratelimiter"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/repository"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/scheduler"
	"github.com/BFGOrangle/spmOrangle-sub001/internal/service"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("service exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database.
	pool, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL, "file://migrations"); err != nil {
		return err
	}
	logger.Info("database ready")

	// Broker and topology.
	brk, err := broker.Connect(cfg.AMQPURL, logger)
	if err != nil {
		return err
	}
	defer brk.Close()

	// Metrics.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Repositories.
	notificationRepo := repository.NewPgNotificationRepository(pool)
	taskRepo := repository.NewPgTaskRepository(pool)
	userDirectory := repository.NewPgUserDirectory(pool)

	// Email.
	limiter := ratelimiter.New(cfg.EmailRateLimit)
	mail := mailer.NewSMTPMailer(
		cfg.SMTPHost, cfg.SMTPPort,
		cfg.SMTPUsername, cfg.SMTPPassword,
		cfg.EmailFrom, limiter,
	)

	// Pipeline.
	onSent, onFailed := m.DeliveryHooks()
	fanout := delivery.NewFanout(userDirectory, mail, logger.Named("delivery"), delivery.MetricHooks{
		OnEmailSent:   onSent,
		OnEmailFailed: onFailed,
	})

	onProcessed, onMsgFailed, onStored := m.PipelineHooks()
	classifier := pipeline.NewClassifier(taskRepo)
	processor := pipeline.NewProcessor(classifier, notificationRepo, fanout, logger.Named("pipeline"), pipeline.MetricHooks{
		OnProcessed: onProcessed,
		OnFailed:    onMsgFailed,
		OnStored:    onStored,
	})

	// Consumers, one per family queue. The worker context is separate from
	// the signal context so HTTP can drain before the consumers stop.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	consumers, err := startConsumers(workerCtx, brk, cfg, processor)
	if err != nil {
		return err
	}

	// Publisher and HTTP surface.
	publisher, err := broker.NewPublisher(brk)
	if err != nil {
		return err
	}

	svc := service.NewNotificationService(notificationRepo, publisher, logger.Named("service"))
	router := api.NewRouter(svc, pool, registry, logger.Named("http"))

	// Due-date schedulers.
	overdue := scheduler.NewOverdueChecker(
		taskRepo, userDirectory, mail,
		cfg.OverdueInterval, cfg.OverdueLookback,
		logger.Named("overdue"),
		scheduler.MetricHooks{
			OnRun:         m.SchedulerRunHook("overdue"),
			OnEmailSent:   onSent,
			OnEmailFailed: onFailed,
		},
	)
	preDue := scheduler.NewPreDueChecker(
		taskRepo, userDirectory, mail,
		cfg.PreDueInterval, cfg.PreDueHorizon, cfg.PreDueRescheduleWindow,
		logger.Named("predue"),
		scheduler.MetricHooks{
			OnRun:         m.SchedulerRunHook("predue"),
			OnEmailSent:   onSent,
			OnEmailFailed: onFailed,
		},
	)
	go overdue.Run(workerCtx)
	go preDue.Run(workerCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutdown signal received")

	// Stop accepting HTTP first, then stop the workers, then drain the
	// consumers so in-flight messages get acked or dead-lettered.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", zap.Error(err))
	}

	cancelWorkers()
	for _, c := range consumers {
		c.Wait()
		c.Close()
	}

	logger.Info("shutdown complete")
	return nil
}

// startConsumers opens one consumer per family queue. Comment and task get
// the full pipeline; user and project are reserved families handled by the
// log-and-ack arm.
func startConsumers(ctx context.Context, brk *broker.Broker, cfg *config.Config, p *pipeline.Processor) ([]*broker.Consumer, error) {
	specs := []struct {
		queue   string
		handler broker.HandlerFunc
	}{
		{broker.QueueComment, p.HandleComment},
		{broker.QueueTask, p.HandleTask},
		{broker.QueueUser, p.HandleReserved(domain.FamilyUser)},
		{broker.QueueProject, p.HandleReserved(domain.FamilyProject)},
	}

	consumers := make([]*broker.Consumer, 0, len(specs))
	for _, s := range specs {
		c, err := broker.NewConsumer(brk, s.queue, cfg.ConsumerPrefetch, cfg.ConsumerConcurrency, s.handler)
		if err != nil {
			return nil, err
		}
		if err := c.Start(ctx); err != nil {
			return nil, err
		}
		consumers = append(consumers, c)
	}
	return consumers, nil
}
