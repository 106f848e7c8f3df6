// cmd/directory-service/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"business-directory/internal/analytics"
	"business-directory/internal/api"
	"business-directory/internal/common/auth"
	awsclient "business-directory/internal/common/aws"
	"business-directory/internal/common/camunda"
	"business-directory/internal/common/config"
	"business-directory/internal/common/database"
	"business-directory/internal/common/logger"
	"business-directory/internal/common/observability"
	"business-directory/internal/dashboard"
	"business-directory/internal/entitlement"
	"business-directory/internal/leads"
	"business-directory/internal/listing"
	"business-directory/internal/notify"
	"business-directory/internal/registration"
	"business-directory/internal/wizard"

	sw "business-directory/internal/workers/communication/send-welcome-email"
	cbr "business-directory/internal/workers/directory/create-business-record"
	re "business-directory/internal/workers/directory/resolve-entitlements"
	sl "business-directory/internal/workers/directory/search-listings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog, _ := zap.NewProduction()
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		panic(err)
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting directory service",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	// A catalog that fails its integrity check halts startup.
	catalog := entitlement.DefaultCatalog()
	if len(cfg.Plans) > 0 {
		catalog, err = entitlement.CatalogFromConfig(cfg.Plans)
		if err != nil {
			zapLog.Fatal("plan catalog invalid", zap.Error(err))
		}
	}
	resolver, err := entitlement.NewResolver(catalog)
	if err != nil {
		zapLog.Fatal("plan catalog invalid", zap.Error(err))
	}

	steps, err := wizard.StepsFromConfig(cfg.Wizard.Steps)
	if err != nil {
		zapLog.Fatal("wizard steps invalid", zap.Error(err))
	}

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres init failed", zap.Error(err))
	}
	defer pg.Close()

	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("elasticsearch init failed", zap.Error(err))
	}

	// Dependencies are checked once, in parallel; any failure is fatal.
	pingCtx, cancelPing := context.WithTimeout(ctx, 15*time.Second)
	g, gctx := errgroup.WithContext(pingCtx)
	g.Go(func() error { return pg.Ping(gctx) })
	g.Go(func() error { return rdb.Ping(gctx) })
	g.Go(func() error { return es.Ping(gctx) })
	err = g.Wait()
	cancelPing()
	if err != nil {
		zapLog.Fatal("dependency check failed", zap.Error(err))
	}

	if err := pg.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("schema setup failed", zap.Error(err))
	}
	if err := es.EnsureIndex(ctx, cfg.Database.Elasticsearch.ListingIndex, listing.IndexMapping); err != nil {
		zapLog.Fatal("listing index setup failed", zap.Error(err))
	}
	zapLog.Info("postgres, redis and elasticsearch ready")

	var zeebe *camunda.Client
	if cfg.Camunda.BrokerAddress != "" {
		zeebe, err = camunda.NewClient(camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		if err != nil {
			zapLog.Fatal("zeebe client failed", zap.Error(err))
		}
		defer zeebe.Close()
		zapLog.Info("zeebe client connected", zap.String("gateway", cfg.Camunda.BrokerAddress))
	} else {
		zapLog.Warn("camunda.broker_address not set; workers and onboarding processes are disabled")
	}

	sesClient, err := awsclient.NewSESClient(ctx, cfg.Notifications.AWSRegion)
	if err != nil {
		zapLog.Fatal("ses client failed", zap.Error(err))
	}
	snsClient, err := awsclient.NewSNSClient(ctx, cfg.Notifications.AWSRegion)
	if err != nil {
		zapLog.Fatal("sns client failed", zap.Error(err))
	}
	mailer := notify.NewSESMailer(sesClient, cfg.Notifications.SenderEmail, cfg.Notifications.EmailEnabled, log)
	alerter := notify.NewSNSAlerter(snsClient, cfg.Notifications.LeadTopicARN, cfg.Notifications.SMSEnabled, log)

	store := listing.NewStore(pg.DB, log)
	index := listing.NewIndex(es.Client, cfg.Database.Elasticsearch.ListingIndex, log)
	opts := []listing.ServiceOption{listing.WithIndex(index), listing.WithObservability(obs)}
	if zeebe != nil {
		opts = append(opts, listing.WithOnboarding(zeebe, cfg.Camunda.OnboardingProcessID))
	}
	listings := listing.NewService(store, resolver, log, opts...)

	counter := analytics.NewCounter(rdb.Client, log)
	leadService := leads.NewService(leads.NewStore(pg.DB), store, resolver, counter, alerter, log)
	board := dashboard.NewBuilder(resolver, counter, log)

	keycloak := auth.NewKeycloakClient(cfg.Auth.Keycloak.URL, cfg.Auth.Keycloak.Realm, cfg.Auth.Keycloak.ClientID)
	flow := registration.NewFlow(keycloak, listings, steps, log)

	var workers []*camunda.CamundaWorker
	if zeebe != nil {
		zc := zeebe.GetClient()
		if wc := config.GetWorkerConfig(cfg, re.TaskType); wc.Enabled {
			h := re.NewHandler(re.NewConfig(wc), resolver, log)
			workers = append(workers, camunda.NewWorker(zc, workerOptions(re.TaskType, wc), h.Handle, log))
		}
		if wc := config.GetWorkerConfig(cfg, sl.TaskType); wc.Enabled {
			h := sl.NewHandler(sl.NewConfig(wc), listings, log)
			workers = append(workers, camunda.NewWorker(zc, workerOptions(sl.TaskType, wc), h.Handle, log))
		}
		if wc := config.GetWorkerConfig(cfg, cbr.TaskType); wc.Enabled {
			h := cbr.NewHandler(cbr.NewConfig(wc), listings, steps, log)
			workers = append(workers, camunda.NewWorker(zc, workerOptions(cbr.TaskType, wc), h.Handle, log))
		}
		if wc := config.GetWorkerConfig(cfg, sw.TaskType); wc.Enabled {
			h := sw.NewHandler(sw.NewConfig(wc), store, mailer, log)
			workers = append(workers, camunda.NewWorker(zc, workerOptions(sw.TaskType, wc), h.Handle, log))
		}
		zapLog.Info("workers registered", zap.Int("count", len(workers)))
	}

	checks := map[string]api.ReadinessCheck{
		"postgres":      pg.Ping,
		"redis":         rdb.Ping,
		"elasticsearch": es.Ping,
	}
	if zeebe != nil {
		checks["zeebe"] = zeebe.HealthCheck
	}
	server := api.NewServer(api.Deps{
		Identity:  keycloak,
		Registrar: flow,
		Searcher:  listings,
		Leads:     leadService,
		Dashboard: board,
		Owners:    store,
		Events:    counter,
		Checks:    checks,
	}, log)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	go server.RunSessionSweeper(sweepCtx)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLog.Info("http server listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	stopSweep()
	for _, w := range workers {
		w.Stop()
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("observability shutdown failed", zap.Error(err))
	}
	zapLog.Info("directory service stopped")
}

func workerOptions(taskType string, wc config.WorkerConfig) camunda.WorkerOptions {
	return camunda.WorkerOptions{
		TaskType:      taskType,
		MaxJobsActive: wc.MaxJobsActive,
		Timeout:       config.GetDuration(wc.Timeout),
	}
}
