// Command scheduler runs the quantum job scheduler process: it loads
// configuration, opens storage, admits any bootstrap agents, runs the
// startup recovery sweep, then serves the dispatch loop, the REST
// adapter, and a Prometheus metrics endpoint until signaled to stop.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	sched "github.com/BAQIC/emulate-server"
	"github.com/BAQIC/emulate-server/agentclient"
	"github.com/BAQIC/emulate-server/config"
	"github.com/BAQIC/emulate-server/restapi"
	"github.com/BAQIC/emulate-server/store"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the scheduler configuration file")
	metricsAddr := flag.String("metrics-addr", ":9090", "address to serve /metrics on")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(*configPath, *metricsAddr, log); err != nil {
		log.Error("scheduler exited with error", "err", err)
		os.Exit(1)
	}
}

func run(configPath, metricsAddr string, log *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.Open(cfg.DbUrl)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.InitDB(ctx, db.DB()); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	sc := sched.NewScheduler(db, db)

	if err := bootstrapAgents(ctx, sc, cfg.AgentFile, log); err != nil {
		return fmt.Errorf("bootstrap agents: %w", err)
	}

	recovery := sched.NewRecovery(db, db, sched.RecoveryConfig{}, log)
	n, err := recovery.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("recovery sweep: %w", err)
	}
	if n > 0 {
		log.Info("recovered orphaned assignments at startup", "count", n)
	}

	client := agentclient.New(30 * time.Second)
	executor := sched.NewExecutor(db, db, db, client, sched.ExecutorConfig{
		MinDepth: cfg.SchedMinDepth,
		MinGran:  cfg.SchedMinGran,
	}, log)
	dispatcher := sched.NewDispatcher(db, db, executor, sched.DispatcherConfig{}, log)

	if err := dispatcher.Start(ctx); err != nil {
		return fmt.Errorf("start dispatcher: %w", err)
	}

	reg := prometheus.NewRegistry()
	metrics := sched.NewMetrics(reg, db, db, db, log)

	metricsMux := http.NewServeMux()
	metricsMux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.Collect(r.Context())
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
	metricsSrv := &http.Server{Addr: metricsAddr, Handler: metricsMux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "err", err)
		}
	}()

	apiSrv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.ListenIp, cfg.ListenPort),
		Handler: restapi.New(sc, metrics).Routes(),
	}
	go func() {
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("rest server failed", "err", err)
		}
	}()

	log.Info("scheduler started", "listen", apiSrv.Addr, "metrics", metricsSrv.Addr)
	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	if err := dispatcher.Stop(); err != nil {
		log.Error("dispatcher stop reported an error", "err", err)
	}
	return nil
}

func bootstrapAgents(ctx context.Context, sc *sched.Scheduler, path string, log *slog.Logger) error {
	specs, found, err := config.LoadAgentFile(path)
	if err != nil {
		return err
	}
	if !found {
		log.Warn("no agent bootstrap file found, starting with zero agents", "path", path)
		return nil
	}
	for _, spec := range specs {
		ip, err := spec.ResolveIp()
		if err != nil {
			log.Error("cannot resolve bootstrap agent address, skipping", "err", err)
			continue
		}
		if _, err := sc.AddAgent(ctx, ip, spec.Port, spec.QubitCount, spec.CircuitDepth); err != nil {
			if errors.Is(err, sched.ErrDuplicate) {
				log.Debug("bootstrap agent already registered", "ip", ip, "port", spec.Port)
				continue
			}
			log.Error("cannot admit bootstrap agent", "ip", ip, "port", spec.Port, "err", err)
			continue
		}
		log.Info("admitted bootstrap agent", "ip", ip, "port", spec.Port)
	}
	return nil
}
