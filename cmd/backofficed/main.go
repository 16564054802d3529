package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/backup"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/config"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/docstore"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/errlog"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/integrity"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/metrics"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/state"
	"github.com/vishesh-jaiswal23/dakshayani-backoffice/internal/watch"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	syslog := errlog.New(cfg.ErrorLog)
	registry := prometheus.NewRegistry()
	set := metrics.NewSet(registry)

	backend, err := docstore.BuildBackendFromDSN(cfg.BackendDSN)
	if err != nil {
		log.Fatalf("failed to build document backend: %v", err)
	}
	store, err := docstore.New(docstore.Options{
		Backend:  backend,
		DataDir:  cfg.DataDir,
		ErrorLog: syslog,
		Metrics:  set,
	})
	if err != nil {
		log.Fatalf("failed to open document store: %v", err)
	}
	defer store.Close()

	manager, err := state.NewManager(state.Options{
		Store:        store,
		DocumentName: cfg.StateDocument,
		ErrorLog:     syslog,
		Metrics:      set,
	})
	if err != nil {
		log.Fatalf("failed to build state manager: %v", err)
	}

	checker, err := integrity.NewChecker(integrity.CheckerOptions{
		Store:         store,
		Table:         state.IntegrityTable(cfg.StateDocument),
		StateDocument: cfg.StateDocument,
		ErrorLog:      syslog,
		Metrics:       set,
	})
	if err != nil {
		log.Fatalf("failed to build integrity checker: %v", err)
	}

	// Backups and the directory watcher only apply to file-backed
	// deployments.
	var snap *backup.Snapshotter
	fileBackend, _ := store.Backend().(*docstore.FileBackend)
	if fileBackend != nil {
		snap = backup.NewSnapshotter(backup.Options{
			DataDir:   fileBackend.Dir(),
			BackupDir: cfg.BackupDir,
			ErrorLog:  syslog,
			Metrics:   set,
		})
	}

	report := state.Bootstrap(snap, checker)
	if raw, marshalErr := json.Marshal(report); marshalErr == nil {
		log.Printf("bootstrap integrity report: %s", raw)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if fileBackend != nil {
		watcher, watchErr := watch.New(fileBackend.Dir(), syslog)
		if watchErr != nil {
			log.Printf("data directory watcher disabled: %v", watchErr)
		} else {
			defer watcher.Close()
			go watcher.Run(ctx)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if _, healthErr := manager.Snapshot(); healthErr != nil {
			http.Error(w, "unhealthy", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		log.Printf("backofficed listening on %s", cfg.MetricsAddr)
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			log.Fatalf("metrics server failed: %v", serveErr)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}
