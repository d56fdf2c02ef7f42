package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dealer_sync/api"
	"dealer_sync/config"
	"dealer_sync/httputil"
	"dealer_sync/logging"
	"dealer_sync/models"
	"dealer_sync/scheduler"
	"dealer_sync/scraper"
	"dealer_sync/storage"
	"dealer_sync/syncer"
)

var (
	syncNow = flag.Bool("sync", false, "Run one sync and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, out, err := logging.Setup(cfg.LogFile)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Printf("Starting dealer sync for dealer %s...", cfg.DealerID)
	log.Printf("Provider: %s (%s)", cfg.Provider.Name, cfg.Provider.SearchURL)

	clients := httputil.NewClients(&cfg.Provider)
	source, err := scraper.NewBlocketClient(cfg.Provider, clients)
	if err != nil {
		log.Fatalf("Failed to create provider client: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := storage.NewSnapshotFile(cfg.SnapshotPath())
	log.Printf("Snapshot: %s", store.Path())

	syn := syncer.New(cfg.DealerID, source, store)
	if cfg.S3.Enabled() {
		publisher, err := storage.NewS3Publisher(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("Failed to set up S3 publisher: %v", err)
		}
		syn.SetPublisher(publisher)
		log.Printf("Publishing snapshots to %s", publisher.Location())
	}

	if *syncNow {
		log.Println("Running sync...")
		snap, err := syn.Sync(ctx, models.TriggerCLI)
		if err != nil {
			log.Fatalf("Sync failed: %v", err)
		}
		log.Printf("Sync complete! %d cars", snap.Count)
		return
	}

	sched := scheduler.New(cfg.Scheduler, syn, store)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	log.Println(cfg.ScheduleDescription())

	server := api.NewServer(store, syn, cfg.ScheduleDescription())
	server.SetScheduler(sched)
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.Handler(cfg.FrontendURL, out),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("API listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("API shutdown: %v", err)
	}
	sched.Stop()
	cancel()
	log.Println("Goodbye!")
}
