// Command gait runs the gait analysis service: the WebSocket frame
// analysis endpoint plus the HTTP API for presets, calibration labels,
// and debug charts.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/stride-data/gait.report/internal/api"
	"github.com/stride-data/gait.report/internal/config"
	"github.com/stride-data/gait.report/internal/db"
	"github.com/stride-data/gait.report/internal/monitoring"
	"github.com/stride-data/gait.report/internal/pose"
	"github.com/stride-data/gait.report/internal/session"
	"github.com/stride-data/gait.report/internal/version"
	"github.com/stride-data/gait.report/internal/ws"
)

var (
	listen     = flag.String("listen", ":8000", "HTTP listen address")
	dbFile     = flag.String("db", "gait_data.db", "Path to the SQLite database file")
	configPath = flag.String("config", "", "Path to the tuning config JSON (optional)")
	logSize    = flag.Int("log-size", 500, "Number of recent results kept for the chart endpoints")
	demoPose   = flag.Bool("demo-pose", true, "Serve synthetic pose keypoints in full-pose mode")
	demoSeed   = flag.Int64("demo-seed", 0, "Seed for the demo pose estimator (0 = time-based)")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("HTTP listen address is required")
	}

	monitoring.SetLogger(log.Printf)
	log.Printf("gait analysis service %s (%s)", version.Version, version.GitSHA)

	var tuning *config.TuningConfig
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load tuning config: %v", err)
		}
		log.Printf("Loaded tuning config from %s", *configPath)
	} else if _, err := os.Stat(config.DefaultConfigPath); err == nil {
		tuning, err = config.LoadTuningConfig(config.DefaultConfigPath)
		if err != nil {
			log.Fatalf("Failed to load default tuning config: %v", err)
		}
		log.Printf("Loaded tuning config from %s", config.DefaultConfigPath)
	} else {
		tuning = config.EmptyTuningConfig()
		log.Print("No tuning config found, using built-in defaults")
	}

	database, err := db.Open(*dbFile)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if err := database.MigrateUp(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if v, dirty, err := database.MigrateVersion(); err == nil {
		log.Printf("Database schema at version %d (dirty=%v)", v, dirty)
	}

	var estimator pose.Estimator
	if *demoPose {
		seed := *demoSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		estimator = pose.NewDemoEstimator(seed)
		log.Print("Demo pose estimator enabled (full-pose mode serves synthetic keypoints)")
	} else {
		log.Print("No pose estimator configured; only marker mode will produce results")
	}

	results := session.NewLog(*logSize)
	wsHandler := ws.NewHandler(estimator, tuning, results)
	server := api.NewServer(database, wsHandler, results)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(server.ServeMux()),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("Listening on %s", *listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Print("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Print("Shutdown complete")
}
