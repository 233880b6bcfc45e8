/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/mfreeman451/checkmate/db"
	"github.com/mfreeman451/checkmate/pkg/api"
	"github.com/mfreeman451/checkmate/pkg/checker"
	"github.com/mfreeman451/checkmate/pkg/checker/cloudcredits"
	"github.com/mfreeman451/checkmate/pkg/checker/cpupeaks"
	"github.com/mfreeman451/checkmate/pkg/checker/humidity"
	"github.com/mfreeman451/checkmate/pkg/config"
	"github.com/mfreeman451/checkmate/pkg/engine"
	"github.com/mfreeman451/checkmate/pkg/lifecycle"
	"github.com/mfreeman451/checkmate/pkg/metrics"
	"github.com/mfreeman451/checkmate/pkg/prediction"
)

const cleanupInterval = time.Hour

var (
	errFailedToLoadConfig = fmt.Errorf("failed to load config")
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log.Printf("Starting check engine...")

	configPath := flag.String("config", "/etc/checkmate/engined.json", "Path to config file")
	flag.Parse()

	var cfg config.EngineConfig

	if err := config.LoadAndValidate(*configPath, &cfg); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}

	registry := checker.NewRegistry()
	registry.Register(cloudcredits.CheckType, cloudcredits.Registration())
	registry.Register(humidity.CheckType, humidity.Registration())
	registry.Register(cpupeaks.CheckType, cpupeaks.Registration(database,
		prediction.WithTimeout(time.Duration(cfg.RetrievalTimeout))))

	metricsMgr := metrics.NewMetricsManager(cfg.Metrics)
	apiServer := api.NewAPIServer(database, metricsMgr)

	opts := []engine.Option{
		engine.WithSink(apiServer),
		engine.WithSink(dbSink(database)),
		engine.WithDebug(cfg.Debug),
	}
	if cfg.LaunchRate > 0 {
		opts = append(opts, engine.WithLaunchRate(cfg.LaunchRate, int(cfg.LaunchRate)))
	}

	eng, err := engine.New(registry, opts...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	apiServer.SetEvaluator(eng)

	svc := &engineService{
		api:       apiServer,
		database:  database,
		httpAddr:  cfg.HTTPAddr,
		retention: time.Duration(cfg.Retention),
	}

	if err := lifecycle.RunServer(context.Background(), &lifecycle.ServerOptions{
		ListenAddr:  cfg.ListenAddr,
		ServiceName: "engined",
		Service:     svc,
	}); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// dbSink persists every item result and its perf data.
func dbSink(database *db.DB) engine.SinkFunc {
	return func(res engine.ItemResult) {
		if err := database.InsertResult(res.Host, res.CheckType, res.Item, res.Result, res.Timestamp); err != nil {
			log.Printf("Error persisting result for %s/%s: %v", res.Host, res.Item, err)
		}
	}
}

// engineService adapts the API server and retention janitor to
// lifecycle.Service.
type engineService struct {
	api       *api.APIServer
	database  *db.DB
	httpAddr  string
	retention time.Duration
}

func (s *engineService) Start(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		if err := s.api.Start(s.httpAddr); err != nil {
			errChan <- err
		}
	}()

	go s.cleanupLoop(ctx)

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return nil
	}
}

func (s *engineService) Stop(ctx context.Context) error {
	if err := s.api.Shutdown(ctx); err != nil {
		return fmt.Errorf("API shutdown: %w", err)
	}

	return s.database.Close()
}

func (s *engineService) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.database.CleanOldData(s.retention); err != nil {
				log.Printf("Error cleaning old data: %v", err)
			}
		}
	}
}
