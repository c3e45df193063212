package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"route-planner/osmdata"
	"route-planner/routing"
)

// loadDataset prefers an existing snapshot and falls back to parsing the OSM
// file, writing a snapshot afterwards when one is configured
func loadDataset(ctx context.Context, cfg Config) (*routing.Dataset, error) {
	if cfg.SnapshotFile != "" {
		ds, err := osmdata.LoadSnapshot(cfg.SnapshotFile)
		if err == nil {
			return ds, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Println("ℹ️  No snapshot found (this is normal on first run)")
	}

	if cfg.OSMFile == "" {
		return nil, nil
	}

	ds, err := osmdata.LoadFile(ctx, cfg.OSMFile)
	if err != nil {
		return nil, err
	}
	if cfg.SnapshotFile != "" {
		if err := osmdata.SaveSnapshot(ds, cfg.SnapshotFile); err != nil {
			log.Printf("⚠️  Failed to save snapshot: %v\n", err)
		}
	}
	return ds, nil
}

func run() error {
	log.Println("========================================")
	log.Println("🚀 Road Network Route Planner")
	log.Println("========================================")

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	server := NewServer(cfg)

	ds, err := loadDataset(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	if ds != nil {
		if err := server.SetDataset(ds); err != nil {
			return fmt.Errorf("failed to build graph: %w", err)
		}
	} else {
		log.Println("ℹ️  No dataset configured")
		log.Println("   Call POST /dataset to load an OSM extract")
	}
	log.Printf("   Data directory for POST /dataset: %s\n", cfg.DataDir)
	if len(cfg.ExcludeClasses) > 0 {
		log.Printf("   Non-traversable road classes: %v\n", cfg.ExcludeClasses)
	}
	log.Println("")

	log.Printf("Server starting on %s\n", cfg.Addr)
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST /route             - Compute route between two points")
	log.Println("  GET  /route.geojson     - Route as GeoJSON")
	log.Println("  GET  /closest           - Closest reachable node")
	log.Println("  GET  /graph/lines       - Road graph edges for visualization")
	log.Println("  POST /dataset           - Load an OSM extract")
	log.Println("  GET  /health            - Check server status")
	log.Println("  GET  /metrics           - Prometheus metrics")
	log.Println("========================================")

	return http.ListenAndServe(cfg.Addr, server.Router())
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
