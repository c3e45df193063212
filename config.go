package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"route-planner/routing"
)

// Config holds the settings read from the environment (and an optional .env file)
type Config struct {
	Addr            string
	OSMFile         string
	SnapshotFile    string
	DataDir         string // POST /dataset only reads files below this directory
	ExcludeClasses  []routing.RoadClass
	SearchTimeout   time.Duration
	SimplifyEpsilon float64
}

func defaultConfig() Config {
	return Config{
		Addr:          ":8080",
		DataDir:       "data",
		SearchTimeout: 5 * time.Second,
	}
}

// LoadConfig reads .env if present, then the ROUTE_PLANNER_* variables
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️  No .env file found, using environment variables")
	}
	return configFromEnv(os.Getenv)
}

func configFromEnv(getenv func(string) string) (Config, error) {
	cfg := defaultConfig()

	if v := getenv("ROUTE_PLANNER_ADDR"); v != "" {
		cfg.Addr = v
	}
	cfg.OSMFile = getenv("ROUTE_PLANNER_OSM_FILE")
	cfg.SnapshotFile = getenv("ROUTE_PLANNER_SNAPSHOT_FILE")
	if v := getenv("ROUTE_PLANNER_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := getenv("ROUTE_PLANNER_EXCLUDE_CLASSES"); v != "" {
		for _, name := range strings.Split(v, ",") {
			class := routing.ParseRoadClass(name)
			if class == routing.Invalid {
				return Config{}, fmt.Errorf("unknown road class %q in ROUTE_PLANNER_EXCLUDE_CLASSES", name)
			}
			cfg.ExcludeClasses = append(cfg.ExcludeClasses, class)
		}
	}

	if v := getenv("ROUTE_PLANNER_SEARCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ROUTE_PLANNER_SEARCH_TIMEOUT: %w", err)
		}
		cfg.SearchTimeout = d
	}

	if v := getenv("ROUTE_PLANNER_SIMPLIFY_EPSILON"); v != "" {
		eps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ROUTE_PLANNER_SIMPLIFY_EPSILON: %w", err)
		}
		cfg.SimplifyEpsilon = eps
	}

	return cfg, nil
}

// graphOptions turns the configured exclusions into graph options
func (c Config) graphOptions() []routing.Option {
	if len(c.ExcludeClasses) == 0 {
		return nil
	}
	return []routing.Option{routing.WithExclusion(routing.ExcludeClasses(c.ExcludeClasses...))}
}

var errOutsideDataDir = errors.New("file is outside the data directory")

// dataFile resolves a client supplied name against DataDir and refuses
// anything that would escape it
func (c Config) dataFile(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return "", errOutsideDataDir
	}
	base, err := filepath.Abs(c.DataDir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(base, name)
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errOutsideDataDir
	}
	return path, nil
}
