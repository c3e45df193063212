package main

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"route-planner/routing"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := configFromEnv(envMap(nil))
	if err != nil {
		t.Fatalf("configFromEnv returned error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("addr = %q, want :8080", cfg.Addr)
	}
	if cfg.SearchTimeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.SearchTimeout)
	}
	if len(cfg.ExcludeClasses) != 0 || cfg.graphOptions() != nil {
		t.Errorf("no class should be excluded by default, got %v", cfg.ExcludeClasses)
	}
}

func TestConfigFromEnv(t *testing.T) {
	cfg, err := configFromEnv(envMap(map[string]string{
		"ROUTE_PLANNER_ADDR":             ":9000",
		"ROUTE_PLANNER_OSM_FILE":         "map.osm",
		"ROUTE_PLANNER_DATA_DIR":         "/srv/maps",
		"ROUTE_PLANNER_EXCLUDE_CLASSES":  "footway, motorway",
		"ROUTE_PLANNER_SEARCH_TIMEOUT":   "250ms",
		"ROUTE_PLANNER_SIMPLIFY_EPSILON": "0.001",
	}))
	if err != nil {
		t.Fatalf("configFromEnv returned error: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.OSMFile != "map.osm" || cfg.DataDir != "/srv/maps" {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.ExcludeClasses) != 2 || cfg.ExcludeClasses[0] != routing.Footway || cfg.ExcludeClasses[1] != routing.Motorway {
		t.Errorf("excluded = %v, want [footway motorway]", cfg.ExcludeClasses)
	}
	if cfg.SearchTimeout != 250*time.Millisecond {
		t.Errorf("timeout = %v, want 250ms", cfg.SearchTimeout)
	}
	if cfg.SimplifyEpsilon != 0.001 {
		t.Errorf("epsilon = %v, want 0.001", cfg.SimplifyEpsilon)
	}
}

func TestConfigRejectsBadValues(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown class": {"ROUTE_PLANNER_EXCLUDE_CLASSES": "footway,cycleway"},
		"bad timeout":   {"ROUTE_PLANNER_SEARCH_TIMEOUT": "soon"},
		"bad epsilon":   {"ROUTE_PLANNER_SIMPLIFY_EPSILON": "tiny"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := configFromEnv(envMap(env)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestConfigDataFile(t *testing.T) {
	cfg := defaultConfig()
	cfg.DataDir = t.TempDir()

	tests := []struct {
		name string
		want string
		err  bool
	}{
		{"map.osm", filepath.Join(cfg.DataDir, "map.osm"), false},
		{"region/city.osm", filepath.Join(cfg.DataDir, "region", "city.osm"), false},
		{"region/../map.osm", filepath.Join(cfg.DataDir, "map.osm"), false},
		{"", "", true},
		{".", "", true},
		{"..", "", true},
		{"../map.osm", "", true},
		{"region/../../map.osm", "", true},
		{"/etc/passwd", "", true},
	}
	for _, tt := range tests {
		got, err := cfg.dataFile(tt.name)
		if tt.err {
			if !errors.Is(err, errOutsideDataDir) {
				t.Errorf("dataFile(%q) error = %v, want %v", tt.name, err, errOutsideDataDir)
			}
			continue
		}
		if err != nil {
			t.Errorf("dataFile(%q) returned error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("dataFile(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
