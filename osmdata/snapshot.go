package osmdata

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"route-planner/routing"
)

// SaveSnapshot serializes the dataset to a JSON file so later starts can skip OSM parsing
func SaveSnapshot(ds *routing.Dataset, filename string) error {
	log.Printf("💾 Saving dataset snapshot to %s...\n", filename)

	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}

	err = os.WriteFile(filename, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	log.Printf("   ✅ Snapshot saved (%d bytes)\n", len(data))
	return nil
}

// LoadSnapshot reads a dataset written by SaveSnapshot
func LoadSnapshot(filename string) (*routing.Dataset, error) {
	log.Printf("📂 Loading dataset snapshot from %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var ds routing.Dataset
	err = json.Unmarshal(data, &ds)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal dataset: %w", err)
	}

	log.Printf("   ✅ Snapshot loaded: %d nodes, %d segments\n", len(ds.Nodes), len(ds.Segments))
	return &ds, nil
}
