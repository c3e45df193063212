// Package osmdata turns OpenStreetMap XML extracts into routing datasets.
package osmdata

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"

	"route-planner/routing"
)

const earthRadiusMeters = 6378137.0

// roadClasses maps highway tag values onto road classes. Anything missing is not a road.
var roadClasses = map[string]routing.RoadClass{
	"motorway":      routing.Motorway,
	"trunk":         routing.Trunk,
	"primary":       routing.Primary,
	"secondary":     routing.Secondary,
	"tertiary":      routing.Tertiary,
	"residential":   routing.Residential,
	"living_street": routing.Residential,
	"service":       routing.Service,
	"unclassified":  routing.Unclassified,
	"footway":       routing.Footway,
	"bridleway":     routing.Footway,
	"steps":         routing.Footway,
	"path":          routing.Footway,
	"pedestrian":    routing.Footway,
}

// RoadClassOf returns the class for a highway tag value
func RoadClassOf(highway string) routing.RoadClass {
	return roadClasses[highway]
}

// areaKind classifies a closed way as an area feature, or returns ""
func areaKind(tags osm.Tags) string {
	switch {
	case tags.Find("building") != "":
		return "building"
	case tags.Find("natural") == "water", tags.Find("waterway") == "riverbank":
		return "water"
	case tags.Find("leisure") != "":
		return "leisure"
	case tags.Find("landuse") != "":
		return "landuse:" + tags.Find("landuse")
	}
	return ""
}

type rawNode struct {
	id       int64
	lon, lat float64
}

// Load reads an OSM XML document and returns a dataset whose coordinates are
// projected to Mercator metres and normalized into [0,1] by the metric scale
func Load(ctx context.Context, r io.Reader) (*routing.Dataset, error) {
	startTime := time.Now()

	scanner := osmxml.New(ctx, r)
	defer scanner.Close()

	var nodes []rawNode
	var ways []*osm.Way
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			nodes = append(nodes, rawNode{id: int64(o.ID), lon: o.Lon, lat: o.Lat})
		case *osm.Way:
			ways = append(ways, o)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan osm data: %w", err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("osm data contains no nodes")
	}

	ds := &routing.Dataset{Nodes: make([]routing.Node, 0, len(nodes))}

	bound := nodeBound(nodes)
	minX, minY := project(bound.Min.Lon(), bound.Min.Lat())
	maxX, maxY := project(bound.Max.Lon(), bound.Max.Lat())
	ds.MetricScale = metricScale(maxX-minX, maxY-minY)

	known := make(map[int64]routing.Node, len(nodes))
	for _, n := range nodes {
		x, y := project(n.lon, n.lat)
		node := routing.Node{
			ID: n.id,
			X:  (x - minX) / ds.MetricScale,
			Y:  (y - minY) / ds.MetricScale,
		}
		ds.Nodes = append(ds.Nodes, node)
		known[n.id] = node
	}

	dropped := 0
	for _, w := range ways {
		ids := make([]int64, 0, len(w.Nodes))
		for _, wn := range w.Nodes {
			// clipped extracts reference nodes outside the file
			if _, ok := known[int64(wn.ID)]; !ok {
				dropped++
				continue
			}
			ids = append(ids, int64(wn.ID))
		}
		if len(ids) == 0 {
			continue
		}

		if class := RoadClassOf(w.Tags.Find("highway")); class != routing.Invalid {
			ds.Segments = append(ds.Segments, routing.Segment{
				ID:    int64(w.ID),
				Nodes: ids,
				Class: class,
			})
			continue
		}

		if kind := areaKind(w.Tags); kind != "" && len(ids) >= 4 && ids[0] == ids[len(ids)-1] {
			ring := make(orb.Ring, 0, len(ids))
			for _, id := range ids {
				ring = append(ring, known[id].Point())
			}
			ds.Areas = append(ds.Areas, routing.Area{ID: int64(w.ID), Kind: kind, Ring: ring})
		}
	}

	log.Printf("   ✅ Parsed %d nodes, %d road segments, %d areas in %.2f seconds\n",
		len(ds.Nodes), len(ds.Segments), len(ds.Areas), time.Since(startTime).Seconds())
	if dropped > 0 {
		log.Printf("   ℹ️  Dropped %d way references to nodes missing from the extract\n", dropped)
	}

	return ds, nil
}

// LoadFile opens and parses an OSM XML file
func LoadFile(ctx context.Context, filename string) (*routing.Dataset, error) {
	log.Printf("📂 Loading OSM data from %s...\n", filename)

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open osm file: %w", err)
	}
	defer f.Close()

	return Load(ctx, f)
}

func nodeBound(nodes []rawNode) orb.Bound {
	points := make(orb.MultiPoint, 0, len(nodes))
	for _, n := range nodes {
		points = append(points, orb.Point{n.lon, n.lat})
	}
	return points.Bound()
}

// project converts lon/lat degrees to spherical Mercator metres
func project(lon, lat float64) (float64, float64) {
	rad := math.Pi / 180
	x := lon * rad * earthRadiusMeters
	y := math.Log(math.Tan(math.Pi/4+lat*rad/2)) * earthRadiusMeters
	return x, y
}

// metricScale is the longer side of the extent so both axes land in [0,1]
func metricScale(dx, dy float64) float64 {
	if scale := math.Max(dx, dy); scale > 0 {
		return scale
	}
	return 1
}
