package routing

import (
	"strings"

	"github.com/paulmach/orb"
)

// RoadClass is the classification tag carried by a way segment
type RoadClass int

const (
	Invalid RoadClass = iota
	Unclassified
	Service
	Residential
	Tertiary
	Secondary
	Primary
	Trunk
	Motorway
	Footway
)

var roadClassNames = []string{
	"invalid", "unclassified", "service", "residential", "tertiary",
	"secondary", "primary", "trunk", "motorway", "footway",
}

func (c RoadClass) String() string {
	if c < 0 || int(c) >= len(roadClassNames) {
		return "invalid"
	}
	return roadClassNames[c]
}

// MarshalText encodes the class by name so snapshots stay readable
func (c RoadClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *RoadClass) UnmarshalText(text []byte) error {
	*c = ParseRoadClass(string(text))
	return nil
}

// ParseRoadClass maps a class name (as produced by String) back to the class.
// Unknown names map to Invalid.
func ParseRoadClass(name string) RoadClass {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range roadClassNames {
		if n == name {
			return RoadClass(i)
		}
	}
	return Invalid
}

// Node is a geometric node with normalized planar coordinates in [0,1]
type Node struct {
	ID int64   `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Point returns the node position as an orb point
func (n Node) Point() orb.Point {
	return orb.Point{n.X, n.Y}
}

// Segment is an ordered sequence of node ids describing a road fragment
type Segment struct {
	ID    int64     `json:"id"`
	Nodes []int64   `json:"nodes"`
	Class RoadClass `json:"class"`
}

// Area is a polygonal map feature (building, water, landuse...). Search ignores areas.
type Area struct {
	ID   int64    `json:"id"`
	Kind string   `json:"kind"`
	Ring orb.Ring `json:"ring"`
}

// Dataset is the parsed map handed to the router. It is not mutated after loading.
type Dataset struct {
	Nodes    []Node    `json:"nodes"`
	Segments []Segment `json:"segments"`
	Areas    []Area    `json:"areas,omitempty"`

	// MetricScale converts normalized distances back to metres
	MetricScale float64 `json:"metricScale"`
}
