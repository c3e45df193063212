package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twpayne/go-polyline"

	"route-planner/osmdata"
	"route-planner/routing"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type RouteRequest struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

type RouteResponse struct {
	Path           []Point `json:"path"`
	Success        bool    `json:"success"`
	Message        string  `json:"message,omitempty"`
	Distance       float64 `json:"distance"`
	DistanceMeters float64 `json:"distanceMeters,omitempty"`
	Explored       int     `json:"explored"`
	Polyline       string  `json:"polyline,omitempty"`
}

type LoadRequest struct {
	OSMFile string `json:"osmFile"`
	Force   bool   `json:"force,omitempty"` // Set to true to replace a loaded dataset
}

// Server serves routes over the currently loaded graph
type Server struct {
	cfg Config

	loadMu sync.Mutex // serializes POST /dataset from the conflict check to the swap

	mu      sync.RWMutex
	dataset *routing.Dataset
	graph   *routing.Graph
}

func NewServer(cfg Config) *Server {
	return &Server{cfg: cfg}
}

// SetDataset builds a graph for ds and swaps it in
func (s *Server) SetDataset(ds *routing.Dataset) error {
	startTime := time.Now()
	log.Printf("🗺️  Building search graph over %d nodes, %d segments...\n", len(ds.Nodes), len(ds.Segments))

	graph, err := routing.NewGraph(ds, s.cfg.graphOptions()...)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.dataset = ds
	s.graph = graph
	s.mu.Unlock()
	graphNodes.Set(float64(graph.Len()))

	log.Printf("   ✅ Graph built: %d reachable nodes, %d edges\n", graph.Index().Len(), graph.EdgeCount())
	log.Printf("   ⏱️  Build time: %.2f seconds\n", time.Since(startTime).Seconds())
	return nil
}

func (s *Server) current() (*routing.Dataset, *routing.Graph) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset, s.graph
}

// Router wires every endpoint
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/route", s.routeHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/route.geojson", s.routeGeoJSONHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/closest", s.closestHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/graph/lines", s.graphLinesHandler).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/dataset", s.loadDatasetHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet, http.MethodOptions)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// search snaps both points and runs A* under the configured deadline
func (s *Server) search(ctx context.Context, graph *routing.Graph, from, to Point) (routing.Result, error) {
	if s.cfg.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SearchTimeout)
		defer cancel()
	}

	startTime := time.Now()
	res, err := graph.Route(ctx, orb.Point{from.X, from.Y}, orb.Point{to.X, to.Y})
	searchDuration.Observe(time.Since(startTime).Seconds())
	nodesExplored.Observe(float64(res.Explored))
	return res, err
}

// searchStatus maps a search error onto an HTTP status and outcome label
func searchStatus(err error) (int, string) {
	switch {
	case errors.Is(err, routing.ErrInvalidPoint):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, routing.ErrNoReachableNode):
		return http.StatusUnprocessableEntity, "no_reachable_node"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusOK, "timeout"
	default:
		return http.StatusInternalServerError, "error"
	}
}

func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("📍 Route request received")
	defer log.Println("========================================")

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		routeRequests.WithLabelValues("bad_request").Inc()
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	log.Printf("   Start: (%.6f, %.6f)\n", req.Start.X, req.Start.Y)
	log.Printf("   End:   (%.6f, %.6f)\n", req.End.X, req.End.Y)

	ds, graph := s.current()
	if graph == nil {
		log.Println("❌ No dataset loaded")
		routeRequests.WithLabelValues("unavailable").Inc()
		http.Error(w, "No dataset loaded. POST /dataset first", http.StatusServiceUnavailable)
		return
	}

	log.Println("🔍 Running A* on road graph...")
	res, err := s.search(r.Context(), graph, req.Start, req.End)
	if err != nil {
		status, outcome := searchStatus(err)
		routeRequests.WithLabelValues(outcome).Inc()
		log.Printf("❌ Search failed: %v\n", err)
		if status != http.StatusOK {
			http.Error(w, err.Error(), status)
			return
		}
		writeJSON(w, http.StatusOK, RouteResponse{
			Path:     []Point{},
			Message:  "Search timed out before reaching the destination",
			Explored: res.Explored,
		})
		return
	}

	response := s.buildResponse(ds, res)
	if !response.Success {
		log.Println("❌ No path found")
		routeRequests.WithLabelValues("no_path").Inc()
	} else {
		log.Printf("✅ Path found with %d waypoints after expanding %d nodes\n", len(res.Path), res.Explored)
		log.Printf("   Distance: %.2f meters\n", response.DistanceMeters)
		routeRequests.WithLabelValues("found").Inc()
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) buildResponse(ds *routing.Dataset, res routing.Result) RouteResponse {
	response := RouteResponse{
		Path:           make([]Point, 0, len(res.Path)),
		Success:        res.Found(),
		Distance:       res.Distance,
		DistanceMeters: res.Meters(ds.MetricScale),
		Explored:       res.Explored,
	}
	if !response.Success {
		response.Message = "Start and end are not connected by the road network"
		return response
	}

	line := routing.SimplifyPath(res.Path, s.cfg.SimplifyEpsilon)
	coords := make([][]float64, 0, len(line))
	for _, p := range line {
		response.Path = append(response.Path, Point{X: p.X(), Y: p.Y()})
		coords = append(coords, []float64{p.Y(), p.X()})
	}
	response.Polyline = string(polyline.EncodeCoords(coords))

	return response
}

func queryFloat(r *http.Request, name string) (float64, error) {
	v, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s: not a finite number", name)
	}
	return v, nil
}

func queryPoint(r *http.Request, xName, yName string) (Point, error) {
	x, err := queryFloat(r, xName)
	if err != nil {
		return Point{}, err
	}
	y, err := queryFloat(r, yName)
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

// GET /route.geojson?sx=&sy=&ex=&ey= - Route as a GeoJSON feature collection
func (s *Server) routeGeoJSONHandler(w http.ResponseWriter, r *http.Request) {
	from, err := queryPoint(r, "sx", "sy")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	to, err := queryPoint(r, "ex", "ey")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ds, graph := s.current()
	if graph == nil {
		http.Error(w, "No dataset loaded. POST /dataset first", http.StatusServiceUnavailable)
		return
	}

	res, err := s.search(r.Context(), graph, from, to)
	if err != nil {
		status, outcome := searchStatus(err)
		routeRequests.WithLabelValues(outcome).Inc()
		if status != http.StatusOK {
			http.Error(w, err.Error(), status)
			return
		}
	}

	fc := geojson.NewFeatureCollection()
	if res.Found() {
		routeRequests.WithLabelValues("found").Inc()
		f := geojson.NewFeature(routing.SimplifyPath(res.Path, s.cfg.SimplifyEpsilon))
		f.Properties["distance"] = res.Distance
		f.Properties["distanceMeters"] = res.Meters(ds.MetricScale)
		f.Properties["explored"] = res.Explored
		fc.Append(f)
	} else if err == nil {
		routeRequests.WithLabelValues("no_path").Inc()
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

// GET /closest?x=&y= - Closest node that lies on a traversable segment
func (s *Server) closestHandler(w http.ResponseWriter, r *http.Request) {
	p, err := queryPoint(r, "x", "y")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, graph := s.current()
	if graph == nil {
		http.Error(w, "No dataset loaded. POST /dataset first", http.StatusServiceUnavailable)
		return
	}

	pos, err := graph.FindClosest(p.X, p.Y)
	if err != nil {
		status, _ := searchStatus(err)
		http.Error(w, err.Error(), status)
		return
	}

	node := graph.Node(pos)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":        node.ID,
		"x":         node.X,
		"y":         node.Y,
		"neighbors": len(graph.Neighbors(pos)),
	})
}

// GET /graph/lines - Graph edges as line strings for visualization
func (s *Server) graphLinesHandler(w http.ResponseWriter, r *http.Request) {
	_, graph := s.current()
	if graph == nil {
		http.Error(w, "No dataset loaded. POST /dataset first", http.StatusServiceUnavailable)
		return
	}

	lines := graph.Lines()
	log.Printf("📊 Returning %d line segments\n", len(lines))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"lines":    lines,
		"numNodes": graph.Len(),
		"numEdges": len(lines),
	})
}

// POST /dataset - Load an OSM extract and rebuild the graph
func (s *Server) loadDatasetHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("🗺️  Load dataset request received")
	defer log.Println("========================================")

	var req LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OSMFile == "" {
		log.Println("❌ Invalid request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	path, err := s.cfg.dataFile(req.OSMFile)
	if err != nil {
		log.Printf("❌ Rejected osm file %q: %v\n", req.OSMFile, err)
		http.Error(w, "osmFile must name a file inside the data directory", http.StatusBadRequest)
		return
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if _, graph := s.current(); graph != nil && !req.Force {
		log.Println("⚠️  Dataset already loaded")
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"success": false,
			"error":   "dataset already loaded",
			"message": "Set 'force: true' to replace it.",
		})
		return
	}

	ds, err := osmdata.LoadFile(r.Context(), path)
	if err != nil {
		log.Printf("❌ %v\n", err)
		http.Error(w, "Failed to load osm file", http.StatusBadRequest)
		return
	}
	if err := s.SetDataset(ds); err != nil {
		log.Printf("❌ %v\n", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"numNodes":    len(ds.Nodes),
		"numSegments": len(ds.Segments),
		"numAreas":    len(ds.Areas),
	})
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ds, graph := s.current()

	status := "ready"
	body := map[string]interface{}{"hasGraph": graph != nil}
	if graph == nil {
		status = "waiting for dataset"
	} else {
		body["numNodes"] = graph.Len()
		body["numSegments"] = len(ds.Segments)
		body["numEdges"] = graph.EdgeCount()
	}
	body["status"] = status

	writeJSON(w, http.StatusOK, body)
}
