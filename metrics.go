package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	routeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "route_planner_route_requests_total",
		Help: "Route requests by outcome",
	}, []string{"outcome"})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_planner_search_duration_seconds",
		Help:    "Time spent in A* search",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	nodesExplored = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_planner_nodes_explored",
		Help:    "Nodes expanded per search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	})

	graphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "route_planner_graph_nodes",
		Help: "Nodes in the loaded search graph",
	})
)
