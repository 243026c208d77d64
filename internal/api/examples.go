package api

import (
	"net/http"
	"time"

	"github.com/banshee-data/storefinder/internal/httputil"
	"github.com/banshee-data/storefinder/internal/locator"
	"github.com/banshee-data/storefinder/internal/version"
)

// ExampleRequest is the body of a worked example.
type ExampleRequest struct {
	K    int     `json:"k"`
	Grid [][]int `json:"grid"`
}

// ExampleResult is what the solver returns for an example.
type ExampleResult struct {
	Count     int                `json:"count"`
	Locations []locator.Position `json:"locations"`
}

// Example is one worked request with its expected answer.
type Example struct {
	Description    string         `json:"description"`
	Request        ExampleRequest `json:"request"`
	ExpectedResult ExampleResult  `json:"expectedResult"`
}

// Examples are served from /api/examples.
var Examples = []Example{
	{
		Description: "Basic example with K=2",
		Request: ExampleRequest{
			K: 2,
			Grid: [][]int{
				{0, 0, 0, 0},
				{0, 0, 1, 0},
				{1, 0, 0, 1},
			},
		},
		ExpectedResult: ExampleResult{
			Count:     2,
			Locations: []locator.Position{{Row: 2, Col: 1}, {Row: 2, Col: 2}},
		},
	},
	{
		Description: "Small example with K=1",
		Request: ExampleRequest{
			K: 1,
			Grid: [][]int{
				{0, 1},
				{0, 0},
			},
		},
		ExpectedResult: ExampleResult{
			Count:     2,
			Locations: []locator.Position{{Row: 0, Col: 0}, {Row: 1, Col: 1}},
		},
	},
	{
		Description: "Complex example with K=4",
		Request: ExampleRequest{
			K: 4,
			Grid: [][]int{
				{0, 0, 0, 1},
				{0, 1, 0, 0},
				{0, 0, 1, 0},
				{1, 0, 0, 0},
				{0, 0, 0, 0},
			},
		},
		ExpectedResult: ExampleResult{
			Count: 8,
			Locations: []locator.Position{
				{Row: 0, Col: 0}, {Row: 0, Col: 1},
				{Row: 1, Col: 0}, {Row: 1, Col: 2},
				{Row: 2, Col: 1}, {Row: 2, Col: 3},
				{Row: 3, Col: 2}, {Row: 3, Col: 3},
			},
		},
	},
}

func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]interface{}{"examples": Examples})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{
		"status":    "healthy",
		"timestamp": s.clock.Now().UTC().Format(time.RFC3339),
		"version":   version.Version,
	})
}
