// Command storefinder-demo exercises a running storefinder server: it checks
// health, replays the worked examples and shows how invalid input is
// reported.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/banshee-data/storefinder/internal/api"
	"github.com/banshee-data/storefinder/internal/httputil"
	"github.com/banshee-data/storefinder/internal/locator"
)

var (
	baseURL = flag.String("url", "http://localhost:8080", "storefinder base URL")
	timeout = flag.Duration("timeout", 30*time.Second, "Per-request timeout")
)

type examplesResponse struct {
	Examples []api.Example `json:"examples"`
}

type locationsResponse struct {
	Success bool `json:"success"`
	Data    struct {
		ID        string             `json:"id"`
		Count     int                `json:"count"`
		Locations []locator.Position `json:"locations"`
		Elapsed   float64            `json:"elapsed"`
	} `json:"data"`
}

// invalidCase is a request the server must reject with 400.
type invalidCase struct {
	name  string
	body  interface{}
	field string
}

var invalidCases = []invalidCase{
	{"k out of range", map[string]interface{}{"k": 0, "grid": [][]int{{0, 1}, {1, 0}}}, locator.FieldK},
	{"jagged grid", map[string]interface{}{"k": 1, "grid": [][]int{{0, 1}, {1}}}, locator.FieldGrid},
	{"no houses", map[string]interface{}{"k": 1, "grid": [][]int{{0, 0}, {0, 0}}}, locator.FieldGrid},
	{"missing grid", map[string]interface{}{"k": 1}, ""},
}

// run walks through the demo, writing a report to out. It returns an error
// describing every check that failed.
func run(ctx context.Context, client *httputil.JSONClient, out io.Writer) error {
	var failures []string
	fail := func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		failures = append(failures, msg)
		fmt.Fprintf(out, "FAIL %s\n", msg)
	}

	fmt.Fprintln(out, "1. Health check")
	var health map[string]string
	if status, err := client.Get(ctx, "/health", &health); err != nil || status != http.StatusOK {
		return fmt.Errorf("health check: status %d: %v", status, err)
	}
	fmt.Fprintf(out, "   status=%s version=%s\n", health["status"], health["version"])

	fmt.Fprintln(out, "2. Examples")
	var examples examplesResponse
	if status, err := client.Get(ctx, "/api/examples", &examples); err != nil || status != http.StatusOK {
		return fmt.Errorf("get examples: status %d: %v", status, err)
	}
	fmt.Fprintf(out, "   %d examples\n", len(examples.Examples))

	fmt.Fprintln(out, "3. Store locations")
	for _, ex := range examples.Examples {
		var got locationsResponse
		status, err := client.Post(ctx, "/api/store-locations", ex.Request, &got)
		if err != nil || status != http.StatusOK {
			fail("%s: status %d: %v", ex.Description, status, err)
			continue
		}
		want := ex.ExpectedResult
		if got.Data.Count != want.Count || !reflect.DeepEqual(got.Data.Locations, want.Locations) {
			fail("%s: got %d %v, want %d %v", ex.Description, got.Data.Count, got.Data.Locations, want.Count, want.Locations)
			continue
		}
		fmt.Fprintf(out, "   ok   %s: count=%d elapsed=%.3fms\n", ex.Description, got.Data.Count, got.Data.Elapsed)
	}

	fmt.Fprintln(out, "4. Invalid input")
	for _, c := range invalidCases {
		var got httputil.ErrorResponse
		status, err := client.Post(ctx, "/api/store-locations", c.body, &got)
		if err != nil || status != http.StatusBadRequest || got.Field != c.field {
			fail("%s: status %d field %q: %v", c.name, status, got.Field, err)
			continue
		}
		detail, _ := json.Marshal(got)
		fmt.Fprintf(out, "   ok   %s: %s\n", c.name, detail)
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d checks failed: %s", len(failures), strings.Join(failures, "; "))
	}
	fmt.Fprintln(out, "All checks passed")
	return nil
}

func main() {
	flag.Parse()

	client := httputil.NewJSONClient(&http.Client{Timeout: *timeout}, *baseURL)
	if err := run(context.Background(), client, os.Stdout); err != nil {
		log.Printf("demo failed: %v", err)
		log.Printf("is the server running? start it with: storefinder -listen :8080")
		os.Exit(1)
	}
}
