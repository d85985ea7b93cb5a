// Command genfeed generates a mock Waze feed for local development, either
// written to a file or served over HTTP. It reuses the domain package's type
// vocabulary so generated alerts normalize the way real ones do.
//
// Usage:
//
//	go run ./cmd/genfeed -count 200 -out testdata/feed.json
//	go run ./cmd/genfeed -count 200 -serve :9000 -dup-ratio 0.5
//
// In serve mode each request returns the base set plus a few fresh alerts,
// so a locally running incidentd sees both duplicates and new incidents on
// every cycle, exercising the dedup path end to end.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/trafficpulse/waze-incident-service/internal/domain"
)

// Bounding box roughly covering the Austin, TX metro area.
const (
	minLat, maxLat = 30.1, 30.5
	minLon, maxLon = -97.9, -97.5
)

var alertTypes = []string{"ACCIDENT", "HAZARD", "JAM", "ROAD_CLOSED", "POLICE", "WEATHERHAZARD", "CHIT_CHAT"}

var streets = []string{
	"Main St", "Congress Ave", "Lamar Blvd", "Guadalupe St", "I-35",
	"MoPac Expy", "Burnet Rd", "South 1st St", "Cesar Chavez St",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	count := flag.Int("count", 100, "number of alerts in the base set")
	out := flag.String("out", "", "write the feed JSON to this file")
	serve := flag.String("serve", "", "serve the feed on this address instead of writing a file")
	dupRatio := flag.Float64("dup-ratio", 0.8, "serve mode: fraction of each response drawn from the base set")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	if *out == "" && *serve == "" {
		flag.Usage()
		return fmt.Errorf("one of -out or -serve is required")
	}

	rng := rand.New(rand.NewSource(*seed))
	base := generateAlerts(rng, *count)

	if *out != "" {
		data, err := json.MarshalIndent(envelope(base), "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			return fmt.Errorf("writing feed: %w", err)
		}
		log.Printf("wrote %d alerts to %s", len(base), *out)
	}

	// Run the base set through the real normalizer so a bad generator change
	// shows up here instead of in a confused incidentd.
	byType := make(map[domain.IncidentType]int)
	for _, a := range base {
		inc, err := domain.NormalizeRecord(domain.RawRecord(a))
		if err != nil {
			return fmt.Errorf("generated alert failed normalization: %w", err)
		}
		byType[inc.Type]++
	}
	log.Printf("base set by type: %v", byType)

	if *serve != "" {
		log.Printf("serving mock feed on %s (%d base alerts, dup-ratio %.2f)", *serve, len(base), *dupRatio)
		return serveFeed(*serve, base, *dupRatio, rng)
	}
	return nil
}

func envelope(alerts []map[string]any) map[string]any {
	return map[string]any{"alerts": alerts}
}

func generateAlerts(rng *rand.Rand, n int) []map[string]any {
	alerts := make([]map[string]any, n)
	now := time.Now().Add(-24 * time.Hour)
	for i := range alerts {
		alerts[i] = map[string]any{
			"uuid":        fmt.Sprintf("mock-%08x", rng.Uint32()),
			"type":        alertTypes[rng.Intn(len(alertTypes))],
			"street":      streets[rng.Intn(len(streets))],
			"city":        "Austin",
			"country":     "US",
			"reliability": rng.Intn(10) + 1,
			"pubMillis":   now.Add(time.Duration(rng.Intn(86400)) * time.Second).UnixMilli(),
			"location": map[string]any{
				"y": minLat + rng.Float64()*(maxLat-minLat),
				"x": minLon + rng.Float64()*(maxLon-minLon),
			},
		}
		// A slice of alerts without a uuid exercises the fallback tiers.
		if rng.Float64() < 0.2 {
			delete(alerts[i], "uuid")
		}
	}
	return alerts
}

func serveFeed(addr string, base []map[string]any, dupRatio float64, rng *rand.Rand) error {
	var mu sync.Mutex

	http.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		keep := int(float64(len(base)) * dupRatio)
		if keep > len(base) {
			keep = len(base)
		}
		fresh := generateAlerts(rng, len(base)-keep)

		resp := make([]map[string]any, 0, len(base))
		resp = append(resp, base[:keep]...)
		resp = append(resp, fresh...)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(envelope(resp)); err != nil {
			log.Printf("write response: %v", err)
		}
	})

	return http.ListenAndServe(addr, nil)
}
