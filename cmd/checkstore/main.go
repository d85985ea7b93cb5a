// Command checkstore verifies the integrity of a persisted master view: the
// file parses, every entry resolves an identity key, no two entries share a
// key, and rounded coordinates match what the rounding rule produces today.
// Run it against incidents_master.json after upgrades or manual edits.
//
// Usage:
//
//	go run ./cmd/checkstore -master data/incidents_master.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/trafficpulse/waze-incident-service/internal/domain"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func (p *phase) report() {
	if p.passed() {
		fmt.Printf("PASS  %s\n", p.name)
		return
	}
	fmt.Printf("FAIL  %s\n", p.name)
	for _, e := range p.errors {
		fmt.Printf("      %s\n", e)
	}
}

func main() {
	masterPath := flag.String("master", "data/incidents_master.json", "path to the persisted master view")
	flag.Parse()

	if code := run(*masterPath); code != 0 {
		os.Exit(code)
	}
}

func run(masterPath string) int {
	data, err := os.ReadFile(masterPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read master: %v\n", err)
		return 2
	}

	var incidents []domain.Incident
	if err := json.Unmarshal(data, &incidents); err != nil {
		fmt.Fprintf(os.Stderr, "parse master: %v\n", err)
		return 2
	}
	fmt.Printf("loaded %d incidents from %s\n", len(incidents), masterPath)

	phases := []*phase{
		checkUniqueKeys(incidents),
		checkRounding(incidents),
		checkTypes(incidents),
	}

	code := 0
	for _, p := range phases {
		p.report()
		if !p.passed() {
			code = 1
		}
	}
	return code
}

// checkUniqueKeys enforces the store's core invariant: no two entries
// resolve to the same identity key.
func checkUniqueKeys(incidents []domain.Incident) *phase {
	p := &phase{name: "unique identity keys"}
	seen := make(map[domain.IdentityKey]int, len(incidents))
	for i, inc := range incidents {
		key := domain.Identity(inc)
		if first, dup := seen[key]; dup {
			p.errorf("entries %d and %d share key %q", first, i, key)
			continue
		}
		seen[key] = i
	}
	return p
}

// checkRounding re-rounds the display coordinates and compares them to the
// persisted rounded values. A mismatch means the rounding rule changed after
// this file was written, which silently changes tier 2/3 identities.
func checkRounding(incidents []domain.Incident) *phase {
	p := &phase{name: "rounded coordinates consistent"}
	for i, inc := range incidents {
		if got := domain.RoundCoord(inc.Lat); got != inc.RoundedLat {
			p.errorf("entry %d: rounded_lat %v, rounding %v gives %v", i, inc.RoundedLat, inc.Lat, got)
		}
		if got := domain.RoundCoord(inc.Lon); got != inc.RoundedLon {
			p.errorf("entry %d: rounded_lon %v, rounding %v gives %v", i, inc.RoundedLon, inc.Lon, got)
		}
	}
	return p
}

// checkTypes verifies every entry carries a known canonical type and counts
// the distribution as a side effect.
func checkTypes(incidents []domain.Incident) *phase {
	p := &phase{name: "canonical types"}
	known := map[domain.IncidentType]bool{
		domain.TypeAccident:   true,
		domain.TypeHazard:     true,
		domain.TypeJam:        true,
		domain.TypeRoadClosed: true,
		domain.TypePolice:     true,
		domain.TypeOther:      true,
	}

	byType := make(map[domain.IncidentType]int)
	for i, inc := range incidents {
		if !known[inc.Type] {
			p.errorf("entry %d: unknown type %q", i, inc.Type)
			continue
		}
		byType[inc.Type]++
	}
	fmt.Printf("by type: %v\n", byType)
	return p
}
