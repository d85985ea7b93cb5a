// Package accumulator holds the growing, duplicate-free incident set and the
// latest-batch snapshot behind one mutex so HTTP readers always observe a
// consistent view.
package accumulator

import (
	"sync"

	"github.com/trafficpulse/waze-incident-service/internal/domain"
)

// MergeReport summarizes one Merge call.
type MergeReport struct {
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
	Total      int `json:"total"`
}

// Store is the in-memory accumulator: an insertion-ordered set of incidents
// keyed by identity. Admitted incidents are never removed or altered; later
// observations of the same incident are dropped (first-write-wins). Merge is
// single-writer (the poll loop) while views may be read concurrently.
type Store struct {
	mu     sync.RWMutex
	index  map[domain.IdentityKey]struct{}
	master []domain.Incident
	latest []domain.Incident
}

// New builds a Store seeded with previously persisted incidents. The seed is
// deduplicated in order, so loading a file written before an identity-rule
// change cannot violate the unique-key invariant.
func New(initial []domain.Incident) *Store {
	s := &Store{index: make(map[domain.IdentityKey]struct{}, len(initial))}
	for _, inc := range initial {
		key := domain.Identity(inc)
		if _, dup := s.index[key]; dup {
			continue
		}
		s.index[key] = struct{}{}
		s.master = append(s.master, inc)
	}
	return s
}

// Merge folds a freshly fetched batch into the master set and replaces the
// latest view with the batch as-is. Incidents whose identity key is already
// known are counted as duplicates and discarded; the stored entry keeps its
// first-seen state.
func (s *Store) Merge(batch []domain.Incident) (MergeReport, []domain.Incident) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report MergeReport
	var added []domain.Incident
	for _, inc := range batch {
		key := domain.Identity(inc)
		if _, dup := s.index[key]; dup {
			report.Duplicates++
			continue
		}
		s.index[key] = struct{}{}
		s.master = append(s.master, inc)
		added = append(added, inc)
		report.Added++
	}

	// The latest view is the batch exactly as fetched, duplicates included.
	s.latest = make([]domain.Incident, len(batch))
	copy(s.latest, batch)

	report.Total = len(s.master)
	return report, added
}

// MasterView returns a copy of the full accumulated set in insertion order.
func (s *Store) MasterView() []domain.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Incident, len(s.master))
	copy(out, s.master)
	return out
}

// LatestView returns a copy of the most recently merged batch.
func (s *Store) LatestView() []domain.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Incident, len(s.latest))
	copy(out, s.latest)
	return out
}

// Size returns the number of unique incidents accumulated so far.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.master)
}
