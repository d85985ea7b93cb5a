// Package blob persists the accumulator's master and latest views as a pair
// of JSON documents, either on the local filesystem or in S3.
package blob

import (
	"context"

	"github.com/trafficpulse/waze-incident-service/internal/domain"
)

// Canonical object names, shared by both adapters so a deployment can move
// between local files and S3 without renaming anything.
const (
	masterName = "incidents_master.json"
	latestName = "incidents_latest.json"
)

// State is the persisted form loaded at startup.
type State struct {
	Master []domain.Incident
	Latest []domain.Incident
}

// Store is the persistence adapter contract. Save must be atomic with
// respect to concurrent readers of the underlying files/objects: a reader
// sees either the previous or the new version of a view, never a partial
// write. Load returns the last successfully saved state, or an empty State
// when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, master, latest []domain.Incident) error
}
