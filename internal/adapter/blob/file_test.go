package blob

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trafficpulse/waze-incident-service/internal/domain"
)

func testFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func someIncidents() []domain.Incident {
	return []domain.Incident{
		{UUID: "a1", Lat: 40.1, Lon: -74.1, RoundedLat: 40.1, RoundedLon: -74.1, Type: domain.TypeAccident},
		{Lat: 40.2, Lon: -74.2, RoundedLat: 40.2, RoundedLon: -74.2, Type: domain.TypeJam, Street: "Main St"},
	}
}

func TestFileStore_LoadEmptyWhenNothingSaved(t *testing.T) {
	s := testFileStore(t)

	state, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.Master)
	assert.Empty(t, state.Latest)
}

func TestFileStore_SaveLoadRoundtrip(t *testing.T) {
	s := testFileStore(t)
	master := someIncidents()
	latest := master[:1]

	require.NoError(t, s.Save(context.Background(), master, latest))

	state, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, state.Master, 2)
	require.Len(t, state.Latest, 1)
	assert.Equal(t, "a1", state.Master[0].UUID)
	assert.Equal(t, domain.TypeJam, state.Master[1].Type)
	assert.Equal(t, "Main St", state.Master[1].Street)
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	s := testFileStore(t)

	require.NoError(t, s.Save(context.Background(), someIncidents(), nil))
	require.NoError(t, s.Save(context.Background(), someIncidents()[:1], nil))

	state, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, state.Master, 1)
}

func TestFileStore_NilViewsPersistAsEmptyArrays(t *testing.T) {
	s := testFileStore(t)

	require.NoError(t, s.Save(context.Background(), nil, nil))

	data, err := os.ReadFile(filepath.Join(s.dir, masterName))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestFileStore_NoTempFilesLeftBehind(t *testing.T) {
	s := testFileStore(t)

	require.NoError(t, s.Save(context.Background(), someIncidents(), someIncidents()))

	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{masterName, latestName}, names)
}

func TestFileStore_CorruptMasterFailsLoad(t *testing.T) {
	s := testFileStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, masterName), []byte("{corrupt"), 0o644))

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), masterName)
}

func TestFileStore_CorruptLatestIsTolerated(t *testing.T) {
	s := testFileStore(t)
	require.NoError(t, s.Save(context.Background(), someIncidents(), someIncidents()))
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, latestName), []byte("{corrupt"), 0o644))

	state, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, state.Master, 2)
	assert.Empty(t, state.Latest)
}
