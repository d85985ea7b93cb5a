package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUUID = "d0a3f1e2-1111-2222-3333-444455556666"

func TestNormalizeRecord(t *testing.T) {
	frozen := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	t.Run("partner hub alert", func(t *testing.T) {
		rec := RawRecord{
			"uuid":         testUUID,
			"type":         "ACCIDENT",
			"subtype":      "ACCIDENT_MAJOR",
			"street":       "Main St",
			"city":         "Austin",
			"country":      "US",
			"reliability":  float64(7),
			"reportRating": float64(3),
			"pubMillis":    float64(1724580000000),
			"location":     map[string]any{"x": -97.74321987, "y": 30.26712345},
		}

		inc, err := NormalizeRecord(rec)
		require.NoError(t, err)

		assert.Equal(t, testUUID, inc.UUID)
		assert.Equal(t, TypeAccident, inc.Type)
		assert.Equal(t, "ACCIDENT", inc.RawType)
		assert.Equal(t, 30.26712345, inc.Lat)
		assert.Equal(t, -97.74321987, inc.Lon)
		assert.Equal(t, 30.26712, inc.RoundedLat)
		assert.Equal(t, -97.74322, inc.RoundedLon)
		assert.Equal(t, "Main St", inc.Street)
		assert.Equal(t, "Austin", inc.City)
		assert.Equal(t, 7, inc.Reliability)
		assert.Equal(t, 3, inc.ReportRating)
		assert.Equal(t, int64(1724580000000), inc.PubMillis)
		assert.Equal(t, time.UnixMilli(1724580000000).UTC(), inc.Reported)
		assert.Equal(t, frozen, inc.FirstSeen)
		assert.Equal(t, rec, inc.Raw)
	})

	t.Run("direct lat lng fields", func(t *testing.T) {
		rec := RawRecord{"lat": 40.0, "lng": -74.0, "type": "JAM"}

		inc, err := NormalizeRecord(rec)
		require.NoError(t, err)
		assert.Equal(t, 40.0, inc.Lat)
		assert.Equal(t, -74.0, inc.Lon)
		assert.Equal(t, TypeJam, inc.Type)
	})

	t.Run("coordinates array is lon lat", func(t *testing.T) {
		rec := RawRecord{"coordinates": []any{-74.0, 40.0}, "type": "HAZARD"}

		inc, err := NormalizeRecord(rec)
		require.NoError(t, err)
		assert.Equal(t, 40.0, inc.Lat)
		assert.Equal(t, -74.0, inc.Lon)
	})

	t.Run("string coordinates from older feeds", func(t *testing.T) {
		rec := RawRecord{"latitude": "40.5", "longitude": "-73.9", "type": "JAM"}

		inc, err := NormalizeRecord(rec)
		require.NoError(t, err)
		assert.Equal(t, 40.5, inc.Lat)
		assert.Equal(t, -73.9, inc.Lon)
	})

	t.Run("missing coordinates", func(t *testing.T) {
		rec := RawRecord{"type": "ACCIDENT", "street": "Main St"}

		_, err := NormalizeRecord(rec)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedRecord))
	})

	t.Run("zero coordinates count as absent", func(t *testing.T) {
		rec := RawRecord{"lat": 0.0, "lng": -74.0, "type": "ACCIDENT"}

		_, err := NormalizeRecord(rec)
		require.ErrorIs(t, err, ErrMalformedRecord)
	})

	t.Run("unknown type passes through as other", func(t *testing.T) {
		rec := RawRecord{"lat": 40.0, "lng": -74.0, "type": "CHIT_CHAT"}

		inc, err := NormalizeRecord(rec)
		require.NoError(t, err)
		assert.Equal(t, TypeOther, inc.Type)
		assert.Equal(t, "CHIT_CHAT", inc.RawType)
	})

	t.Run("missing type is other", func(t *testing.T) {
		rec := RawRecord{"lat": 40.0, "lng": -74.0}

		inc, err := NormalizeRecord(rec)
		require.NoError(t, err)
		assert.Equal(t, TypeOther, inc.Type)
		assert.Empty(t, inc.RawType)
	})

	t.Run("epoch seconds scaled to millis", func(t *testing.T) {
		rec := RawRecord{"lat": 40.0, "lng": -74.0, "type": "JAM", "pubMillis": float64(1724580000)}

		inc, err := NormalizeRecord(rec)
		require.NoError(t, err)
		assert.Equal(t, int64(1724580000000), inc.PubMillis)
	})

	t.Run("missing pubMillis leaves zero time", func(t *testing.T) {
		rec := RawRecord{"lat": 40.0, "lng": -74.0, "type": "JAM"}

		inc, err := NormalizeRecord(rec)
		require.NoError(t, err)
		assert.Zero(t, inc.PubMillis)
		assert.True(t, inc.Reported.IsZero())
	})

	t.Run("alertType alias", func(t *testing.T) {
		rec := RawRecord{"lat": 40.0, "lng": -74.0, "alertType": "POLICE"}

		inc, err := NormalizeRecord(rec)
		require.NoError(t, err)
		assert.Equal(t, TypePolice, inc.Type)
	})
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		raw      string
		expected IncidentType
	}{
		{"ACCIDENT", TypeAccident},
		{"accident", TypeAccident},
		{"HAZARD", TypeHazard},
		{"WEATHERHAZARD", TypeHazard},
		{"JAM", TypeJam},
		{"ROAD_CLOSED", TypeRoadClosed},
		{"ROADCLOSED", TypeRoadClosed},
		{"POLICE", TypePolice},
		{"POLICEMAN", TypePolice},
		{"", TypeOther},
		{"CONSTRUCTION", TypeOther},
	}

	for _, tt := range tests {
		t.Run("type "+tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeType(tt.raw))
		})
	}
}

func TestRoundCoord(t *testing.T) {
	tests := []struct {
		name     string
		in       float64
		expected float64
	}{
		{"already at precision", 40.12345, 40.12345},
		{"rounds down", 40.123454, 40.12345},
		{"rounds up", 40.123456, 40.12346},
		{"negative", -74.000004, -74.0},
		{"sub-threshold difference collapses", 40.000001, 40.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RoundCoord(tt.in))
		})
	}
}

func TestRoundCoord_Deterministic(t *testing.T) {
	// Two raw values closer together than the precision threshold must
	// collapse to the same rounded value.
	a := RoundCoord(40.000010)
	b := RoundCoord(40.000012)
	assert.Equal(t, a, b)

	// Values further apart than the threshold stay distinct.
	c := RoundCoord(40.00002)
	assert.NotEqual(t, a, c)
}
