package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity_TierPrecedence(t *testing.T) {
	t.Run("uuid wins over everything", func(t *testing.T) {
		a := Incident{UUID: "a1", RoundedLat: 40.0, RoundedLon: -74.0, Type: TypeAccident, PubMillis: 1000}
		b := Incident{UUID: "a1", RoundedLat: 41.0, RoundedLon: -75.0, Type: TypeJam, PubMillis: 2000}

		assert.Equal(t, Identity(a), Identity(b))
	})

	t.Run("different uuids never match despite identical fields", func(t *testing.T) {
		a := Incident{UUID: "a1", RoundedLat: 40.0, RoundedLon: -74.0, Type: TypeAccident, PubMillis: 1000}
		b := Incident{UUID: "a2", RoundedLat: 40.0, RoundedLon: -74.0, Type: TypeAccident, PubMillis: 1000}

		assert.NotEqual(t, Identity(a), Identity(b))
	})

	t.Run("no uuid falls back to location type time", func(t *testing.T) {
		a := Incident{RoundedLat: 40.0, RoundedLon: -74.0, Type: TypeAccident, PubMillis: 1000}
		b := Incident{RoundedLat: 40.0, RoundedLon: -74.0, Type: TypeAccident, PubMillis: 1000}
		c := Incident{RoundedLat: 40.0, RoundedLon: -74.0, Type: TypeAccident, PubMillis: 1001}

		assert.Equal(t, Identity(a), Identity(b))
		assert.NotEqual(t, Identity(a), Identity(c))
	})

	t.Run("no time falls back to street", func(t *testing.T) {
		a := Incident{RoundedLat: 40.0, RoundedLon: -74.0, Type: TypeHazard, Street: "Main St"}
		b := Incident{RoundedLat: 40.0, RoundedLon: -74.0, Type: TypeHazard, Street: "Main St"}
		c := Incident{RoundedLat: 40.0, RoundedLon: -74.0, Type: TypeHazard, Street: "Elm St"}

		assert.Equal(t, Identity(a), Identity(b))
		assert.NotEqual(t, Identity(a), Identity(c))
	})
}

func TestIdentity_TierIsolation(t *testing.T) {
	// A uuid-bearing incident and a uuid-less incident at the same rounded
	// location, type, and time resolve through different tiers and must be
	// distinct entries.
	withUUID := Incident{UUID: "a1", RoundedLat: 40.0, RoundedLon: -74.0, Type: TypeAccident, PubMillis: 1000}
	without := Incident{RoundedLat: 40.0, RoundedLon: -74.0, Type: TypeAccident, PubMillis: 1000}

	assert.NotEqual(t, Identity(withUUID), Identity(without))
}

func TestIdentity_TierPrefixesNeverCollide(t *testing.T) {
	// A pathological uuid shaped like a tier-2 key must not collide with a
	// real tier-2 key.
	tier2 := Incident{RoundedLat: 40.0, RoundedLon: -74.0, Type: TypeJam, PubMillis: 1000}
	hostile := Incident{UUID: string(Identity(tier2))}

	assert.NotEqual(t, Identity(tier2), Identity(hostile))
}

func TestIdentity_UsesRoundedCoordinates(t *testing.T) {
	// Display precision differences within the rounding threshold do not
	// change identity; the rounded values are what matter.
	a := Incident{Lat: 40.000001, Lon: -74.000001, RoundedLat: 40.0, RoundedLon: -74.0, Type: TypeJam, PubMillis: 5}
	b := Incident{Lat: 40.000004, Lon: -74.000004, RoundedLat: 40.0, RoundedLon: -74.0, Type: TypeJam, PubMillis: 5}

	assert.Equal(t, Identity(a), Identity(b))
}
