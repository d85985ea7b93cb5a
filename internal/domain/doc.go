// Package domain models Waze Partner Hub incident reports.
//
// # Data Source
//
// Incident reports come from a Waze Partner Hub feed, polled over HTTP at a
// fixed interval. The feed's envelope and per-alert field names have drifted
// across partner feed versions, so the normalizer accepts several shapes
// rather than one strict schema.
//
// # Feed Conventions
//
// Envelope:
//
//	{"alerts": [...]}            the common shape
//	{"data": {"alerts": [...]}}  some partner feeds wrap the payload
//	{"items": [...]}             older feeds
//	[...]                        a bare array of alerts
//
// Coordinates (first usable source wins):
//
//	location object: {"x": lon, "y": lat}, also latitude/longitude and lat/lng keys
//	direct fields:   lat/lng, latitude/longitude, y/x
//	coordinates:     [lon, lat] (GeoJSON ordering)
//
// A zero coordinate is treated as absent; the feed does not report events at
// the null island.
//
// Report time:
//
//	pubMillis (also pub_millis, timestamp): Unix epoch. Values below 1e10 are
//	assumed to be seconds rather than milliseconds and are scaled up. Absent
//	or zero means the feed did not report a time.
//
// Alert types:
//
//	ACCIDENT, HAZARD, WEATHERHAZARD, JAM, ROAD_CLOSED, POLICE, plus occasional
//	partner-specific values. Unknown values map to [TypeOther] with the
//	upstream string preserved in Incident.RawType.
//
// # Identity
//
// Two reports describe the same real-world incident when their identity keys
// are equal. Keys are resolved by [Identity] using three tiers in strict
// precedence order:
//
//  1. uuid, authoritative when the feed supplies one.
//  2. rounded location + type + pubMillis, when no uuid is present.
//  3. rounded location + type + street, when the report time is also missing.
//
// The uuid is not guaranteed to be present or stable across feed versions,
// hence the fallback chain. Keys carry a tier prefix so values from different
// tiers can never collide: a uuid-bearing report is only ever compared against
// other uuid-bearing reports.
//
// Coordinates are rounded once, to 5 decimal places (~1 meter), by
// [NormalizeRecord]. Identity comparison is exact equality on the rounded
// values, never a floating-point tolerance check, so the rounding rule must
// stay deterministic across runs. The rounded values are serialized with the
// incident so keys resolved after a reload match the keys at admission time.
package domain
