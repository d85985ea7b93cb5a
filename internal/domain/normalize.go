package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedRecord marks a feed record that cannot be normalized. The poll
// loop skips such records and continues with the rest of the batch.
var ErrMalformedRecord = errors.New("malformed record")

// millisThreshold separates epoch seconds from epoch milliseconds. Any epoch
// value below 1e10 is year 2286 in seconds but 1970 in milliseconds, so
// smaller values are assumed to be seconds.
const millisThreshold = 1e10

// RoundCoord rounds a coordinate to 5 decimal places, roughly 1 meter at the
// equator. Rounding happens once here so identity matching downstream is
// exact equality, not a tolerance comparison.
func RoundCoord(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}

// NormalizeRecord canonicalizes a raw feed record into an Incident. It
// returns an error wrapping ErrMalformedRecord when no usable coordinates can
// be extracted. A missing report time is not an error; identity resolution
// falls back to the street tier for such incidents.
func NormalizeRecord(rec RawRecord) (Incident, error) {
	lat, lon, ok := extractCoordinates(rec)
	if !ok {
		return Incident{}, fmt.Errorf("%w: no usable coordinates", ErrMalformedRecord)
	}

	rawType := stringField(rec, "type", "alertType")
	pubMillis := extractPubMillis(rec)

	inc := Incident{
		UUID:       stringField(rec, "uuid"),
		Lat:        lat,
		Lon:        lon,
		RoundedLat: RoundCoord(lat),
		RoundedLon: RoundCoord(lon),
		Type:       normalizeType(rawType),
		RawType:    rawType,
		PubMillis:  pubMillis,

		Street:  stringField(rec, "street"),
		City:    stringField(rec, "city"),
		Country: stringField(rec, "country"),
		Subtype: stringField(rec, "subtype", "alertSubtype"),

		Reliability:  intField(rec, "reliability", "confidence"),
		ReportRating: intField(rec, "reportRating", "report_rating"),
		Description:  stringField(rec, "description"),
		Magvar:       floatField(rec, "magvar"),
		RoadType:     intField(rec, "roadType"),
		ReportBy:     stringField(rec, "reportBy"),

		FirstSeen: clock.Now().UTC(),
		Raw:       rec,
	}

	if pubMillis > 0 {
		inc.Reported = time.UnixMilli(pubMillis).UTC()
	}

	return inc, nil
}

// normalizeType maps an upstream alert type string onto the canonical enum.
// Unknown values become TypeOther; the caller keeps the raw string alongside.
func normalizeType(raw string) IncidentType {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ACCIDENT":
		return TypeAccident
	case "HAZARD", "WEATHERHAZARD":
		return TypeHazard
	case "JAM":
		return TypeJam
	case "ROAD_CLOSED", "ROADCLOSED":
		return TypeRoadClosed
	case "POLICE", "POLICEMAN":
		return TypePolice
	default:
		return TypeOther
	}
}

// extractCoordinates tries the coordinate shapes observed across feed
// versions, in order: a nested location object, direct fields, then a
// GeoJSON-style [lon, lat] array. Zero coordinates count as absent.
func extractCoordinates(rec RawRecord) (lat, lon float64, ok bool) {
	if loc, isMap := rec["location"].(map[string]any); isMap {
		lat = floatField(loc, "y", "latitude", "lat")
		lon = floatField(loc, "x", "longitude", "lng", "lon")
	}

	if lat == 0 || lon == 0 {
		lat = floatField(rec, "lat", "latitude", "y")
		lon = floatField(rec, "lng", "longitude", "lon", "x")
	}

	if lat == 0 || lon == 0 {
		if coords, isSlice := rec["coordinates"].([]any); isSlice && len(coords) >= 2 {
			lon, _ = toFloat(coords[0])
			lat, _ = toFloat(coords[1])
		}
	}

	if lat == 0 || lon == 0 {
		return 0, 0, false
	}
	return lat, lon, true
}

// extractPubMillis reads the report time under its known names and scales
// epoch seconds up to milliseconds.
func extractPubMillis(rec RawRecord) int64 {
	millis := floatField(rec, "pubMillis", "pub_millis", "timestamp")
	if millis == 0 {
		return 0
	}
	if millis < millisThreshold {
		millis *= 1000
	}
	return int64(millis)
}

// stringField returns the first non-empty string value among the given keys.
func stringField(rec map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := rec[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// floatField returns the first value among the given keys that coerces to a
// non-zero float64, or 0.
func floatField(rec map[string]any, keys ...string) float64 {
	for _, k := range keys {
		if f, ok := toFloat(rec[k]); ok && f != 0 {
			return f
		}
	}
	return 0
}

func intField(rec map[string]any, keys ...string) int {
	return int(floatField(rec, keys...))
}

// toFloat coerces the numeric encodings seen in feed JSON: float64 from the
// decoder, or numbers shipped as strings by older feeds.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
