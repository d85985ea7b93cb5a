package domain

import "time"

// IncidentType is the canonical category of a feed alert.
type IncidentType string

const (
	TypeAccident   IncidentType = "accident"
	TypeHazard     IncidentType = "hazard"
	TypeJam        IncidentType = "jam"
	TypeRoadClosed IncidentType = "road_closed"
	TypePolice     IncidentType = "police"
	TypeOther      IncidentType = "other"
)

// RawRecord is one alert object as it appeared in the feed response.
// Field names and shapes vary across feed versions, so it stays loosely
// typed until NormalizeRecord.
type RawRecord map[string]any

// Incident is the canonical representation of one observed traffic event.
type Incident struct {
	// UUID is the feed's opaque identifier, empty when the feed omits it.
	UUID string `json:"uuid,omitempty"`

	// Lat/Lon keep the feed's original precision for display.
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	// RoundedLat/RoundedLon are rounded once to 5 decimal places (~1 meter)
	// during normalization. Identity matching is exact equality on these.
	RoundedLat float64 `json:"rounded_lat"`
	RoundedLon float64 `json:"rounded_lon"`

	Type IncidentType `json:"type"`
	// RawType is the upstream type string, kept verbatim so unknown
	// categories survive the trip through TypeOther.
	RawType string `json:"raw_type,omitempty"`

	// PubMillis is the feed's report time in Unix milliseconds, 0 when the
	// feed did not report one.
	PubMillis int64     `json:"pub_millis,omitempty"`
	Reported  time.Time `json:"reported,omitzero"`

	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
	Subtype string `json:"subtype,omitempty"`

	Reliability  int     `json:"reliability,omitempty"`
	ReportRating int     `json:"report_rating,omitempty"`
	Description  string  `json:"description,omitempty"`
	Magvar       float64 `json:"magvar,omitempty"`
	RoadType     int     `json:"road_type,omitempty"`
	ReportBy     string  `json:"report_by,omitempty"`

	// FirstSeen is when this service first observed the report.
	FirstSeen time.Time `json:"first_seen,omitzero"`

	// Raw is the original alert object, retained for display and debugging.
	Raw RawRecord `json:"raw,omitempty"`
}
