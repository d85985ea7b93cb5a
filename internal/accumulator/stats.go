package accumulator

import "time"

// Statistics aggregates the accumulated set for reporting.
type Statistics struct {
	Total     int            `json:"total"`
	ByType    map[string]int `json:"by_type"`
	ByCity    map[string]int `json:"by_city"`
	DateRange *DateRange     `json:"date_range,omitempty"`
}

// DateRange spans the earliest and latest reported times in the set.
// Incidents without a report time are excluded.
type DateRange struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

// Stats computes aggregate counts over the master set.
func (s *Store) Stats() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Statistics{
		Total:  len(s.master),
		ByType: make(map[string]int),
		ByCity: make(map[string]int),
	}

	for _, inc := range s.master {
		stats.ByType[string(inc.Type)]++

		city := inc.City
		if city == "" {
			city = "unknown"
		}
		stats.ByCity[city]++

		if inc.Reported.IsZero() {
			continue
		}
		if stats.DateRange == nil {
			stats.DateRange = &DateRange{Earliest: inc.Reported, Latest: inc.Reported}
			continue
		}
		if inc.Reported.Before(stats.DateRange.Earliest) {
			stats.DateRange.Earliest = inc.Reported
		}
		if inc.Reported.After(stats.DateRange.Latest) {
			stats.DateRange.Latest = inc.Reported
		}
	}

	return stats
}
