package domain

import "fmt"

// IdentityKey decides whether two incidents refer to the same real-world
// event: equal keys mean the same incident. The string carries a tier prefix
// so keys from different tiers never collide.
type IdentityKey string

// Identity resolves an incident's identity key. Three tiers are evaluated in
// strict precedence order and the first usable one wins; lower tiers are
// never consulted once a higher tier applies:
//
//  1. uuid, when the feed supplied one
//  2. rounded location + type + report time, exact match at the feed's
//     reporting resolution
//  3. rounded location + type + street, when the report time is missing
//
// Tier 3 has no time bound, so a recurring incident at the same street can
// collapse into one entry over a long horizon. Kept as-is to match the
// accumulated data this service inherits.
func Identity(inc Incident) IdentityKey {
	if inc.UUID != "" {
		return IdentityKey("uuid:" + inc.UUID)
	}
	if inc.PubMillis != 0 {
		return IdentityKey(fmt.Sprintf("loc:%.5f:%.5f:type:%s:time:%d",
			inc.RoundedLat, inc.RoundedLon, inc.Type, inc.PubMillis))
	}
	return IdentityKey(fmt.Sprintf("loc:%.5f:%.5f:type:%s:street:%s",
		inc.RoundedLat, inc.RoundedLon, inc.Type, inc.Street))
}
