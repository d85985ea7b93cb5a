package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trafficpulse/waze-incident-service/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	firstSeen := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	inc := domain.Incident{
		UUID:       "a1",
		Lat:        40.0,
		Lon:        -74.0,
		RoundedLat: 40.0,
		RoundedLon: -74.0,
		Type:       domain.TypeAccident,
		FirstSeen:  firstSeen,
	}

	msg, err := serializeToMessage(inc)
	require.NoError(t, err)

	assert.Equal(t, []byte("uuid:a1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"type":"accident"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "incident_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("accident"), msg.Headers[0].Value)
	assert.Equal(t, "first_seen", msg.Headers[1].Key)
	assert.Equal(t, []byte(firstSeen.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_KeyMatchesIdentityTier(t *testing.T) {
	// Without a uuid the message key falls back to the same tiered identity
	// the store deduplicates on, so a compacted topic converges to one
	// message per real-world incident.
	inc := domain.Incident{
		RoundedLat: 40.0,
		RoundedLon: -74.0,
		Type:       domain.TypeJam,
		PubMillis:  1724580000000,
	}

	msg, err := serializeToMessage(inc)
	require.NoError(t, err)
	assert.Equal(t, []byte(domain.Identity(inc)), msg.Key)
}
