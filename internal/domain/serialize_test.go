package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeRecord(t *testing.T) {
	ts := time.Date(2025, time.January, 14, 6, 30, 0, 0, time.UTC)
	rec := ReadingRecord{
		SessionID: "sess-1",
		Reading: Reading{
			Tick:         12,
			Timestamp:    ts,
			Velocity:     1.25,
			HitType:      HitWater,
			DischargeM3s: 14.2,
			Status:       StatusAlert,
		},
	}

	out, err := SerializeRecord(rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("sess-1"), out.Key)
	assert.Equal(t, "WATER", out.Headers["hit_type"])
	assert.Equal(t, "alert", out.Headers["status"])
	assert.Equal(t, ts.Format(time.RFC3339), out.Headers["emitted_at"])
	assert.Contains(t, string(out.Value), `"hit_type":"WATER"`)

	var decoded ReadingRecord
	require.NoError(t, json.Unmarshal(out.Value, &decoded))
	assert.Equal(t, rec.SessionID, decoded.SessionID)
	assert.Equal(t, rec.Reading.Tick, decoded.Reading.Tick)
	assert.InDelta(t, rec.Reading.DischargeM3s, decoded.Reading.DischargeM3s, 1e-12)
}
