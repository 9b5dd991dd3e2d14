package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// OutputEvent is the serialized form destined for a message sink.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SerializeRecord encodes a reading record for publication. The session ID
// is the key so one simulation run stays on one partition.
func SerializeRecord(rec ReadingRecord) (OutputEvent, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize reading: %w", err)
	}
	return OutputEvent{
		Key:   []byte(rec.SessionID),
		Value: data,
		Headers: map[string]string{
			"hit_type":   string(rec.Reading.HitType),
			"status":     string(rec.Reading.Status),
			"emitted_at": rec.Reading.Timestamp.Format(time.RFC3339),
		},
	}, nil
}
