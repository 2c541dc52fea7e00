package jobs

import (
	"encoding/json"
	"fmt"
)

// Envelope is one unit of queued work: a category paired with the job
// record to notify about. On the wire it is the two-element JSON array
// ["category", {...record...}], owned by the durable queue while in
// flight and released only after the notifier completes.
type Envelope struct {
	Category string
	Record   JobRecord
}

// Encode serializes the envelope to its wire form.
func (e Envelope) Encode() ([]byte, error) {
	payload, err := json.Marshal([2]any{e.Category, e.Record})
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return payload, nil
}

// DecodeEnvelope parses a wire payload back into an Envelope. A payload
// that is not a two-element [category, record] array is malformed and
// must be discarded by the caller, never retried.
func DecodeEnvelope(payload []byte) (Envelope, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(payload, &parts); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if len(parts) != 2 {
		return Envelope{}, fmt.Errorf("decode envelope: expected 2 elements, got %d", len(parts))
	}

	var e Envelope
	if err := json.Unmarshal(parts[0], &e.Category); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope category: %w", err)
	}
	if err := json.Unmarshal(parts[1], &e.Record); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope record: %w", err)
	}
	e.Record.Category = e.Category
	return e, nil
}
