// Package queue contains the Kafka client for the moderation pipeline:
// the producer that dispatches moderation requests (and dead-letters), the
// consumer loop that feeds the worker, and the wire types for both topics.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Validation errors for queue payloads.
var (
	ErrMissingItemID    = errors.New("message is missing item_id")
	ErrNegativeItemID   = errors.New("message item_id cannot be negative")
	ErrMissingTimestamp = errors.New("message is missing timestamp")
)

// ModerationRequest is the payload carried on the moderation topic.
// It is transient: not persisted beyond the broker's own retention, and
// not deduplicated (the consumer tolerates redeliveries instead).
type ModerationRequest struct {
	ItemID    int64     `json:"item_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewModerationRequest builds a request for the advertisement stamped with
// the current time.
func NewModerationRequest(itemID int64) ModerationRequest {
	return ModerationRequest{
		ItemID:    itemID,
		Timestamp: time.Now().UTC(),
	}
}

// DecodeModerationRequest parses and validates a moderation request from
// its wire form. Required fields must be present: a payload without item_id
// or timestamp is rejected here, before any processing starts, so malformed
// messages can be dead-lettered immediately instead of failing deep in the
// worker.
func DecodeModerationRequest(data []byte) (ModerationRequest, error) {
	var raw struct {
		ItemID    *int64     `json:"item_id"`
		Timestamp *time.Time `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return ModerationRequest{}, fmt.Errorf("failed to decode moderation request: %w", err)
	}
	if raw.ItemID == nil {
		return ModerationRequest{}, ErrMissingItemID
	}
	if *raw.ItemID < 0 {
		return ModerationRequest{}, ErrNegativeItemID
	}
	if raw.Timestamp == nil {
		return ModerationRequest{}, ErrMissingTimestamp
	}
	return ModerationRequest{ItemID: *raw.ItemID, Timestamp: *raw.Timestamp}, nil
}

// Encode serializes the request for the wire.
func (m ModerationRequest) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DeadLetter is the payload carried on the dead-letter topic. It keeps the
// original message verbatim alongside the causing error and the number of
// attempts that were made. Nothing in this system consumes it; it exists
// for operator inspection.
type DeadLetter struct {
	OriginalMessage json.RawMessage `json:"original_message"`
	Error           string          `json:"error"`
	Timestamp       time.Time       `json:"timestamp"`
	RetryCount      int             `json:"retry_count"`
}

// NewDeadLetter wraps a failed message for the dead-letter topic.
// A payload that is not itself valid JSON is embedded as a JSON string so
// the dead-letter record always serializes.
func NewDeadLetter(original []byte, cause string, retryCount int) DeadLetter {
	payload := json.RawMessage(original)
	if !json.Valid(original) {
		quoted, err := json.Marshal(string(original))
		if err == nil {
			payload = json.RawMessage(quoted)
		} else {
			payload = json.RawMessage(`null`)
		}
	}
	return DeadLetter{
		OriginalMessage: payload,
		Error:           cause,
		Timestamp:       time.Now().UTC(),
		RetryCount:      retryCount,
	}
}
