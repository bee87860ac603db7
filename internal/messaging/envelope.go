package messaging

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope is the wire representation of every message: {"type": ..., "payload": {...}}.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope serializes payload and wraps it with its event type.
func NewEnvelope(eventType string, payload any) (Envelope, error) {
	if eventType == "" {
		return Envelope{}, fmt.Errorf("%w: empty event type", ErrUnknownEventType)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	if !isObject(raw) {
		return Envelope{}, schemaError("%s payload must be a JSON object", eventType)
	}
	return Envelope{Type: eventType, Payload: raw}, nil
}

func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// VideoID extracts payload.videoId, used for logging and message attributes.
func (e Envelope) VideoID() string {
	var ids struct {
		VideoID string `json:"videoId"`
	}
	if err := json.Unmarshal(e.Payload, &ids); err != nil {
		return ""
	}
	return ids.VideoID
}

// DecodeEnvelope parses a received body. Any failure wraps ErrSchemaValidation.
func DecodeEnvelope(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, schemaError("decode envelope: %v", err)
	}
	if env.Type == "" {
		return Envelope{}, schemaError("envelope type is empty")
	}
	if !isObject(env.Payload) {
		return Envelope{}, schemaError("%s payload must be a JSON object", env.Type)
	}
	return env, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
