package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// SchemaVersion is the only envelope schema this client speaks
const SchemaVersion = 1

var (
	// ErrLegacyEnvelope is returned for the old {messageType, <kind>Message} shape
	ErrLegacyEnvelope = errors.New("legacy envelope schema is not supported")
	// ErrUnsupportedVersion is returned for envelopes newer than SchemaVersion
	ErrUnsupportedVersion = errors.New("unsupported envelope version")
	// ErrMissingType is returned when an envelope carries no type tag
	ErrMissingType = errors.New("envelope has no type")
)

// Envelope is the tagged wrapper exchanged over the socket
type Envelope struct {
	Version int             `json:"version"`
	Seq     uint64          `json:"seq,omitempty"`
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope marshals payload into an envelope of type t. A nil payload
// produces an envelope without one.
func NewEnvelope(t MessageType, payload interface{}) (Envelope, error) {
	env := Envelope{Version: SchemaVersion, Type: t}
	if payload == nil {
		return env, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s payload: %w", t, err)
	}
	env.Payload = raw
	return env, nil
}

// DecodePayload unmarshals the payload into v. An empty payload leaves v untouched.
func (e Envelope) DecodePayload(v interface{}) error {
	if len(e.Payload) == 0 || bytes.Equal(e.Payload, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}

// Encode serializes the envelope for the wire
func Encode(e Envelope) ([]byte, error) {
	if e.Type == "" {
		return nil, ErrMissingType
	}
	if e.Version == 0 {
		e.Version = SchemaVersion
	}
	return json.Marshal(e)
}

// Decode parses a frame. A missing version is read as SchemaVersion.
func Decode(data []byte) (Envelope, error) {
	var probe struct {
		Envelope
		MessageType string `json:"messageType"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Envelope{}, fmt.Errorf("failed to parse envelope: %w", err)
	}
	env := probe.Envelope
	if env.Type == "" {
		if probe.MessageType != "" {
			return Envelope{}, ErrLegacyEnvelope
		}
		return Envelope{}, ErrMissingType
	}
	if env.Version == 0 {
		env.Version = SchemaVersion
	}
	if env.Version > SchemaVersion {
		return Envelope{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	return env, nil
}

// String renders the envelope as JSON for the communication log
func (e Envelope) String() string {
	data, err := json.Marshal(e)
	if err != nil {
		return string(e.Type)
	}
	return string(data)
}
