package amqp

import (
	"encoding/json"
	"time"

	"walletsync/internal/core"
)

// Mutation kinds carried in queue messages.
const (
	KindCreate = "create"
	KindUpdate = "update"
	KindDelete = "delete"
)

// MutationRecordedMessage announces that one offline mutation envelope was
// queued. It is deliberately lightweight: the worker re-reads the envelope
// from the cache store, the message is only a kick.
type MutationRecordedMessage struct {
	EnvelopeID string        `json:"envelopeId"`
	Resource   core.Resource `json:"resource"`
	Kind       string        `json:"kind"`
	TargetID   string        `json:"targetId"`
	Timestamp  time.Time     `json:"timestamp"`
}

func NewMutationRecordedMessage(envelopeID string, r core.Resource, kind, targetID string) *MutationRecordedMessage {
	return &MutationRecordedMessage{
		EnvelopeID: envelopeID,
		Resource:   r,
		Kind:       kind,
		TargetID:   targetID,
		Timestamp:  time.Now(),
	}
}

func (m *MutationRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MutationRecordedMessageFromJSON(data []byte) (*MutationRecordedMessage, error) {
	var msg MutationRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
