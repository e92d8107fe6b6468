package store

import (
	"time"

	"github.com/Rorical/tunneldesk/internal/protocol"
)

// Action is anything the reducers can fold into the next state
type Action interface {
	action()
}

// SentAction records an envelope this client is about to transmit
type SentAction struct {
	Envelope protocol.Envelope
	At       time.Time
}

// ReceivedAction records an envelope delivered by the backend
type ReceivedAction struct {
	Envelope protocol.Envelope
	At       time.Time
}

// SendFailedAction reports that a previously dispatched envelope never left the client
type SendFailedAction struct {
	Envelope protocol.Envelope
	Err      error
	At       time.Time
}

// DeleteTunnelAction removes a tunnel the user no longer wants to see
type DeleteTunnelAction struct {
	TunnelID string
}

// ConnectionAction reports a socket lifecycle change
type ConnectionAction struct {
	Connected bool
	Err       error
	At        time.Time
}

func (SentAction) action()         {}
func (ReceivedAction) action()     {}
func (SendFailedAction) action()   {}
func (DeleteTunnelAction) action() {}
func (ConnectionAction) action()   {}
