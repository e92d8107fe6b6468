package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Rorical/tunneldesk/internal/protocol"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func envelope(t *testing.T, mt protocol.MessageType, payload interface{}) protocol.Envelope {
	t.Helper()
	env, err := protocol.NewEnvelope(mt, payload)
	require.NoError(t, err)
	return env
}

func sent(t *testing.T, mt protocol.MessageType, payload interface{}) SentAction {
	return SentAction{Envelope: envelope(t, mt, payload), At: testTime}
}

func received(t *testing.T, mt protocol.MessageType, payload interface{}) ReceivedAction {
	return ReceivedAction{Envelope: envelope(t, mt, payload), At: testTime}
}

func startHTTP(id string) protocol.ExposeHTTP {
	return protocol.ExposeHTTP{
		Local:  protocol.LocalHTTPEndpoint{Host: "127.0.0.1", Port: 8080},
		Remote: protocol.RemoteEndpoint{TunnelID: id},
	}
}
