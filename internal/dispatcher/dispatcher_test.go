package dispatcher

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/tunneldesk/internal/models"
	"github.com/Rorical/tunneldesk/internal/protocol"
	"github.com/Rorical/tunneldesk/internal/store"
	"github.com/Rorical/tunneldesk/internal/validate"
)

type fakeSender struct {
	mu     sync.Mutex
	frames [][]byte
	err    error
}

func (f *fakeSender) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeSender) envelopes(t *testing.T) []protocol.Envelope {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	envs := make([]protocol.Envelope, 0, len(f.frames))
	for _, frame := range f.frames {
		env, err := protocol.Decode(frame)
		require.NoError(t, err)
		envs = append(envs, env)
	}
	return envs
}

func setup() (*Dispatcher, *store.Store, *fakeSender) {
	s := store.NewStore()
	sender := &fakeSender{}
	return New(s, sender), s, sender
}

func TestDispatcher_StartHTTPIsOptimistic(t *testing.T) {
	d, s, sender := setup()

	id, err := d.StartHTTP(HTTPRequest{Port: 8080, Remote: protocol.RemoteEndpoint{TunnelID: "abc"}})
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	tunnel, ok := s.Tunnel("abc")
	require.True(t, ok)
	assert.False(t, tunnel.Started)
	assert.True(t, tunnel.Loading)
	assert.Equal(t, models.PhasePending, tunnel.Phase)
	assert.Equal(t, models.TunnelHTTP, tunnel.Type)
	assert.Equal(t, uint64(1), tunnel.RequestSeq)

	envs := sender.envelopes(t)
	require.Len(t, envs, 1)
	assert.Equal(t, protocol.TypeRequestTunnelStartHTTP, envs[0].Type)
	assert.Equal(t, uint64(1), envs[0].Seq)
	assert.Equal(t, protocol.SchemaVersion, envs[0].Version)

	var payload protocol.ExposeHTTP
	require.NoError(t, envs[0].DecodePayload(&payload))
	assert.Equal(t, "127.0.0.1", payload.Local.Host)
	assert.Equal(t, int32(8080), payload.Local.Port)
}

func TestDispatcher_GeneratesTunnelID(t *testing.T) {
	d, s, _ := setup()

	id, err := d.StartDirectory("/srv/www", protocol.RemoteEndpoint{}, false)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	tunnel, ok := s.Tunnel(id)
	require.True(t, ok)
	assert.Equal(t, models.TunnelDirectory, tunnel.Type)

	other, err := d.StartWebDav("/srv/dav", protocol.RemoteEndpoint{})
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestDispatcher_SendFillsMissingTunnelID(t *testing.T) {
	d, s, sender := setup()

	env, err := protocol.NewEnvelope(protocol.TypeRequestTunnelStartHTTP, protocol.ExposeHTTP{
		Local: protocol.LocalHTTPEndpoint{Host: "127.0.0.1", Port: 3000},
	})
	require.NoError(t, err)
	require.NoError(t, d.Send(env))

	envs := sender.envelopes(t)
	require.Len(t, envs, 1)
	var payload protocol.ExposeHTTP
	require.NoError(t, envs[0].DecodePayload(&payload))
	assert.Len(t, payload.Remote.TunnelID, 36)
	assert.Equal(t, int32(3000), payload.Local.Port)

	tunnel, ok := s.Tunnel(payload.Remote.TunnelID)
	require.True(t, ok)
	assert.True(t, tunnel.Loading)
	assert.Equal(t, models.PhasePending, tunnel.Phase)
}

func TestDispatcher_SendKeepsGivenTunnelID(t *testing.T) {
	d, s, _ := setup()

	env, err := protocol.NewEnvelope(protocol.TypeRequestTunnelStartWebDav, protocol.ExposeWebdav{
		Local:  protocol.LocalDirectory{Path: "/srv/dav"},
		Remote: protocol.RemoteEndpoint{TunnelID: "abc"},
	})
	require.NoError(t, err)
	require.NoError(t, d.Send(env))

	_, ok := s.Tunnel("abc")
	assert.True(t, ok)
	assert.Len(t, s.Snapshot().Tunnels.Tunnels, 1)
}

func TestDispatcher_SequenceIsMonotonic(t *testing.T) {
	d, _, sender := setup()

	require.NoError(t, d.RequestLogin())
	require.NoError(t, d.StopTunnel("abc"))
	require.NoError(t, d.OpenInBrowser("https://x.loophole.site"))
	require.NoError(t, d.RequestLogout())

	envs := sender.envelopes(t)
	require.Len(t, envs, 4)
	for i, env := range envs {
		assert.Equal(t, uint64(i+1), env.Seq)
	}
	assert.Equal(t, protocol.TypeRequestLogin, envs[0].Type)
	assert.Equal(t, protocol.TypeRequestTunnelStop, envs[1].Type)
	assert.Equal(t, protocol.TypeOpenInBrowser, envs[2].Type)
	assert.Equal(t, protocol.TypeRequestLogout, envs[3].Type)
}

func TestDispatcher_SendFailureMarksTunnelFailed(t *testing.T) {
	d, s, sender := setup()
	sender.err = errors.New("not connected to backend")

	_, err := d.StartHTTP(HTTPRequest{Port: 3000, Remote: protocol.RemoteEndpoint{TunnelID: "abc"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, sender.err)

	tunnel, ok := s.Tunnel("abc")
	require.True(t, ok)
	assert.Equal(t, models.PhaseFailed, tunnel.Phase)
	assert.True(t, tunnel.Error)
	assert.False(t, tunnel.Loading)
	assert.Equal(t, "not connected to backend", tunnel.ErrorMsg)
}

func TestDispatcher_ValidationRejectsBeforeSending(t *testing.T) {
	d, s, sender := setup()

	_, err := d.StartHTTP(HTTPRequest{Port: 70000})
	assert.ErrorIs(t, err, validate.ErrInvalid)

	_, err = d.StartHTTP(HTTPRequest{Port: 80, Remote: protocol.RemoteEndpoint{Domain: "Bad_Name"}})
	assert.ErrorIs(t, err, validate.ErrInvalid)

	_, err = d.StartHTTP(HTTPRequest{Port: 80, Remote: protocol.RemoteEndpoint{BasicAuthUsername: "bob", BasicAuthPassword: "x"}})
	assert.ErrorIs(t, err, validate.ErrInvalid)

	_, err = d.StartDirectory("", protocol.RemoteEndpoint{}, false)
	assert.ErrorIs(t, err, validate.ErrInvalid)

	assert.Empty(t, sender.envelopes(t))
	assert.Empty(t, s.Snapshot().Tunnels.Tunnels)
	assert.Zero(t, s.Snapshot().Revision)
}

func TestDispatcher_RequestLogoutIsOptimistic(t *testing.T) {
	d, s, _ := setup()
	s.Dispatch(store.ReceivedAction{Envelope: protocol.Envelope{Type: protocol.TypeLoginSuccess, Payload: []byte(`{"idToken":""}`)}})
	require.True(t, s.Snapshot().Session.LoggedIn)

	require.NoError(t, d.RequestLogout())
	session := s.Snapshot().Session
	assert.False(t, session.LoggedIn)
	assert.Nil(t, session.User)
	assert.False(t, session.Synced)
}
