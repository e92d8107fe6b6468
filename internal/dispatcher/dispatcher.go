package dispatcher

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Rorical/tunneldesk/internal/protocol"
	"github.com/Rorical/tunneldesk/internal/store"
	"github.com/Rorical/tunneldesk/internal/validate"
	"github.com/Rorical/tunneldesk/pkg/logging"
)

const subsystem = "dispatcher"

// Sender transmits a serialized envelope. transport.Client satisfies it.
type Sender interface {
	Send(data []byte) error
}

// Dispatcher turns user intents into envelopes, records them in the store
// and hands them to the sender
type Dispatcher struct {
	store  *store.Store
	sender Sender

	mu  sync.Mutex // keeps seq order and store order in step
	seq uint64
}

func New(s *store.Store, sender Sender) *Dispatcher {
	return &Dispatcher{store: s, sender: sender}
}

// Send stamps env with the next sequence number, dispatches it into the
// store and transmits it. Start requests without a tunnel id get one. A failed transmission is dispatched as
// SendFailedAction and returned.
func (d *Dispatcher) Send(env protocol.Envelope) error {
	if env.Type.IsTunnelStartRequest() {
		var err error
		if env, err = ensureTunnelID(env); err != nil {
			return err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	env.Version = protocol.SchemaVersion
	env.Seq = d.seq

	data, err := protocol.Encode(env)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", env.Type, err)
	}

	d.store.Dispatch(store.SentAction{Envelope: env})

	if err := d.sender.Send(data); err != nil {
		logging.Error(subsystem, err, "Failed to send %s (seq %d)", env.Type, env.Seq)
		d.store.Dispatch(store.SendFailedAction{Envelope: env, Err: err})
		return fmt.Errorf("failed to send %s: %w", env.Type, err)
	}
	logging.Debug(subsystem, "Sent %s (seq %d)", env.Type, env.Seq)
	return nil
}

func (d *Dispatcher) send(t protocol.MessageType, payload interface{}) error {
	env, err := protocol.NewEnvelope(t, payload)
	if err != nil {
		return err
	}
	return d.Send(env)
}

// HTTPRequest is what the user asks for when exposing a local web server
type HTTPRequest struct {
	Host   string
	Port   int
	HTTPS  bool
	Path   string
	Remote protocol.RemoteEndpoint
}

// StartHTTP validates req and asks the backend to expose a local HTTP
// server. The tunnel id is generated when req carries none and is returned
// either way.
func (d *Dispatcher) StartHTTP(req HTTPRequest) (string, error) {
	if req.Host == "" {
		req.Host = "127.0.0.1"
	}
	if err := validate.LocalHost(req.Host); err != nil {
		return "", err
	}
	if err := validate.LocalPort(req.Port); err != nil {
		return "", err
	}
	remote, err := prepareRemote(req.Remote)
	if err != nil {
		return "", err
	}

	payload := protocol.ExposeHTTP{
		Local: protocol.LocalHTTPEndpoint{
			Host:  req.Host,
			Port:  int32(req.Port),
			HTTPS: req.HTTPS,
			Path:  req.Path,
		},
		Remote: remote,
	}
	return remote.TunnelID, d.send(protocol.TypeRequestTunnelStartHTTP, payload)
}

// StartDirectory asks the backend to serve path as a static site
func (d *Dispatcher) StartDirectory(path string, remote protocol.RemoteEndpoint, disableListing bool) (string, error) {
	if err := validate.LocalPath(path); err != nil {
		return "", err
	}
	remote, err := prepareRemote(remote)
	if err != nil {
		return "", err
	}

	payload := protocol.ExposeDirectory{
		Local:                   protocol.LocalDirectory{Path: path},
		Remote:                  remote,
		DisableDirectoryListing: disableListing,
	}
	return remote.TunnelID, d.send(protocol.TypeRequestTunnelStartDirectory, payload)
}

// StartWebDav asks the backend to share path over WebDAV
func (d *Dispatcher) StartWebDav(path string, remote protocol.RemoteEndpoint) (string, error) {
	if err := validate.LocalPath(path); err != nil {
		return "", err
	}
	remote, err := prepareRemote(remote)
	if err != nil {
		return "", err
	}

	payload := protocol.ExposeWebdav{
		Local:  protocol.LocalDirectory{Path: path},
		Remote: remote,
	}
	return remote.TunnelID, d.send(protocol.TypeRequestTunnelStartWebDav, payload)
}

func (d *Dispatcher) StopTunnel(tunnelID string) error {
	return d.send(protocol.TypeRequestTunnelStop, protocol.StopTunnel{TunnelID: tunnelID})
}

func (d *Dispatcher) RequestLogin() error {
	return d.send(protocol.TypeRequestLogin, nil)
}

func (d *Dispatcher) RequestLogout() error {
	return d.send(protocol.TypeRequestLogout, nil)
}

// OpenInBrowser asks the backend to open url on the machine it runs on
func (d *Dispatcher) OpenInBrowser(url string) error {
	return d.send(protocol.TypeOpenInBrowser, protocol.OpenInBrowser{URL: url})
}

func prepareRemote(remote protocol.RemoteEndpoint) (protocol.RemoteEndpoint, error) {
	if remote.Domain != "" {
		if err := validate.SiteHostname(remote.Domain); err != nil {
			return remote, err
		}
	}
	if err := validate.BasicAuth(remote.BasicAuthUsername, remote.BasicAuthPassword); err != nil {
		return remote, err
	}
	if remote.TunnelID == "" {
		remote.TunnelID = uuid.NewString()
	}
	return remote, nil
}

// ensureTunnelID fills remote.tunnelId of a start request payload when it
// is empty. Other payload fields pass through untouched.
func ensureTunnelID(env protocol.Envelope) (protocol.Envelope, error) {
	fields := make(map[string]json.RawMessage)
	if err := env.DecodePayload(&fields); err != nil {
		return env, err
	}

	var remote protocol.RemoteEndpoint
	if raw, ok := fields["remote"]; ok {
		if err := json.Unmarshal(raw, &remote); err != nil {
			return env, fmt.Errorf("failed to decode %s remote: %w", env.Type, err)
		}
	}
	if remote.TunnelID != "" {
		return env, nil
	}
	remote.TunnelID = uuid.NewString()

	raw, err := json.Marshal(remote)
	if err != nil {
		return env, fmt.Errorf("failed to encode %s remote: %w", env.Type, err)
	}
	fields["remote"] = raw

	filled, err := protocol.NewEnvelope(env.Type, fields)
	if err != nil {
		return env, err
	}
	filled.Seq = env.Seq
	return filled, nil
}
