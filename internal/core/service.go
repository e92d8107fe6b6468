package core

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/atotto/clipboard"

	"github.com/Rorical/tunneldesk/internal/config"
	"github.com/Rorical/tunneldesk/internal/dispatcher"
	"github.com/Rorical/tunneldesk/internal/eventbus"
	"github.com/Rorical/tunneldesk/internal/protocol"
	"github.com/Rorical/tunneldesk/internal/store"
	"github.com/Rorical/tunneldesk/internal/transport"
	"github.com/Rorical/tunneldesk/pkg/logging"
)

const subsystem = "core"

// Connection is the socket the service talks through
type Connection interface {
	Start(ctx context.Context)
	Send(data []byte) error
	Close()
}

// TunnelService sits between the UI event bus, the backend connection and
// the store
type TunnelService struct {
	store      *store.Store
	conn       Connection
	dispatcher *dispatcher.Dispatcher
	eventBus   *eventbus.EventBus
	ctx        context.Context
	cancel     context.CancelFunc
	copyText   func(string) error
}

// NewTunnelServiceFromConfig wires a websocket connection for the active profile
func NewTunnelServiceFromConfig(cfg *config.Config, eb *eventbus.EventBus) (*TunnelService, error) {
	wsURL, err := cfg.WebSocketURL()
	if err != nil {
		return nil, err
	}
	profile := cfg.Current()

	st := store.NewStore(store.WithLogLimit(profile.LogBufferSize))
	service := newTunnelService(st, eb)
	service.attach(transport.New(wsURL, service, transport.Options{
		ReconnectDelay: profile.ReconnectDelay,
		MaxRetries:     profile.MaxRetries,
	}))
	return service, nil
}

// NewTunnelService uses conn as the backend connection. conn must feed the
// service through the transport.Handler methods.
func NewTunnelService(st *store.Store, conn Connection, eb *eventbus.EventBus) *TunnelService {
	service := newTunnelService(st, eb)
	service.attach(conn)
	return service
}

func newTunnelService(st *store.Store, eb *eventbus.EventBus) *TunnelService {
	ctx, cancel := context.WithCancel(context.Background())
	service := &TunnelService{
		store:    st,
		eventBus: eb,
		ctx:      ctx,
		cancel:   cancel,
		copyText: clipboard.WriteAll,
	}
	st.Subscribe(service.pushStateToUI)
	return service
}

func (ts *TunnelService) attach(conn Connection) {
	ts.conn = conn
	ts.dispatcher = dispatcher.New(ts.store, conn)
}

// Start runs the core logic in a goroutine
func (ts *TunnelService) Start() {
	// Send initial state to UI immediately
	ts.pushStateToUI(ts.store.Snapshot())
	ts.conn.Start(ts.ctx)
	go ts.eventLoop()
}

func (ts *TunnelService) Stop() {
	ts.cancel()
	ts.conn.Close()
}

func (ts *TunnelService) Store() *store.Store {
	return ts.store
}

// OnMessage decodes a backend frame into the store. Malformed frames never
// reach the reducers.
func (ts *TunnelService) OnMessage(data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		logging.Warn(subsystem, "Dropping malformed frame: %v", err)
		return
	}
	logging.Debug(subsystem, "Received %s (seq %d)", env.Type, env.Seq)
	ts.store.Dispatch(store.ReceivedAction{Envelope: env})
}

func (ts *TunnelService) OnConnect() {
	ts.store.Dispatch(store.ConnectionAction{Connected: true})
}

func (ts *TunnelService) OnDisconnect(err error) {
	ts.store.Dispatch(store.ConnectionAction{Connected: false, Err: err})
}

func (ts *TunnelService) eventLoop() {
	for {
		select {
		case <-ts.ctx.Done():
			return
		case event, ok := <-ts.eventBus.UIToCore():
			if !ok {
				return
			}
			ts.handleUIEvent(event)
		}
	}
}

func (ts *TunnelService) handleUIEvent(event eventbus.UIEvent) {
	var err error
	switch e := event.(type) {
	case eventbus.StartTunnelEvent:
		err = ts.startTunnel(e)
	case eventbus.StopTunnelEvent:
		err = ts.dispatcher.StopTunnel(e.TunnelID)
	case eventbus.DeleteTunnelEvent:
		ts.store.Dispatch(store.DeleteTunnelAction{TunnelID: e.TunnelID})
	case eventbus.LoginEvent:
		err = ts.dispatcher.RequestLogin()
	case eventbus.LogoutEvent:
		err = ts.dispatcher.RequestLogout()
	case eventbus.OpenInBrowserEvent:
		err = ts.openInBrowser(e.Target)
	case eventbus.CopyAddressEvent:
		err = ts.copyAddress(e.TunnelID)
	default:
		logging.Warn(subsystem, "Unhandled UI event %T", event)
	}

	if err != nil {
		logging.Error(subsystem, err, "Handling %T", event)
		ts.notify(NoticeFromError(err))
	}
}

func (ts *TunnelService) startTunnel(e eventbus.StartTunnelEvent) error {
	var (
		id  string
		err error
	)
	switch e.Kind {
	case protocol.TypeRequestTunnelStartHTTP.TunnelKind():
		id, err = ts.dispatcher.StartHTTP(dispatcher.HTTPRequest{
			Host:   e.Host,
			Port:   e.Port,
			HTTPS:  e.HTTPS,
			Path:   e.Path,
			Remote: e.Remote,
		})
	case protocol.TypeRequestTunnelStartDirectory.TunnelKind():
		id, err = ts.dispatcher.StartDirectory(e.Path, e.Remote, e.DisableListing)
	case protocol.TypeRequestTunnelStartWebDav.TunnelKind():
		id, err = ts.dispatcher.StartWebDav(e.Path, e.Remote)
	default:
		return fmt.Errorf("unknown tunnel type %q", e.Kind)
	}
	if err != nil {
		return err
	}
	logging.Info(subsystem, "Requested %s tunnel %s", e.Kind, id)
	return nil
}

// siteAddress resolves a tunnel id to its first public address
func (ts *TunnelService) siteAddress(tunnelID string) (string, error) {
	tunnel, ok := ts.store.Tunnel(tunnelID)
	if !ok {
		return "", fmt.Errorf("unknown tunnel %q", tunnelID)
	}
	if len(tunnel.SiteAddrs) == 0 {
		return "", fmt.Errorf("tunnel %q has no public address yet", tunnelID)
	}
	return tunnel.SiteAddrs[0], nil
}

func (ts *TunnelService) openInBrowser(target string) error {
	addr := target
	if _, ok := ts.store.Tunnel(target); ok {
		var err error
		if addr, err = ts.siteAddress(target); err != nil {
			return err
		}
	}
	u, err := url.Parse(addr)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("cannot open %q: not a URL or tunnel id", target)
	}
	return ts.dispatcher.OpenInBrowser(addr)
}

func (ts *TunnelService) copyAddress(tunnelID string) error {
	addr, err := ts.siteAddress(tunnelID)
	if err != nil {
		return err
	}
	if err := ts.copyText(addr); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	ts.notify(eventbus.NoticeEvent{Message: "Copied " + addr})
	return nil
}

func (ts *TunnelService) pushStateToUI(snap store.Snapshot) {
	if err := ts.eventBus.PublishState(eventbus.StateUpdateEvent{Snapshot: snap}); err != nil {
		if errors.Is(err, eventbus.ErrClosed) {
			return
		}
		logging.Error(subsystem, err, "Error sending state to UI")
	}
}

func (ts *TunnelService) notify(event eventbus.NoticeEvent) {
	if err := ts.eventBus.SendToUI(event); err != nil && !errors.Is(err, eventbus.ErrClosed) {
		logging.Error(subsystem, err, "Error sending notice to UI")
	}
}

// NoticeFromError turns a failed request into a UI notice
func NoticeFromError(err error) eventbus.NoticeEvent {
	return eventbus.NoticeEvent{Message: err.Error(), Error: err}
}
