package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/Rorical/tunneldesk/internal/eventbus"
	"github.com/Rorical/tunneldesk/internal/protocol"
)

// RegisterBuiltinCommands registers every command the TUI understands
func RegisterBuiltinCommands(registry *Registry) {
	registry.Register(&HTTPCommand{}, "expose")
	registry.Register(&DirectoryCommand{}, "directory")
	registry.Register(&WebDavCommand{})
	registry.Register(&idCommand{
		name:        "stop",
		description: "Stop a running tunnel",
		event:       func(id string) eventbus.UIEvent { return eventbus.StopTunnelEvent{TunnelID: id} },
	})
	registry.Register(&idCommand{
		name:        "delete",
		description: "Remove a stopped or failed tunnel from the list",
		event:       func(id string) eventbus.UIEvent { return eventbus.DeleteTunnelEvent{TunnelID: id} },
	}, "rm")
	registry.Register(&idCommand{
		name:        "copy",
		description: "Copy a tunnel's public address to the clipboard",
		event:       func(id string) eventbus.UIEvent { return eventbus.CopyAddressEvent{TunnelID: id} },
	})
	registry.Register(&OpenCommand{})
	registry.Register(&noArgCommand{
		name:        "login",
		description: "Start the device login flow",
		event:       eventbus.LoginEvent{},
	})
	registry.Register(&noArgCommand{
		name:        "logout",
		description: "Log out of the backend",
		event:       eventbus.LogoutEvent{},
	})
	registry.Register(&noArgCommand{
		name:        "help",
		description: "Show this help",
		event:       HelpEvent{},
	}, "?")
}

// remoteFlags are the public-side options shared by every start command
type remoteFlags struct {
	name, user, pass          string
	id                        string
	noErrorPage, noOldCiphers bool
}

func (rf *remoteFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&rf.name, "name", "", "custom hostname")
	fs.StringVar(&rf.user, "user", "", "basic auth username")
	fs.StringVar(&rf.pass, "pass", "", "basic auth password")
	fs.StringVar(&rf.id, "id", "", "tunnel id")
	fs.BoolVar(&rf.noErrorPage, "no-error-page", false, "disable the proxy error page")
	fs.BoolVar(&rf.noOldCiphers, "no-old-ciphers", false, "disable old TLS ciphers")
}

func (rf *remoteFlags) endpoint() protocol.RemoteEndpoint {
	return protocol.RemoteEndpoint{
		Domain:                rf.name,
		TunnelID:              rf.id,
		BasicAuthUsername:     rf.user,
		BasicAuthPassword:     rf.pass,
		DisableProxyErrorPage: rf.noErrorPage,
		DisableOldCiphers:     rf.noOldCiphers,
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// HTTPCommand exposes a local web server
type HTTPCommand struct{}

func (c *HTTPCommand) Name() string { return "http" }

func (c *HTTPCommand) Usage() string {
	return "http <port> [host] [--https] [--path P] [--name N] [--user U --pass P] [--no-error-page] [--no-old-ciphers]"
}

func (c *HTTPCommand) Description() string {
	return "Expose a local HTTP server"
}

func (c *HTTPCommand) Parse(args []string) (eventbus.UIEvent, error) {
	var (
		remote remoteFlags
		https  bool
		path   string
	)
	fs := newFlagSet(c.Name())
	remote.bind(fs)
	fs.BoolVar(&https, "https", false, "local server speaks HTTPS")
	fs.StringVar(&path, "path", "", "local path prefix")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if len(rest) < 1 || len(rest) > 2 {
		return nil, errors.New("expected a port and an optional host")
	}
	port, err := strconv.Atoi(rest[0])
	if err != nil {
		return nil, fmt.Errorf("invalid port %q", rest[0])
	}
	host := ""
	if len(rest) == 2 {
		host = rest[1]
	}

	return eventbus.StartTunnelEvent{
		Kind:   protocol.TypeRequestTunnelStartHTTP.TunnelKind(),
		Host:   host,
		Port:   port,
		HTTPS:  https,
		Path:   path,
		Remote: remote.endpoint(),
	}, nil
}

// DirectoryCommand serves a local directory as a static site
type DirectoryCommand struct{}

func (c *DirectoryCommand) Name() string { return "dir" }

func (c *DirectoryCommand) Usage() string {
	return "dir <path> [--no-listing] [--name N] [--user U --pass P]"
}

func (c *DirectoryCommand) Description() string {
	return "Serve a local directory"
}

func (c *DirectoryCommand) Parse(args []string) (eventbus.UIEvent, error) {
	var (
		remote    remoteFlags
		noListing bool
	)
	fs := newFlagSet(c.Name())
	remote.bind(fs)
	fs.BoolVar(&noListing, "no-listing", false, "disable directory listing")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, errors.New("expected exactly one path")
	}

	return eventbus.StartTunnelEvent{
		Kind:           protocol.TypeRequestTunnelStartDirectory.TunnelKind(),
		Path:           fs.Arg(0),
		DisableListing: noListing,
		Remote:         remote.endpoint(),
	}, nil
}

// WebDavCommand shares a local directory over WebDAV
type WebDavCommand struct{}

func (c *WebDavCommand) Name() string { return "webdav" }

func (c *WebDavCommand) Usage() string {
	return "webdav <path> [--name N] [--user U --pass P]"
}

func (c *WebDavCommand) Description() string {
	return "Share a local directory over WebDAV"
}

func (c *WebDavCommand) Parse(args []string) (eventbus.UIEvent, error) {
	var remote remoteFlags
	fs := newFlagSet(c.Name())
	remote.bind(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, errors.New("expected exactly one path")
	}

	return eventbus.StartTunnelEvent{
		Kind:   protocol.TypeRequestTunnelStartWebDav.TunnelKind(),
		Path:   fs.Arg(0),
		Remote: remote.endpoint(),
	}, nil
}

// OpenCommand opens a URL, or a tunnel's public address, in the browser
type OpenCommand struct{}

func (c *OpenCommand) Name() string        { return "open" }
func (c *OpenCommand) Usage() string       { return "open <url|id>" }
func (c *OpenCommand) Description() string { return "Open a URL or tunnel address in the browser" }

func (c *OpenCommand) Parse(args []string) (eventbus.UIEvent, error) {
	if len(args) != 1 {
		return nil, errors.New("expected a URL or tunnel id")
	}
	return eventbus.OpenInBrowserEvent{Target: args[0]}, nil
}

type idCommand struct {
	name        string
	description string
	event       func(id string) eventbus.UIEvent
}

func (c *idCommand) Name() string        { return c.name }
func (c *idCommand) Usage() string       { return c.name + " <id>" }
func (c *idCommand) Description() string { return c.description }

func (c *idCommand) Parse(args []string) (eventbus.UIEvent, error) {
	if len(args) != 1 {
		return nil, errors.New("expected a tunnel id")
	}
	return c.event(args[0]), nil
}

type noArgCommand struct {
	name        string
	description string
	event       eventbus.UIEvent
}

func (c *noArgCommand) Name() string        { return c.name }
func (c *noArgCommand) Usage() string       { return c.name }
func (c *noArgCommand) Description() string { return c.description }

func (c *noArgCommand) Parse(args []string) (eventbus.UIEvent, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("%s takes no arguments", c.name)
	}
	return c.event, nil
}
