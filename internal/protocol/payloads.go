package protocol

// LocalHTTPEndpoint describes the local web server behind an HTTP tunnel
type LocalHTTPEndpoint struct {
	Host  string `json:"host"`
	Port  int32  `json:"port"`
	HTTPS bool   `json:"https"`
	Path  string `json:"path,omitempty"`
}

// LocalDirectory describes the directory behind a Directory or WebDav tunnel
type LocalDirectory struct {
	Path string `json:"path"`
}

// RemoteEndpoint carries the user-chosen settings for the public side
type RemoteEndpoint struct {
	SiteID                string `json:"siteId,omitempty"`
	Domain                string `json:"domain,omitempty"`
	TunnelID              string `json:"tunnelId"`
	BasicAuthUsername     string `json:"basicAuthUsername,omitempty"`
	BasicAuthPassword     string `json:"basicAuthPassword,omitempty"`
	DisableProxyErrorPage bool   `json:"disableProxyErrorPage,omitempty"`
	DisableOldCiphers     bool   `json:"disableOldCiphers,omitempty"`
}

type ExposeHTTP struct {
	Local  LocalHTTPEndpoint `json:"local"`
	Remote RemoteEndpoint    `json:"remote"`
}

type ExposeDirectory struct {
	Local                   LocalDirectory `json:"local"`
	Remote                  RemoteEndpoint `json:"remote"`
	DisableDirectoryListing bool           `json:"disableDirectoryListing,omitempty"`
}

type ExposeWebdav struct {
	Local  LocalDirectory `json:"local"`
	Remote RemoteEndpoint `json:"remote"`
}

// StartRequest is the part every start payload shares; enough for the
// reducers to build the optimistic tunnel entry
type StartRequest struct {
	Remote RemoteEndpoint `json:"remote"`
}

type StopTunnel struct {
	TunnelID string `json:"tunnelId"`
}

type OpenInBrowser struct {
	URL string `json:"url"`
}

type DisplayConfig struct {
	QR      bool `json:"qr"`
	Verbose bool `json:"verbose"`
}

type AppStart struct {
	LoggedIn        bool          `json:"loggedIn"`
	IDToken         string        `json:"idToken,omitempty"`
	DisplayConfig   DisplayConfig `json:"displayConfig"`
	FeedbackFormURL string        `json:"feedbackFormUrl,omitempty"`
	Version         string        `json:"version"`
	CommitHash      string        `json:"commitHash"`
	HomeDirectory   string        `json:"homeDirectory"`
}

type NewVersionAvailable struct {
	Version string `json:"version"`
}

// LoginInstructions is the device-code flow payload of MT_Login
type LoginInstructions struct {
	DeviceCode              string `json:"deviceCode"`
	UserCode                string `json:"userCode"`
	VerificationURI         string `json:"verificationUri"`
	VerificationURIComplete string `json:"verificationUriComplete"`
}

type LoginSuccess struct {
	IDToken string `json:"idToken"`
}

// Failure is the payload of MT_LoginFailure and MT_LogoutFailure
type Failure struct {
	Error string `json:"error"`
}

type TunnelStart struct {
	TunnelID  string `json:"tunnelId"`
	SiteID    string `json:"siteId,omitempty"`
	LocalAddr string `json:"localAddr,omitempty"`
}

type TunnelStartSuccess struct {
	TunnelID  string   `json:"tunnelId"`
	SiteID    string   `json:"siteId,omitempty"`
	SiteAddrs []string `json:"siteAddrs"`
	LocalAddr string   `json:"localAddr,omitempty"`
}

type TunnelStartFailure struct {
	TunnelID string `json:"tunnelId"`
	Error    string `json:"error"`
}

type TunnelStop struct {
	TunnelID string `json:"tunnelId"`
}

// Loading is the payload of the three MT_Loading* messages
type Loading struct {
	TunnelID string `json:"tunnelId"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

type Log struct {
	Message string `json:"message"`
	Class   string `json:"class"`
}

type TunnelLog struct {
	TunnelID string `json:"tunnelId"`
	Message  string `json:"message"`
	Class    string `json:"class"`
}
