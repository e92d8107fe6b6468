package protocol

import "strings"

// MessageType tags an envelope
type MessageType string

// Inbound, sent by the backend
const (
	TypeLog       MessageType = "MT_Log"
	TypeTunnelLog MessageType = "MT_TunnelLog"

	TypeAppStart            MessageType = "MT_ApplicationStart"
	TypeAppStop             MessageType = "MT_ApplicationStop"
	TypeNewVersionAvailable MessageType = "MT_ApplicationNewVersionAvailable"

	TypeLogin        MessageType = "MT_Login"
	TypeLoginSuccess MessageType = "MT_LoginSuccess"
	TypeLoginFailure MessageType = "MT_LoginFailure"

	TypeLogoutSuccess MessageType = "MT_LogoutSuccess"
	TypeLogoutFailure MessageType = "MT_LogoutFailure"

	TypeTunnelStart        MessageType = "MT_TunnelStart"
	TypeTunnelStartSuccess MessageType = "MT_TunnelStartSuccess"
	TypeTunnelStartFailure MessageType = "MT_TunnelStartFailure"
	TypeTunnelStop         MessageType = "MT_TunnelStop"

	TypeLoadingStart   MessageType = "MT_LoadingStart"
	TypeLoadingSuccess MessageType = "MT_LoadingSuccess"
	TypeLoadingFailure MessageType = "MT_LoadingFailure"
)

// Outbound, sent by this client
const (
	TypeRequestLogin  MessageType = "MT_RequestLogin"
	TypeRequestLogout MessageType = "MT_RequestLogout"

	TypeRequestTunnelStartHTTP      MessageType = "MT_RequestTunnelStartHTTP"
	TypeRequestTunnelStartDirectory MessageType = "MT_RequestTunnelStartDirectory"
	TypeRequestTunnelStartWebDav    MessageType = "MT_RequestTunnelStartWebDav"
	TypeRequestTunnelStop           MessageType = "MT_RequestTunnelStop"

	TypeOpenInBrowser MessageType = "MT_OpenInBrowser"
)

// PrefixRequestTunnelStart is shared by all start requests; the suffix is the tunnel type
const PrefixRequestTunnelStart = "MT_RequestTunnelStart"

// IsTunnelStartRequest reports whether t asks the backend to start a tunnel
func (t MessageType) IsTunnelStartRequest() bool {
	return strings.HasPrefix(string(t), PrefixRequestTunnelStart)
}

// TunnelKind returns the tunnel type suffix of a start request ("HTTP", ...)
func (t MessageType) TunnelKind() string {
	return strings.TrimPrefix(string(t), PrefixRequestTunnelStart)
}
