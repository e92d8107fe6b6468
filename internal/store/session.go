package store

import (
	"github.com/dgrijalva/jwt-go"

	"github.com/Rorical/tunneldesk/internal/models"
	"github.com/Rorical/tunneldesk/internal/protocol"
)

const (
	defaultFeedbackFormURL = "https://bit.ly/3mvmZBA"
	defaultVersion         = "development"
	defaultCommitHash      = "unknown"
)

// SessionState is the auth and backend-config slice
type SessionState struct {
	Config           models.ConfigSnapshot
	LoggedIn         bool
	User             *models.User
	AuthInstructions *models.AuthInstructions
	AuthError        string
	Synced           bool // Whether the backend has confirmed the current auth state

	Connected           bool
	LastConnectionError string
}

func NewSessionState() SessionState {
	return SessionState{
		Config: models.ConfigSnapshot{
			Version:         defaultVersion,
			CommitHash:      defaultCommitHash,
			FeedbackFormURL: defaultFeedbackFormURL,
		},
	}
}

// DecodeIDToken reads the claims of an ID token without verifying its
// signature. The claims are only displayed, never trusted.
func DecodeIDToken(idToken string) *models.User {
	if idToken == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(idToken, claims); err != nil {
		return nil
	}
	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	return &models.User{
		Subject:  str("sub"),
		Email:    str("email"),
		Name:     str("name"),
		Nickname: str("nickname"),
		Picture:  str("picture"),
		Claims:   map[string]interface{}(claims),
	}
}

// ReduceSession folds a into s
func ReduceSession(s SessionState, a Action) SessionState {
	switch a := a.(type) {
	case SentAction:
		switch a.Envelope.Type {
		case protocol.TypeRequestLogin:
			s.AuthInstructions = nil
			s.AuthError = ""
		case protocol.TypeRequestLogout:
			s.LoggedIn = false
			s.User = nil
			s.Synced = false
		}
	case ReceivedAction:
		return reduceSessionReceived(s, a.Envelope)
	case ConnectionAction:
		s.Connected = a.Connected
		if a.Err != nil {
			s.LastConnectionError = a.Err.Error()
		} else if a.Connected {
			s.LastConnectionError = ""
		}
	}
	return s
}

func reduceSessionReceived(s SessionState, env protocol.Envelope) SessionState {
	switch env.Type {
	case protocol.TypeAppStart:
		var p protocol.AppStart
		if env.DecodePayload(&p) != nil {
			return s
		}
		s.LoggedIn = p.LoggedIn
		s.Config.Display = models.DisplayConfig{QR: p.DisplayConfig.QR, Verbose: p.DisplayConfig.Verbose}
		if p.FeedbackFormURL != "" {
			s.Config.FeedbackFormURL = p.FeedbackFormURL
		}
		s.Config.Version = p.Version
		s.Config.CommitHash = p.CommitHash
		s.Config.HomeDirectory = p.HomeDirectory
		s.User = DecodeIDToken(p.IDToken)
		s.Synced = true

	case protocol.TypeNewVersionAvailable:
		var p protocol.NewVersionAvailable
		if env.DecodePayload(&p) == nil {
			s.Config.NewVersionAvailable = p.Version
		}

	case protocol.TypeLogin:
		var p protocol.LoginInstructions
		if env.DecodePayload(&p) != nil {
			return s
		}
		s.AuthInstructions = &models.AuthInstructions{
			DeviceCode:              p.DeviceCode,
			UserCode:                p.UserCode,
			VerificationURI:         p.VerificationURI,
			VerificationURIComplete: p.VerificationURIComplete,
		}
		s.AuthError = ""

	case protocol.TypeLoginSuccess:
		var p protocol.LoginSuccess
		if env.DecodePayload(&p) != nil {
			return s
		}
		s.AuthInstructions = nil
		s.AuthError = ""
		s.LoggedIn = true
		s.User = DecodeIDToken(p.IDToken)
		s.Synced = true

	case protocol.TypeLoginFailure:
		var p protocol.Failure
		_ = env.DecodePayload(&p)
		s.AuthError = p.Error

	case protocol.TypeLogoutSuccess:
		s.LoggedIn = false
		s.User = nil
		s.Synced = true

	case protocol.TypeLogoutFailure:
		var p protocol.Failure
		_ = env.DecodePayload(&p)
		s.AuthError = p.Error
		s.Synced = true
	}
	return s
}
