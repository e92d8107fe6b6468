package models

// AuthInstructions is the device-code payload the user completes out of band
type AuthInstructions struct {
	DeviceCode              string
	UserCode                string
	VerificationURI         string
	VerificationURIComplete string
}

// DisplayConfig holds the feature flags the backend reports at startup
type DisplayConfig struct {
	QR      bool
	Verbose bool
}

// ConfigSnapshot is the process-wide configuration received from the backend
type ConfigSnapshot struct {
	Version             string
	CommitHash          string
	HomeDirectory       string
	FeedbackFormURL     string
	Display             DisplayConfig
	NewVersionAvailable string
}

// User holds the identity claims decoded from the backend's ID token
type User struct {
	Subject  string
	Email    string
	Name     string
	Nickname string
	Picture  string
	Claims   map[string]interface{}
}

// DisplayName picks the most readable identifier available
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.Name != "":
		return u.Name
	case u.Nickname != "":
		return u.Nickname
	case u.Email != "":
		return u.Email
	default:
		return u.Subject
	}
}
