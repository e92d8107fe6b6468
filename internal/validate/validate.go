package validate

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
)

var (
	siteHostnameRe  = regexp.MustCompile(`^[a-z](?:-?[a-z0-9])*$`)
	localHostnameRe = regexp.MustCompile(`^(([a-zA-Z0-9]|[a-zA-Z0-9][a-zA-Z0-9-]*[a-zA-Z0-9])\.)*([A-Za-z0-9]|[A-Za-z0-9][A-Za-z0-9-]*[A-Za-z0-9])$`)
)

const (
	minSiteHostnameLen = 2
	maxSiteHostnameLen = 29
	minBasicAuthLen    = 3
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid input")

// SiteHostname checks a custom public hostname: lowercase, starts with a
// letter, single dashes between alphanumerics, 2 to 29 characters.
func SiteHostname(hostname string) error {
	if len(hostname) < minSiteHostnameLen || len(hostname) > maxSiteHostnameLen {
		return fmt.Errorf("%w: hostname must be %d-%d characters long", ErrInvalid, minSiteHostnameLen, maxSiteHostnameLen)
	}
	if !siteHostnameRe.MatchString(hostname) {
		return fmt.Errorf("%w: hostname %q may only contain lowercase letters, digits and single dashes, and must start with a letter", ErrInvalid, hostname)
	}
	return nil
}

// LocalHost accepts an IPv4 address or a DNS hostname
func LocalHost(host string) error {
	if ip := net.ParseIP(host); ip != nil && ip.To4() != nil {
		return nil
	}
	if localHostnameRe.MatchString(host) {
		return nil
	}
	return fmt.Errorf("%w: %q is not an IPv4 address or hostname", ErrInvalid, host)
}

func LocalPort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%w: port %d out of range 1-65535", ErrInvalid, port)
	}
	return nil
}

func LocalPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: path is empty", ErrInvalid)
	}
	return nil
}

// BasicAuth checks both credentials. Empty username and password means
// basic auth is off.
func BasicAuth(username, password string) error {
	if username == "" && password == "" {
		return nil
	}
	if len(username) < minBasicAuthLen {
		return fmt.Errorf("%w: basic auth username must be at least %d characters", ErrInvalid, minBasicAuthLen)
	}
	if len(password) < minBasicAuthLen {
		return fmt.Errorf("%w: basic auth password must be at least %d characters", ErrInvalid, minBasicAuthLen)
	}
	return nil
}
