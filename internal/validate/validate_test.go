package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSiteHostname(t *testing.T) {
	valid := []string{"ab", "my-site", "a1b2", "abcdefghijklmnopqrstuvwxyz012"}
	invalid := []string{"", "a", "1abc", "My-site", "my--site", "site-", "my_site", "abcdefghijklmnopqrstuvwxyz0123"}

	for _, h := range valid {
		assert.NoError(t, SiteHostname(h), h)
	}
	for _, h := range invalid {
		err := SiteHostname(h)
		assert.ErrorIs(t, err, ErrInvalid, h)
	}
}

func TestLocalHost(t *testing.T) {
	for _, h := range []string{"127.0.0.1", "localhost", "my-box.lan", "Server01", "10.0.0.254"} {
		assert.NoError(t, LocalHost(h), h)
	}
	for _, h := range []string{"", "-bad", "bad-", "a..b", "::1", "host name"} {
		assert.ErrorIs(t, LocalHost(h), ErrInvalid, h)
	}
}

func TestLocalPort(t *testing.T) {
	assert.NoError(t, LocalPort(1))
	assert.NoError(t, LocalPort(8080))
	assert.NoError(t, LocalPort(65535))
	assert.ErrorIs(t, LocalPort(0), ErrInvalid)
	assert.ErrorIs(t, LocalPort(-1), ErrInvalid)
	assert.ErrorIs(t, LocalPort(65536), ErrInvalid)
}

func TestLocalPath(t *testing.T) {
	assert.NoError(t, LocalPath("/srv/www"))
	assert.ErrorIs(t, LocalPath(""), ErrInvalid)
	assert.ErrorIs(t, LocalPath("   "), ErrInvalid)
}

func TestBasicAuth(t *testing.T) {
	assert.NoError(t, BasicAuth("", ""))
	assert.NoError(t, BasicAuth("bob", "pwd"))
	assert.ErrorIs(t, BasicAuth("bo", "secret"), ErrInvalid)
	assert.ErrorIs(t, BasicAuth("bob", "pw"), ErrInvalid)
	assert.ErrorIs(t, BasicAuth("", "secret"), ErrInvalid)
}
