package httpclient

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsPrivateIP(t *testing.T) {
	private := []string{
		"127.0.0.1",
		"10.0.0.1",
		"172.16.0.1",
		"192.168.1.1",
		"169.254.1.1",
		"0.0.0.0",
		"::1",
		"fe80::1",
	}
	for _, s := range private {
		assert.True(t, isPrivateIP(net.ParseIP(s)), "expected %s to be blocked", s)
	}

	public := []string{
		"8.8.8.8",
		"1.1.1.1",
		"2606:4700:4700::1111",
	}
	for _, s := range public {
		assert.False(t, isPrivateIP(net.ParseIP(s)), "expected %s to be allowed", s)
	}
}

func TestNewSaferClientHasTimeout(t *testing.T) {
	c := NewSaferClient(60 * time.Second)
	assert.NotNil(t, c.Client)
	assert.NotZero(t, c.Timeout)
}
