package dialer

import (
	"context"
	"net"
	"time"
)

// Dialer 网络连接器
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// DefaultDialer 直连拨号器
type DefaultDialer struct {
	Timeout time.Duration
}

func NewDefaultDialer(timeout time.Duration) *DefaultDialer {
	return &DefaultDialer{Timeout: timeout}
}

// DialContext 每次尝试都是短连接，不开启 TCP keep-alive
func (d *DefaultDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	nd := &net.Dialer{
		Timeout:   d.Timeout,
		KeepAlive: -1,
	}
	return nd.DialContext(ctx, network, address)
}

func (d *DefaultDialer) String() string {
	return "direct"
}

// New proxyAddr 为空时直连，否则走 SOCKS5
func New(proxyAddr string, timeout time.Duration) (Dialer, error) {
	if proxyAddr == "" {
		return NewDefaultDialer(timeout), nil
	}
	return NewProxyDialer(proxyAddr, timeout)
}
