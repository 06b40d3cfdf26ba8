package dialer

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

// ProxyDialer SOCKS5 代理拨号器，FTP 控制连接与数据连接都经由它建立
//
// socks5:  目标主机名在本地解析，代理只看到 IP
// socks5h: 主机名交给代理解析
type ProxyDialer struct {
	ProxyURL *url.URL
	Timeout  time.Duration

	remoteDNS bool
	forward   proxy.ContextDialer
	resolver  *net.Resolver
}

func NewProxyDialer(proxyAddr string, timeout time.Duration) (*ProxyDialer, error) {
	u, err := url.Parse(proxyAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy address: %v", err)
	}
	if u.Scheme != "socks5" && u.Scheme != "socks5h" {
		return nil, fmt.Errorf("unsupported proxy scheme: %s (only socks5/socks5h)", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy address has no host: %s", u.Redacted())
	}

	var auth *proxy.Auth
	if u.User != nil {
		auth = &proxy.Auth{User: u.User.Username()}
		auth.Password, _ = u.User.Password()
	}

	forward, err := proxy.SOCKS5("tcp", u.Host, auth, &net.Dialer{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create socks5 dialer: %v", err)
	}
	cd, ok := forward.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("socks5 dialer does not support context")
	}

	return &ProxyDialer{
		ProxyURL:  u,
		Timeout:   timeout,
		remoteDNS: u.Scheme == "socks5h",
		forward:   cd,
		resolver:  net.DefaultResolver,
	}, nil
}

func (d *ProxyDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	if !d.remoteDNS {
		resolved, err := d.resolve(ctx, address)
		if err != nil {
			return nil, err
		}
		address = resolved
	}
	return d.forward.DialContext(ctx, network, address)
}

// resolve 把 host:port 中的主机名解析为第一个 IP
func (d *ProxyDialer) resolve(ctx context.Context, address string) (string, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return "", err
	}
	if net.ParseIP(host) != nil {
		return address, nil
	}
	ips, err := d.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", host, err)
	}
	if len(ips) == 0 {
		return "", fmt.Errorf("resolve %s: no addresses", host)
	}
	return net.JoinHostPort(ips[0].IP.String(), port), nil
}

// String 代理地址，口令已隐藏
func (d *ProxyDialer) String() string {
	return d.ProxyURL.Redacted()
}
