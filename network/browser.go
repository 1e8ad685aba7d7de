package network

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

const dialTimeout = 30 * time.Second

// BrowserClient fetches over TLS with a Chrome client hello. Script CDNs that reject
// Go's own fingerprint serve it like any browser.
var BrowserClient = &http.Client{
	Timeout:   time.Minute,
	Transport: NewBrowserTransport(nil),
}

// BrowserTransport tries HTTP/2 first and falls back to HTTP/1.1 when the server does
// not negotiate it. Plain http requests go straight to HTTP/1.1.
type BrowserTransport struct {
	h2 *http2.Transport
	h1 *http.Transport
}

// NewBrowserTransport returns a transport verifying servers against roots, or the
// system pool when roots is nil.
func NewBrowserTransport(roots *x509.CertPool) *BrowserTransport {
	t := &BrowserTransport{}

	t.h2 = &http2.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return dialBrowser(ctx, network, addr, roots, nil)
		},
	}

	t.h1 = newTransport()
	t.h1.ForceAttemptHTTP2 = false
	t.h1.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialBrowser(ctx, network, addr, roots, []string{"http/1.1"})
	}
	return t
}

func (t *BrowserTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return t.h1.RoundTrip(req)
	}

	resp, err := t.h2.RoundTrip(req)
	if err == nil {
		return resp, nil
	}

	retry := req.Clone(req.Context())
	if req.Body != nil {
		if req.GetBody == nil {
			return nil, err
		}
		if retry.Body, err = req.GetBody(); err != nil {
			return nil, err
		}
	}
	return t.h1.RoundTrip(retry)
}

func dialBrowser(ctx context.Context, network, addr string, roots *x509.CertPool, protos []string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		RootCAs:    roots,
		MinVersion: tls.VersionTLS12,
		NextProtos: protos,
	}, utls.HelloChrome_120)

	if err := tlsConn.Handshake(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("tls handshake with %s: %w", host, err)
	}
	return tlsConn, nil
}
