// Package network holds the HTTP clients shared by SDK script fetches, renderer control
// requests and update checks.
package network

import (
	"net/http"
	"time"

	"github.com/vplay-cli/vplay/constant"
)

// Client talks to renderers on the local network and to plain JSON APIs. Connections
// are pooled per host since a cast session polls the same renderer every second.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: agent{newTransport()},
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 32
	t.MaxIdleConnsPerHost = 8
	t.IdleConnTimeout = 90 * time.Second
	t.ResponseHeaderTimeout = 20 * time.Second
	return t
}

// agent sets the vplay User-Agent on requests that carry none.
type agent struct {
	next http.RoundTripper
}

func (a agent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return a.next.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", constant.UserAgent)
	return a.next.RoundTrip(req)
}
