package sdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vplay-cli/vplay/constant"
	"github.com/vplay-cli/vplay/internal/cache"
	"github.com/vplay-cli/vplay/log"
)

// HTTPInjector fetches SDK scripts over HTTP. A successful fetch is the script's load event.
type HTTPInjector struct {
	Client  *http.Client
	Timeout time.Duration
	// Cache serves fresh copies from the on-disk script cache instead of the network.
	Cache bool
	// Ready is invoked with the script's callback name once the script is available.
	Ready func(callback string) bool
}

type cachedScript struct {
	URL       string    `json:"url"`
	Body      string    `json:"body"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Inject starts the fetch in the background and reports through sig.
func (h *HTTPInjector) Inject(s Script, sig Signal) {
	go func() {
		// Nothing executes the body; the fetch succeeding is the load event.
		if _, err := h.Fetch(context.Background(), s); err != nil {
			sig.Failed(err)
			return
		}
		sig.Loaded()
		if s.Callback != "" && h.Ready != nil {
			h.Ready(s.Callback)
		}
	}()
}

// Fetch downloads the script body, using the cache when enabled.
func (h *HTTPInjector) Fetch(ctx context.Context, s Script) (string, error) {
	key := cache.GenerateKey(s.URL, string(s.Kind))

	if h.Cache {
		var hit cachedScript
		if cache.Read(key, &hit) && hit.URL == s.URL && hit.Body != "" {
			log.Debugf("sdk: %s script served from cache", s.Kind)
			return hit.Body, nil
		}
	}

	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", constant.UserAgent)

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %d", s.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.URL, err)
	}
	if strings.TrimSpace(string(body)) == "" {
		return "", fmt.Errorf("fetch %s: empty script", s.URL)
	}

	if h.Cache {
		if err := cache.Write(key, cachedScript{URL: s.URL, Body: string(body), FetchedAt: time.Now()}); err != nil {
			log.Warnf("sdk: caching %s script: %v", s.Kind, err)
		}
	}

	return string(body), nil
}
