package sdk

import (
	"sync"
	"time"

	"github.com/spf13/viper"
	"github.com/vplay-cli/vplay/key"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/network"
)

// Readiness hooks published by the embed SDKs.
const (
	YouTubeCallback     = "onYouTubeIframeAPIReady"
	DailymotionCallback = "dmAsyncInit"
)

// DefaultScripts returns the configured scripts of every embed provider.
func DefaultScripts() []Script {
	return []Script{
		{Kind: media.Vimeo, URL: viper.GetString(key.SDKVimeoURL)},
		{Kind: media.YouTube, URL: viper.GetString(key.SDKYouTubeURL), Callback: YouTubeCallback},
		{Kind: media.Dailymotion, URL: viper.GetString(key.SDKDailymotionURL), Callback: DailymotionCallback},
	}
}

var (
	defaultOnce   sync.Once
	defaultLoader *Loader
)

// Default returns the process-wide loader. It fetches scripts over HTTP using the shared
// client and is created on first use.
func Default() *Loader {
	defaultOnce.Do(func() {
		inj := &HTTPInjector{
			Client:  network.BrowserClient,
			Timeout: time.Duration(viper.GetInt(key.SDKTimeout)) * time.Second,
			Cache:   viper.GetBool(key.SDKCache),
		}
		defaultLoader = NewLoader(inj, DefaultScripts()...)
		inj.Ready = defaultLoader.Callback
	})
	return defaultLoader
}
