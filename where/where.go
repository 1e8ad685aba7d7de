// Package where resolves the directories and files vplay keeps on disk. Directories
// are created on first use.
package where

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/vplay-cli/vplay/constant"
	"github.com/vplay-cli/vplay/filesystem"
)

// Overrides for the two roots every other location derives from.
const (
	EnvConfigPath = "VPLAY_CONFIG_PATH"
	EnvCachePath  = "VPLAY_CACHE_PATH"
)

func mkdir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

func root(env string, base func() (string, error), fallback string) string {
	if custom, ok := os.LookupEnv(env); ok && custom != "" {
		return mkdir(custom)
	}
	dir, err := base()
	if err != nil {
		dir = fallback
	}
	return mkdir(filepath.Join(dir, constant.Vplay))
}

// Config holds vplay.toml, logs, plugins and the watch history.
func Config() string {
	return root(EnvConfigPath, os.UserConfigDir, ".")
}

// Cache holds data that can be thrown away at any time.
func Cache() string {
	return root(EnvCachePath, os.UserCacheDir, os.TempDir())
}

func Logs() string {
	return mkdir(filepath.Join(Config(), "logs"))
}

// Plugins is where Lua plugins are discovered.
func Plugins() string {
	return mkdir(filepath.Join(Config(), "plugins"))
}

// Scripts caches downloaded provider SDK scripts.
func Scripts() string {
	return mkdir(filepath.Join(Cache(), "sdk"))
}

func History() string {
	return filepath.Join(Config(), "history.json")
}

// Queries remembers opened sources for completion.
func Queries() string {
	return filepath.Join(Cache(), "queries.json")
}

// Location is a named path the where and clear commands act on.
type Location struct {
	Name  string
	Short string
	Path  func() string
	// Disposable locations can be removed without losing configuration.
	Disposable bool
}

var Locations = []Location{
	{Name: "config", Short: "c", Path: Config},
	{Name: "plugins", Short: "p", Path: Plugins},
	{Name: "logs", Short: "l", Path: Logs, Disposable: true},
	{Name: "history", Short: "H", Path: History, Disposable: true},
	{Name: "cache", Path: Cache, Disposable: true},
	{Name: "scripts", Short: "s", Path: Scripts, Disposable: true},
	{Name: "queries", Short: "q", Path: Queries, Disposable: true},
}
