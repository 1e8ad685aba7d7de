// Package builtin assembles the plugin registry of the command line player.
package builtin

import (
	"github.com/vplay-cli/vplay/log"
	"github.com/vplay-cli/vplay/plugin"
	"github.com/vplay-cli/vplay/plugin/cast"
	"github.com/vplay-cli/vplay/plugin/history"
	luaplugin "github.com/vplay-cli/vplay/plugin/lua"
	"github.com/vplay-cli/vplay/plugin/skip"
)

// Descriptors returns the compiled-in plugins. Cast is only offered when a remote is given.
func Descriptors(remote cast.Context) []*plugin.Descriptor {
	descriptors := []*plugin.Descriptor{
		history.Descriptor(),
		skip.Descriptor(),
	}
	if remote != nil {
		descriptors = append(descriptors, cast.Descriptor(remote))
	}
	return descriptors
}

// Registry returns the compiled-in plugins plus every Lua plugin found on disk. A Lua
// plugin cannot shadow a compiled-in one.
func Registry(remote cast.Context) (*plugin.Registry, error) {
	registry, err := plugin.NewRegistry(Descriptors(remote)...)
	if err != nil {
		return nil, err
	}

	scripts, err := luaplugin.LoadAll()
	if err != nil {
		log.Warnf("plugins: reading lua plugins: %v", err)
		return registry, nil
	}

	for _, d := range scripts {
		if err := registry.Register(d); err != nil {
			log.Warnf("plugins: %v", err)
		}
	}
	return registry, nil
}
