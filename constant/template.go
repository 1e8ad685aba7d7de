package constant

// Lua plugin hooks and fields looked up on every plugin script.
const (
	PluginProvidersField   = "providers"
	PluginTypesField       = "types"
	PluginDescriptionField = "description"
	PluginInitFn           = "init"
	PluginOnReadyFn        = "on_ready"
	PluginDestroyFn        = "destroy"
)

// PluginTemplate is a Go text/template for scaffolding new Lua plugin files.
const PluginTemplate = `{{ $divider := repeat "-" (plus (max (len .Name) (len .Author) 3) 12) }}{{ $divider }}
-- @name    {{ .Name }}
-- @author  {{ .Author }}
-- @license MIT
{{ $divider }}


----- IMPORTS -----
local player = require("player")
--- END IMPORTS ---



----- VARIABLES -----
-- Empty lists match every provider and media type.
{{ .ProvidersField }} = {}
{{ .TypesField }} = {}
{{ .DescriptionField }} = "{{ .Name }} plugin"
--- END VARIABLES ---



----- MAIN -----

--- Called once after the player is ready.
-- @param options table Options passed to the plugin
function {{ .InitFn }}(options)
end


--- Called after init, when the player is ready to accept commands.
function {{ .OnReadyFn }}()
	player.on("ended", function()
	end)
end


--- Called when the player is destroyed.
function {{ .DestroyFn }}()
end

--- END MAIN ---

-- ex: ts=4 sw=4 et filetype=lua
`
