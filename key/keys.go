// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 23

// Playback defaults - these keys seed the PlayerOptions of every session started from the CLI.
const (
	PlayerProvider    = "player.provider"
	PlayerAutoplay    = "player.autoplay"
	PlayerMuted       = "player.muted"
	PlayerLoop        = "player.loop"
	PlayerPlaysinline = "player.playsinline"
	PlayerPlugins     = "player.plugins"
	PlayerSeekStep    = "player.seek_step"
	PlayerVolumeStep  = "player.volume_step"
)

// Remote SDK scripts - these keys locate the embed provider SDKs and govern how they are fetched.
const (
	SDKYouTubeURL     = "sdk.youtube_url"
	SDKVimeoURL       = "sdk.vimeo_url"
	SDKDailymotionURL = "sdk.dailymotion_url"
	SDKTimeout        = "sdk.timeout"
	SDKCache          = "sdk.cache"
)

// History Tracking - these keys configure the persistence of resume positions.
const (
	HistorySave            = "history.save"
	HistoryResume          = "history.resume"
	HistoryResumeThreshold = "history.resume_threshold"
)

// Backend
const (
	MpvPath = "mpv.path"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
