package cast

import "context"

// SessionState is a transition of the remote session.
type SessionState int

const (
	SessionStarted SessionState = iota
	SessionResumed
	SessionEnded
)

func (s SessionState) String() string {
	switch s {
	case SessionStarted:
		return "started"
	case SessionResumed:
		return "resumed"
	case SessionEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Context is the sender side of a cast device: it opens sessions and reports their
// transitions. Handlers may be called from any goroutine.
type Context interface {
	OnSessionStateChanged(fn func(SessionState)) (off func())
	RequestSession(ctx context.Context) error
	EndCurrentSession(ctx context.Context, stopCasting bool) error
	// CurrentSession returns nil when no session is open.
	CurrentSession() Session
}

// Session is an open connection to a remote receiver.
type Session interface {
	DeviceName() string
	LoadMedia(ctx context.Context, req LoadRequest) error
	PlayOrPause(ctx context.Context) error
	SetVolume(ctx context.Context, level float64) error
	EditTracks(ctx context.Context, active []int) error
}

const (
	TrackTypeText     = "TEXT"
	TrackSubtitles    = "SUBTITLES"
	TrackContentType  = "text/vtt"
	VideoContentType  = "video/mp4"
	DefaultDeviceName = "Chromecast"
)

// Track is a text track offered to the receiver.
type Track struct {
	ID          int    `json:"trackId"`
	Type        string `json:"type"`
	ContentID   string `json:"trackContentId"`
	ContentType string `json:"trackContentType"`
	Subtype     string `json:"subtype"`
	Name        string `json:"name"`
	Language    string `json:"language"`
}

// Image is an artwork reference in media metadata.
type Image struct {
	URL string `json:"url"`
}

// MediaInfo describes what the receiver plays.
type MediaInfo struct {
	ContentID      string         `json:"contentId"`
	ContentType    string         `json:"contentType"`
	Tracks         []Track        `json:"tracks,omitempty"`
	TextTrackStyle map[string]any `json:"textTrackStyle,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// LoadRequest hands the current media over to the receiver.
type LoadRequest struct {
	Media          MediaInfo `json:"media"`
	Autoplay       bool      `json:"autoplay"`
	CurrentTime    float64   `json:"currentTime"`
	ActiveTrackIDs []int     `json:"activeTrackIds,omitempty"`
}

// DefaultTextTrackStyle is the subtitle style used unless overridden.
func DefaultTextTrackStyle() map[string]any {
	return map[string]any{
		"backgroundColor": "#ffffff00",
		"edgeColor":       "#00000016",
		"edgeType":        "DROP_SHADOW",
		"fontFamily":      "CASUAL",
		"fontScale":       1.0,
		"foregroundColor": "#ffffffff",
	}
}
