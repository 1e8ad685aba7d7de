package html5

import "errors"

var (
	errNotMedia = errors.New("element is not a video or audio node")
	errNoSource = errors.New("element has no source")
	errPlayback = errors.New("media playback failed")
)

// mediaError turns the data of a native error event into the error payload.
func mediaError(data any) error {
	switch v := data.(type) {
	case error:
		return v
	case string:
		if v != "" {
			return errors.New(v)
		}
	}
	return errPlayback
}
