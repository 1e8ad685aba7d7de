package player

import "errors"

var (
	errVolumeRange = errors.New("volume must be between 0 and 1")
	errAborted     = errors.New("aborted")
)
