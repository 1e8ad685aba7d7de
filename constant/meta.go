// Package constant holds identifiers fixed at build time.
package constant

import _ "embed"

const (
	Vplay   = "vplay"
	Version = "0.1.0"

	// UserAgent is sent by the shared HTTP clients.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Repository publishes the releases the version check compares against.
	Repository = "https://github.com/vplay-cli/vplay"
)

// Build metadata, set with -ldflags at release time.
var (
	BuiltAt  string
	BuiltBy  string
	Revision string
)

// Values of runtime.GOOS that open and check switch on.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
	Android = "android"
)

//go:embed ascii.txt
var AsciiArtLogo string
