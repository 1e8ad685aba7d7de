// Package util collects small helpers shared by the command line and the player view.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/term"
)

var (
	unsafeRunes = regexp.MustCompile(`[\\/<>:;"'|?!*{}#%&^+,~\s]+`)
	underscores = regexp.MustCompile(`_{2,}`)
	edges       = regexp.MustCompile(`^[_\-.]+|[_\-.]+$`)
)

// SanitizeFilename turns a user supplied name, such as a plugin name, into a file name
// that is valid on every platform.
func SanitizeFilename(name string) string {
	name = unsafeRunes.ReplaceAllString(name, "_")
	name = underscores.ReplaceAllString(name, "_")
	return edges.ReplaceAllString(name, "")
}

// FileStem is the base name of path without its extension.
func FileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReGroups returns the named groups pattern captured in s. It is empty when nothing
// matched.
func ReGroups(pattern *regexp.Regexp, s string) map[string]string {
	match := pattern.FindStringSubmatch(s)
	groups := make(map[string]string, len(match))
	for i, name := range pattern.SubexpNames() {
		if name != "" && i < len(match) {
			groups[name] = match[i]
		}
	}
	return groups
}

func TerminalSize() (width, height int, err error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// PrintErasable prints msg on the current line and returns a func blanking it again.
func PrintErasable(msg string) (erase func()) {
	_, _ = fmt.Fprint(os.Stdout, "\r"+msg)
	return func() {
		_, _ = fmt.Fprint(os.Stdout, "\r"+strings.Repeat(" ", len(msg))+"\r")
	}
}

// Ignore drops the error of a deferred close.
func Ignore(f func() error) {
	_ = f()
}

// Max is the largest of items, or the zero value when there are none.
func Max[T constraints.Ordered](items ...T) (max T) {
	for i, item := range items {
		if i == 0 || item > max {
			max = item
		}
	}
	return max
}
