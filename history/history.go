// Package history persists the playback position of every media source so sessions can resume.
package history

import (
	"fmt"
	"time"

	"github.com/metafates/gache"
	"github.com/vplay-cli/vplay/filesystem"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/where"
)

// Entry is the saved position of one media source.
type Entry struct {
	Key       string     `json:"key"`
	Kind      media.Kind `json:"kind"`
	Position  float64    `json:"position"`
	Duration  float64    `json:"duration"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Percentage returns how much of the media was played, from 0 to 100.
func (e *Entry) Percentage() float64 {
	if e.Duration <= 0 {
		return 0
	}
	return e.Position / e.Duration * 100
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s : %s / %s", e.Key, clock(e.Position), clock(e.Duration))
}

// Key identifies the media an element plays: its source for native media, the
// provider id for embeds.
func Key(kind media.Kind, el *media.Element) string {
	if kind == media.HTML5 {
		return el.Src()
	}
	return string(kind) + ":" + el.DataID(kind)
}

// cacher provides an abstracted, disk-backed registry of saved positions.
var cacher = gache.New[map[string]*Entry](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns every saved entry.
func Get() (map[string]*Entry, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

// Lookup returns the entry saved under key.
func Lookup(key string) (*Entry, bool, error) {
	saved, err := Get()
	if err != nil {
		return nil, false, err
	}
	e, ok := saved[key]
	return e, ok, nil
}

// Save records the position reached on the media identified by key.
func Save(key string, kind media.Kind, position, duration float64) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	saved[key] = &Entry{
		Key:       key,
		Kind:      kind,
		Position:  position,
		Duration:  duration,
		UpdatedAt: time.Now(),
	}
	return cacher.Set(saved)
}

// Remove deletes the entry saved under key.
func Remove(key string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	if _, ok := saved[key]; !ok {
		return nil
	}
	delete(saved, key)
	return cacher.Set(saved)
}

// Clear deletes every entry.
func Clear() error {
	return cacher.Set(make(map[string]*Entry))
}

func clock(seconds float64) string {
	d := time.Duration(seconds) * time.Second
	return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}
