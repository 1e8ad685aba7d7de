package media

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Track describes a text track declared on a media element.
type Track struct {
	Index     int    `json:"index"`
	URL       string `json:"url"`
	Label     string `json:"label"`
	Language  string `json:"language"`
	IsDefault bool   `json:"isDefault"`
}

// Element is the reference to the media node a player is bound to: its tag, id,
// attributes and declared text tracks. Adapters read backend ids from data attributes.
type Element struct {
	Tag    string
	ID     string
	Attrs  map[string]string
	tracks []Track
}

// elementSelector matches the nodes a player can be bound to.
const elementSelector = "video, audio, [data-youtube-id], [data-vimeo-id], [data-dailymotion-id]"

// NewElement builds an element reference without parsing markup.
func NewElement(tag, id string, attrs map[string]string, tracks ...Track) *Element {
	a := maps.Clone(attrs)
	if a == nil {
		a = make(map[string]string)
	}
	if id != "" {
		a["id"] = id
	}
	return &Element{Tag: strings.ToLower(tag), ID: id, Attrs: a, tracks: slices.Clone(tracks)}
}

// ParseElement reads the first playable node out of an HTML fragment.
func ParseElement(fragment string) (*Element, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, &Error{Kind: ErrConfig, Op: "parse element", Err: err}
	}

	sel := doc.Find(elementSelector).First()
	if sel.Length() == 0 {
		return nil, &Error{Kind: ErrConfig, Op: "parse element", Err: fmt.Errorf("no media element found")}
	}

	el := &Element{
		Tag:   goquery.NodeName(sel),
		Attrs: make(map[string]string),
	}
	for _, attr := range sel.Nodes[0].Attr {
		el.Attrs[attr.Key] = attr.Val
	}
	el.ID = el.Attrs["id"]

	if _, ok := el.Attrs["src"]; !ok {
		if src, ok := sel.Find("source[src]").First().Attr("src"); ok {
			el.Attrs["src"] = src
		}
	}

	sel.Find("track").Each(func(i int, s *goquery.Selection) {
		_, isDefault := s.Attr("default")
		el.tracks = append(el.tracks, Track{
			Index:     i,
			URL:       s.AttrOr("src", ""),
			Label:     s.AttrOr("label", ""),
			Language:  s.AttrOr("srclang", ""),
			IsDefault: isDefault,
		})
	})

	return el, nil
}

// Attr returns the attribute value, or "" when absent.
func (e *Element) Attr(name string) string {
	return e.Attrs[name]
}

// HasAttr reports whether a boolean attribute such as "loop" is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attrs[name]
	return ok
}

// Src is the media source of a native element.
func (e *Element) Src() string {
	return e.Attrs["src"]
}

// DataID returns the backend media id stored in data-<kind>-id.
func (e *Element) DataID(kind Kind) string {
	return e.Attrs["data-"+string(kind)+"-id"]
}

// Type reports whether the element plays audio or video.
func (e *Element) Type() Type {
	if e.Tag == "audio" {
		return Audio
	}
	return Video
}

// TextTracks returns a copy of the text tracks declared on the element.
func (e *Element) TextTracks() []Track {
	return slices.Clone(e.tracks)
}

// SetTextTracks replaces the declared text tracks.
func (e *Element) SetTextTracks(tracks []Track) {
	e.tracks = slices.Clone(tracks)
}
