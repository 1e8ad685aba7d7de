package provider

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/util"
)

var (
	youtubePattern     = regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.|music\.)?(?:youtube\.com/(?:watch\?(?:.*&)?v=|embed/|shorts/|live/)|youtu\.be/)(?P<id>[A-Za-z0-9_-]{11})`)
	vimeoPattern       = regexp.MustCompile(`^(?:https?://)?(?:www\.|player\.)?vimeo\.com/(?:video/)?(?P<id>\d+)`)
	dailymotionPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:dailymotion\.com/(?:embed/)?video/|dai\.ly/)(?P<id>[A-Za-z0-9]+)`)
	audioExtensions    = []string{".mp3", ".m4a", ".aac", ".flac", ".ogg", ".oga", ".opus", ".wav"}
)

// Embed returns the element an embed adapter of kind reads its media id from.
func Embed(kind media.Kind, id string) *media.Element {
	return media.NewElement("div", string(kind)+"-"+id, map[string]string{
		"data-" + string(kind) + "-id": id,
	})
}

// Detect maps a source URL or path onto a provider kind and a media element that
// carries what the kind's adapter reads. The short form "<kind>:<id>" names an embed
// directly. Anything unrecognized plays natively.
func Detect(source string) (media.Kind, *media.Element) {
	source = strings.TrimSpace(source)

	if name, id, ok := strings.Cut(source, ":"); ok && id != "" && !strings.HasPrefix(id, "//") {
		if kind, err := media.ParseKind(name); err == nil && kind != media.HTML5 {
			return kind, Embed(kind, id)
		}
	}

	for _, c := range []struct {
		kind    media.Kind
		pattern *regexp.Regexp
	}{
		{media.YouTube, youtubePattern},
		{media.Vimeo, vimeoPattern},
		{media.Dailymotion, dailymotionPattern},
	} {
		if id := util.ReGroups(c.pattern, source)["id"]; id != "" {
			return c.kind, Embed(c.kind, id)
		}
	}

	tag := "video"
	ext := strings.ToLower(path.Ext(source))
	if u, err := url.Parse(source); err == nil && u.Path != "" {
		ext = strings.ToLower(path.Ext(u.Path))
	}
	for _, a := range audioExtensions {
		if ext == a {
			tag = "audio"
			break
		}
	}

	return media.HTML5, media.NewElement(tag, "player", map[string]string{"src": source})
}
