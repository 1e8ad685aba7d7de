package cast

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/vplay-cli/vplay/log"
)

const (
	AVTransportType = "urn:schemas-upnp-org:service:AVTransport:1"
	RenderingType   = "urn:schemas-upnp-org:service:RenderingControl:1"
)

// Device is a UPnP media renderer reachable over SOAP.
type Device struct {
	Name                string
	AVTransportURL      string
	RenderingControlURL string
}

type description struct {
	Device struct {
		FriendlyName string `xml:"friendlyName"`
		Services     []struct {
			Type       string `xml:"serviceType"`
			ControlURL string `xml:"controlURL"`
		} `xml:"serviceList>service"`
	} `xml:"device"`
}

// Discover reads the device description at location and resolves its control URLs.
func Discover(ctx context.Context, client *http.Client, location string) (Device, error) {
	base, err := url.Parse(location)
	if err != nil {
		return Device{}, fmt.Errorf("renderer location: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return Device{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Device{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Device{}, fmt.Errorf("renderer description: %s", resp.Status)
	}

	var desc description
	if err := xml.NewDecoder(resp.Body).Decode(&desc); err != nil {
		return Device{}, fmt.Errorf("renderer description: %w", err)
	}

	dev := Device{Name: desc.Device.FriendlyName}
	for _, s := range desc.Device.Services {
		ref, err := url.Parse(s.ControlURL)
		if err != nil {
			continue
		}
		switch s.Type {
		case AVTransportType:
			dev.AVTransportURL = base.ResolveReference(ref).String()
		case RenderingType:
			dev.RenderingControlURL = base.ResolveReference(ref).String()
		}
	}
	if dev.AVTransportURL == "" {
		return Device{}, fmt.Errorf("renderer %q has no AVTransport service", dev.Name)
	}
	return dev, nil
}

// Renderer casts to a UPnP media renderer. It implements Context.
type Renderer struct {
	device Device
	client *http.Client

	mu       sync.Mutex
	session  *rendererSession
	handlers map[int]func(SessionState)
	next     int
}

var _ Context = (*Renderer)(nil)

func NewRenderer(device Device, client *http.Client) *Renderer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Renderer{device: device, client: client, handlers: make(map[int]func(SessionState))}
}

func (r *Renderer) OnSessionStateChanged(fn func(SessionState)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.next
	r.next++
	r.handlers[id] = fn
	return func() {
		r.mu.Lock()
		delete(r.handlers, id)
		r.mu.Unlock()
	}
}

// RequestSession opens a session unless one is already open.
func (r *Renderer) RequestSession(context.Context) error {
	r.mu.Lock()
	if r.session != nil {
		r.mu.Unlock()
		return nil
	}
	r.session = &rendererSession{renderer: r}
	r.mu.Unlock()

	log.Infof("cast: session opened on %s", r.device.Name)
	r.notify(SessionStarted)
	return nil
}

// EndCurrentSession closes the open session. The receiver is stopped when stopCasting is set.
func (r *Renderer) EndCurrentSession(ctx context.Context, stopCasting bool) error {
	r.mu.Lock()
	s := r.session
	r.session = nil
	r.mu.Unlock()

	if s == nil {
		return nil
	}

	var err error
	if stopCasting {
		err = r.call(ctx, r.device.AVTransportURL, AVTransportType, "Stop", "")
	}
	r.notify(SessionEnded)
	return err
}

func (r *Renderer) CurrentSession() Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return nil
	}
	return r.session
}

func (r *Renderer) notify(state SessionState) {
	r.mu.Lock()
	handlers := make([]func(SessionState), 0, len(r.handlers))
	for i := 0; i < r.next; i++ {
		if fn, ok := r.handlers[i]; ok {
			handlers = append(handlers, fn)
		}
	}
	r.mu.Unlock()

	for _, fn := range handlers {
		fn(state)
	}
}

func (r *Renderer) call(ctx context.Context, endpoint, service, action, args string) error {
	if endpoint == "" {
		return fmt.Errorf("%s: renderer has no control URL for %s", action, service)
	}

	env := fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">
  <s:Body>
    <u:%s xmlns:u="%s"><InstanceID>0</InstanceID>%s</u:%s>
  </s:Body>
</s:Envelope>`, action, service, args, action)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(env))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPACTION", fmt.Sprintf(`"%s#%s"`, service, action))

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if code := xmlText(body, "errorCode"); code != "" {
			return fmt.Errorf("%s: upnp error %s: %s", action, code, xmlText(body, "errorDescription"))
		}
		return fmt.Errorf("%s: %s", action, resp.Status)
	}
	return nil
}

type rendererSession struct {
	renderer *Renderer

	mu      sync.Mutex
	playing bool
}

func (s *rendererSession) DeviceName() string { return s.renderer.device.Name }

// LoadMedia sets the transport URI, seeks to the current time and starts playback when
// requested. Text tracks travel in the DIDL-Lite metadata.
func (s *rendererSession) LoadMedia(ctx context.Context, req LoadRequest) error {
	r := s.renderer
	args := fmt.Sprintf("<CurrentURI>%s</CurrentURI><CurrentURIMetaData>%s</CurrentURIMetaData>",
		html.EscapeString(req.Media.ContentID), html.EscapeString(didl(req)))
	if err := r.call(ctx, r.device.AVTransportURL, AVTransportType, "SetAVTransportURI", args); err != nil {
		return err
	}

	if req.CurrentTime > 0 {
		seek := fmt.Sprintf("<Unit>REL_TIME</Unit><Target>%s</Target>", clock(req.CurrentTime))
		if err := r.call(ctx, r.device.AVTransportURL, AVTransportType, "Seek", seek); err != nil {
			log.Warnf("cast: renderer refused seek: %v", err)
		}
	}

	if !req.Autoplay {
		return nil
	}
	return s.PlayOrPause(ctx)
}

// PlayOrPause toggles the receiver between playing and paused.
func (s *rendererSession) PlayOrPause(ctx context.Context) error {
	s.mu.Lock()
	playing := s.playing
	s.mu.Unlock()

	r := s.renderer
	var err error
	if playing {
		err = r.call(ctx, r.device.AVTransportURL, AVTransportType, "Pause", "")
	} else {
		err = r.call(ctx, r.device.AVTransportURL, AVTransportType, "Play", "<Speed>1</Speed>")
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.playing = !playing
	s.mu.Unlock()
	return nil
}

// SetVolume maps level in [0,1] onto the renderer's 0..100 scale.
func (s *rendererSession) SetVolume(ctx context.Context, level float64) error {
	v := int(level*100 + 0.5)
	v = max(0, min(100, v))

	r := s.renderer
	args := fmt.Sprintf("<Channel>Master</Channel><DesiredVolume>%d</DesiredVolume>", v)
	return r.call(ctx, r.device.RenderingControlURL, RenderingType, "SetVolume", args)
}

// EditTracks is not part of AVTransport; renderers pick subtitles from the metadata.
func (s *rendererSession) EditTracks(_ context.Context, active []int) error {
	log.Debugf("cast: renderer cannot switch tracks, ignoring %v", active)
	return nil
}

func didl(req LoadRequest) string {
	title, _ := req.Media.Metadata["title"].(string)
	if title == "" {
		title = req.Media.ContentID
	}

	var b strings.Builder
	b.WriteString(`<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/" xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:sec="http://www.sec.co.kr/">`)
	b.WriteString(`<item id="0" parentID="-1" restricted="1">`)
	fmt.Fprintf(&b, "<dc:title>%s</dc:title>", html.EscapeString(title))
	b.WriteString("<upnp:class>object.item.videoItem</upnp:class>")
	if images, ok := req.Media.Metadata["images"].([]Image); ok && len(images) > 0 {
		fmt.Fprintf(&b, "<upnp:albumArtURI>%s</upnp:albumArtURI>", html.EscapeString(images[0].URL))
	}
	fmt.Fprintf(&b, `<res protocolInfo="http-get:*:%s:*">%s</res>`, req.Media.ContentType, html.EscapeString(req.Media.ContentID))
	for _, id := range req.ActiveTrackIDs {
		if id < 0 || id >= len(req.Media.Tracks) {
			continue
		}
		t := req.Media.Tracks[id]
		fmt.Fprintf(&b, `<sec:CaptionInfoEx sec:type="%s">%s</sec:CaptionInfoEx>`, trackExt(t.ContentID), html.EscapeString(t.ContentID))
	}
	b.WriteString("</item></DIDL-Lite>")
	return b.String()
}

func trackExt(u string) string {
	if parsed, err := url.Parse(u); err == nil {
		if ext := strings.TrimPrefix(path.Ext(parsed.Path), "."); ext != "" {
			return strings.ToLower(ext)
		}
	}
	return "vtt"
}

func clock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}

func xmlText(b []byte, tag string) string {
	s := string(b)
	open, end := "<"+tag+">", "</"+tag+">"
	i := strings.Index(s, open)
	if i < 0 {
		return ""
	}
	i += len(open)
	j := strings.Index(s[i:], end)
	if j < 0 {
		return ""
	}
	return strings.TrimSpace(s[i : i+j])
}
