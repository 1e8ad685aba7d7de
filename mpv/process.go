package mpv

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vplay-cli/vplay/constant"
	"github.com/vplay-cli/vplay/log"
)

// IINACLI is the executable name that switches argument building to IINA's syntax.
const IINACLI = "iina-cli"

const quitTimeout = 3 * time.Second

// Launch describes how a media target is opened.
type Launch struct {
	Title     string
	Headers   map[string]string
	Subtitles []string
	// Start is the initial position in seconds.
	Start float64
}

// Session is a running mpv instance reachable over IPC.
type Session struct {
	*Conn
	exited <-chan struct{}
	close  func() error
	once   sync.Once
	err    error
}

// NewSession wraps an established connection. close releases whatever runs behind it.
func NewSession(conn *Conn, exited <-chan struct{}, close func() error) *Session {
	return &Session{Conn: conn, exited: exited, close: close}
}

// Exited is closed once the player process is gone.
func (s *Session) Exited() <-chan struct{} { return s.exited }

// Close quits the player. It is safe to call more than once.
func (s *Session) Close() error {
	s.once.Do(func() { s.err = s.close() })
	return s.err
}

// Start spawns the executable at path on target and connects to its IPC socket. The
// player starts paused; playback is driven over IPC.
func Start(ctx context.Context, path, target string, l Launch) (*Session, error) {
	safe, err := sanitizeMediaTarget(target)
	if err != nil {
		return nil, fmt.Errorf("invalid media target: %w", err)
	}

	socket := filepath.Join(os.TempDir(), fmt.Sprintf("%s-%s.sock", constant.Vplay, uuid.NewString()))
	cmd := exec.Command(path, Args(path, socket, safe, l)...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", filepath.Base(path), err)
	}
	log.Infof("mpv: started pid %d on %s", cmd.Process.Pid, socket)

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	conn, err := Dial(ctx, socket, exited)
	if err != nil {
		select {
		case <-exited:
		default:
			log.Warnf("mpv: killing pid %d, socket never became ready", cmd.Process.Pid)
			_ = killProcess(cmd)
		}
		_ = os.Remove(socket)
		return nil, err
	}

	return NewSession(conn, exited, func() error {
		qctx, cancel := context.WithTimeout(context.Background(), quitTimeout)
		_, _ = conn.Command(qctx, "quit")
		cancel()

		select {
		case <-exited:
		case <-time.After(quitTimeout):
			_ = killProcess(cmd)
		}
		_ = conn.Close()
		return os.Remove(socket)
	}), nil
}

// Args builds the command line. Only the socket, title, headers, subtitles and start
// position are passed so the user's own mpv configuration stays in effect. IINA takes
// the same options behind an --mpv- prefix.
func Args(path, socket, target string, l Launch) []string {
	opts := []string{
		"input-ipc-server=" + socket,
		"idle=yes",
		"keep-open=yes",
		"pause=yes",
		"force-window=yes",
	}

	if title := sanitizeTitle(l.Title); title != "" {
		opts = append(opts, "force-media-title="+title)
	}
	if h := headerFields(l.Headers); h != "" {
		opts = append(opts, "http-header-fields="+h)
	}
	for _, sub := range l.Subtitles {
		opts = append(opts, "sub-file="+sub)
	}
	if l.Start > 0 {
		opts = append(opts, fmt.Sprintf("start=%g", l.Start))
	}

	var args []string
	if filepath.Base(path) == IINACLI {
		args = append(args, "--keep-running")
		for _, o := range opts {
			args = append(args, "--mpv-"+o)
		}
	} else {
		args = append(args, "--no-terminal", "--really-quiet")
		for _, o := range opts {
			args = append(args, "--"+o)
		}
	}
	return append(args, target)
}

func headerFields(headers map[string]string) string {
	names := make([]string, 0, len(headers))
	for k := range headers {
		names = append(names, k)
	}
	sort.Strings(names)

	fields := make([]string, 0, len(names))
	for _, k := range names {
		fields = append(fields, fmt.Sprintf("%s: %s", k, strings.ReplaceAll(headers[k], ",", "%2C")))
	}
	return strings.Join(fields, ",")
}

// sanitizeMediaTarget rejects targets that mpv would read as flags and URLs with
// schemes it should not open.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}
	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-'")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
