// Package version checks the release feed for a newer vplay.
package version

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/metafates/gache"
	"github.com/vplay-cli/vplay/filesystem"
	"github.com/vplay-cli/vplay/network"
	"github.com/vplay-cli/vplay/util"
	"github.com/vplay-cli/vplay/where"
)

const releasesURL = "https://api.github.com/repos/vplay-cli/vplay/releases/latest"

var latestCache = gache.New[string](&gache.Options{
	Path:       filepath.Join(where.Cache(), "version.json"),
	Lifetime:   48 * time.Hour,
	FileSystem: &filesystem.GacheFs{},
})

// Latest returns the newest released version without its v prefix. The answer is
// cached for two days to stay clear of the API rate limit.
func Latest() (string, error) {
	cached, expired, err := latestCache.Get()
	if err != nil {
		return "", err
	}
	if !expired && cached != "" {
		return cached, nil
	}

	req, err := http.NewRequest(http.MethodGet, releasesURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := network.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release feed: %s", resp.Status)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}
	if release.TagName == "" {
		return "", errors.New("release without a tag")
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	_ = latestCache.Set(latest)
	return latest, nil
}

// Newer reports whether release is a later version than current. Missing minor or
// patch numbers count as zero and pre-release suffixes are ignored.
func Newer(release, current string) (bool, error) {
	a, err := parse(release)
	if err != nil {
		return false, err
	}
	b, err := parse(current)
	if err != nil {
		return false, err
	}

	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i], nil
		}
	}
	return false, nil
}

func parse(s string) ([3]int, error) {
	var v [3]int

	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	s, _, _ = strings.Cut(s, "-")
	s, _, _ = strings.Cut(s, "+")

	parts := strings.Split(s, ".")
	if len(parts) > len(v) {
		return v, fmt.Errorf("malformed version %q", s)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return v, fmt.Errorf("malformed version %q", s)
		}
		v[i] = n
	}
	return v, nil
}
