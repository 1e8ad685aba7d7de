// Package cache provides a filesystem-backed TTL cache for downloaded SDK scripts.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vplay-cli/vplay/filesystem"
	"github.com/vplay-cli/vplay/where"
)

const TTL = 7 * 24 * time.Hour

func dir() string {
	d := where.Scripts()
	_ = filesystem.API().MkdirAll(d, 0755)
	return d
}

// GenerateKey derives a deterministic cache identifier from a URL and a namespace.
func GenerateKey(url, namespace string) string {
	sanitized := strings.ToLower(strings.TrimSpace(url)) + namespace
	hash := sha256.Sum256([]byte(sanitized))
	return hex.EncodeToString(hash[:])
}

// Read decodes a cached object into target if it exists and has not exceeded its TTL.
func Read(key string, target any) bool {
	path := filepath.Join(dir(), key)

	info, err := filesystem.API().Stat(path)
	if err != nil || time.Since(info.ModTime()) > TTL {
		return false
	}

	f, err := filesystem.API().Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(target) == nil
}

// Write persists a serializable object. Concurrent readers see the old entry or the
// new one, never a mix.
func Write(key string, data any) error {
	return filesystem.WriteAtomic(filepath.Join(dir(), key), func(w io.Writer) error {
		return json.NewEncoder(w).Encode(data)
	})
}

// CollectGarbage prunes expired entries in the background.
func CollectGarbage() {
	go func() {
		_ = filesystem.API().Walk(dir(), func(path string, info fs.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			if time.Since(info.ModTime()) > TTL {
				_ = filesystem.API().Remove(path)
			}
			return nil
		})
	}()
}

// Clear removes every cached entry.
func Clear() error {
	err := filesystem.API().RemoveAll(dir())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
