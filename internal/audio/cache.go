package audio

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// IsolationCache reuses separated melodic stems across runs. Separation is
// by far the slowest stage, and the same recording is often transcribed
// more than once (different instruments, different tempi), so cache hits
// skip it entirely. Entries are keyed by the input file's content hash plus
// the isolation mode, and invalidated when separate.py changes.
type IsolationCache struct {
	dir     string
	version string
}

// NewIsolationCache opens the cache in the repository's .cache directory,
// versioned against the separation script in scriptsDir.
func NewIsolationCache(scriptsDir string) (*IsolationCache, error) {
	return OpenIsolationCache(defaultCacheDir(), scriptsDir)
}

// OpenIsolationCache opens a cache rooted at dir.
func OpenIsolationCache(dir, scriptsDir string) (*IsolationCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &IsolationCache{dir: dir, version: scriptVersion(scriptsDir)}, nil
}

// CacheKey derives the cache key for an input file under a given isolation
// mode. Content-hashed, so the same audio under a different filename still
// hits.
func CacheKey(path string, mode IsolationMode) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("hash input: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil))[:16] + "_" + string(mode), nil
}

// Get returns the cached melodic stem path for the key, if present and
// written by the current separation script.
func (c *IsolationCache) Get(key string) (string, bool) {
	entryDir := filepath.Join(c.dir, key)

	versionData, err := os.ReadFile(filepath.Join(entryDir, ".version"))
	if err != nil || strings.TrimSpace(string(versionData)) != c.version {
		return "", false
	}

	melodic := filepath.Join(entryDir, "melodic.wav")
	info, err := os.Stat(melodic)
	if err != nil || info.IsDir() {
		return "", false
	}
	return melodic, true
}

// Put copies a freshly separated melodic stem into the cache and returns
// the cached path.
func (c *IsolationCache) Put(key, melodicPath string) (string, error) {
	entryDir := filepath.Join(c.dir, key)
	if err := os.MkdirAll(entryDir, 0755); err != nil {
		return "", fmt.Errorf("create cache entry: %w", err)
	}

	dst := filepath.Join(entryDir, "melodic.wav")
	if err := copyFile(melodicPath, dst); err != nil {
		return "", fmt.Errorf("cache melodic stem: %w", err)
	}

	if err := os.WriteFile(filepath.Join(entryDir, ".version"), []byte(c.version), 0644); err != nil {
		return "", fmt.Errorf("write cache version: %w", err)
	}
	return dst, nil
}

// Clear removes every cached stem.
func (c *IsolationCache) Clear() error {
	return os.RemoveAll(c.dir)
}

// scriptVersion hashes the separation script so edits to it invalidate old
// entries. A missing script hashes its name, which still yields a stable
// version.
func scriptVersion(scriptsDir string) string {
	hasher := sha256.New()
	scriptPath := filepath.Join(scriptsDir, "separate.py")
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		hasher.Write([]byte("separate.py"))
	} else {
		hasher.Write(data)
	}
	return hex.EncodeToString(hasher.Sum(nil))[:12]
}

// defaultCacheDir walks up from the working directory to the repository
// root (marked by go.mod) and places the cache under it.
func defaultCacheDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return filepath.Join(".cache", "melodic")
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, ".cache", "melodic")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			cwd, _ := os.Getwd()
			return filepath.Join(cwd, ".cache", "melodic")
		}
		dir = parent
	}
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
