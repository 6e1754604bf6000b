// Package update checks GitHub for newer minazuki releases.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/pthm/minazuki/internal/version"
)

const (
	githubAPIURL = "https://api.github.com/repos/pthm/minazuki/releases/latest"
	cacheTTL     = 24 * time.Hour
	cacheFile    = "update-check.json"
)

// Info contains update check results
type Info struct {
	LatestVersion   string    `json:"latest_version"`
	CurrentVersion  string    `json:"current_version"`
	ReleaseURL      string    `json:"release_url,omitempty"`
	CheckedAt       time.Time `json:"checked_at"`
	UpdateAvailable bool      `json:"update_available"`
}

// githubRelease represents the GitHub API response
type githubRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Checker fetches the latest release and caches the answer on disk.
// The zero value is not usable; use NewChecker.
type Checker struct {
	URL      string
	Client   *http.Client
	CacheDir string // empty disables the cache
	TTL      time.Duration
	Current  string

	now func() time.Time
}

// NewChecker returns a Checker for the public release feed, caching
// under the user cache directory.
func NewChecker() *Checker {
	dir, err := cacheDir()
	if err != nil {
		dir = ""
	}
	return &Checker{
		URL:      githubAPIURL,
		Client:   &http.Client{Timeout: 5 * time.Second},
		CacheDir: dir,
		TTL:      cacheTTL,
		Current:  version.Short(),
		now:      time.Now,
	}
}

// CheckWithCache checks for updates using cache when available
func CheckWithCache(ctx context.Context) (*Info, error) {
	return NewChecker().Check(ctx)
}

// Check returns the cached result while it is fresh and queries the
// release feed otherwise.
func (c *Checker) Check(ctx context.Context) (*Info, error) {
	if info, err := c.loadCache(); err == nil && c.now().Sub(info.CheckedAt) < c.TTL {
		info.CurrentVersion = c.Current
		info.UpdateAvailable = compareVersions(info.CurrentVersion, info.LatestVersion) < 0
		return info, nil
	}

	info, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	// Save to cache (ignore errors)
	_ = c.saveCache(info)

	return info, nil
}

func (c *Checker) fetch(ctx context.Context) (*Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "minazuki/"+c.Current)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	return &Info{
		LatestVersion:   latest,
		CurrentVersion:  c.Current,
		ReleaseURL:      release.HTMLURL,
		CheckedAt:       c.now(),
		UpdateAvailable: compareVersions(c.Current, latest) < 0,
	}, nil
}

// cacheDir returns the cache directory path
func cacheDir() (string, error) {
	// Use XDG_CACHE_HOME if set, otherwise ~/.cache
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		cacheHome = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheHome, "minazuki"), nil
}

func (c *Checker) loadCache() (*Info, error) {
	if c.CacheDir == "" {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(filepath.Join(c.CacheDir, cacheFile))
	if err != nil {
		return nil, err
	}

	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Checker) saveCache(info *Info) error {
	if c.CacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(c.CacheDir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.CacheDir, cacheFile), data, 0o644)
}

// compareVersions compares two semver strings, with or without a leading
// "v". Returns -1 if a < b, 0 if a == b, 1 if a > b. "dev" sorts after
// every release.
func compareVersions(a, b string) int {
	switch {
	case a == "dev" && b == "dev":
		return 0
	case a == "dev":
		return 1
	case b == "dev":
		return -1
	}
	return semver.Compare(canonical(a), canonical(b))
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
