// Package remote downloads prebuilt Parquet data from GitHub Releases, so
// users without an API key still get fresh tables.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"

	"github.com/everstacklabs/modelfuse/internal/schema"
)

// DefaultTag is the release tag carrying the latest data drop.
const DefaultTag = "data/latest"

// freshness window for downloaded data before re-fetching.
const dataTTL = 24 * time.Hour

// Manifest describes one data release.
type Manifest struct {
	GeneratedAt string              `json:"generated_at"`
	Version     string              `json:"version"`
	Files       map[string]FileInfo `json:"files"`
}

// FileInfo describes one asset in the manifest.
type FileInfo struct {
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

type meta struct {
	FetchedAt time.Time `json:"fetched_at"`
}

// Client fetches release assets into the cache directory.
type Client struct {
	gh       *github.Client
	owner    string
	repo     string
	tag      string
	cacheDir string
}

// New creates a remote data client. Token may be empty; unauthenticated
// requests work but hit lower GitHub rate limits.
func New(ctx context.Context, owner, repo, tag, token, cacheDir string) *Client {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(ctx, ts)
	}
	if tag == "" {
		tag = DefaultTag
	}
	return &Client{
		gh:       github.NewClient(hc),
		owner:    owner,
		repo:     repo,
		tag:      tag,
		cacheDir: cacheDir,
	}
}

// Fresh reports whether a previous download is still within the TTL.
func (c *Client) Fresh() bool {
	data, err := os.ReadFile(filepath.Join(c.cacheDir, "remote_meta.json"))
	if err != nil {
		return false
	}
	var m meta
	if err := json.Unmarshal(data, &m); err != nil {
		return false
	}
	return time.Since(m.FetchedAt) < dataTTL
}

// FetchAll downloads the manifest and every table asset listed in it.
// Already-fresh data is kept unless force is set.
func (c *Client) FetchAll(ctx context.Context, force bool) error {
	if !force && c.Fresh() && c.haveAllTables() {
		slog.Info("hosted data fresh, skipping download")
		return nil
	}

	release, _, err := c.gh.Repositories.GetReleaseByTag(ctx, c.owner, c.repo, c.tag)
	if err != nil {
		return fmt.Errorf("locating data release %s: %w", c.tag, err)
	}

	assets := make(map[string]*github.ReleaseAsset, len(release.Assets))
	for _, a := range release.Assets {
		assets[a.GetName()] = a
	}

	manifest, err := c.fetchManifest(ctx, assets)
	if err != nil {
		return err
	}

	for _, t := range schema.All {
		asset, ok := assets[t.ParquetFile]
		if !ok {
			if t.Optional {
				slog.Debug("release has no asset for optional table", "file", t.ParquetFile)
			} else {
				slog.Warn("release missing table asset", "file", t.ParquetFile)
			}
			continue
		}
		if _, listed := manifest.Files[t.ParquetFile]; !listed {
			slog.Warn("asset not listed in manifest", "file", t.ParquetFile)
			continue
		}
		if err := c.downloadAsset(ctx, asset, filepath.Join(c.cacheDir, t.ParquetFile)); err != nil {
			return fmt.Errorf("downloading %s: %w", t.ParquetFile, err)
		}
		slog.Info("table downloaded", "file", t.ParquetFile, "size", asset.GetSize())
	}

	return c.writeMeta()
}

func (c *Client) fetchManifest(ctx context.Context, assets map[string]*github.ReleaseAsset) (*Manifest, error) {
	asset, ok := assets["manifest.json"]
	if !ok {
		return nil, fmt.Errorf("data release %s has no manifest.json", c.tag)
	}

	rc, _, err := c.gh.Repositories.DownloadReleaseAsset(ctx, c.owner, c.repo, asset.GetID(), http.DefaultClient)
	if err != nil {
		return nil, fmt.Errorf("downloading manifest: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	// Keep a local copy for `cache stats` and debugging.
	if err := os.WriteFile(filepath.Join(c.cacheDir, "manifest.json"), data, 0o644); err != nil {
		slog.Warn("failed to save manifest locally", "error", err)
	}

	return &manifest, nil
}

func (c *Client) downloadAsset(ctx context.Context, asset *github.ReleaseAsset, dest string) error {
	rc, _, err := c.gh.Repositories.DownloadReleaseAsset(ctx, c.owner, c.repo, asset.GetID(), http.DefaultClient)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *Client) haveAllTables() bool {
	for _, t := range schema.All {
		if t.Optional {
			continue
		}
		if _, err := os.Stat(filepath.Join(c.cacheDir, t.ParquetFile)); err != nil {
			return false
		}
	}
	return true
}

func (c *Client) writeMeta() error {
	data, err := json.Marshal(meta{FetchedAt: time.Now()})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.cacheDir, "remote_meta.json"), data, 0o644)
}
