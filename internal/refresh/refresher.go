// Package refresh keeps a dataset store fed: it downloads the ip2asn table,
// builds an index from it and publishes the result, on demand or on a timer.
package refresh

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"iptoasn/internal/app/version"
	"iptoasn/internal/asndb"
)

var (
	// ErrEmptyDataset indicates a payload that decoded fine but produced
	// an index without a single announced range.
	ErrEmptyDataset = errors.New("refresh: dataset contains no announced ranges")

	// ErrUnsupportedScheme indicates a database URL this package cannot
	// fetch from.
	ErrUnsupportedScheme = errors.New("refresh: unsupported database url scheme")
)

var httpClient = &http.Client{Timeout: 5 * time.Minute}

// Refresher loads dataset versions into one Store. All entry points funnel
// through a singleflight group, so overlapping triggers coalesce into one
// refresh cycle.
type Refresher struct {
	store     *asndb.Store
	url       string
	cacheFile string

	group singleflight.Group
}

// New returns a Refresher feeding store from the given database URL and
// keeping a copy of the last good download at cacheFile. An empty cacheFile
// disables persistence.
func New(store *asndb.Store, url, cacheFile string) *Refresher {
	return &Refresher{store: store, url: url, cacheFile: cacheFile}
}

// Refresh runs one full cycle: fetch, decode, publish, persist. Any failure
// before publish leaves the previous dataset version in place. A call made
// while another refresh is in flight waits for that one instead of starting
// its own.
func (r *Refresher) Refresh(ctx context.Context) error {
	_, err, _ := r.group.Do("refresh", func() (interface{}, error) {
		return nil, r.refresh(ctx)
	})
	return err
}

func (r *Refresher) refresh(ctx context.Context) error {
	data, err := r.fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", r.url, err)
	}

	ix, err := Decode(data)
	if err != nil {
		return err
	}

	r.store.Publish(ix)
	st := ix.Stats()
	log.Info("dataset refreshed",
		"records", st.Records,
		"asns", st.ASNs,
		"skipped", st.Skipped,
		"unrouted", st.Unrouted,
		"overlaps", st.Overlaps)

	if r.cacheFile != "" {
		if err := writeFileAtomic(r.cacheFile, data); err != nil {
			log.Warn("failed to persist dataset cache", "file", r.cacheFile, "error", err)
		}
	}
	return nil
}

// Decode turns a gzip-compressed ip2asn TSV payload into a ready Index.
func Decode(data []byte) (*asndb.Index, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}

	records, skipped, err := asndb.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if skipped > 0 {
		log.Warn("skipped malformed dataset lines", "skipped", skipped)
	}

	ix := asndb.Build(records, skipped)
	if ix.Stats().Records == 0 {
		return nil, ErrEmptyDataset
	}
	return ix, nil
}

func (r *Refresher) fetch(ctx context.Context) ([]byte, error) {
	u, err := url.Parse(r.url)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "http", "https":
		return r.fetchHTTP(ctx)
	case "file":
		return os.ReadFile(u.Path)
	case "":
		// A bare filesystem path, handy for local runs.
		return os.ReadFile(r.url)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func (r *Refresher) fetchHTTP(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	return io.ReadAll(resp.Body)
}

// LoadCache decodes and publishes the persisted copy of the last good
// download. The returned error wraps fs.ErrNotExist when there is nothing
// to load.
func (r *Refresher) LoadCache() error {
	if r.cacheFile == "" {
		return fmt.Errorf("no cache file configured: %w", os.ErrNotExist)
	}

	data, err := os.ReadFile(r.cacheFile)
	if err != nil {
		return err
	}

	ix, err := Decode(data)
	if err != nil {
		return fmt.Errorf("cache %s: %w", r.cacheFile, err)
	}

	r.store.Publish(ix)
	st := ix.Stats()
	log.Info("dataset loaded from cache", "file", r.cacheFile, "records", st.Records, "asns", st.ASNs)
	return nil
}

// Bootstrap performs the initial load: the database URL first, then the
// cache file. When both fail the store stays empty and every query answers
// unannounced until a later refresh succeeds.
func (r *Refresher) Bootstrap(ctx context.Context) {
	err := r.Refresh(ctx)
	if err == nil {
		return
	}
	log.Error("initial dataset refresh failed", "url", r.url, "error", err)

	cacheErr := r.LoadCache()
	if cacheErr == nil {
		return
	}
	if !errors.Is(cacheErr, os.ErrNotExist) {
		log.Error("dataset cache load failed", "file", r.cacheFile, "error", cacheErr)
	}
	log.Warn("serving empty dataset until a refresh succeeds")
}

// Run bootstraps the store and then refreshes every interval until ctx is
// cancelled. interval <= 0 keeps the initial load but disables the loop.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) error {
	r.Bootstrap(ctx)

	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				log.Error("dataset refresh failed", "url", r.url, "error", err)
			}
		}
	}
}

func writeFileAtomic(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "ip2asn-*.tsv.gz")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmpFile.Name())
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write data: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), destPath); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}

	return nil
}
