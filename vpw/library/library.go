package library

import (
	"context"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	// Register decoders so image.DecodeConfig can read dimensions.
	_ "image/jpeg"
	_ "image/png"

	"github.com/ZanzyTHEbar/virtual-photowall/vpw/layout"

	exiflib "github.com/rwcarlsen/goexif/exif"
	"github.com/sourcegraph/conc/pool"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tif":  true,
	".tiff": true,
}

// photoMeta is one scanned photo before bucketing.
type photoMeta struct {
	path   string
	taken  time.Time
	aspect float64
}

// Library is a locally ingested photo collection, bucketed by month and
// ordered newest-first. It produces the session manifest and acts as the
// fetch backend for the bucket loader, standing in for the remote photo
// service.
type Library struct {
	logger   *slog.Logger
	manifest []layout.BucketManifestEntry
	buckets  map[string][]layout.PhotoRef
}

// Option allows for customization of the Library scan.
type Option func(*scanConfig)

type scanConfig struct {
	logger  *slog.Logger
	workers int
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *scanConfig) {
		c.logger = logger
	}
}

// WithWorkers sets the number of concurrent metadata readers.
func WithWorkers(workers int) Option {
	return func(c *scanConfig) {
		if workers > 0 {
			c.workers = workers
		}
	}
}

// Scan walks root, reads the taken-date and dimensions of every image it
// finds, and groups the results into newest-first monthly buckets. Files
// without usable EXIF fall back to their filesystem modification time and a
// default aspect ratio.
func Scan(ctx context.Context, root string, opts ...Option) (*Library, error) {
	cfg := &scanConfig{logger: slog.Default(), workers: 8}
	for _, opt := range opts {
		opt(cfg)
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if imageExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk library root %s: %w", root, err)
	}

	var mu sync.Mutex
	metas := make([]photoMeta, 0, len(paths))

	p := pool.New().WithMaxGoroutines(cfg.workers).WithContext(ctx)
	for _, path := range paths {
		p.Go(func(ctx context.Context) error {
			meta, err := readPhotoMeta(path)
			if err != nil {
				cfg.logger.Warn("skipping unreadable photo", "path", path, "error", err)
				return nil
			}
			mu.Lock()
			metas = append(metas, meta)
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("library scan aborted: %w", err)
	}

	lib := bucketize(metas)
	lib.logger = cfg.logger
	lib.logger.Info("library scanned",
		"root", root,
		"photos", len(metas),
		"buckets", len(lib.manifest))
	return lib, nil
}

// Manifest returns the newest-first bucket manifest for the engine.
func (lib *Library) Manifest() []layout.BucketManifestEntry {
	return lib.manifest
}

// Fetch returns the contents of one bucket. Satisfies loader.FetchFunc.
func (lib *Library) Fetch(_ context.Context, bucketID string) ([]layout.PhotoRef, error) {
	photos, ok := lib.buckets[bucketID]
	if !ok {
		return nil, fmt.Errorf("unknown bucket %s", bucketID)
	}
	return photos, nil
}

// readPhotoMeta extracts the taken-date and aspect ratio of one image file.
func readPhotoMeta(path string) (photoMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return photoMeta{}, err
	}
	defer f.Close()

	meta := photoMeta{path: path}

	if x, err := exiflib.Decode(f); err == nil {
		if taken, err := x.DateTime(); err == nil {
			meta.taken = taken
		}
	}
	if meta.taken.IsZero() {
		info, err := os.Stat(path)
		if err != nil {
			return photoMeta{}, err
		}
		meta.taken = info.ModTime()
	}

	if _, err := f.Seek(0, 0); err == nil {
		if cfg, _, err := image.DecodeConfig(f); err == nil && cfg.Height > 0 {
			meta.aspect = float64(cfg.Width) / float64(cfg.Height)
		}
	}

	return meta, nil
}

// bucketize groups scanned photos into monthly buckets, newest-first, with
// photos inside each bucket likewise ordered newest-first to match the
// manifest traversal direction.
func bucketize(metas []photoMeta) *Library {
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].taken.After(metas[j].taken)
	})

	buckets := make(map[string][]layout.PhotoRef)
	var order []string
	for _, m := range metas {
		id := m.taken.Format("2006-01")
		if _, seen := buckets[id]; !seen {
			order = append(order, id)
		}
		buckets[id] = append(buckets[id], layout.PhotoRef{
			ID:          m.path,
			AspectRatio: m.aspect,
			DateLabel:   m.taken.Format("January 2006"),
		})
	}

	manifest := make([]layout.BucketManifestEntry, 0, len(order))
	for _, id := range order {
		manifest = append(manifest, layout.BucketManifestEntry{ID: id, Count: len(buckets[id])})
	}

	return &Library{manifest: manifest, buckets: buckets}
}
