// Package library implements the album asset source: an in-memory DuckDB
// catalog of the photos under one directory. Assets fetch newest-first,
// deletion is per-id, and creation deduplicates by perceptual hash so the
// triage queue can rely on stable ids alone.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"photosweep/pkg/models"
)

var (
	// ErrPermissionDenied means the catalog root is not accessible. The
	// caller should surface an actionable message; retrying without a new
	// authorization request will not help.
	ErrPermissionDenied = errors.New("library: permission denied")

	// ErrAssetCreationFailed wraps a per-file create failure.
	ErrAssetCreationFailed = errors.New("library: asset creation failed")

	// ErrAssetDeletionFailed wraps a per-id delete failure.
	ErrAssetDeletionFailed = errors.New("library: asset deletion failed")
)

// dedupDistance is the maximum dHash Hamming distance at which two images
// count as the same photo at creation time.
const dedupDistance = 10

// Catalog is one open asset library. FetchAll, CreateFromFile and Delete
// round-trip through DuckDB; authorization is checked lazily on first use.
type Catalog struct {
	db   *sql.DB
	root string
	perm models.Permission
	log  *slog.Logger
}

// Open prepares a catalog rooted at dir. No access check happens yet;
// authorization stays undetermined until requested.
func Open(dir string, log *slog.Logger) (*Catalog, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{db: db, root: dir, perm: models.PermissionUndetermined, log: log}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

func (c *Catalog) Root() string { return c.root }

// Authorization returns the current permission state without prompting.
func (c *Catalog) Authorization() models.Permission { return c.perm }

// RequestAuthorization resolves an undetermined permission state by
// probing the catalog root. Once denied it stays denied until explicitly
// re-requested.
func (c *Catalog) RequestAuthorization(ctx context.Context) models.Permission {
	if err := ctx.Err(); err != nil {
		return c.perm
	}
	f, err := os.Open(c.root)
	if err != nil {
		c.perm = models.PermissionDenied
		return c.perm
	}
	f.Close()
	c.perm = models.PermissionGranted
	return c.perm
}

func (c *Catalog) ensureGranted(ctx context.Context) error {
	if c.perm == models.PermissionUndetermined {
		c.RequestAuthorization(ctx)
	}
	if c.perm == models.PermissionDenied {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, c.root)
	}
	return nil
}

// FetchAll returns every cataloged asset, newest first.
func (c *Catalog) FetchAll(ctx context.Context) ([]models.Asset, error) {
	if err := c.ensureGranted(ctx); err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, path, width, height, created_at FROM assets ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(&a.ID, &a.Path, &a.Width, &a.Height, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan asset row: %w", err)
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// FetchResult carries an async FetchAll outcome.
type FetchResult struct {
	Assets []models.Asset
	Err    error
}

// FetchAllAsync runs FetchAll on a worker goroutine and delivers exactly
// one result on the returned channel.
func (c *Catalog) FetchAllAsync(ctx context.Context) <-chan FetchResult {
	out := make(chan FetchResult, 1)
	go func() {
		defer close(out)
		fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		assets, err := c.FetchAll(fetchCtx)
		select {
		case out <- FetchResult{Assets: assets, Err: err}:
		case <-ctx.Done():
		}
	}()
	return out
}

// CreateFromFile registers the image at path. The creation time comes from
// EXIF when present, otherwise the file mtime. If the catalog already
// holds a perceptually identical image, that existing asset is returned
// instead of creating a duplicate.
func (c *Catalog) CreateFromFile(ctx context.Context, path string) (models.Asset, error) {
	if err := c.ensureGranted(ctx); err != nil {
		return models.Asset{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return models.Asset{}, fmt.Errorf("%w: %v", ErrAssetCreationFailed, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return models.Asset{}, fmt.Errorf("%w: decode %s: %v", ErrAssetCreationFailed, path, err)
	}

	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return models.Asset{}, fmt.Errorf("%w: hash %s: %v", ErrAssetCreationFailed, path, err)
	}
	if existing, ok, err := c.findPerceptualDuplicate(ctx, hash); err != nil {
		return models.Asset{}, err
	} else if ok {
		c.log.Debug("library: perceptual duplicate", "path", path, "existing", existing.ID)
		return existing, nil
	}

	createdAt, ok := exifCreatedTime(path)
	if !ok {
		info, err := os.Stat(path)
		if err != nil {
			return models.Asset{}, fmt.Errorf("%w: %v", ErrAssetCreationFailed, err)
		}
		createdAt = info.ModTime()
	}

	b := img.Bounds()
	asset := models.Asset{
		ID:        uuid.NewString(),
		Path:      path,
		Width:     b.Dx(),
		Height:    b.Dy(),
		CreatedAt: createdAt,
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO assets (id, path, width, height, created_at, dhash) VALUES (?, ?, ?, ?, ?, ?)`,
		asset.ID, asset.Path, asset.Width, asset.Height, asset.CreatedAt, int64(hash.GetHash()))
	if err != nil {
		return models.Asset{}, fmt.Errorf("%w: insert: %v", ErrAssetCreationFailed, err)
	}
	return asset, nil
}

func (c *Catalog) findPerceptualDuplicate(ctx context.Context, hash *goimagehash.ImageHash) (models.Asset, bool, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, path, width, height, created_at, dhash FROM assets`)
	if err != nil {
		return models.Asset{}, false, fmt.Errorf("failed to query hashes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Asset
		var stored int64
		if err := rows.Scan(&a.ID, &a.Path, &a.Width, &a.Height, &a.CreatedAt, &stored); err != nil {
			return models.Asset{}, false, fmt.Errorf("failed to scan hash row: %w", err)
		}
		other := goimagehash.NewImageHash(uint64(stored), goimagehash.DHash)
		if dist, err := hash.Distance(other); err == nil && dist < dedupDistance {
			return a, true, nil
		}
	}
	return models.Asset{}, false, rows.Err()
}

// Delete removes assets by id. Failures are per-id; one bad id never
// aborts the rest of the batch.
func (c *Catalog) Delete(ctx context.Context, ids []string) error {
	if err := c.ensureGranted(ctx); err != nil {
		return err
	}
	var errs []error
	for _, id := range ids {
		res, err := c.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrAssetDeletionFailed, id, err))
			continue
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			errs = append(errs, fmt.Errorf("%w: %s: not found", ErrAssetDeletionFailed, id))
		}
	}
	return errors.Join(errs...)
}
