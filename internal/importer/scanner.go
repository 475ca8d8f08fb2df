package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"photosweep/pkg/models"
)

// ErrFolderAccessDenied means the scan root could not be read even after a
// scoped-access attempt. No files are processed in that case.
var ErrFolderAccessDenied = errors.New("importer: folder access denied")

// imageExts are the file extensions a scan accepts (lower case).
var imageExts = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {},
	".webp": {}, ".heic": {}, ".tif": {}, ".tiff": {}, ".bmp": {},
}

// IsImagePath reports whether path looks like an image file by extension.
func IsImagePath(path string) bool {
	_, ok := imageExts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// CreateFunc registers the file at path with the asset source and returns
// the created asset. It is the scanner's bridge to asset storage.
type CreateFunc func(ctx context.Context, path string) (models.Asset, error)

// Access checks readability of a scan root and, when direct access fails,
// attempts a time-boxed elevated grant for it.
type Access interface {
	IsReadable(path string) bool
	AcquireScoped(ctx context.Context, path string) (release func(), err error)
}

// Scanner walks a folder tree and feeds each accepted image file through
// create-and-merge. One failing file never aborts the rest of the scan.
// With a nil Merger the scanner only populates the asset source, which is
// how a catalog is indexed before the triage queue exists.
type Scanner struct {
	Merger *Merger
	Create CreateFunc
	Access Access
	Log    *slog.Logger
}

// ScanReport summarizes one finished scan.
type ScanReport struct {
	Imported  int // created and newly merged
	Duplicate int // created but already queued (or rejected as duplicate upstream)
	Failed    int // decode or creation failures
	Skipped   int // non-image or hidden entries
}

func (s *Scanner) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

// Scan walks root once, in lexical order, importing every regular image
// file that is not hidden and not inside a package directory. If root is
// not directly readable it first tries to acquire scoped access; failing
// that it returns ErrFolderAccessDenied with zero files processed.
func (s *Scanner) Scan(ctx context.Context, root string) (ScanReport, error) {
	var report ScanReport

	if s.Access != nil && !s.Access.IsReadable(root) {
		release, err := s.Access.AcquireScoped(ctx, root)
		if err != nil {
			return report, fmt.Errorf("%w: %s: %v", ErrFolderAccessDenied, root, err)
		}
		defer release()
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("%w: %s: %v", ErrFolderAccessDenied, root, err)
			}
			// Unreadable subtree: report and keep walking siblings.
			s.logger().Warn("scan: skipping unreadable entry", "path", path, "error", err)
			report.Failed++
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			// Hidden directories and opaque package directories (a
			// directory named with an extension, e.g. Photos.photoslibrary)
			// are not walked into.
			if strings.HasPrefix(name, ".") || filepath.Ext(name) != "" {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || strings.HasPrefix(name, ".") || !IsImagePath(name) {
			report.Skipped++
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.importFile(ctx, path, &report)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrFolderAccessDenied) {
			return ScanReport{}, err
		}
		return report, err
	}
	return report, nil
}

// ImportFile runs a single file through create-and-merge. Callers that
// own an event loop must drain res.Lookup there; Scan drains it inline.
func (s *Scanner) ImportFile(ctx context.Context, path string) (MergeResult, error) {
	asset, err := s.Create(ctx, path)
	if err != nil {
		return MergeResult{}, err
	}
	if s.Merger == nil {
		if asset.Path != path {
			// The source handed back an existing asset: a duplicate.
			return MergeResult{}, nil
		}
		return MergeResult{Added: []models.Asset{asset}}, nil
	}
	return s.Merger.Merge(ctx, []models.Asset{asset}), nil
}

func (s *Scanner) importFile(ctx context.Context, path string, report *ScanReport) {
	res, err := s.ImportFile(ctx, path)
	if res.Lookup != nil {
		// No event loop on the scan path; apply the completion inline.
		s.Merger.cache.Commit(<-res.Lookup)
	}
	switch {
	case err != nil:
		s.logger().Warn("scan: import failed", "path", path, "error", err)
		report.Failed++
	case len(res.Added) > 0:
		report.Imported++
	default:
		report.Duplicate++
	}
}
