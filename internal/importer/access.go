package importer

import (
	"context"
	"fmt"
	"os"
)

// OSAccess implements Access with plain filesystem permissions. There is
// no elevation to escalate to here, so AcquireScoped succeeds only when a
// re-check shows the path became readable (e.g. the user fixed the mode
// while a permission prompt was showing).
type OSAccess struct{}

func (OSAccess) IsReadable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

func (a OSAccess) AcquireScoped(ctx context.Context, path string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.IsReadable(path) {
		return func() {}, nil
	}
	return nil, fmt.Errorf("no read permission for %s", path)
}
