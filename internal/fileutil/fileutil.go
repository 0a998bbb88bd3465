// Package fileutil holds small filesystem helpers used by the harness.
package fileutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"harnessutil/internal/services"
)

const lockRetryDelay = 50 * time.Millisecond

// EmptyFile leaves path as an existing zero-length file. Missing parent
// directories are created. An existing file is truncated in place, keeping
// its identity; otherwise an empty file is created.
func EmptyFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrIO, "fileutil", "mkdir", filepath.Dir(path), err)
	}

	truncErr := os.Truncate(path, 0)
	if truncErr == nil {
		return nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return services.Wrap(services.ErrIO, "fileutil", "empty file", path, fmt.Errorf("truncate: %v; create: %w", truncErr, err))
	}
	if err := file.Close(); err != nil {
		return services.Wrap(services.ErrIO, "fileutil", "close", path, err)
	}
	return nil
}

// LockPath returns the advisory lock file used by EmptyFileLocked.
func LockPath(path string) string {
	return path + ".lock"
}

// EmptyFileLocked runs EmptyFile while holding an exclusive advisory lock on
// LockPath(path), waiting for other holders until ctx is done.
func EmptyFileLocked(ctx context.Context, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrIO, "fileutil", "mkdir", filepath.Dir(path), err)
	}

	lock := flock.New(LockPath(path))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return services.Wrap(services.ErrIO, "fileutil", "lock", LockPath(path), err)
	}
	if !locked {
		return services.Wrap(services.ErrIO, "fileutil", "lock", LockPath(path), ctx.Err())
	}
	defer func() {
		_ = lock.Unlock()
	}()

	return EmptyFile(path)
}
