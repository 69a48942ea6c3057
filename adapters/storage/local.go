// Package storage writes transcoded images to the local filesystem and
// guards the write with the directory and free-space checks.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/Skryldev/imagebatch/errors"
)

// StatfsFunc reports total and available bytes of the filesystem holding
// path.
type StatfsFunc func(path string) (total, free uint64, err error)

// Local stores images on the local filesystem.
type Local struct {
	permissions os.FileMode
	statfs      StatfsFunc
}

// NewLocal creates a Local storage adapter writing files with perm.
func NewLocal(perm os.FileMode) *Local {
	if perm == 0 {
		perm = 0o644
	}
	return &Local{permissions: perm, statfs: realStatfs}
}

// SetStatfs replaces the free-space query. A nil fn disables the check.
func (l *Local) SetStatfs(fn StatfsFunc) { l.statfs = fn }

// EnsureDir creates dir and its parents. Any failure, including an empty
// path, is reported as KindInvalidOutputPath.
func (l *Local) EnsureDir(dir string) error {
	if dir == "" {
		return apperrors.New(apperrors.KindInvalidOutputPath, "local.ensure_dir", apperrors.ErrNoOutputFolder)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.New(apperrors.KindInvalidOutputPath, "local.ensure_dir", err)
	}
	return nil
}

// Put writes data to path, replacing any existing file. The parent
// directory must still exist; a directory removed since EnsureDir is not
// recreated.
func (l *Local) Put(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.KindCanceled, "local.put", err)
	}

	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is not a directory", dir)
		}
		return apperrors.New(apperrors.KindInvalidOutputPath, "local.put.dir", err)
	}

	if err := l.checkFreeSpace(dir, int64(len(data))); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, l.permissions)
	if err != nil {
		return classify("local.put.open", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return classify("local.put.write", err)
	}
	if err := f.Close(); err != nil {
		return classify("local.put.close", err)
	}
	return nil
}

// FreeSpace returns the bytes available to unprivileged users on the
// filesystem holding dir.
func (l *Local) FreeSpace(dir string) (uint64, error) {
	if l.statfs == nil {
		return 0, errors.New("free space query disabled")
	}
	_, free, err := l.statfs(dir)
	return free, err
}

// checkFreeSpace fails with KindDiskFull when the filesystem reports less
// room than need. A failing query is not an error.
func (l *Local) checkFreeSpace(dir string, need int64) error {
	free, err := l.FreeSpace(dir)
	if err != nil {
		return nil
	}
	if free < uint64(need) {
		return apperrors.New(apperrors.KindDiskFull, "local.put.space",
			fmt.Errorf("%w: need %d bytes, %d available", apperrors.ErrInsufficientSpace, need, free))
	}
	return nil
}

// Measure writes data to a scratch file under dir, returns the size the
// filesystem reports for it and removes it again. An empty dir uses the
// system temporary directory.
func (l *Local) Measure(ctx context.Context, dir string, data []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, apperrors.Wrap(apperrors.KindCanceled, "local.measure", err)
	}
	f, err := os.CreateTemp(dir, "imagebatch-preview-*")
	if err != nil {
		return 0, classify("local.measure.create", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return 0, classify("local.measure.write", err)
	}
	if err := f.Close(); err != nil {
		return 0, classify("local.measure.close", err)
	}
	info, err := os.Stat(name)
	if err != nil {
		return 0, apperrors.New(apperrors.KindWriteFailure, "local.measure.stat", err)
	}
	return info.Size(), nil
}

// classify maps a filesystem error onto the write-side kinds.
func classify(op string, err error) error {
	return apperrors.New(writeErrorKind(err), op, err)
}
