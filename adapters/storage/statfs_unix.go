//go:build unix

package storage

import (
	"errors"

	"golang.org/x/sys/unix"

	apperrors "github.com/Skryldev/imagebatch/errors"
)

func realStatfs(path string) (uint64, uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bavail * uint64(stat.Bsize)
	return total, free, nil
}

func writeErrorKind(err error) apperrors.Kind {
	switch {
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM), errors.Is(err, unix.EROFS):
		return apperrors.KindPermissionDenied
	case errors.Is(err, unix.ENOSPC), errors.Is(err, unix.EDQUOT):
		return apperrors.KindDiskFull
	}
	return apperrors.KindWriteFailure
}
