//go:build !unix

package storage

import (
	"errors"
	"io/fs"

	apperrors "github.com/Skryldev/imagebatch/errors"
)

var errStatfsUnsupported = errors.New("free space query not supported on this platform")

func realStatfs(string) (uint64, uint64, error) {
	return 0, 0, errStatfsUnsupported
}

func writeErrorKind(err error) apperrors.Kind {
	if errors.Is(err, fs.ErrPermission) {
		return apperrors.KindPermissionDenied
	}
	return apperrors.KindWriteFailure
}
