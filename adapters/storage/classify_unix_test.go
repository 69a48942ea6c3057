//go:build unix

package storage

import (
	"errors"
	"os"
	"syscall"
	"testing"

	apperrors "github.com/Skryldev/imagebatch/errors"
)

func TestClassifyWriteErrors(t *testing.T) {
	cases := []struct {
		err  error
		want apperrors.Kind
	}{
		{&os.PathError{Op: "open", Path: "/x", Err: syscall.EACCES}, apperrors.KindPermissionDenied},
		{&os.PathError{Op: "open", Path: "/x", Err: syscall.EROFS}, apperrors.KindPermissionDenied},
		{&os.PathError{Op: "write", Path: "/x", Err: syscall.ENOSPC}, apperrors.KindDiskFull},
		{&os.PathError{Op: "write", Path: "/x", Err: syscall.EIO}, apperrors.KindWriteFailure},
	}
	for _, tc := range cases {
		err := classify("test", tc.err)
		if got := apperrors.KindOf(err); got != tc.want {
			t.Errorf("%v: got %q, want %q", tc.err, got, tc.want)
		}
		if !errors.Is(err, tc.err.(*os.PathError).Err) {
			t.Errorf("%v: underlying errno lost", tc.err)
		}
	}
}
