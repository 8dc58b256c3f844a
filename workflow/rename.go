package workflow

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// swapped out in tests to simulate EXDEV and permission failures
var renameFunc = os.Rename

var (
	ErrTargetExists     = errors.New("target already exists")
	ErrDuplicateContent = errors.New("target already exists with identical content")
	ErrOutsideDirectory = errors.New("target is outside the source directory")
)

// CrossDeviceError means the rename failed with EXDEV. Files are never
// copied and deleted as a fallback.
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("cross-device rename %q -> %q: %v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// checkTarget verifies that src can be renamed to dst without leaving its
// directory or clobbering another file. A dst that is src itself (e.g. a
// case-only change on a case-insensitive filesystem) is allowed.
func checkTarget(src, dst string) error {
	if filepath.Clean(filepath.Dir(src)) != filepath.Clean(filepath.Dir(dst)) {
		return fmt.Errorf("%s: %w", dst, ErrOutsideDirectory)
	}

	dstInfo, err := os.Lstat(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	srcInfo, err := os.Lstat(src)
	if err != nil {
		return err
	}
	if os.SameFile(srcInfo, dstInfo) {
		return nil
	}

	if dstInfo.Mode().IsRegular() && sameContent(src, dst) {
		return fmt.Errorf("%s: %w", dst, ErrDuplicateContent)
	}
	return fmt.Errorf("%s: %w", dst, ErrTargetExists)
}

func renameFile(src, dst string) error {
	if err := checkTarget(src, dst); err != nil {
		return err
	}

	if err := renameFunc(src, dst); err != nil {
		if errors.Is(err, syscall.EXDEV) {
			return &CrossDeviceError{Src: src, Dst: dst, Err: err}
		}
		return err
	}
	return nil
}
