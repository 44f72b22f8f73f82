//go:build windows

package artifact

import "os"

// openFileNoFollow opens a file for writing.
// O_NOFOLLOW is not available on Windows; WriteFile checks the destination
// with Lstat before renaming over it.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}
