package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/lexicon/internal/artifact"
	"github.com/hpungsan/lexicon/internal/errors"
)

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // source text or artifact to load
	PathCheckWrite                      // artifact to build
)

// ValidateSourcePath checks a lexicon text file before it is read.
func ValidateSourcePath(path string) error {
	if path == "" {
		return errors.NewInvalidRequest("source path is required")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return errors.NewInvalidRequest(fmt.Sprintf("source not found: %s", path))
	}
	if err != nil {
		return errors.NewInternal(err)
	}
	if info.IsDir() {
		return errors.NewInvalidRequest("source path is a directory")
	}
	return nil
}

// ValidateArtifactPath checks an artifact path. It rejects
// traversal, a missing .bin extension and symlinked files, and in read mode
// requires the file to exist.
func ValidateArtifactPath(path string, mode PathCheckMode) error {
	if path == "" {
		return errors.NewInvalidRequest("artifact path is required")
	}

	// Reject paths containing ".." (traversal attempt)
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if filepath.Ext(cleaned) != artifact.Extension {
		return errors.NewInvalidRequest(fmt.Sprintf("path must have %s extension", artifact.Extension))
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if mode == PathCheckRead {
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return errors.NewInvalidRequest(fmt.Sprintf("artifact not found: %s", path))
		}
	}

	if info, err := os.Lstat(absPath); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("path must not be a symlink")
		}
		if info.IsDir() {
			return errors.NewInvalidRequest("artifact path is a directory")
		}
	}

	return nil
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// User input may use forward slashes on any platform
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}
