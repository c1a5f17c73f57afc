package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"resumescore/internal/errors"
)

var textExtensions = []string{".txt", ".md", ".markdown", ".text"}

// StatInputFile checks that filename names a readable regular file and
// returns its metadata.
func StatInputFile(filename string) (os.FileInfo, error) {
	if filename == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "filename cannot be empty", nil)
	}

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound, fmt.Sprintf("file does not exist: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, fmt.Sprintf("cannot access file %s", filename), err)
	}

	if info.IsDir() {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, fmt.Sprintf("path is a directory, not a file: %s", filename), nil)
	}

	file, err := os.Open(filename) // #nosec G304 -- user-specified input path
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, fmt.Sprintf("cannot read file %s", filename), err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file %s: %w", filename, err)
	}

	return info, nil
}

// ValidateInputFile checks if a file exists and is readable
func ValidateInputFile(filename string) error {
	_, err := StatInputFile(filename)
	return err
}

// CheckFileSize rejects sizes above limit. A non-positive limit disables the check.
func CheckFileSize(filename string, size, limit int64) error {
	if limit <= 0 || size <= limit {
		return nil
	}
	return errors.NewValidationError(errors.ErrCodeFileTooLarge,
		fmt.Sprintf("%s is %s, larger than the %s limit", filename, FormatFileSize(size), FormatFileSize(limit)), nil).
		WithContext("size", size).
		WithContext("limit", limit)
}

// ValidateOutputFile checks if the output file path is valid
func ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// GetFileExtension returns the file extension in lowercase
func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// IsTextFile checks if the file has a plain-text extension
func IsTextFile(filename string) bool {
	return slices.Contains(textExtensions, GetFileExtension(filename))
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
