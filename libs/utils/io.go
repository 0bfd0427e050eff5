package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
)

// GetFilenameFromPath returns the filename from a given object path.
func GetFilenameFromPath(f string) string {
	// Split the object name into parts
	parts := strings.Split(f, "/")

	// Extract the filename
	return parts[len(parts)-1]
}

// FileStem returns the filename without directory and extension.
func FileStem(p string) string {
	name := GetFilenameFromPath(filepath.ToSlash(p))
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// HasExt reports whether name ends with one of exts, ignoring case.
func HasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// DownloadBucketFile copies an object to a local file, creating parent directories.
func DownloadBucketFile(ctx context.Context, o *storage.ObjectHandle, dst string) error {
	r, err := o.NewReader(ctx)
	if err != nil {
		return fmt.Errorf("(%s) failed to create reader: %w", o.ObjectName(), err)
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("(%s) failed to create dir: %w", dst, err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("(%s) failed to create file: %w", dst, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("(%s) failed to read: %w", o.ObjectName(), err)
	}
	return f.Close()
}
