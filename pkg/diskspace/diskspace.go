// Package diskspace resolves free and total capacity for the movie root.
// An unreachable path is an expected condition (the library may not be
// mounted where the adapter runs) and degrades to fixed fallback values.
package diskspace

import "os"

// Fallback values reported when the local filesystem cannot answer. Ombi
// requires every field to be present, so missing data degrades to these
// rather than omitted keys.
const (
	// FallbackFreeSpace is reported when the movie root is not statable.
	FallbackFreeSpace int64 = 1_000_000_000_000
	// FallbackTotalSpace matches FallbackFreeSpace for unstatable roots.
	FallbackTotalSpace int64 = 1_000_000_000_000
	// FallbackFileSize is reported for files that are not locally visible.
	FallbackFileSize int64 = 0
)

// Usage returns free and total bytes for path. ok is false when the path is
// missing or not statable, in which case callers substitute the fallbacks.
func Usage(path string) (free, total int64, ok bool) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return 0, 0, false
	}
	return usage(path)
}

// UsageOrFallback is Usage with the fallback policy already applied.
func UsageOrFallback(path string) (free, total int64) {
	free, total, ok := Usage(path)
	if !ok {
		return FallbackFreeSpace, FallbackTotalSpace
	}
	return free, total
}

// FileSize returns the size of a regular file, or FallbackFileSize when the
// file is missing or not a regular file.
func FileSize(path string) int64 {
	if path == "" {
		return FallbackFileSize
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return FallbackFileSize
	}
	return info.Size()
}
