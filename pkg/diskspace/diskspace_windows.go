//go:build windows

package diskspace

import "golang.org/x/sys/windows"

func usage(path string) (free, total int64, ok bool) {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, 0, false
	}
	var freeBytes, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(pathPtr, &freeBytes, &totalBytes, &totalFreeBytes); err != nil {
		return 0, 0, false
	}
	return int64(freeBytes), int64(totalBytes), true
}
