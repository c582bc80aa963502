package util

import (
	"os"
	"time"
)

// CheckFileExists reports whether fpath can be stat'ed.
func CheckFileExists(fpath string) bool {
	_, e := os.Stat(fpath)
	return e == nil
}

// FileModTime returns the modification time of fpath, or the zero time if it
// cannot be stat'ed.
func FileModTime(fpath string) time.Time {
	info, err := os.Stat(fpath)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
