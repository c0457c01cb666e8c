package voice

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

type cacheFile struct {
	path    string
	size    int64
	modTime time.Time
}

// CacheSize returns the total bytes held under dir, recursively.
func CacheSize(dir string) (int64, error) {
	var total int64
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // a vanished file is not worth failing the walk
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	if os.IsNotExist(err) {
		return 0, nil
	}
	return total, err
}

// SweepCache deletes the oldest files (by modification time) under dir
// until the total size is at or below ceiling. Returns how many files
// were removed.
func SweepCache(dir string, ceiling int64) int {
	var files []cacheFile
	var total int64

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.Mode().IsRegular() {
			files = append(files, cacheFile{path: path, size: info.Size(), modTime: info.ModTime()})
			total += info.Size()
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warnln("cache sweep walk failed")
		return 0
	}

	if total <= ceiling {
		return 0
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	removed := 0
	for _, f := range files {
		if err := os.Remove(f.path); err != nil {
			logrus.WithError(err).WithField("file", f.path).Warnln("failed to remove cache file")
			continue
		}
		removed++
		total -= f.size
		if total <= ceiling {
			break
		}
	}
	return removed
}

// ClearCache removes every file under dir, keeping the directories.
func ClearCache(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.Mode().IsRegular() {
			return os.Remove(path)
		}
		return nil
	})
}
