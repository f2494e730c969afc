// Package cache prunes stale files left in the cache and temp directories.
package cache

import (
	"os"
	"time"

	"github.com/mwembed/mwembed/filesystem"
	"github.com/mwembed/mwembed/log"
	"github.com/mwembed/mwembed/where"
	"github.com/spf13/afero"
)

// TTL is the age after which a file counts as stale.
const TTL = 7 * 24 * time.Hour

// CollectGarbage removes stale files from the cache and temp directories in the background.
// Persisted caches are left alone; they expire on their own.
func CollectGarbage() {
	go func() {
		for _, dir := range []string{where.Temp(), where.Cache()} {
			removed := Prune(dir, time.Now().Add(-TTL), where.LookupCache())
			if removed > 0 {
				log.Debugf("removed %d stale files from %s", removed, dir)
			}
		}
	}()
}

// Prune removes every regular file under dir last modified before cutoff, except keep.
// It returns the number of files removed.
func Prune(dir string, cutoff time.Time, keep ...string) int {
	fs := filesystem.API()
	removed := 0

	_ = afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		for _, k := range keep {
			if path == k {
				return nil
			}
		}
		if info.ModTime().Before(cutoff) && fs.Remove(path) == nil {
			removed++
		}
		return nil
	})
	return removed
}
