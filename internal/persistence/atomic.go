package persistence

import (
	"os"

	"github.com/bryanchriswhite/vcsengine/internal/vcserr"
)

// atomicWrite writes data to <path>.tmp, deletes any prior <path>, then
// renames the temp file into place (spec.md §6). A failure while writing
// the temp file or removing the prior file leaves the previous on-disk
// file in place. If the final rename fails, the prior file has already
// been removed, so no file remains at path. The temp file is discarded on
// every failure.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return vcserr.Wrap(vcserr.FileWriteFailed, "failed to write temp file", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			os.Remove(tmpPath)
			return vcserr.Wrap(vcserr.FileWriteFailed, "failed to remove prior file", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return vcserr.Wrap(vcserr.FileWriteFailed, "failed to rename temp file into place", err)
	}
	return nil
}
