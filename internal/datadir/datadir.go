// Package datadir prepares the persisted data directory before the first
// database access.
package datadir

import (
	"fmt"
	"os"
	"path/filepath"
)

// Prepare creates the directory if needed and hands ownership to the
// runtime account. Pass uid and gid of -1 to keep current ownership.
func Prepare(path string, uid, gid int) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists but is not a directory", path)
	}

	if uid >= 0 {
		if err := ChownAll(path, uid, gid); err != nil {
			return err
		}
	}

	return CheckWritable(path)
}

// ChownAll reassigns the directory and everything already in it, so that
// database files created before privileges were dropped stay writable.
func ChownAll(path string, uid, gid int) error {
	return filepath.Walk(path, func(name string, _ os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		return os.Chown(name, uid, gid)
	})
}

// CheckWritable probes the directory with a throwaway file. The probe runs
// under the current credentials, so it must be repeated by the worker if
// the supervisor prepares the directory as a different account.
func CheckWritable(path string) error {
	f, err := os.CreateTemp(path, ".writable-*")
	if err != nil {
		return fmt.Errorf("data directory %s is not writable: %w", path, err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
