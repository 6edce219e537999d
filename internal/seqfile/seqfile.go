// Package seqfile persists each router's own combined LSA sequence
// number (spec §6) across restarts: a single small file, rewritten
// atomically (temp file + fsync + rename) so a crash mid-write never
// leaves a torn value that would cause this router to re-announce a
// sequence number it has already used.
package seqfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Read loads the stored combined sequence number from path. A missing
// file is not an error: it returns 0, as a router's first run has
// never announced anything.
func Read(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("seqfile: corrupt sequence file %s: %w", path, err)
	}
	return v, nil
}

// Write atomically rewrites path to contain seq: it writes to a
// sibling temp file, fsyncs it, renames it over path, then fsyncs the
// containing directory so the rename itself is durable.
func Write(path string, seq uint64) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".seq-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(strconv.FormatUint(seq, 10)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}

	if d, err := os.Open(dir); err == nil {
		unix.Fsync(int(d.Fd()))
		d.Close()
	}
	return nil
}
