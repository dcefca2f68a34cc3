// Package takeout turns a user-exported location-history archive into a
// bounded batch of activity records ready for model staging.
package takeout

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ActivityFileFragment is the filename fragment that identifies the activity
// history document inside a takeout export. Exports vary in folder layout, so
// matching is by substring across all members, not by path.
const ActivityFileFragment = "MyActivity.json"

var (
	// ErrArchiveFormat means the input could not be read as a ZIP archive.
	ErrArchiveFormat = errors.New("takeout: archive is not a readable zip")

	// ErrActivityFileNotFound means no archive member matched ActivityFileFragment.
	ErrActivityFileNotFound = errors.New("takeout: no activity history file in archive")
)

// Extract locates the activity history document inside a compressed takeout
// archive and returns its decoded contents. If several members match the
// expected fragment, the first one in archive order wins; archive member
// order is not guaranteed stable across export versions.
func Extract(archive []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrArchiveFormat, err)
	}

	for _, member := range reader.File {
		if !strings.Contains(member.Name, ActivityFileFragment) {
			continue
		}

		rc, err := member.Open()
		if err != nil {
			return "", fmt.Errorf("takeout: open %q: %w", member.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("takeout: read %q: %w", member.Name, err)
		}
		return string(content), nil
	}

	return "", ErrActivityFileNotFound
}
