// Package archive reads the single-member zip archives deposited by the lab
// instruments and exposes the contained text as a line stream.
package archive

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMultiMember is returned when an archive holds more than one file.
	// Accepted archives carry exactly one text member.
	ErrMultiMember = errors.New("archive contains more than one file")
	// ErrEmpty is returned when an archive holds no members at all.
	ErrEmpty = errors.New("archive contains no files")
)

// Archive is a validated single-member zip. Each Scan re-opens the archive,
// so callers can make several passes (one per candidate separator).
type Archive struct {
	path   string
	member string
}

// Open validates that the zip at path has exactly one member.
func Open(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer func() { _ = zr.Close() }()

	switch len(zr.File) {
	case 0:
		return nil, fmt.Errorf("archive %s: %w", path, ErrEmpty)
	case 1:
		return &Archive{path: path, member: zr.File[0].Name}, nil
	default:
		return nil, fmt.Errorf("archive %s: %w", path, ErrMultiMember)
	}
}

// MemberName returns the name of the contained file.
func (a *Archive) MemberName() string { return a.member }

// FirstLine returns the first line of the member, used to cross-check the
// declared job kind against the actual file signature.
func (a *Archive) FirstLine() (string, error) {
	var first string
	err := a.Scan(func(line string) error {
		first = line
		return errStopScan
	})
	if err != nil {
		return "", err
	}
	return first, nil
}

var errStopScan = errors.New("stop scan")

// Scan streams the member line by line into fn, with trailing CR/LF
// stripped. fn may return errStopScan via FirstLine; any other error aborts
// the scan and is returned.
func (a *Archive) Scan(fn func(line string) error) error {
	zr, err := zip.OpenReader(a.path)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", a.path, err)
	}
	defer func() { _ = zr.Close() }()

	rc, err := zr.File[0].Open()
	if err != nil {
		return fmt.Errorf("open member %s: %w", a.member, err)
	}
	defer func() { _ = rc.Close() }()

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if err := fn(line); err != nil {
			if errors.Is(err, errStopScan) {
				return nil
			}
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read member %s: %w", a.member, err)
	}
	return nil
}
