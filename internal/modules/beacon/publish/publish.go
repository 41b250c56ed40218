// Package publish writes the beacon text to the destination file. The
// write is atomic: a temporary file in the destination directory is
// renamed over the target, so a concurrent reader (the igate tailing the
// file) never observes a partial record.
package publish

import (
	"fmt"
	"os"
	"path/filepath"
)

// PublishError reports a failed write or rename. The caller does not
// retry; the next admitted observation naturally does.
type PublishError struct {
	Path string
	Err  error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: %v", e.Path, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Publisher writes beacon lines to a fixed destination path.
type Publisher struct {
	path string
}

func New(path string) *Publisher {
	return &Publisher{path: path}
}

// Path returns the destination file path.
func (p *Publisher) Path() string { return p.path }

// Publish writes text plus a terminating newline to the destination.
// Either the rename lands and the file holds the complete new record, or
// the previous contents are left untouched.
func (p *Publisher) Publish(text string) error {
	dir := filepath.Dir(p.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p.path)+".*")
	if err != nil {
		return &PublishError{Path: p.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(text + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PublishError{Path: p.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PublishError{Path: p.path, Err: err}
	}
	if err := os.Rename(tmpName, p.path); err != nil {
		os.Remove(tmpName)
		return &PublishError{Path: p.path, Err: err}
	}
	return nil
}
