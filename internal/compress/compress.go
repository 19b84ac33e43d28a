// Package compress wraps a single exported file in a zip or tar archive.
package compress

import (
	"fmt"
	"io"
	"time"
)

const (
	KindZip = "zip"
	KindTar = "tar"
)

// NewWriter returns an archive writer of the given kind holding one file named
// fileName. Close must be called to complete the archive.
func NewWriter(kind string, w io.Writer, fileName string, modified time.Time) (io.WriteCloser, error) {
	switch kind {
	case KindZip:
		zw, err := NewZipWriter(w, fileName, modified)
		if err != nil {
			return nil, err
		}
		return zw, nil
	case KindTar:
		return NewTarWriter(w, fileName, modified), nil
	}
	return nil, fmt.Errorf("unsupported archive type %q", kind)
}

// ContentType is the response media type for an archive kind.
func ContentType(kind string) string {
	if kind == KindTar {
		return "application/x-tar"
	}
	return "application/zip"
}
