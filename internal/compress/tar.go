package compress

import (
	"archive/tar"
	"bytes"
	"io"
	"time"
)

// TarWriter packs everything written to it into a single file inside a TAR
// archive. A tar header carries the file size, so content is buffered until Close.
type TarWriter struct {
	w        io.Writer
	name     string
	modified time.Time
	buf      bytes.Buffer
}

func NewTarWriter(w io.Writer, fileName string, modified time.Time) *TarWriter {
	return &TarWriter{w: w, name: fileName, modified: modified}
}

func (t *TarWriter) Write(p []byte) (int, error) {
	return t.buf.Write(p)
}

// Close writes the header and buffered content, then finishes the archive.
func (t *TarWriter) Close() error {
	tw := tar.NewWriter(t.w)
	err := tw.WriteHeader(&tar.Header{
		Typeflag: tar.TypeReg,
		Name:     t.name,
		Mode:     0o644,
		Size:     int64(t.buf.Len()),
		ModTime:  t.modified,
	})
	if err != nil {
		return err
	}
	if _, err := t.buf.WriteTo(tw); err != nil {
		return err
	}
	return tw.Close()
}
