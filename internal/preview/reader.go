package preview

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SelectedFile is a handle to a user-chosen file. It is only used for the
// duration of a single read.
type SelectedFile interface {
	Name() string
	// Size returns the size in bytes, or -1 when unknown.
	Size() int64
	Open() (io.ReadCloser, error)
}

// LocalFile is a SelectedFile backed by a path on disk.
type LocalFile struct {
	Path string
}

func (f LocalFile) Name() string { return filepath.Base(f.Path) }

func (f LocalFile) Size() int64 {
	info, err := os.Stat(f.Path)
	if err != nil {
		return -1
	}
	return info.Size()
}

func (f LocalFile) Open() (io.ReadCloser, error) { return os.Open(f.Path) }

// mediaTypes lists the accepted extensions and the media type each is
// encoded with.
var mediaTypes = map[string]string{
	".csv": "text/csv",
	".gz":  "application/gzip",
}

// Reader turns a SelectedFile into a data URL.
type Reader struct {
	// MaxBytes caps the file size. Zero means no limit.
	MaxBytes int64
}

// NewReader creates a Reader with the given size limit.
func NewReader(maxBytes int64) *Reader {
	return &Reader{MaxBytes: maxBytes}
}

// ReadDataURL reads the whole file and returns it as a base64 data URL.
// Every failure is reported as a *ReadError. There is no retry and no
// partial result.
func (r *Reader) ReadDataURL(ctx context.Context, f SelectedFile) (string, error) {
	name := f.Name()

	mediaType, ok := mediaTypes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return "", &ReadError{Name: name, Err: ErrUnsupportedFile}
	}
	if r.MaxBytes > 0 && f.Size() > r.MaxBytes {
		return "", &ReadError{Name: name, Err: ErrFileTooLarge}
	}
	if err := ctx.Err(); err != nil {
		return "", &ReadError{Name: name, Err: err}
	}

	rc, err := f.Open()
	if err != nil {
		return "", &ReadError{Name: name, Err: err}
	}
	defer rc.Close()

	var src io.Reader = &contextReader{ctx: ctx, r: rc}
	if r.MaxBytes > 0 {
		src = io.LimitReader(src, r.MaxBytes+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", &ReadError{Name: name, Err: err}
	}
	if r.MaxBytes > 0 && int64(len(data)) > r.MaxBytes {
		return "", &ReadError{Name: name, Err: ErrFileTooLarge}
	}

	return EncodeDataURL(mediaType, data), nil
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
