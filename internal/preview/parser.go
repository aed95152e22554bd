package preview

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// TableParser converts a data URL into a Table.
type TableParser interface {
	Parse(ctx context.Context, dataURL string) (*Table, error)
}

// ContextCheckInterval is how often, in rows, the parser checks for cancellation.
var ContextCheckInterval = 500

// CSVParser is the default TableParser. The first record is the header.
type CSVParser struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// MaxInflated caps the size of a decompressed gzip payload. Zero means
	// no limit.
	MaxInflated int64
}

// Parse decodes the data URL and reads it as CSV. Failures are reported as
// *ParseError.
func (p CSVParser) Parse(ctx context.Context, dataURL string) (*Table, error) {
	mediaType, data, err := DecodeDataURL(dataURL)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	var src io.Reader = bytes.NewReader(data)
	if isGzip(mediaType, data) {
		zr, err := gzip.NewReader(src)
		if err != nil {
			return nil, &ParseError{Err: fmt.Errorf("gzip: %w", err)}
		}
		defer zr.Close()
		src = zr
		if p.MaxInflated > 0 {
			src = &inflateLimit{r: src, left: p.MaxInflated}
		}
	}

	return p.read(ctx, newCleanReader(src))
}

func (p CSVParser) read(ctx context.Context, src io.Reader) (*Table, error) {
	cr := csv.NewReader(src)
	if p.Comma != 0 {
		cr.Comma = p.Comma
	}
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Table{Columns: []string{}, Rows: []Row{}}, nil
	}
	if err != nil {
		return nil, csvError(err)
	}

	keys, columns := headerKeys(header)
	table := &Table{Columns: columns, Rows: []Row{}}

	for i := 0; ; i++ {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}

		row := make(Row, len(columns))
		for j, key := range keys {
			if j < len(record) {
				row[key] = record[j]
			} else {
				row[key] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// csvError wraps a failed record read. The inflate cap surfaces through
// the csv reader unchanged and keeps its own message.
func csvError(err error) error {
	if errors.Is(err, ErrInflatedTooLarge) {
		return &ParseError{Err: err}
	}
	return &ParseError{Err: fmt.Errorf("invalid csv: %w", err)}
}

// inflateLimit fails with ErrInflatedTooLarge once more than left bytes
// have been read. Unlike io.LimitReader it never ends the stream early.
type inflateLimit struct {
	r    io.Reader
	left int64
}

func (l *inflateLimit) Read(p []byte) (int, error) {
	if l.left < 0 {
		return 0, ErrInflatedTooLarge
	}
	// Allow one byte past the cap so an exact fit still reaches EOF.
	if int64(len(p)) > l.left+1 {
		p = p[:l.left+1]
	}
	n, err := l.r.Read(p)
	l.left -= int64(n)
	if l.left < 0 {
		return 0, ErrInflatedTooLarge
	}
	return n, err
}

// headerKeys trims the header cells and returns the key for every position
// plus the ordered, de-duplicated column list. A repeated name keeps its
// first position; its later cell overwrites the earlier value in each row.
func headerKeys(header []string) ([]string, []string) {
	keys := make([]string, len(header))
	columns := make([]string, 0, len(header))
	seen := make(map[string]bool, len(header))

	for i, h := range header {
		name := strings.TrimSpace(h)
		keys[i] = name
		if !seen[name] {
			seen[name] = true
			columns = append(columns, name)
		}
	}
	return keys, columns
}

// isGzip checks the media type and falls back to the gzip magic number.
func isGzip(mediaType string, data []byte) bool {
	switch mediaType {
	case "application/gzip", "application/x-gzip":
		return true
	}
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}
