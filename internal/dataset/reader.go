package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TableReader reads one named table from a data source
type TableReader interface {
	ReadTable(ctx context.Context, name string) (*Table, error)
}

// Opener opens the raw bytes of a named file
type Opener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// CSVReader reads tables from "<name>.csv" files provided by an Opener
type CSVReader struct {
	opener Opener
}

// NewCSVReader creates a CSV table reader on top of an opener
func NewCSVReader(opener Opener) *CSVReader {
	return &CSVReader{opener: opener}
}

// ReadTable opens and parses "<name>.csv". The first record is the header.
func (r *CSVReader) ReadTable(ctx context.Context, name string) (*Table, error) {
	rc, err := r.opener.Open(ctx, name+".csv")
	if err != nil {
		return nil, fmt.Errorf("failed to open %s.csv: %w", name, err)
	}
	defer rc.Close()

	return ParseCSV(name, rc)
}

// ParseCSV parses a CSV stream into a table
func ParseCSV(name string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s.csv is empty", name)
		}
		return nil, fmt.Errorf("failed to read %s.csv header: %w", name, err)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s.csv: %w", name, err)
		}
		rows = append(rows, record)
	}

	return NewTable(name, header, rows), nil
}

// DirOpener opens files from a local directory
type DirOpener struct {
	dir string
}

// NewDirOpener creates an opener rooted at dir
func NewDirOpener(dir string) *DirOpener {
	return &DirOpener{dir: dir}
}

// Open opens dir/name
func (o *DirOpener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(o.dir, name))
}
