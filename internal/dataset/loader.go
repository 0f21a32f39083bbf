package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Options controls how uploaded files are read.
type Options struct {
	// ParseDates stores ISO-8601 text columns as datetime.
	ParseDates bool
	// Sheet selects a spreadsheet sheet by name; empty means the first sheet.
	Sheet string
	// MaxRows rejects files with more data rows; 0 means unlimited.
	MaxRows int
}

// DefaultOptions returns the loader defaults.
func DefaultOptions() Options {
	return Options{ParseDates: true}
}

// Parser reads one file format into untyped columns.
type Parser interface {
	CanParse(name string) bool
	Parse(r io.Reader, opt Options) ([]rawColumn, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
}

// Supported reports whether some parser accepts the file name.
func Supported(name string) bool {
	return lookup(name) != nil
}

func lookup(name string) Parser {
	for _, p := range registry {
		if p.CanParse(name) {
			return p
		}
	}
	return nil
}

// Load reads a complete dataset from r, choosing the parser by the suffix of name.
// Either a full dataset or an error is returned, never a partial dataset.
func Load(name string, r io.Reader, opt Options) (*Dataset, error) {
	p := lookup(name)
	if p == nil {
		return nil, &UnsupportedFormatError{Name: name}
	}
	raw, err := p.Parse(r, opt)
	if err != nil {
		return nil, &LoadError{Name: name, Err: err}
	}
	if len(raw) == 0 {
		return nil, &LoadError{Name: name, Err: fmt.Errorf("no columns to parse from file")}
	}
	rows := len(raw[0].cells)
	if opt.MaxRows > 0 && rows > opt.MaxRows {
		return nil, &LoadError{Name: name, Err: fmt.Errorf("too many rows: %d (limit %d)", rows, opt.MaxRows)}
	}
	ds := &Dataset{
		ID:       uuid.NewString(),
		Name:     name,
		LoadedAt: time.Now(),
		Columns:  make([]*Column, 0, len(raw)),
	}
	for _, rc := range raw {
		col, err := typeColumn(rc, opt.ParseDates)
		if err != nil {
			return nil, &LoadError{Name: name, Err: err}
		}
		ds.Columns = append(ds.Columns, col)
	}
	return ds, nil
}

// LoadFile opens path and loads it with Load, naming the dataset after the file.
func LoadFile(path string, opt Options) (*Dataset, error) {
	name := filepath.Base(path)
	if !Supported(name) {
		return nil, &UnsupportedFormatError{Name: name}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Name: name, Err: err}
	}
	defer f.Close()
	return Load(name, f, opt)
}

func hasSuffix(name string, suffixes ...string) bool {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// columnsFromRows pivots a header and row-major records into raw columns,
// padding short rows with empty cells.
func columnsFromRows(header []string, rows [][]string) ([]rawColumn, error) {
	names := normalizeHeader(header)
	cols := make([]rawColumn, len(names))
	for j, n := range names {
		cols[j] = rawColumn{name: n, cells: make([]string, len(rows))}
	}
	for i, rec := range rows {
		if len(rec) > len(names) {
			return nil, fmt.Errorf("row %d: expected %d fields, saw %d", i+2, len(names), len(rec))
		}
		for j := range rec {
			cols[j].cells[i] = rec[j]
		}
	}
	return cols, nil
}
