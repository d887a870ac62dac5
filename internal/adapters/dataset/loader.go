// Package dataset discovers, parses and decodes the CSV tables a report is
// built from.
package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/okian/recap/pkg/logger"
	"github.com/okian/recap/pkg/metrics"
)

const defaultExtension = ".csv"

var bom = []byte("\xef\xbb\xbf")

// Table is a parsed dataset: a header row plus string cells.
type Table struct {
	Name    string
	Path    string
	Headers []string
	Rows    [][]string
}

// Source loads tables by dataset name.
type Source interface {
	Load(ctx context.Context, name string) (*Table, error)
}

// Loader reads datasets from a single directory.
type Loader struct {
	dir string
	ext string
	log logger.Logger
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string, opts ...Option) *Loader {
	l := &Loader{
		dir: dir,
		ext: defaultExtension,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logger.Get().Named("dataset")
	}
	return l
}

// Dir returns the directory datasets are read from.
func (l *Loader) Dir() string { return l.dir }

// CheckDir reports ErrDirectoryMissing when the data directory is absent.
func (l *Loader) CheckDir() error {
	info, err := os.Stat(l.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrDirectoryMissing, l.dir)
		}
		return fmt.Errorf("stat data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrDirectoryMissing, l.dir)
	}
	return nil
}

// Find returns the path of the file for name. File names are compared in
// both composed (NFC) and decomposed (NFD) form, so a name typed on one
// platform matches a file written by another.
func (l *Loader) Find(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := l.CheckDir(); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return "", fmt.Errorf("read data directory: %w", err)
	}

	want := l.stem(name)
	for _, e := range entries {
		if e.IsDir() || !l.hasExt(e.Name()) {
			continue
		}
		if sameName(l.stem(e.Name()), want) {
			return filepath.Join(l.dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
}

// Load finds and parses the dataset called name.
func (l *Loader) Load(ctx context.Context, name string) (*Table, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDatasetLoadLatency(name, float64(time.Since(start).Nanoseconds())/1e6)
	}()

	path, err := l.Find(ctx, name)
	if err != nil {
		metrics.RecordDatasetLoad(name, resultLabel(err))
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		metrics.RecordDatasetLoad(name, "error")
		return nil, fmt.Errorf("read dataset %s: %w", name, err)
	}

	t, err := parse(raw)
	if err != nil {
		metrics.RecordDatasetLoad(name, "malformed")
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedDataset, name, err)
	}
	t.Name = name
	t.Path = path

	metrics.RecordDatasetLoad(name, "ok")
	metrics.UpdateDatasetRows(name, len(t.Rows))
	l.log.Debug(ctx, "dataset loaded",
		logger.String("dataset", name),
		logger.String("path", path),
		logger.Int("rows", len(t.Rows)))
	return t, nil
}

func (l *Loader) hasExt(file string) bool {
	return strings.EqualFold(filepath.Ext(file), l.ext)
}

func (l *Loader) stem(file string) string {
	if l.hasExt(file) {
		file = file[:len(file)-len(filepath.Ext(file))]
	}
	return strings.TrimSpace(file)
}

func sameName(a, b string) bool {
	return norm.NFC.String(a) == norm.NFC.String(b) || norm.NFD.String(a) == norm.NFD.String(b)
}

func parse(raw []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, bom)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, err
	}

	t := &Table{Headers: make([]string, len(header))}
	for i, h := range header {
		t.Headers[i] = normalizeHeader(h)
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if blank(rec) {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func normalizeHeader(h string) string {
	return norm.NFC.String(strings.TrimSpace(h))
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrDirectoryMissing):
		return "directory_missing"
	case errors.Is(err, ErrDatasetNotFound):
		return "not_found"
	case errors.Is(err, ErrMalformedDataset):
		return "malformed"
	default:
		return "error"
	}
}
