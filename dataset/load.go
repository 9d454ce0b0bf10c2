package dataset

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for data files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported data format")

// LoadFile reads a .json, .jsonl/.ndjson or .csv export into a new Dataset.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	var cases []Case
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonl", ".ndjson":
		cases, err = DecodeJSON(f)
	case ".csv":
		cases, err = DecodeCSV(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	ds := New(cases, path)
	log.Printf("📊 Loaded %d cases from %s", ds.Len(), path)
	return ds, nil
}
