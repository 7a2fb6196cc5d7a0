package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/lookbook/internal/domain/imagematch"
	"github.com/okian/lookbook/pkg/metrics"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var indexColumns = []string{"filename", "gender", "color", "style", "category"}

// LoadImageIndex reads the image label index at path. Files ending in
// .json hold an array of entries; anything else is read as CSV with a
// header row naming filename, gender, color, style and category.
func LoadImageIndex(ctx context.Context, path string) ([]imagematch.Entry, error) {
	start := time.Now()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadIndex, err)
	}

	var entries []imagematch.Entry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		entries, err = DecodeImageIndexJSON(ctx, bytes.NewReader(raw))
	case ".csv", "":
		entries, err = DecodeImageIndexCSV(bytes.NewReader(raw))
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadIndex, path, err)
	}
	metrics.RecordLoadDuration("image_index", float64(time.Since(start).Milliseconds()))
	return entries, nil
}

// DecodeImageIndexCSV reads index rows from CSV. A leading UTF-8 BOM is
// skipped and columns are located by header name, in any order.
func DecodeImageIndexCSV(r io.Reader) ([]imagematch.Entry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, utf8BOM)))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedRecord, err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range indexColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedRecord, name)
		}
	}

	var entries []imagematch.Entry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedRecord, line, err)
		}
		field := func(name string) string {
			if i := col[name]; i < len(rec) {
				return rec[i]
			}
			return ""
		}
		entries = append(entries, imagematch.Entry{
			Filename: field("filename"),
			Gender:   field("gender"),
			Color:    field("color"),
			Style:    field("style"),
			Category: field("category"),
		})
	}
	return entries, nil
}

// DecodeImageIndexJSON reads index rows from a JSON array.
func DecodeImageIndexJSON(ctx context.Context, r io.Reader) ([]imagematch.Entry, error) {
	var entries []imagematch.Entry
	if err := json.NewDecoder(r).DecodeContext(ctx, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return entries, nil
}
