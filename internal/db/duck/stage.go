package duck

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"
)

type compression int

const (
	compressionNone compression = iota
	compressionGzip
	compressionBzip2
	compressionXZ
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte{0x42, 0x5a, 0x68}
	xzMagic    = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
)

var compressedExts = []string{".gz", ".gzip", ".bz2", ".xz"}

// stage returns a path DuckDB can read in place of path, and a cleanup
// func removing anything it wrote. Compressed files are decompressed and
// spreadsheets converted to CSV in a temp dir.
func stage(path string) (string, func(), error) {
	noop := func() {}

	comp, err := detectCompression(path)
	if err != nil {
		return "", noop, err
	}
	inner := innerName(path)
	isSheet := strings.EqualFold(filepath.Ext(inner), ".xlsx")
	if comp == compressionNone && !isSheet {
		return path, noop, nil
	}

	dir, err := os.MkdirTemp("", "omnipg-")
	if err != nil {
		return "", noop, errors.Wrap(err, "failed to create staging dir")
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	staged := path
	if comp != compressionNone {
		staged = filepath.Join(dir, inner)
		if err := decompress(path, staged, comp); err != nil {
			cleanup()
			return "", noop, err
		}
	}
	if isSheet {
		out := filepath.Join(dir, strings.TrimSuffix(inner, filepath.Ext(inner))+".csv")
		if err := sheetToCSV(staged, out); err != nil {
			cleanup()
			return "", noop, err
		}
		staged = out
	}
	return staged, cleanup, nil
}

// innerName strips a compression suffix from the file name
func innerName(path string) string {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))
	for _, c := range compressedExts {
		if ext == c {
			return strings.TrimSuffix(name, filepath.Ext(name))
		}
	}
	return name
}

func detectCompression(path string) (compression, error) {
	f, err := os.Open(path)
	if err != nil {
		return compressionNone, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	header := make([]byte, len(xzMagic))
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return compressionNone, errors.Wrapf(err, "failed to read %s", path)
	}
	header = header[:n]

	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return compressionGzip, nil
	case bytes.HasPrefix(header, bzip2Magic):
		return compressionBzip2, nil
	case bytes.HasPrefix(header, xzMagic):
		return compressionXZ, nil
	}
	return compressionNone, nil
}

func decompress(src, dst string, comp compression) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", src)
	}
	defer in.Close()

	var r io.Reader
	switch comp {
	case compressionGzip:
		gz, err := gzip.NewReader(in)
		if err != nil {
			return errors.Wrap(err, "failed to create gzip reader")
		}
		defer gz.Close()
		r = gz
	case compressionBzip2:
		r = bzip2.NewReader(in)
	case compressionXZ:
		xr, err := xz.NewReader(in)
		if err != nil {
			return errors.Wrap(err, "failed to create xz reader")
		}
		r = xr
	default:
		return errors.Errorf("unsupported compression %d", comp)
	}

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrap(err, "failed to create staged file")
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, "failed to decompress %s", src)
	}
	return errors.Wrap(out.Close(), "failed to write staged file")
}

// sheetToCSV writes the first sheet of an xlsx workbook as CSV. Short rows
// are padded to the header width.
func sheetToCSV(src, dst string) error {
	f, err := excelize.OpenFile(src)
	if err != nil {
		return errors.Wrapf(err, "failed to open workbook %s", src)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return errors.New("no sheets found in workbook")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return errors.Wrapf(err, "failed to read sheet %s", sheets[0])
	}
	if len(rows) == 0 {
		return errors.Errorf("sheet %s is empty", sheets[0])
	}

	width := len(rows[0])
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		if err := w.Write(row[:width]); err != nil {
			return errors.Wrap(err, "failed to write CSV")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "failed to write CSV")
	}
	return errors.Wrap(os.WriteFile(dst, buf.Bytes(), 0o600), "failed to write staged CSV")
}
