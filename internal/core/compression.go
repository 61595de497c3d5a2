package core

import (
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

var (
	// ErrUnsupportedFile is returned for names that are not (compressed) CSV.
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrDecompress wraps failures of the decompression layer.
	ErrDecompress = errors.New("decompression failed")
)

// Compression identifies how an upload is encoded.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGZ
	CompressionBZ2
	CompressionXZ
	CompressionZSTD
)

var compressionSuffixes = []struct {
	suffix string
	kind   Compression
}{
	{".csv.gz", CompressionGZ},
	{".csv.bz2", CompressionBZ2},
	{".csv.xz", CompressionXZ},
	{".csv.zst", CompressionZSTD},
	{".csv", CompressionNone},
}

// String returns the file extension of the compression layer.
func (c Compression) String() string {
	switch c {
	case CompressionGZ:
		return ".gz"
	case CompressionBZ2:
		return ".bz2"
	case CompressionXZ:
		return ".xz"
	case CompressionZSTD:
		return ".zst"
	default:
		return ""
	}
}

// DetectCompression maps a file name to its compression layer.
// Only .csv files, optionally compressed, are accepted.
func DetectCompression(fileName string) (Compression, error) {
	lower := strings.ToLower(strings.TrimSpace(fileName))
	for _, s := range compressionSuffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.kind, nil
		}
	}
	return CompressionNone, fmt.Errorf("%w: %q (expected .csv, .csv.gz, .csv.bz2, .csv.xz or .csv.zst)", ErrUnsupportedFile, fileName)
}

// SupportedExtensions lists the accepted upload suffixes.
func SupportedExtensions() []string {
	out := make([]string, len(compressionSuffixes))
	for i, s := range compressionSuffixes {
		out[i] = s.suffix
	}
	return out
}

// decompress wraps r with the decoder for c. The returned close function
// must be called once the reader is drained.
func decompress(c Compression, r io.Reader) (io.Reader, func(), error) {
	switch c {
	case CompressionNone:
		return r, func() {}, nil

	case CompressionGZ:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: gzip: %v", ErrDecompress, err)
		}
		return gz, func() { gz.Close() }, nil

	case CompressionBZ2:
		return bzip2.NewReader(r), func() {}, nil

	case CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: xz: %v", ErrDecompress, err)
		}
		return xr, func() {}, nil

	case CompressionZSTD:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: zstd: %v", ErrDecompress, err)
		}
		return dec, dec.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: compression %d", ErrUnsupportedFile, c)
	}
}

// decodeError marks mid-stream decoder failures so they map to ErrDecompress
// rather than a generic read error.
type decodeError struct {
	c   Compression
	err error
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrDecompress, strings.TrimPrefix(e.c.String(), "."), e.err)
}

func (e *decodeError) Unwrap() []error { return []error{ErrDecompress, e.err} }

// decodeErrorReader tags non-EOF errors from a decompressor.
type decodeErrorReader struct {
	c Compression
	r io.Reader
}

func (d decodeErrorReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if err != nil && err != io.EOF && !errors.Is(err, ErrFileTooLarge) {
		err = &decodeError{c: d.c, err: err}
	}
	return n, err
}
