package fileinfo

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const chunkSize = 8 * 1024

// Mode selects how much content Read captures.
type Mode struct {
	Kind ContentKind
	// PreviewLength bounds the bytes read when Kind is ContentPartial.
	PreviewLength int64
}

// NoContent captures metadata only.
func NoContent() Mode { return Mode{Kind: ContentNone} }

// Preview captures at most n leading bytes. A non-positive n captures nothing.
func Preview(n int64) Mode {
	if n <= 0 {
		return NoContent()
	}
	return Mode{Kind: ContentPartial, PreviewLength: n}
}

// FullContent captures the whole file.
func FullContent() Mode { return Mode{Kind: ContentFull} }

func (m Mode) normalized() Mode {
	if m.Kind == ContentPartial {
		return Preview(m.PreviewLength)
	}
	return m
}

// Read stats the file at path and captures its content according to mode.
// The returned Record's Path is path itself; Gather rewrites it to the
// root-relative form.
func Read(path string, mode Mode) (Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Record{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Record{}, err
	}
	record := NewRecord(path, info.Size())

	switch mode = mode.normalized(); mode.Kind {
	case ContentNone:
		return record, nil
	case ContentPartial:
		data, err := readBounded(f, min(mode.PreviewLength, info.Size()))
		if err != nil {
			return Record{}, err
		}
		if int64(len(data)) >= info.Size() {
			return record.WithFull(decode(data, false)), nil
		}
		return record.WithPreview(decode(data, true), int64(len(data))), nil
	default:
		data, err := readBounded(f, info.Size())
		if err != nil {
			return Record{}, err
		}
		return record.WithFull(decode(data, false)), nil
	}
}

func readBounded(r io.Reader, limit int64) ([]byte, error) {
	buffer := make([]byte, 0, limit)
	chunk := make([]byte, chunkSize)
	for int64(len(buffer)) < limit {
		want := min(limit-int64(len(buffer)), int64(len(chunk)))
		n, err := r.Read(chunk[:want])
		buffer = append(buffer, chunk[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read content: %w", err)
		}
	}
	return buffer, nil
}

// decode returns data as text, or as space separated hex bytes when it is
// not valid UTF-8. A truncated preview may end inside a multi-byte rune; that
// tail is dropped before validation.
func decode(data []byte, truncated bool) string {
	if truncated {
		data = trimPartialRune(data)
	}
	if utf8.Valid(data) {
		return string(data)
	}
	return hexDump(data)
}

func trimPartialRune(data []byte) []byte {
	for cut := 1; cut < utf8.UTFMax && cut <= len(data); cut++ {
		start := len(data) - cut
		if !utf8.RuneStart(data[start]) {
			continue
		}
		if !utf8.FullRune(data[start:]) {
			return data[:start]
		}
		break
	}
	return data
}

func hexDump(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(len(data) * 3)
	for i, c := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(hex.EncodeToString([]byte{c}))
	}
	return b.String()
}

// Gather reads every path under root concurrently and returns the records in
// input order. paths are slash separated and relative to root. Files that
// cannot be read are logged and dropped.
func Gather(ctx context.Context, root string, paths []string, mode Mode, logger *zap.Logger) ([]Record, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]*Record, len(paths))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())

	for i, relPath := range paths {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			record, err := Read(filepath.Join(root, filepath.FromSlash(relPath)), mode)
			if err != nil {
				logger.Warn("Error processing file", zap.String("path", relPath), zap.Error(err))
				return nil
			}
			record.Path = relPath
			results[i] = &record
			logger.Debug("Read file",
				zap.String("path", relPath),
				zap.Int64("size", record.Size),
				zap.Stringer("content", record.Kind()),
			)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("failed to gather files: %w", err)
	}

	records := make([]Record, 0, len(paths))
	for _, record := range results {
		if record != nil {
			records = append(records, *record)
		}
	}
	return records, nil
}
