// Package fileinfo describes the files collected for a document: their path,
// size and the captured content, along with the readers that produce them.
package fileinfo

// ContentKind tells how much of a file's content a Record carries.
type ContentKind int

const (
	// ContentNone means no content was requested for the file.
	ContentNone ContentKind = iota
	// ContentPartial means only a leading preview of the file was captured.
	ContentPartial
	// ContentFull means every byte of the file was captured.
	ContentFull
)

func (k ContentKind) String() string {
	switch k {
	case ContentPartial:
		return "partial"
	case ContentFull:
		return "full"
	default:
		return "none"
	}
}

// Record is a single collected file. Records are values; the zero value of
// the content fields means ContentNone.
type Record struct {
	// Path is the file's path relative to the scanned root, slash separated.
	Path string
	// Size is the file's size in bytes at the time it was read.
	Size int64

	kind      ContentKind
	text      string
	bytesRead int64
}

// NewRecord creates a Record without content.
func NewRecord(path string, size int64) Record {
	return Record{Path: path, Size: size}
}

// WithPreview returns a copy of r carrying a truncated preview. bytesRead is
// the number of source bytes the preview was decoded from.
func (r Record) WithPreview(text string, bytesRead int64) Record {
	r.kind = ContentPartial
	r.text = text
	r.bytesRead = bytesRead
	return r
}

// WithFull returns a copy of r carrying the complete file content.
func (r Record) WithFull(text string) Record {
	r.kind = ContentFull
	r.text = text
	r.bytesRead = r.Size
	return r
}

// Kind reports how much content the record carries.
func (r Record) Kind() ContentKind {
	return r.kind
}

// Content returns the captured text and whether any content was captured.
func (r Record) Content() (string, bool) {
	if r.kind == ContentNone {
		return "", false
	}
	return r.text, true
}

// Complete reports whether the captured content holds the entire file.
func (r Record) Complete() bool {
	return r.kind == ContentFull
}

// BytesRead is the number of source bytes behind the captured content.
func (r Record) BytesRead() int64 {
	if r.kind == ContentNone {
		return 0
	}
	return r.bytesRead
}
