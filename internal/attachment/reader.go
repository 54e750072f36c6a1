// Package attachment turns local files into inline blobs for a user turn.
package attachment

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxBytes bounds a single attachment before encoding.
const DefaultMaxBytes int64 = 20 << 20

// Reader loads attachment files. The MIME type is detected from content,
// falling back to the file extension when detection is inconclusive.
type Reader struct {
	MaxBytes int64
}

func NewReader(maxBytes int64) *Reader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Reader{MaxBytes: maxBytes}
}

// ErrTooLarge reports a file over the configured limit.
type ErrTooLarge struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *ErrTooLarge) Error() string {
	return fmt.Sprintf("%s is %d bytes, limit is %d", e.Path, e.Size, e.Limit)
}

// ReadAsBlob returns the detected MIME type and raw bytes of path.
func (r *Reader) ReadAsBlob(path string) (string, []byte, error) {
	limit := r.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", nil, err
	}
	if info.IsDir() {
		return "", nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > limit {
		return "", nil, &ErrTooLarge{Path: path, Size: info.Size(), Limit: limit}
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return "", nil, err
	}
	if int64(len(data)) > limit {
		return "", nil, &ErrTooLarge{Path: path, Size: int64(len(data)), Limit: limit}
	}
	return DetectMIME(path, data), data, nil
}

// DetectMIME sniffs data and returns a media type without parameters.
func DetectMIME(path string, data []byte) string {
	detected := mimetype.Detect(data)
	if byExt := extensionType(path); byExt != "" {
		if detected.Is("text/plain") || detected.Is("application/octet-stream") {
			return byExt
		}
	}
	return baseType(detected.String())
}

func baseType(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		return strings.TrimSpace(mime[:i])
	}
	return mime
}

// extensionType maps a few text formats that content sniffing reports as
// text/plain.
func extensionType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "text/markdown"
	case ".csv":
		return "text/csv"
	case ".html", ".htm":
		return "text/html"
	case ".json":
		return "application/json"
	default:
		return ""
	}
}

// ListDir returns the direct children of dir, each joined onto dir,
// sorted by name. Hidden entries are skipped.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		out = append(out, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(out)
	return out, nil
}
