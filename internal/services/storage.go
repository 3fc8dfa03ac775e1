package services

import (
	"fmt"
	"io"
	mathrand "math/rand"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// newFileID returns a lexicographically sortable name for a stored file.
func newFileID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String())
}

// StoredFile describes an upload written to disk.
type StoredFile struct {
	FileName     string
	OriginalName string
	URL          string
	MimeType     string
	Kind         string
	Size         int64
}

// LocalStorage keeps uploads in a directory served under URLPrefix.
type LocalStorage struct {
	Dir       string
	URLPrefix string
	MaxBytes  int64
}

func NewLocalStorage(dir, urlPrefix string, maxBytes int64) *LocalStorage {
	return &LocalStorage{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/"), MaxBytes: maxBytes}
}

// Save sniffs the content type, rejects anything but images and videos,
// and writes the file under a fresh ULID name.
func (s *LocalStorage) Save(fh *multipart.FileHeader) (*StoredFile, error) {
	if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
		return nil, invalidInput("%s exceeds the %d MB limit", fh.Filename, s.MaxBytes>>20)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, fmt.Errorf("detect content type: %w", err)
	}
	kind := kindOf(mtype.String())
	if kind == "" {
		return nil, ErrUnsupportedMedia
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	name := newFileID() + mtype.Extension()

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	dst, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	size, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.Dir, name))
		return nil, fmt.Errorf("write file: %w", err)
	}

	return &StoredFile{
		FileName:     name,
		OriginalName: filepath.Base(fh.Filename),
		URL:          s.URLPrefix + "/" + name,
		MimeType:     mtype.String(),
		Kind:         kind,
		Size:         size,
	}, nil
}

// Remove deletes a stored file; a missing file is not an error.
func (s *LocalStorage) Remove(name string) error {
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func kindOf(mime string) string {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return "image"
	case strings.HasPrefix(mime, "video/"):
		return "video"
	default:
		return ""
	}
}
