package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/vietanh2810/school-portal/internal/domain"
)

const sniffLen = 512

var (
	ErrFileNotFound    = errors.New("file not found")
	ErrFileTooLarge    = errors.New("file is too large")
	ErrInvalidFileName = errors.New("invalid file name")
)

// DiskStore keeps uploaded blobs flat in one directory under generated names.
type DiskStore struct {
	dir     string
	maxSize int64
}

func NewDiskStore(dir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%s) -> %w", dir, err)
	}

	return &DiskStore{
		dir:     dir,
		maxSize: maxSize,
	}, nil
}

// Save writes r under a new name that keeps the extension of originalName.
// Content over the size limit is discarded and ErrFileTooLarge returned.
func (s *DiskStore) Save(originalName string, r io.Reader) (domain.StoredFile, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return domain.StoredFile{}, fmt.Errorf("io.ReadFull -> %w", err)
	}
	head = head[:n]

	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return domain.StoredFile{}, fmt.Errorf("os.OpenFile -> %w", err)
	}

	body := io.MultiReader(bytes.NewReader(head), r)
	written, err := io.Copy(f, io.LimitReader(body, s.maxSize+1))
	closeErr := f.Close()
	if err == nil && written > s.maxSize {
		err = ErrFileTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrFileTooLarge) {
			return domain.StoredFile{}, err
		}
		return domain.StoredFile{}, fmt.Errorf("io.Copy -> %w", err)
	}

	return domain.StoredFile{
		Name:         name,
		OriginalName: filepath.Base(originalName),
		ContentType:  mimetype.Detect(head).String(),
		Size:         written,
	}, nil
}

// Open returns the blob stored under name. The caller closes it.
func (s *DiskStore) Open(name string) (io.ReadSeekCloser, domain.StoredFile, error) {
	if !validName(name) {
		return nil, domain.StoredFile{}, ErrInvalidFileName
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.StoredFile{}, ErrFileNotFound
		}
		return nil, domain.StoredFile{}, fmt.Errorf("os.Open -> %w", err)
	}

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, domain.StoredFile{}, ErrFileNotFound
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		_ = f.Close()
		return nil, domain.StoredFile{}, fmt.Errorf("mimetype.DetectReader -> %w", err)
	}
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, domain.StoredFile{}, fmt.Errorf("f.Seek -> %w", err)
	}

	return f, domain.StoredFile{
		Name:        name,
		ContentType: mtype.String(),
		Size:        info.Size(),
	}, nil
}

// Remove deletes the blob stored under name.
func (s *DiskStore) Remove(name string) error {
	if !validName(name) {
		return ErrInvalidFileName
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrFileNotFound
		}
		return fmt.Errorf("os.Remove -> %w", err)
	}

	return nil
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		filepath.Base(name) == name && !strings.ContainsAny(name, `/\`)
}
