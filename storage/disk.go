package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"agency-cms/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	FolderNewsletter = "newsletter"
	FolderUser       = "user"
	FolderPortfolio  = "portfolio"
)

var allowedImageTypes = []string{"image/jpeg", "image/png"}

// Disk stores uploads under Root/<folder>/<filename>.
type Disk struct {
	root     string
	maxBytes int64
}

func NewDisk(root string, maxBytes int64) *Disk {
	return &Disk{root: root, maxBytes: maxBytes}
}

// Root returns the directory served as /uploads.
func (d *Disk) Root() string {
	return d.root
}

// SaveImage validates a jpeg/png upload and writes it with a randomized name.
func (d *Disk) SaveImage(folder string, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", models.ErrFileRequired
	}
	if fh.Size > d.maxBytes {
		return "", models.ErrFileTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect upload type: %w", err)
	}
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return "", models.ErrInvalidImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	dir := filepath.Join(d.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString()[:8], cleanName(fh.Filename))
	dst, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}

	n, err := io.Copy(dst, io.LimitReader(src, d.maxBytes+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > d.maxBytes {
		err = models.ErrFileTooLarge
	}
	if err != nil {
		os.Remove(filepath.Join(dir, name))
		return "", err
	}
	return name, nil
}

// Delete removes a stored file. The shared default photo is never removed.
// A missing file is reported as os.ErrNotExist.
func (d *Disk) Delete(folder, name string) error {
	if name == "" || name == models.DefaultPhoto {
		return nil
	}
	return os.Remove(d.Path(folder, name))
}

func (d *Disk) Path(folder, name string) string {
	return filepath.Join(d.root, folder, filepath.Base(name))
}

func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
	if name == "" || name == "." || name == "/" {
		return "upload"
	}
	return name
}
