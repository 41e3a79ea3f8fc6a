// Package filedownload saves finished clips into an output directory.
package filedownload

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/vidreview/pkg/ports"
)

// ErrEmpty is returned for a download with no data.
var ErrEmpty = errors.New("filedownload: empty file")

// maxSuffix bounds the search for a free file name.
const maxSuffix = 1000

// Downloader implements ports.Downloader on a ports.FileSystem. Existing
// files are never overwritten; a numeric suffix is added instead.
type Downloader struct {
	dir    string
	fs     ports.FileSystem
	logger ports.Logger
}

func New(dir string, fs ports.FileSystem, logger ports.Logger) *Downloader {
	return &Downloader{dir: dir, fs: fs, logger: logger.WithComponent("download")}
}

func (d *Downloader) Download(name, mimeType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	name = filepath.Base(name)
	if err := d.fs.MkdirAll(d.dir); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path, err := d.freePath(name)
	if err != nil {
		return "", err
	}
	if err := d.fs.WriteFile(path, data); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	d.logger.Debug("Wrote %s (%s, %d bytes)", path, mimeType, len(data))
	return path, nil
}

func (d *Downloader) freePath(name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < maxSuffix; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		path := filepath.Join(d.dir, candidate)
		exists, err := d.fs.Exists(path)
		if err != nil {
			return "", fmt.Errorf("check %s: %w", path, err)
		}
		if !exists {
			return path, nil
		}
	}
	return "", fmt.Errorf("filedownload: no free name for %s", name)
}

var _ ports.Downloader = (*Downloader)(nil)
