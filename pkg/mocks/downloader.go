package mocks

import (
	"github.com/user/vidreview/pkg/ports"
)

// Download records one Downloader call.
type Download struct {
	Name     string
	MimeType string
	Data     []byte
}

// Downloader is a mock implementation of ports.Downloader.
type Downloader struct {
	DownloadFunc func(name, mimeType string, data []byte) (string, error)
	Downloads    []Download
}

func (m *Downloader) Download(name, mimeType string, data []byte) (string, error) {
	m.Downloads = append(m.Downloads, Download{Name: name, MimeType: mimeType, Data: append([]byte(nil), data...)})
	if m.DownloadFunc != nil {
		return m.DownloadFunc(name, mimeType, data)
	}
	return "/downloads/" + name, nil
}

var _ ports.Downloader = (*Downloader)(nil)
