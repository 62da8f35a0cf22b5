package media

import (
	"context"
	"os"
	"sync"

	"github.com/gotd/td/tg"
)

// mockClient records requested locations and writes content to the destination.
type mockClient struct {
	mu        sync.Mutex
	locations []tg.InputFileLocationClass
	paths     []string
	content   []byte
	err       error
}

func (m *mockClient) DownloadMediaAtLocation(ctx context.Context, location tg.InputFileLocationClass, path string) error {
	m.mu.Lock()
	m.locations = append(m.locations, location)
	m.paths = append(m.paths, path)
	m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	return os.WriteFile(path, m.content, 0o644)
}

func (m *mockClient) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locations)
}

func testPhoto(sizes ...tg.PhotoSizeClass) *tg.Photo {
	return &tg.Photo{
		ID:            100,
		AccessHash:    200,
		FileReference: []byte{1, 2, 3},
		Sizes:         sizes,
	}
}

func testDocument() *tg.Document {
	return &tg.Document{
		ID:            300,
		AccessHash:    400,
		FileReference: []byte{4, 5, 6},
		MimeType:      "application/pdf",
		Size:          2048,
		Attributes: []tg.DocumentAttributeClass{
			&tg.DocumentAttributeFilename{FileName: "model.stl"},
		},
	}
}
