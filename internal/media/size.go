package media

import (
	"context"
	"fmt"
	"os"

	"github.com/gotd/td/tg"
)

// PhotoSize is one of *SizeEmpty, *Size, *CachedSize, *StrippedSize,
// *ProgressiveSize or *PathSize.
type PhotoSize interface {
	PhotoType() string
	Size() int64
	Download(ctx context.Context, path string) error
	photoSize()
}

type SizeEmpty struct {
	photoType string
}

// Size is a thumbnail whose bytes live on the server. It keeps the
// identity of the photo it belongs to.
type Size struct {
	photoType string
	Width     int
	Height    int
	FileSize  int

	id            int64
	accessHash    int64
	fileReference []byte
	client        Client
}

type CachedSize struct {
	photoType string
	Width     int
	Height    int
	Bytes     []byte
}

type StrippedSize struct {
	photoType string
	Bytes     []byte
}

// ProgressiveSize holds the lengths of the cumulative JPEG scans rather
// than the bytes.
type ProgressiveSize struct {
	photoType string
	Width     int
	Height    int
	Sizes     []int
}

// PathSize holds an encoded vector outline of the image.
type PathSize struct {
	photoType string
	Bytes     []byte
}

func newPhotoSize(raw tg.PhotoSizeClass, photo *tg.Photo, client Client) (PhotoSize, bool) {
	switch size := raw.(type) {
	case *tg.PhotoSizeEmpty:
		return &SizeEmpty{photoType: size.Type}, true
	case *tg.PhotoSize:
		return &Size{
			photoType:     size.Type,
			Width:         size.W,
			Height:        size.H,
			FileSize:      size.Size,
			id:            photo.ID,
			accessHash:    photo.AccessHash,
			fileReference: photo.FileReference,
			client:        client,
		}, true
	case *tg.PhotoCachedSize:
		return &CachedSize{photoType: size.Type, Width: size.W, Height: size.H, Bytes: size.Bytes}, true
	case *tg.PhotoStrippedSize:
		return &StrippedSize{photoType: size.Type, Bytes: size.Bytes}, true
	case *tg.PhotoSizeProgressive:
		return &ProgressiveSize{photoType: size.Type, Width: size.W, Height: size.H, Sizes: size.Sizes}, true
	case *tg.PhotoPathSize:
		return &PathSize{photoType: size.Type, Bytes: size.Bytes}, true
	default:
		return nil, false
	}
}

func (s *SizeEmpty) photoSize()       {}
func (s *Size) photoSize()            {}
func (s *CachedSize) photoSize()      {}
func (s *StrippedSize) photoSize()    {}
func (s *ProgressiveSize) photoSize() {}
func (s *PathSize) photoSize()        {}

func (s *SizeEmpty) PhotoType() string       { return s.photoType }
func (s *Size) PhotoType() string            { return s.photoType }
func (s *CachedSize) PhotoType() string      { return s.photoType }
func (s *StrippedSize) PhotoType() string    { return s.photoType }
func (s *ProgressiveSize) PhotoType() string { return s.photoType }
func (s *PathSize) PhotoType() string        { return s.photoType }

func (s *SizeEmpty) Size() int64 {
	return 0
}

func (s *Size) Size() int64 {
	return int64(s.FileSize)
}

func (s *CachedSize) Size() int64 {
	return int64(len(s.Bytes))
}

func (s *StrippedSize) Size() int64 {
	return int64(len(s.Bytes))
}

func (s *ProgressiveSize) Size() int64 {
	var total int64
	for _, scan := range s.Sizes {
		total += int64(scan)
	}
	return total
}

func (s *PathSize) Size() int64 {
	return int64(len(s.Bytes))
}

func (s *SizeEmpty) Download(ctx context.Context, path string) error {
	return writeFile(path, nil)
}

// InputLocation addresses this thumbnail of the parent photo.
func (s *Size) InputLocation() tg.InputFileLocationClass {
	return &tg.InputPhotoFileLocation{
		ID:            s.id,
		AccessHash:    s.accessHash,
		FileReference: s.fileReference,
		ThumbSize:     s.photoType,
	}
}

func (s *Size) Download(ctx context.Context, path string) error {
	if s.client == nil {
		return ErrNoClient
	}

	location := s.InputLocation()
	if err := s.client.DownloadMediaAtLocation(ctx, location, path); err != nil {
		return &ErrTransferFailed{Location: location, Path: path, Err: err}
	}
	return nil
}

func (s *CachedSize) Download(ctx context.Context, path string) error {
	return writeFile(path, s.Bytes)
}

func (s *StrippedSize) Download(ctx context.Context, path string) error {
	return fmt.Errorf("stripped size %q: %w", s.photoType, ErrNotImplemented)
}

func (s *ProgressiveSize) Download(ctx context.Context, path string) error {
	return fmt.Errorf("progressive size %q: %w", s.photoType, ErrNotImplemented)
}

func (s *PathSize) Download(ctx context.Context, path string) error {
	return fmt.Errorf("path size %q: %w", s.photoType, ErrNotImplemented)
}

func writeFile(path string, data []byte) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}

	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return out.Close()
}
