package media

import (
	"log/slog"
	"reflect"

	"github.com/gotd/td/tg"
)

type Photo struct {
	raw    *tg.MessageMediaPhoto
	client Client
}

// NewPhoto wraps a bare photo, e.g. one taken from a profile or a web page.
func NewPhoto(photo tg.PhotoClass, client Client) *Photo {
	return &Photo{
		raw:    &tg.MessageMediaPhoto{Photo: photo},
		client: client,
	}
}

func (p *Photo) media() {}

func (p *Photo) Raw() *tg.MessageMediaPhoto {
	return p.raw
}

func (p *Photo) ID() (int64, error) {
	switch photo := p.raw.Photo.(type) {
	case *tg.Photo:
		return photo.ID, nil
	case *tg.PhotoEmpty:
		return photo.ID, nil
	default:
		return 0, ErrMissingInner
	}
}

// Thumbs lists every size the photo is available in, in record order.
func (p *Photo) Thumbs() []PhotoSize {
	photo, ok := p.raw.Photo.(*tg.Photo)
	if !ok {
		return []PhotoSize{}
	}

	thumbs := make([]PhotoSize, 0, len(photo.Sizes))
	for _, raw := range photo.Sizes {
		size, ok := newPhotoSize(raw, photo, p.client)
		if !ok {
			slog.Debug("Skipping unknown photo size", "photoID", photo.ID)
			continue
		}
		thumbs = append(thumbs, size)
	}
	return thumbs
}

// InputLocation addresses the photo itself; the thumbnail tag is left empty.
func (p *Photo) InputLocation() (tg.InputFileLocationClass, bool) {
	photo, ok := p.raw.Photo.(*tg.Photo)
	if !ok {
		return nil, false
	}
	return &tg.InputPhotoFileLocation{
		ID:            photo.ID,
		AccessHash:    photo.AccessHash,
		FileReference: photo.FileReference,
	}, true
}

func (p *Photo) Equal(other *Photo) bool {
	if p == nil || other == nil {
		return p == other
	}
	return reflect.DeepEqual(p.raw, other.raw)
}

func (p *Photo) String() string {
	return p.raw.String()
}
