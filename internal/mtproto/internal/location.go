package internal

import (
	"github.com/gotd/td/tg"
)

const defaultPhotoThumb = "y"

// Location builds the MTProto locator the file_id refers to.
func (f *FileInfo) Location() (tg.InputFileLocationClass, error) {
	if f.URL != "" {
		return nil, ErrWebLocation
	}

	switch {
	case f.Type == IDPhoto:
		return &tg.InputPhotoFileLocation{
			ID:            f.ID,
			AccessHash:    f.AccessHash,
			FileReference: f.FileReference,
			ThumbSize:     f.thumbType(defaultPhotoThumb),
		}, nil
	case f.Type == IDThumbnail:
		thumb, ok := f.thumbnail()
		if !ok {
			return nil, ErrUnsupportedFileType
		}
		if thumb.FileType == IDPhoto {
			return &tg.InputPhotoFileLocation{
				ID:            f.ID,
				AccessHash:    f.AccessHash,
				FileReference: f.FileReference,
				ThumbSize:     thumb.ThumbnailType,
			}, nil
		}
		return &tg.InputDocumentFileLocation{
			ID:            f.ID,
			AccessHash:    f.AccessHash,
			FileReference: f.FileReference,
			ThumbSize:     thumb.ThumbnailType,
		}, nil
	case f.Type.isDocument():
		return &tg.InputDocumentFileLocation{
			ID:            f.ID,
			AccessHash:    f.AccessHash,
			FileReference: f.FileReference,
		}, nil
	default:
		return nil, ErrUnsupportedFileType
	}
}

func (f *FileInfo) thumbnail() (*PhotoSizeSourceThumbnail, bool) {
	if f.PhotoInfo == nil {
		return nil, false
	}
	thumb, ok := f.PhotoInfo.Source.(*PhotoSizeSourceThumbnail)
	return thumb, ok
}

func (f *FileInfo) thumbType(fallback string) string {
	if thumb, ok := f.thumbnail(); ok {
		return thumb.ThumbnailType
	}
	return fallback
}
