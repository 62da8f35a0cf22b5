package internal

type PhotoSizeSource interface {
	PhotoSizeSource()
}

type PhotoSizeSourceType uint32

const (
	SourceLegacy PhotoSizeSourceType = iota
	SourceThumbnail
	SourceDialogPhotoSmall
	SourceDialogPhotoBig
	SourceStickerSetThumbnail
	SourceFullLegacy
	SourceDialogPhotoSmallLegacy
	SourceDialogPhotoBigLegacy
	SourceStickerSetThumbnailLegacy
	SourceStickerSetThumbnailVersion
)

type PhotoSizeSourceLegacy struct {
	Secret int64
}

func (s *PhotoSizeSourceLegacy) PhotoSizeSource() {}

// PhotoSizeSourceThumbnail names one thumbnail of a photo or document.
type PhotoSizeSourceThumbnail struct {
	FileType      FileIDType
	ThumbnailType string
}

func (s *PhotoSizeSourceThumbnail) PhotoSizeSource() {}

type PhotoSizeSourceDialogPhoto struct {
	DialogID         int64
	DialogAccessHash int64
	Big              bool
}

func (s *PhotoSizeSourceDialogPhoto) PhotoSizeSource() {}

type PhotoSizeSourceStickerSetThumbnail struct {
	ID         int64
	AccessHash int64
	Version    int32
}

func (s *PhotoSizeSourceStickerSetThumbnail) PhotoSizeSource() {}

type PhotoInfo struct {
	Source   PhotoSizeSource
	VolumeID int64
	LocalID  int32
}
