package internal

import "errors"

const (
	WebLocationFlag   = int32(1 << 24)
	FileReferenceFlag = int32(1 << 25)
)

var (
	ErrWebLocation         = errors.New("file_id points to a web location")
	ErrUnsupportedFileType = errors.New("file_id type has no mtproto location")
	ErrTruncated           = errors.New("file_id is truncated")
)

type FileIDType int32

const (
	IDThumbnail FileIDType = iota
	IDProfilePhoto
	IDPhoto
	IDVoice
	IDVideo
	IDDocument
	IDEncrypted
	IDTemp
	IDSticker
	IDAudio
	IDAnimation
	IDEncryptedThumbnail
	IDWallpaper
	IDVideoNote
	IDSecureRaw
	IDSecure
	IDBackground
	IDSize
)

// FileInfo is the decoded content of a Bot API file_id.
type FileInfo struct {
	DatacenterID  int
	Type          FileIDType
	ID            int64
	AccessHash    int64
	FileReference []byte
	URL           string
	PhotoInfo     *PhotoInfo
	Version       int
	SubVersion    int
}

func (t FileIDType) isDocument() bool {
	switch t {
	case IDVoice, IDVideo, IDDocument, IDSticker, IDAudio, IDAnimation, IDVideoNote:
		return true
	default:
		return false
	}
}
