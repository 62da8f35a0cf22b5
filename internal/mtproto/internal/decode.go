package internal

import (
	"encoding/base64"
	"fmt"

	"github.com/gotd/td/bin"
)

// ParseFileID decodes a Bot API file_id.
func ParseFileID(fileID string) (*FileInfo, error) {
	data, err := decodeRLE(fileID)
	if err != nil {
		return nil, err
	}
	if len(data) < 2 {
		return nil, ErrTruncated
	}

	info := &FileInfo{Version: int(data[len(data)-1])}
	if info.Version == 4 {
		info.SubVersion = int(data[len(data)-2])
	}

	b := &bin.Buffer{Buf: data}
	rawType, err := b.Int32()
	if err != nil {
		return nil, fmt.Errorf("read type: %w", err)
	}
	info.Type = FileIDType(rawType &^ (WebLocationFlag | FileReferenceFlag))

	dc, err := b.Int32()
	if err != nil {
		return nil, fmt.Errorf("read dc: %w", err)
	}
	info.DatacenterID = int(dc)

	if rawType&FileReferenceFlag != 0 {
		if info.FileReference, err = b.Bytes(); err != nil {
			return nil, fmt.Errorf("read file reference: %w", err)
		}
	}

	if rawType&WebLocationFlag != 0 {
		if info.URL, err = b.String(); err != nil {
			return nil, fmt.Errorf("read url: %w", err)
		}
		if info.AccessHash, err = b.Long(); err != nil {
			return nil, fmt.Errorf("read access hash: %w", err)
		}
		return info, nil
	}

	if info.ID, err = b.Long(); err != nil {
		return nil, fmt.Errorf("read id: %w", err)
	}
	if info.AccessHash, err = b.Long(); err != nil {
		return nil, fmt.Errorf("read access hash: %w", err)
	}

	if info.Type <= IDPhoto {
		if info.PhotoInfo, err = readPhotoInfo(b, info.SubVersion); err != nil {
			return nil, fmt.Errorf("read photo info: %w", err)
		}
	}
	return info, nil
}

func readPhotoInfo(b *bin.Buffer, subVersion int) (*PhotoInfo, error) {
	info := &PhotoInfo{}

	var err error
	if subVersion < 32 {
		if info.VolumeID, err = b.Long(); err != nil {
			return nil, err
		}
	}

	sourceType := SourceLegacy
	if subVersion >= 22 {
		raw, err := b.Uint32()
		if err != nil {
			return nil, err
		}
		sourceType = PhotoSizeSourceType(raw)
	}

	switch sourceType {
	case SourceLegacy, SourceFullLegacy:
		secret, err := b.Long()
		if err != nil {
			return nil, err
		}
		info.Source = &PhotoSizeSourceLegacy{Secret: secret}
	case SourceThumbnail:
		fileType, err := b.Int32()
		if err != nil {
			return nil, err
		}
		thumbType, err := b.Int32()
		if err != nil {
			return nil, err
		}
		info.Source = &PhotoSizeSourceThumbnail{
			FileType:      FileIDType(fileType),
			ThumbnailType: string(rune(thumbType & 0xff)),
		}
	case SourceDialogPhotoSmall, SourceDialogPhotoSmallLegacy, SourceDialogPhotoBig, SourceDialogPhotoBigLegacy:
		dialog := &PhotoSizeSourceDialogPhoto{
			Big: sourceType == SourceDialogPhotoBig || sourceType == SourceDialogPhotoBigLegacy,
		}
		if dialog.DialogID, err = b.Long(); err != nil {
			return nil, err
		}
		if dialog.DialogAccessHash, err = b.Long(); err != nil {
			return nil, err
		}
		info.Source = dialog
	case SourceStickerSetThumbnail, SourceStickerSetThumbnailLegacy, SourceStickerSetThumbnailVersion:
		set := &PhotoSizeSourceStickerSetThumbnail{}
		if set.ID, err = b.Long(); err != nil {
			return nil, err
		}
		if set.AccessHash, err = b.Long(); err != nil {
			return nil, err
		}
		if sourceType == SourceStickerSetThumbnailVersion {
			if set.Version, err = b.Int32(); err != nil {
				return nil, err
			}
		}
		info.Source = set
	default:
		return nil, fmt.Errorf("unknown photo size source %d", sourceType)
	}

	if sourceType == SourceFullLegacy || (subVersion >= 22 && subVersion < 32) {
		if info.LocalID, err = b.Int32(); err != nil {
			return nil, err
		}
	}
	return info, nil
}

// decodeRLE undoes base64url and the zero-run compression Bot API applies to file ids.
func decodeRLE(s string) ([]byte, error) {
	rle, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}

	decoded := make([]byte, 0, len(rle))
	for i := 0; i < len(rle); i++ {
		if rle[i] != 0x00 || i+1 >= len(rle) {
			decoded = append(decoded, rle[i])
			continue
		}
		count := int(rle[i+1])
		if count == 0 {
			count = 1
		}
		for range count {
			decoded = append(decoded, 0x00)
		}
		i++
	}
	return decoded, nil
}
