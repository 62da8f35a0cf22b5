package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
)

// Subtypes longer than this (vnd.*, x-*) make poor extensions.
const maxGuessedExtLen = 5

func prepareFilepath(filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}

	_, err := os.Stat(filePath)
	switch {
	case err == nil:
		return ErrFileExists
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return err
	}
}

func photoFilename(messageID int, photoID int64, photoType string) string {
	return fmt.Sprintf("%d_photo_%d_%s.jpg", messageID, photoID, photoType)
}

func documentFilename(messageID int, documentID int64, name, mimeType string) string {
	ext := filepath.Ext(name)
	base := slug.Make(strings.TrimSuffix(name, ext))
	if base == "" {
		return fmt.Sprintf("%d_document_%d%s", messageID, documentID, getExtFromMIME(mimeType))
	}
	return fmt.Sprintf("%d_%s%s", messageID, base, strings.ToLower(ext))
}

// fileIDFilename keeps the base64url alphabet of a file_id and replaces
// anything else, so the name cannot escape the download directory.
func fileIDFilename(fileID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, fileID)
	return "file_" + safe
}

func getExtFromMIME(mimeType string) string {
	mimeMap := map[string]string{
		"audio/mpeg":      ".mp3",
		"audio/ogg":       ".ogg",
		"audio/mp4":       ".m4a",
		"video/mp4":       ".mp4",
		"video/quicktime": ".mov",
		"video/webm":      ".webm",
		"application/pdf": ".pdf",
		"application/zip": ".zip",
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
		"image/gif":       ".gif",
		"image/webp":      ".webp",
		"model/stl":       ".stl",
	}

	if ext, ok := mimeMap[mimeType]; ok {
		return ext
	}

	_, subtype, ok := strings.Cut(mimeType, "/")
	if !ok {
		return ".bin"
	}
	subtype, _, _ = strings.Cut(subtype, ";")
	subtype, _, _ = strings.Cut(subtype, "+")
	subtype = strings.TrimSpace(subtype)

	if subtype == "" || len(subtype) > maxGuessedExtLen || strings.Contains(subtype, ".") {
		return ".bin"
	}
	return "." + strings.ToLower(subtype)
}
