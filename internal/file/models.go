package file

import (
	"context"

	"tg-media-fetch/internal/media"
)

// Target is a resolved media attachment together with the message it came from.
type Target struct {
	MessageID int
	Media     media.Media
}

// KindFileID marks results of downloads addressed by a Bot API file_id.
const KindFileID = "file_id"

// FileIDClient fetches files addressed by a Bot API file_id.
type FileIDClient interface {
	DownloadFile(ctx context.Context, fileID, path string) error
}

type DownloadResult struct {
	MessageID int
	FileID    string
	Kind      string
	PhotoType string
	Path      string
	Size      int64
	Skipped   bool
	Index     int
	Total     int
	Err       error
}
