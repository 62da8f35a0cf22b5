package journal

import (
	"errors"
	"time"

	"tg-media-fetch/internal/file"
	"tg-media-fetch/internal/media"
)

// EntryFromResult converts a download result into a journal row.
func EntryFromResult(result file.DownloadResult) Entry {
	entry := Entry{
		MessageID: result.MessageID,
		FileID:    result.FileID,
		Kind:      result.Kind,
		PhotoType: result.PhotoType,
		Path:      result.Path,
		Size:      result.Size,
		Status:    StatusDone,
		Attempts:  1,
		CreatedAt: time.Now().UTC(),
	}

	var transferErr *media.ErrTransferFailed
	switch {
	case result.Err == nil && result.Skipped:
		entry.Status = StatusSkipped
	case result.Err == nil:
	case errors.Is(result.Err, media.ErrNotImplemented):
		entry.Status = StatusNotImplemented
		entry.Error = result.Err.Error()
	case errors.As(result.Err, &transferErr):
		entry.Status = StatusFailed
		entry.Error = result.Err.Error()
		entry.Retryable = transferErr.Retryable()
	default:
		entry.Status = StatusFailed
		entry.Error = result.Err.Error()
	}
	return entry
}
