package file

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"tg-media-fetch/internal/media"
	"tg-media-fetch/internal/pkg/config"

	"go.uber.org/atomic"
)

type Service interface {
	DownloadAll(ctx context.Context, folderPath string, targets []Target) chan DownloadResult
	DownloadFileIDs(ctx context.Context, client FileIDClient, fileIDs []string) chan DownloadResult
	Wait()
}

type DefaultService struct {
	cfg *config.DownloadsCfg
	wg  sync.WaitGroup
}

func NewDefaultService(cfg *config.DownloadsCfg) Service {
	return &DefaultService{
		cfg: cfg,
		wg:  sync.WaitGroup{},
	}
}

// DownloadAll downloads every target into folderPath under the configured
// directory. The returned channel is closed once all targets are done.
func (d *DefaultService) DownloadAll(ctx context.Context, folderPath string, targets []Target) chan DownloadResult {
	return d.run(len(targets), func(i int, counter *atomic.Int32) DownloadResult {
		return d.processTarget(ctx, folderPath, targets[i], len(targets), counter)
	})
}

// DownloadFileIDs downloads files addressed by Bot API file_ids into the
// configured directory, one file_<file_id> per id.
func (d *DefaultService) DownloadFileIDs(ctx context.Context, client FileIDClient, fileIDs []string) chan DownloadResult {
	return d.run(len(fileIDs), func(i int, counter *atomic.Int32) DownloadResult {
		return d.processFileID(ctx, client, fileIDs[i], len(fileIDs), counter)
	})
}

func (d *DefaultService) run(total int, process func(i int, counter *atomic.Int32) DownloadResult) chan DownloadResult {
	wg := sync.WaitGroup{}
	counter := atomic.NewInt32(0)
	result := make(chan DownloadResult)
	sem := make(chan struct{}, max(d.cfg.Concurrency, 1))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for i := range total {
			sem <- struct{}{}
			wg.Add(1)
			go func(i int) {
				defer func() {
					<-sem
					wg.Done()
				}()
				result <- process(i, counter)
			}(i)
		}
		wg.Wait()
		close(result)
	}()

	return result
}

func (d *DefaultService) Wait() {
	d.wg.Wait()
}

func (d *DefaultService) processTarget(ctx context.Context, folderPath string, target Target, total int, counter *atomic.Int32) DownloadResult {
	result := DownloadResult{
		MessageID: target.MessageID,
		Kind:      media.Kind(target.Media),
		Index:     int(counter.Inc()),
		Total:     total,
	}
	dir := filepath.Join(d.cfg.DirPath, folderPath)

	switch m := target.Media.(type) {
	case *media.Photo:
		d.downloadPhoto(ctx, dir, m, &result)
	case *media.Document:
		d.downloadDocument(ctx, dir, m, &result)
	default:
		result.Err = ErrNotRetrievable
	}

	if result.Err != nil {
		slog.Error("Failed to download media", "error", result.Err, "messageID", target.MessageID, "kind", result.Kind)
	}
	return result
}

func (d *DefaultService) processFileID(ctx context.Context, client FileIDClient, fileID string, total int, counter *atomic.Int32) DownloadResult {
	result := DownloadResult{
		FileID: fileID,
		Kind:   KindFileID,
		Index:  int(counter.Inc()),
		Total:  total,
	}

	download := func(ctx context.Context, path string) error {
		return client.DownloadFile(ctx, fileID, path)
	}
	d.fetch(ctx, d.cfg.DirPath, fileIDFilename(fileID), download, &result)

	if result.Err != nil {
		slog.Error("Failed to download file_id", "error", result.Err, "fileID", fileID)
	}
	return result
}

func (d *DefaultService) downloadPhoto(ctx context.Context, dir string, photo *media.Photo, result *DownloadResult) {
	id, err := photo.ID()
	if err != nil {
		result.Err = err
		return
	}

	thumbs := photo.Thumbs()
	size, ok := media.Largest(thumbs)
	if !ok {
		result.Err = ErrNoSizes
		return
	}

	result.PhotoType = size.PhotoType()
	err = d.fetch(ctx, dir, photoFilename(result.MessageID, id, size.PhotoType()), size.Download, result)
	if !errors.Is(err, media.ErrNotImplemented) {
		return
	}

	fallback, ok := media.Largest(fetchable(thumbs))
	if !ok {
		return
	}
	slog.Debug("Falling back to a fetchable photo size", "messageID", result.MessageID, "from", size.PhotoType(), "to", fallback.PhotoType())

	result.PhotoType = fallback.PhotoType()
	result.Err = nil
	d.fetch(ctx, dir, photoFilename(result.MessageID, id, fallback.PhotoType()), fallback.Download, result)
}

func (d *DefaultService) downloadDocument(ctx context.Context, dir string, doc *media.Document, result *DownloadResult) {
	if _, ok := doc.InputLocation(); !ok {
		result.Skipped = true
		return
	}

	id, err := doc.ID()
	if err != nil {
		result.Err = err
		return
	}

	d.fetch(ctx, dir, documentFilename(result.MessageID, id, doc.FileName(), doc.MimeType()), doc.Download, result)
}

func (d *DefaultService) fetch(ctx context.Context, dir, name string, download func(context.Context, string) error, result *DownloadResult) error {
	filePath := filepath.Join(dir, name)
	result.Path = filePath

	if err := prepareFilepath(filePath); err != nil {
		result.Err = &ErrPrepareFilepath{Err: err}
		return result.Err
	}

	if err := download(ctx, filePath); err != nil {
		if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to remove partial file", "error", err, "path", filePath)
		}
		result.Err = &ErrDownloadFailed{Err: err}
		return err
	}

	if info, err := os.Stat(filePath); err == nil {
		result.Size = info.Size()
	}
	return nil
}

// fetchable keeps the sizes that can be downloaded today.
func fetchable(sizes []media.PhotoSize) []media.PhotoSize {
	var result []media.PhotoSize
	for _, size := range sizes {
		switch size.(type) {
		case *media.Size, *media.CachedSize:
			result = append(result, size)
		}
	}
	return result
}
