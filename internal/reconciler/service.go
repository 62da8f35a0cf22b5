package reconciler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tg-media-fetch/internal/file"
	"tg-media-fetch/internal/journal"
	"tg-media-fetch/internal/media"
	"tg-media-fetch/internal/pkg/config"

	"github.com/gotd/td/tg"
)

// Fetcher refetches messages, which refreshes their file references, and
// downloads files addressed by Bot API file_ids.
type Fetcher interface {
	Messages(ctx context.Context, ids []int) ([]*tg.Message, error)
	file.FileIDClient
}

type Service interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	RetryFailed(ctx context.Context)
}

type DefaultService struct {
	repo        journal.Repo
	fetcher     Fetcher
	client      media.Client
	fileService file.Service
	cfg         *config.ReconcilerCfg
	wg          *sync.WaitGroup
}

func NewDefaultService(repo journal.Repo, fetcher Fetcher, client media.Client, fileService file.Service, cfg *config.ReconcilerCfg) Service {
	return &DefaultService{
		repo:        repo,
		fetcher:     fetcher,
		client:      client,
		fileService: fileService,
		cfg:         cfg,
		wg:          &sync.WaitGroup{},
	}
}

func (d *DefaultService) Start(ctx context.Context) {
	d.startReconciliationLoop(ctx)
	slog.Info("Started reconciler service", "interval", d.cfg.Interval)
}

func (d *DefaultService) Stop(ctx context.Context) error {
	stop := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(stop)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-stop:
		return nil
	}
}

func (d *DefaultService) startReconciliationLoop(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.Interval)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.RetryFailed(ctx)
			}
		}
	}()
}

// RetryFailed downloads retryable failures again. Entries that reach
// the configured attempt limit stop being retryable.
func (d *DefaultService) RetryFailed(ctx context.Context) {
	entries, err := d.repo.Failed(ctx, d.cfg.Batch, d.cfg.MaxAttempts)
	if err != nil {
		slog.Error("Failed to load failed downloads", "error", err)
		return
	}
	if len(entries) == 0 {
		return
	}

	byMessage := make(map[int][]journal.Entry)
	byFileID := make(map[string][]journal.Entry)
	var ids []int
	var fileIDs []string
	for _, entry := range entries {
		if entry.FileID != "" {
			if _, ok := byFileID[entry.FileID]; !ok {
				fileIDs = append(fileIDs, entry.FileID)
			}
			byFileID[entry.FileID] = append(byFileID[entry.FileID], entry)
			continue
		}
		if _, ok := byMessage[entry.MessageID]; !ok {
			ids = append(ids, entry.MessageID)
		}
		byMessage[entry.MessageID] = append(byMessage[entry.MessageID], entry)
	}

	d.retryMessages(ctx, ids, byMessage)
	d.retryFileIDs(ctx, fileIDs, byFileID)
	slog.Info("Retried failed downloads", "messages", len(ids), "fileIDs", len(fileIDs))
}

func (d *DefaultService) retryMessages(ctx context.Context, ids []int, byMessage map[int][]journal.Entry) {
	if len(ids) == 0 {
		return
	}

	messages, err := d.fetcher.Messages(ctx, ids)
	if err != nil {
		slog.Error("Failed to refetch messages", "error", err, "count", len(ids))
		return
	}

	var targets []file.Target
	found := make(map[int]bool)
	for _, msg := range messages {
		m, ok := media.FromRaw(msg.Media, d.client)
		if !ok {
			continue
		}
		found[msg.ID] = true
		targets = append(targets, file.Target{MessageID: msg.ID, Media: m})
	}

	for _, id := range ids {
		if found[id] {
			continue
		}
		d.markAll(ctx, byMessage[id], journal.Entry{
			Status: journal.StatusFailed,
			Error:  "message no longer has downloadable media",
		})
	}

	for result := range d.fileService.DownloadAll(ctx, "", targets) {
		d.markAll(ctx, byMessage[result.MessageID], journal.EntryFromResult(result))
	}
}

func (d *DefaultService) retryFileIDs(ctx context.Context, fileIDs []string, byFileID map[string][]journal.Entry) {
	if len(fileIDs) == 0 {
		return
	}

	for result := range d.fileService.DownloadFileIDs(ctx, d.fetcher, fileIDs) {
		d.markAll(ctx, byFileID[result.FileID], journal.EntryFromResult(result))
	}
}

func (d *DefaultService) markAll(ctx context.Context, entries []journal.Entry, outcome journal.Entry) {
	for _, entry := range entries {
		result := outcome
		if entry.Attempts+1 >= d.cfg.MaxAttempts {
			result.Retryable = false
		}
		if err := d.repo.MarkRetried(ctx, entry.ID, result); err != nil {
			slog.Error("Failed to update journal entry", "error", err, "id", entry.ID)
		}
	}
}
