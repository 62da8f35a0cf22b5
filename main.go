package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"tg-media-fetch/internal/file"
	"tg-media-fetch/internal/journal"
	"tg-media-fetch/internal/media"
	"tg-media-fetch/internal/mtproto"
	"tg-media-fetch/internal/notify"
	"tg-media-fetch/internal/pkg/config"
	"tg-media-fetch/internal/reconciler"

	"github.com/jackc/pgx"
)

// Usage: tg-media-fetch [message_id | file_id]...
//
// Message IDs are resolved through MTProto and their media downloaded;
// anything else is treated as a Bot API file_id. Without arguments the
// process keeps retrying failed downloads from the journal until stopped.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Log.Debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	client, err := mtproto.NewClient(ctx, &cfg.MTProto, cfg.Log.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	var repo journal.Repo
	if cfg.JournalEnabled() {
		pool, err := pgx.NewConnPool(pgx.ConnPoolConfig{
			ConnConfig: pgx.ConnConfig{
				Host:     cfg.DB.Host,
				Port:     cfg.DB.Port,
				User:     cfg.DB.Username,
				Password: cfg.DB.Password,
				Database: cfg.DB.Database,
			},
			MaxConnections: cfg.Downloads.Concurrency + 1,
		})
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()

		repo = journal.NewDefaultRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal(err)
		}
	}

	var notifier notify.Notifier
	if cfg.Notify.ChatID != 0 {
		notifier, err = notify.NewTelegramNotifier(cfg.MTProto.Token, cfg.Notify.ChatID)
		if err != nil {
			log.Fatal(err)
		}
	}

	fileService := file.NewDefaultService(&cfg.Downloads)

	messageIDs, fileIDs := splitArgs(os.Args[1:])
	if len(messageIDs) == 0 && len(fileIDs) == 0 {
		if repo == nil {
			log.Fatal("nothing to do: pass message or file ids, or configure the journal")
		}
		runReconciler(ctx, repo, client, fileService, &cfg.Reconciler)
		return
	}

	summary := &notify.Summary{}
	if err := downloadMessages(ctx, client, fileService, repo, summary, messageIDs); err != nil {
		slog.Error("Failed to download messages", "error", err)
	}
	if len(fileIDs) > 0 {
		record(ctx, repo, summary, fileService.DownloadFileIDs(ctx, client, fileIDs))
	}
	fileService.Wait()

	slog.Info(summary.Text())
	if notifier != nil {
		if err := notifier.Report(ctx, summary); err != nil {
			slog.Error("Failed to send report", "error", err)
		}
	}
}

func splitArgs(args []string) ([]int, []string) {
	var messageIDs []int
	var fileIDs []string
	for _, arg := range args {
		if id, err := strconv.Atoi(arg); err == nil {
			messageIDs = append(messageIDs, id)
			continue
		}
		fileIDs = append(fileIDs, arg)
	}
	return messageIDs, fileIDs
}

func downloadMessages(ctx context.Context, client *mtproto.Client, fileService file.Service, repo journal.Repo, summary *notify.Summary, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	messages, err := client.Messages(ctx, ids)
	if err != nil {
		return err
	}

	var targets []file.Target
	for _, msg := range messages {
		m, ok := media.FromRaw(msg.Media, client)
		if !ok {
			slog.Info("Message has no downloadable media", "messageID", msg.ID)
			continue
		}
		targets = append(targets, file.Target{MessageID: msg.ID, Media: m})
	}

	record(ctx, repo, summary, fileService.DownloadAll(ctx, "", targets))
	return nil
}

// record adds every result to the summary and, when the journal is
// enabled, persists it so failures can be retried later.
func record(ctx context.Context, repo journal.Repo, summary *notify.Summary, results chan file.DownloadResult) {
	for result := range results {
		entry := journal.EntryFromResult(result)
		summary.Add(entry)
		slog.Info("Processed media", "index", result.Index, "total", result.Total, "messageID", result.MessageID, "fileID", result.FileID, "status", entry.Status, "path", result.Path)

		if repo == nil {
			continue
		}
		if _, err := repo.Record(ctx, entry); err != nil {
			slog.Error("Failed to record download", "error", err, "messageID", result.MessageID, "fileID", result.FileID)
		}
	}
}

func runReconciler(ctx context.Context, repo journal.Repo, client *mtproto.Client, fileService file.Service, cfg *config.ReconcilerCfg) {
	reconcilerService := reconciler.NewDefaultService(repo, client, client, fileService, cfg)
	reconcilerService.RetryFailed(ctx)
	reconcilerService.Start(ctx)

	<-ctx.Done()
	slog.Info("Shutting down...")
	ctx, shutdown := context.WithTimeout(context.Background(), time.Second*15)
	defer shutdown()

	if err := reconcilerService.Stop(ctx); err != nil {
		slog.Error("Reconciler did not stop in time", "error", err)
	}
	fileService.Wait()
}
