package mtproto

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tg-media-fetch/internal/media"
	"tg-media-fetch/internal/mtproto/internal"
	"tg-media-fetch/internal/pkg/config"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"
)

// Client owns the MTProto connection. Its download method is the
// capability media values borrow, so one Client serves any number of them.
type Client struct {
	api        *tg.Client
	downloader *downloader.Downloader
	cancel     context.CancelFunc
	done       chan struct{}
	ready      chan struct{}
	runErr     error
}

var _ media.Client = (*Client)(nil)

func NewClient(ctx context.Context, cfg *config.MTProtoCfg, debug bool) (*Client, error) {
	client := &Client{
		done:  make(chan struct{}),
		ready: make(chan struct{}),
	}

	clientCtx, cancel := context.WithCancel(ctx)
	client.cancel = cancel

	opts := telegram.Options{Logger: newLogger(debug)}
	if cfg.SessionPath != "" {
		opts.SessionStorage = &session.FileStorage{Path: cfg.SessionPath}
	}
	mtprotoClient := telegram.NewClient(cfg.AppID, cfg.AppHash, opts)

	go func() {
		defer close(client.done)

		err := mtprotoClient.Run(clientCtx, func(ctx context.Context) error {
			if _, err := mtprotoClient.Auth().Bot(ctx, cfg.Token); err != nil {
				return fmt.Errorf("auth failed: %w", err)
			}

			client.api = tg.NewClient(mtprotoClient)
			client.downloader = downloader.NewDownloader().WithPartSize(cfg.PartSize)

			close(client.ready)

			<-ctx.Done()
			return ctx.Err()
		})

		if err != nil && !errors.Is(err, context.Canceled) {
			client.runErr = err
			slog.Error("MTProto client stopped", "error", err)
		}
	}()

	select {
	case <-client.ready:
		return client, nil
	case <-client.done:
		cancel()
		return nil, fmt.Errorf("client stopped before ready: %w", client.runErr)
	case <-time.After(30 * time.Second):
		cancel()
		return nil, fmt.Errorf("client initialization timeout")
	case <-ctx.Done():
		cancel()
		return nil, ctx.Err()
	}
}

func newLogger(debug bool) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger.Named("mtproto")
}

func (c *Client) DownloadMediaAtLocation(ctx context.Context, location tg.InputFileLocationClass, path string) error {
	_, err := c.downloader.Download(c.api, location).ToPath(ctx, path)
	return err
}

// DownloadFile fetches a file addressed by a Bot API file_id. Malformed
// ids fail before any request is made.
func (c *Client) DownloadFile(ctx context.Context, fileID string, path string) error {
	info, err := internal.ParseFileID(fileID)
	if err != nil {
		return fmt.Errorf("failed to parse file_id: %w", err)
	}

	location, err := info.Location()
	if err != nil {
		return err
	}

	if err := c.DownloadMediaAtLocation(ctx, location, path); err != nil {
		return &media.ErrTransferFailed{Location: location, Path: path, Err: err}
	}
	return nil
}

// Messages fetches messages by ID from the bot's private chats.
func (c *Client) Messages(ctx context.Context, ids []int) ([]*tg.Message, error) {
	input := make([]tg.InputMessageClass, len(ids))
	for i, id := range ids {
		input[i] = &tg.InputMessageID{ID: id}
	}

	result, err := c.api.MessagesGetMessages(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return extractMessages(result), nil
}

func extractMessages(result tg.MessagesMessagesClass) []*tg.Message {
	var raw []tg.MessageClass
	switch r := result.(type) {
	case *tg.MessagesMessages:
		raw = r.Messages
	case *tg.MessagesMessagesSlice:
		raw = r.Messages
	case *tg.MessagesChannelMessages:
		raw = r.Messages
	}

	messages := make([]*tg.Message, 0, len(raw))
	for _, m := range raw {
		if msg, ok := m.(*tg.Message); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}

func (c *Client) Close() error {
	c.cancel()
	<-c.done
	return nil
}
