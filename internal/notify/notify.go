package notify

import (
	"context"
	"fmt"
	"strings"

	"tg-media-fetch/internal/journal"

	"github.com/go-telegram/bot"
)

const maxFailureLines = 10

type Notifier interface {
	Report(ctx context.Context, summary *Summary) error
}

type Summary struct {
	Done           int
	Skipped        int
	Failed         int
	NotImplemented int
	Bytes          int64
	Failures       []string
}

func (s *Summary) Add(entry journal.Entry) {
	switch entry.Status {
	case journal.StatusDone:
		s.Done++
		s.Bytes += entry.Size
	case journal.StatusSkipped:
		s.Skipped++
	case journal.StatusNotImplemented:
		s.NotImplemented++
	default:
		s.Failed++
		source := fmt.Sprintf("#%d", entry.MessageID)
		if entry.FileID != "" {
			source = entry.FileID
		}
		s.Failures = append(s.Failures, fmt.Sprintf("%s %s: %s", source, entry.Kind, entry.Error))
	}
}

func (s *Summary) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Downloaded %d (%d bytes), skipped %d, unsupported %d, failed %d",
		s.Done, s.Bytes, s.Skipped, s.NotImplemented, s.Failed)

	for i, line := range s.Failures {
		if i == maxFailureLines {
			fmt.Fprintf(&sb, "\n... and %d more", len(s.Failures)-maxFailureLines)
			break
		}
		sb.WriteString("\n")
		sb.WriteString(line)
	}
	return sb.String()
}

// TelegramNotifier sends summaries to an operator chat through the Bot API.
type TelegramNotifier struct {
	api    *bot.Bot
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("failed to create bot instance: %w", err)
	}
	return &TelegramNotifier{api: b, chatID: chatID}, nil
}

func (n *TelegramNotifier) Report(ctx context.Context, summary *Summary) error {
	_, err := n.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   summary.Text(),
	})
	if err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}
	return nil
}
