package reconciler

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"tg-media-fetch/internal/file"
	"tg-media-fetch/internal/journal"
	"tg-media-fetch/internal/media"
	"tg-media-fetch/internal/pkg/config"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mu          sync.Mutex
	failed      []journal.Entry
	err         error
	retried     map[int64]journal.Entry
	maxAttempts int
}

func (m *mockRepo) EnsureSchema(ctx context.Context) error { return nil }

func (m *mockRepo) Record(ctx context.Context, entry journal.Entry) (int64, error) { return 0, nil }

func (m *mockRepo) Failed(ctx context.Context, limit, maxAttempts int) ([]journal.Entry, error) {
	m.maxAttempts = maxAttempts
	var entries []journal.Entry
	for _, entry := range m.failed {
		if entry.Attempts < maxAttempts {
			entries = append(entries, entry)
		}
	}
	return entries, m.err
}

func (m *mockRepo) MarkRetried(ctx context.Context, id int64, outcome journal.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.retried == nil {
		m.retried = make(map[int64]journal.Entry)
	}
	m.retried[id] = outcome
	return nil
}

type mockFetcher struct {
	mu       sync.Mutex
	messages []*tg.Message
	err      error
	asked    []int
	fileIDs  []string
	fileErr  error
}

func (m *mockFetcher) Messages(ctx context.Context, ids []int) ([]*tg.Message, error) {
	m.asked = append(m.asked, ids...)
	return m.messages, m.err
}

func (m *mockFetcher) DownloadFile(ctx context.Context, fileID, path string) error {
	m.mu.Lock()
	m.fileIDs = append(m.fileIDs, fileID)
	m.mu.Unlock()

	if m.fileErr != nil {
		return m.fileErr
	}
	return os.WriteFile(path, []byte("fresh"), 0o644)
}

// mockClient writes "fresh" to every path, or fails with err when set.
type mockClient struct {
	err error
}

func (m mockClient) DownloadMediaAtLocation(ctx context.Context, location tg.InputFileLocationClass, path string) error {
	if m.err != nil {
		return m.err
	}
	return os.WriteFile(path, []byte("fresh"), 0o644)
}

func newTestService(repo journal.Repo, fetcher Fetcher, client media.Client, dir string) *DefaultService {
	return NewDefaultService(
		repo,
		fetcher,
		client,
		file.NewDefaultService(&config.DownloadsCfg{DirPath: dir, Concurrency: 2}),
		&config.ReconcilerCfg{Interval: time.Hour, Batch: 10, MaxAttempts: 5},
	).(*DefaultService)
}

func documentMessage(id int) *tg.Message {
	return &tg.Message{ID: id, Media: &tg.MessageMediaDocument{Document: &tg.Document{ID: int64(id), MimeType: "application/pdf"}}}
}

func TestRetryFailed(t *testing.T) {
	repo := &mockRepo{failed: []journal.Entry{
		{ID: 1, MessageID: 10, Status: journal.StatusFailed, Retryable: true},
		{ID: 2, MessageID: 20, Status: journal.StatusFailed, Retryable: true},
		{ID: 3, MessageID: 10, Status: journal.StatusFailed, Retryable: true},
	}}
	fetcher := &mockFetcher{messages: []*tg.Message{
		{ID: 10, Media: &tg.MessageMediaDocument{Document: &tg.Document{ID: 5, MimeType: "application/pdf"}}},
		{ID: 20, Message: "media was removed"},
	}}

	svc := newTestService(repo, fetcher, mockClient{}, t.TempDir())
	svc.RetryFailed(context.Background())

	assert.Equal(t, []int{10, 20}, fetcher.asked)
	require.Len(t, repo.retried, 3)
	assert.Equal(t, journal.StatusDone, repo.retried[1].Status)
	assert.Equal(t, journal.StatusDone, repo.retried[3].Status)
	assert.Equal(t, int64(5), repo.retried[1].Size)
	assert.Equal(t, journal.StatusFailed, repo.retried[2].Status)
	assert.False(t, repo.retried[2].Retryable)
}

func TestRetryFailed_NothingToDo(t *testing.T) {
	repo := &mockRepo{}
	fetcher := &mockFetcher{}

	newTestService(repo, fetcher, mockClient{}, t.TempDir()).RetryFailed(context.Background())

	assert.Empty(t, fetcher.asked)
	assert.Empty(t, repo.retried)
}

func TestRetryFailed_FetchError(t *testing.T) {
	repo := &mockRepo{failed: []journal.Entry{{ID: 1, MessageID: 10}}}
	fetcher := &mockFetcher{err: assert.AnError}

	newTestService(repo, fetcher, mockClient{}, t.TempDir()).RetryFailed(context.Background())

	assert.Empty(t, repo.retried)
}

func TestStartStop(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockFetcher{}, mockClient{}, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	assert.NoError(t, svc.Stop(stopCtx))
}

func TestRetryFailed_StopsAtMaxAttempts(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int
		retryable bool
	}{
		{name: "below limit", attempts: 1, retryable: true},
		{name: "last attempt", attempts: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{failed: []journal.Entry{
				{ID: 1, MessageID: 10, Status: journal.StatusFailed, Retryable: true, Attempts: tt.attempts},
			}}
			fetcher := &mockFetcher{messages: []*tg.Message{documentMessage(10)}}
			client := mockClient{err: errors.New("connection reset")}

			newTestService(repo, fetcher, client, t.TempDir()).RetryFailed(context.Background())

			require.Len(t, repo.retried, 1)
			assert.Equal(t, journal.StatusFailed, repo.retried[1].Status)
			assert.Equal(t, tt.retryable, repo.retried[1].Retryable)
		})
	}
}

func TestRetryFailed_ExhaustedEntriesDoNotBlockBacklog(t *testing.T) {
	repo := &mockRepo{failed: []journal.Entry{
		{ID: 1, MessageID: 10, Status: journal.StatusFailed, Retryable: true, Attempts: 500},
		{ID: 2, MessageID: 20, Status: journal.StatusFailed, Retryable: true, Attempts: 1},
	}}
	fetcher := &mockFetcher{messages: []*tg.Message{documentMessage(20)}}

	newTestService(repo, fetcher, mockClient{}, t.TempDir()).RetryFailed(context.Background())

	assert.Equal(t, 5, repo.maxAttempts)
	assert.Equal(t, []int{20}, fetcher.asked)
	require.Len(t, repo.retried, 1)
	assert.Equal(t, journal.StatusDone, repo.retried[2].Status)
}

func TestRetryFailed_FileIDs(t *testing.T) {
	repo := &mockRepo{failed: []journal.Entry{
		{ID: 1, FileID: "AgADBAAD", Kind: file.KindFileID, Status: journal.StatusFailed, Retryable: true, Attempts: 1},
		{ID: 2, FileID: "BQACAgIA", Kind: file.KindFileID, Status: journal.StatusFailed, Retryable: true, Attempts: 1},
	}}
	fetcher := &mockFetcher{}

	newTestService(repo, fetcher, mockClient{}, t.TempDir()).RetryFailed(context.Background())

	assert.Empty(t, fetcher.asked)
	assert.ElementsMatch(t, []string{"AgADBAAD", "BQACAgIA"}, fetcher.fileIDs)
	require.Len(t, repo.retried, 2)
	assert.Equal(t, journal.StatusDone, repo.retried[1].Status)
	assert.Equal(t, "AgADBAAD", repo.retried[1].FileID)
	assert.Equal(t, journal.StatusDone, repo.retried[2].Status)
}
