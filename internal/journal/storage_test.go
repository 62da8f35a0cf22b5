package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"tg-media-fetch/internal/file"
	"tg-media-fetch/internal/media"
	"tg-media-fetch/pkg"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/jackc/pgx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execRecorder struct {
	statements []string
	err        error
}

func (e *execRecorder) ExecEx(ctx context.Context, sql string, options *pgx.QueryExOptions, arguments ...interface{}) (pgx.CommandTag, error) {
	e.statements = append(e.statements, sql)
	return "", e.err
}

func (e *execRecorder) QueryEx(ctx context.Context, sql string, options *pgx.QueryExOptions, args ...interface{}) (*pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (e *execRecorder) QueryRowEx(ctx context.Context, sql string, options *pgx.QueryExOptions, args ...interface{}) *pgx.Row {
	return nil
}

func TestEnsureSchema_AddsFileIDColumn(t *testing.T) {
	db := &execRecorder{}
	require.NoError(t, (&DefaultRepo{db: db}).EnsureSchema(context.Background()))

	require.Len(t, db.statements, 2)
	assert.Contains(t, db.statements[0], "create table if not exists media_downloads")
	assert.Contains(t, db.statements[1], "add column if not exists file_id")
}

func TestEnsureSchema_Error(t *testing.T) {
	db := &execRecorder{err: errors.New("permission denied")}
	err := (&DefaultRepo{db: db}).EnsureSchema(context.Background())

	var dbErr *pkg.ErrDBProcedure
	require.ErrorAs(t, err, &dbErr)
	assert.Len(t, db.statements, 1)
}

func TestInsertQuery(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	query, args, err := insertQuery(Entry{
		MessageID: 42,
		Kind:      media.KindPhoto,
		PhotoType: "x",
		Path:      "/srv/42_photo_1_x.jpg",
		Size:      1024,
		Status:    StatusDone,
		Attempts:  1,
		CreatedAt: created,
	})
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO media_downloads (message_id,file_id,kind,photo_type,path,size,status,error,retryable,attempts,created_at) "+
		"VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) returning id", query)
	assert.Equal(t, []interface{}{42, "", "photo", "x", "/srv/42_photo_1_x.jpg", int64(1024), "done", "", false, 1, created}, args)
}

func TestInsertQuery_FileID(t *testing.T) {
	_, args, err := insertQuery(Entry{FileID: "AgADBAAD", Kind: file.KindFileID, Status: StatusFailed, Retryable: true, Attempts: 1})
	require.NoError(t, err)

	require.Len(t, args, 11)
	assert.Equal(t, 0, args[0])
	assert.Equal(t, "AgADBAAD", args[1])
	assert.Equal(t, "file_id", args[2])
}

func TestFailedQuery(t *testing.T) {
	query, args, err := failedQuery(25, 5)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, message_id, file_id, kind, photo_type, path, size, status, error, retryable, attempts, created_at "+
		"FROM media_downloads WHERE retryable = $1 AND status = $2 AND attempts < $3 ORDER BY id LIMIT 25", query)
	assert.Equal(t, []interface{}{true, "failed", 5}, args)
}

func TestMarkRetriedQuery(t *testing.T) {
	query, args, err := markRetriedQuery(7, Entry{Status: StatusDone, Path: "/srv/a.pdf", Size: 10})
	require.NoError(t, err)

	assert.Equal(t, "UPDATE media_downloads SET status = $1, error = $2, retryable = $3, photo_type = $4, path = $5, size = $6, "+
		"attempts = attempts + 1 WHERE id = $7", query)
	assert.Equal(t, []interface{}{"done", "", false, "", "/srv/a.pdf", int64(10), int64(7)}, args)
}

func TestEntryFromResult(t *testing.T) {
	transfer := &media.ErrTransferFailed{
		Location: &tg.InputDocumentFileLocation{ID: 1},
		Err:      tgerr.New(400, "FILE_REFERENCE_EXPIRED"),
	}
	fatal := &media.ErrTransferFailed{
		Location: &tg.InputDocumentFileLocation{ID: 1},
		Err:      tgerr.New(400, "LOCATION_INVALID"),
	}

	tests := []struct {
		name      string
		result    file.DownloadResult
		status    Status
		retryable bool
	}{
		{name: "done", result: file.DownloadResult{MessageID: 1, Size: 5}, status: StatusDone},
		{name: "file id", result: file.DownloadResult{FileID: "AgAD", Kind: file.KindFileID}, status: StatusDone},
		{name: "skipped", result: file.DownloadResult{Skipped: true}, status: StatusSkipped},
		{name: "not implemented", result: file.DownloadResult{Err: &file.ErrDownloadFailed{Err: media.ErrNotImplemented}}, status: StatusNotImplemented},
		{name: "retryable transfer", result: file.DownloadResult{Err: &file.ErrDownloadFailed{Err: transfer}}, status: StatusFailed, retryable: true},
		{name: "fatal transfer", result: file.DownloadResult{Err: &file.ErrDownloadFailed{Err: fatal}}, status: StatusFailed},
		{name: "other", result: file.DownloadResult{Err: errors.New("disk full")}, status: StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := EntryFromResult(tt.result)
			assert.Equal(t, tt.status, entry.Status)
			assert.Equal(t, tt.retryable, entry.Retryable)
			assert.Equal(t, tt.result.Err != nil, entry.Error != "")
			assert.Equal(t, tt.result.FileID, entry.FileID)
		})
	}
}
