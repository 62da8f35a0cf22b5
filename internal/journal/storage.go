package journal

import (
	"context"
	"fmt"

	"tg-media-fetch/pkg"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx"
)

const table = "media_downloads"

const schema = `create table if not exists media_downloads (
	id          bigserial primary key,
	message_id  integer     not null default 0,
	file_id     text        not null default '',
	kind        text        not null,
	photo_type  text        not null default '',
	path        text        not null default '',
	size        bigint      not null default 0,
	status      text        not null,
	error       text        not null default '',
	retryable   boolean     not null default false,
	attempts    integer     not null default 1,
	created_at  timestamptz not null default now()
)`

// Journals created before file_id downloads were recorded lack this column.
const addFileIDColumn = `alter table media_downloads add column if not exists file_id text not null default ''`

var columns = []string{"id", "message_id", "file_id", "kind", "photo_type", "path", "size", "status", "error", "retryable", "attempts", "created_at"}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Repo interface {
	EnsureSchema(ctx context.Context) error
	Record(ctx context.Context, entry Entry) (int64, error)
	Failed(ctx context.Context, limit, maxAttempts int) ([]Entry, error)
	MarkRetried(ctx context.Context, id int64, outcome Entry) error
}

// querier is the subset of *pgx.ConnPool the repo needs.
type querier interface {
	ExecEx(ctx context.Context, sql string, options *pgx.QueryExOptions, arguments ...interface{}) (pgx.CommandTag, error)
	QueryEx(ctx context.Context, sql string, options *pgx.QueryExOptions, args ...interface{}) (*pgx.Rows, error)
	QueryRowEx(ctx context.Context, sql string, options *pgx.QueryExOptions, args ...interface{}) *pgx.Row
}

type DefaultRepo struct {
	db querier
}

func NewDefaultRepo(db *pgx.ConnPool) Repo {
	return &DefaultRepo{db: db}
}

func (d *DefaultRepo) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{schema, addFileIDColumn} {
		if _, err := d.db.ExecEx(ctx, stmt, nil); err != nil {
			return &pkg.ErrDBProcedure{
				Cause: "failed to create journal table",
				Info:  fmt.Sprintf("statement: %s", stmt),
				Err:   err,
			}
		}
	}
	return nil
}

func (d *DefaultRepo) Record(ctx context.Context, entry Entry) (int64, error) {
	query, args, err := insertQuery(entry)
	if err != nil {
		return 0, &pkg.ErrDBProcedure{Cause: "failed to build insert", Err: err}
	}

	var id int64
	if err := d.db.QueryRowEx(ctx, query, nil, args...).Scan(&id); err != nil {
		return 0, &pkg.ErrDBProcedure{
			Cause: "failed to insert journal entry",
			Info:  fmt.Sprintf("query: %s", query),
			Err:   err,
		}
	}
	return id, nil
}

// Failed returns retryable failures that have been attempted fewer than
// maxAttempts times, oldest first.
func (d *DefaultRepo) Failed(ctx context.Context, limit, maxAttempts int) ([]Entry, error) {
	query, args, err := failedQuery(limit, maxAttempts)
	if err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to build select", Err: err}
	}

	rows, err := d.db.QueryEx(ctx, query, nil, args...)
	if err != nil {
		return nil, &pkg.ErrDBProcedure{
			Cause: "failed to select failed entries",
			Info:  fmt.Sprintf("query: %s", query),
			Err:   err,
		}
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var status string
		if err := rows.Scan(&e.ID, &e.MessageID, &e.FileID, &e.Kind, &e.PhotoType, &e.Path, &e.Size, &status, &e.Error, &e.Retryable, &e.Attempts, &e.CreatedAt); err != nil {
			return nil, &pkg.ErrDBProcedure{Cause: "failed to scan journal entry", Err: err}
		}
		e.Status = Status(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &pkg.ErrDBProcedure{Cause: "failed to read journal entries", Err: err}
	}
	return entries, nil
}

// MarkRetried stores the outcome of another attempt at entry id.
func (d *DefaultRepo) MarkRetried(ctx context.Context, id int64, outcome Entry) error {
	query, args, err := markRetriedQuery(id, outcome)
	if err != nil {
		return &pkg.ErrDBProcedure{Cause: "failed to build update", Err: err}
	}

	if _, err := d.db.ExecEx(ctx, query, nil, args...); err != nil {
		return &pkg.ErrDBProcedure{
			Cause: "failed to update journal entry",
			Info:  fmt.Sprintf("id: %d", id),
			Err:   err,
		}
	}
	return nil
}

func insertQuery(entry Entry) (string, []interface{}, error) {
	return psql.Insert(table).
		Columns("message_id", "file_id", "kind", "photo_type", "path", "size", "status", "error", "retryable", "attempts", "created_at").
		Values(entry.MessageID, entry.FileID, entry.Kind, entry.PhotoType, entry.Path, entry.Size, string(entry.Status), entry.Error, entry.Retryable, entry.Attempts, entry.CreatedAt).
		Suffix("returning id").
		ToSql()
}

func failedQuery(limit, maxAttempts int) (string, []interface{}, error) {
	return psql.Select(columns...).
		From(table).
		Where(sq.Eq{"status": string(StatusFailed), "retryable": true}).
		Where(sq.Lt{"attempts": maxAttempts}).
		OrderBy("id").
		Limit(uint64(limit)).
		ToSql()
}

func markRetriedQuery(id int64, outcome Entry) (string, []interface{}, error) {
	return psql.Update(table).
		Set("status", string(outcome.Status)).
		Set("error", outcome.Error).
		Set("retryable", outcome.Retryable).
		Set("photo_type", outcome.PhotoType).
		Set("path", outcome.Path).
		Set("size", outcome.Size).
		Set("attempts", sq.Expr("attempts + 1")).
		Where(sq.Eq{"id": id}).
		ToSql()
}
