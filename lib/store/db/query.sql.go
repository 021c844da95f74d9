package db

import (
	"context"
)

const createBookmark = `-- name: CreateBookmark :exec
insert into bookmark(username, work_id, position) values (?, ?, ?)
on conflict (username, work_id) do nothing
`

type CreateBookmarkParams struct {
	Username string
	WorkID   string
	Position int64
}

func (q *Queries) CreateBookmark(ctx context.Context, arg CreateBookmarkParams) error {
	_, err := q.db.ExecContext(ctx, createBookmark, arg.Username, arg.WorkID, arg.Position)
	return err
}

const createKudos = `-- name: CreateKudos :exec
insert into kudos(username, work_id) values (?, ?)
on conflict (username, work_id) do nothing
`

type CreateKudosParams struct {
	Username string
	WorkID   string
}

func (q *Queries) CreateKudos(ctx context.Context, arg CreateKudosParams) error {
	_, err := q.db.ExecContext(ctx, createKudos, arg.Username, arg.WorkID)
	return err
}

const deleteBookmarks = `-- name: DeleteBookmarks :exec
delete from bookmark where username = ?
`

func (q *Queries) DeleteBookmarks(ctx context.Context, username string) error {
	_, err := q.db.ExecContext(ctx, deleteBookmarks, username)
	return err
}

const getBookmarks = `-- name: GetBookmarks :many
select work_id from bookmark where username = ? order by position
`

func (q *Queries) GetBookmarks(ctx context.Context, username string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getBookmarks, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var work_id string
		if err := rows.Scan(&work_id); err != nil {
			return nil, err
		}
		items = append(items, work_id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getKudos = `-- name: GetKudos :many
select work_id from kudos where username = ? order by work_id
`

func (q *Queries) GetKudos(ctx context.Context, username string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getKudos, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var work_id string
		if err := rows.Scan(&work_id); err != nil {
			return nil, err
		}
		items = append(items, work_id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getReadingHistory = `-- name: GetReadingHistory :many
select work_id, last_read from reading
where username = ? and last_read >= ?
order by last_read desc, work_id
`

type GetReadingHistoryParams struct {
	Username string
	LastRead int64
}

type GetReadingHistoryRow struct {
	WorkID   string
	LastRead int64
}

func (q *Queries) GetReadingHistory(ctx context.Context, arg GetReadingHistoryParams) ([]GetReadingHistoryRow, error) {
	rows, err := q.db.QueryContext(ctx, getReadingHistory, arg.Username, arg.LastRead)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetReadingHistoryRow
	for rows.Next() {
		var i GetReadingHistoryRow
		if err := rows.Scan(&i.WorkID, &i.LastRead); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getWork = `-- name: GetWork :one
select id, title, author, data, fetched_at from work where id = ?
`

func (q *Queries) GetWork(ctx context.Context, id string) (Work, error) {
	row := q.db.QueryRowContext(ctx, getWork, id)
	var i Work
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Author,
		&i.Data,
		&i.FetchedAt,
	)
	return i, err
}

const getWorkTitles = `-- name: GetWorkTitles :many
select id, title, data from work
`

type GetWorkTitlesRow struct {
	ID    string
	Title string
	Data  string
}

func (q *Queries) GetWorkTitles(ctx context.Context) ([]GetWorkTitlesRow, error) {
	rows, err := q.db.QueryContext(ctx, getWorkTitles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetWorkTitlesRow
	for rows.Next() {
		var i GetWorkTitlesRow
		if err := rows.Scan(&i.ID, &i.Title, &i.Data); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const putReading = `-- name: PutReading :exec
insert into reading(username, work_id, last_read) values (?, ?, ?)
on conflict (username, work_id) do update set
    last_read = max(reading.last_read, excluded.last_read)
`

type PutReadingParams struct {
	Username string
	WorkID   string
	LastRead int64
}

func (q *Queries) PutReading(ctx context.Context, arg PutReadingParams) error {
	_, err := q.db.ExecContext(ctx, putReading, arg.Username, arg.WorkID, arg.LastRead)
	return err
}

const putWork = `-- name: PutWork :exec
insert into work(id, title, author, data, fetched_at)
values (?, ?, ?, ?, ?)
on conflict (id) do update set
    title = excluded.title,
    author = excluded.author,
    data = excluded.data,
    fetched_at = excluded.fetched_at
`

type PutWorkParams struct {
	ID        string
	Title     string
	Author    string
	Data      string
	FetchedAt int64
}

func (q *Queries) PutWork(ctx context.Context, arg PutWorkParams) error {
	_, err := q.db.ExecContext(ctx, putWork,
		arg.ID,
		arg.Title,
		arg.Author,
		arg.Data,
		arg.FetchedAt,
	)
	return err
}
