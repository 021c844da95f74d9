package store

import (
	"ao3-scraper/lib/scrapers/ao3"
	"ao3-scraper/lib/store/db"
	"ao3-scraper/lib/textutil"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/antzucaro/matchr"
)

var ErrNotFound = errors.New("not found in store")

// Store keeps fetched works and what a user did with them: bookmarks,
// reading history and kudos.
type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

// Open opens the database described by config and creates any missing
// tables.
func Open(ctx context.Context, config Config) (Store, error) {
	database, err := config.OpenDB()
	if err != nil {
		return Store{}, fmt.Errorf("open store: %w", err)
	}
	_, err = database.ExecContext(ctx, db.Schema)
	if err != nil {
		database.Close()
		return Store{}, fmt.Errorf("apply schema: %w", err)
	}
	return NewStore(database), nil
}

func (s Store) Close() error {
	return s.db.Close()
}

// withTx runs fn in a transaction that is committed only if fn succeeds.
func (s Store) withTx(ctx context.Context, fn func(txqry *db.Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = fn(s.qry.WithTx(tx))
	if err != nil {
		return err
	}
	return tx.Commit()
}

type StoredWork struct {
	Work      ao3.WorkRepresentation
	FetchedAt time.Time
}

// PutWork inserts or replaces a work.
func (s Store) PutWork(ctx context.Context, work ao3.WorkRepresentation, fetchedAt time.Time) error {
	data, err := json.Marshal(work)
	if err != nil {
		return err
	}
	return s.withTx(ctx, func(txqry *db.Queries) error {
		return txqry.PutWork(ctx, db.PutWorkParams{
			ID:        work.ID,
			Title:     work.Title,
			Author:    work.Author,
			Data:      string(data),
			FetchedAt: fetchedAt.Unix(),
		})
	})
}

// GetWork returns ErrNotFound if the work was never stored.
func (s Store) GetWork(ctx context.Context, id string) (StoredWork, error) {
	row, err := s.qry.GetWork(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredWork{}, fmt.Errorf("work %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return StoredWork{}, err
	}

	var work ao3.WorkRepresentation
	err = json.Unmarshal([]byte(row.Data), &work)
	if err != nil {
		return StoredWork{}, fmt.Errorf("decode work %s: %w", id, err)
	}
	return StoredWork{
		Work:      work,
		FetchedAt: time.Unix(row.FetchedAt, 0),
	}, nil
}

// ReplaceBookmarks swaps the stored bookmarks of username for ids, keeping
// their order.
func (s Store) ReplaceBookmarks(ctx context.Context, username string, ids []string) error {
	return s.withTx(ctx, func(txqry *db.Queries) error {
		err := txqry.DeleteBookmarks(ctx, username)
		if err != nil {
			return err
		}
		for i, id := range ids {
			err = txqry.CreateBookmark(ctx, db.CreateBookmarkParams{
				Username: username,
				WorkID:   id,
				Position: int64(i),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s Store) Bookmarks(ctx context.Context, username string) ([]string, error) {
	return s.qry.GetBookmarks(ctx, username)
}

// PutReading records that username read a work. An older date never
// replaces a newer one.
func (s Store) PutReading(ctx context.Context, username string, item ao3.ReadingHistoryItem) error {
	return s.withTx(ctx, func(txqry *db.Queries) error {
		return txqry.PutReading(ctx, db.PutReadingParams{
			Username: username,
			WorkID:   item.WorkID,
			LastRead: item.LastRead.Unix(),
		})
	})
}

// ReadingHistory lists what username read on or after since, most recent
// first.
func (s Store) ReadingHistory(ctx context.Context, username string, since time.Time) ([]ao3.ReadingHistoryItem, error) {
	rows, err := s.qry.GetReadingHistory(ctx, db.GetReadingHistoryParams{
		Username: username,
		LastRead: since.Unix(),
	})
	if err != nil {
		return nil, err
	}
	items := make([]ao3.ReadingHistoryItem, len(rows))
	for i, r := range rows {
		items[i] = ao3.ReadingHistoryItem{
			WorkID:   r.WorkID,
			LastRead: time.Unix(r.LastRead, 0).UTC(),
		}
	}
	return items, nil
}

func (s Store) PutKudos(ctx context.Context, username, workID string) error {
	return s.withTx(ctx, func(txqry *db.Queries) error {
		return txqry.CreateKudos(ctx, db.CreateKudosParams{
			Username: username,
			WorkID:   workID,
		})
	})
}

// Kudos lists the ids of the works username left kudos on.
func (s Store) Kudos(ctx context.Context, username string) ([]string, error) {
	return s.qry.GetKudos(ctx, username)
}

type TitleMatch struct {
	WorkID     string
	Title      string
	Similarity float64
}

// SearchTitles ranks every stored work by how similar its title is to
// query and returns the best limit of them. Titles with no similarity at
// all are left out. When fandoms is not empty only works with a fandom
// containing one of them are ranked.
func (s Store) SearchTitles(ctx context.Context, query string, fandoms []string, limit int) ([]TitleMatch, error) {
	rows, err := s.qry.GetWorkTitles(ctx)
	if err != nil {
		return nil, err
	}

	normalizedQuery := textutil.NormalizeName(query)
	if normalizedQuery == "" {
		return nil, nil
	}

	var matches []TitleMatch
	for _, r := range rows {
		title := textutil.NormalizeName(r.Title)
		if title == "" {
			slog.DebugContext(ctx, "skipping untitled work", "work_id", r.ID)
			continue
		}
		if len(fandoms) > 0 {
			inFandom, err := hasFandom(r.Data, fandoms)
			if err != nil {
				return nil, fmt.Errorf("decode work %s: %w", r.ID, err)
			}
			if !inFandom {
				continue
			}
		}
		similarity := matchr.JaroWinkler(normalizedQuery, title, false)
		if similarity <= 0 {
			continue
		}
		matches = append(matches, TitleMatch{
			WorkID:     r.ID,
			Title:      r.Title,
			Similarity: similarity,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity == matches[j].Similarity {
			return matches[i].WorkID < matches[j].WorkID
		}
		return matches[i].Similarity > matches[j].Similarity
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func hasFandom(data string, fandoms []string) (bool, error) {
	var work ao3.WorkRepresentation
	err := json.Unmarshal([]byte(data), &work)
	if err != nil {
		return false, err
	}
	for _, f := range work.Fandoms {
		if textutil.MatchName(f, fandoms) {
			return true, nil
		}
	}
	return false, nil
}
