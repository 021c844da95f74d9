package archivesync

import (
	"ao3-scraper/internal/assert"
	"ao3-scraper/lib/chrono"
	"ao3-scraper/lib/scrapers/ao3"
	"ao3-scraper/lib/store"
	"ao3-scraper/lib/telemetry"
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	report_db_query       = "db.query"
	report_sync_history   = "sync.history"
	report_sync_work      = "sync.work"
	report_sync_bookmarks = "sync.bookmarks"
)

// Syncer copies what a user has been reading into a store: every work in
// their recent reading history, whether they left kudos on it, and their
// bookmark list.
type Syncer struct {
	user  ao3.User
	store store.Store
	time  chrono.API
	tel   telemetry.API
}

func NewSyncer(
	user ao3.User,
	store store.Store,
	time chrono.API,
	tel telemetry.API,
) Syncer {
	assert.NotEmptyStr("username", user.Username)
	assert.NotNil("time", time)
	assert.NotNil("telemetry", tel)

	return Syncer{
		user:  user,
		store: store,
		time:  time,
		tel:   telemetry.NewScopedAPI("archivesync", tel),
	}
}

type Result struct {
	// works fetched and stored
	Works int
	// works in the history that could not be fetched, restricted or deleted
	Skipped []string
	// stored works the user left kudos on
	Kudos     int
	Bookmarks int
}

// Cutoff is the oldest reading date a sync going back `since` includes.
// Reading dates have no time of day, so it is rounded down to midnight.
func Cutoff(now time.Time, since time.Duration) time.Time {
	return chrono.StartOfDay(now.UTC().Add(-since))
}

// Sync walks the reading history from the most recent entry until it
// reaches one older than since, then replaces the stored bookmarks.
func (s Syncer) Sync(ctx context.Context, since time.Duration) (Result, error) {
	now := s.time.Now()
	cutoff := Cutoff(now, since)
	s.tel.ReportDebug("sync history", s.user.Username, cutoff.Format(time.DateOnly))

	result := Result{}

	history := s.user.ReadingHistory()
	for history.Next(ctx) {
		item := history.Value()
		if item.LastRead.Before(cutoff) {
			break
		}

		err := s.store.PutReading(ctx, s.user.Username, item)
		if err != nil {
			s.tel.ReportBroken(report_db_query, err, "PutReading", item.WorkID)
			return result, err
		}

		stored, kudos, err := s.syncWork(ctx, item.WorkID, now)
		if err != nil {
			return result, err
		}
		if !stored {
			result.Skipped = append(result.Skipped, item.WorkID)
			continue
		}
		result.Works++
		if kudos {
			result.Kudos++
		}
		s.tel.ReportCount(report_sync_work, int64(result.Works))
	}
	if err := history.Err(); err != nil {
		s.tel.ReportBroken(report_sync_history, err, history.Page())
		return result, fmt.Errorf("reading history: %w", err)
	}

	ids, err := ao3.Collect(ctx, s.user.BookmarkIDs())
	if err != nil {
		s.tel.ReportBroken(report_sync_bookmarks, err)
		return result, fmt.Errorf("bookmarks: %w", err)
	}
	err = s.store.ReplaceBookmarks(ctx, s.user.Username, ids)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ReplaceBookmarks", len(ids))
		return result, err
	}
	result.Bookmarks = len(ids)

	return result, nil
}

// syncWork fetches and stores one work. Works that cannot be seen or read
// are skipped rather than failing the whole sync.
func (s Syncer) syncWork(ctx context.Context, id string, now time.Time) (stored, kudos bool, err error) {
	work, err := s.user.Session().Work(ctx, id)
	var restricted *ao3.RestrictedWorkError
	var notFound *ao3.WorkNotFoundError
	if errors.As(err, &restricted) || errors.As(err, &notFound) {
		s.tel.ReportWarning(report_sync_work, "skipping work", id, err)
		return false, false, nil
	}
	if err != nil {
		s.tel.ReportBroken(report_sync_work, err, id)
		return false, false, fmt.Errorf("work %s: %w", id, err)
	}

	rep, err := work.Representation()
	if err != nil {
		s.tel.ReportBroken(report_sync_work, err, id)
		return false, false, nil
	}

	err = s.store.PutWork(ctx, rep, now)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "PutWork", id)
		return false, false, err
	}

	if !work.KudosLeftBy().Contains(s.user.Username) {
		return true, false, nil
	}
	err = s.store.PutKudos(ctx, s.user.Username, id)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "PutKudos", id)
		return true, false, err
	}
	return true, true, nil
}
