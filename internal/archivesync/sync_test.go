package archivesync

import (
	"ao3-scraper/lib/chrono"
	"ao3-scraper/lib/scrapers/ao3"
	"ao3-scraper/lib/store"
	"ao3-scraper/lib/telemetry"
	"ao3-scraper/lib/testutil"
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func workPage(title string, kudos ...string) string {
	var kudosLinks []string
	for _, user := range kudos {
		kudosLinks = append(kudosLinks, fmt.Sprintf(`<a href="/users/%s">%s</a>`, user, user))
	}
	return fmt.Sprintf(`<html><body>
<dl class="work meta group">
  <dd class="rating tags"><ul><li><a class="tag">General Audiences</a></li></ul></dd>
  <dd class="warning tags"><ul><li><a class="tag">No Archive Warnings Apply</a></li></ul></dd>
  <dd class="category tags"><ul><li><a class="tag">Gen</a></li></ul></dd>
  <dd class="fandom tags"><ul><li><a class="tag">Original Work</a></li></ul></dd>
  <dd class="relationship tags"><ul></ul></dd>
  <dd class="character tags"><ul><li><a class="tag">Mira</a></li></ul></dd>
  <dd class="freeform tags"><ul><li><a class="tag">Fluff</a></li></ul></dd>
  <dd class="language">English</dd>
  <dd class="stats"><dl class="stats">
    <dd class="published">2026-01-02</dd>
    <dd class="words">1,500</dd>
    <dd class="hits">300</dd>
  </dl></dd>
</dl>
<h2 class="title heading">%s</h2>
<h3 class="byline heading"><a rel="author" href="/users/wanderer/pseuds/wanderer">wanderer</a></h3>
<div id="kudos"><p class="kudos">%s</p></div>
</body></html>`, title, strings.Join(kudosLinks, ", "))
}

const restrictedPage = `<html><body>
<div class="flash error">This work is only available to registered users of the Archive.</div>
</body></html>`

const readingsPage1 = `<html><body>
<ol class="reading work index group">
  <li id="work_111" class="reading work blurb group">
    <h4 class="viewed heading"><span>Last visited:</span> 12 Oct 2026 Visited once</h4>
  </li>
  <li id="work_222" class="reading work blurb group">
    <h4 class="viewed heading"><span>Last visited:</span> 10 Oct 2026 Visited once</h4>
  </li>
  <li id="work_444" class="reading work blurb group">
    <h4 class="viewed heading"><span>Last visited:</span> 9 Oct 2026 Visited twice</h4>
  </li>
  <li id="work_555" class="reading work blurb group">
    <h4 class="viewed heading"><span>Last visited:</span> 8 Oct 2026 Visited once</h4>
  </li>
  <li id="work_333" class="reading work blurb group">
    <h4 class="viewed heading"><span>Last visited:</span> 1 Oct 2026 Visited once</h4>
  </li>
</ol>
<ol class="pagination actions">
  <li class="next" title="next"><a rel="next" href="/users/reader/readings?page=2">Next</a></li>
</ol>
</body></html>`

const bookmarksPage = `<html><body>
<ol class="bookmark index group">
  <li class="bookmark blurb group"><h4 class="heading"><a href="/works/555">Bookmarked</a></h4></li>
  <li class="bookmark blurb group"><h4 class="heading"><a href="/works/111">Read Recently</a></h4></li>
</ol>
</body></html>`

func archiveHandler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/users/reader/readings":
		if r.URL.Query().Get("page") != "1" {
			testutil.WritePage(w, http.StatusNotFound, "")
			return
		}
		testutil.WritePage(w, http.StatusOK, readingsPage1)
	case "/users/reader/bookmarks":
		testutil.WritePage(w, http.StatusOK, bookmarksPage)
	case "/works/111":
		testutil.WritePage(w, http.StatusOK, workPage("Read Recently", "alice", "reader"))
	case "/works/222":
		testutil.WritePage(w, http.StatusOK, restrictedPage)
	case "/works/555":
		testutil.WritePage(w, http.StatusOK, workPage("Bookmarked", "alice"))
	default:
		testutil.WritePage(w, http.StatusNotFound, "")
	}
}

func TestSync(t *testing.T) {
	archive := testutil.NewArchive(t, archiveHandler)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	session, err := ao3.NewSession(ao3.SessionOptions{BaseUrl: archive.URL})
	require.NoError(t, err)
	st, err := store.Open(ctx, store.Config{File: ":memory:"})
	require.NoError(t, err)
	defer st.Close()

	recorder := &telemetry.Recorder{}
	clock := chrono.FixedImpl{Time: time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC)}
	syncer := NewSyncer(ao3.NewUser(session, "reader"), st, clock, recorder)

	result, err := syncer.Sync(ctx, 10*24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, Result{
		Works:     2,
		Skipped:   []string{"222", "444"},
		Kudos:     1,
		Bookmarks: 2,
	}, result)

	// the walk stops at the first entry older than the cutoff
	requests := archive.Requests()
	require.NotContains(t, requests, "GET /works/333")
	require.NotContains(t, requests, "GET /users/reader/readings?page=2")
	require.Contains(t, requests, "GET /works/555")

	stored, err := st.GetWork(ctx, "111")
	require.NoError(t, err)
	require.Equal(t, "Read Recently", stored.Work.Title)
	require.Equal(t, 1500, stored.Work.Stats.Words)
	require.True(t, clock.Time.Truncate(time.Second).Equal(stored.FetchedAt))

	kudos, err := st.Kudos(ctx, "reader")
	require.NoError(t, err)
	require.Equal(t, []string{"111"}, kudos)

	bookmarks, err := st.Bookmarks(ctx, "reader")
	require.NoError(t, err)
	require.Equal(t, []string{"555", "111"}, bookmarks)

	history, err := st.ReadingHistory(ctx, "reader", time.Time{})
	require.NoError(t, err)
	require.Len(t, history, 4)
	require.Equal(t, "111", history[0].WorkID)

	warnings := recorder.Reports("warning")
	require.Len(t, warnings, 2)
	for _, w := range warnings {
		require.Equal(t, "archivesync: "+report_sync_work, w.Id)
	}
}

func TestSyncHistoryFailure(t *testing.T) {
	archive := testutil.NewArchive(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.WritePage(w, http.StatusInternalServerError, "")
	})

	ctx := context.Background()
	session, err := ao3.NewSession(ao3.SessionOptions{BaseUrl: archive.URL})
	require.NoError(t, err)
	st, err := store.Open(ctx, store.Config{File: ":memory:"})
	require.NoError(t, err)
	defer st.Close()

	recorder := &telemetry.Recorder{}
	syncer := NewSyncer(ao3.NewUser(session, "reader"), st, chrono.FixedImpl{Time: time.Now()}, recorder)

	_, err = syncer.Sync(ctx, time.Hour)
	require.ErrorContains(t, err, "reading history")

	broken := recorder.Reports("broken")
	require.Len(t, broken, 1)
	require.Equal(t, "archivesync: "+report_sync_history, broken[0].Id)
}

func TestCutoff(t *testing.T) {
	now := time.Date(2026, time.October, 18, 23, 59, 0, 0, time.UTC)
	require.Equal(
		t,
		time.Date(2026, time.October, 11, 0, 0, 0, 0, time.UTC),
		Cutoff(now, 7*24*time.Hour),
	)
}
