package ao3

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func fixtureWork(t testing.TB) Work {
	return Work{ID: "12345678", doc: fixtureDocument(t, "work.html")}
}

func TestWorkFields(t *testing.T) {
	work := fixtureWork(t)

	title, err := work.Title()
	require.NoError(t, err)
	require.Equal(t, "The Long Way Home", title)

	author, err := work.Author()
	require.NoError(t, err)
	require.Equal(t, "wanderer", author)

	summary, err := work.Summary()
	require.NoError(t, err)
	require.Equal(t, "<p>Two strangers share a car across the country.</p>", summary)

	rating, err := work.Rating()
	require.NoError(t, err)
	require.Equal(t, []string{"Teen And Up Audiences"}, rating)

	warnings, err := work.Warnings()
	require.NoError(t, err)
	require.Empty(t, warnings)

	fandoms, err := work.Fandoms()
	require.NoError(t, err)
	require.Equal(t, []string{"Original Work"}, fandoms)

	relationships, err := work.Relationships()
	require.NoError(t, err)
	require.Equal(t, []string{"Mira/Tobias"}, relationships)

	published, err := work.Published()
	require.NoError(t, err)
	require.Equal(t, "2021-03-14", published.Format(time.DateOnly))

	words, err := work.Words()
	require.NoError(t, err)
	require.Equal(t, 12345, words)

	require.Equal(t, DefaultBaseUrl+"/works/12345678", work.URL())
	require.Equal(t, `Work(id="12345678")`, work.String())
}

func TestWorkAnonymousAuthor(t *testing.T) {
	work := Work{ID: "1", doc: htmlDocument(t, `<h3 class="byline heading">
		Anonymous
	</h3>`)}
	author, err := work.Author()
	require.NoError(t, err)
	require.Equal(t, "Anonymous", author)
}

func TestWorkMissingFields(t *testing.T) {
	work := Work{ID: "1", doc: htmlDocument(t, `<html><body><p>nothing</p></body></html>`)}

	var notFound *FieldNotFoundError
	_, err := work.Title()
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, "title", notFound.Field)

	_, err = work.Kudos()
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, "kudos", notFound.Field)

	_, err = work.Representation()
	require.Error(t, err)
}

func TestWorkEqual(t *testing.T) {
	a := Work{ID: "1"}
	b := Work{ID: "1", url: "https://example.org/works/1"}
	c := Work{ID: "2"}
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestKudosLeftBy(t *testing.T) {
	work := fixtureWork(t)

	var users []string
	kudos := work.KudosLeftBy()
	for kudos.Next() {
		users = append(users, kudos.Value())
	}
	require.Equal(t, []string{"alice", "bob", "carol", "dave"}, users)

	require.True(t, work.KudosLeftBy().Contains("bob"))
	require.False(t, work.KudosLeftBy().Contains("1020 more users"))
	require.False(t, work.KudosLeftBy().Contains("mallory"))

	none := Work{ID: "1", doc: htmlDocument(t, `<div id="feedback"></div>`)}
	require.False(t, none.KudosLeftBy().Next())

	absolute := Work{
		ID:  "1",
		url: "https://archiveofourown.org/works/1",
		doc: htmlDocument(t, `<div id="kudos"><p class="kudos">
			<a href="https://archiveofourown.org/users/erin/pseuds/e">e</a>,
			<a href="../users/frank">frank</a>
		</p></div>`),
	}
	users = nil
	kudos = absolute.KudosLeftBy()
	for kudos.Next() {
		users = append(users, kudos.Value())
	}
	require.Equal(t, []string{"erin", "frank"}, users)
}

func TestWorkRepresentation(t *testing.T) {
	rep, err := fixtureWork(t).Representation()
	require.NoError(t, err)

	expected := WorkRepresentation{
		ID:             "12345678",
		Title:          "The Long Way Home",
		Author:         "wanderer",
		Summary:        "<p>Two strangers share a car across the country.</p>",
		Rating:         []string{"Teen And Up Audiences"},
		Warnings:       []string{},
		Category:       []string{"Gen", "F/M"},
		Fandoms:        []string{"Original Work"},
		Relationship:   []string{"Mira/Tobias"},
		Characters:     []string{"Mira", "Tobias"},
		AdditionalTags: []string{"Road Trips", "Slow Burn"},
		Language:       "English",
		Stats: WorkStats{
			Published: "2021-03-14",
			Words:     12345,
			Comments:  42,
			Kudos:     1024,
			Bookmarks: 87,
			Hits:      20001,
		},
	}
	if diff := cmp.Diff(expected, rep); diff != "" {
		t.Fatalf("unexpected representation (-want +got):\n%s", diff)
	}
}

func TestWorkRepresentationOptionalFields(t *testing.T) {
	doc := fixtureDocument(t, "work.html")
	doc.Find("div.summary").Remove()
	doc.Find("dd.comments, dd.kudos, dd.bookmarks").Remove()
	doc.Find("dd.category, dd.relationship, dd.character, dd.freeform").Remove()

	rep, err := Work{ID: "12345678", doc: doc}.Representation()
	require.NoError(t, err)
	require.Equal(t, "", rep.Summary)
	require.Equal(t, 0, rep.Stats.Comments)
	require.Equal(t, 0, rep.Stats.Kudos)
	require.Equal(t, 0, rep.Stats.Bookmarks)
	require.Equal(t, 12345, rep.Stats.Words)
	require.Equal(t, []string{}, rep.Category)
	require.Equal(t, []string{}, rep.Relationship)
	require.Equal(t, []string{}, rep.Characters)
	require.Equal(t, []string{}, rep.AdditionalTags)
	require.NotEmpty(t, rep.Fandoms)

	work := Work{ID: "12345678", doc: doc}
	_, err = work.Relationships()
	var notFound *FieldNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSessionWork(t *testing.T) {
	session, archive, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/works/12345678" {
			writePage(w, http.StatusNotFound, "")
			return
		}
		writePage(w, http.StatusOK, readFixture(t, "work.html"))
	})

	work, err := session.Work(context.Background(), "12345678")
	require.NoError(t, err)
	require.Equal(t, "12345678", work.ID)
	require.Equal(t, session.BaseUrl.String()+"/works/12345678", work.URL())

	title, err := work.Title()
	require.NoError(t, err)
	require.Equal(t, "The Long Way Home", title)
	require.Equal(t, []string{"GET /works/12345678"}, archive.Requests())
}

func TestSessionWorkNotFound(t *testing.T) {
	session, _, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		writePage(w, http.StatusNotFound, "<html><body>404</body></html>")
	})

	_, err := session.Work(context.Background(), "999")
	var notFound *WorkNotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, "999", notFound.ID)
	require.Contains(t, err.Error(), "999")
}

func TestSessionWorkServerError(t *testing.T) {
	session, _, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		writePage(w, http.StatusServiceUnavailable, "down for maintenance")
	})

	_, err := session.Work(context.Background(), "1")
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusServiceUnavailable, fetchErr.Status)
}

func TestSessionWorkAdultContent(t *testing.T) {
	session, archive, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("view_adult") == "true" {
			writePage(w, http.StatusOK, readFixture(t, "work.html"))
			return
		}
		writePage(w, http.StatusOK, readFixture(t, "adult.html"))
	})

	work, err := session.Work(context.Background(), "12345678")
	require.NoError(t, err)

	title, err := work.Title()
	require.NoError(t, err)
	require.Equal(t, "The Long Way Home", title)

	require.Equal(t, []string{
		"GET /works/12345678",
		"GET /works/12345678?view_adult=true",
	}, archive.Requests())
}

func TestSessionWorkRestricted(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		writePage(w, http.StatusOK, readFixture(t, "restricted.html"))
	}

	session, _, _ := newTestSession(t, handler)
	_, err := session.Work(context.Background(), "777")
	var restricted *RestrictedWorkError
	require.True(t, errors.As(err, &restricted))
	require.Equal(t, "777", restricted.ID)

	// a logged in session gets whatever the archive serves
	authenticated, _, _ := newTestSession(t, handler)
	authenticated.username = "reader"
	work, err := authenticated.Work(context.Background(), "777")
	require.NoError(t, err)
	require.Equal(t, "777", work.ID)
}
