package ao3

import (
	"ao3-scraper/lib/telemetry"
	"ao3-scraper/lib/testutil"
	"net/http"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

var (
	readFixture = testutil.ReadFixture
	writePage   = testutil.WritePage
)

func fixtureDocument(t testing.TB, name string) *goquery.Document {
	t.Helper()
	return htmlDocument(t, readFixture(t, name))
}

func htmlDocument(t testing.TB, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

// newTestSession starts a fake archive and returns an anonymous session
// pointed at it.
func newTestSession(t testing.TB, handler http.HandlerFunc) (*Session, *testutil.Archive, *telemetry.Recorder) {
	t.Helper()

	archive := testutil.NewArchive(t, handler)
	recorder := &telemetry.Recorder{}
	session, err := NewSession(SessionOptions{
		BaseUrl:   archive.URL,
		Telemetry: recorder,
	})
	require.NoError(t, err)
	return session, archive, recorder
}

// pageServer serves fixtures by page number for a single list endpoint.
func pageServer(t testing.TB, path string, pages map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			writePage(w, http.StatusNotFound, "")
			return
		}
		fixture, ok := pages[r.URL.Query().Get("page")]
		if !ok {
			writePage(w, http.StatusNotFound, "")
			return
		}
		writePage(w, http.StatusOK, readFixture(t, fixture))
	}
}
