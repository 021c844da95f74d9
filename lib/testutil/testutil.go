package testutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// Archive is a stand-in for the archive's web server. It hands every
// request to a handler and keeps a log of what was requested.
type Archive struct {
	URL string

	mutex    sync.Mutex
	requests []string
	handler  http.HandlerFunc
}

// NewArchive starts an Archive that lives until the end of the test.
func NewArchive(t testing.TB, handler http.HandlerFunc) *Archive {
	a := &Archive{handler: handler}
	server := httptest.NewServer(a)
	t.Cleanup(server.Close)
	a.URL = server.URL
	return a
}

func (a *Archive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mutex.Lock()
	a.requests = append(a.requests, r.Method+" "+r.URL.RequestURI())
	a.mutex.Unlock()
	a.handler(w, r)
}

// Requests lists every request made so far as "<method> <path>?<query>".
func (a *Archive) Requests() []string {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return append([]string(nil), a.requests...)
}

func WritePage(w http.ResponseWriter, status int, body string) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// ReadFixture reads testdata/<name> relative to the test's package.
func ReadFixture(t testing.TB, name string) string {
	t.Helper()
	body, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}
