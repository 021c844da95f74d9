package ao3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

// numbersPage renders a list page of the given numbers with or without a
// link to the next page.
func numbersPage(numbers []int, next bool) string {
	var b strings.Builder
	b.WriteString(`<html><body><ol class="numbers">`)
	for _, n := range numbers {
		fmt.Fprintf(&b, `<li class="blurb" data-n="%d"></li>`, n)
	}
	b.WriteString(`</ol><ol class="pagination actions">`)
	if next {
		b.WriteString(`<li class="next" title="next"><a rel="next" href="#">Next</a></li>`)
	} else {
		b.WriteString(`<li class="next" title="next"><span class="disabled">Next</span></li>`)
	}
	b.WriteString(`</ol></body></html>`)
	return b.String()
}

func parseNumbersPage(doc *goquery.Document) ([]int, bool, error) {
	numbers := []int{}
	var failure error
	doc.Find("ol.numbers li").Each(func(_ int, li *goquery.Selection) {
		var n int
		_, err := fmt.Sscanf(li.AttrOr("data-n", ""), "%d", &n)
		if err != nil && failure == nil {
			failure = err
		}
		numbers = append(numbers, n)
	})
	return numbers, hasNextPage(doc), failure
}

func numbersServer(pages map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Query().Get("page")]
		if !ok {
			writePage(w, http.StatusNotFound, "")
			return
		}
		writePage(w, http.StatusOK, body)
	}
}

func numbersEndpoint(page int) string {
	return fmt.Sprintf("/numbers?page=%d", page)
}

func TestPagerConcatenatesPages(t *testing.T) {
	session, archive, _ := newTestSession(t, numbersServer(map[string]string{
		"1": numbersPage([]int{1, 2, 3}, true),
		"2": numbersPage([]int{}, true),
		"3": numbersPage([]int{4, 5}, false),
	}))

	pager := newPager(session, numbersEndpoint, parseNumbersPage)
	require.Equal(t, 0, pager.Page())

	numbers, err := Collect(context.Background(), pager)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4, 5}, numbers)
	require.Equal(t, 3, pager.Page())

	// the last page has no next link, so nothing past it is requested
	require.Equal(t, []string{
		"GET /numbers?page=1",
		"GET /numbers?page=2",
		"GET /numbers?page=3",
	}, archive.Requests())

	require.False(t, pager.Next(context.Background()))
	require.Len(t, archive.Requests(), 3)
}

func TestPagerIsLazy(t *testing.T) {
	session, archive, _ := newTestSession(t, numbersServer(map[string]string{
		"1": numbersPage([]int{1, 2}, true),
		"2": numbersPage([]int{3}, false),
	}))
	ctx := context.Background()

	pager := newPager(session, numbersEndpoint, parseNumbersPage)
	require.Empty(t, archive.Requests())

	require.True(t, pager.Next(ctx))
	require.Equal(t, 1, pager.Value())
	require.True(t, pager.Next(ctx))
	require.Equal(t, 2, pager.Value())

	// stopping after the first page never touches the second one
	require.Equal(t, []string{"GET /numbers?page=1"}, archive.Requests())
}

func TestPagerStopsWithoutPaginationControl(t *testing.T) {
	session, archive, _ := newTestSession(t, numbersServer(map[string]string{
		"1": `<html><body><ol class="numbers"><li class="blurb" data-n="7"></li></ol></body></html>`,
	}))

	numbers, err := Collect(context.Background(), newPager(session, numbersEndpoint, parseNumbersPage))
	require.NoError(t, err)
	require.Equal(t, []int{7}, numbers)
	require.Len(t, archive.Requests(), 1)
}

func TestPagerFetchError(t *testing.T) {
	session, _, recorder := newTestSession(t, numbersServer(map[string]string{
		"1": numbersPage([]int{1}, true),
	}))

	pager := newPager(session, numbersEndpoint, parseNumbersPage)
	numbers, err := Collect(context.Background(), pager)
	require.Equal(t, []int{1}, numbers)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusNotFound, fetchErr.Status)
	require.Contains(t, err.Error(), "fetch page 2")

	broken := recorder.Reports("broken")
	require.NotEmpty(t, broken)
	require.Equal(t, "ao3_scraper: "+report_pager_fetch, broken[len(broken)-1].Id)
}

func TestPagerParseError(t *testing.T) {
	session, _, _ := newTestSession(t, numbersServer(map[string]string{
		"1": `<html><body><ol class="numbers"><li class="blurb" data-n="x"></li></ol></body></html>`,
	}))

	pager := newPager(session, numbersEndpoint, parseNumbersPage)
	require.False(t, pager.Next(context.Background()))
	require.ErrorContains(t, pager.Err(), "parse page 1")
}

func TestHasNextPage(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected bool
	}{
		{
			name:     "link",
			body:     `<ol><li class="next"><a rel="next" href="?page=2">Next</a></li></ol>`,
			expected: true,
		},
		{
			name: "disabled",
			body: `<ol><li class="next"><span class="disabled">Next</span></li></ol>`,
		},
		{
			name: "missing",
			body: `<p>nothing here</p>`,
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, hasNextPage(htmlDocument(t, test.body)))
		})
	}
}
