package ao3

import (
	"ao3-scraper/lib/htmlutil"
	"ao3-scraper/lib/telemetry"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	adultContentMarker = "This work could have adult content"
	restrictedMarker   = "This work is only available to registered users of the Archive"
)

// Work is a single work as it was when it was fetched. Every accessor reads
// from the same page and fails with a FieldNotFoundError on its own if its
// part of the page is missing.
type Work struct {
	ID string

	url string
	doc *goquery.Document
	api telemetry.API
}

func (w Work) tel() telemetry.API {
	if w.api == nil {
		return telemetry.SlogAPI{}
	}
	return w.api
}

func workEndpoint(id string) string {
	return "/works/" + id
}

// Work fetches the work with the given id. Adult content warnings are
// accepted on the way.
func (s *Session) Work(ctx context.Context, id string) (Work, error) {
	ctx, span := tracer.Start(ctx, "session:Work")
	defer span.End()
	span.SetAttributes(attribute.String("work_id", id))

	workError := func(err error) (Work, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Work{}, err
	}

	endpoint := workEndpoint(id)
	res, err := s.fetchWorkPage(ctx, id, endpoint)
	if err != nil {
		return workError(err)
	}

	// some works put up an interstitial asking you to confirm that you
	// really want to see adult content, yes we do
	if strings.Contains(res, adultContentMarker) {
		span.AddEvent("adult content interstitial")
		endpoint = endpoint + "?view_adult=true"
		res, err = s.fetchWorkPage(ctx, id, endpoint)
		if err != nil {
			return workError(err)
		}
	}

	if strings.Contains(res, restrictedMarker) && !s.Authenticated() {
		return workError(&RestrictedWorkError{ID: id})
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res))
	if err != nil {
		s.tel.ReportBroken(report_work_fetch, fmt.Errorf("parse: %w", err), id)
		return workError(err)
	}

	return Work{
		ID:  id,
		url: s.BaseUrl.JoinPath("works", id).String(),
		doc: doc,
		api: s.tel,
	}, nil
}

func (s *Session) fetchWorkPage(ctx context.Context, id, endpoint string) (string, error) {
	res, err := s.get(ctx, endpoint)
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) && fetchErr.Status == http.StatusNotFound {
		return "", &WorkNotFoundError{ID: id}
	}
	if err != nil {
		s.tel.ReportBroken(report_work_fetch, err, endpoint)
		return "", err
	}
	return res.String(), nil
}

func (w Work) String() string {
	return fmt.Sprintf("Work(id=%q)", w.ID)
}

// Equal reports whether two works are the same work.
func (w Work) Equal(other Work) bool {
	return w.ID == other.ID
}

// URL is the canonical address of the work.
func (w Work) URL() string {
	if w.url == "" {
		return DefaultBaseUrl + workEndpoint(w.ID)
	}
	return w.url
}

func (w Work) Title() (string, error) {
	title := w.doc.Find("h2.title").First()
	if title.Length() == 0 {
		return "", &FieldNotFoundError{Field: "title"}
	}
	return htmlutil.CleanText(title.Text()), nil
}

// Author is the first author in the byline. Anonymous works have a byline
// without links, its text is returned instead.
func (w Work) Author() (string, error) {
	byline := w.doc.Find("h3.byline").First()
	if byline.Length() == 0 {
		return "", &FieldNotFoundError{Field: "author"}
	}
	author := byline.Find("a[rel=author]").First()
	if author.Length() == 0 {
		return htmlutil.CleanText(byline.Text()), nil
	}
	return htmlutil.CleanText(author.Text()), nil
}

// Summary is the html of the work's summary.
func (w Work) Summary() (string, error) {
	blockquote := w.doc.Find("div.summary blockquote").First()
	if blockquote.Length() == 0 {
		return "", &FieldNotFoundError{Field: "summary"}
	}
	contents, err := blockquote.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(contents), nil
}

func (w Work) Rating() ([]string, error) {
	return extractList(w.doc, FieldRating)
}

// Warnings is empty when the work is marked as having no archive warnings.
func (w Work) Warnings() ([]string, error) {
	warnings, err := extractList(w.doc, FieldWarnings)
	if err != nil {
		return nil, err
	}
	return normalizeWarnings(warnings), nil
}

func (w Work) Category() ([]string, error) {
	return extractList(w.doc, FieldCategory)
}

func (w Work) Fandoms() ([]string, error) {
	return extractList(w.doc, FieldFandoms)
}

func (w Work) Relationships() ([]string, error) {
	return extractList(w.doc, FieldRelationships)
}

func (w Work) Characters() ([]string, error) {
	return extractList(w.doc, FieldCharacters)
}

func (w Work) AdditionalTags() ([]string, error) {
	return extractList(w.doc, FieldAdditionalTags)
}

func (w Work) Language() (string, error) {
	return extractScalar(w.doc, FieldLanguage)
}

func (w Work) Published() (time.Time, error) {
	return extractDate(w.doc, FieldPublished)
}

func (w Work) Words() (int, error) {
	return extractInt(w.doc, FieldWords)
}

func (w Work) Comments() (int, error) {
	return extractInt(w.doc, FieldComments)
}

func (w Work) Kudos() (int, error) {
	return extractInt(w.doc, FieldKudos)
}

func (w Work) Bookmarks() (int, error) {
	return extractInt(w.doc, FieldBookmarks)
}

func (w Work) Hits() (int, error) {
	return extractInt(w.doc, FieldHits)
}

// Usernames walks the users who left kudos on a work, in page order.
type Usernames struct {
	anchors []htmlutil.Anchor
	current string
}

// the kudos block mixes real users with controls to expand and collapse
// the list
var kudosControls = "#kudos_more_link, #kudos_collapser"

// KudosLeftBy lists the users who left kudos, as shown on the work page:
//
//	<div id="kudos">
//	  <p class="kudos">
//	    <a href="/users/alice">alice</a>, <a href="/users/bob">bob</a>
//	    and <a href="/works/1/kudos" id="kudos_more_link">24 more users</a>
//	  </p>
//	</div>
func (w Work) KudosLeftBy() *Usernames {
	base, err := url.Parse(w.url)
	if err != nil {
		base = nil
	}
	links := w.doc.Find("div#kudos a").Not(kudosControls)
	return &Usernames{anchors: htmlutil.GetAnchors(base, links)}
}

func (u *Usernames) Next() bool {
	if len(u.anchors) == 0 {
		return false
	}
	a := u.anchors[0]
	u.anchors = u.anchors[1:]

	if strings.HasPrefix(a.Url.Path, "/users/") {
		u.current = strings.SplitN(strings.TrimPrefix(a.Url.Path, "/users/"), "/", 2)[0]
	} else {
		u.current = a.Name
	}
	return true
}

func (u *Usernames) Value() string {
	return u.current
}

// Contains consumes the sequence until username is found.
func (u *Usernames) Contains(username string) bool {
	for u.Next() {
		if u.Value() == username {
			return true
		}
	}
	return false
}
