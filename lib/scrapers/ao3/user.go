package ao3

import (
	"ao3-scraper/lib/htmlutil"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// User is an archive user seen through a session. Private bookmarks and
// reading history are only visible when the session is logged in as them.
type User struct {
	Username string
	session  *Session
}

func NewUser(session *Session, username string) User {
	return User{Username: username, session: session}
}

// Login creates a session and logs it in as username.
func Login(ctx context.Context, opts SessionOptions, username, password string) (User, error) {
	session, err := NewSession(opts)
	if err != nil {
		return User{}, err
	}
	err = session.Login(ctx, username, password)
	if err != nil {
		return User{}, err
	}
	return NewUser(session, username), nil
}

func (u User) Session() *Session {
	return u.session
}

func (u User) String() string {
	return fmt.Sprintf("User(username=%q)", u.Username)
}

func (u User) listEndpoint(list string) func(page int) string {
	base := "/users/" + url.PathEscape(u.Username) + "/" + list
	return func(page int) string {
		return fmt.Sprintf("%s?page=%d", base, page)
	}
}

// BookmarkIDs lists the ids of the works the user bookmarked. Bookmarks of
// works hosted outside the archive are left out.
func (u User) BookmarkIDs() *Pager[string] {
	return newPager(u.session, u.listEndpoint("bookmarks"), u.parseBookmarksPage)
}

// Bookmarks fetches every work the user bookmarked. This makes one request
// per bookmark on top of the bookmark pages.
func (u User) Bookmarks(ctx context.Context) ([]Work, error) {
	ids, err := Collect(ctx, u.BookmarkIDs())
	if err != nil {
		return nil, err
	}

	works := make([]Work, 0, len(ids))
	for i, id := range ids {
		work, err := u.session.Work(ctx, id)
		if err != nil {
			u.session.tel.ReportBroken(report_user_bookmarks, err, id)
			return nil, fmt.Errorf("bookmark %s: %w", id, err)
		}
		works = append(works, work)
		u.session.tel.ReportCount(report_user_bookmarks, int64(i+1))
	}
	return works, nil
}

// external works live under /external_works and never match
var bookmarkWorkPath = regexp.MustCompile(`^/works/([0-9]+)`)

// bookmarks are listed as
//
//	<ol class="bookmark index group">
//	  <li id="bookmark_12345" class="bookmark blurb group" role="article">
//	    <h4 class="heading">
//	      <a href="/works/12345678">Work Title</a>
//	      <a href="/users/authorname/pseuds/authorpseud" rel="author">Author Name</a>
//	    </h4>
//	    ...
//	  </li>
//	</ol>
func (u User) parseBookmarksPage(doc *goquery.Document) ([]string, bool, error) {
	list := doc.Find("ol.bookmark").First()
	if list.Length() == 0 {
		return nil, false, &FieldNotFoundError{Field: "bookmark list"}
	}

	seen := map[string]bool{}
	ids, err := parseEntries(u.session.tel, list.Find("li.blurb"), func(entry *goquery.Selection) ([]string, error) {
		anchors := htmlutil.GetAnchors(u.session.BaseUrl, entry.Find("h4.heading a"))
		if len(anchors) == 0 {
			return nil, &FieldNotFoundError{Field: "bookmark link"}
		}
		var ids []string
		for _, a := range anchors {
			groups := bookmarkWorkPath.FindStringSubmatch(a.Url.Path)
			if len(groups) < 2 || seen[groups[1]] {
				continue
			}
			seen[groups[1]] = true
			ids = append(ids, groups[1])
		}
		return ids, nil
	})
	if err != nil {
		return nil, false, err
	}
	return ids, hasNextPage(doc), nil
}

// ReadingHistoryItem is one entry of a user's reading history.
type ReadingHistoryItem struct {
	WorkID   string
	LastRead time.Time
}

// ReadingHistory lists the works the user viewed, most recent first. The
// user has to have turned on viewing history in their preferences.
func (u User) ReadingHistory() *Pager[ReadingHistoryItem] {
	return newPager(u.session, u.listEndpoint("readings"), u.parseReadingsPage)
}

var lastViewedRegex = regexp.MustCompile(`[0-9]{1,2} [A-Z][a-z]+ [0-9]{4}`)

// readings are listed as
//
//	<ol class="reading work index group">
//	  <li id="work_12345" class="reading work blurb group">
//	    ...
//	    <h4 class="viewed heading">
//	      <span>Last viewed:</span> 24 Dec 2012
//	      (Latest version.)
//	      Viewed once
//	    </h4>
//	  </li>
//	</ol>
//
// deleted works show up as <li class="deleted reading work blurb group">
// without an id.
func (u User) parseReadingsPage(doc *goquery.Document) ([]ReadingHistoryItem, bool, error) {
	list := doc.Find("ol.reading").First()
	if list.Length() == 0 {
		return nil, false, &FieldNotFoundError{Field: "reading list"}
	}

	items, err := parseEntries(u.session.tel, list.Find("li.blurb"), parseReadingEntry)
	if err != nil {
		return nil, false, err
	}
	return items, hasNextPage(doc), nil
}

func parseReadingEntry(entry *goquery.Selection) ([]ReadingHistoryItem, error) {
	id, ok := entry.Attr("id")
	if !ok || !strings.HasPrefix(id, "work_") {
		return nil, &FieldNotFoundError{Field: "reading work id"}
	}

	viewed := entry.Find("h4.viewed").First()
	if viewed.Length() == 0 {
		return nil, &FieldNotFoundError{Field: "last viewed"}
	}
	text := htmlutil.CleanText(viewed.Text())
	dateStr := lastViewedRegex.FindString(text)
	if dateStr == "" {
		return nil, fmt.Errorf("no last viewed date in %q", text)
	}
	date, err := time.Parse("2 Jan 2006", dateStr)
	if err != nil {
		return nil, fmt.Errorf("parse last viewed date: %w", err)
	}

	return []ReadingHistoryItem{{
		WorkID:   strings.TrimPrefix(id, "work_"),
		LastRead: date,
	}}, nil
}
