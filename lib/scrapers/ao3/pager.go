package ao3

import (
	"ao3-scraper/lib/telemetry"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// pageParser extracts the items of one page and reports whether the page
// links to a following one.
type pageParser[T any] func(doc *goquery.Document) (items []T, hasNext bool, err error)

// Pager lazily walks a paginated list on the archive, one page at a time.
// It is forward-only and cannot be restarted:
//
//	for pager.Next(ctx) {
//		item := pager.Value()
//	}
//	if err := pager.Err(); err != nil { ... }
//
// A page is only requested once every item of the previous page has been
// consumed, so stopping early never fetches another page.
type Pager[T any] struct {
	session  *Session
	endpoint func(page int) string
	parse    pageParser[T]

	page    int
	buffer  []T
	current T
	done    bool
	err     error
}

func newPager[T any](session *Session, endpoint func(page int) string, parse pageParser[T]) *Pager[T] {
	return &Pager[T]{
		session:  session,
		endpoint: endpoint,
		parse:    parse,
	}
}

// Next advances to the next item, fetching the next page when needed. It
// returns false once the list is exhausted or an error occurred.
func (p *Pager[T]) Next(ctx context.Context) bool {
	for len(p.buffer) == 0 {
		if p.done || p.err != nil {
			return false
		}
		p.fetchNextPage(ctx)
	}
	p.current = p.buffer[0]
	p.buffer = p.buffer[1:]
	return true
}

// Value is the item the last successful Next advanced to.
func (p *Pager[T]) Value() T {
	return p.current
}

// Err is the error that stopped the pager, if any.
func (p *Pager[T]) Err() error {
	return p.err
}

// Page is the number of the last page fetched, 0 before the first fetch.
func (p *Pager[T]) Page() int {
	return p.page
}

func (p *Pager[T]) fetchNextPage(ctx context.Context) {
	p.page++
	endpoint := p.endpoint(p.page)

	ctx, span := tracer.Start(ctx, "pager:fetchNextPage")
	defer span.End()
	span.SetAttributes(
		attribute.String("url", endpoint),
		attribute.Int("page", p.page),
	)

	doc, err := p.session.getDocument(ctx, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch page")
		p.session.tel.ReportBroken(report_pager_fetch, err, endpoint)
		p.err = fmt.Errorf("fetch page %d: %w", p.page, err)
		return
	}

	items, hasNext, err := p.parse(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse page")
		p.session.tel.ReportBroken(report_pager_fetch, err, endpoint)
		p.err = fmt.Errorf("parse page %d: %w", p.page, err)
		return
	}

	p.buffer = items
	p.done = !hasNext
	span.SetAttributes(attribute.Int("items", len(items)))
	p.session.tel.ReportDebug(report_pager_fetch, endpoint, len(items), hasNext)
}

// Collect drains the pager into a slice.
func Collect[T any](ctx context.Context, pager *Pager[T]) ([]T, error) {
	var out []T
	for pager.Next(ctx) {
		out = append(out, pager.Value())
	}
	return out, pager.Err()
}

// hasNextPage reads the pagination control at the end of a list:
//
//	<li class="next" title="next"> ... </li>
//
// It holds an <a> to the next page when there is one, otherwise a
// <span class="disabled">. A missing control also means the end of the list.
func hasNextPage(doc *goquery.Document) bool {
	next := doc.Find("li.next").First()
	if next.Length() == 0 {
		return false
	}
	return next.Find("span.disabled").Length() == 0
}

// parseEntries runs parseEntry over every entry in entries. An entry that
// fails to parse is skipped if it is marked as a deleted work, any other
// failure fails the whole page.
func parseEntries[T any](
	tel telemetry.API,
	entries *goquery.Selection,
	parseEntry func(entry *goquery.Selection) ([]T, error),
) ([]T, error) {
	out := []T{}
	var failure error
	entries.EachWithBreak(func(i int, entry *goquery.Selection) bool {
		items, err := parseEntry(entry)
		if err == nil {
			out = append(out, items...)
			return true
		}
		if entry.HasClass("deleted") {
			tel.ReportWarning(report_pager_entry, "skipping deleted work", i, err)
			return true
		}
		failure = fmt.Errorf("entry %d: %w", i, err)
		return false
	})
	if failure != nil {
		return nil, failure
	}
	return out, nil
}
