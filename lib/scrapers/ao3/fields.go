package ao3

import (
	"ao3-scraper/lib/htmlutil"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Field names a piece of work metadata. The value is the class of the <dd>
// holding it in the work's metadata and stats blocks.
type Field string

const (
	FieldRating         Field = "rating"
	FieldWarnings       Field = "warning"
	FieldCategory       Field = "category"
	FieldFandoms        Field = "fandom"
	FieldRelationships  Field = "relationship"
	FieldCharacters     Field = "character"
	FieldAdditionalTags Field = "freeform"
	FieldLanguage       Field = "language"
	FieldPublished      Field = "published"
	FieldWords          Field = "words"
	FieldComments       Field = "comments"
	FieldKudos          Field = "kudos"
	FieldBookmarks      Field = "bookmarks"
	FieldHits           Field = "hits"
)

const noWarningsSentinel = "No Archive Warnings Apply"

// the archive renders published dates as 2006-01-02, day-month-year is
// what it uses everywhere else
var dateLayouts = []string{"2006-01-02", "2 Jan 2006"}

type fieldValue struct {
	scalar string
	list   []string
	isList bool
}

// extractField reads the <dd> for field. A <dd> with the "tags" class holds
// a list, one entry per <li>; any other <dd> holds a single value, its first
// piece of content.
func extractField(doc *goquery.Document, field Field) (fieldValue, error) {
	dd := doc.Find("dd." + string(field)).First()
	if dd.Length() == 0 {
		return fieldValue{}, &FieldNotFoundError{Field: string(field)}
	}

	if dd.HasClass("tags") {
		items := []string{}
		dd.Find("li").Each(func(_ int, li *goquery.Selection) {
			items = append(items, htmlutil.CleanText(li.Text()))
		})
		return fieldValue{list: items, isList: true}, nil
	}

	first := htmlutil.FirstContent(dd.Nodes[0])
	if field == FieldBookmarks && first != nil && first.Type == html.ElementNode {
		// the bookmark count is wrapped in a link to the bookmarks page
		first = htmlutil.FirstContent(first)
	}
	if first == nil {
		return fieldValue{}, &FieldNotFoundError{Field: string(field)}
	}
	return fieldValue{scalar: htmlutil.CleanText(htmlutil.GetText(first))}, nil
}

func extractList(doc *goquery.Document, field Field) ([]string, error) {
	value, err := extractField(doc, field)
	if err != nil {
		return nil, err
	}
	if !value.isList {
		return []string{value.scalar}, nil
	}
	return value.list, nil
}

func extractScalar(doc *goquery.Document, field Field) (string, error) {
	value, err := extractField(doc, field)
	if err != nil {
		return "", err
	}
	if value.isList {
		return strings.Join(value.list, ", "), nil
	}
	return value.scalar, nil
}

func extractInt(doc *goquery.Document, field Field) (int, error) {
	text, err := extractScalar(doc, field)
	if err != nil {
		return 0, err
	}
	return parseCount(text)
}

func extractDate(doc *goquery.Document, field Field) (time.Time, error) {
	text, err := extractScalar(doc, field)
	if err != nil {
		return time.Time{}, err
	}
	return parseDate(text)
}

func parseCount(text string) (int, error) {
	n, err := strconv.Atoi(strings.ReplaceAll(text, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("parse count %q: %w", text, err)
	}
	return n, nil
}

func parseDate(text string) (time.Time, error) {
	var firstErr error
	for _, layout := range dateLayouts {
		date, err := time.Parse(layout, text)
		if err == nil {
			return date, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: %w", text, firstErr)
}

// normalizeWarnings maps the "no warnings" sentinel to an empty list.
func normalizeWarnings(warnings []string) []string {
	if len(warnings) == 1 && warnings[0] == noWarningsSentinel {
		return []string{}
	}
	return warnings
}
