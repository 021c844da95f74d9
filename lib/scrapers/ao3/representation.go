package ao3

import (
	"errors"
	"fmt"
	"time"
)

type WorkStats struct {
	// ISO date, YYYY-MM-DD
	Published string `json:"published"`
	Words     int    `json:"words"`
	Comments  int    `json:"comments"`
	Kudos     int    `json:"kudos"`
	Bookmarks int    `json:"bookmarks"`
	Hits      int    `json:"hits"`
}

// WorkRepresentation is every field of a work in one plain value.
type WorkRepresentation struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	Summary        string    `json:"summary"`
	Rating         []string  `json:"rating"`
	Warnings       []string  `json:"warnings"`
	Category       []string  `json:"category"`
	Fandoms        []string  `json:"fandoms"`
	Relationship   []string  `json:"relationship"`
	Characters     []string  `json:"characters"`
	AdditionalTags []string  `json:"additional_tags"`
	Language       string    `json:"language"`
	Stats          WorkStats `json:"stats"`
}

// fieldReader keeps the first error hit while reading many fields.
type fieldReader struct {
	err error
}

func (r *fieldReader) check(name string, err error) {
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("%s: %w", name, err)
	}
}

func readString(r *fieldReader, name string, get func() (string, error)) string {
	value, err := get()
	r.check(name, err)
	return value
}

func readList(r *fieldReader, name string, get func() ([]string, error)) []string {
	value, err := get()
	r.check(name, err)
	return value
}

func readInt(r *fieldReader, name string, get func() (int, error)) int {
	value, err := get()
	r.check(name, err)
	return value
}

// readOptionalList treats a missing field as an empty list, works without
// any tag of a kind have no block for it.
func readOptionalList(r *fieldReader, name string, get func() ([]string, error)) []string {
	value, err := get()
	var notFound *FieldNotFoundError
	if errors.As(err, &notFound) {
		return []string{}
	}
	r.check(name, err)
	return value
}

// readOptionalInt treats a missing field as 0, the archive leaves out the
// comment, kudos and bookmark counts of works that have none.
func readOptionalInt(r *fieldReader, name string, get func() (int, error)) int {
	value, err := get()
	var notFound *FieldNotFoundError
	if errors.As(err, &notFound) {
		return 0
	}
	r.check(name, err)
	return value
}

// Representation reads every field of the work. Works without a summary
// have no summary block at all, so a missing summary is left empty. The
// same goes for zero comment, kudos and bookmark counts and for empty
// category, relationship, character and additional tag lists. Every other
// field must be present.
func (w Work) Representation() (WorkRepresentation, error) {
	r := &fieldReader{}

	summary, err := w.Summary()
	var notFound *FieldNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		r.check("summary", err)
	}

	published, err := w.Published()
	r.check("published", err)

	rep := WorkRepresentation{
		ID:             w.ID,
		Title:          readString(r, "title", w.Title),
		Author:         readString(r, "author", w.Author),
		Summary:        summary,
		Rating:         readList(r, "rating", w.Rating),
		Warnings:       readList(r, "warnings", w.Warnings),
		Category:       readOptionalList(r, "category", w.Category),
		Fandoms:        readList(r, "fandoms", w.Fandoms),
		Relationship:   readOptionalList(r, "relationship", w.Relationships),
		Characters:     readOptionalList(r, "characters", w.Characters),
		AdditionalTags: readOptionalList(r, "additional_tags", w.AdditionalTags),
		Language:       readString(r, "language", w.Language),
		Stats: WorkStats{
			Published: published.Format(time.DateOnly),
			Words:     readInt(r, "words", w.Words),
			Comments:  readOptionalInt(r, "comments", w.Comments),
			Kudos:     readOptionalInt(r, "kudos", w.Kudos),
			Bookmarks: readOptionalInt(r, "bookmarks", w.Bookmarks),
			Hits:      readInt(r, "hits", w.Hits),
		},
	}
	if r.err != nil {
		w.tel().ReportWarning(report_work_field, w.ID, r.err)
		return WorkRepresentation{}, r.err
	}
	return rep, nil
}
