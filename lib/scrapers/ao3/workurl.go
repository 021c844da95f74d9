package ao3

import (
	"regexp"
)

// matches urls of the form
//
//	https://archiveofourown.org/works/1234567
//	http://archiveofourown.org/works/1234567?view_adult=true
//	https://archiveofourown.org/works/1234567/chapters/7654321
var workUrlRegex = regexp.MustCompile(`^https?://archiveofourown\.org/works/([0-9]+)(?:/chapters/[0-9]+)?(?:[?#].*)?$`)

// WorkIDFromURL returns the work id of a url pointing at a work.
func WorkIDFromURL(link string) (string, error) {
	groups := workUrlRegex.FindStringSubmatch(link)
	if len(groups) < 2 {
		return "", &MalformedURLError{URL: link}
	}
	return groups[1], nil
}
