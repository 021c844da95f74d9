package ao3

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkIDFromURL(t *testing.T) {
	testCases := []struct {
		url      string
		expected string
		valid    bool
	}{
		{url: "https://archiveofourown.org/works/1234567", expected: "1234567", valid: true},
		{url: "http://archiveofourown.org/works/42", expected: "42", valid: true},
		{url: "https://archiveofourown.org/works/42?view_adult=true", expected: "42", valid: true},
		{url: "https://archiveofourown.org/works/42#main", expected: "42", valid: true},
		{url: "https://archiveofourown.org/works/42/chapters/99", expected: "42", valid: true},
		{url: "https://archiveofourown.org/works/42/chapters/99?view_adult=true#workskin", expected: "42", valid: true},
		{url: "https://archiveofourown.org/works/42/chapters/abc"},
		{url: "https://archiveofourown.org/works/42/bookmarks"},
		{url: "https://archiveofourown.org/works/abc"},
		{url: "https://archiveofourown.org/users/alice"},
		{url: "https://example.org/works/42"},
		{url: "archiveofourown.org/works/42"},
		{url: ""},
	}

	for _, test := range testCases {
		t.Run(test.url, func(t *testing.T) {
			id, err := WorkIDFromURL(test.url)
			if test.valid {
				require.NoError(t, err)
				require.Equal(t, test.expected, id)
				return
			}

			var malformed *MalformedURLError
			require.True(t, errors.As(err, &malformed), "expected MalformedURLError, got %v", err)
			require.Equal(t, test.url, malformed.URL)
			require.Empty(t, id)
		})
	}
}
