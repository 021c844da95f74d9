package ao3

import (
	"fmt"
)

// WorkNotFoundError is returned when the archive answers 404 for a work.
type WorkNotFoundError struct {
	ID string
}

func (e *WorkNotFoundError) Error() string {
	return fmt.Sprintf("unable to find a work with id %q", e.ID)
}

// RestrictedWorkError is returned when a work is only visible to
// registered users and the session is not logged in.
type RestrictedWorkError struct {
	ID string
}

func (e *RestrictedWorkError) Error() string {
	return fmt.Sprintf("work %q is only available to registered users, log in to view it", e.ID)
}

// AuthenticationError is returned when the archive rejects a login.
type AuthenticationError struct {
	Username string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("failed to log in as %q, is your password correct?", e.Username)
}

// FieldNotFoundError is returned when an element a scraper depends on is
// missing from a page, usually because the page layout changed.
type FieldNotFoundError struct {
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("could not find field %q on the page", e.Field)
}

// FetchError is returned for any unexpected http status.
type FetchError struct {
	URL    string
	Status int
	Body   string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("unexpected response from %s: status %d", e.URL, e.Status)
}

// MalformedURLError is returned when a url does not point at a work.
type MalformedURLError struct {
	URL string
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("%q is not a recognised AO3 work URL", e.URL)
}
