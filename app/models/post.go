package models

import (
	"time"
	"unicode/utf8"
)

// DateLayout is the calendar date format posts are stored with.
const DateLayout = "2006-01-02"

// ExcerptLength is how many characters of the body the listing shows.
const ExcerptLength = 100

// Today returns the current date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}

// Excerpt returns the first ExcerptLength characters of the body.
func (p *Post) Excerpt() string {
	if utf8.RuneCountInString(p.Body) <= ExcerptLength {
		return p.Body
	}
	return string([]rune(p.Body)[:ExcerptLength])
}

// PublishedAt parses the post date. Posts written by other clients may carry
// a full timestamp instead of a bare date.
func (p *Post) PublishedAt() (time.Time, bool) {
	for _, layout := range []string{DateLayout, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, p.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
