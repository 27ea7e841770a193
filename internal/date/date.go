// Package date implements the team's civil-day policy. All dates are taken
// in Japan Standard Time regardless of the host timezone, and write actions
// are only valid against the current civil day.
package date

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrDateNotFound is returned by Extract when the message text carries no
// YYYY/MM/DD token.
var ErrDateNotFound = errors.New("no date found in message text")

// JST is a fixed UTC+9 offset, not a tzdata lookup, so the policy holds even
// on hosts without zone files.
var JST = time.FixedZone("JST", 9*60*60)

var nowFn = time.Now

var datePattern = regexp.MustCompile(`(\d{4})/(\d{2})/(\d{2})`)

// Weekday characters in time.Weekday order (Sunday first).
var weekdayKanji = [7]string{"日", "月", "火", "水", "木", "金", "土"}

// Today returns the current civil day as YYYY-MM-DD.
func Today() string {
	return nowFn().In(JST).Format(time.DateOnly)
}

// Extract finds the first YYYY/MM/DD token in text and returns it normalized
// to YYYY-MM-DD.
func Extract(text string) (string, error) {
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return "", ErrDateNotFound
	}
	return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]), nil
}

// IsCurrent reports whether the given YYYY-MM-DD date is today.
func IsCurrent(d string) bool {
	return d == Today()
}

// Header returns today's date formatted for the daily message heading,
// e.g. "2024/12/05(木)".
func Header() string {
	now := nowFn().In(JST)
	return fmt.Sprintf("%s(%s)", now.Format("2006/01/02"), weekdayKanji[now.Weekday()])
}
