// Package numberprefix implements the ordinal file/folder naming convention
// ("01-intro.md", "02_guides/") used to order documents without leaking the
// ordinal into ids and slugs.
package numberprefix

import (
	"regexp"
	"strconv"
	"strings"
)

// Result is the outcome of parsing one path segment.
type Result struct {
	Filename     string
	NumberPrefix *int
}

// Parser strips a leading ordinal token from a single path segment.
type Parser func(segment string) Result

var (
	// Date-like ("2021-05-01-release") and version-like ("1.2-notes") names keep their digits.
	ignoredPrefix = regexp.MustCompile(`^(?:\d{2}|\d{4})[-_.]\d{2}(?:[-_.](?:\d{2}|\d{4}))?.*$|^\d+[-_.]\d+.*$`)
	numberPrefix  = regexp.MustCompile(`^(?P<prefix>\d+)\s*[-_.]+\s*(?P<suffix>[^-_.\s].*)$`)
)

// Default recognizes "NN-name", "NN_name", "NN.name" and "NN - name".
func Default(segment string) Result {
	if ignoredPrefix.MatchString(segment) {
		return Result{Filename: segment}
	}
	m := numberPrefix.FindStringSubmatch(segment)
	if m == nil {
		return Result{Filename: segment}
	}
	n, err := strconv.Atoi(m[numberPrefix.SubexpIndex("prefix")])
	if err != nil {
		// Digits too long for an int are not an ordinal.
		return Result{Filename: segment}
	}
	return Result{Filename: m[numberPrefix.SubexpIndex("suffix")], NumberPrefix: &n}
}

// Disabled never strips anything.
func Disabled(segment string) Result {
	return Result{Filename: segment}
}

// Strip returns segment without its ordinal prefix.
func Strip(segment string, parse Parser) string {
	return parse(segment).Filename
}

// StripPath strips ordinal prefixes from every segment of a slash-separated path.
func StripPath(p string, parse Parser) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = Strip(s, parse)
	}
	return strings.Join(segments, "/")
}
