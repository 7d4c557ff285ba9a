// Package urls joins and normalizes site-relative URLs and pathnames.
package urls

import (
	"path"
	"regexp"
	"strings"
)

var (
	plainProtocol     = regexp.MustCompile(`^[^/:]+:/*$`)
	protocolSlashes   = regexp.MustCompile(`^([^/:]+):/*`)
	leadingSlashes    = regexp.MustCompile(`^/+`)
	trailingSlashes   = regexp.MustCompile(`/+$`)
	slashBeforeSearch = regexp.MustCompile(`/(\?|&|#[^!/])`)
	repeatedSlashes   = regexp.MustCompile(`([^:/]/)/+`)
)

// Normalize joins URL parts with single slashes. Protocol slashes are kept,
// a trailing slash on the last part is kept, and query separators are
// collapsed so only the first "?" survives.
func Normalize(parts ...string) string {
	parts = append([]string(nil), parts...)
	if len(parts) == 0 {
		return ""
	}
	if len(parts) > 1 && plainProtocol.MatchString(parts[0]) {
		first := parts[0]
		parts = parts[1:]
		if strings.HasPrefix(first, "file:") && strings.HasPrefix(parts[0], "/") {
			parts[0] = first + "//" + parts[0]
		} else {
			parts[0] = first + parts[0]
		}
	}
	replacement := "$1://"
	if strings.HasPrefix(parts[0], "file:///") {
		replacement = "$1:///"
	}
	parts[0] = protocolSlashes.ReplaceAllString(parts[0], replacement)

	out := make([]string, 0, len(parts))
	hasEndingSlash := false
	for i, component := range parts {
		if component == "" {
			if i == len(parts)-1 && hasEndingSlash {
				out = append(out, "/")
			}
			continue
		}
		if component != "/" {
			if i > 0 {
				component = leadingSlashes.ReplaceAllString(component, "")
			}
			hasEndingSlash = strings.HasSuffix(component, "/")
			if i < len(parts)-1 {
				component = trailingSlashes.ReplaceAllString(component, "")
			} else {
				component = trailingSlashes.ReplaceAllString(component, "/")
			}
		}
		out = append(out, component)
	}

	s := strings.Join(out, "/")
	s = slashBeforeSearch.ReplaceAllString(s, "$1")
	if head, tail, ok := strings.Cut(s, "?"); ok {
		s = head + "?" + strings.ReplaceAll(tail, "?", "&")
	}
	s = repeatedSlashes.ReplaceAllString(s, "$1")
	s = leadingSlashes.ReplaceAllString(s, "/")
	return s
}

// EditURL appends a content-root-relative file path to an edit URL base.
// An empty base yields an empty result.
func EditURL(base, relPath string) string {
	if base == "" {
		return ""
	}
	return Normalize(base, strings.ReplaceAll(relPath, "\\", "/"))
}

// AddLeadingSlash prefixes s with "/" when missing.
func AddLeadingSlash(s string) string {
	if strings.HasPrefix(s, "/") {
		return s
	}
	return "/" + s
}

// AddTrailingSlash suffixes s with "/" when missing.
func AddTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

// ResolvePathname resolves to against the directory pathname from, the way a
// relative link is resolved by a browser. Absolute targets are returned as-is.
func ResolvePathname(to, from string) string {
	if strings.HasPrefix(to, "/") {
		return to
	}
	resolved := path.Join(AddLeadingSlash(from), to)
	if strings.HasSuffix(to, "/") && resolved != "/" {
		resolved += "/"
	}
	return resolved
}

// IsValidPathname reports whether s is an absolute, already-clean URL pathname.
func IsValidPathname(s string) bool {
	if !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") {
		return false
	}
	if strings.ContainsAny(s, "?#\\") {
		return false
	}
	for _, segment := range strings.Split(s, "/") {
		if segment == "." || segment == ".." {
			return false
		}
	}
	return true
}
