package urls

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{"root and slug", []string{"/", "docs"}, "/docs"},
		{"version root", []string{"/docs/", "/"}, "/docs/"},
		{"nested", []string{"/docs", "/guides/intro"}, "/docs/guides/intro"},
		{"trailing slash kept", []string{"/docs", "guides/"}, "/docs/guides/"},
		{"duplicate slashes", []string{"/docs//", "//a//b"}, "/docs/a/b"},
		{"protocol kept", []string{"https://github.com/org/repo/edit/main/", "docs/intro.md"}, "https://github.com/org/repo/edit/main/docs/intro.md"},
		{"plain protocol part", []string{"https:", "example.com", "x"}, "https://example.com/x"},
		{"query collapsing", []string{"/search/", "?q=1", "?r=2"}, "/search?q=1&r=2"},
		{"empty parts skipped", []string{"/docs", "", "intro"}, "/docs/intro"},
		{"no parts", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.parts...))
		})
	}
}

func TestEditURL(t *testing.T) {
	assert.Equal(t, "", EditURL("", "intro.md"))
	assert.Equal(t,
		"https://github.com/org/repo/edit/main/website/docs/guides/intro.md",
		EditURL("https://github.com/org/repo/edit/main/website/docs", "guides\\intro.md"))
}

func TestResolvePathname(t *testing.T) {
	assert.Equal(t, "/guides/intro", ResolvePathname("intro", "/guides/"))
	assert.Equal(t, "/intro", ResolvePathname("../intro", "/guides/"))
	assert.Equal(t, "/custom", ResolvePathname("/custom", "/guides/"))
	assert.Equal(t, "/guides/sub/", ResolvePathname("sub/", "/guides/"))
	assert.Equal(t, "/intro", ResolvePathname("intro", "/"))
}

func TestIsValidPathname(t *testing.T) {
	assert.True(t, IsValidPathname("/"))
	assert.True(t, IsValidPathname("/guides/intro"))
	assert.False(t, IsValidPathname("guides/intro"))
	assert.False(t, IsValidPathname("//evil.com"))
	assert.False(t, IsValidPathname("/a/../b"))
	assert.False(t, IsValidPathname("/a?b"))
}
