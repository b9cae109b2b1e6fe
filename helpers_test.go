package spacetraveling

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	d := time.Date(2021, time.March, 25, 19, 25, 28, 0, time.UTC)

	assert.Equal(t, "25 mar 2021", FormatDate(d, "pt-BR"))
	assert.Equal(t, "25 Mar 2021", FormatDate(d, "en"))
	assert.Equal(t, "05 fev 2021", FormatDate(time.Date(2021, time.February, 5, 0, 0, 0, 0, time.UTC), "pt-BR"))
	assert.Equal(t, "25 mar 2021", FormatDate(d, "fr"), "unknown locales fall back to pt-BR")
	assert.Empty(t, FormatDate(time.Time{}, "pt-BR"))
}

func TestFormatDateTitle(t *testing.T) {
	d := time.Date(2021, time.December, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "01 Dez 2021", FormatDateTitle(d, "pt-BR"))
	assert.Equal(t, "01 Dec 2021", FormatDateTitle(d, "en"))
	assert.Empty(t, FormatDateTitle(time.Time{}, "pt-BR"))
}

func TestPostLink(t *testing.T) {
	assert.Equal(t, "/post/como-utilizar-hooks/", PostLink("como-utilizar-hooks"))
	assert.Equal(t, "/post/a%2Fb/", PostLink("a/b"))
}

func TestMoreLink(t *testing.T) {
	assert.Empty(t, MoreLink(""))
	assert.Equal(t,
		"/posts/more/?cursor=https%3A%2F%2Frepo.test%2Fapi%2Fv2%2Fdocuments%2Fsearch%3Fpage%3D2%26pageSize%3D1",
		MoreLink("https://repo.test/api/v2/documents/search?page=2&pageSize=1"))
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://blog.test", nil, "https://blog.test"},
		{"https://blog.test", []string{"post", "hello"}, "https://blog.test/post/hello/"},
		{"https://blog.test/", []string{"post", "hello"}, "https://blog.test/post/hello/"},
		{"https://blog.test/sub", []string{"post", "hello"}, "https://blog.test/sub/post/hello/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BuildURL(tt.base, tt.segments...))
	}
}

func TestWebsiteJsonLD(t *testing.T) {
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(WebsiteJsonLD(SiteConfig{Name: "spacetraveling", URL: "https://blog.test"})), &got))

	assert.Equal(t, "WebSite", got["@type"])
	assert.Equal(t, "spacetraveling", got["name"])
	assert.NotContains(t, got, "description")
}

func TestBlogPostingJsonLD(t *testing.T) {
	post := Post{
		UID:                  "como-utilizar-hooks",
		Title:                "Como utilizar Hooks",
		Subtitle:             "Pensando em sincronização",
		Author:               "Joseph Oliveira",
		FirstPublicationDate: time.Date(2021, 3, 15, 19, 25, 28, 0, time.UTC),
		Banner:               Banner{URL: "https://images.prismic.io/banner.png"},
	}
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(BlogPostingJsonLD(post, SiteConfig{Name: "spacetraveling", URL: "https://blog.test"})), &got))

	assert.Equal(t, "BlogPosting", got["@type"])
	assert.Equal(t, "Como utilizar Hooks", got["headline"])
	assert.Equal(t, "https://blog.test/post/como-utilizar-hooks/", got["url"])
	assert.Equal(t, "2021-03-15T19:25:28Z", got["datePublished"])
	assert.Equal(t, "https://images.prismic.io/banner.png", got["image"])
	assert.Equal(t, map[string]any{"@type": "Person", "name": "Joseph Oliveira"}, got["author"])
	assert.NotContains(t, got, "dateModified")
}
