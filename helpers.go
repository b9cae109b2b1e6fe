package spacetraveling

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var monthAbbr = map[string][12]string{
	"pt-BR": {"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
	"en":    {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

// FormatDate renders t as "dd MMM yyyy" using the locale's month
// abbreviations ("25 mar 2021" for pt-BR). The zero time renders empty.
func FormatDate(t time.Time, locale string) string {
	if t.IsZero() {
		return ""
	}
	months, ok := monthAbbr[locale]
	if !ok {
		months = monthAbbr["pt-BR"]
	}
	return fmt.Sprintf("%02d %s %d", t.Day(), months[t.Month()-1], t.Year())
}

// FormatDateTitle is FormatDate with every word capitalised, as shown on
// the post page ("25 Mar 2021").
func FormatDateTitle(t time.Time, locale string) string {
	tag := language.BrazilianPortuguese
	if locale == "en" {
		tag = language.English
	}
	return cases.Title(tag).String(FormatDate(t, locale))
}

// PostLink returns the site-relative URL of a post.
func PostLink(uid string) string {
	return "/post/" + url.PathEscape(uid) + "/"
}

// MoreLink returns the load-more URL for a cursor, or "" when exhausted.
func MoreLink(cursor string) string {
	if cursor == "" {
		return ""
	}
	return "/posts/more/?cursor=" + url.QueryEscape(cursor)
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) template.JS {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	return marshalJsonLD(data)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post Post, cfg SiteConfig) template.JS {
	postURL := BuildURL(cfg.URL, "post", post.UID)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    post.Title,
		"description": post.Subtitle,
		"url":         postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if !post.FirstPublicationDate.IsZero() {
		data["datePublished"] = post.FirstPublicationDate.Format(time.RFC3339)
	}
	if !post.LastPublicationDate.IsZero() {
		data["dateModified"] = post.LastPublicationDate.Format(time.RFC3339)
	}
	if post.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  post.Author,
		}
	}
	if post.Banner.URL != "" {
		data["image"] = post.Banner.URL
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	return marshalJsonLD(data)
}

func marshalJsonLD(data map[string]interface{}) template.JS {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return template.JS(b)
}
