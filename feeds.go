package spacetraveling

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	AtomNS  string     `xml:"xmlns:atom,attr"`
	DCNS    string     `xml:"xmlns:dc,attr"`
	Channel rssChannel `xml:"channel"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Self          atomLink  `xml:"atom:link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description"`
	Creator     string  `xml:"dc:creator,omitempty"`
	PubDate     string  `xml:"pubDate,omitempty"`
	GUID        rssGUID `xml:"guid"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
}

// newest returns the latest first publication date among posts.
func newest(posts []PostSummary) time.Time {
	var t time.Time
	for _, p := range posts {
		if p.FirstPublicationDate.After(t) {
			t = p.FirstPublicationDate
		}
	}
	return t
}

func (a *App) renderRSS(c echo.Context, posts []PostSummary) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		item := rssItem{
			Title:       p.Title,
			Link:        BuildURL(base, "post", p.UID),
			Description: p.Subtitle,
			Creator:     p.Author,
			GUID:        rssGUID{Value: p.UID, IsPermaLink: false},
		}
		if !p.FirstPublicationDate.IsZero() {
			item.PubDate = p.FirstPublicationDate.Format(time.RFC1123Z)
		}
		items = append(items, item)
	}

	ch := rssChannel{
		Title: a.Config.Name,
		Link:  BuildURL(base),
		Self: atomLink{
			Href: strings.TrimSuffix(base, "/") + "/feed.xml",
			Rel:  "self",
			Type: "application/rss+xml",
		},
		Description: a.Config.Description,
		Language:    a.Config.site().Lang,
		Items:       items,
	}
	if t := newest(posts); !t.IsZero() {
		ch.LastBuildDate = t.Format(time.RFC1123Z)
	}
	return writeXML(c, "application/rss+xml; charset=utf-8", rssXML{
		Version: "2.0",
		AtomNS:  "http://www.w3.org/2005/Atom",
		DCNS:    "http://purl.org/dc/elements/1.1/",
		Channel: ch,
	})
}

func (a *App) renderSitemap(c echo.Context, posts []PostSummary) error {
	base := a.Config.URL
	home := sitemapURL{Loc: BuildURL(base), ChangeFreq: "daily"}
	if t := newest(posts); !t.IsZero() {
		home.LastMod = t.Format("2006-01-02")
	}
	urls := []sitemapURL{home}
	for _, p := range posts {
		u := sitemapURL{Loc: BuildURL(base, "post", p.UID), ChangeFreq: "monthly"}
		if !p.FirstPublicationDate.IsZero() {
			u.LastMod = p.FirstPublicationDate.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	return writeXML(c, "application/xml; charset=utf-8", sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	})
}

func writeXML(c echo.Context, contentType string, v any) error {
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(v)
}
