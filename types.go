package spacetraveling

import (
	"html/template"
	"time"

	"github.com/eringen/spacetraveling/richtext"
)

// PostSummary is the projection of a post shown in the list.
type PostSummary struct {
	UID                  string    `json:"uid"`
	Title                string    `json:"title"`
	Subtitle             string    `json:"subtitle"`
	Author               string    `json:"author"`
	FirstPublicationDate time.Time `json:"first_publication_date"`
	Link                 string    `json:"link"`
}

// PostPagination is one page of summaries plus the cursor of the page after
// it. NextPage is empty on the last page.
type PostPagination struct {
	NextPage string        `json:"next_page"`
	Results  []PostSummary `json:"results"`
}

// Banner is the post's header image.
type Banner struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// ContentSection is one heading plus its rich text body.
type ContentSection struct {
	Heading string            `json:"heading"`
	Body    richtext.RichText `json:"body"`
}

// Post is a full article.
type Post struct {
	UID                  string           `json:"uid"`
	ID                   string           `json:"id"`
	FirstPublicationDate time.Time        `json:"first_publication_date"`
	LastPublicationDate  time.Time        `json:"last_publication_date"`
	Title                string           `json:"title"`
	Subtitle             string           `json:"subtitle"`
	Author               string           `json:"author"`
	Banner               Banner           `json:"banner"`
	Content              []ContentSection `json:"content"`
}

// Summary returns the list projection of p.
func (p Post) Summary() PostSummary {
	return PostSummary{
		UID:                  p.UID,
		Title:                p.Title,
		Subtitle:             p.Subtitle,
		Author:               p.Author,
		FirstPublicationDate: p.FirstPublicationDate,
		Link:                 PostLink(p.UID),
	}
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
	JSONLD      template.JS
	Refresh     int // seconds before the browser reloads, 0 for never
}

// Site is the subset of SiteConfig the templates need.
type Site struct {
	Name        string
	URL         string
	Description string
	Lang        string
}

// PostCard is a summary decorated for display.
type PostCard struct {
	PostSummary
	Date string
}

// HomePage is the data of the post list page and of its load-more fragment.
type HomePage struct {
	Site    Site
	Meta    PageMeta
	Posts   []PostCard
	MoreURL string // empty when there is nothing left to load
	Preview bool
}

// SectionView is a content section with its body already rendered.
type SectionView struct {
	Heading string
	Body    template.HTML
}

// PostPage is the data of the post detail page.
type PostPage struct {
	Site        Site
	Meta        PageMeta
	Post        Post
	Date        string
	ReadingTime int
	Sections    []SectionView
	Loading     bool
	Preview     bool
}
