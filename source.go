package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/richtext"
)

var (
	// ErrNotFound is returned when a requested post does not exist.
	ErrNotFound = errors.New("spacetraveling: post not found")
	// ErrBadCursor is returned when a load-more cursor is not a page of the
	// configured repository.
	ErrBadCursor = errors.New("spacetraveling: invalid pagination cursor")
)

// ContentSource is where posts come from. A non-empty ref reads a preview
// version instead of published content.
type ContentSource interface {
	FirstPage(ctx context.Context, pageSize int, ref string) (PostPagination, error)
	NextPage(ctx context.Context, cursor string) (PostPagination, error)
	Post(ctx context.Context, uid, ref string) (Post, error)
	PostByID(ctx context.Context, id, ref string) (Post, error)
}

// postData mirrors the fields of the posts custom type.
type postData struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Author   string `json:"author"`
	Banner   struct {
		URL string `json:"url"`
		Alt string `json:"alt"`
	} `json:"banner"`
	Content []struct {
		Heading string            `json:"heading"`
		Body    richtext.RichText `json:"body"`
	} `json:"content"`
}

// summaryFields is the field projection used for list queries.
func summaryFields(docType string) []string {
	return []string{
		docType + ".title",
		docType + ".subtitle",
		docType + ".author",
		docType + ".content",
	}
}

// CMSSource reads posts from a Prismic repository.
type CMSSource struct {
	client  *prismic.Client
	docType string
}

// NewCMSSource wraps client; docType is the custom type holding posts.
func NewCMSSource(client *prismic.Client, docType string) *CMSSource {
	return &CMSSource{client: client, docType: docType}
}

// SetMasterRef points published reads at ref, or at a freshly resolved
// master ref when ref is empty.
func (s *CMSSource) SetMasterRef(ref string) {
	s.client.SetMasterRef(ref)
}

// FirstPage returns the first page of posts.
func (s *CMSSource) FirstPage(ctx context.Context, pageSize int, ref string) (PostPagination, error) {
	defer observeCMS("first_page", time.Now())
	resp, err := s.client.Query(ctx,
		[]prismic.Predicate{prismic.At("document.type", s.docType)},
		prismic.QueryOptions{
			Ref:       ref,
			Fetch:     summaryFields(s.docType),
			PageSize:  pageSize,
			Orderings: "[document.first_publication_date desc]",
		})
	if err != nil {
		cmsErrors.WithLabelValues("first_page").Inc()
		return PostPagination{}, fmt.Errorf("query %s: %w", s.docType, err)
	}
	return paginationFromResponse(resp)
}

// NextPage follows a cursor returned with a previous page.
func (s *CMSSource) NextPage(ctx context.Context, cursor string) (PostPagination, error) {
	defer observeCMS("next_page", time.Now())
	resp, err := s.client.FetchPage(ctx, cursor)
	if err != nil {
		if errors.Is(err, prismic.ErrForeignCursor) {
			return PostPagination{}, ErrBadCursor
		}
		cmsErrors.WithLabelValues("next_page").Inc()
		return PostPagination{}, fmt.Errorf("fetch page: %w", err)
	}
	return paginationFromResponse(resp)
}

// Post returns the post with the given uid.
func (s *CMSSource) Post(ctx context.Context, uid, ref string) (Post, error) {
	defer observeCMS("post", time.Now())
	doc, err := s.client.GetByUID(ctx, s.docType, uid, prismic.QueryOptions{Ref: ref})
	if err != nil {
		if errors.Is(err, prismic.ErrNotFound) {
			return Post{}, ErrNotFound
		}
		cmsErrors.WithLabelValues("post").Inc()
		return Post{}, fmt.Errorf("get %s %q: %w", s.docType, uid, err)
	}
	return postFromDocument(*doc)
}

// PostByID returns the post with the given document id. Previews address
// documents by id.
func (s *CMSSource) PostByID(ctx context.Context, id, ref string) (Post, error) {
	defer observeCMS("post_by_id", time.Now())
	doc, err := s.client.GetByID(ctx, id, prismic.QueryOptions{Ref: ref})
	if err != nil {
		if errors.Is(err, prismic.ErrNotFound) {
			return Post{}, ErrNotFound
		}
		cmsErrors.WithLabelValues("post_by_id").Inc()
		return Post{}, fmt.Errorf("get document %q: %w", id, err)
	}
	return postFromDocument(*doc)
}

func paginationFromResponse(resp *prismic.Response) (PostPagination, error) {
	page := PostPagination{
		NextPage: resp.NextPage,
		Results:  make([]PostSummary, 0, len(resp.Results)),
	}
	for _, doc := range resp.Results {
		p, err := postFromDocument(doc)
		if err != nil {
			return PostPagination{}, err
		}
		page.Results = append(page.Results, p.Summary())
	}
	return page, nil
}

func postFromDocument(doc prismic.Document) (Post, error) {
	var data postData
	if err := doc.Decode(&data); err != nil {
		return Post{}, err
	}
	post := Post{
		UID:                  doc.UID,
		ID:                   doc.ID,
		FirstPublicationDate: doc.FirstPublicationDate.Time,
		LastPublicationDate:  doc.LastPublicationDate.Time,
		Title:                data.Title,
		Subtitle:             data.Subtitle,
		Author:               data.Author,
		Banner:               Banner{URL: data.Banner.URL, Alt: data.Banner.Alt},
		Content:              make([]ContentSection, 0, len(data.Content)),
	}
	for _, c := range data.Content {
		post.Content = append(post.Content, ContentSection{Heading: c.Heading, Body: c.Body})
	}
	return post, nil
}
