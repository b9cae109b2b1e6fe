package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eringen/spacetraveling/richtext"
)

var errCMSDown = errors.New("cms down")

// fakeSource serves a fixed list of posts, paginated by cursors of the form
// "https://repo.test/api/v2/documents/search?page=N".
type fakeSource struct {
	mu       sync.Mutex
	posts    []Post
	down     bool
	delay    time.Duration
	calls    atomic.Int32
	previews map[string]Post // ref -> post
}

const fakeCursorPrefix = "https://repo.test/api/v2/documents/search?page="

func newFakeSource(n int) *fakeSource {
	f := &fakeSource{previews: map[string]Post{}}
	for i := 1; i <= n; i++ {
		id := strconv.Itoa(i)
		f.posts = append(f.posts, Post{
			UID:                  "post-" + id,
			ID:                   "ID" + id,
			Title:                "Post " + id,
			Subtitle:             "Subtitle " + id,
			Author:               "Author " + id,
			FirstPublicationDate: time.Date(2021, time.March, i, 19, 25, 0, 0, time.UTC),
			Banner:               Banner{URL: "https://images.prismic.io/banner-" + id + ".png"},
			Content: []ContentSection{{
				Heading: "Heading " + id,
				Body:    richtext.RichText{{Type: richtext.Paragraph, Text: "one two three"}},
			}},
		})
	}
	return f
}

func (f *fakeSource) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func (f *fakeSource) enter(ctx context.Context) error {
	f.calls.Add(1)
	f.mu.Lock()
	down, delay := f.down, f.delay
	f.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if down {
		return errCMSDown
	}
	return nil
}

func (f *fakeSource) page(n, size int) PostPagination {
	start := (n - 1) * size
	if start > len(f.posts) {
		start = len(f.posts)
	}
	end := start + size
	if end > len(f.posts) {
		end = len(f.posts)
	}
	p := PostPagination{Results: []PostSummary{}}
	for _, post := range f.posts[start:end] {
		p.Results = append(p.Results, post.Summary())
	}
	if end < len(f.posts) {
		p.NextPage = fakeCursorPrefix + strconv.Itoa(n+1) + "&pageSize=" + strconv.Itoa(size)
	}
	return p
}

func (f *fakeSource) FirstPage(ctx context.Context, pageSize int, ref string) (PostPagination, error) {
	if err := f.enter(ctx); err != nil {
		return PostPagination{}, err
	}
	return f.page(1, pageSize), nil
}

func (f *fakeSource) NextPage(ctx context.Context, cursor string) (PostPagination, error) {
	if err := f.enter(ctx); err != nil {
		return PostPagination{}, err
	}
	var n, size int
	rest, ok := strings.CutPrefix(cursor, fakeCursorPrefix)
	if !ok {
		return PostPagination{}, ErrBadCursor
	}
	if _, err := fmt.Sscanf(rest, "%d&pageSize=%d", &n, &size); err != nil {
		return PostPagination{}, ErrBadCursor
	}
	return f.page(n, size), nil
}

func (f *fakeSource) Post(ctx context.Context, uid, ref string) (Post, error) {
	if err := f.enter(ctx); err != nil {
		return Post{}, err
	}
	if ref != "" {
		if p, ok := f.previews[ref]; ok && p.UID == uid {
			return p, nil
		}
	}
	for _, p := range f.posts {
		if p.UID == uid {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

func (f *fakeSource) PostByID(ctx context.Context, id, ref string) (Post, error) {
	if err := f.enter(ctx); err != nil {
		return Post{}, err
	}
	if p, ok := f.previews[ref]; ok && p.ID == id {
		return p, nil
	}
	for _, p := range f.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}
