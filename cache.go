package spacetraveling

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const (
	kindPage = "page"
	kindPost = "post"
	kindAll  = "all"

	firstPageKey    = "first"
	cursorKeyPrefix = "cursor:"

	// allPageSize and maxAllPages bound the walk that collects every post
	// for the feed and the sitemap.
	allPageSize = 100
	maxAllPages = 50
)

// PostCache is an in-memory cache of CMS pages and posts with TTL. Misses
// for the same key share one CMS call. When a Store is attached, every good
// answer is snapshotted and served back if the CMS later fails.
type PostCache struct {
	source   ContentSource
	store    *Store
	log      *slog.Logger
	pageSize int
	timeout  time.Duration

	pages *expirable.LRU[string, PostPagination]
	posts *expirable.LRU[string, Post]
	group singleflight.Group
	gen   atomic.Uint64
}

// CacheOptions configures a PostCache.
type CacheOptions struct {
	Size     int
	TTL      time.Duration
	PageSize int
	Timeout  time.Duration
	Store    *Store
	Logger   *slog.Logger
}

// NewPostCache creates a PostCache backed by the given source.
func NewPostCache(src ContentSource, opts CacheOptions) *PostCache {
	if opts.Size <= 0 {
		opts.Size = 256
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &PostCache{
		source:   src,
		store:    opts.Store,
		log:      opts.Logger,
		pageSize: opts.PageSize,
		timeout:  opts.Timeout,
		pages:    expirable.NewLRU[string, PostPagination](opts.Size, nil, opts.TTL),
		posts:    expirable.NewLRU[string, Post](opts.Size, nil, opts.TTL),
	}
}

// Invalidate clears the cache so the next read triggers a fresh load.
// Fetches already in flight finish for their callers but are not stored.
func (c *PostCache) Invalidate() {
	c.gen.Add(1)
	c.pages.Purge()
	c.posts.Purge()
}

// FirstPage returns the first page of posts.
func (c *PostCache) FirstPage(ctx context.Context) (PostPagination, error) {
	return load(ctx, c, c.pages, kindPage, firstPageKey, func(ctx context.Context) (PostPagination, error) {
		return c.source.FirstPage(ctx, c.pageSize, "")
	})
}

// NextPage returns the page addressed by cursor.
func (c *PostCache) NextPage(ctx context.Context, cursor string) (PostPagination, error) {
	return load(ctx, c, c.pages, kindPage, cursorKeyPrefix+cursor, func(ctx context.Context) (PostPagination, error) {
		return c.source.NextPage(ctx, cursor)
	})
}

// Post returns a single post by uid.
func (c *PostCache) Post(ctx context.Context, uid string) (Post, error) {
	return load(ctx, c, c.posts, kindPost, uid, c.postFetcher(uid))
}

// PostWithin is Post with a deadline on waiting: when the post is not
// cached and the CMS has not answered after wait, it returns ready=false
// while the fetch keeps running and fills the cache for the next request.
func (c *PostCache) PostWithin(ctx context.Context, uid string, wait time.Duration) (post Post, ready bool, err error) {
	if p, ok := lookup(c.posts, kindPost, uid); ok {
		return p, true, nil
	}
	ch := c.group.DoChan(kindPost+":"+uid, fill(ctx, c, c.posts, kindPost, uid, c.postFetcher(uid)))

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case r := <-ch:
		if r.Err != nil {
			return Post{}, true, r.Err
		}
		return r.Val.(Post), true, nil
	case <-timer.C:
		return Post{}, false, nil
	case <-ctx.Done():
		return Post{}, false, ctx.Err()
	}
}

// AllPosts walks every page and returns all summaries, newest first.
func (c *PostCache) AllPosts(ctx context.Context) ([]PostSummary, error) {
	page, err := load(ctx, c, c.pages, kindAll, kindAll, func(ctx context.Context) (PostPagination, error) {
		first, err := c.source.FirstPage(ctx, allPageSize, "")
		if err != nil {
			return PostPagination{}, err
		}
		all := first
		for i := 1; all.HasMore() && i < maxAllPages; i++ {
			next, err := c.source.NextPage(ctx, all.NextPage)
			if err != nil {
				return PostPagination{}, err
			}
			all = all.Append(next)
		}
		all.NextPage = ""
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *PostCache) postFetcher(uid string) func(context.Context) (Post, error) {
	return func(ctx context.Context) (Post, error) {
		return c.source.Post(ctx, uid, "")
	}
}

func lookup[T any](lru *expirable.LRU[string, T], kind, key string) (T, bool) {
	v, ok := lru.Get(key)
	if ok {
		cacheLookups.WithLabelValues(kind, "hit").Inc()
	} else {
		cacheLookups.WithLabelValues(kind, "miss").Inc()
	}
	return v, ok
}

func load[T any](ctx context.Context, c *PostCache, lru *expirable.LRU[string, T], kind, key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := lookup(lru, kind, key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(kind+":"+key, fill(ctx, c, lru, kind, key, fetch))
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// fill returns the shared fetch for a key. The fetch is detached from the
// caller's cancellation since other callers may be waiting on it.
func fill[T any](ctx context.Context, c *PostCache, lru *expirable.LRU[string, T], kind, key string, fetch func(context.Context) (T, error)) func() (any, error) {
	return func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		snapKey := kind + ":" + key
		gen := c.gen.Load()
		v, err := fetch(fctx)
		if err == nil {
			if c.gen.Load() == gen {
				lru.Add(key, v)
			}
			if c.store != nil {
				if serr := c.store.SaveSnapshot(snapKey, v); serr != nil {
					c.log.Warn("snapshot save failed", "key", snapKey, "error", serr)
				}
			}
			return v, nil
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrBadCursor) || c.store == nil {
			return v, err
		}

		var stale T
		at, serr := c.store.LoadSnapshot(snapKey, &stale)
		if serr != nil {
			return v, err
		}
		cacheLookups.WithLabelValues(kind, "stale").Inc()
		c.log.Warn("serving stale snapshot", "key", snapKey, "taken_at", at, "error", err)
		return stale, nil
	}
}
