package spacetraveling

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/richtext"
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	var page PostPagination
	var err error
	ref := previewRef(c)
	if ref != "" {
		page, err = a.source.FirstPage(ctx, a.Config.PageSize, ref)
	} else {
		page, err = a.Cache.FirstPage(ctx)
	}
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(a.homePage(page, ref != "")))
}

// handleMore loads exactly one page at the given cursor. The load-more
// script asks for the fragment only and appends it to the list already on
// screen; without the script the page is rendered on its own.
func (a *App) handleMore(c echo.Context) error {
	cursor := c.QueryParam("cursor")
	if cursor == "" {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	ctx := c.Request().Context()
	var page PostPagination
	var err error
	ref := previewRef(c)
	if ref != "" {
		page, err = a.source.NextPage(ctx, cursor)
	} else {
		page, err = a.Cache.NextPage(ctx, cursor)
	}
	if err != nil {
		if errors.Is(err, ErrBadCursor) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid cursor")
		}
		return err
	}
	data := a.homePage(page, ref != "")
	return RenderPartial(c, a.Views.Home(data), a.Views.PostList(data))
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	ctx := c.Request().Context()

	var post Post
	var err error
	ready := true
	ref := previewRef(c)
	if ref != "" {
		post, err = a.source.Post(ctx, slug, ref)
	} else {
		post, ready, err = a.Cache.PostWithin(ctx, slug, a.Config.FallbackAfter)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config.site()))
		}
		return err
	}
	if !ready {
		c.Response().Header().Set("Cache-Control", "no-store")
		return Render(c, a.Views.Post(a.loadingPage(slug)))
	}
	return Render(c, a.Views.Post(a.postPage(post, ref != "")))
}

// handlePostRedirect sends the plural path some links use to the canonical one.
func handlePostRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, PostLink(c.Param("slug")))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.AllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.AllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/public/logo.svg")
}

// handleRobots generates robots.txt dynamically using the site URL.
func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /preview/\n\nSitemap: %s/sitemap.xml\n", strings.TrimSuffix(a.Config.URL, "/"))
	return c.String(http.StatusOK, body)
}

func handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (a *App) homePage(page PostPagination, preview bool) HomePage {
	cards := make([]PostCard, 0, len(page.Results))
	for _, p := range page.Results {
		cards = append(cards, PostCard{
			PostSummary: p,
			Date:        FormatDate(p.FirstPublicationDate, a.Config.Locale),
		})
	}
	return HomePage{
		Site: a.Config.site(),
		Meta: PageMeta{
			Title:       "Posts | " + a.Config.Name,
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL),
			OGType:      "website",
			JSONLD:      WebsiteJsonLD(a.Config),
		},
		Posts:   cards,
		MoreURL: MoreLink(page.NextPage),
		Preview: preview,
	}
}

func (a *App) postPage(post Post, preview bool) PostPage {
	sections := make([]SectionView, 0, len(post.Content))
	for _, s := range post.Content {
		sections = append(sections, SectionView{
			Heading: s.Heading,
			Body:    template.HTML(a.Sanitizer.Sanitize(richtext.HTML(s.Body))),
		})
	}
	return PostPage{
		Site: a.Config.site(),
		Meta: PageMeta{
			Title:       post.Title + " | " + a.Config.Name,
			Description: post.Subtitle,
			URL:         BuildURL(a.Config.URL, "post", post.UID),
			OGType:      "article",
			Image:       post.Banner.URL,
			JSONLD:      BlogPostingJsonLD(post, a.Config),
		},
		Post:        post,
		Date:        FormatDateTitle(post.FirstPublicationDate, a.Config.Locale),
		ReadingTime: ReadingTime(post.Content, a.Config.WordsPerMinute),
		Sections:    sections,
		Preview:     preview,
	}
}

func (a *App) loadingPage(slug string) PostPage {
	return PostPage{
		Site: a.Config.site(),
		Meta: PageMeta{
			Title:   a.Config.Name,
			URL:     BuildURL(a.Config.URL, "post", slug),
			OGType:  "article",
			Refresh: 2,
		},
		Post:    Post{UID: slug},
		Loading: true,
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config.site()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.log.Error("server error", "error", err, "path", c.Request().URL.Path,
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID))
		_ = RenderStatus(c, code, a.Views.ServerError(a.Config.site()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
