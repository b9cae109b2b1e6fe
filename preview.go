package spacetraveling

import (
	"errors"
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const previewRefKey = "ref"

// previewRef returns the CMS ref stored by an active preview, or "".
func previewRef(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	ref, _ := sess.Values[previewRefKey].(string)
	return ref
}

func setPreviewRef(c echo.Context, ref string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[previewRefKey] = ref
	return sess.Save(c.Request(), c.Response())
}

func clearPreviewRef(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, previewRefKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// handlePreview starts a preview session. The CMS links here with the
// preview token, which is used as the ref of every following query, and the
// id of the document being edited.
func (a *App) handlePreview(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing preview token")
	}
	if err := setPreviewRef(c, token); err != nil {
		return err
	}

	docID := c.QueryParam("documentId")
	if docID == "" {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	post, err := a.source.PostByID(c.Request().Context(), docID, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Redirect(http.StatusSeeOther, "/")
		}
		return err
	}
	return c.Redirect(http.StatusSeeOther, PostLink(post.UID))
}

func (a *App) handleExitPreview(c echo.Context) error {
	if err := clearPreviewRef(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}
