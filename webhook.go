package spacetraveling

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

const webhookPath = "/webhook/prismic"

// refSetter is implemented by sources that cache the CMS master ref.
type refSetter interface {
	SetMasterRef(ref string)
}

// webhookPayload is the body the CMS posts when content changes.
type webhookPayload struct {
	Type      string   `json:"type"`
	Secret    string   `json:"secret"`
	MasterRef string   `json:"masterRef"`
	Documents []string `json:"documents"`
}

// handleWebhook drops cached pages and posts when content is published so
// readers see it before the revalidate period runs out. Snapshots are kept:
// they only serve when the CMS is down.
func (a *App) handleWebhook(c echo.Context) error {
	var p webhookPayload
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if subtle.ConstantTimeCompare([]byte(p.Secret), []byte(a.Config.WebhookSecret)) != 1 {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid secret")
	}

	switch p.Type {
	case "api-update":
		if rs, ok := a.source.(refSetter); ok {
			rs.SetMasterRef(p.MasterRef)
		}
		a.Cache.Invalidate()
		a.log.Info("cache invalidated by webhook", "master_ref", p.MasterRef, "documents", len(p.Documents))
	case "test-trigger":
		a.log.Info("webhook test received")
	default:
		a.log.Debug("webhook ignored", "type", p.Type)
	}
	return c.NoContent(http.StatusNoContent)
}
