package httpserver

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"storefront/internal/app"
	"storefront/internal/domain"
	"storefront/internal/session"
)

const sessionCookie = "storefront_session"

// SessionStore hands out page sessions and serializes work on each.
type SessionStore interface {
	Issue(ctx context.Context) (string, error)
	Exists(id string) bool
	With(id string, fn func(*app.Storefront) error) error
}

type actionRequest struct {
	Ref   string `json:"ref" binding:"required"`
	Value string `json:"value"`
}

type pageHandler struct {
	sessions SessionStore
	ttl      time.Duration
	logger   *log.Entry
}

func (h *pageHandler) index(c *gin.Context) {
	h.serve(c, false, func(context.Context, *app.Storefront) error { return nil })
}

func (h *pageHandler) product(c *gin.Context) {
	id := c.Param("id")
	h.serve(c, false, func(ctx context.Context, s *app.Storefront) error {
		return s.OpenProduct(ctx, id)
	})
}

func (h *pageHandler) click(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.serve(c, true, func(ctx context.Context, s *app.Storefront) error {
		return s.Click(ctx, req.Ref)
	})
}

func (h *pageHandler) input(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.serve(c, true, func(ctx context.Context, s *app.Storefront) error {
		return s.Input(ctx, req.Ref, req.Value)
	})
}

// serve runs fn on the visitor's session and answers with the re-rendered
// page. A visitor without a live session gets a fresh one; actions aimed at
// the old session are then dropped and the new page is returned with 410.
func (h *pageHandler) serve(c *gin.Context, action bool, fn func(context.Context, *app.Storefront) error) {
	ctx := c.Request.Context()
	id, fresh, err := h.session(c)
	if errors.Is(err, session.ErrTooManySessions) {
		h.logger.Warn("session limit reached")
		c.Header("Retry-After", "60")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many sessions"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("issue session")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session unavailable"})
		return
	}

	status := http.StatusOK
	if fresh && action {
		status = http.StatusGone
		fn = func(context.Context, *app.Storefront) error { return nil }
	}

	var page bytes.Buffer
	err = h.sessions.With(id, func(s *app.Storefront) error {
		if err := fn(ctx, s); err != nil {
			status = statusFor(err)
			h.logger.WithError(err).WithField("path", c.FullPath()).Warn("page action failed")
		}
		return s.Render(&page)
	})
	if errors.Is(err, session.ErrSessionNotFound) {
		c.JSON(http.StatusGone, gin.H{"error": "session expired"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("render page")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		return
	}
	c.Data(status, "text/html; charset=utf-8", page.Bytes())
}

// session returns the visitor's session ID, issuing one when the cookie is
// missing or stale. The cookie is re-sent on every request so that its
// Max-Age follows the sliding session lifetime.
func (h *pageHandler) session(c *gin.Context) (string, bool, error) {
	if id, err := c.Cookie(sessionCookie); err == nil && h.sessions.Exists(id) {
		h.setCookie(c, id)
		return id, false, nil
	}

	id, err := h.sessions.Issue(c.Request.Context())
	if err != nil {
		return "", false, err
	}
	h.setCookie(c, id)
	return id, true, nil
}

func (h *pageHandler) setCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, int(h.ttl.Seconds()), "/", "", false, true)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrUnknownRef):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
