package v1

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/services"
)

const identityCtxKey = "identity"

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Error().Msg("authorization header required")
		abort(c, newUnauthorizedError(errNoToken.Error()))
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerPrefix || strings.TrimSpace(parts[1]) == "" {
		h.logger.Error().Msg("invalid authorization header")
		abort(c, newUnauthorizedError(errNoToken.Error()))
		return
	}

	identity, err := h.auth.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
	if err != nil {
		if errors.Is(err, services.ErrUnauthenticated) {
			h.logger.Error().
				Err(err).
				Msg("failed to authenticate")
			abort(c, newUnauthorizedError(errTokenFailed.Error()))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to resolve identity")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.Set(identityCtxKey, *identity)
	c.Next()
}

// identityFromContext returns the caller resolved by HandleAuthMiddleware.
func identityFromContext(c *gin.Context) (models.Identity, bool) {
	value, exists := c.Get(identityCtxKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := value.(models.Identity)
	return identity, ok
}

// mustIdentity aborts with 401 when no identity was resolved.
func (h *handlerImpl) mustIdentity(c *gin.Context) (models.Identity, bool) {
	identity, ok := identityFromContext(c)
	if !ok {
		h.logger.Error().Msg("no identity found in context")
		abort(c, newUnauthorizedError(errIdentityNotResolved.Error()))
		return models.Identity{}, false
	}
	return identity, true
}

func (h *handlerImpl) HandleRequestLog(c *gin.Context) {
	start := time.Now()
	path := c.Request.URL.Path

	c.Next()

	status := c.Writer.Status()
	event := h.logger.Info()
	switch {
	case status >= http.StatusInternalServerError:
		event = h.logger.Error()
	case status >= http.StatusBadRequest:
		event = h.logger.Warn()
	}
	event.
		Str("method", c.Request.Method).
		Str("path", path).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Str("client_ip", c.ClientIP()).
		Msg("handled request")
}
