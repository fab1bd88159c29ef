package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handlerImpl) HandleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "task tracker api is running"})
}

func (h *handlerImpl) HandleHealth(c *gin.Context) {
	err := h.pinger.Ping(c.Request.Context())
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to ping postgres")
		abort(c, newStatusTextError(http.StatusServiceUnavailable))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
