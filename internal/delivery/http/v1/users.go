package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-tracker/internal/services"
)

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type getCurrentUserResponse struct {
	userResponse
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *handlerImpl) HandleGetUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list users")
		abort(c, newServiceError(err))
		return
	}

	response := make([]userResponse, len(users))
	for i, user := range users {
		response[i] = userResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		}
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleGetCurrentUser(c *gin.Context) {
	identity, ok := h.mustIdentity(c)
	if !ok {
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), identity.ID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("user_id", identity.ID).
			Msg("failed to get current user")
		if errors.Is(err, services.ErrUserNotFound) {
			abort(c, newUnauthorizedError(errTokenFailed.Error()))
			return
		}
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, getCurrentUserResponse{
		userResponse: userResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	})
}
