package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-tracker/internal/services"
)

var (
	errInvalidRequestBody  = errors.New("invalid request body")
	errInvalidTaskID       = errors.New("invalid task id")
	errNoToken             = errors.New("not authorized, no token")
	errTokenFailed         = errors.New("not authorized, token failed")
	errInvalidCredentials  = errors.New("invalid email or password")
	errIdentityNotResolved = errors.New("identity not resolved")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newForbiddenError(message string) apiError {
	return newAPIError(http.StatusForbidden, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

// newServiceError translates a service error into its transport form.
// Errors of no known kind are reported as a bare 500.
func newServiceError(err error) apiError {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return newUnauthorizedError(errTokenFailed.Error())
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrUserPasswordMismatch):
		return newUnauthorizedError(errInvalidCredentials.Error())
	case errors.Is(err, services.ErrTaskForbidden):
		return newForbiddenError(err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		return newNotFoundError(services.ErrTaskNotFound.Error())
	case errors.Is(err, services.ErrInvalidTaskInput),
		errors.Is(err, services.ErrInvalidUserInput):
		return newBadRequestError(err.Error())
	case errors.Is(err, services.ErrUserAlreadyExists):
		return newBadRequestError(services.ErrUserAlreadyExists.Error())
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}
