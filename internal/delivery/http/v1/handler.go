package v1

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/services"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)
	HandleRequestLog(c *gin.Context)

	HandleGetUsers(c *gin.Context)
	HandleGetCurrentUser(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleGetTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleSetTaskStatus(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleRoot(c *gin.Context)
	HandleHealth(c *gin.Context)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type handlerImpl struct {
	logger zerolog.Logger
	pinger Pinger
	auth   services.AuthService
	users  services.UserService
	tasks  services.TaskService
}

func New(
	logger zerolog.Logger,
	pinger Pinger,
	authService services.AuthService,
	userService services.UserService,
	taskService services.TaskService,
) Handler {
	return &handlerImpl{
		logger: logger,
		pinger: pinger,
		auth:   authService,
		users:  userService,
		tasks:  taskService,
	}
}

// RegisterRoutes mounts the API on router.
func RegisterRoutes(router gin.IRouter, h Handler) {
	router.GET("/", h.HandleRoot)
	router.GET("/healthz", h.HandleHealth)

	api := router.Group("/api")

	authRouter := api.Group("/auth")
	authRouter.POST("/register", h.HandleRegister)
	authRouter.POST("/login", h.HandleLogin)

	usersRouter := api.Group("/users", h.HandleAuthMiddleware)
	usersRouter.GET("", h.HandleGetUsers)
	usersRouter.GET("/me", h.HandleGetCurrentUser)

	tasksRouter := api.Group("/tasks", h.HandleAuthMiddleware)
	tasksRouter.GET("", h.HandleGetTasks)
	tasksRouter.POST("", h.HandleCreateTask)
	tasksRouter.GET("/:id", h.HandleGetTask)
	tasksRouter.PUT("/:id", h.HandleUpdateTask)
	tasksRouter.PATCH("/:id/status", h.HandleSetTaskStatus)
	tasksRouter.DELETE("/:id", h.HandleDeleteTask)
}
