package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-tracker/internal/domain/tasks"
	"github.com/adanyl0v/go-task-tracker/internal/models"
)

type getTaskResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	Priority     string    `json:"priority"`
	DueDate      string    `json:"due_date"`
	AssignerID   int64     `json:"assigner_id"`
	AssignerName string    `json:"assigner_name"`
	AssigneeID   int64     `json:"assignee_id"`
	AssigneeName string    `json:"assignee_name"`
	Tags         []string  `json:"tags"`
	Mentions     []string  `json:"mentions"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newGetTaskResponse(task *models.Task) getTaskResponse {
	tags, mentions := tasks.ExtractTags(task.Description)
	if tags == nil {
		tags = []string{}
	}
	if mentions == nil {
		mentions = []string{}
	}

	return getTaskResponse{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       string(task.Status),
		Priority:     string(task.Priority),
		DueDate:      task.DueDate.Format(tasks.DueDateLayout),
		AssignerID:   task.AssignerID,
		AssignerName: task.AssignerName,
		AssigneeID:   task.AssigneeID,
		AssigneeName: task.AssigneeName,
		Tags:         tags,
		Mentions:     mentions,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
	AssigneeID  int64  `json:"assignee_id"`
}

func (r taskRequest) draft() tasks.Draft {
	return tasks.Draft{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
		AssigneeID:  r.AssigneeID,
	}
}

type setTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type getTasksQuery struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	Priority string `form:"priority"`
	View     string `form:"view"`
}

func (h *handlerImpl) taskIDParam(c *gin.Context) (int64, bool) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || taskID <= 0 {
		h.logger.Error().
			Str("id", c.Param("id")).
			Msg("invalid task id")
		abort(c, newBadRequestError(errInvalidTaskID.Error()))
		return 0, false
	}
	return taskID, true
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	identity, ok := h.mustIdentity(c)
	if !ok {
		return
	}

	var req taskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), identity, req.draft())
	if err != nil {
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusCreated, newGetTaskResponse(task))
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	identity, ok := h.mustIdentity(c)
	if !ok {
		return
	}

	var query getTasksQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind query")
		abort(c, newBadRequestError(err.Error()))
		return
	}

	filter, err := tasks.ParseFilter(query.Search, query.Status, query.Priority)
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	view, err := tasks.ParseView(query.View)
	if err != nil {
		abort(c, newServiceError(err))
		return
	}

	list, err := h.tasks.ListTasks(c.Request.Context(), identity, filter)
	if err != nil {
		abort(c, newServiceError(err))
		return
	}
	list = tasks.Project(view, list, identity.ID)

	response := make([]getTaskResponse, len(list))
	for i, task := range list {
		response[i] = newGetTaskResponse(task)
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	identity, ok := h.mustIdentity(c)
	if !ok {
		return
	}
	taskID, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(c.Request.Context(), identity, taskID)
	if err != nil {
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, newGetTaskResponse(task))
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	identity, ok := h.mustIdentity(c)
	if !ok {
		return
	}
	taskID, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	var req taskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), identity, taskID, req.draft())
	if err != nil {
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, newGetTaskResponse(task))
}

func (h *handlerImpl) HandleSetTaskStatus(c *gin.Context) {
	identity, ok := h.mustIdentity(c)
	if !ok {
		return
	}
	taskID, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	var req setTaskStatusRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.UpdateTaskStatus(c.Request.Context(), identity, taskID, req.Status)
	if err != nil {
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "task status updated",
		"status":  string(task.Status),
	})
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	identity, ok := h.mustIdentity(c)
	if !ok {
		return
	}
	taskID, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	err := h.tasks.DeleteTask(c.Request.Context(), identity, taskID)
	if err != nil {
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task removed"})
}
