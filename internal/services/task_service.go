package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/domain/tasks"
	"github.com/adanyl0v/go-task-tracker/internal/models"
)

const (
	taskColumns = `t.id,
       t.title,
       t.description,
       t.status,
       t.priority,
       t.due_date,
       t.assigner_id,
       assigner.name,
       t.assignee_id,
       assignee.name,
       t.created_at,
       t.updated_at`

	taskJoins = `JOIN users assigner ON assigner.id = t.assigner_id
JOIN users assignee ON assignee.id = t.assignee_id`
)

type taskServiceImpl struct {
	logger zerolog.Logger
	pgPool PgPool
}

func NewTaskService(
	logger zerolog.Logger,
	pgPool PgPool,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func scanTask(row pgx.Row) (*models.Task, error) {
	task := new(models.Task)
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.AssignerID,
		&task.AssignerName,
		&task.AssigneeID,
		&task.AssigneeName,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

func forbidden(decision tasks.Decision) error {
	return fmt.Errorf("%w: %s", ErrTaskForbidden, decision.Reason)
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, caller models.Identity, draft tasks.Draft) (*models.Task, error) {
	if d := tasks.Evaluate(caller, tasks.ActionCreate, nil); !d.Allowed {
		return nil, forbidden(d)
	}

	fields, err := draft.Validate()
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", caller.ID).
			Msg("invalid task")
		return nil, err
	}

	const insertTaskQuery = `
WITH t AS (
    INSERT INTO tasks (title,
                       description,
                       status,
                       priority,
                       due_date,
                       assigner_id,
                       assignee_id)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING *
)
SELECT ` + taskColumns + `
FROM t
` + taskJoins
	task, err := scanTask(s.pgPool.QueryRow(
		ctx,
		insertTaskQuery,
		fields.Title,
		fields.Description,
		models.StatusAssigned,
		fields.Priority,
		fields.DueDate,
		caller.ID,
		fields.AssigneeID,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			s.logger.Error().
				Int64("assignee_id", fields.AssigneeID).
				Msg("assignee not found")
			return nil, ErrAssigneeNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}
	s.logger.Debug().
		Int64("task_id", task.ID).
		Msg("inserted task")

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("assigner_id", task.AssignerID).
		Int64("assignee_id", task.AssigneeID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, caller models.Identity, taskID int64) (*models.Task, error) {
	if d := tasks.Evaluate(caller, tasks.ActionRead, nil); !d.Allowed {
		return nil, forbidden(d)
	}

	const selectTaskByIDQuery = `
SELECT ` + taskColumns + `
FROM tasks t
` + taskJoins + `
WHERE t.id = $1
`
	task, err := scanTask(s.pgPool.QueryRow(ctx, selectTaskByIDQuery, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Int64("task_id", taskID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to select task by id")
		return nil, err
	}

	return task, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, caller models.Identity, filter tasks.Filter) ([]*models.Task, error) {
	if d := tasks.Evaluate(caller, tasks.ActionRead, nil); !d.Allowed {
		return nil, forbidden(d)
	}

	query := `
SELECT ` + taskColumns + `
FROM tasks t
` + taskJoins
	where, args := filter.Where()
	if where != "" {
		query += "\nWHERE " + where
	}
	query += "\nORDER BY t.created_at DESC, t.id DESC"

	rows, err := s.pgPool.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	result := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		result = append(result, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(result)).
		Int64("user_id", caller.ID).
		Msg("selected tasks")
	return result, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, caller models.Identity, taskID int64, draft tasks.Draft) (*models.Task, error) {
	err := s.authorize(ctx, caller, tasks.ActionUpdate, taskID)
	if err != nil {
		return nil, err
	}

	fields, err := draft.Validate()
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("invalid task")
		return nil, err
	}

	const updateTaskQuery = `
WITH t AS (
    UPDATE tasks
    SET title = $1,
        description = $2,
        priority = $3,
        due_date = $4,
        assignee_id = $5,
        updated_at = now()
    WHERE id = $6 AND assigner_id = $7
    RETURNING *
)
SELECT ` + taskColumns + `
FROM t
` + taskJoins
	task, err := scanTask(s.pgPool.QueryRow(
		ctx,
		updateTaskQuery,
		fields.Title,
		fields.Description,
		fields.Priority,
		fields.DueDate,
		fields.AssigneeID,
		taskID,
		caller.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.reclassify(ctx, caller, tasks.ActionUpdate, taskID)
		}
		if isForeignKeyViolation(err) {
			s.logger.Error().
				Int64("assignee_id", fields.AssigneeID).
				Msg("assignee not found")
			return nil, ErrAssigneeNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to update task")
		return nil, err
	}
	s.logger.Debug().
		Int64("task_id", task.ID).
		Msg("updated task")

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", caller.ID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) UpdateTaskStatus(ctx context.Context, caller models.Identity, taskID int64, status string) (*models.Task, error) {
	err := s.authorize(ctx, caller, tasks.ActionSetStatus, taskID)
	if err != nil {
		return nil, err
	}

	newStatus, err := tasks.ParseStatus(status)
	if err != nil {
		s.logger.Error().
			Str("status", status).
			Int64("task_id", taskID).
			Msg("invalid status")
		return nil, err
	}

	const updateTaskStatusQuery = `
WITH t AS (
    UPDATE tasks
    SET status = $1,
        updated_at = now()
    WHERE id = $2 AND assignee_id = $3
    RETURNING *
)
SELECT ` + taskColumns + `
FROM t
` + taskJoins
	task, err := scanTask(s.pgPool.QueryRow(
		ctx,
		updateTaskStatusQuery,
		newStatus,
		taskID,
		caller.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.reclassify(ctx, caller, tasks.ActionSetStatus, taskID)
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to update task status")
		return nil, err
	}
	s.logger.Debug().
		Int64("task_id", task.ID).
		Str("status", string(task.Status)).
		Msg("updated task status")

	s.logger.Info().
		Int64("task_id", task.ID).
		Int64("user_id", caller.ID).
		Msg("updated task status")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, caller models.Identity, taskID int64) error {
	err := s.authorize(ctx, caller, tasks.ActionDelete, taskID)
	if err != nil {
		return err
	}

	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND assigner_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTaskQuery,
		taskID,
		caller.ID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.reclassify(ctx, caller, tasks.ActionDelete, taskID)
	}
	s.logger.Debug().
		Int64("task_id", taskID).
		Msg("deleted task")

	s.logger.Info().
		Int64("task_id", taskID).
		Int64("user_id", caller.ID).
		Msg("deleted task")
	return nil
}

// selectTaskOwnership loads the relationship columns the permission rules
// are evaluated against.
func (s *taskServiceImpl) selectTaskOwnership(ctx context.Context, taskID int64) (*models.Task, error) {
	task := &models.Task{ID: taskID}

	const selectTaskOwnershipQuery = `
SELECT assigner_id,
       assignee_id
FROM tasks
WHERE id = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectTaskOwnershipQuery,
		task.ID,
	).Scan(
		&task.AssignerID,
		&task.AssigneeID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Int64("task_id", taskID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", taskID).
			Msg("failed to select task ownership")
		return nil, err
	}

	return task, nil
}

func (s *taskServiceImpl) authorize(ctx context.Context, caller models.Identity, action tasks.Action, taskID int64) error {
	task, err := s.selectTaskOwnership(ctx, taskID)
	if err != nil {
		return err
	}

	d := tasks.Evaluate(caller, action, task)
	if !d.Allowed {
		s.logger.Error().
			Int64("task_id", taskID).
			Int64("user_id", caller.ID).
			Str("action", string(action)).
			Str("reason", d.Reason).
			Msg("forbidden")
		return forbidden(d)
	}
	return nil
}

// reclassify explains why a conditional write matched no row: the task
// was deleted or its ownership changed after it was authorized.
func (s *taskServiceImpl) reclassify(ctx context.Context, caller models.Identity, action tasks.Action, taskID int64) error {
	err := s.authorize(ctx, caller, action, taskID)
	if err != nil {
		return err
	}

	s.logger.Error().
		Int64("task_id", taskID).
		Str("action", string(action)).
		Msg("task changed concurrently")
	return fmt.Errorf("task %d changed concurrently", taskID)
}
