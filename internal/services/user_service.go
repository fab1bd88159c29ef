package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

type userServiceImpl struct {
	logger zerolog.Logger
	pgPool PgPool
}

func NewUserService(
	logger zerolog.Logger,
	pgPool PgPool,
) UserService {
	return &userServiceImpl{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *userServiceImpl) ListUsers(ctx context.Context) ([]*models.User, error) {
	const selectUsersQuery = `
SELECT id,
       name,
       email
FROM users
ORDER BY name, id
`
	rows, err := s.pgPool.Query(ctx, selectUsersQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select users")
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user := new(models.User)
		err = rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan user")
			return nil, err
		}
		users = append(users, user)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(users)).
		Msg("selected users")
	return users, nil
}

func (s *userServiceImpl) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	user := &models.User{ID: userID}

	const selectUserByIDQuery = `
SELECT name,
       email,
       created_at,
       updated_at
FROM users
WHERE id = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectUserByIDQuery,
		user.ID,
	).Scan(
		&user.Name,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Int64("user_id", userID).
				Msg("user not found")
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("user_id", userID).
			Msg("failed to select user by id")
		return nil, err
	}

	return user, nil
}
