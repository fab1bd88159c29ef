package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/domain/auth"
	"github.com/adanyl0v/go-task-tracker/internal/models"
)

type authServiceImpl struct {
	logger     zerolog.Logger
	pgPool     PgPool
	tokens     *auth.TokenManager
	hashParams *argon2id.Params
}

func NewAuthService(
	logger zerolog.Logger,
	pgPool PgPool,
	tokens *auth.TokenManager,
) AuthService {
	return &authServiceImpl{
		logger:     logger,
		pgPool:     pgPool,
		tokens:     tokens,
		hashParams: argon2id.DefaultParams,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authServiceImpl) Register(ctx context.Context, params RegisterParams) (*LoginResult, error) {
	now := time.Now()
	user := &models.User{
		Name:      strings.TrimSpace(params.Name),
		Email:     normalizeEmail(params.Email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch {
	case user.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidUserInput)
	case user.Email == "":
		return nil, fmt.Errorf("%w: email is required", ErrInvalidUserInput)
	case params.Password == "":
		return nil, fmt.Errorf("%w: password is required", ErrInvalidUserInput)
	}

	passwordHash, err := argon2id.CreateHash(params.Password, s.hashParams)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}
	user.Password = passwordHash

	const insertUserQuery = `
INSERT INTO users (name,
                   email,
                   password,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`
	err = s.pgPool.QueryRow(
		ctx,
		insertUserQuery,
		user.Name,
		user.Email,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			s.logger.Error().
				Str("email", user.Email).
				Msg("user with this email already exists")
			return nil, ErrUserAlreadyExists
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return nil, err
	}
	s.logger.Debug().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("inserted user")

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Msg("registered user")
	return result, nil
}

func (s *authServiceImpl) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	user := &models.User{
		Email: normalizeEmail(params.Email),
	}

	const selectUserByEmailQuery = `
SELECT id,
       name,
       password
FROM users
WHERE email = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectUserByEmailQuery,
		user.Email,
	).Scan(
		&user.ID,
		&user.Name,
		&user.Password,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("email", user.Email).
				Msg("user not found")
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("email", user.Email).
			Msg("failed to select user by email")
		return nil, err
	}
	s.logger.Debug().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("selected user")

	match, err := argon2id.ComparePasswordAndHash(params.Password, user.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	} else if !match {
		s.logger.Error().
			Int64("user_id", user.ID).
			Msg("passwords do not match")
		return nil, ErrUserPasswordMismatch
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Msg("logged in")
	return result, nil
}

func (s *authServiceImpl) Authenticate(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: no token", ErrUnauthenticated)
	}

	userID, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Msg("rejected token")
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	identity := &models.Identity{ID: userID}

	const selectIdentityQuery = `
SELECT name,
       email
FROM users
WHERE id = $1
`
	err = s.pgPool.QueryRow(
		ctx,
		selectIdentityQuery,
		identity.ID,
	).Scan(
		&identity.Name,
		&identity.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn().
				Int64("user_id", identity.ID).
				Msg("token subject not found")
			return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, ErrUserNotFound)
		}

		s.logger.Error().
			Err(err).
			Int64("user_id", identity.ID).
			Msg("failed to select user by id")
		return nil, err
	}

	return identity, nil
}

func (s *authServiceImpl) issue(user *models.User) (*LoginResult, error) {
	accessToken, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("user_id", user.ID).
			Msg("failed to generate access token")
		return nil, err
	}

	return &LoginResult{
		User:                 user,
		AccessToken:          accessToken,
		AccessTokenExpiresAt: expiresAt,
	}, nil
}
