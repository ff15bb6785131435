package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, created_at, updated_at, username, email, role, first_name, last_name,
       website, facebook, instagram, linkedin, x, youtube, password_hash`

const createUser = `-- name: CreateUser
INSERT INTO users (id, username, email, role, first_name, last_name,
                   website, facebook, instagram, linkedin, x, youtube, password_hash)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING ` + userColumns

func (r *UserRepo) Create(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser,
		uuid.New(), arg.Username, arg.Email, arg.Role, arg.FirstName, arg.LastName,
		arg.SocialLinks.Website, arg.SocialLinks.Facebook, arg.SocialLinks.Instagram,
		arg.SocialLinks.LinkedIn, arg.SocialLinks.X, arg.SocialLinks.YouTube,
		arg.HashedPassword,
	)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return user, fmt.Errorf("repo error: %w", apperrors.ErrUserAlreadyExists)
		}
		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + `
FROM users
WHERE id = $1
`

func (r *UserRepo) GetByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, userID)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userColumns + `
FROM users
WHERE email = $1
`

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

const getUserByUsername = `-- name: GetUserByUsername
SELECT ` + userColumns + `
FROM users
WHERE username = $1
`

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByUsername, username)
	return collectUser(rows)
}

const updateUser = `-- name: UpdateUser
UPDATE users
SET username      = COALESCE($2, username),
    email         = COALESCE($3, email),
    first_name    = COALESCE($4, first_name),
    last_name     = COALESCE($5, last_name),
    website       = COALESCE($6, website),
    facebook      = COALESCE($7, facebook),
    instagram     = COALESCE($8, instagram),
    linkedin      = COALESCE($9, linkedin),
    x             = COALESCE($10, x),
    youtube       = COALESCE($11, youtube),
    password_hash = COALESCE($12, password_hash),
    updated_at    = now()
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) Update(ctx context.Context, userID uuid.UUID, arg repository.UpdateUserParams) (models.User, error) {
	var website, facebook, instagram, linkedin, x, youtube *string
	if arg.SocialLinks != nil {
		website = &arg.SocialLinks.Website
		facebook = &arg.SocialLinks.Facebook
		instagram = &arg.SocialLinks.Instagram
		linkedin = &arg.SocialLinks.LinkedIn
		x = &arg.SocialLinks.X
		youtube = &arg.SocialLinks.YouTube
	}

	rows, _ := r.DB.Query(ctx, updateUser,
		userID, arg.Username, arg.Email, arg.FirstName, arg.LastName,
		website, facebook, instagram, linkedin, x, youtube,
		arg.HashedPassword,
	)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, fmt.Errorf("repo error: %w", apperrors.ErrUserNotFound)
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return user, fmt.Errorf("repo error: %w", apperrors.ErrUserAlreadyExists)
		}
		return user, fmt.Errorf("db error: %w", err)
	}
}

const deleteUser = `-- name: DeleteUser
DELETE FROM users
WHERE id = $1
`

func (r *UserRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteUser, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrUserNotFound)
	}
	return nil
}

const listUsers = `-- name: ListUsers
SELECT ` + userColumns + `
FROM users
ORDER BY created_at DESC, id
LIMIT $1 OFFSET $2
`

const countUsers = `-- name: CountUsers
SELECT count(*) FROM users
`

func (r *UserRepo) List(ctx context.Context, limit int, offset int) ([]models.User, int64, error) {
	rows, _ := r.DB.Query(ctx, listUsers, limit, offset)
	users, err := pgx.CollectRows(rows, rowToUser)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	var total int64
	if err := r.DB.QueryRow(ctx, countUsers).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return users, total, nil
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, fmt.Errorf("repo error: %w", apperrors.ErrUserNotFound)
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Username, &u.Email, &u.Role,
		&u.FirstName, &u.LastName,
		&u.SocialLinks.Website, &u.SocialLinks.Facebook, &u.SocialLinks.Instagram,
		&u.SocialLinks.LinkedIn, &u.SocialLinks.X, &u.SocialLinks.YouTube,
		&u.HashedPassword,
	)
	return u, err
}
