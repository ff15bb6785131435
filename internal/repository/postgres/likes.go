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
)

type LikeRepo struct {
	DB DBTX
}

const createLike = `-- name: CreateLike
INSERT INTO likes (id, blog_id, user_id)
VALUES ($1, $2, $3)
RETURNING id, blog_id, user_id, created_at
`

func (r *LikeRepo) Create(ctx context.Context, like models.Like) (models.Like, error) {
	rows, _ := r.DB.Query(ctx, createLike, like.ID, like.BlogID, like.UserID)
	created, err := pgx.CollectOneRow(rows, rowToLike)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return created, fmt.Errorf("repo error: %w", apperrors.ErrLikeAlreadyExists)
		}
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getLike = `-- name: GetLike
SELECT id, blog_id, user_id, created_at
FROM likes
WHERE blog_id = $1 AND user_id = $2
`

func (r *LikeRepo) Get(ctx context.Context, blogID uuid.UUID, userID uuid.UUID) (models.Like, error) {
	rows, _ := r.DB.Query(ctx, getLike, blogID, userID)
	like, err := pgx.CollectOneRow(rows, rowToLike)

	switch {
	case err == nil:
		return like, nil
	case errors.Is(err, pgx.ErrNoRows):
		return like, fmt.Errorf("repo error: %w", apperrors.ErrLikeNotFound)
	default:
		return like, fmt.Errorf("db error: %w", err)
	}
}

const deleteLike = `-- name: DeleteLike
DELETE FROM likes
WHERE blog_id = $1 AND user_id = $2
`

func (r *LikeRepo) Delete(ctx context.Context, blogID uuid.UUID, userID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteLike, blogID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrLikeNotFound)
	}
	return nil
}

func rowToLike(row pgx.CollectableRow) (models.Like, error) {
	var l models.Like
	err := row.Scan(&l.ID, &l.BlogID, &l.UserID, &l.CreatedAt)
	return l, err
}
