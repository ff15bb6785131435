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

type BlogRepo struct {
	DB DBTX
}

const blogColumns = `id, author_id, slug, title, content, banner_url, status,
       views_count, likes_count, comments_count, created_at, updated_at`

const createBlog = `-- name: CreateBlog
INSERT INTO blogs (id, author_id, slug, title, content, banner_url, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + blogColumns

func (r *BlogRepo) Create(ctx context.Context, blog models.Blog) (models.Blog, error) {
	rows, _ := r.DB.Query(ctx, createBlog,
		blog.ID, blog.AuthorID, blog.Slug, blog.Title, blog.Content, blog.BannerURL, blog.Status,
	)
	created, err := pgx.CollectOneRow(rows, rowToBlog)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			// slug collision; caller regenerates the suffix and retries
			return created, fmt.Errorf("repo error: slug taken: %w", err)
		}
		return created, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

const getBlogByID = `-- name: GetBlogByID
SELECT ` + blogColumns + `
FROM blogs
WHERE id = $1
`

func (r *BlogRepo) GetByID(ctx context.Context, blogID uuid.UUID) (models.Blog, error) {
	rows, _ := r.DB.Query(ctx, getBlogByID, blogID)
	return collectBlog(rows)
}

const getBlogBySlug = `-- name: GetBlogBySlug
SELECT ` + blogColumns + `
FROM blogs
WHERE slug = $1
`

func (r *BlogRepo) GetBySlug(ctx context.Context, slug string) (models.Blog, error) {
	rows, _ := r.DB.Query(ctx, getBlogBySlug, slug)
	return collectBlog(rows)
}

const listBlogs = `-- name: ListBlogs
SELECT ` + blogColumns + `
FROM blogs
WHERE ($1::uuid IS NULL OR author_id = $1)
  AND (NOT $2::bool OR status = 'published')
ORDER BY created_at DESC, id
LIMIT $3 OFFSET $4
`

const countBlogs = `-- name: CountBlogs
SELECT count(*)
FROM blogs
WHERE ($1::uuid IS NULL OR author_id = $1)
  AND (NOT $2::bool OR status = 'published')
`

func (r *BlogRepo) List(ctx context.Context, params repository.ListBlogsParams) ([]models.Blog, int64, error) {
	rows, _ := r.DB.Query(ctx, listBlogs, params.AuthorID, params.PublishedOnly, params.Limit, params.Offset)
	blogs, err := pgx.CollectRows(rows, rowToBlog)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	var total int64
	if err := r.DB.QueryRow(ctx, countBlogs, params.AuthorID, params.PublishedOnly).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return blogs, total, nil
}

const updateBlog = `-- name: UpdateBlog
UPDATE blogs
SET title      = COALESCE($2, title),
    content    = COALESCE($3, content),
    banner_url = COALESCE($4, banner_url),
    status     = COALESCE($5, status),
    updated_at = now()
WHERE id = $1
RETURNING ` + blogColumns

func (r *BlogRepo) Update(ctx context.Context, blogID uuid.UUID, params repository.UpdateBlogParams) (models.Blog, error) {
	rows, _ := r.DB.Query(ctx, updateBlog, blogID, params.Title, params.Content, params.BannerURL, params.Status)
	return collectBlog(rows)
}

const deleteBlog = `-- name: DeleteBlog
DELETE FROM blogs
WHERE id = $1
`

func (r *BlogRepo) Delete(ctx context.Context, blogID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteBlog, blogID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrBlogNotFound)
	}
	return nil
}

const deleteBlogsByAuthor = `-- name: DeleteBlogsByAuthor
DELETE FROM blogs
WHERE author_id = $1
`

func (r *BlogRepo) DeleteByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteBlogsByAuthor, authorID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

const incrementBlogViews = `-- name: IncrementBlogViews
UPDATE blogs
SET views_count = views_count + 1
WHERE id = $1
RETURNING views_count
`

func (r *BlogRepo) IncrementViews(ctx context.Context, blogID uuid.UUID) (int64, error) {
	return r.adjustCounter(ctx, incrementBlogViews, blogID)
}

const addBlogCommentsCount = `-- name: AddBlogCommentsCount
UPDATE blogs
SET comments_count = comments_count + $2
WHERE id = $1
RETURNING comments_count
`

func (r *BlogRepo) AddCommentsCount(ctx context.Context, blogID uuid.UUID, delta int64) (int64, error) {
	return r.adjustCounter(ctx, addBlogCommentsCount, blogID, delta)
}

const addBlogLikesCount = `-- name: AddBlogLikesCount
UPDATE blogs
SET likes_count = likes_count + $2
WHERE id = $1
RETURNING likes_count
`

func (r *BlogRepo) AddLikesCount(ctx context.Context, blogID uuid.UUID, delta int64) (int64, error) {
	return r.adjustCounter(ctx, addBlogLikesCount, blogID, delta)
}

func (r *BlogRepo) adjustCounter(ctx context.Context, query string, args ...any) (int64, error) {
	rows, _ := r.DB.Query(ctx, query, args...)
	count, err := pgx.CollectOneRow(rows, pgx.RowTo[int64])

	switch {
	case err == nil:
		return count, nil
	case errors.Is(err, pgx.ErrNoRows):
		return 0, fmt.Errorf("repo error: %w", apperrors.ErrBlogNotFound)
	default:
		return 0, fmt.Errorf("db error: %w", err)
	}
}

func collectBlog(rows pgx.Rows) (models.Blog, error) {
	blog, err := pgx.CollectOneRow(rows, rowToBlog)

	switch {
	case err == nil:
		return blog, nil
	case errors.Is(err, pgx.ErrNoRows):
		return blog, fmt.Errorf("repo error: %w", apperrors.ErrBlogNotFound)
	default:
		return blog, fmt.Errorf("db error: %w", err)
	}
}

func rowToBlog(row pgx.CollectableRow) (models.Blog, error) {
	var b models.Blog
	err := row.Scan(
		&b.ID, &b.AuthorID, &b.Slug, &b.Title, &b.Content, &b.BannerURL, &b.Status,
		&b.ViewsCount, &b.LikesCount, &b.CommentsCount, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}
