package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/testutil"
)

func Test_CommentRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create and get comment", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := CommentRepo{DB: tx}
			author := mustCreateUser(t, tx, "writer")
			blog := mustCreateBlog(t, tx, author.ID, "commented", models.BlogStatusPublished)

			created, err := repo.Create(t.Context(), models.Comment{
				ID:      uuid.New(),
				BlogID:  blog.ID,
				UserID:  author.ID,
				Content: "nice post",
			})

			require.NoError(t, err)
			assert.Equal(t, "nice post", created.Content)
			assert.False(t, created.CreatedAt.IsZero())

			got, err := repo.GetByID(t.Context(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, blog.ID, got.BlogID)
		})
	})

	t.Run("get unknown comment", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := CommentRepo{DB: tx}

			_, err := repo.GetByID(t.Context(), uuid.New())

			assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)
		})
	})

	t.Run("list by blog", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := CommentRepo{DB: tx}
			author := mustCreateUser(t, tx, "writer")
			blog := mustCreateBlog(t, tx, author.ID, "commented", models.BlogStatusPublished)
			other := mustCreateBlog(t, tx, author.ID, "quiet", models.BlogStatusPublished)

			for _, content := range []string{"first", "second"} {
				_, err := repo.Create(t.Context(), models.Comment{
					ID: uuid.New(), BlogID: blog.ID, UserID: author.ID, Content: content,
				})
				require.NoError(t, err)
			}

			comments, err := repo.ListByBlog(t.Context(), blog.ID)
			require.NoError(t, err)
			assert.Len(t, comments, 2)

			empty, err := repo.ListByBlog(t.Context(), other.ID)
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	})

	t.Run("delete comment", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := CommentRepo{DB: tx}
			author := mustCreateUser(t, tx, "writer")
			blog := mustCreateBlog(t, tx, author.ID, "commented", models.BlogStatusPublished)
			created, err := repo.Create(t.Context(), models.Comment{
				ID: uuid.New(), BlogID: blog.ID, UserID: author.ID, Content: "bye",
			})
			require.NoError(t, err)

			require.NoError(t, repo.Delete(t.Context(), created.ID))

			err = repo.Delete(t.Context(), created.ID)
			assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)
		})
	})

	t.Run("blog delete cascades to comments", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			commentRepo := CommentRepo{DB: tx}
			blogRepo := BlogRepo{DB: tx}
			author := mustCreateUser(t, tx, "writer")
			blog := mustCreateBlog(t, tx, author.ID, "doomed", models.BlogStatusPublished)
			created, err := commentRepo.Create(t.Context(), models.Comment{
				ID: uuid.New(), BlogID: blog.ID, UserID: author.ID, Content: "gone soon",
			})
			require.NoError(t, err)

			require.NoError(t, blogRepo.Delete(t.Context(), blog.ID))

			_, err = commentRepo.GetByID(t.Context(), created.ID)
			assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)
		})
	})
}
