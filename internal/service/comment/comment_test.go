package comment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/repository"
	"github.com/nkiryanov/blogapi/internal/repository/memory"
)

func Test_CommentService(t *testing.T) {
	t.Parallel()

	author := models.User{ID: uuid.New(), Username: "author", Role: models.RoleUser}
	commenter := models.User{ID: uuid.New(), Username: "commenter", Role: models.RoleUser}
	admin := models.User{ID: uuid.New(), Username: "admin", Role: models.RoleAdmin}

	setup := func(t *testing.T, status string) (*CommentService, repository.Storage, models.Blog) {
		t.Helper()

		storage := memory.NewStorage()
		blog, err := storage.Blog().Create(t.Context(), models.Blog{
			ID:       uuid.New(),
			AuthorID: author.ID,
			Slug:     "test-blog",
			Title:    "Test blog",
			Status:   status,
		})
		require.NoError(t, err)

		return NewService(storage), storage, blog
	}

	t.Run("Create", func(t *testing.T) {
		t.Run("adds comment and bumps counter", func(t *testing.T) {
			s, storage, blog := setup(t, models.BlogStatusPublished)

			comment, err := s.Create(t.Context(), commenter, blog.ID, "nice post")
			require.NoError(t, err)

			assert.Equal(t, commenter.ID, comment.UserID)
			assert.Equal(t, "nice post", comment.Content)

			stored, err := storage.Blog().GetByID(t.Context(), blog.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), stored.CommentsCount)
		})

		t.Run("strips unsafe html", func(t *testing.T) {
			s, _, blog := setup(t, models.BlogStatusPublished)

			comment, err := s.Create(t.Context(), commenter, blog.ID, `hello<script>alert("xss")</script> <b>world</b>`)
			require.NoError(t, err)

			assert.NotContains(t, comment.Content, "<script>")
			assert.Contains(t, comment.Content, "<b>world</b>", "harmless markup survives")
		})

		t.Run("invisible blog looks absent", func(t *testing.T) {
			s, _, blog := setup(t, models.BlogStatusDraft)

			_, err := s.Create(t.Context(), commenter, blog.ID, "sneaky")
			require.ErrorIs(t, err, apperrors.ErrBlogNotFound)
		})
	})

	t.Run("ListByBlog", func(t *testing.T) {
		s, _, blog := setup(t, models.BlogStatusPublished)

		_, err := s.Create(t.Context(), commenter, blog.ID, "first")
		require.NoError(t, err)
		_, err = s.Create(t.Context(), author, blog.ID, "second")
		require.NoError(t, err)

		comments, err := s.ListByBlog(t.Context(), commenter, blog.ID)
		require.NoError(t, err)
		assert.Len(t, comments, 2)
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("comment author deletes and counter drops", func(t *testing.T) {
			s, storage, blog := setup(t, models.BlogStatusPublished)

			comment, err := s.Create(t.Context(), commenter, blog.ID, "regret")
			require.NoError(t, err)

			require.NoError(t, s.Delete(t.Context(), commenter, comment.ID))

			stored, err := storage.Blog().GetByID(t.Context(), blog.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(0), stored.CommentsCount)
		})

		t.Run("admin may delete anyone's comment", func(t *testing.T) {
			s, _, blog := setup(t, models.BlogStatusPublished)

			comment, err := s.Create(t.Context(), commenter, blog.ID, "spam")
			require.NoError(t, err)

			require.NoError(t, s.Delete(t.Context(), admin, comment.ID))
		})

		t.Run("others get forbidden", func(t *testing.T) {
			s, _, blog := setup(t, models.BlogStatusPublished)

			comment, err := s.Create(t.Context(), commenter, blog.ID, "mine")
			require.NoError(t, err)

			err = s.Delete(t.Context(), author, comment.ID)
			require.ErrorIs(t, err, apperrors.ErrForbidden, "blog author does not own the comment")
		})

		t.Run("unknown comment", func(t *testing.T) {
			s, _, _ := setup(t, models.BlogStatusPublished)

			err := s.Delete(t.Context(), admin, uuid.New())
			require.ErrorIs(t, err, apperrors.ErrCommentNotFound)
		})
	})
}
