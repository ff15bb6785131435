package like

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

func Test_LikeService(t *testing.T) {
	t.Parallel()

	author := models.User{ID: uuid.New(), Username: "author", Role: models.RoleUser}
	fan := models.User{ID: uuid.New(), Username: "fan", Role: models.RoleUser}

	setup := func(t *testing.T, status string) (*LikeService, repository.Storage, models.Blog) {
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

	t.Run("Like", func(t *testing.T) {
		t.Run("likes and bumps counter", func(t *testing.T) {
			s, storage, blog := setup(t, models.BlogStatusPublished)

			like, err := s.Like(t.Context(), fan, blog.ID)
			require.NoError(t, err)
			assert.Equal(t, fan.ID, like.UserID)

			stored, err := storage.Blog().GetByID(t.Context(), blog.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), stored.LikesCount)
		})

		t.Run("double like conflicts", func(t *testing.T) {
			s, storage, blog := setup(t, models.BlogStatusPublished)

			_, err := s.Like(t.Context(), fan, blog.ID)
			require.NoError(t, err)

			_, err = s.Like(t.Context(), fan, blog.ID)
			require.ErrorIs(t, err, apperrors.ErrLikeAlreadyExists)

			stored, err := storage.Blog().GetByID(t.Context(), blog.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), stored.LikesCount, "counter must not double count")
		})

		t.Run("invisible blog looks absent", func(t *testing.T) {
			s, _, blog := setup(t, models.BlogStatusDraft)

			_, err := s.Like(t.Context(), fan, blog.ID)
			require.ErrorIs(t, err, apperrors.ErrBlogNotFound)
		})
	})

	t.Run("Unlike", func(t *testing.T) {
		t.Run("removes like and counter drops", func(t *testing.T) {
			s, storage, blog := setup(t, models.BlogStatusPublished)

			_, err := s.Like(t.Context(), fan, blog.ID)
			require.NoError(t, err)

			require.NoError(t, s.Unlike(t.Context(), fan, blog.ID))

			stored, err := storage.Blog().GetByID(t.Context(), blog.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(0), stored.LikesCount)
		})

		t.Run("nothing to unlike", func(t *testing.T) {
			s, _, blog := setup(t, models.BlogStatusPublished)

			err := s.Unlike(t.Context(), fan, blog.ID)
			require.ErrorIs(t, err, apperrors.ErrLikeNotFound)
		})
	})

	t.Run("Liked", func(t *testing.T) {
		s, _, blog := setup(t, models.BlogStatusPublished)

		liked, err := s.Liked(t.Context(), fan, blog.ID)
		require.NoError(t, err)
		assert.False(t, liked)

		_, err = s.Like(t.Context(), fan, blog.ID)
		require.NoError(t, err)

		liked, err = s.Liked(t.Context(), fan, blog.ID)
		require.NoError(t, err)
		assert.True(t, liked)
	})
}
