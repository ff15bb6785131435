package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/testutil"
)

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

func Test_RefreshTokenRepo(t *testing.T) {
	t.Parallel() // It's ok to run in parallel with other tests, but not with subtests

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	newToken := func(userID uuid.UUID) models.RefreshToken {
		return models.RefreshToken{
			ID:        uuid.New(),
			UserID:    userID,
			Token:     "secret-token-" + uuid.NewString(),
			CreatedAt: mustParseTime("2024-01-01 19:00:01Z"),
			ExpiresAt: mustParseTime("2200-01-01 03:00:02Z"),
		}
	}

	t.Run("save and get token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}
			user := mustCreateUser(t, tx, "writer")
			token := newToken(user.ID)

			require.NoError(t, repo.Save(t.Context(), token))

			got, err := repo.Get(t.Context(), token.Token)

			require.NoError(t, err)
			assert.Equal(t, token.ID, got.ID)
			assert.Equal(t, token.UserID, got.UserID)
			assert.Equal(t, token.Token, got.Token)
			assert.WithinDuration(t, token.CreatedAt, got.CreatedAt, time.Microsecond)
			assert.WithinDuration(t, token.ExpiresAt, got.ExpiresAt, time.Microsecond)
		})
	})

	t.Run("get unknown token", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}

			_, err := repo.Get(t.Context(), "never-issued")

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("get survives repeated calls", func(t *testing.T) {
		// The row must stay untouched: getting a token is not using it up
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}
			user := mustCreateUser(t, tx, "writer")
			token := newToken(user.ID)
			require.NoError(t, repo.Save(t.Context(), token))

			for range 3 {
				got, err := repo.Get(t.Context(), token.Token)
				require.NoError(t, err)
				assert.Equal(t, token.ID, got.ID)
			}
		})
	})

	t.Run("delete revokes membership", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}
			user := mustCreateUser(t, tx, "writer")
			token := newToken(user.ID)
			require.NoError(t, repo.Save(t.Context(), token))

			require.NoError(t, repo.Delete(t.Context(), token.Token))

			_, err := repo.Get(t.Context(), token.Token)
			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("delete absent token ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}

			err := repo.Delete(t.Context(), "never-issued")

			assert.NoError(t, err, "deleting an absent token must not fail")
		})
	})

	t.Run("delete for user removes all sessions", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := RefreshTokenRepo{DB: tx}
			user := mustCreateUser(t, tx, "writer")
			other := mustCreateUser(t, tx, "other")

			first := newToken(user.ID)
			second := newToken(user.ID)
			foreign := newToken(other.ID)
			require.NoError(t, repo.Save(t.Context(), first))
			require.NoError(t, repo.Save(t.Context(), second))
			require.NoError(t, repo.Save(t.Context(), foreign))

			removed, err := repo.DeleteForUser(t.Context(), user.ID)

			require.NoError(t, err)
			assert.Equal(t, int64(2), removed)

			_, err = repo.Get(t.Context(), foreign.Token)
			assert.NoError(t, err, "other user's session must survive")
		})
	})

	t.Run("user delete cascades to tokens", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			tokenRepo := RefreshTokenRepo{DB: tx}
			userRepo := UserRepo{DB: tx}
			user := mustCreateUser(t, tx, "writer")
			token := newToken(user.ID)
			require.NoError(t, tokenRepo.Save(t.Context(), token))

			require.NoError(t, userRepo.Delete(t.Context(), user.ID))

			_, err := tokenRepo.Get(t.Context(), token.Token)
			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})
}
