package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/handlers/middleware"
	"github.com/nkiryanov/blogapi/internal/handlers/render"
	"github.com/nkiryanov/blogapi/internal/logger"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/service/auth"
	"github.com/nkiryanov/blogapi/internal/service/blog"
	"github.com/nkiryanov/blogapi/internal/service/user"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type RouterConfig struct {
	// Mark the refresh cookie Secure. On in production, off for local
	// plain http development.
	SecureCookie bool
}

func NewRouter(
	cfg RouterConfig,
	authService authService,
	blogService blogService,
	commentService commentService,
	likeService likeService,
	userService userService,
	l logger.Logger,
) http.Handler {
	withAuth := func(h http.Handler) http.Handler {
		return middleware.Auth(authService)(h)
	}
	withMaybeAuth := func(h http.Handler) http.Handler {
		return middleware.MaybeAuth(authService)(h)
	}
	withAdmin := func(h http.Handler) http.Handler {
		return chain(h, middleware.Auth(authService), middleware.Authorize(models.RoleAdmin))
	}

	api := http.NewServeMux()

	api.Handle("POST /auth/register", handleRegister(authService, cfg.SecureCookie, l))
	api.Handle("POST /auth/login", handleLogin(authService, cfg.SecureCookie, l))
	api.Handle("POST /auth/refresh-token", handleRefreshToken(authService, l))
	api.Handle("POST /auth/logout", withAuth(handleLogout(authService, cfg.SecureCookie, l)))

	api.Handle("GET /blogs", withMaybeAuth(handleListBlogs(blogService, l)))
	api.Handle("GET /blogs/{slug}", withMaybeAuth(handleGetBlog(blogService, l)))
	api.Handle("GET /blogs/author/{username}", withMaybeAuth(handleListBlogsByAuthor(blogService, userService, l)))
	api.Handle("POST /blogs", withAdmin(handleCreateBlog(blogService, l)))
	api.Handle("PATCH /blogs/{id}", withAdmin(handleUpdateBlog(blogService, l)))
	api.Handle("DELETE /blogs/{id}", withAdmin(handleDeleteBlog(blogService, l)))

	api.Handle("GET /blogs/{id}/comments", withMaybeAuth(handleListComments(commentService, l)))
	api.Handle("POST /blogs/{id}/comments", withAuth(handleCreateComment(commentService, l)))
	api.Handle("DELETE /comments/{id}", withAuth(handleDeleteComment(commentService, l)))

	api.Handle("POST /blogs/{id}/like", withAuth(handleLikeBlog(likeService, l)))
	api.Handle("DELETE /blogs/{id}/like", withAuth(handleUnlikeBlog(likeService, l)))
	api.Handle("GET /blogs/{id}/like", withAuth(handleLikeStatus(likeService, l)))

	api.Handle("GET /users/me", withAuth(handleCurrentUser()))
	api.Handle("PATCH /users/me", withAuth(handleUpdateCurrentUser(userService, l)))
	api.Handle("DELETE /users/me", withAuth(handleDeleteCurrentUser(userService, cfg.SecureCookie, l)))

	api.Handle("GET /users", withAdmin(handleListUsers(userService, l)))
	api.Handle("GET /users/{id}", withAdmin(handleGetUser(userService, l)))
	api.Handle("DELETE /users/{id}", withAdmin(handleDeleteUser(userService, l)))

	root := http.NewServeMux()
	root.Handle("/api/v1/", http.StripPrefix("/api/v1", api))
	root.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		render.JSON(w, map[string]string{"status": "live"})
	})

	handler := chain(root,
		middleware.Logger(l),
	)

	return handler
}

type authService interface {
	// Register user. Role is decided by the service (admin whitelist)
	// Has to return apperrors.ErrUserAlreadyExists on duplicates
	Register(ctx context.Context, params auth.RegisterParams) (models.User, models.TokenPair, error)

	// Login with email and password
	// Has to return apperrors.ErrUserNotFound for unknown account AND
	// wrong password, so the two cases are indistinguishable
	Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)

	// Refresh returns a new access token; the refresh token is untouched
	// Has to return ErrTokenExpired / ErrTokenInvalid /
	// ErrRefreshTokenNotFound depending on what failed
	Refresh(ctx context.Context, refresh string) (models.IssuedToken, error)

	// Logout revokes the refresh token, idempotent
	Logout(ctx context.Context, refresh string) error

	// Authenticate resolves a bearer access token to its user
	Authenticate(ctx context.Context, access string) (models.User, error)
}

type blogService interface {
	Create(ctx context.Context, author models.User, params blog.CreateParams) (models.Blog, error)
	Get(ctx context.Context, viewer models.User, slug string) (models.Blog, error)
	List(ctx context.Context, viewer models.User, limit int, offset int) ([]models.Blog, int64, error)
	ListByAuthor(ctx context.Context, viewer models.User, authorID uuid.UUID, limit int, offset int) ([]models.Blog, int64, error)
	Update(ctx context.Context, viewer models.User, blogID uuid.UUID, params blog.UpdateParams) (models.Blog, error)
	Delete(ctx context.Context, viewer models.User, blogID uuid.UUID) error
}

type commentService interface {
	Create(ctx context.Context, viewer models.User, blogID uuid.UUID, content string) (models.Comment, error)
	ListByBlog(ctx context.Context, viewer models.User, blogID uuid.UUID) ([]models.Comment, error)
	Delete(ctx context.Context, viewer models.User, commentID uuid.UUID) error
}

type likeService interface {
	Like(ctx context.Context, viewer models.User, blogID uuid.UUID) (models.Like, error)
	Unlike(ctx context.Context, viewer models.User, blogID uuid.UUID) error
	Liked(ctx context.Context, viewer models.User, blogID uuid.UUID) (bool, error)
}

type userService interface {
	GetByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	Update(ctx context.Context, userID uuid.UUID, params user.UpdateParams) (models.User, error)
	Delete(ctx context.Context, userID uuid.UUID) error
	List(ctx context.Context, limit int, offset int) ([]models.User, int64, error)
}
