package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/handlers/render"
	"github.com/nkiryanov/blogapi/internal/logger"
	"github.com/nkiryanov/blogapi/internal/models"
)

type socialLinksResponse struct {
	Website   string `json:"website"`
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	LinkedIn  string `json:"linkedin"`
	X         string `json:"x"`
	YouTube   string `json:"youtube"`
}

type userResponse struct {
	ID          uuid.UUID           `json:"id"`
	Username    string              `json:"username"`
	Email       string              `json:"email"`
	Role        string              `json:"role"`
	FirstName   string              `json:"firstName"`
	LastName    string              `json:"lastName"`
	SocialLinks socialLinksResponse `json:"socialLinks"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func renderUser(u models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		SocialLinks: socialLinksResponse{
			Website:   u.SocialLinks.Website,
			Facebook:  u.SocialLinks.Facebook,
			Instagram: u.SocialLinks.Instagram,
			LinkedIn:  u.SocialLinks.LinkedIn,
			X:         u.SocialLinks.X,
			YouTube:   u.SocialLinks.YouTube,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type blogResponse struct {
	ID            uuid.UUID `json:"id"`
	AuthorID      uuid.UUID `json:"authorId"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	BannerURL     string    `json:"bannerUrl"`
	Status        string    `json:"status"`
	ViewsCount    int64     `json:"viewsCount"`
	LikesCount    int64     `json:"likesCount"`
	CommentsCount int64     `json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func renderBlog(b models.Blog) blogResponse {
	return blogResponse{
		ID:            b.ID,
		AuthorID:      b.AuthorID,
		Slug:          b.Slug,
		Title:         b.Title,
		Content:       b.Content,
		BannerURL:     b.BannerURL,
		Status:        b.Status,
		ViewsCount:    b.ViewsCount,
		LikesCount:    b.LikesCount,
		CommentsCount: b.CommentsCount,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func renderBlogs(blogs []models.Blog) []blogResponse {
	out := make([]blogResponse, 0, len(blogs))
	for _, b := range blogs {
		out = append(out, renderBlog(b))
	}
	return out
}

type commentResponse struct {
	ID        uuid.UUID `json:"id"`
	BlogID    uuid.UUID `json:"blogId"`
	UserID    uuid.UUID `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func renderComment(c models.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		BlogID:    c.BlogID,
		UserID:    c.UserID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 50
)

// pagination parses limit/offset query params with bounds applied
func pagination(r *http.Request) (limit int, offset int) {
	limit = defaultPageLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, maxPageLimit)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// pathID parses the {id} path segment and replies 404 itself when the
// value is not a UUID: a malformed id can't name anything that exists.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Not found", http.StatusNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func serverError(w http.ResponseWriter, l logger.Logger, err error) {
	l.Error("unhandled error", "error", err.Error())
	render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
}
