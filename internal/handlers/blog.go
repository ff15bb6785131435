package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/handlers/render"
	"github.com/nkiryanov/blogapi/internal/handlers/userctx"
	"github.com/nkiryanov/blogapi/internal/logger"
	"github.com/nkiryanov/blogapi/internal/service/blog"
)

type blogListResponse struct {
	Blogs []blogResponse `json:"blogs"`
	Total int64          `json:"total"`
}

func handleCreateBlog(bs blogService, l logger.Logger) http.Handler {
	type CreateBlogRequest struct {
		Title     string `json:"title" validate:"required,max=180"`
		Content   string `json:"content" validate:"required"`
		BannerURL string `json:"bannerUrl" validate:"omitempty,url"`
		Status    string `json:"status" validate:"omitempty,oneof=draft published"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())

		data, err := render.BindAndValidate[CreateBlogRequest](w, r)
		if err != nil {
			return
		}

		created, err := bs.Create(r.Context(), user, blog.CreateParams{
			Title:     data.Title,
			Content:   data.Content,
			BannerURL: data.BannerURL,
			Status:    data.Status,
		})
		if err != nil {
			serverError(w, l, err)
			return
		}

		render.JSONWithStatus(w, renderBlog(created), http.StatusCreated)
	})
}

func handleListBlogs(bs blogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := userctx.FromContext(r.Context())
		limit, offset := pagination(r)

		blogs, total, err := bs.List(r.Context(), viewer, limit, offset)
		if err != nil {
			serverError(w, l, err)
			return
		}

		render.JSON(w, blogListResponse{Blogs: renderBlogs(blogs), Total: total})
	})
}

func handleListBlogsByAuthor(bs blogService, us userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := userctx.FromContext(r.Context())

		author, err := us.GetByUsername(r.Context(), r.PathValue("username"))
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				render.ServiceError(w, "Not found", http.StatusNotFound)
				return
			}
			serverError(w, l, err)
			return
		}

		limit, offset := pagination(r)
		blogs, total, err := bs.ListByAuthor(r.Context(), viewer, author.ID, limit, offset)
		if err != nil {
			serverError(w, l, err)
			return
		}

		render.JSON(w, blogListResponse{Blogs: renderBlogs(blogs), Total: total})
	})
}

func handleGetBlog(bs blogService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := userctx.FromContext(r.Context())

		found, err := bs.Get(r.Context(), viewer, r.PathValue("slug"))
		if err != nil {
			// Drafts hidden from the viewer surface here as not found too
			if errors.Is(err, apperrors.ErrBlogNotFound) {
				render.ServiceError(w, "Not found", http.StatusNotFound)
				return
			}
			serverError(w, l, err)
			return
		}

		render.JSON(w, renderBlog(found))
	})
}

func handleUpdateBlog(bs blogService, l logger.Logger) http.Handler {
	type UpdateBlogRequest struct {
		Title     *string `json:"title" validate:"omitempty,min=1,max=180"`
		Content   *string `json:"content" validate:"omitempty,min=1"`
		BannerURL *string `json:"bannerUrl" validate:"omitempty,url"`
		Status    *string `json:"status" validate:"omitempty,oneof=draft published"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())

		blogID, ok := pathID(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[UpdateBlogRequest](w, r)
		if err != nil {
			return
		}

		updated, err := bs.Update(r.Context(), user, blogID, blog.UpdateParams{
			Title:     data.Title,
			Content:   data.Content,
			BannerURL: data.BannerURL,
			Status:    data.Status,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrBlogNotFound):
				render.ServiceError(w, "Not found", http.StatusNotFound)
			case errors.Is(err, apperrors.ErrForbidden):
				render.ServiceError(w, "Forbidden", http.StatusForbidden)
			default:
				serverError(w, l, err)
			}
			return
		}

		render.JSON(w, renderBlog(updated))
	})
}

func handleDeleteBlog(bs blogService, l logger.Logger) http.Handler {
	type DeleteBlogResponse struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())

		blogID, ok := pathID(w, r)
		if !ok {
			return
		}

		err := bs.Delete(r.Context(), user, blogID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrBlogNotFound):
				render.ServiceError(w, "Not found", http.StatusNotFound)
			case errors.Is(err, apperrors.ErrForbidden):
				render.ServiceError(w, "Forbidden", http.StatusForbidden)
			default:
				serverError(w, l, err)
			}
			return
		}

		render.JSON(w, DeleteBlogResponse{Message: "Blog deleted"})
	})
}
