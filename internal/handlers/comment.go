package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/handlers/render"
	"github.com/nkiryanov/blogapi/internal/handlers/userctx"
	"github.com/nkiryanov/blogapi/internal/logger"
)

func handleCreateComment(cs commentService, l logger.Logger) http.Handler {
	type CreateCommentRequest struct {
		Content string `json:"content" validate:"required,max=2000"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())

		blogID, ok := pathID(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[CreateCommentRequest](w, r)
		if err != nil {
			return
		}

		created, err := cs.Create(r.Context(), user, blogID, data.Content)
		if err != nil {
			if errors.Is(err, apperrors.ErrBlogNotFound) {
				render.ServiceError(w, "Not found", http.StatusNotFound)
				return
			}
			serverError(w, l, err)
			return
		}

		render.JSONWithStatus(w, renderComment(created), http.StatusCreated)
	})
}

func handleListComments(cs commentService, l logger.Logger) http.Handler {
	type CommentListResponse struct {
		Comments []commentResponse `json:"comments"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := userctx.FromContext(r.Context())

		blogID, ok := pathID(w, r)
		if !ok {
			return
		}

		comments, err := cs.ListByBlog(r.Context(), viewer, blogID)
		if err != nil {
			if errors.Is(err, apperrors.ErrBlogNotFound) {
				render.ServiceError(w, "Not found", http.StatusNotFound)
				return
			}
			serverError(w, l, err)
			return
		}

		out := make([]commentResponse, 0, len(comments))
		for _, c := range comments {
			out = append(out, renderComment(c))
		}

		render.JSON(w, CommentListResponse{Comments: out})
	})
}

func handleDeleteComment(cs commentService, l logger.Logger) http.Handler {
	type DeleteCommentResponse struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())

		commentID, ok := pathID(w, r)
		if !ok {
			return
		}

		err := cs.Delete(r.Context(), user, commentID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrCommentNotFound):
				render.ServiceError(w, "Not found", http.StatusNotFound)
			case errors.Is(err, apperrors.ErrForbidden):
				render.ServiceError(w, "Forbidden", http.StatusForbidden)
			default:
				serverError(w, l, err)
			}
			return
		}

		render.JSON(w, DeleteCommentResponse{Message: "Comment deleted"})
	})
}
