package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/handlers/render"
	"github.com/nkiryanov/blogapi/internal/handlers/userctx"
	"github.com/nkiryanov/blogapi/internal/logger"
)

func handleLikeBlog(ls likeService, l logger.Logger) http.Handler {
	type LikeResponse struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())

		blogID, ok := pathID(w, r)
		if !ok {
			return
		}

		_, err := ls.Like(r.Context(), user, blogID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrBlogNotFound):
				render.ServiceError(w, "Not found", http.StatusNotFound)
			case errors.Is(err, apperrors.ErrLikeAlreadyExists):
				render.ServiceError(w, "Already liked", http.StatusConflict)
			default:
				serverError(w, l, err)
			}
			return
		}

		render.JSONWithStatus(w, LikeResponse{Message: "Blog liked"}, http.StatusCreated)
	})
}

func handleUnlikeBlog(ls likeService, l logger.Logger) http.Handler {
	type UnlikeResponse struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())

		blogID, ok := pathID(w, r)
		if !ok {
			return
		}

		err := ls.Unlike(r.Context(), user, blogID)
		if err != nil {
			if errors.Is(err, apperrors.ErrLikeNotFound) {
				render.ServiceError(w, "Not found", http.StatusNotFound)
				return
			}
			serverError(w, l, err)
			return
		}

		render.JSON(w, UnlikeResponse{Message: "Blog unliked"})
	})
}

func handleLikeStatus(ls likeService, l logger.Logger) http.Handler {
	type LikeStatusResponse struct {
		IsLiked bool `json:"isLiked"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())

		blogID, ok := pathID(w, r)
		if !ok {
			return
		}

		liked, err := ls.Liked(r.Context(), user, blogID)
		if err != nil {
			serverError(w, l, err)
			return
		}

		render.JSON(w, LikeStatusResponse{IsLiked: liked})
	})
}
