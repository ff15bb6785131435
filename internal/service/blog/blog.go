package blog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/repository"
)

// How many times Create retries when the random slug suffix collides
const createSlugRetries = 3

type BlogService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *BlogService {
	return &BlogService{storage: storage}
}

type CreateParams struct {
	Title     string
	Content   string
	BannerURL string
	Status    string
}

func (s *BlogService) Create(ctx context.Context, author models.User, params CreateParams) (models.Blog, error) {
	status := params.Status
	if status == "" {
		status = models.BlogStatusDraft
	}

	var created models.Blog
	var err error
	for range createSlugRetries {
		created, err = s.storage.Blog().Create(ctx, models.Blog{
			ID:        uuid.New(),
			AuthorID:  author.ID,
			Slug:      newSlug(params.Title),
			Title:     params.Title,
			Content:   params.Content,
			BannerURL: params.BannerURL,
			Status:    status,
		})
		if err == nil {
			return created, nil
		}
	}

	return created, fmt.Errorf("can't create blog. Err: %w", err)
}

// Get returns the blog by slug and bumps its views counter.
// Drafts are visible to the author and admins only; everyone else gets
// not found, so the slug doesn't leak that a draft exists.
func (s *BlogService) Get(ctx context.Context, viewer models.User, slug string) (models.Blog, error) {
	blog, err := s.storage.Blog().GetBySlug(ctx, slug)
	if err != nil {
		return models.Blog{}, err
	}

	if !blog.VisibleTo(viewer) {
		return models.Blog{}, fmt.Errorf("blog hidden from viewer: %w", apperrors.ErrBlogNotFound)
	}

	views, err := s.storage.Blog().IncrementViews(ctx, blog.ID)
	if err != nil {
		return models.Blog{}, err
	}
	blog.ViewsCount = views

	return blog, nil
}

// List returns published blogs for regular viewers and everything for admins
func (s *BlogService) List(ctx context.Context, viewer models.User, limit int, offset int) ([]models.Blog, int64, error) {
	return s.storage.Blog().List(ctx, repository.ListBlogsParams{
		PublishedOnly: !viewer.IsAdmin(),
		Limit:         limit,
		Offset:        offset,
	})
}

// ListByAuthor narrows the listing to one author. The author themself
// and admins see drafts too.
func (s *BlogService) ListByAuthor(ctx context.Context, viewer models.User, authorID uuid.UUID, limit int, offset int) ([]models.Blog, int64, error) {
	publishedOnly := !viewer.IsAdmin() && viewer.ID != authorID

	return s.storage.Blog().List(ctx, repository.ListBlogsParams{
		AuthorID:      &authorID,
		PublishedOnly: publishedOnly,
		Limit:         limit,
		Offset:        offset,
	})
}

type UpdateParams struct {
	Title     *string
	Content   *string
	BannerURL *string
	Status    *string
}

// Update changes blog fields. Only the author or an admin may edit;
// anyone who can't even see the blog gets not found instead of forbidden.
func (s *BlogService) Update(ctx context.Context, viewer models.User, blogID uuid.UUID, params UpdateParams) (models.Blog, error) {
	blog, err := s.authorOrAdmin(ctx, viewer, blogID)
	if err != nil {
		return models.Blog{}, err
	}

	return s.storage.Blog().Update(ctx, blog.ID, repository.UpdateBlogParams{
		Title:     params.Title,
		Content:   params.Content,
		BannerURL: params.BannerURL,
		Status:    params.Status,
	})
}

func (s *BlogService) Delete(ctx context.Context, viewer models.User, blogID uuid.UUID) error {
	blog, err := s.authorOrAdmin(ctx, viewer, blogID)
	if err != nil {
		return err
	}

	return s.storage.Blog().Delete(ctx, blog.ID)
}

func (s *BlogService) authorOrAdmin(ctx context.Context, viewer models.User, blogID uuid.UUID) (models.Blog, error) {
	blog, err := s.storage.Blog().GetByID(ctx, blogID)
	if err != nil {
		return models.Blog{}, err
	}

	if !blog.VisibleTo(viewer) {
		return models.Blog{}, fmt.Errorf("blog hidden from viewer: %w", apperrors.ErrBlogNotFound)
	}

	if blog.AuthorID != viewer.ID && !viewer.IsAdmin() {
		return models.Blog{}, fmt.Errorf("viewer is not the author: %w", apperrors.ErrForbidden)
	}

	return blog, nil
}

// GetVisible returns the blog if the viewer may see it. Shared by the
// comment and like services, which gate on visibility the same way.
func GetVisible(ctx context.Context, storage repository.Storage, viewer models.User, blogID uuid.UUID) (models.Blog, error) {
	blog, err := storage.Blog().GetByID(ctx, blogID)
	if err != nil {
		return models.Blog{}, err
	}

	if !blog.VisibleTo(viewer) {
		return models.Blog{}, fmt.Errorf("blog hidden from viewer: %w", apperrors.ErrBlogNotFound)
	}

	return blog, nil
}
