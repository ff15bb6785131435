package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/apperrors"
	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/repository"
)

type blogRepo struct {
	s *Storage
}

func (r *blogRepo) Create(_ context.Context, blog models.Blog) (models.Blog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, b := range r.s.blogs {
		if b.Slug == blog.Slug {
			return models.Blog{}, fmt.Errorf("repo error: slug taken: %q", blog.Slug)
		}
	}

	now := time.Now()
	blog.CreatedAt = now
	blog.UpdatedAt = now
	r.s.blogs[blog.ID] = blog
	return blog, nil
}

func (r *blogRepo) GetByID(_ context.Context, blogID uuid.UUID) (models.Blog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	blog, ok := r.s.blogs[blogID]
	if !ok {
		return models.Blog{}, fmt.Errorf("repo error: %w", apperrors.ErrBlogNotFound)
	}
	return blog, nil
}

func (r *blogRepo) GetBySlug(_ context.Context, slug string) (models.Blog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, b := range r.s.blogs {
		if b.Slug == slug {
			return b, nil
		}
	}
	return models.Blog{}, fmt.Errorf("repo error: %w", apperrors.ErrBlogNotFound)
}

func (r *blogRepo) List(_ context.Context, params repository.ListBlogsParams) ([]models.Blog, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	blogs := make([]models.Blog, 0, len(r.s.blogs))
	for _, b := range r.s.blogs {
		if params.AuthorID != nil && b.AuthorID != *params.AuthorID {
			continue
		}
		if params.PublishedOnly && b.Status != models.BlogStatusPublished {
			continue
		}
		blogs = append(blogs, b)
	}
	sort.Slice(blogs, func(i, j int) bool { return blogs[i].CreatedAt.After(blogs[j].CreatedAt) })

	total := int64(len(blogs))
	return paginate(blogs, params.Limit, params.Offset), total, nil
}

func (r *blogRepo) Update(_ context.Context, blogID uuid.UUID, params repository.UpdateBlogParams) (models.Blog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	blog, ok := r.s.blogs[blogID]
	if !ok {
		return models.Blog{}, fmt.Errorf("repo error: %w", apperrors.ErrBlogNotFound)
	}

	if params.Title != nil {
		blog.Title = *params.Title
	}
	if params.Content != nil {
		blog.Content = *params.Content
	}
	if params.BannerURL != nil {
		blog.BannerURL = *params.BannerURL
	}
	if params.Status != nil {
		blog.Status = *params.Status
	}
	blog.UpdatedAt = time.Now()

	r.s.blogs[blogID] = blog
	return blog, nil
}

func (r *blogRepo) Delete(_ context.Context, blogID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.blogs[blogID]; !ok {
		return fmt.Errorf("repo error: %w", apperrors.ErrBlogNotFound)
	}
	delete(r.s.blogs, blogID)
	return nil
}

func (r *blogRepo) DeleteByAuthor(_ context.Context, authorID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var removed int64
	for id, b := range r.s.blogs {
		if b.AuthorID == authorID {
			delete(r.s.blogs, id)
			removed++
		}
	}
	return removed, nil
}

func (r *blogRepo) IncrementViews(_ context.Context, blogID uuid.UUID) (int64, error) {
	return r.adjust(blogID, func(b *models.Blog) *int64 { b.ViewsCount++; return &b.ViewsCount })
}

func (r *blogRepo) AddCommentsCount(_ context.Context, blogID uuid.UUID, delta int64) (int64, error) {
	return r.adjust(blogID, func(b *models.Blog) *int64 { b.CommentsCount += delta; return &b.CommentsCount })
}

func (r *blogRepo) AddLikesCount(_ context.Context, blogID uuid.UUID, delta int64) (int64, error) {
	return r.adjust(blogID, func(b *models.Blog) *int64 { b.LikesCount += delta; return &b.LikesCount })
}

func (r *blogRepo) adjust(blogID uuid.UUID, apply func(*models.Blog) *int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	blog, ok := r.s.blogs[blogID]
	if !ok {
		return 0, fmt.Errorf("repo error: %w", apperrors.ErrBlogNotFound)
	}
	count := *apply(&blog)
	r.s.blogs[blogID] = blog
	return count, nil
}
