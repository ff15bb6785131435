// Package memory holds a map-backed Storage implementation.
// It exists for tests that exercise services and handlers without
// a database. Semantics mirror the postgres package, including the
// sentinel errors each method returns.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/nkiryanov/blogapi/internal/models"
	"github.com/nkiryanov/blogapi/internal/repository"
)

type Storage struct {
	mu sync.Mutex

	users         map[uuid.UUID]models.User
	refreshTokens map[string]models.RefreshToken
	blogs         map[uuid.UUID]models.Blog
	comments      map[uuid.UUID]models.Comment
	likes         map[likeKey]models.Like
}

type likeKey struct {
	blogID uuid.UUID
	userID uuid.UUID
}

func NewStorage() *Storage {
	return &Storage{
		users:         make(map[uuid.UUID]models.User),
		refreshTokens: make(map[string]models.RefreshToken),
		blogs:         make(map[uuid.UUID]models.Blog),
		comments:      make(map[uuid.UUID]models.Comment),
		likes:         make(map[likeKey]models.Like),
	}
}

func (s *Storage) User() repository.UserRepo                 { return &userRepo{s: s} }
func (s *Storage) RefreshToken() repository.RefreshTokenRepo { return &refreshTokenRepo{s: s} }
func (s *Storage) Blog() repository.BlogRepo                 { return &blogRepo{s: s} }
func (s *Storage) Comment() repository.CommentRepo           { return &commentRepo{s: s} }
func (s *Storage) Like() repository.LikeRepo                 { return &likeRepo{s: s} }

// InTx runs fn against the same storage. No rollback on error: close
// enough for the code paths tests care about.
func (s *Storage) InTx(_ context.Context, fn func(s repository.Storage) error) error {
	return fn(s)
}
