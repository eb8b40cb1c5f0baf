package storage

import (
	"context"
	"errors"
	"fmt"
	"restblog/storage/models"
)

var (
	InternalError = errors.New("storage internal error")
	ClientError   = errors.New("storage client error")
	NotFoundError = fmt.Errorf("%w.not_found", ClientError)
)

type Storage interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (models.Post, error)
	AddPost(ctx context.Context, fields models.PostFields) (models.Post, error)
	UpdatePost(ctx context.Context, id string, fields models.PostFields) (models.Post, error)
	DeletePost(ctx context.Context, id string) error
}
