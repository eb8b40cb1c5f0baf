package in_memory

import (
	"context"
	"fmt"
	"restblog/storage"
	"restblog/storage/models"
	"sync"
	"time"

	"github.com/google/uuid"
)

type InMemoryStorage struct {
	mut     sync.RWMutex
	posts   map[string]models.Post
	postIds []string
}

func (s *InMemoryStorage) ListPosts(_ context.Context) ([]models.Post, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()

	posts := make([]models.Post, 0, len(s.postIds))
	for _, id := range s.postIds {
		posts = append(posts, s.posts[id])
	}
	return posts, nil
}

func (s *InMemoryStorage) GetPost(_ context.Context, postId string) (models.Post, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()

	post, found := s.posts[postId]
	if !found {
		return models.Post{}, fmt.Errorf("no post with id %v: %w", postId, storage.NotFoundError)
	}
	return post, nil
}

func (s *InMemoryStorage) AddPost(_ context.Context, fields models.PostFields) (models.Post, error) {
	p := models.Post{
		Id:      uuid.New().String(),
		Created: time.Now().UTC(),
	}
	p.Apply(fields)

	s.mut.Lock()
	defer s.mut.Unlock()
	s.posts[p.Id] = p
	s.postIds = append(s.postIds, p.Id)
	return p, nil
}

func (s *InMemoryStorage) UpdatePost(_ context.Context, postId string, fields models.PostFields) (models.Post, error) {
	s.mut.Lock()
	defer s.mut.Unlock()

	post, found := s.posts[postId]
	if !found {
		return models.Post{}, fmt.Errorf("no post with id %v: %w", postId, storage.NotFoundError)
	}
	post.Apply(fields)
	s.posts[postId] = post
	return post, nil
}

func (s *InMemoryStorage) DeletePost(_ context.Context, postId string) error {
	s.mut.Lock()
	defer s.mut.Unlock()

	if _, found := s.posts[postId]; !found {
		return fmt.Errorf("no post with id %v: %w", postId, storage.NotFoundError)
	}
	delete(s.posts, postId)
	for i, id := range s.postIds {
		if id == postId {
			s.postIds = append(s.postIds[:i], s.postIds[i+1:]...)
			break
		}
	}
	return nil
}

func CreateInMemoryStorage() storage.Storage {
	return &InMemoryStorage{
		posts:   make(map[string]models.Post),
		postIds: make([]string, 0),
	}
}
