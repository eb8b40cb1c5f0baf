package persistent_cached

import (
	"context"
	"encoding/json"
	"restblog/storage"
	"restblog/storage/models"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	cacheTTL = time.Hour
	// versionTTL outlives any in-flight read-through fill.
	versionTTL = 2 * time.Hour
)

// Warmer schedules an asynchronous cache refill for a post.
type Warmer interface {
	WarmPost(ctx context.Context, postId string) error
}

func cacheKey(postId string) string {
	return "post:" + postId
}

func versionKey(postId string) string {
	return "post:" + postId + ":version"
}

func saveToCache(ctx context.Context, client *redis.Client, log *zap.SugaredLogger, post models.Post) {
	j, err := json.Marshal(post)
	if err != nil {
		log.Warnf("Failed to encode post %s for redis: %v", post.Id, err)
		return
	}
	if err = client.Set(ctx, cacheKey(post.Id), j, cacheTTL).Err(); err != nil {
		log.Warnf("Failed to save post %s to redis: %v", post.Id, err)
	}
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// cacheVersion reads the write counter of a post; a missing counter is version "".
func cacheVersion(ctx context.Context, client stringGetter, postId string) (string, error) {
	v, err := client.Get(ctx, versionKey(postId)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return v, err
}

// fillCache stores a post read from the backend only if no update or delete bumped its version
// since the read started.
func fillCache(ctx context.Context, client *redis.Client, log *zap.SugaredLogger, post models.Post, readVersion string) {
	j, err := json.Marshal(post)
	if err != nil {
		log.Warnf("Failed to encode post %s for redis: %v", post.Id, err)
		return
	}
	err = client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := cacheVersion(ctx, tx, post.Id)
		if err != nil {
			return err
		}
		if current != readVersion {
			return redis.TxFailedErr
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(post.Id), j, cacheTTL)
			return nil
		})
		return err
	}, versionKey(post.Id))
	if err == redis.TxFailedErr {
		log.Debugf("Post %s changed while reading, not caching", post.Id)
		return
	}
	if err != nil {
		log.Warnf("Failed to save post %s to redis: %v", post.Id, err)
	}
}

func getFromCache(ctx context.Context, client *redis.Client, postId string) (models.Post, error) {
	var p models.Post
	val, err := client.Get(ctx, cacheKey(postId)).Bytes()
	if err != nil {
		return p, err
	}
	err = json.Unmarshal(val, &p)
	return p, err
}

// invalidate bumps the post version before dropping the cached copy, so fills that started earlier are discarded.
func invalidate(ctx context.Context, client *redis.Client, log *zap.SugaredLogger, postId string) {
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(postId))
		pipe.Expire(ctx, versionKey(postId), versionTTL)
		pipe.Del(ctx, cacheKey(postId))
		return nil
	})
	if err != nil {
		log.Warnf("Failed to invalidate post %s in redis: %v", postId, err)
	}
}

func CreatePersistentStorageCachedWithRedis(
	persistentStorage storage.Storage, client *redis.Client, log *zap.SugaredLogger) *PersistentStorageWithCache {
	return &PersistentStorageWithCache{
		client:            client,
		persistentStorage: persistentStorage,
		log:               log,
	}
}

type PersistentStorageWithCache struct {
	client            *redis.Client
	persistentStorage storage.Storage
	warmer            Warmer
	log               *zap.SugaredLogger
}

// WithWarmer makes writes enqueue a cache refill in addition to updating the cache directly.
func (s *PersistentStorageWithCache) WithWarmer(w Warmer) *PersistentStorageWithCache {
	s.warmer = w
	return s
}

func (s *PersistentStorageWithCache) warm(ctx context.Context, postId string) {
	if s.warmer == nil {
		return
	}
	if err := s.warmer.WarmPost(ctx, postId); err != nil {
		s.log.Warnf("Failed to enqueue cache warm-up for post %s: %v", postId, err)
	}
}

func (s *PersistentStorageWithCache) ListPosts(ctx context.Context) ([]models.Post, error) {
	return s.persistentStorage.ListPosts(ctx)
}

func (s *PersistentStorageWithCache) GetPost(ctx context.Context, postId string) (models.Post, error) {
	p, err := getFromCache(ctx, s.client, postId)
	if err == nil {
		return p, nil
	}
	if err != redis.Nil {
		s.log.Warnf("Failed to get post %s from redis: %v", postId, err)
	}
	version, verr := cacheVersion(ctx, s.client, postId)
	post, err := s.persistentStorage.GetPost(ctx, postId)
	if err == nil && verr == nil {
		fillCache(ctx, s.client, s.log, post, version)
	}
	return post, err
}

func (s *PersistentStorageWithCache) AddPost(ctx context.Context, fields models.PostFields) (models.Post, error) {
	post, err := s.persistentStorage.AddPost(ctx, fields)
	if err == nil {
		saveToCache(ctx, s.client, s.log, post)
		s.warm(ctx, post.Id)
	}
	return post, err
}

func (s *PersistentStorageWithCache) UpdatePost(ctx context.Context, postId string, fields models.PostFields) (models.Post, error) {
	post, err := s.persistentStorage.UpdatePost(ctx, postId, fields)
	if err == nil {
		invalidate(ctx, s.client, s.log, postId)
		s.warm(ctx, postId)
	}
	return post, err
}

func (s *PersistentStorageWithCache) DeletePost(ctx context.Context, postId string) error {
	err := s.persistentStorage.DeletePost(ctx, postId)
	if err == nil {
		invalidate(ctx, s.client, s.log, postId)
	}
	return err
}

// RefreshPost reloads a post from the backing storage into the cache.
func (s *PersistentStorageWithCache) RefreshPost(ctx context.Context, postId string) error {
	version, err := cacheVersion(ctx, s.client, postId)
	if err != nil {
		return err
	}
	post, err := s.persistentStorage.GetPost(ctx, postId)
	if err != nil {
		return err
	}
	fillCache(ctx, s.client, s.log, post, version)
	return nil
}
