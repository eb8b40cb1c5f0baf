// Package postgres stores posts in a single relational table through the pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"restblog/storage"
	"restblog/storage/models"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const schema = `CREATE TABLE IF NOT EXISTS posts (
	id      UUID PRIMARY KEY,
	title   TEXT NOT NULL DEFAULT '',
	image   TEXT NOT NULL DEFAULT '',
	body    TEXT NOT NULL DEFAULT '',
	created TIMESTAMPTZ NOT NULL
)`

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

// CreatePostgresStorage opens a pool for dsn and makes sure the posts table exists.
func CreatePostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := NewPostgresStorage(db)
	if err = s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStorage) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func validId(postId string) bool {
	_, err := uuid.Parse(postId)
	return err == nil
}

func (s *PostgresStorage) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, image, body, created FROM posts ORDER BY created, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %s %w", err.Error(), storage.InternalError)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		var p models.Post
		if err = rows.Scan(&p.Id, &p.Title, &p.Image, &p.Body, &p.Created); err != nil {
			return nil, fmt.Errorf("scan error: %s %w", err.Error(), storage.InternalError)
		}
		p.Created = p.Created.UTC()
		posts = append(posts, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %s %w", err.Error(), storage.InternalError)
	}
	return posts, nil
}

func (s *PostgresStorage) GetPost(ctx context.Context, postId string) (models.Post, error) {
	if !validId(postId) {
		return models.Post{}, fmt.Errorf("malformed post id %q: %w", postId, storage.NotFoundError)
	}
	var p models.Post
	err := s.db.QueryRowContext(ctx, `SELECT id, title, image, body, created FROM posts WHERE id = $1`, postId).
		Scan(&p.Id, &p.Title, &p.Image, &p.Body, &p.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Post{}, fmt.Errorf("no post with id %v: %w", postId, storage.NotFoundError)
		}
		return models.Post{}, fmt.Errorf("failed to find post: %s %w", err.Error(), storage.InternalError)
	}
	p.Created = p.Created.UTC()
	return p, nil
}

func (s *PostgresStorage) AddPost(ctx context.Context, fields models.PostFields) (models.Post, error) {
	p := models.Post{
		Id:      uuid.New().String(),
		Created: time.Now().UTC().Truncate(time.Microsecond),
	}
	p.Apply(fields)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (id, title, image, body, created) VALUES ($1, $2, $3, $4, $5)`,
		p.Id, p.Title, p.Image, p.Body, p.Created)
	if err != nil {
		return models.Post{}, fmt.Errorf("failed to insert post: %s %w", err.Error(), storage.InternalError)
	}
	return p, nil
}

func (s *PostgresStorage) UpdatePost(ctx context.Context, postId string, fields models.PostFields) (models.Post, error) {
	if !validId(postId) {
		return models.Post{}, fmt.Errorf("malformed post id %q: %w", postId, storage.NotFoundError)
	}
	var p models.Post
	err := s.db.QueryRowContext(ctx,
		`UPDATE posts SET title = $1, image = $2, body = $3 WHERE id = $4 RETURNING id, title, image, body, created`,
		fields.Title, fields.Image, fields.Body, postId).
		Scan(&p.Id, &p.Title, &p.Image, &p.Body, &p.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Post{}, fmt.Errorf("no post with id %v: %w", postId, storage.NotFoundError)
		}
		return models.Post{}, fmt.Errorf("failed to update post: %s %w", err.Error(), storage.InternalError)
	}
	p.Created = p.Created.UTC()
	return p, nil
}

func (s *PostgresStorage) DeletePost(ctx context.Context, postId string) error {
	if !validId(postId) {
		return fmt.Errorf("malformed post id %q: %w", postId, storage.NotFoundError)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postId)
	if err != nil {
		return fmt.Errorf("failed to delete post: %s %w", err.Error(), storage.InternalError)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete post: %s %w", err.Error(), storage.InternalError)
	}
	if affected == 0 {
		return fmt.Errorf("no post with id %v: %w", postId, storage.NotFoundError)
	}
	return nil
}
