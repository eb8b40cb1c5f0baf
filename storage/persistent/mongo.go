package persistent

import (
	"context"
	"errors"
	"fmt"
	"restblog/storage"
	"restblog/storage/models"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const postsCollection = "posts"

type Post struct {
	Id      primitive.ObjectID `bson:"_id,omitempty"`
	Title   string             `bson:"title"`
	Image   string             `bson:"image"`
	Body    string             `bson:"body"`
	Created time.Time          `bson:"created"`
}

func (p *Post) toModel() models.Post {
	return models.Post{
		Id:      p.Id.Hex(),
		Title:   p.Title,
		Image:   p.Image,
		Body:    p.Body,
		Created: p.Created.UTC(),
	}
}

type MongoStorage struct {
	client *mongo.Client
	posts  *mongo.Collection
}

func parseId(postId string) (primitive.ObjectID, error) {
	postMongoId, err := primitive.ObjectIDFromHex(postId)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to convert provided id %q to Mongo object id: %w", postId, storage.NotFoundError)
	}
	return postMongoId, nil
}

func (s *MongoStorage) ListPosts(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.posts.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find posts: %s, %w", err.Error(), storage.InternalError)
	}
	defer cursor.Close(ctx)

	posts := make([]models.Post, 0)
	for cursor.Next(ctx) {
		var next Post
		if err = cursor.Decode(&next); err != nil {
			return nil, fmt.Errorf("decode error: %s, %w", err, storage.InternalError)
		}
		posts = append(posts, next.toModel())
	}
	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %s, %w", err, storage.InternalError)
	}
	return posts, nil
}

func (s *MongoStorage) GetPost(ctx context.Context, postId string) (models.Post, error) {
	postMongoId, err := parseId(postId)
	if err != nil {
		return models.Post{}, err
	}
	var result Post
	err = s.posts.FindOne(ctx, bson.M{"_id": postMongoId}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Post{}, fmt.Errorf("no document with id %v: %w", postId, storage.NotFoundError)
		}
		return models.Post{}, fmt.Errorf("failed to find post: %s %w", err.Error(), storage.InternalError)
	}
	return result.toModel(), nil
}

func (s *MongoStorage) AddPost(ctx context.Context, fields models.PostFields) (models.Post, error) {
	// BSON dates carry millisecond precision.
	post := Post{
		Title:   fields.Title,
		Image:   fields.Image,
		Body:    fields.Body,
		Created: time.Now().UTC().Truncate(time.Millisecond),
	}
	id, err := s.posts.InsertOne(ctx, post)
	if err != nil {
		return models.Post{}, fmt.Errorf("failed to insert post: %s %w", err.Error(), storage.InternalError)
	}
	post.Id = id.InsertedID.(primitive.ObjectID)
	return post.toModel(), nil
}

func (s *MongoStorage) UpdatePost(ctx context.Context, postId string, fields models.PostFields) (models.Post, error) {
	postMongoId, err := parseId(postId)
	if err != nil {
		return models.Post{}, err
	}
	update := bson.M{
		"$set": bson.M{
			"title": fields.Title,
			"image": fields.Image,
			"body":  fields.Body,
		},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetUpsert(false)

	var result Post
	err = s.posts.FindOneAndUpdate(ctx, bson.M{"_id": postMongoId}, update, opts).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Post{}, fmt.Errorf("no document with id %v: %w", postId, storage.NotFoundError)
		}
		return models.Post{}, fmt.Errorf("failed to update post: %s %w", err.Error(), storage.InternalError)
	}
	return result.toModel(), nil
}

func (s *MongoStorage) DeletePost(ctx context.Context, postId string) error {
	postMongoId, err := parseId(postId)
	if err != nil {
		return err
	}
	res, err := s.posts.DeleteOne(ctx, bson.M{"_id": postMongoId})
	if err != nil {
		return fmt.Errorf("failed to delete post: %s %w", err.Error(), storage.InternalError)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("no document with id %v: %w", postId, storage.NotFoundError)
	}
	return nil
}

func (s *MongoStorage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func CreateMongoStorage(ctx context.Context, dbUrl, dbName string) (*MongoStorage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(dbUrl))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	posts := client.Database(dbName).Collection(postsCollection)
	if err = ensurePostsIndexes(ctx, posts); err != nil {
		return nil, err
	}

	return &MongoStorage{
		client: client,
		posts:  posts,
	}, nil
}
