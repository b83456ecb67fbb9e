package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kolamstudio/kolamstudio/pkg/errors"
	"github.com/kolamstudio/kolamstudio/pkg/httputil"
)

const postsCollection = "posts"

// MongoStore persists posts in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	posts  *mongo.Collection
}

var _ PostStore = (*MongoStore)(nil)

// NewMongoStore connects to MongoDB and verifies the connection. The
// initial ping is retried so the server survives a database that comes
// up slightly later than the application.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}

	err = httputil.RetryWithBackoff(ctx, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return httputil.Retryable(client.Ping(pingCtx, nil))
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}

	return &MongoStore{
		client: client,
		posts:  client.Database(database).Collection(postsCollection),
	}, nil
}

func (s *MongoStore) Create(ctx context.Context, post Post) error {
	if err := post.Validate(); err != nil {
		return err
	}
	if _, err := s.posts.InsertOne(ctx, post); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.New(errors.ErrCodeInvalidInput, "post %s already exists", post.ID)
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "insert post %s", post.ID)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (Post, error) {
	var post Post
	err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return Post{}, errors.New(errors.ErrCodePostNotFound, "post %s not found", id)
	}
	if err != nil {
		return Post{}, errors.Wrap(errors.ErrCodeInternal, err, "find post %s", id)
	}
	return post, nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]Post, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list posts")
	}
	defer cur.Close(ctx)

	var posts []Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode posts")
	}
	return posts, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete post %s", id)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodePostNotFound, "post %s not found", id)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
