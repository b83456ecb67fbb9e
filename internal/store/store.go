// Package store persists shared kolam posts. The canonical backend is
// MongoDB; an in-memory store backs the CLI and tests.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kolamstudio/kolamstudio/pkg/errors"
)

// Post is a shared kolam image with its caption.
type Post struct {
	ID        string    `json:"id" bson:"_id"`
	Author    string    `json:"author" bson:"author"`
	Caption   string    `json:"caption" bson:"caption"`
	ImageURL  string    `json:"image_url" bson:"image_url"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// NewPost builds a post with a fresh id and creation time.
func NewPost(author, caption, imageURL string) Post {
	return Post{
		ID:        uuid.NewString(),
		Author:    author,
		Caption:   caption,
		ImageURL:  imageURL,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks the fields a post must carry before it is stored.
func (p Post) Validate() error {
	if p.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "post id must not be empty")
	}
	if p.Author == "" {
		return errors.New(errors.ErrCodeInvalidInput, "post author must not be empty")
	}
	if p.ImageURL == "" {
		return errors.New(errors.ErrCodeInvalidInput, "post image URL must not be empty")
	}
	return nil
}

// PostStore is the persistence interface for posts. List returns posts
// newest first.
type PostStore interface {
	Create(ctx context.Context, post Post) error
	Get(ctx context.Context, id string) (Post, error)
	List(ctx context.Context, limit int) ([]Post, error)
	Delete(ctx context.Context, id string) error
	Close(ctx context.Context) error
}

// DefaultListLimit caps List when the caller passes limit <= 0.
const DefaultListLimit = 50
