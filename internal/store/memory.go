package store

import (
	"context"
	"sort"
	"sync"

	"github.com/kolamstudio/kolamstudio/pkg/errors"
)

// MemoryStore keeps posts in memory. It backs the CLI and tests and is
// safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	posts map[string]Post
}

var _ PostStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{posts: make(map[string]Post)}
}

func (s *MemoryStore) Create(_ context.Context, post Post) error {
	if err := post.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.posts[post.ID]; exists {
		return errors.New(errors.ErrCodeInvalidInput, "post %s already exists", post.ID)
	}
	s.posts[post.ID] = post
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post, ok := s.posts[id]
	if !ok {
		return Post{}, errors.New(errors.ErrCodePostNotFound, "post %s not found", id)
	}
	return post, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]Post, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	s.mu.RLock()
	out := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return errors.New(errors.ErrCodePostNotFound, "post %s not found", id)
	}
	delete(s.posts, id)
	return nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }
