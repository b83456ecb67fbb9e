package store

import (
	"context"
	"testing"
	"time"

	"github.com/kolamstudio/kolamstudio/pkg/errors"
)

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	post := NewPost("asha", "first rangoli", "https://img.example/1.png")
	if err := s.Create(ctx, post); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get(ctx, post.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Author != "asha" || got.Caption != "first rangoli" {
		t.Errorf("Get returned %+v", got)
	}

	if err := s.Delete(ctx, post.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, post.ID); !errors.Is(err, errors.ErrCodePostNotFound) {
		t.Errorf("Get after delete = %v, want %v", err, errors.ErrCodePostNotFound)
	}
	if err := s.Delete(ctx, post.ID); !errors.Is(err, errors.ErrCodePostNotFound) {
		t.Errorf("second Delete = %v, want %v", err, errors.ErrCodePostNotFound)
	}
}

func TestMemoryStoreRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	post := NewPost("asha", "", "https://img.example/1.png")
	if err := s.Create(ctx, post); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(ctx, post); err == nil {
		t.Error("expected error for duplicate id")
	}
}

func TestMemoryStoreRejectsInvalidPost(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	bad := Post{ID: "x", Author: "", ImageURL: "https://img.example/1.png"}
	if err := s.Create(ctx, bad); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Create = %v, want %v", err, errors.ErrCodeInvalidInput)
	}
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		p := NewPost("asha", "", "https://img.example/p.png")
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	posts, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(posts) != 5 {
		t.Fatalf("List returned %d posts, want 5", len(posts))
	}
	for i := 1; i < len(posts); i++ {
		if posts[i].CreatedAt.After(posts[i-1].CreatedAt) {
			t.Fatal("posts not sorted newest first")
		}
	}

	limited, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d posts", len(limited))
	}
}

func TestNewPostFillsDefaults(t *testing.T) {
	p := NewPost("asha", "cap", "https://img.example/1.png")
	if p.ID == "" {
		t.Error("NewPost left ID empty")
	}
	if p.CreatedAt.IsZero() {
		t.Error("NewPost left CreatedAt zero")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
