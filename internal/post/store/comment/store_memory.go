package comment

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"inkwell/internal/post/models"
	id "inkwell/pkg/domain"
	"inkwell/pkg/platform/sentinel"
)

// InMemoryStore keeps comments in a map guarded by a RWMutex.
type InMemoryStore struct {
	mu       sync.RWMutex
	comments map[id.CommentID]models.Comment
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{comments: make(map[id.CommentID]models.Comment)}
}

func (s *InMemoryStore) Create(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[c.ID] = *c
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, commentID id.CommentID) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[commentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

// ListByPost returns the comments of a post, oldest first.
func (s *InMemoryStore) ListByPost(_ context.Context, postID id.PostID) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *models.Comment) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

func (s *InMemoryStore) Delete(_ context.Context, commentID id.CommentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[commentID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.comments, commentID)
	return nil
}

// DeleteByPost removes every comment of a post.
func (s *InMemoryStore) DeleteByPost(_ context.Context, postID id.PostID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, c := range s.comments {
		if c.PostID == postID {
			delete(s.comments, k)
		}
	}
	return nil
}
