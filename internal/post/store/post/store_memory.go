package post

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"inkwell/internal/post/models"
	id "inkwell/pkg/domain"
	"inkwell/pkg/platform/sentinel"
)

// InMemoryStore keeps posts and tags in maps guarded by a RWMutex. Records are
// copied on the way in and out so callers cannot mutate stored state.
type InMemoryStore struct {
	mu     sync.RWMutex
	posts  map[id.PostID]models.Post
	bySlug map[string]id.PostID
	tags   map[string]models.Tag
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		posts:  make(map[id.PostID]models.Post),
		bySlug: make(map[string]id.PostID),
		tags:   make(map[string]models.Tag),
	}
}

// Create inserts a post. Tags are matched by name and created when missing;
// p.Tags is updated with the resolved IDs.
func (s *InMemoryStore) Create(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.bySlug[p.Slug]; taken {
		return fmt.Errorf("slug %s: %w", p.Slug, sentinel.ErrConflict)
	}
	p.Tags = s.resolveTags(p.Tags)
	s.posts[p.ID] = clonePost(p)
	s.bySlug[p.Slug] = p.ID
	return nil
}

// Update replaces a post, including its tag set.
func (s *InMemoryStore) Update(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.posts[p.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if owner, taken := s.bySlug[p.Slug]; taken && owner != p.ID {
		return fmt.Errorf("slug %s: %w", p.Slug, sentinel.ErrConflict)
	}
	p.Tags = s.resolveTags(p.Tags)
	delete(s.bySlug, existing.Slug)
	s.posts[p.ID] = clonePost(p)
	s.bySlug[p.Slug] = p.ID
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, postID id.PostID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.bySlug, p.Slug)
	delete(s.posts, postID)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, postID id.PostID) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[postID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := clonePost(&p)
	return &out, nil
}

func (s *InMemoryStore) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	postID, ok := s.bySlug[slug]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	p := s.posts[postID]
	out := clonePost(&p)
	return &out, nil
}

// SlugExists reports whether slug belongs to a post other than except.
func (s *InMemoryStore) SlugExists(_ context.Context, slug string, except id.PostID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.bySlug[slug]
	return ok && owner != except, nil
}

func (s *InMemoryStore) List(_ context.Context, f models.ListFilter) ([]*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.filter(f)
	slices.SortFunc(matched, compareFor(f))
	start := min(max(f.Offset, 0), len(matched))
	end := len(matched)
	if f.Limit > 0 {
		end = min(start+f.Limit, len(matched))
	}
	out := make([]*models.Post, 0, end-start)
	for _, p := range matched[start:end] {
		c := clonePost(&p)
		out = append(out, &c)
	}
	return out, nil
}

func (s *InMemoryStore) Count(_ context.Context, f models.ListFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filter(f)), nil
}

// ListTags returns every tag ordered by name.
func (s *InMemoryStore) ListTags(_ context.Context) ([]models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b models.Tag) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *InMemoryStore) resolveTags(tags []models.Tag) []models.Tag {
	out := make([]models.Tag, 0, len(tags))
	for _, t := range tags {
		existing, ok := s.tags[t.Name]
		if !ok {
			existing = models.Tag{ID: id.NewTagID(), Name: t.Name}
			s.tags[t.Name] = existing
		}
		out = append(out, existing)
	}
	return out
}

func (s *InMemoryStore) filter(f models.ListFilter) []models.Post {
	query := strings.ToLower(f.Query)
	var out []models.Post
	for _, p := range s.posts {
		if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
			continue
		}
		if f.PublishedOnly && !p.Published && (f.IncludeDraftsOf == nil || p.AuthorID != *f.IncludeDraftsOf) {
			continue
		}
		if f.Tag != "" && !slices.Contains(p.TagNames(), f.Tag) {
			continue
		}
		if query != "" && !matchesQuery(&p, query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesQuery(p *models.Post, query string) bool {
	if strings.Contains(strings.ToLower(p.Title), query) {
		return true
	}
	return slices.ContainsFunc(p.Tags, func(t models.Tag) bool {
		return strings.Contains(strings.ToLower(t.Name), query)
	})
}

func compareFor(f models.ListFilter) func(a, b models.Post) int {
	return func(a, b models.Post) int {
		var c int
		switch f.SortBy {
		case models.SortByTitle:
			c = strings.Compare(a.Title, b.Title)
		case models.SortByUpdatedAt:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if f.SortOrder != models.SortAsc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	}
}

func clonePost(p *models.Post) models.Post {
	out := *p
	out.Tags = slices.Clone(p.Tags)
	if out.Tags == nil {
		out.Tags = []models.Tag{}
	}
	return out
}
