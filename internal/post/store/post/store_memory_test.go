package post

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"inkwell/internal/post/models"
	id "inkwell/pkg/domain"
	"inkwell/pkg/platform/sentinel"
	"inkwell/pkg/richtext"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	base  time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) newPost(author id.UserID, title, slug string, published bool, age int, tags ...string) *models.Post {
	p, err := models.NewPost(id.NewPostID(), author, title, slug, richtext.EmptyDocument(), published, s.base.Add(time.Duration(age)*time.Hour))
	s.Require().NoError(err)
	for _, t := range tags {
		p.Tags = append(p.Tags, models.Tag{Name: t})
	}
	s.Require().NoError(s.store.Create(s.ctx, p))
	return p
}

func (s *InMemoryStoreSuite) TestCreateResolvesTags() {
	author := id.NewUserID()
	a := s.newPost(author, "First", "first", true, 0, "go", "web")
	b := s.newPost(author, "Second", "second", true, 1, "go")

	s.Require().Len(a.Tags, 2)
	s.False(a.Tags[0].ID.IsNil())
	s.Equal(a.Tags[0].ID, b.Tags[0].ID, "same tag name shares one tag")

	tags, err := s.store.ListTags(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"go", "web"}, []string{tags[0].Name, tags[1].Name})
}

func (s *InMemoryStoreSuite) TestSlugUniqueness() {
	author := id.NewUserID()
	p := s.newPost(author, "Hello", "hello", false, 0)

	dup, err := models.NewPost(id.NewPostID(), author, "Hello", "hello", richtext.EmptyDocument(), false, s.base)
	s.Require().NoError(err)
	s.True(errors.Is(s.store.Create(s.ctx, dup), sentinel.ErrConflict))

	exists, err := s.store.SlugExists(s.ctx, "hello", id.PostID{})
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.store.SlugExists(s.ctx, "hello", p.ID)
	s.Require().NoError(err)
	s.False(exists, "a post does not collide with itself")
}

func (s *InMemoryStoreSuite) TestUpdateMovesSlug() {
	p := s.newPost(id.NewUserID(), "Hello", "hello", false, 0, "go")
	p.Slug = "hello-again"
	p.Tags = []models.Tag{{Name: "rust"}}
	s.Require().NoError(s.store.Update(s.ctx, p))

	_, err := s.store.FindBySlug(s.ctx, "hello")
	s.True(errors.Is(err, sentinel.ErrNotFound))

	got, err := s.store.FindBySlug(s.ctx, "hello-again")
	s.Require().NoError(err)
	s.Equal([]string{"rust"}, got.TagNames())

	missing := *p
	missing.ID = id.NewPostID()
	missing.Slug = "other"
	s.True(errors.Is(s.store.Update(s.ctx, &missing), sentinel.ErrNotFound))
}

func (s *InMemoryStoreSuite) TestCopySemantics() {
	p := s.newPost(id.NewUserID(), "Hello", "hello", false, 0, "go")
	p.Title = "mutated"
	p.Tags[0].Name = "mutated"

	got, err := s.store.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Hello", got.Title)
	s.Equal("go", got.Tags[0].Name)
}

func (s *InMemoryStoreSuite) TestListFiltering() {
	alice, bob := id.NewUserID(), id.NewUserID()
	s.newPost(alice, "Go generics", "go-generics", true, 0, "Go")
	s.newPost(alice, "Draft on channels", "draft", false, 1, "Go")
	s.newPost(bob, "Rust ownership", "rust", true, 2, "Rust")
	s.newPost(bob, "Bob draft", "bob-draft", false, 3)

	titles := func(f models.ListFilter) []string {
		posts, err := s.store.List(s.ctx, f)
		s.Require().NoError(err)
		n, err := s.store.Count(s.ctx, f)
		s.Require().NoError(err)
		out := make([]string, len(posts))
		for i, p := range posts {
			out[i] = p.Title
		}
		if f.Limit == 0 {
			s.Len(out, n)
		}
		return out
	}

	s.Run("published only, newest first", func() {
		s.Equal([]string{"Rust ownership", "Go generics"}, titles(models.ListFilter{PublishedOnly: true}))
	})

	s.Run("published plus own drafts", func() {
		s.Equal([]string{"Rust ownership", "Draft on channels", "Go generics"},
			titles(models.ListFilter{PublishedOnly: true, IncludeDraftsOf: &alice}))
	})

	s.Run("by author", func() {
		s.Equal([]string{"Bob draft", "Rust ownership"}, titles(models.ListFilter{AuthorID: &bob}))
	})

	s.Run("by tag", func() {
		s.Equal([]string{"Go generics"}, titles(models.ListFilter{PublishedOnly: true, Tag: "Go"}))
	})

	s.Run("query matches title or tag case-insensitively", func() {
		s.Equal([]string{"Rust ownership"}, titles(models.ListFilter{PublishedOnly: true, Query: "RUST"}))
		s.Equal([]string{"Go generics"}, titles(models.ListFilter{PublishedOnly: true, Query: "gener"}))
	})

	s.Run("sort by title ascending", func() {
		s.Equal([]string{"Bob draft", "Draft on channels", "Go generics", "Rust ownership"},
			titles(models.ListFilter{SortBy: models.SortByTitle, SortOrder: models.SortAsc}))
	})

	s.Run("paging", func() {
		s.Equal([]string{"Rust ownership", "Draft on channels"}, titles(models.ListFilter{Limit: 2, Offset: 1}))
		s.Empty(titles(models.ListFilter{Limit: 2, Offset: 10}))
	})
}

func (s *InMemoryStoreSuite) TestDelete() {
	p := s.newPost(id.NewUserID(), "Hello", "hello", false, 0)
	s.Require().NoError(s.store.Delete(s.ctx, p.ID))
	s.True(errors.Is(s.store.Delete(s.ctx, p.ID), sentinel.ErrNotFound))

	exists, err := s.store.SlugExists(s.ctx, "hello", id.PostID{})
	s.Require().NoError(err)
	s.False(exists)
}
