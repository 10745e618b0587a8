package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmodels "inkwell/internal/auth/models"
	userstore "inkwell/internal/auth/store/user"
	"inkwell/internal/post/events"
	"inkwell/internal/post/models"
	"inkwell/internal/post/service"
	"inkwell/internal/post/store/cache"
	commentstore "inkwell/internal/post/store/comment"
	poststore "inkwell/internal/post/store/post"
	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/testutil"
)

const body = `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"Some words"}]}]}`

type fixture struct {
	svc      *service.Service
	recorder *events.Recorder
	cache    *cache.InMemoryCache
	alice    *authmodels.User
	bob      *authmodels.User
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	users := userstore.New()
	alice, err := authmodels.NewUser(id.NewUserID(), "alice@example.com", "Alice", "hash", now)
	require.NoError(t, err)
	bob, err := authmodels.NewUser(id.NewUserID(), "bob@example.com", "Bob", "hash", now)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), alice))
	require.NoError(t, users.Create(context.Background(), bob))

	f := &fixture{
		recorder: &events.Recorder{},
		cache:    cache.NewInMemory(),
		alice:    alice,
		bob:      bob,
		now:      now,
	}
	f.svc = service.New(poststore.NewInMemory(), commentstore.NewInMemory(), users,
		service.WithCache(f.cache),
		service.WithPublisher(f.recorder),
	)
	return f
}

// at returns a context for userID whose request time is n minutes after the
// fixture's start.
func (f *fixture) at(userID id.UserID, n int) context.Context {
	return testutil.AuthedContext(userID, f.now.Add(time.Duration(n)*time.Minute))
}

func (f *fixture) create(t *testing.T, ctx context.Context, authorID id.UserID, title string, published bool, tags ...string) *models.PostView {
	t.Helper()
	view, err := f.svc.Create(ctx, authorID, service.CreateInput{
		Title:     title,
		Content:   json.RawMessage(body),
		Published: published,
		Tags:      tags,
	})
	require.NoError(t, err)
	return view
}

func TestPostLifecycle(t *testing.T) {
	f := newFixture(t)

	testutil.Given(t, "two posts with the same title", func(t *testing.T) {
		first := f.create(t, f.at(f.alice.ID, 1), f.alice.ID, "Hello, World!", true, "go")
		second := f.create(t, f.at(f.alice.ID, 2), f.alice.ID, "Hello World", false)

		testutil.Then(t, "slugs are disambiguated", func(t *testing.T) {
			assert.Equal(t, "hello-world", first.Slug)
			assert.Equal(t, "hello-world-1", second.Slug)
		})

		testutil.When(t, "the draft is published under a new title", func(t *testing.T) {
			title, published := "A Fresh Start", true
			updated, err := f.svc.Update(f.at(f.alice.ID, 3), f.alice.ID, second.ID, service.UpdateInput{
				Title:     &title,
				Published: &published,
			})
			require.NoError(t, err)

			testutil.Then(t, "the slug follows the title and the old one is free", func(t *testing.T) {
				assert.Equal(t, "a-fresh-start", updated.Slug)
				_, err := f.svc.GetBySlug(f.at(id.UserID{}, 4), id.UserID{}, "hello-world-1")
				assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
			})
		})

		testutil.Then(t, "the public listing shows both, newest first", func(t *testing.T) {
			res, err := f.svc.ListPublished(context.Background(), service.PublicListParams{})
			require.NoError(t, err)
			require.Len(t, res.Items, 2)
			assert.Equal(t, "a-fresh-start", res.Items[0].Slug)
			assert.Equal(t, "Alice", res.Items[0].Author.Name)
			assert.Equal(t, 2, res.Metadata.Total)
		})

		testutil.Then(t, "lifecycle events were recorded in order", func(t *testing.T) {
			var types []events.Type
			for _, e := range f.recorder.Events() {
				types = append(types, e.Type)
			}
			assert.Equal(t, []events.Type{
				events.PostCreated, events.PostPublished,
				events.PostCreated,
				events.PostUpdated, events.PostPublished,
			}, types)
		})
	})
}

func TestEditorListingDrafts(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.at(f.alice.ID, 1), f.alice.ID, "Alice public", true)
	f.create(t, f.at(f.alice.ID, 2), f.alice.ID, "Alice draft", false)
	f.create(t, f.at(f.bob.ID, 3), f.bob.ID, "Bob draft", false)

	titles := func(res *service.ListResult) []string {
		out := make([]string, len(res.Items))
		for i, it := range res.Items {
			out[i] = it.Title
		}
		return out
	}

	testutil.When(t, "anonymous", func(t *testing.T) {
		res, err := f.svc.List(context.Background(), id.UserID{}, service.ListParams{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Alice public"}, titles(res))
	})

	testutil.When(t, "signed in as the draft's author", func(t *testing.T) {
		res, err := f.svc.List(context.Background(), f.alice.ID, service.ListParams{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Alice draft", "Alice public"}, titles(res))
	})

	testutil.When(t, "signed in with publishedOnly", func(t *testing.T) {
		res, err := f.svc.List(context.Background(), f.bob.ID, service.ListParams{PublishedOnly: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"Alice public"}, titles(res))
	})

	testutil.When(t, "filtered by author", func(t *testing.T) {
		bob := f.bob.ID
		res, err := f.svc.List(context.Background(), f.bob.ID, service.ListParams{AuthorID: &bob})
		require.NoError(t, err)
		assert.Equal(t, []string{"Bob draft"}, titles(res))
	})
}

func TestViewCacheInvalidation(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, f.at(f.alice.ID, 1), f.alice.ID, "Cached", true)

	_, err := f.svc.GetBySlug(context.Background(), id.UserID{}, "cached")
	require.NoError(t, err)
	_, err = f.cache.FindView(context.Background(), "cached")
	require.NoError(t, err, "published view is cached after first read")

	content := json.RawMessage(`{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"Rewritten"}]}]}`)
	_, err = f.svc.Update(f.at(f.alice.ID, 2), f.alice.ID, post.ID, service.UpdateInput{Content: content})
	require.NoError(t, err)

	view, err := f.svc.GetBySlug(context.Background(), id.UserID{}, "cached")
	require.NoError(t, err)
	assert.Contains(t, view.HTML, "Rewritten")

	require.NoError(t, f.svc.Delete(f.at(f.alice.ID, 3), f.alice.ID, post.ID))
	_, err = f.svc.GetBySlug(context.Background(), id.UserID{}, "cached")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestCommentsFlow(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.at(f.alice.ID, 1), f.alice.ID, "Discuss", true)

	first, err := f.svc.AddComment(f.at(f.bob.ID, 2), f.bob.ID, "discuss", "First!")
	require.NoError(t, err)
	_, err = f.svc.AddComment(f.at(f.alice.ID, 3), f.alice.ID, "discuss", "Thanks")
	require.NoError(t, err)

	list, err := f.svc.ListComments(context.Background(), "discuss")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bob", list[0].Author.Name)
	assert.Equal(t, "Thanks", list[1].Content)

	require.NoError(t, f.svc.DeleteComment(f.at(f.alice.ID, 4), f.alice.ID, first.ID),
		"post author moderates comments")

	list, err = f.svc.ListComments(context.Background(), "discuss")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTagsAndSearch(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.at(f.alice.ID, 1), f.alice.ID, "Concurrency patterns", true, "Go", "design")
	f.create(t, f.at(f.alice.ID, 2), f.alice.ID, "Cooking pasta", true, "food")

	tags, err := f.svc.Tags(context.Background())
	require.NoError(t, err)
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	assert.Equal(t, []string{"Go", "design", "food"}, names)

	res, err := f.svc.ListPublished(context.Background(), service.PublicListParams{Query: "PASTA"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Cooking pasta", res.Items[0].Title)

	res, err = f.svc.ListPublished(context.Background(), service.PublicListParams{Query: "desi"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1, "search matches tag names")

	res, err = f.svc.ListPublished(context.Background(), service.PublicListParams{
		Tag:       "food",
		SortBy:    models.SortByTitle,
		SortOrder: models.SortAsc,
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Cooking pasta", res.Items[0].Title)
}
