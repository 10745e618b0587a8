//go:build integration

package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"inkwell/internal/post/models"
	"inkwell/internal/post/store/cache"
	"inkwell/pkg/platform/sentinel"
	"inkwell/pkg/richtext"
	"inkwell/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = cache.NewRedisCache(s.redis.Client, 5*time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestViewRoundTrip() {
	ctx := context.Background()
	doc := richtext.NewDocument(richtext.HeadingNode(1, richtext.TextNode("Intro")))
	view := &models.PostView{
		PostSummary: models.PostSummary{Slug: "intro", Title: "Intro", Tags: []models.Tag{}},
		Content:     doc,
		Outline:     richtext.Outline(doc),
		HTML:        `<h1 id="intro">Intro</h1>`,
	}
	s.Require().NoError(s.cache.SaveView(ctx, view))

	got, err := s.cache.FindView(ctx, "intro")
	s.Require().NoError(err)
	s.Equal(view.Outline, got.Outline)
	s.Equal(view.HTML, got.HTML)
	s.Equal(richtext.Outline(got.Content), view.Outline)

	ttl, err := s.redis.Client.TTL(ctx, "inkwell:post:view:intro").Result()
	s.Require().NoError(err)
	s.Greater(ttl, 4*time.Minute)
}

func (s *RedisCacheSuite) TestInvalidate() {
	ctx := context.Background()
	s.Require().NoError(s.cache.SaveView(ctx, &models.PostView{PostSummary: models.PostSummary{Slug: "gone"}}))
	s.Require().NoError(s.cache.Invalidate(ctx, "gone", ""))

	_, err := s.cache.FindView(ctx, "gone")
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *RedisCacheSuite) TestCorruptEntryIsAMiss() {
	ctx := context.Background()
	s.Require().NoError(s.redis.Client.Set(ctx, "inkwell:post:view:bad", "{not json", time.Minute).Err())

	_, err := s.cache.FindView(ctx, "bad")
	s.True(errors.Is(err, sentinel.ErrNotFound))
}
