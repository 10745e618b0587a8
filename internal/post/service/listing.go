package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"inkwell/internal/post/models"
	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
)

// ListParams is the editor listing query.
type ListParams struct {
	Pagination    models.Pagination
	AuthorID      *id.UserID
	PublishedOnly bool
}

// PublicListParams is the blog listing query.
type PublicListParams struct {
	Pagination models.Pagination
	Tag        string
	Query      string
	SortBy     models.SortField
	SortOrder  models.SortOrder
}

// ListResult is one page of summaries.
type ListResult struct {
	Items    []models.PostSummary `json:"items"`
	Metadata models.Page          `json:"metadata"`
}

// List is the editor listing, newest first. Anonymous viewers see published
// posts only; a signed-in viewer also sees their own drafts unless
// PublishedOnly is set.
func (s *Service) List(ctx context.Context, viewer id.UserID, params ListParams) (result *ListResult, err error) {
	ctx, done := s.startOp(ctx, "list")
	defer done(&err)

	filter := models.ListFilter{
		AuthorID:      params.AuthorID,
		PublishedOnly: true,
		SortBy:        models.SortByCreatedAt,
		SortOrder:     models.SortDesc,
	}
	if !params.PublishedOnly && !viewer.IsNil() {
		filter.IncludeDraftsOf = &viewer
	}
	return s.page(ctx, filter, clampPagination(params.Pagination))
}

// ListPublished is the public blog listing with tag filter, title and tag
// search, and a choice of sort.
func (s *Service) ListPublished(ctx context.Context, params PublicListParams) (result *ListResult, err error) {
	ctx, done := s.startOp(ctx, "list_published")
	defer done(&err)

	filter := models.ListFilter{
		PublishedOnly: true,
		Tag:           params.Tag,
		Query:         params.Query,
		SortBy:        models.ParseSortField(string(params.SortBy)),
		SortOrder:     models.ParseSortOrder(string(params.SortOrder)),
	}
	return s.page(ctx, filter, clampPagination(params.Pagination))
}

// page fetches one page and the total count concurrently.
func (s *Service) page(ctx context.Context, filter models.ListFilter, p models.Pagination) (*ListResult, error) {
	filter.Limit = p.Limit
	filter.Offset = p.Offset()

	var (
		posts []*models.Post
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = s.posts.List(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.posts.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list posts")
	}

	ids := make([]id.UserID, len(posts))
	for i, post := range posts {
		ids[i] = post.AuthorID
	}
	authors, err := s.lookupAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]models.PostSummary, len(posts))
	for i, post := range posts {
		items[i] = models.NewPostSummary(post, authors.byline(post.AuthorID))
	}
	return &ListResult{Items: items, Metadata: models.NewPage(total, p)}, nil
}

// clampPagination applies defaults to a zero value and bounds the rest.
func clampPagination(p models.Pagination) models.Pagination {
	if p.Page == 0 {
		p.Page = models.DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = models.DefaultLimit
	}
	return models.Pagination{
		Page:  max(1, p.Page),
		Limit: min(max(1, p.Limit), models.MaxLimit),
	}
}
