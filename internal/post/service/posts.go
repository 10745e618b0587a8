package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"inkwell/internal/post/events"
	"inkwell/internal/post/models"
	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/platform/sentinel"
	"inkwell/pkg/requestcontext"
	"inkwell/pkg/richtext"
)

const (
	// maxSlugCandidates bounds the -1, -2, ... suffix search.
	maxSlugCandidates = 1000
	// maxSlugRaces bounds retries when a concurrent writer claims a slug
	// between the existence check and the insert.
	maxSlugRaces = 3
)

var (
	errPostNotFound = dErrors.New(dErrors.CodeNotFound, "post not found")
	errNotAuthor    = dErrors.New(dErrors.CodeForbidden, "only the author can change this post")
	errSignInNeeded = dErrors.New(dErrors.CodeUnauthorized, "authentication required")
)

// CreateInput is a new post. Content is the raw editor document.
type CreateInput struct {
	Title     string
	Content   json.RawMessage
	Published bool
	Tags      []string
}

// UpdateInput is a partial update; nil fields are left unchanged. A non-nil
// Tags replaces the whole set.
type UpdateInput struct {
	Title     *string
	Content   json.RawMessage
	Published *bool
	Tags      *[]string
}

func (in UpdateInput) IsEmpty() bool {
	return in.Title == nil && len(in.Content) == 0 && in.Published == nil && in.Tags == nil
}

// Create validates and stores a post, generating a unique slug from its title.
func (s *Service) Create(ctx context.Context, authorID id.UserID, in CreateInput) (view *models.PostView, err error) {
	ctx, done := s.startOp(ctx, "create")
	defer done(&err)

	if authorID.IsNil() {
		return nil, errSignInNeeded
	}
	title, err := models.CheckTitle(in.Title)
	if err != nil {
		return nil, fieldError("title", err)
	}
	doc, err := validateContent(in.Content)
	if err != nil {
		return nil, err
	}
	tagNames, err := models.CleanTagNames(in.Tags)
	if err != nil {
		return nil, fieldError("tags", err)
	}

	now := requestcontext.Now(ctx)
	base := models.BaseSlug(title, now)
	post, err := models.NewPost(id.NewPostID(), authorID, title, base, doc, in.Published, now)
	if err != nil {
		return nil, fieldError("title", err)
	}
	post.Tags = tagsFromNames(tagNames)

	for attempt := 0; ; attempt++ {
		post.Slug, err = s.uniqueSlug(ctx, base, post.ID)
		if err != nil {
			return nil, err
		}
		err = s.posts.Create(ctx, post)
		if err == nil {
			break
		}
		if !errors.Is(err, sentinel.ErrConflict) || attempt+1 >= maxSlugRaces {
			return nil, storeError(err, "failed to create post")
		}
	}

	s.logger.InfoContext(ctx, "post created",
		"post_id", post.ID.String(),
		"slug", post.Slug,
		"published", post.Published,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementPostsCreated()
		if post.Published {
			s.metrics.IncrementPostsPublished()
		}
	}
	s.publish(ctx, events.PostCreated, post)
	if post.Published {
		s.publish(ctx, events.PostPublished, post)
	}
	return s.buildView(ctx, post)
}

// Get returns a post by ID. Drafts are reported as missing to everyone but
// their author.
func (s *Service) Get(ctx context.Context, viewer id.UserID, postID id.PostID) (view *models.PostView, err error) {
	ctx, done := s.startOp(ctx, "get")
	defer done(&err)

	post, err := s.visiblePost(viewer, func() (*models.Post, error) {
		return s.posts.FindByID(ctx, postID)
	})
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, post)
}

// GetBySlug returns the reading view of a post. Published views are served
// from and written to the cache when one is configured.
func (s *Service) GetBySlug(ctx context.Context, viewer id.UserID, slug string) (view *models.PostView, err error) {
	ctx, done := s.startOp(ctx, "get_by_slug")
	defer done(&err)

	if cached := s.cachedView(ctx, slug); cached != nil {
		return cached, nil
	}

	post, err := s.visiblePost(viewer, func() (*models.Post, error) {
		return s.posts.FindBySlug(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	view, err = s.buildView(ctx, post)
	if err != nil {
		return nil, err
	}
	if post.Published && s.cache != nil {
		if err := s.cache.SaveView(ctx, view); err != nil {
			s.logger.WarnContext(ctx, "failed to cache post view",
				"slug", slug,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	return view, nil
}

// Update applies a partial update. Only the author may update a post. A
// changed title regenerates the slug; an unchanged slug is kept.
func (s *Service) Update(ctx context.Context, userID id.UserID, postID id.PostID, in UpdateInput) (view *models.PostView, err error) {
	ctx, done := s.startOp(ctx, "update")
	defer done(&err)

	if userID.IsNil() {
		return nil, errSignInNeeded
	}
	if in.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, lookupError(err)
	}
	if !post.IsAuthor(userID) {
		return nil, errNotAuthor
	}

	now := requestcontext.Now(ctx)
	oldSlug, wasPublished := post.Slug, post.Published

	if in.Title != nil {
		title, err := models.CheckTitle(*in.Title)
		if err != nil {
			return nil, fieldError("title", err)
		}
		if title != post.Title {
			post.Title = title
			post.Slug, err = s.uniqueSlug(ctx, models.BaseSlug(title, now), post.ID)
			if err != nil {
				return nil, err
			}
		}
	}
	if len(in.Content) > 0 {
		doc, err := validateContent(in.Content)
		if err != nil {
			return nil, err
		}
		post.Content = doc
	}
	if in.Published != nil {
		post.Published = *in.Published
	}
	if in.Tags != nil {
		names, err := models.CleanTagNames(*in.Tags)
		if err != nil {
			return nil, fieldError("tags", err)
		}
		post.Tags = tagsFromNames(names)
	}
	post.UpdatedAt = now

	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "slug is already taken")
		}
		return nil, storeError(err, "failed to update post")
	}
	s.invalidate(ctx, oldSlug, post.Slug)

	s.logger.InfoContext(ctx, "post updated",
		"post_id", post.ID.String(),
		"slug", post.Slug,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.publish(ctx, events.PostUpdated, post)
	if !wasPublished && post.Published {
		if s.metrics != nil {
			s.metrics.IncrementPostsPublished()
		}
		s.publish(ctx, events.PostPublished, post)
	}
	return s.buildView(ctx, post)
}

// Delete removes a post and its comments. Only the author may delete.
func (s *Service) Delete(ctx context.Context, userID id.UserID, postID id.PostID) (err error) {
	ctx, done := s.startOp(ctx, "delete")
	defer done(&err)

	if userID.IsNil() {
		return errSignInNeeded
	}
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return lookupError(err)
	}
	if !post.IsAuthor(userID) {
		return errNotAuthor
	}
	if err := s.comments.DeleteByPost(ctx, postID); err != nil {
		return storeError(err, "failed to delete comments")
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return lookupError(err)
	}
	s.invalidate(ctx, post.Slug)

	s.logger.InfoContext(ctx, "post deleted",
		"post_id", post.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.publish(ctx, events.PostDeleted, post)
	return nil
}

// Tags returns every tag ordered by name.
func (s *Service) Tags(ctx context.Context) (tags []models.Tag, err error) {
	ctx, done := s.startOp(ctx, "tags")
	defer done(&err)

	tags, err = s.posts.ListTags(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list tags")
	}
	return tags, nil
}

// ExportMarkdown renders a post as Markdown under a top-level title heading.
func (s *Service) ExportMarkdown(ctx context.Context, viewer id.UserID, slug string) (md string, err error) {
	ctx, done := s.startOp(ctx, "export_markdown")
	defer done(&err)

	post, err := s.visiblePost(viewer, func() (*models.Post, error) {
		return s.posts.FindBySlug(ctx, slug)
	})
	if err != nil {
		return "", err
	}
	body, err := richtext.RenderMarkdown(richtext.Normalize(post.Content))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to render markdown")
	}
	if body == "" {
		return "# " + post.Title + "\n", nil
	}
	return "# " + post.Title + "\n\n" + body + "\n", nil
}

func (s *Service) visiblePost(viewer id.UserID, find func() (*models.Post, error)) (*models.Post, error) {
	post, err := find()
	if err != nil {
		return nil, lookupError(err)
	}
	if !post.VisibleTo(viewer) {
		return nil, errPostNotFound
	}
	return post, nil
}

func (s *Service) cachedView(ctx context.Context, slug string) *models.PostView {
	if s.cache == nil {
		return nil
	}
	view, err := s.cache.FindView(ctx, slug)
	if err == nil {
		if s.metrics != nil {
			s.metrics.IncrementViewCache("hit")
		}
		return view
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "post view cache unavailable",
			"slug", slug,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if s.metrics != nil {
		s.metrics.IncrementViewCache("miss")
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, slugs ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, slugs...); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate post view",
			"slugs", slugs,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// uniqueSlug returns base, or base-1, base-2, ... for the first candidate not
// held by a post other than except.
func (s *Service) uniqueSlug(ctx context.Context, base string, except id.PostID) (string, error) {
	for n := range maxSlugCandidates {
		candidate := models.SlugCandidate(base, n)
		taken, err := s.posts.SlugExists(ctx, candidate, except)
		if err != nil {
			return "", storeError(err, "failed to check slug")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", dErrors.New(dErrors.CodeConflict, "could not generate a unique slug")
}

func (s *Service) buildView(ctx context.Context, post *models.Post) (*models.PostView, error) {
	authors, err := s.lookupAuthors(ctx, []id.UserID{post.AuthorID})
	if err != nil {
		return nil, err
	}
	view, err := models.NewPostView(post, authors.byline(post.AuthorID))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render post")
	}
	return &view, nil
}

func (s *Service) publish(ctx context.Context, typ events.Type, post *models.Post) {
	s.emit(ctx, events.Event{
		Type:     typ,
		PostID:   post.ID,
		Slug:     post.Slug,
		AuthorID: post.AuthorID,
	})
}

// emit fills in the envelope and publishes. Failures are logged only: the
// change has already been stored.
func (s *Service) emit(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	e.OccurredAt = requestcontext.Now(ctx)
	e.RequestID = requestcontext.RequestID(ctx)
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish post event",
			"event_type", string(e.Type),
			"post_id", e.PostID.String(),
			"error", err,
			"request_id", e.RequestID,
		)
	}
}

func validateContent(raw json.RawMessage) (richtext.Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return richtext.Document{}, dErrors.WithFields("content is required", map[string][]string{
			"content": {"is required"},
		})
	}
	doc, err := richtext.Validate(raw)
	if err != nil {
		var verr *richtext.ValidationError
		if errors.As(err, &verr) {
			return richtext.Document{}, dErrors.WithFields("content is not a valid document", verr.Prefixed("content"))
		}
		return richtext.Document{}, dErrors.Wrap(err, dErrors.CodeValidation, "content is not a valid document")
	}
	return doc, nil
}

// fieldError reports a model invariant violation as a validation error on
// field.
func fieldError(field string, err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.WithFields(err.Error(), map[string][]string{field: {err.Error()}})
	}
	return err
}

func lookupError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return errPostNotFound
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load post")
}

func storeError(err error, msg string) error {
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func tagsFromNames(names []string) []models.Tag {
	tags := make([]models.Tag, len(names))
	for i, n := range names {
		tags[i] = models.Tag{Name: n}
	}
	return tags
}
