package service

import (
	"context"
	"errors"

	"inkwell/internal/post/events"
	"inkwell/internal/post/models"
	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
	"inkwell/pkg/platform/sentinel"
	"inkwell/pkg/requestcontext"
)

var errCommentNotFound = dErrors.New(dErrors.CodeNotFound, "comment not found")

// AddComment comments on a published post.
func (s *Service) AddComment(ctx context.Context, userID id.UserID, slug, content string) (view *models.CommentView, err error) {
	ctx, done := s.startOp(ctx, "add_comment")
	defer done(&err)

	if userID.IsNil() {
		return nil, errSignInNeeded
	}
	post, err := s.publishedPost(ctx, slug)
	if err != nil {
		return nil, err
	}
	comment, err := models.NewComment(id.NewCommentID(), post.ID, userID, content, requestcontext.Now(ctx))
	if err != nil {
		return nil, fieldError("content", err)
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, storeError(err, "failed to create comment")
	}

	s.logger.InfoContext(ctx, "comment created",
		"comment_id", comment.ID.String(),
		"post_id", post.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementCommentsCreated()
	}
	s.emit(ctx, events.Event{
		Type:      events.CommentCreated,
		PostID:    post.ID,
		Slug:      post.Slug,
		AuthorID:  userID,
		CommentID: &comment.ID,
	})

	authors, err := s.lookupAuthors(ctx, []id.UserID{userID})
	if err != nil {
		return nil, err
	}
	v := models.NewCommentView(comment, authors.byline(userID))
	return &v, nil
}

// ListComments returns the comments of a published post, oldest first.
func (s *Service) ListComments(ctx context.Context, slug string) (views []models.CommentView, err error) {
	ctx, done := s.startOp(ctx, "list_comments")
	defer done(&err)

	post, err := s.publishedPost(ctx, slug)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, storeError(err, "failed to list comments")
	}
	ids := make([]id.UserID, len(comments))
	for i, c := range comments {
		ids[i] = c.AuthorID
	}
	authors, err := s.lookupAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}
	views = make([]models.CommentView, len(comments))
	for i, c := range comments {
		views[i] = models.NewCommentView(c, authors.byline(c.AuthorID))
	}
	return views, nil
}

// DeleteComment removes a comment. The comment's author and the post's author
// may delete it.
func (s *Service) DeleteComment(ctx context.Context, userID id.UserID, commentID id.CommentID) (err error) {
	ctx, done := s.startOp(ctx, "delete_comment")
	defer done(&err)

	if userID.IsNil() {
		return errSignInNeeded
	}
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return commentLookupError(err)
	}
	if comment.AuthorID != userID {
		post, err := s.posts.FindByID(ctx, comment.PostID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return lookupError(err)
		}
		if post == nil || !post.IsAuthor(userID) {
			return dErrors.New(dErrors.CodeForbidden, "only the comment or post author can delete this comment")
		}
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return commentLookupError(err)
	}
	s.logger.InfoContext(ctx, "comment deleted",
		"comment_id", commentID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

func (s *Service) publishedPost(ctx context.Context, slug string) (*models.Post, error) {
	post, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return nil, lookupError(err)
	}
	if !post.Published {
		return nil, errPostNotFound
	}
	return post, nil
}

func commentLookupError(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return errCommentNotFound
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load comment")
}
