package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
)

// Comment is a reader's plain-text reply to a published post.
type Comment struct {
	ID        id.CommentID
	PostID    id.PostID
	AuthorID  id.UserID
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewComment constructs a comment, enforcing invariants.
func NewComment(commentID id.CommentID, postID id.PostID, authorID id.UserID, content string, now time.Time) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "comment content is required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "comment must be 2000 characters or less")
	}
	return &Comment{
		ID:        commentID,
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
