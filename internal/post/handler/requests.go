package handler

import (
	"encoding/json"
	"strings"

	"inkwell/internal/post/models"
	"inkwell/internal/post/service"
	dErrors "inkwell/pkg/domain-errors"
)

// CreatePostRequest is the body of POST /api/editor/content.
type CreatePostRequest struct {
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	Published bool            `json:"published"`
	Tags      []string        `json:"tags"`
}

func (r *CreatePostRequest) Normalize() {
	if r == nil {
		return
	}
	r.Title = strings.TrimSpace(r.Title)
}

// Follows validation order: Size -> Required. Content is checked against the
// document grammar by the service.
func (r *CreatePostRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.Title) > models.MaxTitleLength*4 {
		return fieldErr("title", "title must be 255 characters or less")
	}
	if len(r.Tags) > models.MaxTags*4 {
		return fieldErr("tags", "too many tags")
	}
	if r.Title == "" {
		return fieldErr("title", "title is required")
	}
	return nil
}

func (r *CreatePostRequest) Input() service.CreateInput {
	return service.CreateInput{
		Title:     r.Title,
		Content:   r.Content,
		Published: r.Published,
		Tags:      r.Tags,
	}
}

// UpdatePostRequest is the body of PUT /api/editor/content/{id}. Absent
// fields are left unchanged.
type UpdatePostRequest struct {
	Title     *string         `json:"title"`
	Content   json.RawMessage `json:"content"`
	Published *bool           `json:"published"`
	Tags      *[]string       `json:"tags"`
}

func (r *UpdatePostRequest) Normalize() {
	if r == nil || r.Title == nil {
		return
	}
	t := strings.TrimSpace(*r.Title)
	r.Title = &t
}

func (r *UpdatePostRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Title != nil && len(*r.Title) > models.MaxTitleLength*4 {
		return fieldErr("title", "title must be 255 characters or less")
	}
	if r.Tags != nil && len(*r.Tags) > models.MaxTags*4 {
		return fieldErr("tags", "too many tags")
	}
	if r.Input().IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	return nil
}

func (r *UpdatePostRequest) Input() service.UpdateInput {
	return service.UpdateInput{
		Title:     r.Title,
		Content:   r.Content,
		Published: r.Published,
		Tags:      r.Tags,
	}
}

// CommentRequest is the body of POST /api/blog/posts/{slug}/comments.
type CommentRequest struct {
	Content string `json:"content"`
}

func (r *CommentRequest) Normalize() {
	if r == nil {
		return
	}
	r.Content = strings.TrimSpace(r.Content)
}

func (r *CommentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.Content) > models.MaxCommentLength*4 {
		return fieldErr("content", "comment must be 2000 characters or less")
	}
	if r.Content == "" {
		return fieldErr("content", "comment is required")
	}
	return nil
}

func fieldErr(field, msg string) error {
	return dErrors.WithFields(msg, map[string][]string{field: {msg}})
}
