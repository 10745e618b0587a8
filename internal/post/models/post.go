package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "inkwell/pkg/domain"
	dErrors "inkwell/pkg/domain-errors"
	pstrings "inkwell/pkg/platform/strings"
	"inkwell/pkg/richtext"
)

const (
	MaxTitleLength   = 255
	MaxTags          = 20
	MaxTagLength     = 50
	MaxCommentLength = 2000
	ExcerptLength    = 200
)

// Tag labels posts. Names are unique.
type Tag struct {
	ID   id.TagID `json:"id"`
	Name string   `json:"name"`
}

// Post is an article authored with the rich-text editor.
//
// Invariants:
//   - Title is trimmed and 1..MaxTitleLength runes
//   - Slug is non-empty and unique across posts
//   - Content is a validated document
type Post struct {
	ID        id.PostID
	AuthorID  id.UserID
	Title     string
	Slug      string
	Content   richtext.Document
	Published bool
	Tags      []Tag
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPost constructs a post, enforcing invariants.
func NewPost(postID id.PostID, authorID id.UserID, title, slug string, content richtext.Document, published bool, now time.Time) (*Post, error) {
	title, err := CheckTitle(title)
	if err != nil {
		return nil, err
	}
	if slug == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "slug is required")
	}
	return &Post{
		ID:        postID,
		AuthorID:  authorID,
		Title:     title,
		Slug:      slug,
		Content:   content,
		Published: published,
		Tags:      []Tag{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CheckTitle trims a title and checks its length.
func CheckTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "title must be 255 characters or less")
	}
	return title, nil
}

// CleanTagNames trims and deduplicates tag names case-insensitively, keeping
// the first spelling.
func CleanTagNames(names []string) ([]string, error) {
	cleaned := pstrings.DedupeFold(names)
	if len(cleaned) > MaxTags {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "too many tags")
	}
	for _, n := range cleaned {
		if utf8.RuneCountInString(n) > MaxTagLength {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "tag names must be 50 characters or less")
		}
	}
	return cleaned, nil
}

// VisibleTo reports whether viewer may read the post. Drafts are visible to
// their author only; a nil viewer is anonymous.
func (p *Post) VisibleTo(viewer id.UserID) bool {
	return p.Published || (!viewer.IsNil() && p.AuthorID == viewer)
}

// IsAuthor reports whether userID wrote the post.
func (p *Post) IsAuthor(userID id.UserID) bool {
	return !userID.IsNil() && p.AuthorID == userID
}

// TagNames returns the names of the post's tags in order.
func (p *Post) TagNames() []string {
	names := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		names[i] = t.Name
	}
	return names
}
