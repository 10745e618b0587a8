package models

import (
	"time"

	id "inkwell/pkg/domain"
	pstrings "inkwell/pkg/platform/strings"
	"inkwell/pkg/richtext"
)

// Author is the public byline of a post or comment.
type Author struct {
	ID    id.UserID `json:"id"`
	Name  string    `json:"name"`
	Image string    `json:"image,omitempty"`
}

// PostSummary is the listing representation of a post.
type PostSummary struct {
	ID             id.PostID `json:"id"`
	Title          string    `json:"title"`
	Slug           string    `json:"slug"`
	Excerpt        string    `json:"excerpt"`
	Published      bool      `json:"published"`
	Author         Author    `json:"author"`
	Tags           []Tag     `json:"tags"`
	ReadingMinutes int       `json:"readingMinutes"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// PostView is the full read model of a post: the normalized document plus
// everything derived from it. Published views are cached as JSON.
type PostView struct {
	PostSummary
	Content richtext.Document  `json:"content"`
	Outline []richtext.Heading `json:"outline"`
	HTML    string             `json:"html"`
	Stats   richtext.Stats     `json:"stats"`
}

// CommentView is a comment with its byline.
type CommentView struct {
	ID        id.CommentID `json:"id"`
	PostID    id.PostID    `json:"postId"`
	Author    Author       `json:"author"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// NewPostSummary builds the listing view of p. Content is normalized before
// anything is derived from it.
func NewPostSummary(p *Post, author Author) PostSummary {
	doc := richtext.Normalize(p.Content)
	stats := richtext.ComputeStats(doc)
	tags := p.Tags
	if tags == nil {
		tags = []Tag{}
	}
	return PostSummary{
		ID:             p.ID,
		Title:          p.Title,
		Slug:           p.Slug,
		Excerpt:        pstrings.Truncate(pstrings.CollapseSpace(richtext.PlainText(doc)), ExcerptLength),
		Published:      p.Published,
		Author:         author,
		Tags:           tags,
		ReadingMinutes: stats.ReadingMinutes(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// NewPostView builds the full view of p, rendering its content to HTML.
func NewPostView(p *Post, author Author) (PostView, error) {
	doc := richtext.Normalize(p.Content)
	html, err := richtext.RenderHTML(doc)
	if err != nil {
		return PostView{}, err
	}
	return PostView{
		PostSummary: NewPostSummary(p, author),
		Content:     doc,
		Outline:     richtext.Outline(doc),
		HTML:        html,
		Stats:       richtext.ComputeStats(doc),
	}, nil
}

// NewCommentView builds the view of c.
func NewCommentView(c *Comment, author Author) CommentView {
	return CommentView{
		ID:        c.ID,
		PostID:    c.PostID,
		Author:    author,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
