// Package domain holds typed identifiers shared across features.
//
// Each ID wraps a uuid.UUID so a PostID can never be passed where a UserID is
// expected. Parse functions are the trust boundary: they reject empty, malformed
// and nil UUIDs with CodeInvalidInput.
package domain

import (
	"github.com/google/uuid"

	dErrors "inkwell/pkg/domain-errors"
)

type (
	UserID    uuid.UUID
	PostID    uuid.UUID
	CommentID uuid.UUID
	TagID     uuid.UUID
)

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	return u, nil
}

// ParseUserID parses a user ID at a trust boundary.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user id", s)
	return UserID(u), err
}

// ParsePostID parses a post ID at a trust boundary.
func ParsePostID(s string) (PostID, error) {
	u, err := parseUUID("post id", s)
	return PostID(u), err
}

// ParseCommentID parses a comment ID at a trust boundary.
func ParseCommentID(s string) (CommentID, error) {
	u, err := parseUUID("comment id", s)
	return CommentID(u), err
}

// ParseTagID parses a tag ID at a trust boundary.
func ParseTagID(s string) (TagID, error) {
	u, err := parseUUID("tag id", s)
	return TagID(u), err
}

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id PostID) String() string    { return uuid.UUID(id).String() }
func (id CommentID) String() string { return uuid.UUID(id).String() }
func (id TagID) String() string     { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id PostID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CommentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id TagID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

func (id UserID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id PostID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id CommentID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id TagID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *PostID) UnmarshalText(b []byte) error    { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *CommentID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *TagID) UnmarshalText(b []byte) error     { return (*uuid.UUID)(id).UnmarshalText(b) }

// NewUserID, NewPostID, NewCommentID and NewTagID mint random IDs.
func NewUserID() UserID       { return UserID(uuid.New()) }
func NewPostID() PostID       { return PostID(uuid.New()) }
func NewCommentID() CommentID { return CommentID(uuid.New()) }
func NewTagID() TagID         { return TagID(uuid.New()) }
