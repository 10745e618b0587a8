package comment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/post/models"
	id "inkwell/pkg/domain"
	"inkwell/pkg/platform/sentinel"
	"inkwell/pkg/platform/tx"
)

const commentColumns = `id, post_id, author_id, content, created_at, updated_at`

// PostgresStore persists comments in the comments table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Comment) error {
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO comments (`+commentColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.UUID(c.ID), uuid.UUID(c.PostID), uuid.UUID(c.AuthorID), c.Content, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, commentID id.CommentID) (*models.Comment, error) {
	row := tx.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, uuid.UUID(commentID))
	return scanComment(row)
}

// ListByPost returns the comments of a post, oldest first.
func (s *PostgresStore) ListByPost(ctx context.Context, postID id.PostID) ([]*models.Comment, error) {
	rows, err := tx.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE post_id = $1 ORDER BY created_at ASC, id ASC`,
		uuid.UUID(postID))
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()
	out := []*models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, commentID id.CommentID) error {
	res, err := tx.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, uuid.UUID(commentID))
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// DeleteByPost removes every comment of a post. The foreign key cascade
// already does this when the post row goes; the call keeps both stores
// interchangeable.
func (s *PostgresStore) DeleteByPost(ctx context.Context, postID id.PostID) error {
	if _, err := tx.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM comments WHERE post_id = $1`, uuid.UUID(postID)); err != nil {
		return fmt.Errorf("delete post comments: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComment(row scanner) (*models.Comment, error) {
	var (
		c                  models.Comment
		cid, pid, authorID uuid.UUID
	)
	err := row.Scan(&cid, &pid, &authorID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	c.ID = id.CommentID(cid)
	c.PostID = id.PostID(pid)
	c.AuthorID = id.UserID(authorID)
	return &c, nil
}
