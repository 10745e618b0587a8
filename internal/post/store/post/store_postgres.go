package post

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"inkwell/internal/platform/postgres"
	"inkwell/internal/post/models"
	id "inkwell/pkg/domain"
	"inkwell/pkg/platform/sentinel"
	"inkwell/pkg/platform/tx"
	"inkwell/pkg/richtext"
)

const (
	postColumns    = `id, author_id, title, slug, content, published, created_at, updated_at`
	slugConstraint = "posts_slug_key"
)

// PostgresStore persists posts in the posts table and their tags in tags and
// post_tags. Content is stored as JSONB.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a post and links its tags in one transaction.
func (s *PostgresStore) Create(ctx context.Context, p *models.Post) error {
	content, err := json.Marshal(p.Content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := tx.Conn(ctx, s.db)
		_, err := q.ExecContext(ctx,
			`INSERT INTO posts (`+postColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.UUID(p.ID), uuid.UUID(p.AuthorID), p.Title, p.Slug, content, p.Published, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			if postgres.IsUniqueViolation(err, slugConstraint) {
				return fmt.Errorf("slug %s: %w", p.Slug, sentinel.ErrConflict)
			}
			return fmt.Errorf("insert post: %w", err)
		}
		tags, err := replaceTags(ctx, q, p.ID, p.Tags)
		if err != nil {
			return err
		}
		p.Tags = tags
		return nil
	})
}

// Update rewrites a post and replaces its tag set.
func (s *PostgresStore) Update(ctx context.Context, p *models.Post) error {
	content, err := json.Marshal(p.Content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	return tx.Run(ctx, s.db, func(ctx context.Context) error {
		q := tx.Conn(ctx, s.db)
		res, err := q.ExecContext(ctx,
			`UPDATE posts SET title = $2, slug = $3, content = $4, published = $5, updated_at = $6 WHERE id = $1`,
			uuid.UUID(p.ID), p.Title, p.Slug, content, p.Published, p.UpdatedAt,
		)
		if err != nil {
			if postgres.IsUniqueViolation(err, slugConstraint) {
				return fmt.Errorf("slug %s: %w", p.Slug, sentinel.ErrConflict)
			}
			return fmt.Errorf("update post: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update post: %w", err)
		}
		if n == 0 {
			return sentinel.ErrNotFound
		}
		tags, err := replaceTags(ctx, q, p.ID, p.Tags)
		if err != nil {
			return err
		}
		p.Tags = tags
		return nil
	})
}

func (s *PostgresStore) Delete(ctx context.Context, postID id.PostID) error {
	res, err := tx.Conn(ctx, s.db).ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, uuid.UUID(postID))
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, postID id.PostID) (*models.Post, error) {
	return s.findOne(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, uuid.UUID(postID))
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.findOne(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
}

// SlugExists reports whether slug belongs to a post other than except.
func (s *PostgresStore) SlugExists(ctx context.Context, slug string, except id.PostID) (bool, error) {
	var exists bool
	err := tx.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)`,
		slug, uuid.UUID(except),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) List(ctx context.Context, f models.ListFilter) ([]*models.Post, error) {
	where, args := whereClause(f)
	query := `SELECT ` + postColumns + ` FROM posts` + where + orderClause(f)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := tx.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if err := s.attachTags(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostgresStore) Count(ctx context.Context, f models.ListFilter) (int, error) {
	where, args := whereClause(f)
	var n int
	if err := tx.Conn(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// ListTags returns every tag ordered by name.
func (s *PostgresStore) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := tx.Conn(ctx, s.db).QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()
	tags := []models.Tag{}
	for rows.Next() {
		var (
			tid uuid.UUID
			t   models.Tag
		)
		if err := rows.Scan(&tid, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		t.ID = id.TagID(tid)
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*models.Post, error) {
	p, err := scanPost(tx.Conn(ctx, s.db).QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, []*models.Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// attachTags loads the tags of posts with one query.
func (s *PostgresStore) attachTags(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	byID := make(map[id.PostID]*models.Post, len(posts))
	raw := make([]string, len(posts))
	for i, p := range posts {
		p.Tags = []models.Tag{}
		byID[p.ID] = p
		raw[i] = p.ID.String()
	}
	rows, err := tx.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT pt.post_id, t.id, t.name
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1::uuid[])
		ORDER BY t.name`, pq.Array(raw))
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pid, tid uuid.UUID
		var name string
		if err := rows.Scan(&pid, &tid, &name); err != nil {
			return fmt.Errorf("scan post tag: %w", err)
		}
		if p, ok := byID[id.PostID(pid)]; ok {
			p.Tags = append(p.Tags, models.Tag{ID: id.TagID(tid), Name: name})
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	return nil
}

// replaceTags links postID to exactly the named tags, creating missing ones.
func replaceTags(ctx context.Context, q tx.Querier, postID id.PostID, tags []models.Tag) ([]models.Tag, error) {
	if _, err := q.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, uuid.UUID(postID)); err != nil {
		return nil, fmt.Errorf("clear post tags: %w", err)
	}
	out := make([]models.Tag, 0, len(tags))
	for _, t := range tags {
		var tid uuid.UUID
		err := q.QueryRowContext(ctx, `
			INSERT INTO tags (id, name) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, uuid.New(), t.Name,
		).Scan(&tid)
		if err != nil {
			return nil, fmt.Errorf("upsert tag %q: %w", t.Name, err)
		}
		_, err = q.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			uuid.UUID(postID), tid,
		)
		if err != nil {
			return nil, fmt.Errorf("link tag %q: %w", t.Name, err)
		}
		out = append(out, models.Tag{ID: id.TagID(tid), Name: t.Name})
	}
	return out, nil
}

func whereClause(f models.ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.AuthorID != nil {
		conds = append(conds, "author_id = "+arg(uuid.UUID(*f.AuthorID)))
	}
	if f.PublishedOnly {
		if f.IncludeDraftsOf != nil {
			conds = append(conds, "(published OR author_id = "+arg(uuid.UUID(*f.IncludeDraftsOf))+")")
		} else {
			conds = append(conds, "published")
		}
	}
	if f.Tag != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = posts.id AND t.name = `+arg(f.Tag)+`)`)
	}
	if f.Query != "" {
		p := arg("%" + escapeLike(f.Query) + "%")
		conds = append(conds, `(title ILIKE `+p+` OR EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.post_id = posts.id AND t.name ILIKE `+p+`))`)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(f models.ListFilter) string {
	col := "created_at"
	switch f.SortBy {
	case models.SortByTitle:
		col = "title"
	case models.SortByUpdatedAt:
		col = "updated_at"
	}
	dir := "DESC"
	if f.SortOrder == models.SortAsc {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", col, dir)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*models.Post, error) {
	var (
		p             models.Post
		pid, authorID uuid.UUID
		content       []byte
	)
	err := row.Scan(&pid, &authorID, &p.Title, &p.Slug, &content, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	p.ID = id.PostID(pid)
	p.AuthorID = id.UserID(authorID)
	p.Content = richtext.NormalizeJSON(content)
	p.Tags = []models.Tag{}
	return &p, nil
}
