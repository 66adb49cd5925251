package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/inkwell/internal/model"
)

type PostStore struct {
	db *sql.DB
}

func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

func scanPost(row scanner) (*model.Post, error) {
	var p model.Post
	var published int
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Slug, &p.Thumbnail, &p.Content,
		&published, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Published = published != 0
	return &p, nil
}

const postCols = `id, author_id, title, slug, thumbnail, content, published, created_at, updated_at`

// Create inserts a post and attaches its tags in one transaction.
// It returns ErrDuplicate when the slug is taken.
func (s *PostStore) Create(authorID int64, in model.CreatePostInput) (*model.Post, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO posts (author_id, title, slug, thumbnail, content, published) VALUES (?, ?, ?, ?, ?, ?)`,
		authorID, in.Title, in.Slug, in.Thumbnail, in.Content, boolInt(in.Published),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert post: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := attachTags(tx, id, in.Tags); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(id)
}

func attachTags(tx *sql.Tx, postID int64, names []string) error {
	for _, name := range names {
		tid, err := tagID(tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			`INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
			postID, tid,
		); err != nil {
			return fmt.Errorf("attach tag: %w", err)
		}
	}
	return nil
}

func (s *PostStore) GetByID(id int64) (*model.Post, error) {
	return s.get(`SELECT `+postCols+` FROM posts WHERE id = ?`, id)
}

func (s *PostStore) GetBySlug(slug string) (*model.Post, error) {
	return s.get(`SELECT `+postCols+` FROM posts WHERE slug = ?`, slug)
}

// GetOwned returns the post only when it belongs to authorID. A missing post
// and a post owned by someone else both yield (nil, nil).
func (s *PostStore) GetOwned(id, authorID int64) (*model.Post, error) {
	return s.get(`SELECT `+postCols+` FROM posts WHERE id = ? AND author_id = ?`, id, authorID)
}

func (s *PostStore) get(q string, args ...any) (*model.Post, error) {
	p, err := scanPost(s.db.QueryRow(q, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

// ListPublished returns published posts, newest first.
func (s *PostStore) ListPublished(skip, take int) ([]model.Post, error) {
	return s.list(
		`SELECT `+postCols+` FROM posts WHERE published = 1
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		take, skip,
	)
}

func (s *PostStore) CountPublished() (int, error) {
	return s.count(`SELECT COUNT(*) FROM posts WHERE published = 1`)
}

// ListByAuthor returns every post by the author, drafts included.
func (s *PostStore) ListByAuthor(authorID int64, skip, take int) ([]model.Post, error) {
	return s.list(
		`SELECT `+postCols+` FROM posts WHERE author_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		authorID, take, skip,
	)
}

func (s *PostStore) CountByAuthor(authorID int64) (int, error) {
	return s.count(`SELECT COUNT(*) FROM posts WHERE author_id = ?`, authorID)
}

// ListByTag returns published posts carrying the tag, newest first.
func (s *PostStore) ListByTag(tagID int64, skip, take int) ([]model.Post, error) {
	return s.list(
		`SELECT p.id, p.author_id, p.title, p.slug, p.thumbnail, p.content, p.published, p.created_at, p.updated_at
		 FROM posts p JOIN post_tags pt ON pt.post_id = p.id
		 WHERE pt.tag_id = ? AND p.published = 1
		 ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`,
		tagID, take, skip,
	)
}

func (s *PostStore) list(q string, args ...any) ([]model.Post, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func (s *PostStore) count(q string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRow(q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// Update writes every column of p. When tags is non-nil the post's tags are
// replaced by it; nil leaves them alone. It returns ErrDuplicate when the new
// slug is taken, and (nil, nil) when no post id belongs to authorID.
func (s *PostStore) Update(p *model.Post, authorID int64, tags []string) (*model.Post, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE posts SET title = ?, slug = ?, thumbnail = ?, content = ?, published = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ? AND author_id = ?`,
		p.Title, p.Slug, p.Thumbnail, p.Content, boolInt(p.Published), p.ID, authorID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	if tags != nil {
		if _, err := tx.Exec(`DELETE FROM post_tags WHERE post_id = ?`, p.ID); err != nil {
			return nil, fmt.Errorf("clear tags: %w", err)
		}
		if err := attachTags(tx, p.ID, tags); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(p.ID)
}

// Delete removes the post only when it belongs to authorID and reports
// whether a row was removed.
func (s *PostStore) Delete(id, authorID int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM posts WHERE id = ? AND author_id = ?`, id, authorID)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
