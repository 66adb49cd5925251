package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/inkwell/internal/model"
)

type CommentStore struct {
	db *sql.DB
}

func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

func scanComment(row scanner) (*model.Comment, error) {
	var c model.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const commentCols = `id, post_id, author_id, content, created_at, updated_at`

func (s *CommentStore) Create(postID, authorID int64, content string) (*model.Comment, error) {
	result, err := s.db.Exec(
		`INSERT INTO comments (post_id, author_id, content) VALUES (?, ?, ?)`,
		postID, authorID, content,
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CommentStore) GetByID(id int64) (*model.Comment, error) {
	return s.get(`SELECT `+commentCols+` FROM comments WHERE id = ?`, id)
}

// GetOwned returns the comment only when authorID wrote it.
func (s *CommentStore) GetOwned(id, authorID int64) (*model.Comment, error) {
	return s.get(`SELECT `+commentCols+` FROM comments WHERE id = ? AND author_id = ?`, id, authorID)
}

func (s *CommentStore) get(q string, args ...any) (*model.Comment, error) {
	c, err := scanComment(s.db.QueryRow(q, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

// ListByPost returns a post's comments, newest first.
func (s *CommentStore) ListByPost(postID int64, skip, take int) ([]model.Comment, error) {
	rows, err := s.db.Query(
		`SELECT `+commentCols+` FROM comments WHERE post_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		postID, take, skip,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

func (s *CommentStore) CountByPost(postID int64) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return n, nil
}

// Update rewrites the content of a comment owned by authorID. It returns
// (nil, nil) when no such comment exists.
func (s *CommentStore) Update(id, authorID int64, content string) (*model.Comment, error) {
	result, err := s.db.Exec(
		`UPDATE comments SET content = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND author_id = ?`,
		content, id, authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetByID(id)
}

// Delete removes a comment owned by authorID and reports whether it existed.
func (s *CommentStore) Delete(id, authorID int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM comments WHERE id = ? AND author_id = ?`, id, authorID)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
