package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/inkwell/internal/model"
)

type LikeStore struct {
	db *sql.DB
}

func NewLikeStore(db *sql.DB) *LikeStore {
	return &LikeStore{db: db}
}

func scanLike(row scanner) (*model.Like, error) {
	var l model.Like
	if err := row.Scan(&l.ID, &l.UserID, &l.PostID, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

const likeCols = `id, user_id, post_id, created_at`

// Create records that userID likes postID. A second like by the same user
// returns ErrDuplicate.
func (s *LikeStore) Create(userID, postID int64) (*model.Like, error) {
	result, err := s.db.Exec(`INSERT INTO likes (user_id, post_id) VALUES (?, ?)`, userID, postID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("insert like: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	l, err := scanLike(s.db.QueryRow(`SELECT `+likeCols+` FROM likes WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get like: %w", err)
	}
	return l, nil
}

// Delete removes the like and reports whether one existed.
func (s *LikeStore) Delete(userID, postID int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM likes WHERE user_id = ? AND post_id = ?`, userID, postID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *LikeStore) CountByPost(postID int64) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}

func (s *LikeStore) Exists(userID, postID int64) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM likes WHERE user_id = ? AND post_id = ?`, userID, postID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}
	return n > 0, nil
}

func (s *LikeStore) ListByPost(postID int64) ([]model.Like, error) {
	rows, err := s.db.Query(
		`SELECT `+likeCols+` FROM likes WHERE post_id = ? ORDER BY created_at DESC, id DESC`, postID,
	)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	defer rows.Close()

	var likes []model.Like
	for rows.Next() {
		l, err := scanLike(rows)
		if err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		likes = append(likes, *l)
	}
	return likes, rows.Err()
}
