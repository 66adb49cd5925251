package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/inkwell/internal/model"
)

type TagStore struct {
	db *sql.DB
}

func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// execQuerier is the part of *sql.DB and *sql.Tx the tag helpers need.
type execQuerier interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// tagID returns the id of the named tag, creating the tag if needed.
func tagID(q execQuerier, name string) (int64, error) {
	if _, err := q.Exec(`INSERT INTO tags (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
		return 0, fmt.Errorf("insert tag: %w", err)
	}
	var id int64
	if err := q.QueryRow(`SELECT id FROM tags WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("select tag: %w", err)
	}
	return id, nil
}

// GetOrCreate returns the tag with the given name, inserting it first if absent.
func (s *TagStore) GetOrCreate(name string) (*model.Tag, error) {
	id, err := tagID(s.db, name)
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *TagStore) GetByID(id int64) (*model.Tag, error) {
	var t model.Tag
	err := s.db.QueryRow(`SELECT id, name FROM tags WHERE id = ?`, id).Scan(&t.ID, &t.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return &t, nil
}

func (s *TagStore) List() ([]model.Tag, error) {
	return s.query(`SELECT id, name FROM tags ORDER BY name`)
}

// ListForPost returns the tags attached to a post, ordered by name.
func (s *TagStore) ListForPost(postID int64) ([]model.Tag, error) {
	return s.query(
		`SELECT t.id, t.name FROM tags t
		 JOIN post_tags pt ON pt.tag_id = t.id
		 WHERE pt.post_id = ?
		 ORDER BY t.name`,
		postID,
	)
}

func (s *TagStore) query(q string, args ...any) ([]model.Tag, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
