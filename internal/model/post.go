package model

import "time"

type Post struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Thumbnail string    `json:"thumbnail"`
	Content   string    `json:"content"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreatePostInput struct {
	Title     string
	Slug      string
	Thumbnail string
	Content   string
	Published bool
	Tags      []string
}

// UpdatePostInput leaves a field untouched when its pointer is nil.
// A nil Tags slice keeps the current tags; an empty one clears them.
type UpdatePostInput struct {
	ID        int64
	Title     *string
	Slug      *string
	Thumbnail *string
	Content   *string
	Published *bool
	Tags      []string
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
