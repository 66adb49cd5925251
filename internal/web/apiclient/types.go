package apiclient

import "time"

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Post struct {
	ID            int64     `json:"id"`
	AuthorID      int64     `json:"authorId"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Thumbnail     string    `json:"thumbnail"`
	Content       string    `json:"content"`
	Published     bool      `json:"published"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Author        *User     `json:"author"`
	Tags          []Tag     `json:"tags"`
	LikesCount    int       `json:"likesCount"`
	CommentsCount int       `json:"commentsCount"`
}

// PostPage is one page of posts plus the total they were drawn from.
type PostPage struct {
	Posts []Post
	Total int
}

type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Author    User      `json:"author"`
}

type AuthPayload struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Avatar      string `json:"avatar"`
	AccessToken string `json:"accessToken"`
}

type SignUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PostInput is the editable part of a post. Tags replace the post's current
// tags on update.
type PostInput struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Published bool     `json:"published"`
	Tags      []string `json:"tags"`
}
