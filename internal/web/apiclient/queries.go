package apiclient

import (
	"context"
)

const postCardFields = `id authorId title slug thumbnail content published createdAt updatedAt
	author { id name avatar } tags { id name } likesCount commentsCount`

func (c *Client) Posts(ctx context.Context, skip, take int) (*PostPage, error) {
	const q = `query posts($skip: Int, $take: Int) {
		posts(skip: $skip, take: $take) { ` + postCardFields + ` }
		postsCount
	}`
	var data struct {
		Posts      []Post `json:"posts"`
		PostsCount int    `json:"postsCount"`
	}
	if err := c.do(ctx, "", q, map[string]any{"skip": skip, "take": take}, &data); err != nil {
		return nil, err
	}
	return &PostPage{Posts: data.Posts, Total: data.PostsCount}, nil
}

func (c *Client) PostBySlug(ctx context.Context, slug string) (*Post, error) {
	const q = `query getPostBySlug($slug: String!) {
		getPostBySlug(slug: $slug) { ` + postCardFields + ` }
	}`
	var data struct {
		Post *Post `json:"getPostBySlug"`
	}
	if err := c.do(ctx, "", q, map[string]any{"slug": slug}, &data); err != nil {
		return nil, err
	}
	if data.Post == nil {
		return nil, &Error{Message: "Post not found", Code: CodeNotFound}
	}
	return data.Post, nil
}

func (c *Client) PostByID(ctx context.Context, id int64) (*Post, error) {
	const q = `query getPostById($id: Int!) {
		getPostById(id: $id) { ` + postCardFields + ` }
	}`
	var data struct {
		Post *Post `json:"getPostById"`
	}
	if err := c.do(ctx, "", q, map[string]any{"id": id}, &data); err != nil {
		return nil, err
	}
	if data.Post == nil {
		return nil, &Error{Message: "Post not found", Code: CodeNotFound}
	}
	return data.Post, nil
}

func (c *Client) UserPosts(ctx context.Context, token string, skip, take int) (*PostPage, error) {
	const q = `query getUserPosts($skip: Int, $take: Int) {
		getUserPosts(skip: $skip, take: $take) { ` + postCardFields + ` }
		userPostCount
	}`
	var data struct {
		Posts []Post `json:"getUserPosts"`
		Count int    `json:"userPostCount"`
	}
	if err := c.do(ctx, token, q, map[string]any{"skip": skip, "take": take}, &data); err != nil {
		return nil, err
	}
	return &PostPage{Posts: data.Posts, Total: data.Count}, nil
}

func (c *Client) CreatePost(ctx context.Context, token string, in PostInput) (*Post, error) {
	const q = `mutation createPost($input: CreatePostInput!) {
		createPost(createPostInput: $input) { id slug title }
	}`
	var data struct {
		Post Post `json:"createPost"`
	}
	if err := c.do(ctx, token, q, map[string]any{"input": in}, &data); err != nil {
		return nil, err
	}
	return &data.Post, nil
}

func (c *Client) UpdatePost(ctx context.Context, token string, id int64, in PostInput) (*Post, error) {
	const q = `mutation updatePost($input: UpdatePostInput!) {
		updatePost(updatePostInput: $input) { id slug title }
	}`
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	vars := map[string]any{"input": map[string]any{
		"postId":    id,
		"title":     in.Title,
		"content":   in.Content,
		"thumbnail": in.Thumbnail,
		"published": in.Published,
		"tags":      tags,
	}}
	var data struct {
		Post Post `json:"updatePost"`
	}
	if err := c.do(ctx, token, q, vars, &data); err != nil {
		return nil, err
	}
	return &data.Post, nil
}

func (c *Client) RemovePost(ctx context.Context, token string, id int64) error {
	const q = `mutation removePost($id: Int!) { removePost(postId: $id) }`
	return c.do(ctx, token, q, map[string]any{"id": id}, nil)
}

func (c *Client) PostComments(ctx context.Context, postID int64, skip, take int) ([]Comment, int, error) {
	const q = `query comments($postId: Int!, $skip: Int, $take: Int) {
		getPostComments(postId: $postId, skip: $skip, take: $take) {
			id content createdAt author { id name avatar }
		}
		postCommentCount(postId: $postId)
	}`
	var data struct {
		Comments []Comment `json:"getPostComments"`
		Count    int       `json:"postCommentCount"`
	}
	vars := map[string]any{"postId": postID, "skip": skip, "take": take}
	if err := c.do(ctx, "", q, vars, &data); err != nil {
		return nil, 0, err
	}
	return data.Comments, data.Count, nil
}

func (c *Client) CreateComment(ctx context.Context, token string, postID int64, content string) error {
	const q = `mutation createComment($input: CreateCommentInput!) {
		createComment(createCommentInput: $input) { id }
	}`
	vars := map[string]any{"input": map[string]any{"postId": postID, "content": content}}
	return c.do(ctx, token, q, vars, nil)
}

// Likes returns the post's like count and, when token is set, whether the
// caller has liked it.
func (c *Client) Likes(ctx context.Context, token string, postID int64) (int, bool, error) {
	vars := map[string]any{"postId": postID}
	if token == "" {
		var data struct {
			Count int `json:"getPostLikesCount"`
		}
		err := c.do(ctx, "", `query likes($postId: Int!) { getPostLikesCount(postId: $postId) }`, vars, &data)
		return data.Count, false, err
	}

	const q = `query likes($postId: Int!) {
		getPostLikesCount(postId: $postId)
		getUserLikedPost(postId: $postId)
	}`
	var data struct {
		Count int  `json:"getPostLikesCount"`
		Liked bool `json:"getUserLikedPost"`
	}
	err := c.do(ctx, token, q, vars, &data)
	return data.Count, data.Liked, err
}

func (c *Client) LikePost(ctx context.Context, token string, postID int64) error {
	return c.do(ctx, token, `mutation like($postId: Int!) { likePost(postId: $postId) }`,
		map[string]any{"postId": postID}, nil)
}

func (c *Client) UnlikePost(ctx context.Context, token string, postID int64) error {
	return c.do(ctx, token, `mutation unlike($postId: Int!) { unlikePost(postId: $postId) }`,
		map[string]any{"postId": postID}, nil)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*AuthPayload, error) {
	const q = `mutation signIn($input: SignInInput!) {
		signIn(signInInput: $input) { id name email avatar accessToken }
	}`
	vars := map[string]any{"input": map[string]any{"email": email, "password": password}}
	var data struct {
		Payload AuthPayload `json:"signIn"`
	}
	if err := c.do(ctx, "", q, vars, &data); err != nil {
		return nil, err
	}
	return &data.Payload, nil
}

func (c *Client) SignUp(ctx context.Context, in SignUpInput) error {
	const q = `mutation createUser($input: CreateUserInput!) {
		createUser(createUserInput: $input) { id }
	}`
	return c.do(ctx, "", q, map[string]any{"input": in}, nil)
}

func (c *Client) CurrentUser(ctx context.Context, token string) (*User, error) {
	const q = `query { getCurrentUser { id name email bio avatar createdAt } }`
	var data struct {
		User User `json:"getCurrentUser"`
	}
	if err := c.do(ctx, token, q, nil, &data); err != nil {
		return nil, err
	}
	return &data.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token, name, bio string) (*User, error) {
	const q = `mutation updateProfile($input: UpdateProfileInput!) {
		updateProfile(updateProfileInput: $input) { id name email bio avatar createdAt }
	}`
	vars := map[string]any{"input": map[string]any{"name": name, "bio": bio}}
	var data struct {
		User User `json:"updateProfile"`
	}
	if err := c.do(ctx, token, q, vars, &data); err != nil {
		return nil, err
	}
	return &data.User, nil
}
