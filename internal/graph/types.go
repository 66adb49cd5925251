package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/dukerupert/inkwell/internal/blog"
	"github.com/dukerupert/inkwell/internal/model"
)

// types holds the object types shared by the operations.
type types struct {
	user        *graphql.Object
	post        *graphql.Object
	tag         *graphql.Object
	comment     *graphql.Object
	like        *graphql.Object
	authPayload *graphql.Object
}

func newTypes(r *Registry, svc *blog.Service) *types {
	t := &types{}

	t.user = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"email":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"bio":       &graphql.Field{Type: graphql.String},
				"avatar":    &graphql.Field{Type: graphql.String},
				"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
				"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
			}
		}),
	})

	t.tag = graphql.NewObject(graphql.ObjectConfig{
		Name: "Tag",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"posts": &graphql.Field{
					Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t.post))),
					Args: pageArgs(),
					Resolve: r.field("Tag.posts", func(p graphql.ResolveParams) (any, error) {
						return svc.PostsByTag(tagSource(p.Source).ID, intArg(p.Args, "skip"), intArg(p.Args, "take"))
					}),
				},
			}
		}),
	})

	t.post = graphql.NewObject(graphql.ObjectConfig{
		Name: "Post",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"authorId":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"title":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"slug":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"thumbnail": &graphql.Field{Type: graphql.String},
				"content":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"published": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
				"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
				"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
				"author": &graphql.Field{
					Type: graphql.NewNonNull(t.user),
					Resolve: r.field("Post.author", func(p graphql.ResolveParams) (any, error) {
						return svc.User(postSource(p.Source).AuthorID)
					}),
				},
				"tags": &graphql.Field{
					Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t.tag))),
					Resolve: r.field("Post.tags", func(p graphql.ResolveParams) (any, error) {
						return svc.TagsForPost(postSource(p.Source).ID)
					}),
				},
				"comments": &graphql.Field{
					Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t.comment))),
					Args: pageArgs(),
					Resolve: r.field("Post.comments", func(p graphql.ResolveParams) (any, error) {
						return svc.PostComments(postSource(p.Source).ID, intArg(p.Args, "skip"), intArg(p.Args, "take"))
					}),
				},
				"likes": &graphql.Field{
					Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t.like))),
					Resolve: r.field("Post.likes", func(p graphql.ResolveParams) (any, error) {
						return svc.PostLikes(postSource(p.Source).ID)
					}),
				},
				"commentsCount": &graphql.Field{
					Type: graphql.NewNonNull(graphql.Int),
					Resolve: r.field("Post.commentsCount", func(p graphql.ResolveParams) (any, error) {
						return svc.CommentCount(postSource(p.Source).ID)
					}),
				},
				"likesCount": &graphql.Field{
					Type: graphql.NewNonNull(graphql.Int),
					Resolve: r.field("Post.likesCount", func(p graphql.ResolveParams) (any, error) {
						return svc.LikeCount(postSource(p.Source).ID)
					}),
				},
			}
		}),
	})

	t.comment = graphql.NewObject(graphql.ObjectConfig{
		Name: "Comment",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"postId":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"authorId":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"content":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
				"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
				"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
				"author": &graphql.Field{
					Type: graphql.NewNonNull(t.user),
					Resolve: r.field("Comment.author", func(p graphql.ResolveParams) (any, error) {
						return svc.User(commentSource(p.Source).AuthorID)
					}),
				},
				"post": &graphql.Field{
					Type: graphql.NewNonNull(t.post),
					Resolve: r.field("Comment.post", func(p graphql.ResolveParams) (any, error) {
						return svc.PostByID(commentSource(p.Source).PostID)
					}),
				},
			}
		}),
	})

	t.like = graphql.NewObject(graphql.ObjectConfig{
		Name: "Like",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"userId":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"postId":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
				"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
				"user": &graphql.Field{
					Type: graphql.NewNonNull(t.user),
					Resolve: r.field("Like.user", func(p graphql.ResolveParams) (any, error) {
						return svc.User(likeSource(p.Source).UserID)
					}),
				},
			}
		}),
	})

	t.authPayload = graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthPayload",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"email":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"avatar":      &graphql.Field{Type: graphql.String},
			"accessToken": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	return t
}

// field wraps a nested resolver so its errors reach the client the same way
// root operation errors do.
func (r *Registry) field(name string, fn graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		v, err := fn(p)
		if err != nil {
			return nil, r.clientError(p.Context, name, err)
		}
		return v, nil
	}
}

// Sources arrive as values from lists and as pointers from single lookups.

func postSource(src any) model.Post {
	switch v := src.(type) {
	case *model.Post:
		return *v
	case model.Post:
		return v
	}
	return model.Post{}
}

func userSource(src any) model.User {
	switch v := src.(type) {
	case *model.User:
		return *v
	case model.User:
		return v
	}
	return model.User{}
}

func tagSource(src any) model.Tag {
	switch v := src.(type) {
	case *model.Tag:
		return *v
	case model.Tag:
		return v
	}
	return model.Tag{}
}

func commentSource(src any) model.Comment {
	switch v := src.(type) {
	case *model.Comment:
		return *v
	case model.Comment:
		return v
	}
	return model.Comment{}
}

func likeSource(src any) model.Like {
	switch v := src.(type) {
	case *model.Like:
		return *v
	case model.Like:
		return v
	}
	return model.Like{}
}
