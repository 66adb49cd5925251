package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/dukerupert/inkwell/internal/auth"
	"github.com/dukerupert/inkwell/internal/blog"
	"github.com/dukerupert/inkwell/internal/model"
)

func nonNull(t graphql.Type) graphql.Output {
	return graphql.NewNonNull(t)
}

func listOf(t graphql.Type) graphql.Output {
	return graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t)))
}

func required(t graphql.Input) *graphql.ArgumentConfig {
	return &graphql.ArgumentConfig{Type: graphql.NewNonNull(t)}
}

// NewSchema registers every blog operation and builds the schema.
func NewSchema(svc *blog.Service, authn *auth.Service, r *Registry) (graphql.Schema, error) {
	t := newTypes(r, svc)
	registerPosts(r, t, svc)
	registerComments(r, t, svc)
	registerLikes(r, svc)
	registerUsers(r, t, svc, authn)
	registerTags(r, t, svc)
	return r.Schema()
}

func registerPosts(r *Registry, t *types, svc *blog.Service) {
	createPostInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreatePostInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"title":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"slug":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"thumbnail": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"content":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"published": &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
			"tags":      &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
		},
	})
	updatePostInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdatePostInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"postId":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
			"title":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"slug":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"thumbnail": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"content":   &graphql.InputObjectFieldConfig{Type: graphql.String},
			"published": &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
			"tags":      &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
		},
	})

	r.Register(Operation{
		Name:        "posts",
		Type:        listOf(t.post),
		Args:        pageArgs(),
		Description: "Published posts, newest first.",
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.Posts(intArg(p.Args, "skip"), intArg(p.Args, "take"))
		},
	})
	r.Register(Operation{
		Name: "postsCount",
		Type: nonNull(graphql.Int),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.PostsCount()
		},
	})
	r.Register(Operation{
		Name: "getPostBySlug",
		Type: t.post,
		Args: graphql.FieldConfigArgument{"slug": required(graphql.String)},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.PostBySlug(stringArg(p.Args, "slug"))
		},
	})
	r.Register(Operation{
		Name: "getPostById",
		Type: t.post,
		Args: graphql.FieldConfigArgument{"id": required(graphql.Int)},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.PostByID(idArg(p.Args, "id"))
		},
	})
	r.Register(Operation{
		Name: "getPostsByTag",
		Type: listOf(t.post),
		Args: graphql.FieldConfigArgument{
			"tagId": required(graphql.Int),
			"skip":  &graphql.ArgumentConfig{Type: graphql.Int},
			"take":  &graphql.ArgumentConfig{Type: graphql.Int},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.PostsByTag(idArg(p.Args, "tagId"), intArg(p.Args, "skip"), intArg(p.Args, "take"))
		},
	})
	r.Register(Operation{
		Name:        "getUserPosts",
		Type:        listOf(t.post),
		Args:        pageArgs(),
		Description: "The caller's posts, drafts included.",
		Policy:      Authenticated,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.UserPosts(auth.UserID(p.Context), intArg(p.Args, "skip"), intArg(p.Args, "take"))
		},
	})
	r.Register(Operation{
		Name:   "userPostCount",
		Type:   nonNull(graphql.Int),
		Policy: Authenticated,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.UserPostCount(auth.UserID(p.Context))
		},
	})

	r.Register(Operation{
		Name:   "createPost",
		Kind:   Mutation,
		Type:   nonNull(t.post),
		Args:   graphql.FieldConfigArgument{"createPostInput": required(createPostInput)},
		Policy: Authenticated,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			in := input(p.Args, "createPostInput")
			published := optBool(in, "published")
			return svc.CreatePost(auth.UserID(p.Context), model.CreatePostInput{
				Title:     stringArg(in, "title"),
				Slug:      stringArg(in, "slug"),
				Thumbnail: stringArg(in, "thumbnail"),
				Content:   stringArg(in, "content"),
				Published: published != nil && *published,
				Tags:      stringList(in, "tags"),
			})
		},
	})
	r.Register(Operation{
		Name:   "updatePost",
		Kind:   Mutation,
		Type:   nonNull(t.post),
		Args:   graphql.FieldConfigArgument{"updatePostInput": required(updatePostInput)},
		Policy: Authenticated,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			in := input(p.Args, "updatePostInput")
			return svc.UpdatePost(auth.UserID(p.Context), model.UpdatePostInput{
				ID:        idArg(in, "postId"),
				Title:     optString(in, "title"),
				Slug:      optString(in, "slug"),
				Thumbnail: optString(in, "thumbnail"),
				Content:   optString(in, "content"),
				Published: optBool(in, "published"),
				Tags:      stringList(in, "tags"),
			})
		},
	})
	r.Register(Operation{
		Name:   "removePost",
		Kind:   Mutation,
		Type:   nonNull(graphql.Boolean),
		Args:   graphql.FieldConfigArgument{"postId": required(graphql.Int)},
		Policy: Authenticated,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.RemovePost(auth.UserID(p.Context), idArg(p.Args, "postId"))
		},
	})
}

func registerComments(r *Registry, t *types, svc *blog.Service) {
	createCommentInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateCommentInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"postId":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
			"content": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})
	updateCommentInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateCommentInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
			"content": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	r.Register(Operation{
		Name: "getPostComments",
		Type: listOf(t.comment),
		Args: graphql.FieldConfigArgument{
			"postId": required(graphql.Int),
			"take":   &graphql.ArgumentConfig{Type: graphql.Int},
			"skip":   &graphql.ArgumentConfig{Type: graphql.Int},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.PostComments(idArg(p.Args, "postId"), intArg(p.Args, "skip"), intArg(p.Args, "take"))
		},
	})
	r.Register(Operation{
		Name: "postCommentCount",
		Type: nonNull(graphql.Int),
		Args: graphql.FieldConfigArgument{"postId": required(graphql.Int)},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.CommentCount(idArg(p.Args, "postId"))
		},
	})
	r.Register(Operation{
		Name: "comment",
		Type: t.comment,
		Args: graphql.FieldConfigArgument{"id": required(graphql.Int)},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.Comment(idArg(p.Args, "id"))
		},
	})

	r.Register(Operation{
		Name:   "createComment",
		Kind:   Mutation,
		Type:   nonNull(t.comment),
		Args:   graphql.FieldConfigArgument{"createCommentInput": required(createCommentInput)},
		Policy: Authenticated,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			in := input(p.Args, "createCommentInput")
			return svc.CreateComment(auth.UserID(p.Context), model.CreateCommentInput{
				PostID:  idArg(in, "postId"),
				Content: stringArg(in, "content"),
			})
		},
	})
	r.Register(Operation{
		Name:   "updateComment",
		Kind:   Mutation,
		Type:   nonNull(t.comment),
		Args:   graphql.FieldConfigArgument{"updateCommentInput": required(updateCommentInput)},
		Policy: Authenticated,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			in := input(p.Args, "updateCommentInput")
			return svc.UpdateComment(auth.UserID(p.Context), model.UpdateCommentInput{
				ID:      idArg(in, "id"),
				Content: stringArg(in, "content"),
			})
		},
	})
	r.Register(Operation{
		Name:   "removeComment",
		Kind:   Mutation,
		Type:   nonNull(t.comment),
		Args:   graphql.FieldConfigArgument{"id": required(graphql.Int)},
		Policy: Authenticated,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.RemoveComment(auth.UserID(p.Context), idArg(p.Args, "id"))
		},
	})
}

func registerLikes(r *Registry, svc *blog.Service) {
	postID := graphql.FieldConfigArgument{"postId": required(graphql.Int)}

	r.Register(Operation{
		Name: "getPostLikesCount",
		Type: nonNull(graphql.Int),
		Args: postID,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.LikeCount(idArg(p.Args, "postId"))
		},
	})
	r.Register(Operation{
		Name:   "getUserLikedPost",
		Type:   nonNull(graphql.Boolean),
		Args:   postID,
		Policy: Authenticated,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.HasLiked(auth.UserID(p.Context), idArg(p.Args, "postId"))
		},
	})
	r.Register(Operation{
		Name:   "likePost",
		Kind:   Mutation,
		Type:   nonNull(graphql.Boolean),
		Args:   postID,
		Policy: Authenticated,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.LikePost(auth.UserID(p.Context), idArg(p.Args, "postId"))
		},
	})
	r.Register(Operation{
		Name:   "unlikePost",
		Kind:   Mutation,
		Type:   nonNull(graphql.Boolean),
		Args:   postID,
		Policy: Authenticated,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.UnlikePost(auth.UserID(p.Context), idArg(p.Args, "postId"))
		},
	})
}

func registerUsers(r *Registry, t *types, svc *blog.Service, authn *auth.Service) {
	signInInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "SignInInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})
	createUserInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateUserInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"bio":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"avatar":   &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})
	updateProfileInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateProfileInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"bio":  &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	r.Register(Operation{
		Name: "users",
		Type: listOf(t.user),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.Users()
		},
	})
	r.Register(Operation{
		Name: "user",
		Type: t.user,
		Args: graphql.FieldConfigArgument{"id": required(graphql.Int)},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.User(idArg(p.Args, "id"))
		},
	})
	r.Register(Operation{
		Name: "userByEmail",
		Type: t.user,
		Args: graphql.FieldConfigArgument{"email": required(graphql.String)},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.UserByEmail(stringArg(p.Args, "email"))
		},
	})
	r.Register(Operation{
		Name:   "getCurrentUser",
		Type:   nonNull(t.user),
		Policy: Authenticated,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.User(auth.UserID(p.Context))
		},
	})

	r.Register(Operation{
		Name:        "signIn",
		Kind:        Mutation,
		Type:        nonNull(t.authPayload),
		Args:        graphql.FieldConfigArgument{"signInInput": required(signInInput)},
		Description: "Exchange email and password for an access token.",
		Resolve: func(p graphql.ResolveParams) (any, error) {
			in := input(p.Args, "signInInput")
			return authn.Authenticate(stringArg(in, "email"), stringArg(in, "password"))
		},
	})
	r.Register(Operation{
		Name: "createUser",
		Kind: Mutation,
		Type: nonNull(t.user),
		Args: graphql.FieldConfigArgument{"createUserInput": required(createUserInput)},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			in := input(p.Args, "createUserInput")
			return svc.CreateUser(model.CreateUserInput{
				Name:     stringArg(in, "name"),
				Email:    stringArg(in, "email"),
				Password: stringArg(in, "password"),
				Bio:      stringArg(in, "bio"),
				Avatar:   stringArg(in, "avatar"),
			})
		},
	})
	r.Register(Operation{
		Name:   "updateProfile",
		Kind:   Mutation,
		Type:   nonNull(t.user),
		Args:   graphql.FieldConfigArgument{"updateProfileInput": required(updateProfileInput)},
		Policy: Authenticated,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			in := input(p.Args, "updateProfileInput")
			return svc.UpdateProfile(auth.UserID(p.Context), model.UpdateProfileInput{
				Name: optString(in, "name"),
				Bio:  optString(in, "bio"),
			})
		},
	})
}

func registerTags(r *Registry, t *types, svc *blog.Service) {
	createTagInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateTagInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	r.Register(Operation{
		Name: "tags",
		Type: listOf(t.tag),
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.Tags()
		},
	})
	r.Register(Operation{
		Name: "tag",
		Type: t.tag,
		Args: graphql.FieldConfigArgument{"id": required(graphql.Int)},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.Tag(idArg(p.Args, "id"))
		},
	})
	r.Register(Operation{
		Name:   "createTag",
		Kind:   Mutation,
		Type:   nonNull(t.tag),
		Args:   graphql.FieldConfigArgument{"createTagInput": required(createTagInput)},
		Policy: Authenticated,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return svc.CreateTag(stringArg(input(p.Args, "createTagInput"), "name"))
		},
	})
}
