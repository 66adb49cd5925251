package graph

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/inkwell/internal/apperr"
	"github.com/dukerupert/inkwell/internal/auth"
	"github.com/dukerupert/inkwell/internal/blog"
	"github.com/dukerupert/inkwell/internal/database"
	"github.com/dukerupert/inkwell/internal/middleware"
	"github.com/dukerupert/inkwell/internal/password"
	"github.com/dukerupert/inkwell/internal/token"
)

type gqlError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions"`
}

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []gqlError                 `json:"errors"`
}

func (r gqlResponse) code() string {
	if len(r.Errors) == 0 {
		return ""
	}
	c, _ := r.Errors[0].Extensions["code"].(string)
	return c
}

type fixture struct {
	db      *sql.DB
	handler http.Handler
	issuer  *token.Issuer
	alice   int64
	bob     int64
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := blog.NewService(db, nil, logger)
	issuer, err := token.NewIssuer(token.Config{Secret: []byte("graph-test"), TTL: time.Hour})
	require.NoError(t, err)
	authn := auth.NewService(svc.UserStore(), issuer, logger)

	schema, err := NewSchema(svc, authn, NewRegistry(authn, logger))
	require.NoError(t, err)

	hash, err := password.Hash("password123")
	require.NoError(t, err)
	alice, err := svc.UserStore().Create("test@example.com", "Alice", hash, "", "")
	require.NoError(t, err)
	bob, err := svc.UserStore().Create("bob@example.com", "Bob", hash, "", "")
	require.NoError(t, err)

	return &fixture{
		db:      db,
		handler: middleware.Authorization(NewHandler(schema, logger)),
		issuer:  issuer,
		alice:   alice.ID,
		bob:     bob.ID,
	}
}

func (f *fixture) token(t *testing.T, userID int64) string {
	t.Helper()
	raw, _, err := f.issuer.Issue(userID)
	require.NoError(t, err)
	return raw
}

func (f *fixture) do(t *testing.T, tok, query string, vars map[string]any) gqlResponse {
	t.Helper()
	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

const signIn = `mutation($in: SignInInput!) {
	signIn(signInInput: $in) { id name email accessToken }
}`

const createPost = `mutation($in: CreatePostInput!) {
	createPost(createPostInput: $in) { id slug published author { name } tags { name } }
}`

func TestSignIn(t *testing.T) {
	f := setup(t)

	resp := f.do(t, "", signIn, map[string]any{
		"in": map[string]any{"email": "test@example.com", "password": "password123"},
	})
	require.Empty(t, resp.Errors)

	var payload struct {
		ID          int64  `json:"id"`
		Email       string `json:"email"`
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(resp.Data["signIn"], &payload))
	assert.Equal(t, "test@example.com", payload.Email)
	require.NotEmpty(t, payload.AccessToken)

	sub, err := f.issuer.Verify(payload.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, f.alice, sub)
}

func TestSignInWrongPassword(t *testing.T) {
	f := setup(t)

	resp := f.do(t, "", signIn, map[string]any{
		"in": map[string]any{"email": "test@example.com", "password": "wrongpassword"},
	})
	require.NotEmpty(t, resp.Errors)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.code())
	assert.Equal(t, "Invalid credentials", resp.Errors[0].Message)
	assert.NotContains(t, string(resp.Data["signIn"]), "accessToken")
}

func TestAuthenticatedOperationRequiresToken(t *testing.T) {
	f := setup(t)

	resp := f.do(t, "", `{ getCurrentUser { id } }`, nil)
	assert.Equal(t, "UNAUTHENTICATED", resp.code())
	assert.Equal(t, "missing bearer token", resp.Errors[0].Message)

	resp = f.do(t, "not-a-token", `{ getCurrentUser { id } }`, nil)
	assert.Equal(t, "UNAUTHENTICATED", resp.code())

	resp = f.do(t, f.token(t, f.alice), `{ getCurrentUser { id name } }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"id": 1, "name": "Alice"}`, string(resp.Data["getCurrentUser"]))
}

func TestCreatePostAndDuplicateSlug(t *testing.T) {
	f := setup(t)
	tok := f.token(t, f.alice)
	vars := map[string]any{"in": map[string]any{
		"title":     "E2E Test Post",
		"slug":      "e2e-test-post",
		"content":   "Content for the end to end test.",
		"published": true,
		"tags":      []string{"go", "graphql"},
	}}

	resp := f.do(t, tok, createPost, vars)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t,
		`{"id": 1, "slug": "e2e-test-post", "published": true, "author": {"name": "Alice"}, "tags": [{"name": "go"}, {"name": "graphql"}]}`,
		string(resp.Data["createPost"]))

	resp = f.do(t, tok, createPost, vars)
	assert.Equal(t, "CONFLICT", resp.code())
	assert.Equal(t, "A post with this slug already exists", resp.Errors[0].Message)
}

func TestPublicQueries(t *testing.T) {
	f := setup(t)
	tok := f.token(t, f.alice)
	f.do(t, tok, createPost, map[string]any{"in": map[string]any{
		"title": "Hello World", "content": "First!", "published": true, "tags": []string{"intro"},
	}})
	f.do(t, tok, createPost, map[string]any{"in": map[string]any{
		"title": "Secret Draft", "content": "Not yet.",
	}})

	resp := f.do(t, "", `{
		posts(take: 10) { slug likesCount commentsCount }
		postsCount
		getPostBySlug(slug: "hello-world") { title author { email } }
		tags { name posts { slug } }
	}`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `[{"slug": "hello-world", "likesCount": 0, "commentsCount": 0}]`, string(resp.Data["posts"]))
	assert.JSONEq(t, `1`, string(resp.Data["postsCount"]))
	assert.JSONEq(t, `{"title": "Hello World", "author": {"email": "test@example.com"}}`, string(resp.Data["getPostBySlug"]))
	assert.JSONEq(t, `[{"name": "intro", "posts": [{"slug": "hello-world"}]}]`, string(resp.Data["tags"]))

	resp = f.do(t, tok, `{ getUserPosts { slug } userPostCount }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `2`, string(resp.Data["userPostCount"]))

	resp = f.do(t, "", `{ getPostBySlug(slug: "nope") { id } }`, nil)
	assert.Equal(t, "NOT_FOUND", resp.code())
}

func TestOwnershipAndLikes(t *testing.T) {
	f := setup(t)
	alice, bob := f.token(t, f.alice), f.token(t, f.bob)
	f.do(t, alice, createPost, map[string]any{"in": map[string]any{
		"title": "Owned", "content": "Alice's post", "published": true,
	}})

	update := `mutation($in: UpdatePostInput!) { updatePost(updatePostInput: $in) { title } }`
	resp := f.do(t, bob, update, map[string]any{"in": map[string]any{"postId": 1, "title": "Hijacked"}})
	assert.Equal(t, "FORBIDDEN", resp.code())
	resp = f.do(t, bob, update, map[string]any{"in": map[string]any{"postId": 999, "title": "Hijacked"}})
	assert.Equal(t, "FORBIDDEN", resp.code())

	resp = f.do(t, alice, update, map[string]any{"in": map[string]any{"postId": 1, "title": "Renamed"}})
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"title": "Renamed"}`, string(resp.Data["updatePost"]))

	like := `mutation { likePost(postId: 1) }`
	resp = f.do(t, bob, like, nil)
	require.Empty(t, resp.Errors)
	resp = f.do(t, bob, like, nil)
	assert.Equal(t, "CONFLICT", resp.code())

	resp = f.do(t, bob, `{ getUserLikedPost(postId: 1) getPostLikesCount(postId: 1) }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `true`, string(resp.Data["getUserLikedPost"]))
	assert.JSONEq(t, `1`, string(resp.Data["getPostLikesCount"]))

	resp = f.do(t, alice, `mutation { unlikePost(postId: 1) }`, nil)
	assert.Equal(t, "NOT_FOUND", resp.code())
	assert.Equal(t, "Like not found", resp.Errors[0].Message)

	resp = f.do(t, bob, `mutation { removePost(postId: 1) }`, nil)
	assert.Equal(t, "FORBIDDEN", resp.code())
	resp = f.do(t, alice, `mutation { removePost(postId: 1) }`, nil)
	require.Empty(t, resp.Errors)
}

func TestComments(t *testing.T) {
	f := setup(t)
	alice, bob := f.token(t, f.alice), f.token(t, f.bob)
	f.do(t, alice, createPost, map[string]any{"in": map[string]any{
		"title": "Discuss", "content": "Talk here", "published": true,
	}})

	resp := f.do(t, bob, `mutation { createComment(createCommentInput: {postId: 1, content: "hi"}) { id author { name } post { slug } } }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"id": 1, "author": {"name": "Bob"}, "post": {"slug": "discuss"}}`, string(resp.Data["createComment"]))

	resp = f.do(t, alice, `mutation { updateComment(updateCommentInput: {id: 1, content: "edited"}) { content } }`, nil)
	assert.Equal(t, "FORBIDDEN", resp.code())

	resp = f.do(t, "", `{ getPostComments(postId: 1) { content } postCommentCount(postId: 1) }`, nil)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `[{"content": "hi"}]`, string(resp.Data["getPostComments"]))
	assert.JSONEq(t, `1`, string(resp.Data["postCommentCount"]))

	resp = f.do(t, bob, `mutation { removeComment(id: 1) { id } }`, nil)
	require.Empty(t, resp.Errors)
}

func TestOutOfRangeIDIsBadInput(t *testing.T) {
	f := setup(t)
	tok := f.token(t, f.alice)

	resp := f.do(t, "", `{ getPostById(id: 3000000000) { id } }`, nil)
	require.NotEmpty(t, resp.Errors)
	assert.Equal(t, "BAD_USER_INPUT", resp.code())
	assert.Equal(t, "invalid value for id", resp.Errors[0].Message)

	resp = f.do(t, tok, `mutation { likePost(postId: 3000000000) }`, nil)
	assert.Equal(t, "BAD_USER_INPUT", resp.code())

	resp = f.do(t, tok, `mutation {
		createComment(createCommentInput: {postId: 3000000000, content: "hi"}) { id }
	}`, nil)
	require.NotEmpty(t, resp.Errors)
	assert.Equal(t, "BAD_USER_INPUT", resp.code())
	assert.Equal(t, "invalid value for createCommentInput.postId", resp.Errors[0].Message)

	resp = f.do(t, "", `{ posts(take: -3000000000) { id } }`, nil)
	assert.Equal(t, "BAD_USER_INPUT", resp.code())

	resp = f.do(t, "", `{ getPostById(id: 999) { id } }`, nil)
	assert.Equal(t, "NOT_FOUND", resp.code(), "in-range ids still reach the resolver")
}

func TestCheckArgs(t *testing.T) {
	in := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CheckInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"postId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
			"note":   &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})
	defs := graphql.FieldConfigArgument{
		"id":    required(graphql.Int),
		"take":  &graphql.ArgumentConfig{Type: graphql.Int},
		"input": &graphql.ArgumentConfig{Type: in},
	}

	assert.NoError(t, checkArgs(defs, map[string]any{"id": 7}))
	assert.NoError(t, checkArgs(defs, map[string]any{"id": 7, "input": map[string]any{"postId": 1}}))

	for name, args := range map[string]map[string]any{
		"missing id":        {},
		"null id":           {"id": nil},
		"id too large":      {"id": 3000000000},
		"take too small":    {"id": 1, "take": -3000000000},
		"null nested id":    {"id": 1, "input": map[string]any{"postId": nil}},
		"missing nested id": {"id": 1, "input": map[string]any{"note": "x"}},
	} {
		err := checkArgs(defs, args)
		require.Error(t, err, name)
		assert.Equal(t, "BAD_USER_INPUT", apperr.KindOf(err).Code(), name)
	}
}

func TestInternalErrorsAreMasked(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.db.Close())

	resp := f.do(t, "", `{ posts { id } }`, nil)
	require.NotEmpty(t, resp.Errors)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", resp.code())
	assert.Equal(t, "Internal server error", resp.Errors[0].Message)
}

func TestHandlerGet(t *testing.T) {
	f := setup(t)

	q := url.Values{"query": {`{ postsCount }`}}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data": {"postsCount": 0}}`, rec.Body.String())

	q = url.Values{"query": {`mutation { likePost(postId: 1) }`}}
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandlerBadRequests(t *testing.T) {
	f := setup(t)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewBufferString(`{"query": ""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/graphql", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	r := NewRegistry(nil, slog.Default())
	op := Operation{Name: "ping", Type: graphql.String, Resolve: func(graphql.ResolveParams) (any, error) { return "pong", nil }}
	r.Register(op)
	assert.Panics(t, func() { r.Register(op) })
}

func TestOperationTable(t *testing.T) {
	f := setup(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRegistry(nil, logger)
	_, err := NewSchema(blog.NewService(f.db, nil, logger), nil, r)
	require.NoError(t, err)

	authenticated := map[string]bool{}
	for _, op := range r.Operations() {
		if op.Policy == Authenticated {
			authenticated[op.Name] = true
		}
	}
	for _, name := range []string{
		"getUserPosts", "userPostCount", "getUserLikedPost", "getCurrentUser",
		"updateProfile", "createPost", "updatePost", "removePost",
		"createComment", "updateComment", "removeComment",
		"likePost", "unlikePost", "createTag",
	} {
		assert.True(t, authenticated[name], name)
	}
	assert.Len(t, authenticated, 14)
}
