package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dukerupert/inkwell/internal/web/apiclient"
	"github.com/dukerupert/inkwell/internal/web/view"
)

const commentsPerPage = 5

// Home lists published posts, newest first.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	skip, take := view.SkipTake(page, view.DefaultPageSize)

	posts, err := h.api.Posts(r.Context(), skip, take)
	if err != nil {
		h.fail(w, r, "list posts", err)
		return
	}

	d := h.data(r)
	d["Posts"] = posts.Posts
	d["Pager"] = view.NewPager(page, view.TotalPages(posts.Total, take))
	h.render(w, http.StatusOK, "home.html", d)
}

// Post shows one post with its likes and a page of comments.
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	h.renderPost(w, r, http.StatusOK, nil)
}

func (h *Handler) renderPost(w http.ResponseWriter, r *http.Request, status int, extra map[string]any) {
	ctx := r.Context()
	post, err := h.api.PostBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, "get post", err)
		return
	}
	user := currentUser(r)
	if !post.Published && (user == nil || user.ID != post.AuthorID) {
		h.notFound(w, r)
		return
	}

	page := pageParam(r)
	skip, take := view.SkipTake(page, commentsPerPage)
	comments, total, err := h.api.PostComments(ctx, post.ID, skip, take)
	if err != nil {
		h.fail(w, r, "list comments", err)
		return
	}
	likes, liked, err := h.api.Likes(ctx, token(r), post.ID)
	if err != nil {
		h.fail(w, r, "get likes", err)
		return
	}

	d := h.data(r)
	d["Post"] = post
	d["Comments"] = comments
	d["CommentCount"] = total
	d["Pager"] = view.NewPager(page, view.TotalPages(total, take))
	d["Likes"] = likes
	d["Liked"] = liked
	for k, v := range extra {
		d[k] = v
	}
	h.render(w, status, "post.html", d)
}

func postURL(slug string) string {
	return "/blog/" + url.PathEscape(slug)
}

// Like records the caller's like. Liking twice is not an error here.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, true)
}

func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, false)
}

func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request, like bool) {
	slug := chi.URLParam(r, "slug")
	postID, err := parseID(r.PostFormValue("postId"))
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}

	if like {
		err = h.api.LikePost(r.Context(), token(r), postID)
		if apiclient.CodeOf(err) == apiclient.CodeConflict {
			err = nil
		}
	} else {
		err = h.api.UnlikePost(r.Context(), token(r), postID)
		if apiclient.CodeOf(err) == apiclient.CodeNotFound {
			err = nil
		}
	}
	if err != nil {
		h.fail(w, r, "toggle like", err)
		return
	}
	http.Redirect(w, r, postURL(slug), http.StatusSeeOther)
}

// Comment adds a comment and returns to the post.
func (h *Handler) Comment(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	postID, err := parseID(r.PostFormValue("postId"))
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return
	}

	content, problem := parseComment(r)
	if problem != "" {
		h.renderPost(w, r, http.StatusUnprocessableEntity, map[string]any{"CommentError": problem, "CommentDraft": content})
		return
	}

	if err := h.api.CreateComment(r.Context(), token(r), postID, content); err != nil {
		if apiclient.CodeOf(err) == apiclient.CodeBadInput {
			h.renderPost(w, r, http.StatusUnprocessableEntity, map[string]any{"CommentError": apiclient.Message(err, ""), "CommentDraft": content})
			return
		}
		h.fail(w, r, "create comment", err)
		return
	}
	http.Redirect(w, r, postURL(slug)+"#comments", http.StatusSeeOther)
}
