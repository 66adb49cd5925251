package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dukerupert/inkwell/internal/web/apiclient"
	"github.com/dukerupert/inkwell/internal/web/session"
	"github.com/dukerupert/inkwell/internal/web/view"
)

// UserPosts lists the signed-in user's posts, drafts included.
func (h *Handler) UserPosts(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	skip, take := view.SkipTake(page, view.DefaultPageSize)

	posts, err := h.api.UserPosts(r.Context(), token(r), skip, take)
	if err != nil {
		h.fail(w, r, "list user posts", err)
		return
	}

	d := h.data(r)
	d["Posts"] = posts.Posts
	d["Total"] = posts.Total
	d["Pager"] = view.NewPager(page, view.TotalPages(posts.Total, take))
	h.render(w, http.StatusOK, "user_posts.html", d)
}

func (h *Handler) renderPostForm(w http.ResponseWriter, r *http.Request, status int, heading, action string, form postForm, errs fieldErrors, msg string) {
	d := h.data(r)
	d["Heading"] = heading
	d["Action"] = action
	d["Form"] = form
	d["Errors"] = errs
	d["Error"] = msg
	h.render(w, status, "post_form.html", d)
}

func (h *Handler) NewPostPage(w http.ResponseWriter, r *http.Request) {
	h.renderPostForm(w, r, http.StatusOK, "Create a new post", "/user/create-post", postForm{}, nil, "")
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	form, errs := parsePost(r)
	if len(errs) > 0 {
		h.renderPostForm(w, r, http.StatusUnprocessableEntity, "Create a new post", "/user/create-post", form, errs, "")
		return
	}

	_, err := h.api.CreatePost(r.Context(), token(r), apiclient.PostInput{
		Title:     form.Title,
		Content:   form.Content,
		Thumbnail: form.Thumbnail,
		Published: form.Published,
		Tags:      form.TagList(),
	})
	if err != nil {
		if code := apiclient.CodeOf(err); code == apiclient.CodeConflict || code == apiclient.CodeBadInput {
			h.renderPostForm(w, r, http.StatusUnprocessableEntity, "Create a new post", "/user/create-post", form, nil, apiclient.Message(err, ""))
			return
		}
		h.fail(w, r, "create post", err)
		return
	}
	http.Redirect(w, r, "/user/posts", http.StatusSeeOther)
}

// ownPost loads the post named in the URL and reports whether the caller
// owns it. Anything else renders as not found.
func (h *Handler) ownPost(w http.ResponseWriter, r *http.Request) (*apiclient.Post, bool) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.notFound(w, r)
		return nil, false
	}
	post, err := h.api.PostByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get post", err)
		return nil, false
	}
	if u := currentUser(r); u == nil || u.ID != post.AuthorID {
		h.notFound(w, r)
		return nil, false
	}
	return post, true
}

func editAction(p *apiclient.Post) string {
	return "/user/posts/" + itoa(p.ID) + "/edit"
}

func (h *Handler) EditPostPage(w http.ResponseWriter, r *http.Request) {
	post, ok := h.ownPost(w, r)
	if !ok {
		return
	}
	tags := make([]string, 0, len(post.Tags))
	for _, t := range post.Tags {
		tags = append(tags, t.Name)
	}
	form := postForm{
		Title:     post.Title,
		Content:   post.Content,
		Thumbnail: post.Thumbnail,
		Tags:      strings.Join(tags, ", "),
		Published: post.Published,
	}
	h.renderPostForm(w, r, http.StatusOK, "Edit post", editAction(post), form, nil, "")
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.ownPost(w, r)
	if !ok {
		return
	}
	form, errs := parsePost(r)
	if len(errs) > 0 {
		h.renderPostForm(w, r, http.StatusUnprocessableEntity, "Edit post", editAction(post), form, errs, "")
		return
	}

	_, err := h.api.UpdatePost(r.Context(), token(r), post.ID, apiclient.PostInput{
		Title:     form.Title,
		Content:   form.Content,
		Thumbnail: form.Thumbnail,
		Published: form.Published,
		Tags:      form.TagList(),
	})
	if err != nil {
		if code := apiclient.CodeOf(err); code == apiclient.CodeConflict || code == apiclient.CodeBadInput {
			h.renderPostForm(w, r, http.StatusUnprocessableEntity, "Edit post", editAction(post), form, nil, apiclient.Message(err, ""))
			return
		}
		h.fail(w, r, "update post", err)
		return
	}
	http.Redirect(w, r, "/user/posts", http.StatusSeeOther)
}

func (h *Handler) DeletePostPage(w http.ResponseWriter, r *http.Request) {
	post, ok := h.ownPost(w, r)
	if !ok {
		return
	}
	d := h.data(r)
	d["Post"] = post
	h.render(w, http.StatusOK, "delete_post.html", d)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.notFound(w, r)
		return
	}
	if err := h.api.RemovePost(r.Context(), token(r), id); err != nil {
		h.fail(w, r, "delete post", err)
		return
	}
	http.Redirect(w, r, "/user/posts", http.StatusSeeOther)
}

func (h *Handler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	user, err := h.api.CurrentUser(r.Context(), token(r))
	if err != nil {
		h.fail(w, r, "get profile", err)
		return
	}
	d := h.data(r)
	d["User"] = user
	d["Form"] = profileForm{Name: user.Name, Bio: user.Bio}
	if r.URL.Query().Get("saved") != "" {
		d["Notice"] = "Profile updated."
	}
	h.render(w, http.StatusOK, "profile.html", d)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.api.CurrentUser(ctx, token(r))
	if err != nil {
		h.fail(w, r, "get profile", err)
		return
	}

	form, errs := parseProfile(r)
	if len(errs) > 0 {
		d := h.data(r)
		d["User"] = user
		d["Form"] = form
		d["Errors"] = errs
		h.render(w, http.StatusUnprocessableEntity, "profile.html", d)
		return
	}
	if form.Name == "" {
		form.Name = user.Name
	}

	updated, err := h.api.UpdateProfile(ctx, token(r), form.Name, form.Bio)
	if err != nil {
		h.fail(w, r, "update profile", err)
		return
	}

	s := *session.FromContext(ctx)
	s.User.Name = updated.Name
	s.User.Bio = updated.Bio
	if err := h.sessions.Create(w, s); err != nil {
		h.fail(w, r, "refresh session", err)
		return
	}
	http.Redirect(w, r, "/user/profile?saved=1", http.StatusSeeOther)
}
