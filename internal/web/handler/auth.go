package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/dukerupert/inkwell/internal/web/apiclient"
	"github.com/dukerupert/inkwell/internal/web/session"
)

func (h *Handler) SignInPage(w http.ResponseWriter, r *http.Request) {
	d := h.data(r)
	if msg := r.URL.Query().Get("error"); msg != "" {
		d["Error"] = msg
	}
	if r.URL.Query().Get("registered") != "" {
		d["Notice"] = "Account created. Sign in to continue."
	}
	h.render(w, http.StatusOK, "sign_in.html", d)
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	form, errs := parseSignIn(r)
	d := h.data(r)
	d["Form"] = form
	if len(errs) > 0 {
		d["Errors"] = errs
		h.render(w, http.StatusUnprocessableEntity, "sign_in.html", d)
		return
	}

	payload, err := h.api.SignIn(r.Context(), form.Email, form.Password)
	if err != nil {
		if apiclient.CodeOf(err) == "" {
			h.fail(w, r, "sign in", err)
			return
		}
		d["Error"] = apiclient.Message(err, "")
		h.render(w, http.StatusUnprocessableEntity, "sign_in.html", d)
		return
	}

	s := session.Session{
		User:        session.User{ID: payload.ID, Name: payload.Name, Email: payload.Email, Avatar: payload.Avatar},
		AccessToken: payload.AccessToken,
	}
	if err := h.sessions.Create(w, s); err != nil {
		h.fail(w, r, "create session", err)
		return
	}
	h.logger.Info("signed in", "user_id", payload.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) SignUpPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "sign_up.html", h.data(r))
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	form, errs := parseSignUp(r)
	d := h.data(r)
	d["Form"] = form
	if len(errs) > 0 {
		d["Errors"] = errs
		h.render(w, http.StatusUnprocessableEntity, "sign_up.html", d)
		return
	}

	err := h.api.SignUp(r.Context(), apiclient.SignUpInput{Name: form.Name, Email: form.Email, Password: form.Password})
	if err != nil {
		if apiclient.CodeOf(err) == "" {
			h.fail(w, r, "sign up", err)
			return
		}
		d["Error"] = apiclient.Message(err, "")
		h.render(w, http.StatusUnprocessableEntity, "sign_up.html", d)
		return
	}
	http.Redirect(w, r, "/sign-in?registered=1", http.StatusSeeOther)
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GoogleCallback receives the API's redirect after Google sign-in, checks
// the token with the API and opens a session for the user the token
// belongs to.
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	accessToken := q.Get("accessToken")
	userID, err := strconv.ParseInt(q.Get("userId"), 10, 64)
	if accessToken == "" || err != nil || userID <= 0 || q.Get("name") == "" {
		http.Error(w, "Google sign-in failed", http.StatusBadRequest)
		return
	}

	invalid := "/sign-in?" + url.Values{"error": {"Invalid access token"}}.Encode()
	if err := h.api.VerifyToken(r.Context(), accessToken); err != nil {
		if apiclient.CodeOf(err) == apiclient.CodeUnauthenticated {
			http.Redirect(w, r, invalid, http.StatusSeeOther)
			return
		}
		h.logger.Error("verify google token", "error", err)
		http.Error(w, "could not verify sign-in", http.StatusBadGateway)
		return
	}

	// the query string is caller-controlled; identity comes from the token
	u, err := h.api.CurrentUser(r.Context(), accessToken)
	if err != nil {
		if apiclient.CodeOf(err) == apiclient.CodeUnauthenticated {
			http.Redirect(w, r, invalid, http.StatusSeeOther)
			return
		}
		h.logger.Error("load google user", "error", err)
		http.Error(w, "could not verify sign-in", http.StatusBadGateway)
		return
	}
	if u.ID != userID {
		h.logger.Warn("google callback user mismatch", "query_user_id", userID, "token_user_id", u.ID)
		http.Redirect(w, r, invalid, http.StatusSeeOther)
		return
	}

	avatar := u.Avatar
	if avatar == "null" {
		avatar = ""
	}
	s := session.Session{
		User:        session.User{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: avatar, Bio: u.Bio},
		AccessToken: accessToken,
	}
	if err := h.sessions.Create(w, s); err != nil {
		h.fail(w, r, "create session", err)
		return
	}
	h.logger.Info("signed in with google", "user_id", u.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
