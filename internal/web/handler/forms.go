package handler

import (
	"net/http"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

// fieldErrors maps a form field to the first problem found with it.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

type signInForm struct {
	Email    string
	Password string
}

func parseSignIn(r *http.Request) (signInForm, fieldErrors) {
	f := signInForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	errs := fieldErrors{}
	if f.Email == "" {
		errs.add("email", "Email is required")
	} else if !validEmail(f.Email) {
		errs.add("email", "Invalid email address")
	}
	if utf8.RuneCountInString(f.Password) < 8 {
		errs.add("password", "Password must be at least 8 characters long")
	}
	return f, errs
}

type signUpForm struct {
	Name     string
	Email    string
	Password string
}

func parseSignUp(r *http.Request) (signUpForm, fieldErrors) {
	f := signUpForm{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: strings.TrimSpace(r.PostFormValue("password")),
	}
	errs := fieldErrors{}

	switch n := utf8.RuneCountInString(f.Name); {
	case n < 2:
		errs.add("name", "Name must be at least 2 characters long")
	case n > 100:
		errs.add("name", "Name must be at most 100 characters long")
	}
	if !validEmail(f.Email) {
		errs.add("email", "Invalid email address")
	}

	var letter, digit, special bool
	for _, c := range f.Password {
		switch {
		case c < unicode.MaxASCII && unicode.IsLetter(c):
			letter = true
		case c < unicode.MaxASCII && unicode.IsDigit(c):
			digit = true
		default:
			special = true
		}
	}
	switch n := utf8.RuneCountInString(f.Password); {
	case n < 8:
		errs.add("password", "Password must be at least 8 characters long")
	case n > 100:
		errs.add("password", "Password must be at most 100 characters long")
	case !letter:
		errs.add("password", "Password must contain at least one letter")
	case !digit:
		errs.add("password", "Password must contain at least one number")
	case !special:
		errs.add("password", "Password must contain at least one special character")
	}
	return f, errs
}

type postForm struct {
	Title     string
	Content   string
	Thumbnail string
	Tags      string
	Published bool
}

// TagList splits the comma-separated tags field.
func (f postForm) TagList() []string {
	var out []string
	for _, t := range strings.Split(f.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parsePost(r *http.Request) (postForm, fieldErrors) {
	f := postForm{
		Title:     strings.TrimSpace(r.PostFormValue("title")),
		Content:   strings.TrimSpace(r.PostFormValue("content")),
		Thumbnail: strings.TrimSpace(r.PostFormValue("thumbnail")),
		Tags:      strings.TrimSpace(r.PostFormValue("tags")),
		Published: r.PostFormValue("published") == "on",
	}
	errs := fieldErrors{}

	switch n := utf8.RuneCountInString(f.Title); {
	case n == 0:
		errs.add("title", "Title cannot be empty")
	case n > 100:
		errs.add("title", "Title cannot exceed 100 characters")
	}
	if utf8.RuneCountInString(f.Content) < 20 {
		errs.add("content", "Content must be at least 20 characters long")
	}
	if f.Tags == "" {
		errs.add("tags", "Add at least one tag")
	} else {
		for _, t := range strings.Split(f.Tags, ",") {
			if strings.TrimSpace(t) == "" {
				errs.add("tags", "Tags cannot be blank")
			}
		}
	}
	if f.Thumbnail != "" && !strings.HasPrefix(f.Thumbnail, "http://") && !strings.HasPrefix(f.Thumbnail, "https://") {
		errs.add("thumbnail", "Thumbnail must be an http(s) URL")
	}
	return f, errs
}

func parseComment(r *http.Request) (string, string) {
	content := strings.TrimSpace(r.PostFormValue("content"))
	switch n := utf8.RuneCountInString(content); {
	case n == 0:
		return content, "Comment cannot be empty"
	case n > 500:
		return content, "Comment cannot exceed 500 characters"
	}
	return content, ""
}

type profileForm struct {
	Name string
	Bio  string
}

func parseProfile(r *http.Request) (profileForm, fieldErrors) {
	f := profileForm{
		Name: strings.TrimSpace(r.PostFormValue("name")),
		Bio:  strings.TrimSpace(r.PostFormValue("bio")),
	}
	errs := fieldErrors{}
	if n := utf8.RuneCountInString(f.Name); n != 0 && n < 2 {
		errs.add("name", "Name must be at least 2 characters long")
	} else if n > 100 {
		errs.add("name", "Name must not be more than 100 characters long")
	}
	if utf8.RuneCountInString(f.Bio) > 500 {
		errs.add("bio", "Bio must not be more than 500 characters long")
	}
	return f, errs
}
