package blog

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dukerupert/inkwell/internal/apperr"
	"github.com/dukerupert/inkwell/internal/model"
	"github.com/dukerupert/inkwell/internal/store"
)

const (
	msgPostNotFound   = "Post not found"
	msgSlugTaken      = "A post with this slug already exists"
	msgNoUpdatePost   = "You are not authorized to update this post"
	msgNoDeletePost   = "You are not authorized to delete this post"
	maxTitleRuneCount = 100
)

func validateTitle(title string) error {
	if title == "" {
		return apperr.New(apperr.Invalid, "title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleRuneCount {
		return apperr.New(apperr.Invalid, "title must not exceed 100 characters")
	}
	return nil
}

// CreatePost stores a post owned by callerID. An empty slug is derived from
// the title.
func (s *Service) CreatePost(callerID int64, in model.CreatePostInput) (*model.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Thumbnail = strings.TrimSpace(in.Thumbnail)

	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if in.Content == "" {
		return nil, apperr.New(apperr.Invalid, "content is required")
	}
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	}
	if in.Slug == "" {
		return nil, apperr.New(apperr.Invalid, "slug could not be derived from the title")
	}
	in.Tags = normalizeTags(in.Tags)

	existing, err := s.posts.GetBySlug(in.Slug)
	if err != nil {
		return nil, internal("check slug", err)
	}
	if existing != nil {
		return nil, apperr.New(apperr.Conflict, msgSlugTaken)
	}

	p, err := s.posts.Create(callerID, in)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.New(apperr.Conflict, msgSlugTaken)
	}
	if err != nil {
		return nil, internal("create post", err)
	}

	s.logger.Info("post created", "post_id", p.ID, "author_id", callerID)
	s.publish("post", "created", p.ID, p.ID, map[string]any{"slug": p.Slug, "author_id": callerID})
	return p, nil
}

// Posts lists published posts, newest first.
func (s *Service) Posts(skip, take int) ([]model.Post, error) {
	skip, take, err := Page(skip, take)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListPublished(skip, take)
	if err != nil {
		return nil, internal("list posts", err)
	}
	return posts, nil
}

func (s *Service) PostsCount() (int, error) {
	n, err := s.posts.CountPublished()
	if err != nil {
		return 0, internal("count posts", err)
	}
	return n, nil
}

func (s *Service) PostBySlug(slug string) (*model.Post, error) {
	p, err := s.posts.GetBySlug(slug)
	if err != nil {
		return nil, internal("get post by slug", err)
	}
	if p == nil {
		return nil, apperr.New(apperr.NotFound, fmt.Sprintf("Post with slug %q not found", slug))
	}
	return p, nil
}

func (s *Service) PostByID(id int64) (*model.Post, error) {
	p, err := s.posts.GetByID(id)
	if err != nil {
		return nil, internal("get post", err)
	}
	if p == nil {
		return nil, apperr.New(apperr.NotFound, msgPostNotFound)
	}
	return p, nil
}

// UserPosts lists every post by the caller, drafts included.
func (s *Service) UserPosts(callerID int64, skip, take int) ([]model.Post, error) {
	skip, take, err := Page(skip, take)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByAuthor(callerID, skip, take)
	if err != nil {
		return nil, internal("list user posts", err)
	}
	return posts, nil
}

func (s *Service) UserPostCount(callerID int64) (int, error) {
	n, err := s.posts.CountByAuthor(callerID)
	if err != nil {
		return 0, internal("count user posts", err)
	}
	return n, nil
}

func (s *Service) PostsByTag(tagID int64, skip, take int) ([]model.Post, error) {
	skip, take, err := Page(skip, take)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByTag(tagID, skip, take)
	if err != nil {
		return nil, internal("list posts by tag", err)
	}
	return posts, nil
}

// UpdatePost applies the non-nil fields of in to a post the caller owns.
// A post that is missing and a post owned by someone else are reported the
// same way.
func (s *Service) UpdatePost(callerID int64, in model.UpdatePostInput) (*model.Post, error) {
	p, err := s.posts.GetOwned(in.ID, callerID)
	if err != nil {
		return nil, internal("get post", err)
	}
	if p == nil {
		return nil, apperr.New(apperr.Unauthorized, msgNoUpdatePost)
	}

	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
		if err := validateTitle(p.Title); err != nil {
			return nil, err
		}
	}
	if in.Content != nil {
		p.Content = strings.TrimSpace(*in.Content)
		if p.Content == "" {
			return nil, apperr.New(apperr.Invalid, "content is required")
		}
	}
	if in.Thumbnail != nil {
		p.Thumbnail = strings.TrimSpace(*in.Thumbnail)
	}
	if in.Published != nil {
		p.Published = *in.Published
	}
	if in.Slug != nil {
		slug := strings.TrimSpace(*in.Slug)
		if slug == "" {
			return nil, apperr.New(apperr.Invalid, "slug must not be empty")
		}
		if slug != p.Slug {
			existing, err := s.posts.GetBySlug(slug)
			if err != nil {
				return nil, internal("check slug", err)
			}
			if existing != nil {
				return nil, apperr.New(apperr.Conflict, msgSlugTaken)
			}
			p.Slug = slug
		}
	}

	updated, err := s.posts.Update(p, callerID, normalizeTags(in.Tags))
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.New(apperr.Conflict, msgSlugTaken)
	}
	if err != nil {
		return nil, internal("update post", err)
	}
	// removed between the ownership check and the write
	if updated == nil {
		return nil, apperr.New(apperr.Unauthorized, msgNoUpdatePost)
	}

	s.publish("post", "updated", updated.ID, updated.ID, nil)
	return updated, nil
}

// RemovePost deletes a post the caller owns.
func (s *Service) RemovePost(callerID, postID int64) (bool, error) {
	ok, err := s.posts.Delete(postID, callerID)
	if err != nil {
		return false, internal("delete post", err)
	}
	if !ok {
		return false, apperr.New(apperr.Unauthorized, msgNoDeletePost)
	}

	s.logger.Info("post removed", "post_id", postID, "author_id", callerID)
	s.publish("post", "removed", postID, postID, nil)
	return true, nil
}
