package blog

import (
	"strings"
	"unicode/utf8"

	"github.com/dukerupert/inkwell/internal/apperr"
	"github.com/dukerupert/inkwell/internal/model"
)

const (
	msgNoUpdateComment = "You are not authorized to update this comment"
	msgNoDeleteComment = "You are not authorized to delete this comment"
)

func validateComment(content string) error {
	if content == "" {
		return apperr.New(apperr.Invalid, "Comment cannot be empty")
	}
	if utf8.RuneCountInString(content) > 500 {
		return apperr.New(apperr.Invalid, "Comment cannot exceed 500 characters")
	}
	return nil
}

// PostComments lists a post's comments, newest first.
func (s *Service) PostComments(postID int64, skip, take int) ([]model.Comment, error) {
	skip, take, err := Page(skip, take)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(postID, skip, take)
	if err != nil {
		return nil, internal("list comments", err)
	}
	return comments, nil
}

func (s *Service) CommentCount(postID int64) (int, error) {
	n, err := s.comments.CountByPost(postID)
	if err != nil {
		return 0, internal("count comments", err)
	}
	return n, nil
}

func (s *Service) Comment(id int64) (*model.Comment, error) {
	c, err := s.comments.GetByID(id)
	if err != nil {
		return nil, internal("get comment", err)
	}
	if c == nil {
		return nil, apperr.New(apperr.NotFound, "Comment not found")
	}
	return c, nil
}

func (s *Service) CreateComment(callerID int64, in model.CreateCommentInput) (*model.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if err := validateComment(content); err != nil {
		return nil, err
	}
	if _, err := s.PostByID(in.PostID); err != nil {
		return nil, err
	}

	c, err := s.comments.Create(in.PostID, callerID, content)
	if err != nil {
		return nil, internal("create comment", err)
	}

	s.publish("comment", "created", c.ID, c.PostID, map[string]any{"author_id": callerID})
	return c, nil
}

// UpdateComment rewrites a comment the caller wrote.
func (s *Service) UpdateComment(callerID int64, in model.UpdateCommentInput) (*model.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if err := validateComment(content); err != nil {
		return nil, err
	}

	c, err := s.comments.Update(in.ID, callerID, content)
	if err != nil {
		return nil, internal("update comment", err)
	}
	if c == nil {
		return nil, apperr.New(apperr.Unauthorized, msgNoUpdateComment)
	}

	s.publish("comment", "updated", c.ID, c.PostID, nil)
	return c, nil
}

// RemoveComment deletes a comment the caller wrote and returns it.
func (s *Service) RemoveComment(callerID, id int64) (*model.Comment, error) {
	c, err := s.comments.GetOwned(id, callerID)
	if err != nil {
		return nil, internal("get comment", err)
	}
	if c == nil {
		return nil, apperr.New(apperr.Unauthorized, msgNoDeleteComment)
	}

	ok, err := s.comments.Delete(id, callerID)
	if err != nil {
		return nil, internal("delete comment", err)
	}
	if !ok {
		return nil, apperr.New(apperr.Unauthorized, msgNoDeleteComment)
	}

	s.publish("comment", "removed", c.ID, c.PostID, nil)
	return c, nil
}
