package blog

import (
	"errors"

	"github.com/dukerupert/inkwell/internal/apperr"
	"github.com/dukerupert/inkwell/internal/model"
	"github.com/dukerupert/inkwell/internal/store"
)

const msgAlreadyLiked = "You have already liked this post"

// LikePost records the caller's like. Liking twice is a Conflict, including
// when two requests race past the pre-check.
func (s *Service) LikePost(callerID, postID int64) (bool, error) {
	if _, err := s.PostByID(postID); err != nil {
		return false, err
	}

	liked, err := s.likes.Exists(callerID, postID)
	if err != nil {
		return false, internal("check like", err)
	}
	if liked {
		return false, apperr.New(apperr.Conflict, msgAlreadyLiked)
	}

	l, err := s.likes.Create(callerID, postID)
	if errors.Is(err, store.ErrDuplicate) {
		return false, apperr.New(apperr.Conflict, msgAlreadyLiked)
	}
	if err != nil {
		return false, internal("create like", err)
	}

	s.publish("like", "created", l.ID, postID, map[string]any{"user_id": callerID})
	return true, nil
}

// UnlikePost removes the caller's like, or reports NotFound when there is none.
func (s *Service) UnlikePost(callerID, postID int64) (bool, error) {
	ok, err := s.likes.Delete(callerID, postID)
	if err != nil {
		return false, internal("delete like", err)
	}
	if !ok {
		return false, apperr.New(apperr.NotFound, "Like not found")
	}

	s.publish("like", "removed", 0, postID, map[string]any{"user_id": callerID})
	return true, nil
}

func (s *Service) LikeCount(postID int64) (int, error) {
	n, err := s.likes.CountByPost(postID)
	if err != nil {
		return 0, internal("count likes", err)
	}
	return n, nil
}

func (s *Service) HasLiked(callerID, postID int64) (bool, error) {
	liked, err := s.likes.Exists(callerID, postID)
	if err != nil {
		return false, internal("check like", err)
	}
	return liked, nil
}

func (s *Service) PostLikes(postID int64) ([]model.Like, error) {
	likes, err := s.likes.ListByPost(postID)
	if err != nil {
		return nil, internal("list likes", err)
	}
	return likes, nil
}
