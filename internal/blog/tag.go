package blog

import (
	"strings"

	"github.com/dukerupert/inkwell/internal/apperr"
	"github.com/dukerupert/inkwell/internal/model"
)

func (s *Service) Tags() ([]model.Tag, error) {
	tags, err := s.tags.List()
	if err != nil {
		return nil, internal("list tags", err)
	}
	return tags, nil
}

func (s *Service) Tag(id int64) (*model.Tag, error) {
	t, err := s.tags.GetByID(id)
	if err != nil {
		return nil, internal("get tag", err)
	}
	if t == nil {
		return nil, apperr.New(apperr.NotFound, "Tag not found")
	}
	return t, nil
}

func (s *Service) TagsForPost(postID int64) ([]model.Tag, error) {
	tags, err := s.tags.ListForPost(postID)
	if err != nil {
		return nil, internal("list post tags", err)
	}
	return tags, nil
}

// CreateTag returns the tag with the given name, creating it if needed.
func (s *Service) CreateTag(name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.Invalid, "tag name is required")
	}
	t, err := s.tags.GetOrCreate(name)
	if err != nil {
		return nil, internal("create tag", err)
	}
	return t, nil
}
