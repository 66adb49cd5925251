// Package blog holds the domain rules for users, posts, tags, comments and
// likes: validation, ownership checks and conflict detection. Stores do the
// I/O; every failure leaves this package as an *apperr.Error.
package blog

import (
	"database/sql"
	"log/slog"

	"github.com/dukerupert/inkwell/internal/apperr"
	"github.com/dukerupert/inkwell/internal/store"
	"github.com/dukerupert/inkwell/internal/websocket"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

type Service struct {
	users    *store.UserStore
	posts    *store.PostStore
	tags     *store.TagStore
	comments *store.CommentStore
	likes    *store.LikeStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

// NewService wires the stores over db. hub may be nil, in which case no
// activity is published.
func NewService(db *sql.DB, hub *websocket.Hub, logger *slog.Logger) *Service {
	return &Service{
		users:    store.NewUserStore(db),
		posts:    store.NewPostStore(db),
		tags:     store.NewTagStore(db),
		comments: store.NewCommentStore(db),
		likes:    store.NewLikeStore(db),
		hub:      hub,
		logger:   logger,
	}
}

// UserStore exposes the user store for the auth service.
func (s *Service) UserStore() *store.UserStore {
	return s.users
}

// Page normalizes pagination arguments: take defaults to DefaultPageSize and
// is capped at MaxPageSize.
func Page(skip, take int) (int, int, error) {
	if skip < 0 {
		return 0, 0, apperr.New(apperr.Invalid, "skip must not be negative")
	}
	if take <= 0 {
		take = DefaultPageSize
	}
	if take > MaxPageSize {
		take = MaxPageSize
	}
	return skip, take, nil
}

func (s *Service) publish(entity, action string, id, postID int64, extra map[string]any) {
	s.hub.Broadcast(websocket.NewMessage(entity, action, id, postID, extra))
}

func internal(msg string, err error) error {
	return apperr.Wrap(apperr.Internal, msg, err)
}
