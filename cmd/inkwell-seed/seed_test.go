package main

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/inkwell/internal/database"
	"github.com/dukerupert/inkwell/internal/password"
	"github.com/dukerupert/inkwell/internal/store"
)

func TestSeed(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	counts := Counts{Users: 3, Posts: 6, CommentsPerPost: 2, MaxLikesPerPost: 3}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := newSeeder(db, rand.New(rand.NewPCG(1, 2)), counts, logger)

	res, err := s.Run()
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 4, res.Users)
	assert.Equal(t, 6, res.Posts)
	assert.Equal(t, 12, res.Comments)
	assert.Positive(t, res.Tags)

	demo, err := store.NewUserStore(db).GetByEmail(DemoEmail)
	require.NoError(t, err)
	require.NotNil(t, demo)
	ok, err := password.Verify(DemoPassword, demo.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	published, err := store.NewPostStore(db).CountPublished()
	require.NoError(t, err)
	assert.Equal(t, 6, published)

	again, err := newSeeder(db, rand.New(rand.NewPCG(1, 2)), counts, logger).Run()
	require.NoError(t, err)
	assert.True(t, again.Skipped)
}
