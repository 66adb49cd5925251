package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/dukerupert/inkwell/internal/blog"
	"github.com/dukerupert/inkwell/internal/model"
	"github.com/dukerupert/inkwell/internal/password"
	"github.com/dukerupert/inkwell/internal/store"
)

const (
	DemoEmail    = "test@example.com"
	DemoPassword = "password123"
)

type Counts struct {
	Users           int
	Posts           int
	CommentsPerPost int
	MaxLikesPerPost int
}

var DefaultCounts = Counts{Users: 10, Posts: 50, CommentsPerPost: 15, MaxLikesPerPost: 8}

type Result struct {
	Skipped  bool
	Users    int
	Posts    int
	Comments int
	Likes    int
	Tags     int
}

type seeder struct {
	users    *store.UserStore
	posts    *store.PostStore
	comments *store.CommentStore
	likes    *store.LikeStore
	tags     *store.TagStore
	rng      *rand.Rand
	counts   Counts
	logger   *slog.Logger
}

func newSeeder(db *sql.DB, rng *rand.Rand, counts Counts, logger *slog.Logger) *seeder {
	return &seeder{
		users:    store.NewUserStore(db),
		posts:    store.NewPostStore(db),
		comments: store.NewCommentStore(db),
		likes:    store.NewLikeStore(db),
		tags:     store.NewTagStore(db),
		rng:      rng,
		counts:   counts,
		logger:   logger,
	}
}

// Run fills an empty database with demo content. A database that already
// holds the demo account is left alone.
func (s *seeder) Run() (Result, error) {
	var res Result
	existing, err := s.users.GetByEmail(DemoEmail)
	if err != nil {
		return res, err
	}
	if existing != nil {
		res.Skipped = true
		return res, nil
	}

	// every seeded account shares one hash
	hash, err := password.Hash(DemoPassword)
	if err != nil {
		return res, fmt.Errorf("hash password: %w", err)
	}

	userIDs := make([]int64, 0, s.counts.Users+1)
	demo, err := s.users.Create(DemoEmail, "Test User", hash, "The demo account.", "")
	if err != nil {
		return res, fmt.Errorf("create demo user: %w", err)
	}
	userIDs = append(userIDs, demo.ID)

	for i := range s.counts.Users {
		first, last := pick(s.rng, firstNames), pick(s.rng, lastNames)
		email := fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1)
		avatar := fmt.Sprintf("https://i.pravatar.cc/150?u=%d", i+1)
		u, err := s.users.Create(email, first+" "+last, hash, s.sentence(6, 12), avatar)
		if err != nil {
			return res, fmt.Errorf("create user %s: %w", email, err)
		}
		userIDs = append(userIDs, u.ID)
	}
	res.Users = len(userIDs)
	s.logger.Info("created users", "count", res.Users)

	for i := range s.counts.Posts {
		post, err := s.createPost(i, pickID(s.rng, userIDs))
		if err != nil {
			return res, err
		}
		res.Posts++

		for range s.counts.CommentsPerPost {
			if _, err := s.comments.Create(post.ID, pickID(s.rng, userIDs), s.sentence(5, 15)); err != nil {
				return res, fmt.Errorf("create comment: %w", err)
			}
			res.Comments++
		}

		n := s.rng.IntN(min(s.counts.MaxLikesPerPost, len(userIDs)) + 1)
		for _, idx := range s.rng.Perm(len(userIDs))[:n] {
			if _, err := s.likes.Create(userIDs[idx], post.ID); err != nil {
				return res, fmt.Errorf("create like: %w", err)
			}
			res.Likes++
		}
	}
	s.logger.Info("created posts", "posts", res.Posts, "comments", res.Comments, "likes", res.Likes)

	tags, err := s.tags.List()
	if err != nil {
		return res, err
	}
	res.Tags = len(tags)
	return res, nil
}

// createPost retries with a numbered slug when a random title repeats.
func (s *seeder) createPost(n int, authorID int64) (*model.Post, error) {
	title := s.title()
	base := blog.Slugify(title)
	in := model.CreatePostInput{
		Title:     title,
		Slug:      base,
		Content:   s.paragraphs(3),
		Thumbnail: fmt.Sprintf("https://picsum.photos/seed/inkwell-%d/240/320", n),
		Published: true,
		Tags:      s.pickTags(),
	}
	for attempt := 2; ; attempt++ {
		p, err := s.posts.Create(authorID, in)
		if errors.Is(err, store.ErrDuplicate) && attempt < 10 {
			in.Slug = fmt.Sprintf("%s-%d", base, attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create post %q: %w", title, err)
		}
		return p, nil
	}
}

func (s *seeder) title() string {
	t := s.sentence(3, 7)
	return strings.TrimSuffix(t, ".")
}

// sentence builds a capitalised sentence of min..max lorem words.
func (s *seeder) sentence(minWords, maxWords int) string {
	n := minWords + s.rng.IntN(maxWords-minWords+1)
	words := make([]string, n)
	for i := range words {
		words[i] = pick(s.rng, lorem)
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ") + "."
}

func (s *seeder) paragraphs(n int) string {
	paras := make([]string, n)
	for i := range paras {
		sentences := make([]string, 3+s.rng.IntN(4))
		for j := range sentences {
			sentences[j] = s.sentence(6, 14)
		}
		paras[i] = strings.Join(sentences, " ")
	}
	return strings.Join(paras, "\n\n")
}

func (s *seeder) pickTags() []string {
	n := 1 + s.rng.IntN(3)
	out := make([]string, 0, n)
	for _, idx := range s.rng.Perm(len(tagNames))[:n] {
		out = append(out, tagNames[idx])
	}
	return out
}

func pick(rng *rand.Rand, words []string) string {
	return words[rng.IntN(len(words))]
}

func pickID(rng *rand.Rand, ids []int64) int64 {
	return ids[rng.IntN(len(ids))]
}

var firstNames = []string{
	"Ada", "Alan", "Barbara", "Dennis", "Edsger", "Frances", "Grace", "Guido",
	"Hedy", "Ken", "Linus", "Margaret", "Niklaus", "Radia", "Rob", "Sophie",
}

var lastNames = []string{
	"Allen", "Hopper", "Kernighan", "Lamarr", "Liskov", "Lovelace", "Perlman",
	"Pike", "Ritchie", "Thompson", "Torvalds", "Turing", "Wirth", "Wilson",
}

var tagNames = []string{
	"go", "databases", "web", "graphql", "security", "devops", "testing",
	"performance", "design", "career",
}

var lorem = strings.Fields(`lorem ipsum dolor sit amet consectetur adipiscing elit sed do
eiusmod tempor incididunt ut labore et dolore magna aliqua enim ad minim veniam quis
nostrud exercitation ullamco laboris nisi aliquip ex ea commodo consequat duis aute
irure in reprehenderit voluptate velit esse cillum fugiat nulla pariatur excepteur
sint occaecat cupidatat non proident sunt culpa qui officia deserunt mollit anim id
est laborum`)
