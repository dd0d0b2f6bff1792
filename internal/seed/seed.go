// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"perch/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder populates the database with fake but realistic data.
type Seeder struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seedable rows. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	for _, table := range []string{"messages", "reactions", "follows", "posts", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Seed populates the database with a social mesh: users with mixed
// visibility, a follow graph, posts with comments, reactions, and direct
// messages between followers.
func (s *Seeder) Seed(opts Options) error {
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.createUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	follows, err := s.createFollows(users)
	if err != nil {
		return fmt.Errorf("create follows: %w", err)
	}
	log.Printf("created %d follows", len(follows))

	posts, err := s.createPosts(users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("create posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	if err := s.createReactions(users, posts); err != nil {
		return fmt.Errorf("create reactions: %w", err)
	}

	if err := s.createMessages(follows); err != nil {
		return fmt.Errorf("create messages: %w", err)
	}

	log.Println("seeding complete")
	return nil
}

func (s *Seeder) createUsers(n int) ([]*models.User, error) {
	// One shared password keeps local login simple.
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	visibilities := []models.Visibility{
		models.VisibilityPublic, models.VisibilityPublic, models.VisibilityPublic,
		models.VisibilityPrivate,
		models.VisibilityHidden,
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := &models.User{
			Username:    fmt.Sprintf("%s%d", gofakeit.Username(), i),
			DisplayName: gofakeit.Name(),
			Email:       fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			Password:    string(hashed),
			Visibility:  visibilities[s.rand.Intn(len(visibilities))],
		}
		if s.rand.Intn(3) != 0 {
			user.AvatarKey = fmt.Sprintf("avatars/%s.jpg", gofakeit.UUID())
		}
		if err := s.db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) createFollows(users []*models.User) ([]*models.Follow, error) {
	follows := make([]*models.Follow, 0)
	seen := make(map[[2]uint]bool)

	for _, follower := range users {
		// Each user follows a handful of others.
		count := 2 + s.rand.Intn(6)
		for j := 0; j < count; j++ {
			followed := users[s.rand.Intn(len(users))]
			if followed.ID == follower.ID {
				continue
			}
			pair := [2]uint{follower.ID, followed.ID}
			if seen[pair] {
				continue
			}
			seen[pair] = true

			follow := &models.Follow{FollowerID: follower.ID, FollowedID: followed.ID}
			if err := s.db.Create(follow).Error; err != nil {
				return nil, err
			}
			follows = append(follows, follow)
		}
	}
	return follows, nil
}

func (s *Seeder) createPosts(users []*models.User, n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, n)

	for i := 0; i < n; i++ {
		author := users[s.rand.Intn(len(users))]
		post := &models.Post{
			AuthorID:  author.ID,
			Content:   truncate(gofakeit.Sentence(8), models.MaxPostContentLen),
			Images:    []string{},
			CreatedAt: s.spreadBack(60),
		}

		switch s.rand.Intn(4) {
		case 0:
			post.Images = []string{fmt.Sprintf("posts/%s.jpg", gofakeit.UUID())}
		case 1:
			post.Images = []string{
				fmt.Sprintf("posts/%s.jpg", gofakeit.UUID()),
				fmt.Sprintf("posts/%s.jpg", gofakeit.UUID()),
			}
		}

		// Roughly a quarter of posts are comments on earlier ones.
		if len(posts) > 0 && s.rand.Intn(4) == 0 {
			parent := posts[s.rand.Intn(len(posts))]
			if !parent.IsComment() {
				post.ParentPostID = &parent.ID
			}
		}

		if err := s.db.Create(post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) createReactions(users []*models.User, posts []*models.Post) error {
	actions := []models.ReactionAction{models.ReactionLike, models.ReactionRetweet}
	seen := make(map[[3]uint]bool)
	count := 0

	for _, post := range posts {
		reactors := s.rand.Intn(5)
		for j := 0; j < reactors; j++ {
			author := users[s.rand.Intn(len(users))]
			actionIdx := s.rand.Intn(len(actions))
			triple := [3]uint{author.ID, post.ID, uint(actionIdx)}
			if seen[triple] {
				continue
			}
			seen[triple] = true

			reaction := &models.Reaction{
				AuthorID: author.ID,
				PostID:   post.ID,
				Action:   actions[actionIdx],
			}
			if err := s.db.Create(reaction).Error; err != nil {
				return err
			}
			count++
		}
	}
	log.Printf("created %d reactions", count)
	return nil
}

func (s *Seeder) createMessages(follows []*models.Follow) error {
	count := 0
	for _, follow := range follows {
		// Messaging requires the sender to follow the receiver, so the
		// follow graph is exactly the set of legal conversations.
		msgs := s.rand.Intn(4)
		for j := 0; j < msgs; j++ {
			message := &models.Message{
				SenderID:   follow.FollowerID,
				ReceiverID: follow.FollowedID,
				Content:    truncate(gofakeit.HipsterSentence(10), models.MaxMessageContentLen),
				CreatedAt:  s.spreadBack(30),
			}
			if err := s.db.Create(message).Error; err != nil {
				return err
			}
			count++
		}
	}
	log.Printf("created %d messages", count)
	return nil
}

// spreadBack returns a timestamp up to maxDays in the past so listings
// have a realistic time distribution.
func (s *Seeder) spreadBack(maxDays int) time.Time {
	daysBack := s.rand.Intn(maxDays)
	minsBack := s.rand.Intn(24 * 60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(minsBack)*time.Minute)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
