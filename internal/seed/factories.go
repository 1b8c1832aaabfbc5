package seed

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"image/png"
	"math/rand"
	"strings"
	"time"

	"github.com/lena210296/ProjectBlog/internal/models"
	"github.com/lena210296/ProjectBlog/internal/storage"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Factory builds blog entities with generated content and persists them.
type Factory struct {
	db           *gorm.DB
	media        *storage.Media
	passwordHash string
	maxDays      int
	rnd          *rand.Rand
}

// NewFactory creates a Factory. media may be nil, in which case posts get
// image keys without stored files.
func NewFactory(db *gorm.DB, media *storage.Media, passwordHash string) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Factory{db: db, media: media, passwordHash: passwordHash, maxDays: 90, rnd: rnd}
}

// CreateUser inserts an active user. An empty username gets a generated one.
func (f *Factory) CreateUser(username string, staff bool) (*models.User, error) {
	if username == "" {
		username = strings.ToLower(gofakeit.Username()) + gofakeit.DigitN(3)
	}
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: f.passwordHash,
		IsStaff:  staff,
		IsActive: true,
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}
	return user, nil
}

// CreateProfile gives user a profile with the given bio, or a generated one.
func (f *Factory) CreateProfile(user *models.User, bio string) (*models.UserProfile, error) {
	if bio == "" {
		bio = gofakeit.Paragraph(1, 2, 10, " ")
	}
	uid := user.ID
	profile := &models.UserProfile{UserID: &uid, Bio: bio}
	if err := f.db.Create(profile).Error; err != nil {
		return nil, fmt.Errorf("create profile for %s: %w", user.Username, err)
	}
	return profile, nil
}

// CreatePost inserts a post by author with a publication date spread over the last maxDays.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, status models.PostStatus) (*models.Post, error) {
	image, err := f.postImage(ctx)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:            strings.TrimSuffix(gofakeit.Sentence(5), "."),
		ShortDescription: gofakeit.Sentence(14),
		FullDescription:  gofakeit.Paragraph(3, 4, 12, "\n\n"),
		Image:            image,
		AuthorID:         author.ID,
		Status:           status,
	}
	back := time.Duration(f.rnd.Intn(f.maxDays*24)) * time.Hour
	post.PubDate = time.Now().Add(-back)

	if err := f.db.Omit("Author").Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// CreateComment inserts a comment on post. author may be nil.
func (f *Factory) CreateComment(post *models.Post, author *models.User, approved bool) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:      post.ID,
		Content:     gofakeit.Sentence(f.rnd.Intn(12) + 4),
		IsAnonymous: author != nil && f.rnd.Intn(5) == 0,
		IsApproved:  approved,
	}
	if author != nil {
		id := author.ID
		comment.AuthorID = &id
	}
	if err := f.db.Omit("Post", "Author").Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// postImage renders a small gradient and stores it through media.
func (f *Factory) postImage(ctx context.Context) (string, error) {
	if f.media == nil {
		return storage.PostImagesPrefix + "seed-" + uuid.NewString() + ".jpg", nil
	}

	from := color.NRGBA{R: uint8(gofakeit.Number(0, 255)), G: uint8(gofakeit.Number(0, 255)), B: uint8(gofakeit.Number(0, 255)), A: 255}
	img := imaging.New(320, 200, from)
	img = imaging.AdjustBrightness(imaging.Blur(img, 2), float64(f.rnd.Intn(40)-20))

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return f.media.SavePostImage(ctx, storage.Upload{
		Filename:    "seed.png",
		ContentType: "image/png",
		Data:        buf.Bytes(),
	})
}
