package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lena210296/ProjectBlog/internal/middleware"
	"github.com/lena210296/ProjectBlog/internal/models"
	"github.com/lena210296/ProjectBlog/internal/pagination"
	"github.com/lena210296/ProjectBlog/internal/repository"
	"github.com/lena210296/ProjectBlog/internal/tasks"
)

// MediaRemover deletes stored files that are no longer referenced.
type MediaRemover interface {
	Delete(ctx context.Context, key string) error
}

type PostService struct {
	postRepo repository.PostRepository
	queue    tasks.Queue
	media    MediaRemover
}

type CreatePostInput struct {
	AuthorID         uint
	Title            string
	ShortDescription string
	FullDescription  string
	ImageKey         string
	// Submit is true when the author pressed "submit" rather than "save draft".
	Submit bool
}

type UpdatePostInput struct {
	PostID           uint
	EditorID         uint
	Title            string
	ShortDescription string
	FullDescription  string
	// ImageKey replaces the image when non-empty.
	ImageKey string
	Publish  bool
}

// PostPage is one page of the all-posts listing.
type PostPage struct {
	Posts []*models.Post
	pagination.Page
}

func NewPostService(postRepo repository.PostRepository, queue tasks.Queue, media MediaRemover) *PostService {
	return &PostService{postRepo: postRepo, queue: queue, media: media}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.ImageKey == "" {
		return nil, models.NewFieldError("image", "This field is required.")
	}

	status := models.PostStatusDraft
	if in.Submit {
		status = models.PostStatusPublished
	}

	post := &models.Post{
		Title:            in.Title,
		ShortDescription: in.ShortDescription,
		FullDescription:  in.FullDescription,
		Image:            in.ImageKey,
		AuthorID:         in.AuthorID,
		Status:           status,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	tasks.Dispatch(ctx, s.queue, tasks.JobSendAdminMessage, fmt.Sprintf("New post with id %d is created.", post.ID))
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// GetForEdit loads the post and checks that editorID wrote it.
func (s *PostService) GetForEdit(ctx context.Context, postID, editorID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != editorID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}
	return post, nil
}

// UpdatePost saves the edit. Status only ever moves from draft to published.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.GetForEdit(ctx, in.PostID, in.EditorID)
	if err != nil {
		return nil, err
	}

	post.Title = in.Title
	post.ShortDescription = in.ShortDescription
	post.FullDescription = in.FullDescription
	if in.Publish {
		post.Status = models.PostStatusPublished
	}

	oldImage := ""
	if in.ImageKey != "" && in.ImageKey != post.Image {
		oldImage = post.Image
		post.Image = in.ImageKey
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	if oldImage != "" && s.media != nil {
		if err := s.media.Delete(ctx, oldImage); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to delete replaced post image",
				slog.String("key", oldImage),
				slog.String("error", err.Error()),
			)
		}
	}
	return post, nil
}

func (s *PostService) ListUserPosts(ctx context.Context, userID uint) ([]*models.Post, error) {
	return s.postRepo.ListByAuthor(ctx, userID)
}

// ListAllPosts lists every post, drafts included, on the page resolved from rawPage.
func (s *PostService) ListAllPosts(ctx context.Context, rawPage string, perPage int) (*PostPage, error) {
	total, err := s.postRepo.CountAll(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	page := pagination.Resolve(rawPage, total, perPage)

	posts, err := s.postRepo.ListAll(ctx, page.Limit(), page.Offset())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &PostPage{Posts: posts, Page: page}, nil
}
